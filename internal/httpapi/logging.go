package httpapi

import (
	"bytes"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is the structured logger of the HTTP layer; Nop until SetLogger.
var zlog = zerolog.Nop()

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = l }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// global default, read once
var defaultLogLevel = parseLevel(os.Getenv("LINGOD_LOG_LEVEL"))

// SetDefaultLogLevel overrides the level used when a request carries none.
func SetDefaultLogLevel(s string) { defaultLogLevel = parseLevel(s) }

func requestLogLevel(r *http.Request) LogLevel {
	// Per-request overrides
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// requestLog carries the per-request level and start time of one handler.
type requestLog struct {
	r     *http.Request
	lvl   LogLevel
	op    string
	start time.Time
}

func newRequestLog(r *http.Request, op string) *requestLog {
	return &requestLog{r: r, lvl: requestLogLevel(r), op: op, start: time.Now()}
}

func (rl *requestLog) event(e *zerolog.Event) *zerolog.Event {
	e = e.Str("op", rl.op).Str("path", rl.r.URL.Path)
	if rid := middleware.GetReqID(rl.r.Context()); rid != "" {
		e = e.Str("request_id", rid)
	}
	return e
}

func (rl *requestLog) begin() {
	if rl.lvl >= LevelInfo {
		rl.event(zlog.Info()).Msg(rl.op + " start")
	}
}

// end logs the outcome. Failures log at error level when at least
// LevelError is requested.
func (rl *requestLog) end(status int, err error) {
	if rl.lvl < LevelError || (err == nil && rl.lvl < LevelInfo) {
		return
	}
	e := zlog.Info()
	if err != nil {
		e = zlog.Error().Err(err)
	}
	rl.event(e).Int("status", status).Dur("dur", time.Since(rl.start)).Msg(rl.op + " end")
}

// lineLogger logs complete NDJSON lines written to a stream at debug level.
type lineLogger struct {
	rl  *requestLog
	buf []byte
}

func (lw *lineLogger) Write(p []byte) (int, error) {
	lw.buf = append(lw.buf, p...)
	for {
		idx := bytes.IndexByte(lw.buf, '\n')
		if idx < 0 {
			break
		}
		if idx > 0 {
			lw.rl.event(zlog.Debug()).Str("line", string(lw.buf[:idx])).Msg(lw.rl.op + ">")
		}
		lw.buf = lw.buf[idx+1:]
	}
	return len(p), nil
}
