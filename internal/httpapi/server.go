// Package httpapi exposes the translation and summarization sessions over
// HTTP with chi.
package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lingod/internal/translate"
	"lingod/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Translate(ctx context.Context, req types.TranslateRequest, onPartial func(string)) (types.TranslateResponse, error)
	Summarize(ctx context.Context, req types.SummarizeRequest, onPartial func(string)) (types.SummarizeResponse, error)
	Detect(ctx context.Context, text string) (types.DetectResponse, error)
	History(feature string) (types.HistoryResponse, error)
	Reset(ctx context.Context, feature string) error
	Status(ctx context.Context) types.StatusResponse
	Ready(ctx context.Context) bool
}

type server struct {
	svc Service
}

// NewMux builds the router.
func NewMux(svc Service) http.Handler {
	s := &server{svc: svc}
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}))
	}
	// Compression for JSON endpoints; NDJSON streams pass through.
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(inflight)
		r.Post("/translate", s.handleTranslate)
		r.Post("/summarize", s.handleSummarize)
		r.Post("/detect", s.handleDetect)
		r.Get("/history/{feature}", s.handleHistory)
		r.Delete("/session/{feature}", s.handleReset)
		r.Get("/status", s.handleStatus)
		r.Get("/languages", s.handleLanguages)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready(r.Context()) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// handleTranslate godoc
// @Summary      Translate text
// @Description  Translates text with the session's translator. Source and target default to the session's current languages. With stream=true the response is NDJSON PartialChunk lines.
// @Tags         translate
// @Accept       json
// @Produce      json
// @Produce      application/x-ndjson
// @Param        request  body      types.TranslateRequest  true  "Translation request"
// @Success      200      {object}  types.TranslateResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      409      {object}  types.ErrorResponse
// @Failure      502      {object}  types.ErrorResponse
// @Failure      503      {object}  types.ErrorResponse
// @Router       /translate [post]
func (s *server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req types.TranslateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rl := newRequestLog(r, "translate")
	rl.begin()
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	if req.Stream {
		streamNDJSON(w, r, rl, func(onPartial func(string)) (string, string, error) {
			resp, err := s.svc.Translate(ctx, req, onPartial)
			return resp.ID, resp.Translation, err
		})
		return
	}
	resp, err := s.svc.Translate(ctx, req, nil)
	if err != nil {
		fail(w, r, rl, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
	rl.end(http.StatusOK, nil)
}

// handleSummarize godoc
// @Summary      Summarize text
// @Description  Summarizes text. Type, format and length default to the session's current settings; context is passed as shared context. With stream=true the response is NDJSON PartialChunk lines.
// @Tags         summarize
// @Accept       json
// @Produce      json
// @Produce      application/x-ndjson
// @Param        request  body      types.SummarizeRequest  true  "Summarization request"
// @Success      200      {object}  types.SummarizeResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      409      {object}  types.ErrorResponse
// @Failure      502      {object}  types.ErrorResponse
// @Failure      503      {object}  types.ErrorResponse
// @Router       /summarize [post]
func (s *server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req types.SummarizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rl := newRequestLog(r, "summarize")
	rl.begin()
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	if req.Stream {
		streamNDJSON(w, r, rl, func(onPartial func(string)) (string, string, error) {
			resp, err := s.svc.Summarize(ctx, req, onPartial)
			return resp.ID, resp.Summary, err
		})
		return
	}
	resp, err := s.svc.Summarize(ctx, req, nil)
	if err != nil {
		fail(w, r, rl, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
	rl.end(http.StatusOK, nil)
}

// handleDetect godoc
// @Summary      Detect language
// @Description  Detects the language of text and makes it the translator's source language.
// @Tags         translate
// @Accept       json
// @Produce      json
// @Param        request  body      types.DetectRequest  true  "Detection request"
// @Success      200      {object}  types.DetectResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      422      {object}  types.ErrorResponse
// @Router       /detect [post]
func (s *server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req types.DetectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rl := newRequestLog(r, "detect")
	rl.begin()
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	resp, err := s.svc.Detect(ctx, req.Text)
	if err != nil {
		fail(w, r, rl, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
	rl.end(http.StatusOK, nil)
}

// handleHistory godoc
// @Summary      Invocation history
// @Description  Returns the completed invocations of a feature, newest first.
// @Tags         session
// @Produce      json
// @Param        feature  path      string  true  "translator or summarizer"
// @Success      200      {object}  types.HistoryResponse
// @Failure      404      {object}  types.ErrorResponse
// @Router       /history/{feature} [get]
func (s *server) handleHistory(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.History(chi.URLParam(r, "feature"))
	if err != nil {
		writeJSONError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleReset godoc
// @Summary      Reset a session
// @Description  Retires the live instance of a feature; the next request creates a fresh one.
// @Tags         session
// @Param        feature  path  string  true  "translator or summarizer"
// @Success      204
// @Failure      404  {object}  types.ErrorResponse
// @Router       /session/{feature} [delete]
func (s *server) handleReset(w http.ResponseWriter, r *http.Request) {
	rl := newRequestLog(r, "reset")
	rl.begin()
	if err := s.svc.Reset(r.Context(), chi.URLParam(r, "feature")); err != nil {
		fail(w, r, rl, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	rl.end(http.StatusNoContent, nil)
}

// handleStatus godoc
// @Summary      Session status
// @Description  Per-feature state, download progress, availability and counters.
// @Tags         session
// @Produce      json
// @Success      200  {object}  types.StatusResponse
// @Router       /status [get]
func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Status(r.Context()))
}

// handleLanguages godoc
// @Summary      Supported languages
// @Tags         translate
// @Produce      json
// @Success      200  {array}  types.Language
// @Router       /languages [get]
func (s *server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, translate.Languages)
}

// decodeJSON enforces the content type and body limit, then decodes into v.
// On failure the error response is already written.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// oversize bodies also land here; report 400 without size details
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func clientGone(r *http.Request) bool {
	return r.Context().Err() != nil || serverBaseCtx.Err() != nil
}

// fail writes the mapped error unless the client or server went away.
func fail(w http.ResponseWriter, r *http.Request, rl *requestLog, err error) {
	if clientGone(r) {
		rl.end(499, err)
		return
	}
	status := statusFor(err)
	writeJSONError(w, status, err.Error())
	rl.end(status, err)
}

// streamNDJSON runs an invocation, writing one PartialChunk per partial
// result and a final line with Done set. Errors before the first line are
// plain JSON errors; later ones end the stream with an error line.
func streamNDJSON(w http.ResponseWriter, r *http.Request, rl *requestLog, run func(onPartial func(string)) (id, final string, err error)) {
	var out io.Writer = w
	if rl.lvl >= LevelDebug {
		out = io.MultiWriter(w, &lineLogger{rl: rl})
	}
	enc := json.NewEncoder(out)
	flusher, _ := w.(http.Flusher)
	started := false
	send := func(c types.PartialChunk) {
		if !started {
			w.Header().Set("Content-Type", "application/x-ndjson")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		_ = enc.Encode(c)
		if flusher != nil {
			flusher.Flush()
		}
	}

	id, final, err := run(func(p string) { send(types.PartialChunk{Partial: p}) })
	if err != nil {
		if clientGone(r) {
			rl.end(499, err)
			return
		}
		status := statusFor(err)
		if !started {
			writeJSONError(w, status, err.Error())
		} else {
			send(types.PartialChunk{Done: true, Error: err.Error(), Code: status})
		}
		rl.end(status, err)
		return
	}
	send(types.PartialChunk{Done: true, ID: id, Final: final, Partial: final})
	rl.end(http.StatusOK, nil)
}
