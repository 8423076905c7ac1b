package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lingod/internal/capability"
	"lingod/internal/manager"
	"lingod/internal/summarize"
	"lingod/pkg/types"
)

// requestError is a caller mistake the HTTP layer reports with Status.
type requestError struct {
	msg    string
	status int
}

func (e requestError) Error() string   { return e.msg }
func (e requestError) StatusCode() int { return e.status }

func badRequest(format string, args ...any) error {
	return requestError{msg: fmt.Sprintf(format, args...), status: 400}
}

// ErrUnknownFeature is returned for a feature name that is neither the
// translator nor the summarizer.
func ErrUnknownFeature(name string) error {
	return requestError{msg: fmt.Sprintf("unknown feature %q", name), status: 404}
}

// Feature names accepted in URLs. Both the capability name and the verb work.
func canonicalFeature(name string) (string, bool) {
	switch strings.ToLower(name) {
	case "translator", "translate":
		return capability.NameTranslator, true
	case "summarizer", "summarize":
		return capability.NameSummarizer, true
	}
	return "", false
}

// Translate runs req with the session's form config overridden by the
// request's languages.
func (a *App) Translate(ctx context.Context, req types.TranslateRequest, onPartial func(string)) (types.TranslateResponse, error) {
	cfg := a.Translator.State().Config
	if req.Source != "" {
		cfg.SourceLanguage = capability.PrimaryTag(req.Source)
	}
	if req.Target != "" {
		cfg.TargetLanguage = capability.PrimaryTag(req.Target)
	}
	if cfg.SourceLanguage == "" || cfg.TargetLanguage == "" {
		return types.TranslateResponse{}, badRequest("source and target languages are required")
	}
	res, err := a.Translator.Translate(ctx, cfg, req.Text, manager.ParseMode(req.Stream), onPartial)
	if err != nil {
		return types.TranslateResponse{}, err
	}
	return types.TranslateResponse{
		ID:          res.ID,
		Source:      cfg.SourceLanguage,
		Target:      cfg.TargetLanguage,
		Translation: res.Final,
	}, nil
}

// Summarize runs req with the session's form config overridden by the
// request's options.
func (a *App) Summarize(ctx context.Context, req types.SummarizeRequest, onPartial func(string)) (types.SummarizeResponse, error) {
	cfg, err := summarizeConfig(a.Summarizer.State().Config, req)
	if err != nil {
		return types.SummarizeResponse{}, err
	}
	res, err := a.Summarizer.Summarize(ctx, cfg, req.Text, manager.ParseMode(req.Stream), onPartial)
	if err != nil {
		return types.SummarizeResponse{}, err
	}
	return types.SummarizeResponse{
		ID:      res.ID,
		Type:    string(cfg.Type),
		Format:  string(cfg.Format),
		Length:  string(cfg.Length),
		Summary: res.Final,
	}, nil
}

func summarizeConfig(cfg summarize.Config, req types.SummarizeRequest) (summarize.Config, error) {
	if req.Type != "" {
		t, ok := capability.ParseSummaryType(req.Type)
		if !ok {
			return cfg, badRequest("unknown summary type %q", req.Type)
		}
		cfg.Type = t
	}
	switch f := capability.SummaryFormat(strings.ToLower(req.Format)); f {
	case "":
	case capability.FormatPlainText, capability.FormatMarkdown:
		cfg.Format = f
	default:
		return cfg, badRequest("unknown summary format %q", req.Format)
	}
	switch l := capability.SummaryLength(strings.ToLower(req.Length)); l {
	case "":
	case capability.LengthShort, capability.LengthMedium, capability.LengthLong:
		cfg.Length = l
	default:
		return cfg, badRequest("unknown summary length %q", req.Length)
	}
	if c := strings.TrimSpace(req.Context); c != "" {
		cfg.SharedContext = c
	}
	return cfg, nil
}

// Detect classifies text and makes the result the translator's source
// language.
func (a *App) Detect(ctx context.Context, text string) (types.DetectResponse, error) {
	if strings.TrimSpace(text) == "" {
		return types.DetectResponse{}, manager.ErrEmptyInput(capability.NameLanguageDetector)
	}
	d, err := a.Translator.DetectText(ctx, text)
	if err != nil {
		return types.DetectResponse{}, err
	}
	return types.DetectResponse{Language: d.Language, Confidence: d.Confidence}, nil
}

// History lists the completed invocations of a feature, newest first.
func (a *App) History(feature string) (types.HistoryResponse, error) {
	name, ok := canonicalFeature(feature)
	if !ok {
		return types.HistoryResponse{}, ErrUnknownFeature(feature)
	}
	resp := types.HistoryResponse{Feature: name, Entries: []types.HistoryEntry{}}
	switch name {
	case capability.NameTranslator:
		for _, e := range a.Translator.Manager().History().Entries() {
			resp.Entries = append(resp.Entries, historyEntry(e.ID, e.Config.Fields(), e.Input, e.Output, e.CompletedAt))
		}
	case capability.NameSummarizer:
		for _, e := range a.Summarizer.Manager().History().Entries() {
			resp.Entries = append(resp.Entries, historyEntry(e.ID, e.Config.Fields(), e.Input, e.Output, e.CompletedAt))
		}
	}
	return resp, nil
}

func historyEntry(id string, cfg map[string]string, in, out string, at time.Time) types.HistoryEntry {
	return types.HistoryEntry{ID: id, Config: cfg, Input: in, Output: out, CompletedAtMs: at.UnixMilli()}
}

// Reset retires the live handle of a feature; the next invocation creates a
// fresh one.
func (a *App) Reset(ctx context.Context, feature string) error {
	name, ok := canonicalFeature(feature)
	if !ok {
		return ErrUnknownFeature(feature)
	}
	if name == capability.NameTranslator {
		return a.Translator.Manager().Reset(ctx)
	}
	return a.Summarizer.Manager().Reset(ctx)
}

// Status reports both sessions.
func (a *App) Status(ctx context.Context) types.StatusResponse {
	return types.StatusResponse{
		Features: []types.FeatureStatus{
			a.Translator.Manager().Status(ctx),
			a.Summarizer.Manager().Status(ctx),
		},
		DetectorAvailable: a.reg.Has(capability.NameLanguageDetector),
		UptimeSeconds:     int64(time.Since(a.started).Seconds()),
		ServerTimeUnix:    time.Now().Unix(),
	}
}

// Ready reports whether at least one feature is usable and the host answers.
func (a *App) Ready(ctx context.Context) bool {
	if !a.Translator.Supported() && !a.Summarizer.Supported() {
		return false
	}
	if a.Translator.Manager().Snapshot().Closed && a.Summarizer.Manager().Snapshot().Closed {
		return false
	}
	if a.probe == nil {
		return true
	}
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := a.probe(pctx); err != nil {
		a.log.Debug().Err(err).Msg("readiness probe failed")
		return false
	}
	return true
}
