package types

// TranslateRequest is the payload of POST /translate.
type TranslateRequest struct {
	// Text to translate. Whitespace-only text is rejected.
	// example: Hello, how are you?
	Text string `json:"text" example:"Hello, how are you?"`
	// Source language tag. Empty keeps the session's current source.
	// example: en
	Source string `json:"source,omitempty" example:"en"`
	// Target language tag. Empty keeps the session's current target.
	// example: es
	Target string `json:"target,omitempty" example:"es"`
	// If true, partial results are streamed as NDJSON lines.
	// example: true
	Stream bool `json:"stream,omitempty" example:"true"`
}

// TranslateResponse is returned by a non-streaming POST /translate.
type TranslateResponse struct {
	// Invocation identifier, also used by history entries.
	ID string `json:"id"`
	// example: en
	Source string `json:"source" example:"en"`
	// example: es
	Target string `json:"target" example:"es"`
	// example: Hola, ¿cómo estás?
	Translation string `json:"translation" example:"Hola, ¿cómo estás?"`
}

// SummarizeRequest is the payload of POST /summarize.
type SummarizeRequest struct {
	// Text to summarize.
	Text string `json:"text"`
	// One of key-points, tl;dr, teaser, headline.
	// example: tl;dr
	Type string `json:"type,omitempty" example:"tl;dr"`
	// One of plain-text, markdown.
	// example: plain-text
	Format string `json:"format,omitempty" example:"plain-text"`
	// One of short, medium, long.
	// example: medium
	Length string `json:"length,omitempty" example:"medium"`
	// Optional shared context guiding the summarizer. Empty keeps the
	// session's current context.
	Context string `json:"context,omitempty"`
	// If true, partial results are streamed as NDJSON lines.
	Stream bool `json:"stream,omitempty"`
}

// SummarizeResponse is returned by a non-streaming POST /summarize.
type SummarizeResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Format  string `json:"format"`
	Length  string `json:"length"`
	Summary string `json:"summary"`
}

// PartialChunk is one NDJSON line of a streaming response. The last line has
// Done set and carries the final text (or an error).
type PartialChunk struct {
	// Accumulated text so far.
	Partial string `json:"partial,omitempty"`
	// example: false
	Done bool `json:"done"`
	// Invocation id; set on the final line.
	ID    string `json:"id,omitempty"`
	Final string `json:"final,omitempty"`
	Error string `json:"error,omitempty"`
	Code  int    `json:"code,omitempty"`
}

// DetectRequest is the payload of POST /detect.
type DetectRequest struct {
	// example: Bonjour tout le monde
	Text string `json:"text" example:"Bonjour tout le monde"`
}

// DetectResponse reports the detected source language.
type DetectResponse struct {
	// Primary language subtag.
	// example: fr
	Language string `json:"language" example:"fr"`
	// Confidence in [0,1].
	// example: 0.97
	Confidence float64 `json:"confidence" example:"0.97"`
}

// HistoryEntry is one completed invocation, newest first in HistoryResponse.
type HistoryEntry struct {
	ID     string            `json:"id"`
	Config map[string]string `json:"config"`
	Input  string            `json:"input"`
	Output string            `json:"output"`
	// Completion time (unix milliseconds).
	CompletedAtMs int64 `json:"completed_at_ms"`
}

// HistoryResponse is returned by GET /history/{feature}.
type HistoryResponse struct {
	// example: translator
	Feature string         `json:"feature" example:"translator"`
	Entries []HistoryEntry `json:"entries"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// FeatureStatus summarizes one capability session for /status.
type FeatureStatus struct {
	// example: translator
	Feature string `json:"feature" example:"translator"`
	// Lifecycle state (idle, creating, ready, retiring).
	// example: ready
	State string `json:"state" example:"ready"`
	// Configuration of the live handle, if any.
	Config map[string]string `json:"config,omitempty"`
	// True while a model download is in progress.
	DownloadActive bool `json:"download_active"`
	// Download progress in [0,100].
	// example: 100
	DownloadPercent float64 `json:"download_percent" example:"100"`
	// Whether the model became ready at least once in this session.
	ModelReady bool `json:"model_ready"`
	// Host-reported availability (informational).
	// example: readily
	Availability string `json:"availability,omitempty" example:"readily"`
	// Whether an invocation currently holds the handle.
	Busy bool `json:"busy"`
	// example: 3
	HistoryLen int `json:"history_len" example:"3"`
	// example: 1
	CreationsTotal uint64 `json:"creations_total" example:"1"`
	// example: 3
	InvocationsTotal uint64 `json:"invocations_total" example:"3"`
	Closed           bool   `json:"closed,omitempty"`
	// Last error observed by the session (if any).
	LastError string `json:"last_error,omitempty"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	Features []FeatureStatus `json:"features"`
	// Whether a language detector is registered.
	DetectorAvailable bool `json:"detector_available"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
