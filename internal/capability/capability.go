package capability

import "context"

// Capability names as reported by a Registry.
const (
	NameTranslator       = "Translator"
	NameSummarizer       = "Summarizer"
	NameLanguageDetector = "LanguageDetector"
)

// Availability is the informational answer of a provider about a config.
// The session manager never gates creation on it.
type Availability string

const (
	AvailabilityUnavailable   Availability = "unavailable"
	AvailabilityDownloadable  Availability = "downloadable"
	AvailabilityDownloading   Availability = "downloading"
	AvailabilityAfterDownload Availability = "after-download"
	AvailabilityReadily       Availability = "readily"
	AvailabilityAvailable     Availability = "available"
	AvailabilityNo            Availability = "no"
)

// Usable reports whether the value means the capability can be created
// without a download.
func (a Availability) Usable() bool {
	return a == AvailabilityReadily || a == AvailabilityAvailable
}

// Provider is the ambient factory for one capability kind.
type Provider[C comparable] interface {
	// Availability is informational only.
	Availability(ctx context.Context, cfg C) (Availability, error)
	// Create builds an instance for cfg. If opts.Monitor is set it is called
	// once, before any progress is dispatched, with the event target the
	// provider will report download progress on.
	Create(ctx context.Context, cfg C, opts CreateOptions) (Instance, error)
}

// CreateOptions carries creation-time hooks.
type CreateOptions struct {
	Monitor func(*Monitor)
}

// PromptOptions are per-call options. Context is extra shared context some
// capabilities (summarizer) accept alongside the input.
type PromptOptions struct {
	Context string
}

// Instance is a live, host-provided capability.
type Instance interface {
	// Prompt runs the capability once and returns the whole output.
	Prompt(ctx context.Context, input string, opts PromptOptions) (string, error)
	// PromptStreaming returns a pull-based fragment sequence.
	PromptStreaming(ctx context.Context, input string, opts PromptOptions) (Stream, error)
	// Destroy releases the instance. Callers treat errors as best-effort.
	Destroy() error
}

// Stream is a pull-based sequence of text fragments.
type Stream interface {
	// Next returns the next fragment. ok is false once the sequence is done.
	Next(ctx context.Context) (fragment string, ok bool, err error)
	// Close abandons the stream. Safe to call after completion.
	Close() error
}

// Detection is one candidate language with its confidence in [0,1].
type Detection struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

// Detector is the secondary capability managed by the translation feature.
type Detector interface {
	// Ready blocks until the detector model is usable.
	Ready(ctx context.Context) error
	// Detect returns candidates ordered by confidence, highest first.
	Detect(ctx context.Context, text string) ([]Detection, error)
	Destroy() error
}

// DetectorProvider creates detectors.
type DetectorProvider interface {
	Create(ctx context.Context) (Detector, error)
}
