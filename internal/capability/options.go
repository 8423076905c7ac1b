package capability

import "strings"

// TranslatorOptions configures a translator instance. Values are compared
// with == to decide reuse.
type TranslatorOptions struct {
	SourceLanguage string `json:"source_language" yaml:"source_language" toml:"source_language"`
	TargetLanguage string `json:"target_language" yaml:"target_language" toml:"target_language"`
}

// SummaryType is the style of summary requested.
type SummaryType string

const (
	SummaryTLDR      SummaryType = "tl;dr"
	SummaryKeyPoints SummaryType = "key-points"
	SummaryTeaser    SummaryType = "teaser"
	SummaryHeadline  SummaryType = "headline"
)

// HostName returns the identifier hosts expect; "tl;dr" is spelled "tldr".
func (t SummaryType) HostName() string {
	if t == SummaryTLDR {
		return "tldr"
	}
	return string(t)
}

// ParseSummaryType accepts both the display and host spelling.
func ParseSummaryType(s string) (SummaryType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tl;dr", "tldr":
		return SummaryTLDR, true
	case "key-points", "keypoints":
		return SummaryKeyPoints, true
	case "teaser":
		return SummaryTeaser, true
	case "headline":
		return SummaryHeadline, true
	}
	return "", false
}

// SummaryFormat is the output markup.
type SummaryFormat string

const (
	FormatPlainText SummaryFormat = "plain-text"
	FormatMarkdown  SummaryFormat = "markdown"
)

// SummaryLength is the requested output length.
type SummaryLength string

const (
	LengthShort  SummaryLength = "short"
	LengthMedium SummaryLength = "medium"
	LengthLong   SummaryLength = "long"
)

// SummarizerOptions configures a summarizer instance.
type SummarizerOptions struct {
	Type          SummaryType   `json:"type" yaml:"type" toml:"type"`
	Format        SummaryFormat `json:"format" yaml:"format" toml:"format"`
	Length        SummaryLength `json:"length" yaml:"length" toml:"length"`
	SharedContext string        `json:"shared_context,omitempty" yaml:"shared_context" toml:"shared_context"`
}

// PrimaryTag reduces a BCP 47 tag to its lowercase primary subtag
// ("en-US" -> "en"). Empty input yields "".
func PrimaryTag(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}

// Fields renders the options for status and history payloads.
func (o TranslatorOptions) Fields() map[string]string {
	return map[string]string{"source": o.SourceLanguage, "target": o.TargetLanguage}
}

func (o SummarizerOptions) Fields() map[string]string {
	f := map[string]string{
		"type":   string(o.Type),
		"format": string(o.Format),
		"length": string(o.Length),
	}
	if o.SharedContext != "" {
		f["context"] = o.SharedContext
	}
	return f
}
