// Package prompt builds the instructions sent to generative backends.
package prompt

import (
	"fmt"
	"strings"

	"lingod/internal/capability"
)

// Translator instructs a model to translate between the configured languages.
func Translator(c capability.TranslatorOptions) string {
	return fmt.Sprintf("Translate the user's text from %s to %s. Reply with the translation only, without notes or quotes.",
		c.SourceLanguage, c.TargetLanguage)
}

// Summarizer instructs a model to summarize in the configured style.
func Summarizer(c capability.SummarizerOptions) string {
	var b strings.Builder
	switch c.Type {
	case capability.SummaryKeyPoints:
		b.WriteString("Summarize the user's text as a list of key points.")
	case capability.SummaryTeaser:
		b.WriteString("Write a teaser that makes the reader want to read the user's text.")
	case capability.SummaryHeadline:
		b.WriteString("Write a single headline for the user's text.")
	default:
		fmt.Fprintf(&b, "Write a %s summary of the user's text.", c.Type.HostName())
	}
	switch c.Length {
	case capability.LengthShort:
		b.WriteString(" Keep it short.")
	case capability.LengthLong:
		b.WriteString(" It may be long.")
	default:
		b.WriteString(" Use a medium length.")
	}
	if c.Format == capability.FormatMarkdown {
		b.WriteString(" Format the answer as Markdown.")
	} else {
		b.WriteString(" Answer in plain text without markup.")
	}
	if ctx := strings.TrimSpace(c.SharedContext); ctx != "" {
		b.WriteString(" Background: ")
		b.WriteString(ctx)
	}
	return b.String()
}

// Detector asks for ranked language candidates as JSON.
const Detector = `Identify the language of the user's text. Reply with JSON only, shaped as ` +
	`[{"language":"<BCP 47 tag>","confidence":<0..1>}], most likely first.`
