package mock

import (
	"errors"
	"strings"
	"unicode"

	"lingod/internal/capability"
)

var errDestroyed = errors.New("instance destroyed")

// fragments splits s into word-sized pieces that concatenate back to s.
func fragments(s string) []string {
	var out []string
	start := 0
	for i, r := range s {
		if unicode.IsSpace(r) && i > start {
			out = append(out, s[start:i])
			start = i
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func translate(cfg capability.TranslatorOptions, input, _ string) string {
	return "[" + cfg.SourceLanguage + "->" + cfg.TargetLanguage + "] " + strings.TrimSpace(input)
}

// sentences splits on terminal punctuation, keeping it.
func sentences(text string) []string {
	var out []string
	var b strings.Builder
	for _, r := range strings.TrimSpace(text) {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(b.String()); s != "" {
				out = append(out, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		out = append(out, s)
	}
	return out
}

func summarize(cfg capability.SummarizerOptions, input, _ string) string {
	ss := sentences(input)
	n := 2
	switch cfg.Length {
	case capability.LengthShort:
		n = 1
	case capability.LengthLong:
		n = 3
	}
	if n > len(ss) {
		n = len(ss)
	}
	picked := ss[:n]
	switch cfg.Type {
	case capability.SummaryKeyPoints:
		bullet := "- "
		if cfg.Format == capability.FormatPlainText {
			bullet = "* "
		}
		lines := make([]string, len(picked))
		for i, s := range picked {
			lines[i] = bullet + s
		}
		return strings.Join(lines, "\n")
	case capability.SummaryHeadline:
		if len(picked) == 0 {
			return ""
		}
		h := strings.TrimRight(picked[0], ".!?")
		if cfg.Format == capability.FormatMarkdown {
			return "# " + h
		}
		return h
	case capability.SummaryTeaser:
		return strings.Join(picked, " ") + " ..."
	default:
		return "TL;DR: " + strings.Join(picked, " ")
	}
}
