package mock

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync/atomic"
	"unicode"

	"lingod/internal/capability"
)

// stopwords is a tiny per-language vocabulary used for guessing.
var stopwords = map[string][]string{
	"en-US": {"the", "and", "is", "are", "of", "to", "you", "hello", "how", "what"},
	"es-ES": {"el", "la", "los", "las", "y", "es", "que", "de", "hola", "cómo"},
	"fr-FR": {"le", "la", "les", "et", "est", "que", "de", "bonjour", "vous", "je"},
	"de-DE": {"der", "die", "das", "und", "ist", "nicht", "ich", "hallo", "wie", "sie"},
	"it-IT": {"il", "lo", "gli", "e", "è", "che", "di", "ciao", "come", "sono"},
	"pt-BR": {"o", "os", "e", "é", "que", "de", "não", "olá", "você", "como"},
}

// Detector returns the language detector provider.
func (e *Environment) Detector() capability.DetectorProvider {
	return detectorProvider{env: e}
}

type detectorProvider struct{ env *Environment }

func (p detectorProvider) Create(ctx context.Context) (capability.Detector, error) {
	if err := p.env.takeFailure(); err != nil {
		return nil, err
	}
	p.env.live.Add(1)
	return &detector{env: p.env}, nil
}

type detector struct {
	env       *Environment
	destroyed atomic.Bool
}

func (d *detector) Ready(ctx context.Context) error {
	return sleep(ctx, d.env.opts.StepDelay)
}

func (d *detector) Detect(ctx context.Context, text string) ([]capability.Detection, error) {
	if d.destroyed.Load() {
		return nil, errDestroyed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if len(words) == 0 {
		return nil, errors.New("no words to classify")
	}
	var out []capability.Detection
	for tag, vocab := range stopwords {
		hits := 0
		for _, w := range words {
			if slices.Contains(vocab, w) {
				hits++
			}
		}
		if hits > 0 {
			out = append(out, capability.Detection{Language: tag, Confidence: float64(hits) / float64(len(words))})
		}
	}
	slices.SortFunc(out, func(a, b capability.Detection) int {
		switch {
		case a.Confidence > b.Confidence:
			return -1
		case a.Confidence < b.Confidence:
			return 1
		}
		return strings.Compare(a.Language, b.Language)
	})
	return out, nil
}

func (d *detector) Destroy() error {
	if d.destroyed.CompareAndSwap(false, true) {
		d.env.live.Add(-1)
	}
	return nil
}
