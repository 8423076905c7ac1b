package llamaserver

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"lingod/internal/capability"
	"lingod/internal/provider/prompt"
)

// Detector returns a language detector that asks the server to classify
// the text.
func (b *Backend) Detector() capability.DetectorProvider { return detectorProvider{b: b} }

type detectorProvider struct{ b *Backend }

func (p detectorProvider) Create(ctx context.Context) (capability.Detector, error) {
	return &detector{session: session{b: p.b, system: prompt.Detector}}, nil
}

type detector struct {
	session
}

func (d *detector) Ready(ctx context.Context) error {
	if err := d.b.fetchModel(ctx, capability.NewMonitor()); err != nil {
		return err
	}
	return d.b.Health(ctx)
}

func (d *detector) Detect(ctx context.Context, text string) ([]capability.Detection, error) {
	out, err := d.Prompt(ctx, text, capability.PromptOptions{})
	if err != nil {
		return nil, err
	}
	return parseDetections(out)
}

// parseDetections accepts a JSON array or a single object, optionally
// wrapped in a Markdown code fence.
func parseDetections(raw string) ([]capability.Detection, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	var list []capability.Detection
	if err := json.Unmarshal([]byte(s), &list); err != nil {
		var one capability.Detection
		if err2 := json.Unmarshal([]byte(s), &one); err2 != nil {
			return nil, fmt.Errorf("unparseable detection %q: %w", raw, err)
		}
		list = []capability.Detection{one}
	}
	list = slices.DeleteFunc(list, func(d capability.Detection) bool { return strings.TrimSpace(d.Language) == "" })
	slices.SortStableFunc(list, func(a, b capability.Detection) int {
		switch {
		case a.Confidence > b.Confidence:
			return -1
		case a.Confidence < b.Confidence:
			return 1
		}
		return 0
	})
	return list, nil
}
