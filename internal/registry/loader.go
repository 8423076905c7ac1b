package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"lingod/internal/common/fsutil"
	"lingod/pkg/types"
)

var quantRe = regexp.MustCompile(`(?i)[._-](q\d(?:_[a-z0-9]+)*|f16|f32|bf16)$`)

// LoadDir scans a directory for *.gguf files usable by the in-process
// backend. ID is the filename without extension; Quant is taken from a
// trailing quantization suffix when present.
func LoadDir(dir string) ([]types.Model, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.Model
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if !strings.EqualFold(ext, ".gguf") {
			continue
		}
		id := strings.TrimSuffix(name, ext)
		mdl := types.Model{ID: id, Name: id, Path: filepath.Join(abs, name)}
		if m := quantRe.FindStringSubmatch(id); m != nil {
			mdl.Quant = strings.ToUpper(m[1])
		}
		models = append(models, mdl)
	}
	return models, nil
}

// Resolve picks a model by ID, or the first one when id is empty.
func Resolve(models []types.Model, id string) (types.Model, bool) {
	for _, m := range models {
		if id == "" || m.ID == id || filepath.Base(m.Path) == id {
			return m, true
		}
	}
	return types.Model{}, false
}
