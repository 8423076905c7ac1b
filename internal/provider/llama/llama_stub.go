//go:build !llama

package llama

// Default builds stay CGO-free; creations fail with ErrNotBuilt.

var llamaBuilt = false

func load(path string, opts Options) (runner, error) {
	return nil, ErrNotBuilt
}
