// load.go resolves an on-disk model artifact directory into a Model.

package goencodec

import (
	"path/filepath"

	"github.com/thesyncim/goencodec/safetensors"
)

// LoadModel loads a codec from a local artifact directory containing
// config.json and model.safetensors. It performs no network access or
// caching; fetching artifacts is the caller's concern.
func LoadModel(dir string) (*Model, error) {
	cfg, err := LoadConfig(filepath.Join(dir, "config.json"))
	if err != nil {
		return nil, err
	}
	weights, err := safetensors.ReadFile(filepath.Join(dir, "model.safetensors"))
	if err != nil {
		return nil, err
	}
	return NewModel(cfg, weights)
}
