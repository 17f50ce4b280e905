// Package jsonfile stores the whole document as one JSON file.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/wadjakorntonsri/shortly/pkg/core/domain"
)

type JSONFileRepository struct {
	path string
}

func NewJSONFileRepository(path string) (*JSONFileRepository, error) {
	if path == "" {
		return nil, errors.New("jsonfile: empty path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("jsonfile: create dir: %w", err)
		}
	}
	return &JSONFileRepository{path: path}, nil
}

// Load reads the document. A missing file is an empty document.
func (r *JSONFileRepository) Load(ctx context.Context) (*domain.State, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("jsonfile: read: %w", err)
	}

	state := domain.NewState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("jsonfile: decode %s: %w", r.path, err)
	}
	return state.Normalize(), nil
}

// Save writes the document to a temp file next to the target, syncs it
// and renames it over the target, so readers never see a partial file.
func (r *JSONFileRepository) Save(ctx context.Context, state *domain.State) error {
	data, err := json.MarshalIndent(state.Normalize(), "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("jsonfile: create temp: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("jsonfile: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("jsonfile: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("jsonfile: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("jsonfile: rename: %w", err)
	}
	return nil
}

func (r *JSONFileRepository) Close() error { return nil }
