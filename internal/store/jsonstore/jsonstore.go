package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/uuid"

	"github.com/idilsaglam/checklist/internal/model"
	"github.com/idilsaglam/checklist/internal/store"
)

// JSON-backed storage. Single file, human-readable, portable.
// Each commit rewrites the whole file through a temp file + rename, so a
// crash leaves either the old or the new collection on disk.

// FileName is the container name inside the data directory.
const FileName = "checklist.json"

// File is a store.Backend over one JSON document.
type File struct {
	path string
}

var _ store.Backend = (*File)(nil)

// Open returns a backend for path. The file is created on first commit;
// its directory must exist or be creatable.
func Open(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	return &File{path: path}, nil
}

// Path returns the backing file path.
func (f *File) Path() string { return f.path }

func (f *File) Load(context.Context) ([]model.Item, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Item{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	var items []model.Item
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if items == nil {
		items = []model.Item{}
	}
	slices.SortFunc(items, model.Compare)
	return items, nil
}

func (f *File) Commit(ctx context.Context, cs store.Changeset) error {
	current, err := f.Load(ctx)
	if err != nil {
		return err
	}

	byID := make(map[uuid.UUID]int, len(current))
	for i, it := range current {
		byID[it.ID] = i
	}
	for _, it := range cs.Upserts {
		if i, ok := byID[it.ID]; ok {
			current[i].Name = it.Name
			current[i].IsChecked = it.IsChecked
			continue
		}
		byID[it.ID] = len(current)
		current = append(current, it)
	}
	if len(cs.Deletes) > 0 {
		gone := make(map[uuid.UUID]struct{}, len(cs.Deletes))
		for _, id := range cs.Deletes {
			gone[id] = struct{}{}
		}
		current = slices.DeleteFunc(current, func(it model.Item) bool {
			_, ok := gone[it.ID]
			return ok
		})
	}
	slices.SortFunc(current, model.Compare)
	return f.write(current)
}

func (f *File) Close() error { return nil }

func (f *File) write(items []model.Item) error {
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".checklist-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if err := Encode(tmp, items); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// Encode writes items as an indented JSON array.
func Encode(w io.Writer, items []model.Item) error {
	if items == nil {
		items = []model.Item{}
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	b = append(b, '\n')
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
