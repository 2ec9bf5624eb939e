// Package settings is the persistence layer for per-device calibration
// documents: a key-path-addressable store with typed reads that fall back to
// a caller-supplied default, backed by one TOML document per device config.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml"
)

// Store is a key-path-addressable settings document. Keys use dotted paths
// ("Calibration.Accel.Gain"). A Store is not safe for concurrent use; each
// device session owns its store exclusively.
type Store struct {
	path string
	tree *toml.Tree
}

// Open loads the document at path. A missing file yields an empty store
// bound to the path, so the first Save creates it.
func Open(path string) (*Store, error) {
	tree, err := toml.LoadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Store{path: path, tree: emptyTree()}, nil
		}
		return nil, fmt.Errorf("settings: load %s: %w", path, err)
	}
	return &Store{path: path, tree: tree}, nil
}

// NewMemory returns an unbound in-memory store. Save is a no-op.
func NewMemory() *Store {
	return &Store{tree: emptyTree()}
}

func emptyTree() *toml.Tree {
	tree, err := toml.TreeFromMap(map[string]interface{}{})
	if err != nil {
		panic("settings: empty tree: " + err.Error())
	}
	return tree
}

// Path returns the file the store is bound to, or "" for in-memory stores.
func (s *Store) Path() string { return s.path }

// Has reports whether the key is present in the document.
func (s *Store) Has(key string) bool { return s.tree.Has(key) }

// Bool reads a boolean, returning def when the key is absent or mistyped.
func (s *Store) Bool(key string, def bool) bool {
	if v, ok := s.tree.Get(key).(bool); ok {
		return v
	}
	return def
}

// Int reads an integer, returning def when the key is absent or mistyped.
func (s *Store) Int(key string, def int) int {
	if v, ok := s.tree.Get(key).(int64); ok {
		return int(v)
	}
	return def
}

// Float reads a float, returning def when the key is absent or mistyped.
// Integer-typed values are widened, so "Gain = 1" reads back as 1.0.
func (s *Store) Float(key string, def float64) float64 {
	switch v := s.tree.Get(key).(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		return def
	}
}

// String reads a string, returning def when the key is absent or mistyped.
func (s *Store) String(key string, def string) string {
	if v, ok := s.tree.Get(key).(string); ok {
		return v
	}
	return def
}

// Set writes a value under the dotted key path, creating intermediate
// tables as needed.
func (s *Store) Set(key string, value interface{}) {
	s.tree.Set(key, value)
}

// Save serializes the document back to its file. In-memory stores return
// nil without writing.
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("settings: save %s: %w", s.path, err)
	}
	if err := os.WriteFile(s.path, []byte(s.tree.String()), 0o644); err != nil {
		return fmt.Errorf("settings: save %s: %w", s.path, err)
	}
	return nil
}
