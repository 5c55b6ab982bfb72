// Package config persists named settings profiles. The primary format is a
// versioned JSON document; INI import and export exist for interoperability
// with hand-edited files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
)

// ErrNotFound is returned when a named profile does not exist.
var ErrNotFound = errors.New("settings profile not found")

const (
	storeVersion = "1.0"
	createdBy    = "speakdoc"
)

// document is the on-disk JSON shape. Older files may be a bare settings
// map; Load accepts both.
type document struct {
	Version   string         `json:"version"`
	Settings  map[string]any `json:"settings"`
	CreatedBy string         `json:"created_by"`
}

// Store persists settings profiles as JSON files under a directory.
type Store struct {
	dir string
}

// NewStore opens a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create settings dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// DefaultStore opens the store in the user's data directory.
func DefaultStore() (*Store, error) {
	scope := gap.NewScope(gap.User, "speakdoc")
	dir, err := scope.DataPath("profiles")
	if err != nil {
		return nil, fmt.Errorf("locate settings dir: %w", err)
	}
	return NewStore(dir)
}

// DefaultSettings returns the out-of-the-box settings map.
func DefaultSettings() map[string]any {
	return map[string]any{
		"voice_id":             0,
		"rate":                 200.0,
		"volume":               0.9,
		"chunk_size":           1000,
		"pause_between_chunks": 0.5,
	}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Save writes a named profile. Values that are not JSON primitives are
// coerced to strings so a profile can always be written, whatever callers
// put in the map.
func (s *Store) Save(name string, settings map[string]any) error {
	doc := document{
		Version:   storeVersion,
		Settings:  make(map[string]any, len(settings)),
		CreatedBy: createdBy,
	}
	for k, v := range settings {
		switch v.(type) {
		case nil, bool, string, int, int64, float32, float64:
			doc.Settings[k] = v
		default:
			doc.Settings[k] = fmt.Sprintf("%v", v)
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(s.path(name), data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	log.Info("settings saved", "profile", name, "keys", len(doc.Settings))
	return nil
}

// Load reads a named profile. Both the versioned document shape and a legacy
// bare settings map are accepted.
func (s *Store) Load(name string) (map[string]any, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err == nil && doc.Settings != nil {
		return doc.Settings, nil
	}

	var bare map[string]any
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil, fmt.Errorf("decode settings %s: %w", name, err)
	}
	return bare, nil
}

// List returns the saved profile names, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a named profile.
func (s *Store) Delete(name string) error {
	if err := os.Remove(s.path(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("delete settings: %w", err)
	}
	return nil
}

// Export copies a named profile to an arbitrary destination path.
func (s *Store) Export(name, dst string) error {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("export settings: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("export settings: %w", err)
	}
	return nil
}

// Dir returns the directory profiles are stored in.
func (s *Store) Dir() string { return s.dir }
