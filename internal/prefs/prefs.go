package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const prefsFile = "prefs.json"

// Store is a small string key/value file, the terminal stand-in for the
// mobile app's async storage.
type Store struct {
	path string
}

// NewStore uses the file at path; it is created on first Set.
func NewStore(path string) *Store { return &Store{path: path} }

// Default opens the per-user store under the OS config dir.
func Default() (*Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return NewStore(filepath.Join(dir, "clinicdesk", prefsFile)), nil
}

func (s *Store) Path() string { return s.path }

// Get returns the stored value for key. A missing file or key is not an error.
func (s *Store) Get(key string) (string, bool, error) {
	values, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (s *Store) Set(key, value string) error {
	values, err := s.load()
	if err != nil {
		// a corrupt file is replaced rather than blocking every write
		values = map[string]string{}
	}
	values[key] = value
	return s.save(values)
}

func (s *Store) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return values, nil
}

func (s *Store) save(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
