// Package filerepo persists session slots as a JSON document on disk.
package filerepo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-bank-session/sessions"
)

var _ sessions.Repo = (*FileRepo)(nil)

// FileRepo keeps all slots in a single 0600 JSON file. Writes go through a
// temporary file and a rename so readers never observe a partial document.
type FileRepo struct {
	path string
	lock sync.Mutex
}

// New returns a FileRepo at path, creating the parent directory with 0700.
func New(path string) (*FileRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &FileRepo{path: path}, nil
}

func (r *FileRepo) Path() string {
	return r.path
}

func (r *FileRepo) Get(key string) (string, bool, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	slots, err := r.load()
	if err != nil {
		return "", false, err
	}
	v, ok := slots[key]
	return v, ok, nil
}

func (r *FileRepo) Put(values map[string]string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	slots, err := r.load()
	if err != nil {
		// An unreadable document is replaced rather than blocking new credentials.
		slots = make(map[string]string)
	}
	for k, v := range values {
		slots[k] = v
	}
	return r.save(slots)
}

func (r *FileRepo) Delete(keys ...string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	slots, err := r.load()
	if err != nil {
		return r.remove()
	}
	for _, k := range keys {
		delete(slots, k)
	}
	if len(slots) == 0 {
		return r.remove()
	}
	return r.save(slots)
}

func (r *FileRepo) load() (map[string]string, error) {
	slots := make(map[string]string)
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return slots, nil
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	if len(data) == 0 {
		return slots, nil
	}
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session file: %w", err)
	}
	return slots, nil
}

func (r *FileRepo) save(slots map[string]string) error {
	data, err := json.MarshalIndent(slots, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".session-*")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod temp session file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp session file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

func (r *FileRepo) remove() error {
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}
