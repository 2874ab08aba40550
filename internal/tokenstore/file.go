package tokenstore

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FileStore persists values to a YAML file. Every write replaces the file atomically.
type FileStore struct {
	mu     sync.RWMutex
	path   string
	values map[string]string
}

type fileSnapshot struct {
	Tokens map[string]string `yaml:"tokens"`
}

// NewFileStore opens the store at path. A missing file is an empty store.
func NewFileStore(path string) (*FileStore, error) {
	fs := &FileStore{path: path, values: map[string]string{}}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

// Path returns the file backing the store.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *FileStore) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, existed := f.values[key]
	f.values[key] = value
	if err := f.save(); err != nil {
		if existed {
			f.values[key] = prev
		} else {
			delete(f.values, key)
		}
		return err
	}
	return nil
}

func (f *FileStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, existed := f.values[key]
	if !existed {
		return nil
	}
	delete(f.values, key)
	if err := f.save(); err != nil {
		f.values[key] = prev
		return err
	}
	return nil
}

func (f *FileStore) save() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return errors.Wrap(err, "unable to create token directory")
	}
	data, err := yaml.Marshal(fileSnapshot{Tokens: f.values})
	if err != nil {
		return errors.Wrap(err, "unable to encode tokens")
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "unable to write token file")
	}
	return errors.Wrap(os.Rename(tmp, f.path), "unable to replace token file")
}

func (f *FileStore) load() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return errors.Wrapf(err, "unable to read token file %s", f.path)
	}
	var snap fileSnapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return errors.Wrapf(err, "unable to parse token file %s", f.path)
	}
	if snap.Tokens != nil {
		f.values = snap.Tokens
	}
	return nil
}
