package device

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

// FileBackend persists values in a TOML document. The file is read once on
// open and rewritten on every change.
type FileBackend struct {
	mu     sync.RWMutex
	path   string
	values map[string]string
}

type deviceFile struct {
	Values map[string]string `toml:"values"`
}

// OpenFile loads path, treating a missing or unreadable file as empty.
func OpenFile(path string) *FileBackend {
	fb := &FileBackend{path: path, values: make(map[string]string)}

	file, err := os.Open(path)
	if err != nil {
		return fb
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return fb // Graceful degradation
	}

	var doc deviceFile
	if err := toml.Unmarshal(bytes, &doc); err != nil {
		return fb // Graceful degradation
	}
	for k, v := range doc.Values {
		fb.values[k] = v
	}
	return fb
}

// Path returns the backing file location.
func (f *FileBackend) Path() string {
	return f.path
}

func (f *FileBackend) Get(key string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.values[key]
	return v, ok
}

func (f *FileBackend) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.values[key]
	f.values[key] = value
	if err := f.save(); err != nil {
		if had {
			f.values[key] = prev
		} else {
			delete(f.values, key)
		}
		return err
	}
	return nil
}

func (f *FileBackend) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.values[key]
	if !had {
		return nil
	}
	delete(f.values, key)
	if err := f.save(); err != nil {
		f.values[key] = prev
		return err
	}
	return nil
}

// save writes through a temp file so a crash never leaves a torn document.
func (f *FileBackend) save() error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create device dir: %w", err)
	}

	bytes, err := toml.Marshal(deviceFile{Values: f.values})
	if err != nil {
		return fmt.Errorf("marshal device state: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".device-*.toml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(bytes); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write device state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close device state: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace device state: %w", err)
	}
	return nil
}
