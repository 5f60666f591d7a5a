package store

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Storage is the persistent byte storage holding configuration files.
// ReadFile reports a missing file with an error matching fs.ErrNotExist.
type Storage interface {
	Available() bool
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte) error
}

// Renamer is implemented by storages able to replace a file atomically.
type Renamer interface {
	Rename(from, to string) error
}

// DirStorage stores files in a directory of the local file system.
type DirStorage struct {
	Dir string
}

// Available implements Storage.
func (s *DirStorage) Available() bool {
	info, err := os.Stat(s.Dir)
	return err == nil && info.IsDir()
}

// Path returns the full path of a file in the storage.
func (s *DirStorage) Path(name string) string {
	return filepath.Join(s.Dir, name)
}

// ReadFile implements Storage.
func (s *DirStorage) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(s.Path(name))
}

// WriteFile implements Storage.
func (s *DirStorage) WriteFile(name string, data []byte) error {
	return os.WriteFile(s.Path(name), data, 0644)
}

// Rename implements Renamer.
func (s *DirStorage) Rename(from, to string) error {
	return os.Rename(s.Path(from), s.Path(to))
}

// MemStorage keeps files in memory.
type MemStorage struct {
	// Unavailable makes Available report false.
	Unavailable bool
	// Failures maps file names to the error returned when writing them.
	Failures map[string]error

	lock  sync.Mutex
	files map[string][]byte
}

// NewMemStorage creates an empty MemStorage.
func NewMemStorage() *MemStorage {
	return &MemStorage{files: make(map[string][]byte)}
}

// Available implements Storage.
func (s *MemStorage) Available() bool {
	return !s.Unavailable
}

// ReadFile implements Storage.
func (s *MemStorage) ReadFile(name string) ([]byte, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	data, ok := s.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), data...), nil
}

// WriteFile implements Storage.
func (s *MemStorage) WriteFile(name string, data []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if err := s.Failures[name]; err != nil {
		return &fs.PathError{Op: "write", Path: name, Err: err}
	}
	if s.files == nil {
		s.files = make(map[string][]byte)
	}
	s.files[name] = append([]byte(nil), data...)
	return nil
}

// Files lists the stored file names.
func (s *MemStorage) Files() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	return names
}
