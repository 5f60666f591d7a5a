// Package store persists the macro pad configuration on a Storage.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/macropad.go/pkg/config"
)

// Default file names.
const (
	DefaultConfigFile = "macropad_config.json"
	DefaultRawFile    = "debug_raw.json"
)

var (
	// ErrUnavailable is returned when the storage was not available
	// at startup.
	ErrUnavailable = errors.New("storage not available")
	// ErrAbsent is returned when no configuration is persisted.
	ErrAbsent = errors.New("config not found")
)

// Store loads and saves the configuration.
type Store struct {
	// ConfigFile is the primary configuration file.
	ConfigFile string
	// RawFile receives the raw upload payload.
	RawFile string
	// Clock names backups, defaults to time.Now.
	Clock func() time.Time

	storage  Storage
	degraded bool
	last     []byte
}

// New creates a Store. The store is degraded if the storage is not
// available at this point and stays so for its lifetime.
func New(storage Storage) *Store {
	s := &Store{
		ConfigFile: DefaultConfigFile,
		RawFile:    DefaultRawFile,
		storage:    storage,
		degraded:   !storage.Available(),
	}
	if s.degraded {
		glog.Warning("storage not available, using default config")
	}
	return s
}

// Degraded reports whether the store runs on in-memory defaults.
func (s *Store) Degraded() bool {
	return s.degraded
}

// Storage returns the underlying storage.
func (s *Store) Storage() Storage {
	return s.storage
}

// Load reads and validates the persisted configuration. A degraded
// store loads the default configuration.
func (s *Store) Load() (*config.Config, error) {
	if s.degraded {
		return config.Default(), nil
	}
	data, err := s.read()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(data)
	if err != nil {
		return nil, err
	}
	s.last = data
	return cfg, nil
}

// Reload loads the configuration only if the persisted bytes differ
// from what the store last loaded or saved. It returns nil when
// nothing changed.
func (s *Store) Reload() (*config.Config, error) {
	if s.degraded {
		return nil, ErrUnavailable
	}
	data, err := s.read()
	if err != nil {
		return nil, err
	}
	if s.last != nil && bytes.Equal(data, s.last) {
		return nil, nil
	}
	cfg, err := config.Load(data)
	if err != nil {
		return nil, err
	}
	s.last = data
	return cfg, nil
}

// Raw returns the persisted configuration bytes.
func (s *Store) Raw() ([]byte, error) {
	if s.degraded {
		return nil, ErrUnavailable
	}
	return s.read()
}

// Save writes cfg in canonical form to the primary file and then a
// timestamped backup. A failed backup is only logged.
func (s *Store) Save(cfg *config.Config) error {
	if s.degraded {
		return ErrUnavailable
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := s.writePrimary(data); err != nil {
		return err
	}
	s.last = data
	backup := s.BackupFile(s.now())
	if err := s.storage.WriteFile(backup, data); err != nil {
		glog.Warningf("backup %s failed: %v", backup, err)
	}
	return nil
}

// SaveRaw writes the unvalidated upload payload for later inspection.
func (s *Store) SaveRaw(payload []byte) error {
	if s.degraded {
		return ErrUnavailable
	}
	if err := s.storage.WriteFile(s.RawFile, payload); err != nil {
		return fmt.Errorf("write %s: %w", s.RawFile, err)
	}
	return nil
}

// BackupFile returns the backup file name for the given time:
// <base>_backup_<unix>.json.
func (s *Store) BackupFile(t time.Time) string {
	base := strings.TrimSuffix(s.ConfigFile, ".json")
	return base + "_backup_" + strconv.FormatInt(t.Unix(), 10) + ".json"
}

func (s *Store) read() ([]byte, error) {
	data, err := s.storage.ReadFile(s.ConfigFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrAbsent
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.ConfigFile, err)
	}
	return data, nil
}

func (s *Store) writePrimary(data []byte) error {
	renamer, ok := s.storage.(Renamer)
	if !ok {
		if err := s.storage.WriteFile(s.ConfigFile, data); err != nil {
			return fmt.Errorf("write %s: %w", s.ConfigFile, err)
		}
		return nil
	}
	tmp := s.ConfigFile + ".tmp"
	if err := s.storage.WriteFile(tmp, data); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := renamer.Rename(tmp, s.ConfigFile); err != nil {
		return fmt.Errorf("replace %s: %w", s.ConfigFile, err)
	}
	return nil
}

func (s *Store) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}
