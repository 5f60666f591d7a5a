package store

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/macropad.go/pkg/config"
)

var testTime = time.Unix(1758535200, 0)

func newMemStore() (*Store, *MemStorage) {
	storage := NewMemStorage()
	s := New(storage)
	s.Clock = func() time.Time { return testTime }
	return s, storage
}

func TestLoadAbsent(t *testing.T) {
	s, _ := newMemStore()
	_, err := s.Load()
	require.True(t, errors.Is(err, ErrAbsent))
	_, err = s.Raw()
	require.True(t, errors.Is(err, ErrAbsent))
}

func TestSaveWritesPrimaryAndBackup(t *testing.T) {
	s, storage := newMemStore()
	require.NoError(t, s.Save(config.Default()))

	files := storage.Files()
	sort.Strings(files)
	require.Equal(t, []string{"macropad_config.json", "macropad_config_backup_1758535200.json"}, files)

	primary, err := storage.ReadFile(DefaultConfigFile)
	require.NoError(t, err)
	backup, err := storage.ReadFile("macropad_config_backup_1758535200.json")
	require.NoError(t, err)
	require.Equal(t, primary, backup)

	cfg, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, config.ResolveLayer(config.Default(), 1), config.ResolveLayer(cfg, 1))
}

func TestSaveBackupFailureIsNotFatal(t *testing.T) {
	s, storage := newMemStore()
	storage.Failures = map[string]error{s.BackupFile(testTime): errors.New("disk full")}
	require.NoError(t, s.Save(config.Default()))
	_, err := storage.ReadFile(DefaultConfigFile)
	require.NoError(t, err)
}

func TestSavePrimaryFailure(t *testing.T) {
	s, storage := newMemStore()
	storage.Failures = map[string]error{DefaultConfigFile: errors.New("read-only")}
	require.Error(t, s.Save(config.Default()))
	require.Empty(t, storage.Files())
}

func TestSaveRaw(t *testing.T) {
	s, storage := newMemStore()
	require.NoError(t, s.SaveRaw([]byte("{not json")))
	data, err := storage.ReadFile(DefaultRawFile)
	require.NoError(t, err)
	require.Equal(t, "{not json", string(data))
}

func TestDegradedStore(t *testing.T) {
	storage := NewMemStorage()
	storage.Unavailable = true
	s := New(storage)
	require.True(t, s.Degraded())

	cfg, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)

	require.True(t, errors.Is(s.Save(cfg), ErrUnavailable))
	require.True(t, errors.Is(s.SaveRaw([]byte("{}")), ErrUnavailable))
	_, err = s.Raw()
	require.True(t, errors.Is(err, ErrUnavailable))
	_, err = s.Reload()
	require.True(t, errors.Is(err, ErrUnavailable))
	require.Empty(t, storage.Files())
}

func TestLoadInvalid(t *testing.T) {
	s, storage := newMemStore()
	require.NoError(t, storage.WriteFile(DefaultConfigFile, []byte(`{"layers": [`)))
	_, err := s.Load()
	var pe *config.ParseError
	require.True(t, errors.As(err, &pe))
}

func TestReloadSkipsOwnWrites(t *testing.T) {
	s, storage := newMemStore()
	require.NoError(t, s.Save(config.Default()))
	cfg, err := s.Reload()
	require.NoError(t, err)
	require.Nil(t, cfg)

	require.NoError(t, storage.WriteFile(DefaultConfigFile, []byte(`{"layers":[{"buttons":{"1":{"key":"z"}}}]}`)))
	cfg, err = s.Reload()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.Equal(t, []config.ResolvedKey{{Kind: config.Single, Text: "z"}}, config.ResolveLayer(cfg, 1))

	cfg, err = s.Reload()
	require.NoError(t, err)
	require.Nil(t, cfg)
}

func TestDirStorageReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	storage := &DirStorage{Dir: dir}
	s := New(storage)
	s.Clock = func() time.Time { return testTime }
	require.False(t, s.Degraded())
	require.NoError(t, s.Save(config.Default()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.ElementsMatch(t, []string{"macropad_config.json", "macropad_config_backup_1758535200.json"}, names)

	data, err := os.ReadFile(filepath.Join(dir, DefaultConfigFile))
	require.NoError(t, err)
	raw, err := s.Raw()
	require.NoError(t, err)
	require.Equal(t, data, raw)
}

func TestDirStorageMissingDir(t *testing.T) {
	s := New(&DirStorage{Dir: filepath.Join(t.TempDir(), "missing")})
	require.True(t, s.Degraded())
	require.Nil(t, NewWatcher(s))
}
