package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/macropad.go/pkg/config"
	"github.com/robotalks/macropad.go/pkg/framework"
)

func TestWatcherPostsChanges(t *testing.T) {
	dir := t.TempDir()
	s := New(&DirStorage{Dir: dir})
	s.Clock = func() time.Time { return testTime }
	require.NoError(t, s.Save(config.Default()))
	w := NewWatcher(s)
	require.NotNil(t, w)
	require.Equal(t, dir, w.Dir)
	require.Equal(t, DefaultConfigFile, w.File)

	changes := make(chan string, 64)
	loop := framework.NewLoop()
	loop.AddController(framework.StageService, framework.ControlFunc(func(cc framework.ControlContext) error {
		cc.Messages().ProcessMessages(framework.ProcessMessageFunc(func(msg framework.Message) bool {
			if m, ok := msg.(*ChangedMsg); ok {
				changes <- m.File
				return true
			}
			return false
		}))
		return nil
	}))
	loop.AddRunnable(w)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	drain := func() {
		for {
			select {
			case <-changes:
			default:
				return
			}
		}
	}

	// the watcher may not be registered yet, keep writing until seen
	external := []byte(`{"layers":[{"buttons":{"1":{"key":"z"}}}]}`)
	require.Eventually(t, func() bool {
		if os.WriteFile(filepath.Join(dir, DefaultConfigFile), external, 0644) != nil {
			return false
		}
		select {
		case file := <-changes:
			return file == DefaultConfigFile
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	cfg, err := s.Reload()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.Equal(t, []config.ResolvedKey{{Kind: config.Single, Text: "z"}}, config.ResolveLayer(cfg, 1))

	time.Sleep(100 * time.Millisecond)
	drain()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644))
	require.Never(t, func() bool { return len(changes) > 0 }, 200*time.Millisecond, 10*time.Millisecond)

	require.NoError(t, s.Save(config.Default()))
	select {
	case file := <-changes:
		require.Equal(t, DefaultConfigFile, file)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "no change posted for own save")
	}
	cfg, err = s.Reload()
	require.NoError(t, err)
	require.Nil(t, cfg)
}
