package watch_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/euforicio/chatmd/internal/converter"
	"github.com/euforicio/chatmd/internal/watch"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRunConvertsOnChange(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "note.md")
	require.NoError(t, os.WriteFile(path, []byte("# First\n"), 0o644))

	w, err := watch.New(path, converter.New(discardLogger()), "slack", converter.Options{}, discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	docs := make(chan converter.Document, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(doc converter.Document) error {
			docs <- doc
			return nil
		})
	}()

	select {
	case doc := <-docs:
		assert.Equal(t, "*First*\n", doc.Text)
	case <-time.After(2 * time.Second):
		t.Fatal("did not receive initial conversion")
	}

	// Give the watcher time to attach.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("# Second\n"), 0o644))

	timeout := time.After(3 * time.Second)
	for {
		select {
		case doc := <-docs:
			if doc.Text == "*Second*\n" {
				cancel()
				require.ErrorIs(t, <-done, context.Canceled)
				return
			}
		case <-timeout:
			t.Fatal("did not receive conversion after change")
		}
	}
}

func TestRunStopsOnCallbackError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "note.md")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	w, err := watch.New(path, converter.New(discardLogger()), "chatwork", converter.Options{}, discardLogger())
	require.NoError(t, err)

	stop := errors.New("stop")
	err = w.Run(context.Background(), func(converter.Document) error { return stop })
	require.ErrorIs(t, err, stop)
}

func TestRunMissingFile(t *testing.T) {
	t.Parallel()

	w, err := watch.New(filepath.Join(t.TempDir(), "absent.md"), converter.New(discardLogger()), "slack", converter.Options{}, discardLogger())
	require.NoError(t, err)
	require.Error(t, w.Run(context.Background(), func(converter.Document) error { return nil }))
}

func TestNewValidates(t *testing.T) {
	t.Parallel()

	_, err := watch.New("", converter.New(nil), "slack", converter.Options{}, nil)
	require.Error(t, err)
	_, err = watch.New("x.md", nil, "slack", converter.Options{}, nil)
	require.Error(t, err)
}
