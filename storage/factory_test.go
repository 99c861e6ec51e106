package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillpress/quillpress/interfaces"
)

func TestFactoryUnsupportedDriver(t *testing.T) {
	factory := NewFactory(slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := factory.Open(context.Background(), interfaces.Descriptor{Driver: "oracle"})
	require.Error(t, err)

	var connErr *interfaces.ConnError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, interfaces.ConnOther, connErr.Kind)
	assert.ErrorIs(t, err, interfaces.ErrUnsupportedDriver)
}

func TestFactorySQLiteMissingParentClassifiesNotFound(t *testing.T) {
	factory := NewFactory(slog.New(slog.NewTextHandler(io.Discard, nil)))

	desc := interfaces.Descriptor{
		Driver:   "sqlite",
		Database: filepath.Join(t.TempDir(), "no", "such", "dir", "quillpress.db"),
		Prefix:   "quillpress_",
	}
	_, err := factory.Open(context.Background(), desc)
	require.Error(t, err)

	var connErr *interfaces.ConnError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, interfaces.ConnNotFound, connErr.Kind)
}

func TestTimedOutClassification(t *testing.T) {
	background := context.Background()

	deadlineCtx, expire := context.WithDeadline(background, time.Now().Add(-time.Second))
	defer expire()
	assert.True(t, timedOut(background, context.DeadlineExceeded))
	assert.True(t, timedOut(deadlineCtx, errors.New("driver gave up")))

	// An aborted request is not a timeout and must not implicate the
	// host field.
	canceledCtx, abort := context.WithCancel(background)
	abort()
	assert.False(t, timedOut(canceledCtx, context.Canceled))
	assert.False(t, timedOut(background, context.Canceled))
	assert.False(t, timedOut(background, errors.New("connection refused")))
}

func TestFactoryOpenSucceeds(t *testing.T) {
	factory := NewFactory(slog.New(slog.NewTextHandler(io.Discard, nil)))

	desc := interfaces.Descriptor{
		Driver:   "sqlite",
		Database: filepath.Join(t.TempDir(), "quillpress.db"),
		Prefix:   "quillpress_",
	}
	st, err := factory.Open(context.Background(), desc)
	require.NoError(t, err)
	require.NoError(t, st.Close())
}
