package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/quillpress/quillpress/interfaces"
)

// Factory creates stores from connection descriptors. It implements
// interfaces.StoreFactory.
type Factory struct {
	log *slog.Logger
}

// NewFactory creates a new factory instance.
func NewFactory(log *slog.Logger) *Factory {
	return &Factory{log: log}
}

// Open dials the store described by desc and verifies the connection
// with a round-trip statement. The attempt is bounded by desc.Timeout
// (interfaces.ConnectTimeout when zero). Any failure is returned as a
// *interfaces.ConnError carrying its classification.
func (f *Factory) Open(ctx context.Context, desc interfaces.Descriptor) (interfaces.Store, error) {
	timeout := desc.Timeout
	if timeout == 0 {
		timeout = interfaces.ConnectTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		st  interfaces.Store
		err error
	)
	switch strings.ToLower(desc.Driver) {
	case "sqlite":
		st, err = openSQLite(ctx, desc, f.log)
	case "postgres":
		st, err = openPostgres(ctx, desc, f.log)
	default:
		return nil, &interfaces.ConnError{
			Kind: interfaces.ConnOther,
			Err:  fmt.Errorf("%w: %q", interfaces.ErrUnsupportedDriver, desc.Driver),
		}
	}
	if err != nil {
		f.log.Debug("Store connection failed",
			slog.String("driver", desc.Driver),
			"err", err)
		return nil, err
	}

	f.log.Debug("Store connection established", slog.String("driver", desc.Driver))
	return st, nil
}

// timedOut reports whether err represents an exhausted probe deadline,
// for either driver. A canceled context is not a timeout: an aborted
// request says nothing about the host, so it must not implicate it.
func timedOut(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
