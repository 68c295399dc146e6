// internal/common/database/backends.go
package database

import (
	"context"
	stderrors "errors"
)

// Backend is a connected store the readiness probe can ping.
type Backend interface {
	Name() string
	Ping(ctx context.Context) error
	Close() error
}

// Backends collects whichever stores this process connected to.
type Backends struct {
	list []Backend
}

func (b *Backends) Add(be Backend) {
	b.list = append(b.list, be)
}

// Ready pings every backend and reports the failures by name.
func (b *Backends) Ready(ctx context.Context) map[string]error {
	out := make(map[string]error, len(b.list))
	for _, be := range b.list {
		out[be.Name()] = be.Ping(ctx)
	}
	return out
}

// Close releases the backends in reverse connection order.
func (b *Backends) Close() error {
	var errs []error
	for i := len(b.list) - 1; i >= 0; i-- {
		if err := b.list[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	b.list = nil
	return stderrors.Join(errs...)
}
