// Package storage holds the durable key-value backends the community store
// snapshots its state into.
package storage

import (
	"context"
	"errors"
)

// ErrNoSnapshot is returned by Load when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no snapshot stored")

// Backend reads and writes one encoded snapshot as a whole.
type Backend interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Close() error
}
