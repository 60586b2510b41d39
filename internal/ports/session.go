package ports

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned by SessionStore.Load for unknown sessions.
var ErrSessionNotFound = errors.New("session not found")

// Snapshot is the persisted position of a sequence: its cursor and the last
// active state of every target.
type Snapshot struct {
	Chain     string            `json:"chain" yaml:"chain"`
	Cursor    int               `json:"cursor" yaml:"cursor"`
	History   map[string]string `json:"history" yaml:"history"`
	UpdatedAt time.Time         `json:"updated_at" yaml:"updated_at"`
}

// SessionStore persists snapshots between invocations so a sequence can be
// stepped from separate processes.
type SessionStore interface {
	Save(ctx context.Context, id string, snapshot *Snapshot) error
	Load(ctx context.Context, id string) (*Snapshot, error)
	Delete(ctx context.Context, id string) error
}
