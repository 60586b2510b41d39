// Package session persists sequence snapshots so a chain can be stepped
// across separate invocations.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/alexisbeaulieu97/cadence/internal/ports"
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ErrInvalidID is returned for empty or path-like session identifiers.
var ErrInvalidID = errors.New("invalid session id")

// FileStore keeps one YAML file per session in a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir, defaulting to .cadence/sessions.
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = filepath.Join(".cadence", "sessions")
	}
	return &FileStore{dir: dir}
}

// Dir returns the directory sessions are written to.
func (s *FileStore) Dir() string { return s.dir }

// Save writes the snapshot through a temp file and rename so readers never
// observe a partial document.
func (s *FileStore) Save(ctx context.Context, id string, snapshot *ports.Snapshot) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("ensure session directory: %w", err)
	}

	data, err := yaml.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, "tmp-"+id+"-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("fsync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path(id)); err != nil {
		return fmt.Errorf("rename session file: %w", err)
	}
	return nil
}

// Load reads a snapshot, returning ports.ErrSessionNotFound when absent.
func (s *FileStore) Load(ctx context.Context, id string) (*ports.Snapshot, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ports.ErrSessionNotFound
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var snapshot ports.Snapshot
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", id, err)
	}
	return &snapshot, nil
}

// Delete removes a session. Deleting an unknown session is not an error.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.path(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete session file: %w", err)
	}
	return nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".yaml")
}

func checkID(id string) error {
	if !sessionIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

var _ ports.SessionStore = (*FileStore)(nil)
