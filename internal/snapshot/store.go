// Package snapshot persists JSON snapshots of fetched remote state under
// the data directory. Snapshots are a debugging aid for reconciliation
// passes; a failed snapshot never fails the pass that produced it.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/agentstation/mirrorsync/pkg/errors"
	"github.com/agentstation/mirrorsync/pkg/logging"
)

// DefaultKeep is how many timestamped snapshots of one kind are retained.
const DefaultKeep = 10

const (
	dirPermissions  = 0o755
	filePermissions = 0o644
	timeLayout      = "20060102-150405"
)

// Store writes snapshots into a data directory. Each kind gets its own
// subdirectory with timestamped files plus a "latest" copy.
type Store struct {
	dir  string
	keep int
	now  func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithKeep sets how many timestamped snapshots are retained per kind.
func WithKeep(n int) Option {
	return func(s *Store) { s.keep = n }
}

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a snapshot store rooted at dir.
func New(dir string, opts ...Option) *Store {
	s := &Store{
		dir:  dir,
		keep: DefaultKeep,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.keep < 1 {
		s.keep = 1
	}
	return s
}

// Save writes v as an indented JSON snapshot of the given kind, updates
// the latest copy and prunes old snapshots past the retention limit. The
// returned path is the timestamped file.
func (s *Store) Save(kind string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", errors.WrapParse("json", kind, err)
	}

	dir := filepath.Join(s.dir, kind)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return "", errors.WrapIO("create directory", dir, err)
	}

	stamp := s.now().UTC().Format(timeLayout)
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.json", kind, stamp))
	if err := os.WriteFile(path, data, filePermissions); err != nil {
		return "", errors.WrapIO("write", path, err)
	}

	latest := filepath.Join(dir, kind+"-latest.json")
	if err := os.WriteFile(latest, data, filePermissions); err != nil {
		return "", errors.WrapIO("write", latest, err)
	}

	if err := s.prune(dir, kind); err != nil {
		logging.Warn().Err(err).Str("kind", kind).Msg("Snapshot pruning failed")
	}

	logging.Debug().Str("kind", kind).Str("path", path).Msg("Snapshot written")
	return path, nil
}

// Latest reads the most recent snapshot of the given kind into v.
func (s *Store) Latest(kind string, v any) error {
	path := filepath.Join(s.dir, kind, kind+"-latest.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFoundError("snapshot", kind)
		}
		return errors.WrapIO("read", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.WrapParse("json", path, err)
	}
	return nil
}

// prune removes the oldest timestamped snapshots beyond the retention
// limit. The latest copy is never pruned.
func (s *Store) prune(dir, kind string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.WrapIO("read directory", dir, err)
	}

	var stamped []string
	latest := kind + "-latest.json"
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == latest || filepath.Ext(name) != ".json" {
			continue
		}
		stamped = append(stamped, name)
	}
	if len(stamped) <= s.keep {
		return nil
	}

	// Timestamps sort lexically, oldest first.
	sort.Strings(stamped)
	for _, name := range stamped[:len(stamped)-s.keep] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			return errors.WrapIO("remove", name, err)
		}
	}
	return nil
}
