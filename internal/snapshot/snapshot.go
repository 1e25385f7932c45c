// internal/snapshot/snapshot.go
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/EAS-COD-System/eas-tracker/internal/domain"
	"github.com/EAS-COD-System/eas-tracker/internal/storage"
)

const (
	indexFile     = "index.json"
	artifactExt   = ".json"
	replicaPrefix = "snapshots/"
)

// Source is the live datastore the snapshot store copies and restores.
// Export serializes against live writes inside the datastore. Swap replaces
// the live state with payload and returns the serialized state it displaced,
// both inside one exclusive section, so no write can land between the
// capture and the replacement.
type Source interface {
	Export(ctx context.Context) ([]byte, error)
	Swap(ctx context.Context, payload []byte) (previous []byte, err error)
}

// Policy controls pruning. A snapshot survives when it is among the
// KeepCount most recent OR its age is at most KeepDays: union, not
// intersection.
type Policy struct {
	KeepCount int
	KeepDays  int
}

// Store manages the versioned, append-only set of datastore snapshots in one
// directory. All mutating operations hold a single mutex, so a create can
// never race a restore, a delete or the automatic timer.
type Store struct {
	dir     string
	source  Source
	replica storage.ObjectStorage

	mu    sync.Mutex
	index []domain.Snapshot

	// now is swappable for tests.
	now func() time.Time
}

// Open loads (or initializes) the snapshot index in dir. replica may be nil.
func Open(dir string, source Source, replica storage.ObjectStorage) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &domain.StorageError{Op: "snapshot open", Err: errors.Wrapf(err, "create %s", dir)}
	}

	s := &Store{
		dir:     dir,
		source:  source,
		replica: replica,
		now:     time.Now,
	}

	raw, err := os.ReadFile(filepath.Join(dir, indexFile))
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, &s.index); err != nil {
			return nil, &domain.StorageError{Op: "snapshot open", Err: errors.Wrap(err, "parse snapshot index")}
		}
	case os.IsNotExist(err):
		s.index = []domain.Snapshot{}
	default:
		return nil, &domain.StorageError{Op: "snapshot open", Err: errors.Wrap(err, "read snapshot index")}
	}

	return s, nil
}

// Create copies the entire live datastore into a new immutable artifact and
// registers it in the index.
func (s *Store) Create(ctx context.Context, label string, kind domain.SnapshotKind) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(ctx, label, kind)
}

func (s *Store) createLocked(ctx context.Context, label string, kind domain.SnapshotKind) (*domain.Snapshot, error) {
	payload, err := s.source.Export(ctx)
	if err != nil {
		return nil, err
	}
	return s.saveLocked(ctx, label, kind, payload)
}

// saveLocked registers payload as a new immutable artifact in the index.
func (s *Store) saveLocked(ctx context.Context, label string, kind domain.SnapshotKind, payload []byte) (*domain.Snapshot, error) {
	createdAt := s.now().UTC()
	id := s.uniqueID(createdAt, label)
	file := id + artifactExt

	if err := writeAtomic(filepath.Join(s.dir, file), payload); err != nil {
		return nil, err
	}

	meta := domain.Snapshot{
		ID:        id,
		Label:     label,
		Kind:      kind,
		File:      file,
		Size:      int64(len(payload)),
		CreatedAt: createdAt,
	}
	s.index = append(s.index, meta)

	if err := s.persistIndexLocked(); err != nil {
		// Keep the artifact set consistent with the index: the snapshot is
		// either fully present or absent.
		s.index = s.index[:len(s.index)-1]
		os.Remove(filepath.Join(s.dir, file))
		return nil, err
	}

	if s.replica != nil {
		if err := s.replica.UploadObject(ctx, replicaPrefix+file, payload); err != nil {
			log.Warn().Err(err).Str("snapshot", id).Msg("offsite snapshot replication failed")
		}
	}

	return &meta, nil
}

// List returns all snapshot metadata, newest first.
func (s *Store) List(ctx context.Context) []domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked()
}

func (s *Store) sortedLocked() []domain.Snapshot {
	out := make([]domain.Snapshot, len(s.index))
	copy(out, s.index)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Restore overwrites the live datastore with the chosen snapshot's contents.
// The replacement happens in one exclusive swap, and the displaced state is
// kept as a pre-restore safety snapshot, so a restore is itself undoable and
// a write racing the restore is never lost. On any failure the live
// datastore is left untouched.
func (s *Store) Restore(ctx context.Context, id string) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restoreLocked(ctx, id)
}

func (s *Store) restoreLocked(ctx context.Context, id string) (*domain.Snapshot, error) {
	meta, ok := s.findLocked(id)
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}

	payload, err := os.ReadFile(filepath.Join(s.dir, meta.File))
	if os.IsNotExist(err) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, &domain.StorageError{Op: "restore", Err: errors.Wrapf(err, "read artifact %s", meta.File)}
	}
	if !json.Valid(payload) {
		return nil, domain.ErrCorruptSnapshot
	}

	previous, err := s.source.Swap(ctx, payload)
	if err != nil {
		return nil, err
	}

	if _, err := s.saveLocked(ctx, "pre-restore-"+id, domain.SnapshotPreRestore, previous); err != nil {
		// Undo the swap so a failed restore leaves the live state untouched.
		if _, swapErr := s.source.Swap(ctx, previous); swapErr != nil {
			log.Error().Err(swapErr).Str("snapshot", id).Msg("rollback after failed pre-restore snapshot")
		}
		return nil, err
	}

	return &meta, nil
}

// RestoreWithin restores the most recent snapshot whose timestamp falls
// inside the trailing window, failing with ErrNoSnapshotInWindow when none
// qualifies.
func (s *Store) RestoreWithin(ctx context.Context, window time.Duration) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().UTC().Add(-window)
	for _, meta := range s.sortedLocked() {
		if meta.CreatedAt.Before(cutoff) {
			continue
		}
		return s.restoreLocked(ctx, meta.ID)
	}
	return nil, domain.ErrNoSnapshotInWindow
}

// Delete removes one snapshot's artifact and index entry. Other snapshots
// are never touched.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(ctx, id)
}

func (s *Store) deleteLocked(ctx context.Context, id string) error {
	idx := -1
	for i, meta := range s.index {
		if meta.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.ErrSnapshotNotFound
	}

	meta := s.index[idx]
	if err := os.Remove(filepath.Join(s.dir, meta.File)); err != nil && !os.IsNotExist(err) {
		return &domain.StorageError{Op: "delete", Err: errors.Wrapf(err, "remove artifact %s", meta.File)}
	}

	s.index = append(s.index[:idx], s.index[idx+1:]...)
	if err := s.persistIndexLocked(); err != nil {
		return err
	}

	if s.replica != nil {
		if err := s.replica.RemoveObject(ctx, replicaPrefix+meta.File); err != nil {
			log.Warn().Err(err).Str("snapshot", id).Msg("offsite snapshot removal failed")
		}
	}
	return nil
}

// Prune removes snapshots the policy no longer protects. A snapshot
// survives when it is among the KeepCount most recent or its age is at most
// KeepDays. The most recent snapshot always survives.
func (s *Store) Prune(ctx context.Context, policy Policy) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sorted := s.sortedLocked()
	if len(sorted) == 0 {
		return 0, nil
	}

	cutoff := s.now().UTC().AddDate(0, 0, -policy.KeepDays)

	pruned := 0
	for i, meta := range sorted {
		if i == 0 {
			continue // never remove the most recent snapshot
		}
		if i < policy.KeepCount {
			continue
		}
		if !meta.CreatedAt.Before(cutoff) {
			continue
		}
		if err := s.deleteLocked(ctx, meta.ID); err != nil {
			return pruned, err
		}
		pruned++
	}
	return pruned, nil
}

func (s *Store) findLocked(id string) (domain.Snapshot, bool) {
	for _, meta := range s.index {
		if meta.ID == id {
			return meta, true
		}
	}
	return domain.Snapshot{}, false
}

func (s *Store) persistIndexLocked() error {
	payload, err := json.MarshalIndent(s.index, "", "  ")
	if err != nil {
		return &domain.StorageError{Op: "persist index", Err: errors.Wrap(err, "encode snapshot index")}
	}
	return writeAtomic(filepath.Join(s.dir, indexFile), payload)
}

// uniqueID builds a sortable timestamp id with an optional sanitized label
// suffix, deduplicated against the current index.
func (s *Store) uniqueID(createdAt time.Time, label string) string {
	id := createdAt.Format("20060102T150405.000Z")
	if sanitized := sanitizeLabel(label); sanitized != "" {
		id += "-" + sanitized
	}
	candidate := id
	for n := 2; ; n++ {
		if _, exists := s.findLocked(candidate); !exists {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", id, n)
	}
}

var labelSanitizer = regexp.MustCompile(`[^a-z0-9_-]+`)

func sanitizeLabel(label string) string {
	sanitized := labelSanitizer.ReplaceAllString(strings.ToLower(strings.TrimSpace(label)), "-")
	sanitized = strings.Trim(sanitized, "-")
	if len(sanitized) > 40 {
		sanitized = sanitized[:40]
	}
	return sanitized
}

func writeAtomic(path string, payload []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".snap-*.tmp")
	if err != nil {
		return &domain.StorageError{Op: "write", Err: errors.Wrap(err, "create temp file")}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &domain.StorageError{Op: "write", Err: errors.Wrap(err, "write temp file")}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &domain.StorageError{Op: "write", Err: errors.Wrap(err, "close temp file")}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &domain.StorageError{Op: "write", Err: errors.Wrapf(err, "replace %s", path)}
	}
	return nil
}
