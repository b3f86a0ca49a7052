package masters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tmurata/inspection-dispatch/internal/domain/inspection"
	"github.com/tmurata/inspection-dispatch/internal/domain/shared"
)

// MinCacheTTL is the floor on how long a snapshot with an unchanged
// fingerprint is trusted before a forced re-parse.
const MinCacheTTL = 5 * time.Minute

// Store caches parsed master snapshots keyed by file fingerprint
// (path, mtime, size). Stale detection runs on every fetch: the fingerprint
// is recomputed and a mismatch drops the snapshot no matter how fresh it is.
// Snapshots are row slices, copied on return, so callers can never mutate
// cache-resident data. An optional disk tier under DiskDir survives process
// restarts.
type Store struct {
	mu      sync.Mutex
	ttl     time.Duration
	diskDir string
	clock   shared.Clock
	entries map[string]*storeEntry
}

type storeEntry struct {
	fp        Fingerprint
	checkedAt time.Time
	payload   []byte // JSON-encoded row slice
}

// NewStore builds a snapshot cache. A ttl below the floor is raised to it.
// An empty diskDir disables the disk tier.
func NewStore(ttl time.Duration, diskDir string, clock shared.Clock) *Store {
	if ttl < MinCacheTTL {
		ttl = MinCacheTTL
	}
	return &Store{
		ttl:     ttl,
		diskDir: diskDir,
		clock:   clock,
		entries: make(map[string]*storeEntry),
	}
}

// Invalidate drops the cached snapshot for a path, memory and disk tiers
// both. The next fetch re-reads the file.
func (s *Store) Invalidate(master, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := master + "|" + path
	entry, ok := s.entries[key]
	delete(s.entries, key)
	if ok && s.diskDir != "" {
		os.Remove(s.diskPath(entry.fp, master, loaderVersionFor(master)))
	}
}

// InvalidatePath drops every master snapshot backed by the path. The watcher
// calls this on file events without knowing which master the path serves.
func (s *Store) InvalidatePath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, entry := range s.entries {
		if entry.fp.Path == path {
			delete(s.entries, key)
		}
	}
}

func (s *Store) diskPath(fp Fingerprint, master string, version int) string {
	return filepath.Join(s.diskDir, fp.CacheKey(master, version)+".json")
}

func loaderVersionFor(master string) int {
	switch master {
	case "products":
		return productLoaderVersion
	case "inspectors":
		return inspectorLoaderVersion
	case "skills":
		return skillLoaderVersion
	case "vacations":
		return vacationLoaderVersion
	default:
		return 1
	}
}

// fetch returns the JSON payload for one master, loading through the tiers:
// fresh memory entry, disk snapshot for the current fingerprint, then a full
// parse. parse runs against the file contents and its output is what gets
// cached.
func (s *Store) fetch(master, path string, parse func(io.Reader) (interface{}, error)) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := master + "|" + path
	now := s.clock.Now()

	fp, err := FingerprintOf(path)
	if err != nil {
		return nil, &inspection.ErrMasterInputMissing{Master: master, Path: path, Cause: err}
	}

	// A matching fingerprint is trusted within the TTL. Past it the sheet is
	// re-parsed even on a match, since mtime and size can miss an in-place
	// edit. A mismatch drops the entry regardless of age.
	forceParse := false
	if entry, ok := s.entries[key]; ok {
		if entry.fp.Equal(fp) {
			if now.Sub(entry.checkedAt) < s.ttl {
				return entry.payload, nil
			}
			forceParse = true
		}
		delete(s.entries, key)
	}

	version := loaderVersionFor(master)
	if !forceParse {
		if payload, ok := s.readDisk(fp, master, version); ok {
			s.entries[key] = &storeEntry{fp: fp, checkedAt: now, payload: payload}
			return payload, nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &inspection.ErrMasterInputMissing{Master: master, Path: path, Cause: err}
	}
	parsed, err := parse(f)
	f.Close()
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(parsed)
	if err != nil {
		return nil, fmt.Errorf("encoding %s snapshot: %w", master, err)
	}

	s.entries[key] = &storeEntry{fp: fp, checkedAt: now, payload: payload}
	s.writeDisk(fp, master, version, payload)
	return payload, nil
}

func (s *Store) readDisk(fp Fingerprint, master string, version int) ([]byte, bool) {
	if s.diskDir == "" {
		return nil, false
	}
	payload, err := os.ReadFile(s.diskPath(fp, master, version))
	if err != nil {
		return nil, false
	}
	return payload, true
}

// writeDisk persists a snapshot. Disk-tier failures degrade to memory-only
// caching and are not surfaced to the run.
func (s *Store) writeDisk(fp Fingerprint, master string, version int, payload []byte) {
	if s.diskDir == "" {
		return
	}
	if err := os.MkdirAll(s.diskDir, 0o755); err != nil {
		return
	}
	tmp := s.diskPath(fp, master, version) + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return
	}
	os.Rename(tmp, s.diskPath(fp, master, version))
}

func decodeRows[T any](payload []byte) ([]T, error) {
	var rows []T
	dec := json.NewDecoder(bytes.NewReader(payload))
	if err := dec.Decode(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ProductRates returns the cached product-master rows for a path.
// The returned slice is decoded fresh on every call.
func (s *Store) ProductRates(path string) ([]inspection.ProductRate, error) {
	payload, err := s.fetch("products", path, func(r io.Reader) (interface{}, error) {
		return ParseProductRates(r)
	})
	if err != nil {
		return nil, err
	}
	return decodeRows[inspection.ProductRate](payload)
}

// Inspectors returns the cached inspector-master rows for a path.
func (s *Store) Inspectors(path string) ([]inspection.Inspector, error) {
	payload, err := s.fetch("inspectors", path, func(r io.Reader) (interface{}, error) {
		return ParseInspectors(r)
	})
	if err != nil {
		return nil, err
	}
	return decodeRows[inspection.Inspector](payload)
}

// SkillRows returns the cached skill-matrix rows for a path.
func (s *Store) SkillRows(path string) ([]inspection.SkillRow, error) {
	payload, err := s.fetch("skills", path, func(r io.Reader) (interface{}, error) {
		return ParseSkillRows(r)
	})
	if err != nil {
		return nil, err
	}
	return decodeRows[inspection.SkillRow](payload)
}

// VacationEntries returns the cached vacation-sheet rows for a path.
func (s *Store) VacationEntries(path string) ([]inspection.VacationEntry, error) {
	payload, err := s.fetch("vacations", path, func(r io.Reader) (interface{}, error) {
		return ParseVacationEntries(r)
	})
	if err != nil {
		return nil, err
	}
	return decodeRows[inspection.VacationEntry](payload)
}
