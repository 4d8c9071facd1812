// Package jsonl implements rawstore.Store on the local filesystem using
// day-partitioned append-only JSONL files plus two JSON index files per
// tenant: index.json (doc id -> entry) and sha_index.json (content hash ->
// doc ids).
package jsonl

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"atlas/pkg/models"
	"atlas/pkg/rawstore"
)

const (
	rawDirName   = "raw"
	cleanDirName = "clean"
	indexFile    = "index.json"
	shaIndexFile = "sha_index.json"
	dirPerm      = 0750
	filePerm     = 0600
)

// Options tunes store behavior.
type Options struct {
	// PersistClean also appends a text-free copy of each record under the
	// clean tree.
	PersistClean bool
	// AllowClientDocID honors caller-supplied doc ids instead of generating.
	AllowClientDocID bool
}

// Store implements the rawstore.Store interface on the local filesystem.
type Store struct {
	baseDir string
	opts    Options

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// New creates a filesystem store rooted at baseDir.
func New(baseDir string, opts Options) *Store {
	return &Store{
		baseDir: baseDir,
		opts:    opts,
		locks:   make(map[string]*sync.Mutex),
	}
}

// tenantLock returns the mutex serializing index read-modify-write for one
// tenant. Locks for distinct tenants are independent.
func (s *Store) tenantLock(tenantID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	if mu, exists := s.locks[tenantID]; exists {
		return mu
	}
	mu := &sync.Mutex{}
	s.locks[tenantID] = mu
	return mu
}

// tenantDir returns (and creates) the per-tenant directory for a variant.
func (s *Store) tenantDir(tenantID, variant string) (string, error) {
	name := rawDirName
	if variant == rawstore.VariantClean {
		name = cleanDirName
	}
	dir := filepath.Join(s.baseDir, name, tenantID)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("failed to create tenant directory: %w", err)
	}
	return dir, nil
}

// dayFilePath returns the day file holding records for a UTC date.
func (s *Store) dayFilePath(tenantID, variant, date string) (string, error) {
	dir, err := s.tenantDir(tenantID, variant)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, date+".jsonl"), nil
}

// readIndex loads a JSON index file into out, treating a missing file as
// an empty index.
func readIndex(path string, out any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read index %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse index %s: %w", path, err)
	}
	return nil
}

// writeIndexAtomic persists an index with write-temp-then-rename semantics.
func writeIndexAtomic(path string, in any) error {
	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode index %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, filePerm); err != nil {
		return fmt.Errorf("failed to write index %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace index %s: %w", path, err)
	}
	return nil
}

// loadIndexes reads both per-tenant indexes.
func (s *Store) loadIndexes(tenantID string) (map[string]models.RawIndexEntry, map[string][]string, error) {
	dir, err := s.tenantDir(tenantID, rawstore.VariantRaw)
	if err != nil {
		return nil, nil, err
	}

	idx := make(map[string]models.RawIndexEntry)
	if err := readIndex(filepath.Join(dir, indexFile), &idx); err != nil {
		return nil, nil, err
	}
	shaIdx := make(map[string][]string)
	if err := readIndex(filepath.Join(dir, shaIndexFile), &shaIdx); err != nil {
		return nil, nil, err
	}
	return idx, shaIdx, nil
}

// persistIndexes writes both per-tenant indexes atomically.
func (s *Store) persistIndexes(tenantID string, idx map[string]models.RawIndexEntry, shaIdx map[string][]string) error {
	dir, err := s.tenantDir(tenantID, rawstore.VariantRaw)
	if err != nil {
		return err
	}
	if err := writeIndexAtomic(filepath.Join(dir, indexFile), idx); err != nil {
		return err
	}
	return writeIndexAtomic(filepath.Join(dir, shaIndexFile), shaIdx)
}

// appendLine appends one JSON line to a day file.
func appendLine(path string, record any) error {
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("failed to open day file %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append to day file %s: %w", path, err)
	}
	return nil
}
