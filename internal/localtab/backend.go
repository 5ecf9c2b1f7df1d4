package localtab

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/lakecheck/pkg/types"
)

// defaultScheme qualifies every location the binding produces.
const defaultScheme = "s3"

// Compile-time interface checks: the backend is both collaborators.
var (
	_ types.Executor     = (*Backend)(nil)
	_ types.ObjectLister = (*Backend)(nil)
)

// Backend implements types.Executor and types.ObjectLister over SQLite.
// The backend is not attached on construction; call Attach with a Config
// to initialize.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	cfg      types.Config
	db       *sql.DB
	tempDir  string // non-empty when Attach created the data dir itself
}

// NewBackend creates a detached backend instance.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach opens the backing database under cfg.DataDir (a fresh
// temporary directory when empty) and initializes the schema. Any
// database file from a previous run is removed so every attach starts
// clean. Returns ErrAlreadyAttached if called while attached.
func (b *Backend) Attach(cfg types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	dataDir := cfg.DataDir
	tempDir := ""
	if dataDir == "" {
		dir, err := os.MkdirTemp("", "lakecheck-*")
		if err != nil {
			return fmt.Errorf("creating data dir: %w", err)
		}
		dataDir = dir
		tempDir = dir
	} else if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "lakecheck.db")
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("initializing schema: %w", err)
		}
	}

	b.cfg = cfg
	b.db = db
	b.tempDir = tempDir
	b.attached = true
	return nil
}

// Detach closes the database and removes a self-created data dir.
// Idempotent: detaching a detached (or never-attached) backend is a
// no-op. After Detach, operations return ErrDetached.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if err := b.db.Close(); err != nil {
		return err
	}
	if b.tempDir != "" {
		_ = os.RemoveAll(b.tempDir)
		b.tempDir = ""
	}
	b.db = nil
	b.attached = false
	return nil
}

// List returns every object in bucket whose key starts byte-for-byte
// with keyPrefix, qualified as scheme://bucket/key. The comparison uses
// substr, not LIKE, so percent signs and underscores in keys are inert.
// No matches is an empty result, not an error.
func (b *Backend) List(ctx context.Context, bucket, keyPrefix string) ([]types.Location, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}

	rows, err := b.db.QueryContext(ctx,
		"SELECT key FROM objects WHERE bucket = ? AND substr(key, 1, ?) = ? ORDER BY key",
		bucket, len(keyPrefix), keyPrefix,
	)
	if err != nil {
		return nil, fmt.Errorf("listing objects: %w", err)
	}
	defer rows.Close()

	out := []types.Location{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning object key: %w", err)
		}
		out = append(out, qualify(bucket, key))
	}
	return out, rows.Err()
}

// qualify re-qualifies a bucket/key pair into a full location.
func qualify(bucket, key string) types.Location {
	return types.Location(fmt.Sprintf("%s://%s/%s", defaultScheme, bucket, key))
}

// newID generates a UUID v7 without dashes, used for table IDs, file
// IDs, object names, and generated location suffixes.
func newID() string {
	return strings.ReplaceAll(uuid.Must(uuid.NewV7()).String(), "-", "")
}

// ensureSlash appends a slash unless the string already ends with one.
// Locations with trailing whitespace keep the whitespace: the slash goes
// after it.
func ensureSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}
