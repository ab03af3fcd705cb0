package sqlite

import (
	"bytes"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/omnibus/pkg/types"
)

// DBFileName is the database image inside the data directory.
const DBFileName = "omnibus.db"

// sqliteHeader is the 16-byte magic string that starts every database image.
var sqliteHeader = []byte("SQLite format 3\x00")

// Backend is the catalog's single database handle. Construct one per process
// and pass it to every collaborator. Methods are safe for concurrent use;
// Restore and Detach take the write lock so no query can observe a half
// swapped handle.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	dbPath   string
	db       *sql.DB
	fellBack bool
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach opens <DataDir>/omnibus.db, creating DataDir if needed, and brings
// the schema and views up to date. An existing file that cannot be opened or
// fails the integrity check is moved aside to omnibus.db.corrupt-<id> and a
// fresh empty database is created in its place; FellBack then reports true.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBFileName)
	db, err := openDB(dbPath)
	fellBack := false
	if err != nil {
		if _, statErr := os.Stat(dbPath); statErr != nil {
			// Nothing on disk to recover from; the failure is environmental.
			return err
		}
		quarantine := fmt.Sprintf("%s.corrupt-%s", dbPath, uuid.Must(uuid.NewV7()))
		log.WithError(err).WithFields(log.Fields{
			"path":       dbPath,
			"quarantine": quarantine,
		}).Warn("sqlite: database unreadable, starting with an empty catalog")

		if err := os.Rename(dbPath, quarantine); err != nil {
			return fmt.Errorf("quarantining unreadable database: %w", err)
		}
		db, err = openDB(dbPath)
		if err != nil {
			return fmt.Errorf("creating fresh database: %w", err)
		}
		fellBack = true
	}

	b.db = db
	b.dbPath = dbPath
	b.config = config
	b.fellBack = fellBack
	b.attached = true

	log.WithFields(log.Fields{
		"path":      dbPath,
		"fell_back": fellBack,
	}).Debug("sqlite: backend attached")
	return nil
}

// Detach releases the database handle. After Detach, all operations return
// ErrBackendDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	return nil
}

// FellBack reports whether Attach had to discard an unreadable database and
// start from an empty schema. Callers surface this so users know data may be
// missing.
func (b *Backend) FellBack() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.fellBack
}

// Path returns the database file path, or "" when detached.
func (b *Backend) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return ""
	}
	return b.dbPath
}

// Config returns the configuration the backend was attached with.
func (b *Backend) Config() types.Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config
}

// Backup serialises the whole database into a single image. The snapshot is
// taken with VACUUM INTO, so it is consistent and compacted.
func (b *Backend) Backup() ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrBackendDetached
	}

	tmp := filepath.Join(filepath.Dir(b.dbPath), fmt.Sprintf(".backup-%s.db", uuid.Must(uuid.NewV7())))
	defer os.Remove(tmp)

	if _, err := b.db.Exec(fmt.Sprintf("VACUUM INTO '%s'", strings.ReplaceAll(tmp, "'", "''"))); err != nil {
		return nil, &types.StoreError{Op: "backup", Err: err}
	}
	data, err := os.ReadFile(tmp)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	log.WithFields(log.Fields{
		"path":  b.dbPath,
		"bytes": len(data),
	}).Info("sqlite: backup taken")
	return data, nil
}

// Restore replaces the entire database with a snapshot produced by Backup.
// The snapshot is staged and opened first; the live file is only swapped
// once the snapshot has passed the integrity check and schema upgrade. The
// caller must not run other operations concurrently with Restore.
func (b *Backend) Restore(data []byte) error {
	if len(data) < len(sqliteHeader) || !bytes.Equal(data[:len(sqliteHeader)], sqliteHeader) {
		return types.ErrInvalidSnapshot
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrBackendDetached
	}

	staged, err := stageFile(filepath.Dir(b.dbPath), ".restore-*.db", data)
	if err != nil {
		return fmt.Errorf("staging snapshot: %w", err)
	}
	defer os.Remove(staged)

	check, err := openDB(staged)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidSnapshot, err)
	}
	if err := check.Close(); err != nil {
		return fmt.Errorf("closing staged snapshot: %w", err)
	}

	if err := b.db.Close(); err != nil {
		return fmt.Errorf("closing live database: %w", err)
	}
	b.db = nil

	if err := os.Rename(staged, b.dbPath); err != nil {
		// Reopen the untouched live file so the backend stays usable.
		db, reopenErr := openDB(b.dbPath)
		if reopenErr != nil {
			b.attached = false
			return fmt.Errorf("swapping snapshot: %w (reopen: %v)", err, reopenErr)
		}
		b.db = db
		return fmt.Errorf("swapping snapshot: %w", err)
	}

	db, err := openDB(b.dbPath)
	if err != nil {
		b.attached = false
		return fmt.Errorf("opening restored database: %w", err)
	}
	b.db = db

	log.WithFields(log.Fields{
		"path":  b.dbPath,
		"bytes": len(data),
	}).Info("sqlite: database restored")
	return nil
}

// openDB opens a database file with foreign keys enforced, verifies it, and
// applies the schema and views.
func openDB(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &types.StoreError{Op: "open", Err: err}
	}
	// One connection keeps per-connection pragmas and the single-handle
	// model consistent.
	db.SetMaxOpenConns(1)

	if err := checkIntegrity(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	if err := createViews(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// checkIntegrity runs PRAGMA quick_check. A file that is not a database
// fails here with the engine's "file is not a database" error.
func checkIntegrity(db *sql.DB) error {
	var result string
	if err := db.QueryRow("PRAGMA quick_check").Scan(&result); err != nil {
		return &types.StoreError{Op: "integrity check", Err: err}
	}
	if result != "ok" {
		return &types.StoreError{Op: "integrity check", Err: fmt.Errorf("quick_check: %s", result)}
	}
	return nil
}

// SnapshotName returns a unique file name for a backup image.
func SnapshotName() string {
	return fmt.Sprintf("omnibus-%s.db", uuid.Must(uuid.NewV7()))
}

// readLock acquires the read lock and verifies the backend is attached.
// On success the caller must call b.mu.RUnlock.
func (b *Backend) readLock() error {
	b.mu.RLock()
	if !b.attached {
		b.mu.RUnlock()
		return types.ErrBackendDetached
	}
	return nil
}

// writeLock acquires the write lock and verifies the backend is attached.
// On success the caller must call b.mu.Unlock.
func (b *Backend) writeLock() error {
	b.mu.Lock()
	if !b.attached {
		b.mu.Unlock()
		return types.ErrBackendDetached
	}
	return nil
}
