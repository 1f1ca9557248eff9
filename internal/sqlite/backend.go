// Package sqlite implements the SQLite storage backend for the creature
// catalog. Each creature is stored across three tables (creatures,
// creature_types, creature_images) linked by the pokedex number, and every
// multi-table write runs in a single transaction.
package sqlite

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/dexhub/internal/logging"
	"github.com/mesh-intelligence/dexhub/pkg/types"
)

// DatabaseFile is the file name of the catalog database inside DataDir.
const DatabaseFile = "dexhub.db"

var _ types.Store = (*Backend)(nil)

// Backend implements types.Store on top of SQLite.
//
// mu guards the attach lifecycle only. Operations hold the read side so that
// Detach cannot close the pool underneath them; they never serialize each
// other. Write conflicts are resolved by SQLite locking and the version column.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	logger   *log.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l *log.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{logger: log.Default()}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = logging.Component(b.logger, "sqlite")
	return b
}

// Attach opens (or creates) the catalog database in config.DataDir and
// ensures the schema exists. Existing data is kept.
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

	dbPath := filepath.Join(dataDir, DatabaseFile)
	db, err := sql.Open("sqlite", dsn(dbPath, config))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return err
	}

	b.db = db
	b.config = config
	b.attached = true

	b.logger.Debug("attached", "path", dbPath)
	return nil
}

// Detach closes the database. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return fmt.Errorf("closing database: %w", err)
		}
		b.db = nil
	}

	b.attached = false
	b.logger.Debug("detached")
	return nil
}

// dsn builds the modernc.org/sqlite connection string. WAL lets readers
// proceed during a write, the busy timeout makes concurrent writers queue,
// and immediate transactions take the write lock at BEGIN so a transaction
// never has to upgrade a read lock.
func dsn(path string, config types.Config) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", config.GetBusyTimeout().Milliseconds()))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "foreign_keys(1)")
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}

// initSchema creates tables and indexes if they do not exist.
func initSchema(db *sql.DB) error {
	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	for _, ddl := range indexDDL {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return nil
}
