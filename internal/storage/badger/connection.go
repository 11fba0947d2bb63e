package badger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestio/internal/common"
	"github.com/timshannon/badgerhold/v4"
)

// gcInterval is how often the value log garbage collector runs
const gcInterval = 10 * time.Minute

// BadgerDB manages the Badger database connection
type BadgerDB struct {
	store  *badgerhold.Store
	logger arbor.ILogger
	config *common.BadgerConfig
	gcStop chan struct{}
}

// NewBadgerDB creates a new Badger database connection
func NewBadgerDB(logger arbor.ILogger, config *common.BadgerConfig) (*BadgerDB, error) {
	// If reset_on_startup is enabled, delete the existing database
	if config.ResetOnStartup {
		if _, err := os.Stat(config.Path); err == nil {
			logger.Debug().Str("path", config.Path).Msg("Deleting existing database (reset_on_startup=true)")
			if err := os.RemoveAll(config.Path); err != nil {
				logger.Warn().Err(err).Str("path", config.Path).Msg("Failed to delete database directory")
			}
		}
	}

	// Ensure the directory exists
	dir := filepath.Dir(config.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	logger.Debug().Str("path", config.Path).Msg("Opening Badger database connection")

	options := badgerhold.DefaultOptions
	options.Dir = config.Path
	options.ValueDir = config.Path
	options.Logger = nil // Disable default badger logger to use arbor

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	logger.Debug().Str("path", config.Path).Msg("Badger database initialized")

	db := &BadgerDB{
		store:  store,
		logger: logger,
		config: config,
		gcStop: make(chan struct{}),
	}
	go db.runGC()

	return db, nil
}

// runGC reclaims value log space periodically. Badger does not garbage
// collect on its own; each tick repeats collection until a pass rewrites
// nothing.
func (b *BadgerDB) runGC() {
	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.gcStop:
			return
		case <-ticker.C:
			for {
				err := b.store.Badger().RunValueLogGC(0.5)
				if err != nil {
					if err != badgerdb.ErrNoRewrite {
						b.logger.Warn().Err(err).Msg("Value log GC failed")
					}
					break
				}
			}
		}
	}
}

// Store returns the underlying badgerhold store
func (b *BadgerDB) Store() *badgerhold.Store {
	return b.store
}

// Close stops the GC loop and closes the database connection
func (b *BadgerDB) Close() error {
	close(b.gcStop)
	if b.store != nil {
		return b.store.Close()
	}
	return nil
}
