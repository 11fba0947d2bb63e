// -----------------------------------------------------------------------
// Storage manager - aggregates all Badger-backed stores
// -----------------------------------------------------------------------

package badger

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestio/internal/common"
	"github.com/ternarybob/quaestio/internal/interfaces"
)

// Manager implements interfaces.StorageManager over a single Badger
// database plus a filesystem object store for raw material bytes.
type Manager struct {
	db        *BadgerDB
	materials interfaces.MaterialStorage
	topics    interfaces.TopicStorage
	questions interfaces.QuestionStorage
	jobs      interfaces.JobStorage
	keys      interfaces.AnswerKeyStorage
	kv        interfaces.KeyValueStorage
	objects   interfaces.ObjectStorage
	logger    arbor.ILogger
}

var _ interfaces.StorageManager = (*Manager)(nil)

// NewManager opens the database and wires up all stores
func NewManager(config *common.StorageConfig, logger arbor.ILogger) (*Manager, error) {
	db, err := NewBadgerDB(logger, &config.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	objects, err := NewObjectStorage(config.Objects, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{
		db:        db,
		materials: NewMaterialStorage(db, logger),
		topics:    NewTopicStorage(db, logger),
		questions: NewQuestionStorage(db, logger),
		jobs:      NewJobStorage(db, logger),
		keys:      NewAnswerKeyStorage(db, logger),
		kv:        NewKVStorage(db, logger),
		objects:   objects,
		logger:    logger,
	}, nil
}

func (m *Manager) MaterialStorage() interfaces.MaterialStorage   { return m.materials }
func (m *Manager) TopicStorage() interfaces.TopicStorage         { return m.topics }
func (m *Manager) QuestionStorage() interfaces.QuestionStorage   { return m.questions }
func (m *Manager) JobStorage() interfaces.JobStorage             { return m.jobs }
func (m *Manager) AnswerKeyStorage() interfaces.AnswerKeyStorage { return m.keys }
func (m *Manager) KeyValueStorage() interfaces.KeyValueStorage   { return m.kv }
func (m *Manager) ObjectStorage() interfaces.ObjectStorage       { return m.objects }

// Close shuts down the database
func (m *Manager) Close() error {
	return m.db.Close()
}
