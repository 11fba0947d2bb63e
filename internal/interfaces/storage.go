package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/quaestio/internal/models"
)

// MaterialStorage persists uploaded material records
type MaterialStorage interface {
	SaveMaterial(ctx context.Context, material *models.Material) error
	GetMaterial(ctx context.Context, id string) (*models.Material, error)
	ListMaterials(ctx context.Context) ([]*models.Material, error)
	DeleteMaterial(ctx context.Context, id string) error
}

// TopicStorage persists extracted topic records
type TopicStorage interface {
	SaveTopic(ctx context.Context, topic *models.TopicRecord) error
	GetTopic(ctx context.Context, id string) (*models.TopicRecord, error)
	ListTopicsByMaterial(ctx context.Context, materialID string) ([]*models.TopicRecord, error)
}

// QuestionStorage persists generated questions
type QuestionStorage interface {
	SaveQuestion(ctx context.Context, question *models.Question) error
	GetQuestion(ctx context.Context, id string) (*models.Question, error)
	ListQuestionsByTopic(ctx context.Context, topicID string) ([]*models.Question, error)
	ListQuestionsByMaterial(ctx context.Context, materialID string) ([]*models.Question, error)
	ListQuestionsAnalyzedBefore(ctx context.Context, cutoff time.Time) ([]*models.Question, error)
}

// JobStorage persists analysis job records. SaveJob is an atomic
// single-record upsert; progress updates are read-modify-write against it.
type JobStorage interface {
	SaveJob(ctx context.Context, job *models.AnalysisJob) error
	GetJob(ctx context.Context, id string) (*models.AnalysisJob, error)
	ListJobs(ctx context.Context, limit int) ([]*models.AnalysisJob, error)
	ListActiveJobsByScope(ctx context.Context, scope string) ([]*models.AnalysisJob, error)
}

// AnswerKeyStorage persists externally supplied answer keys by scope
type AnswerKeyStorage interface {
	SaveAnswerKey(ctx context.Context, key *models.AnswerKey) error
	GetAnswerKey(ctx context.Context, scope string) (*models.AnswerKey, error)
}

// KeyValuePair is a stored key/value setting
type KeyValuePair struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// KeyValueStorage stores loose settings (API keys, feature toggles)
type KeyValueStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value, description string) error
	Delete(ctx context.Context, key string) error
}

// ObjectStorage stores raw material bytes. Download failure is fatal to the
// material's analysis job.
type ObjectStorage interface {
	Upload(ctx context.Context, path string, data []byte) error
	Download(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
}

// StorageManager aggregates all storage interfaces
type StorageManager interface {
	MaterialStorage() MaterialStorage
	TopicStorage() TopicStorage
	QuestionStorage() QuestionStorage
	JobStorage() JobStorage
	AnswerKeyStorage() AnswerKeyStorage
	KeyValueStorage() KeyValueStorage
	ObjectStorage() ObjectStorage
	Close() error
}
