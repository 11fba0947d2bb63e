package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/quaestio/internal/interfaces"
	"github.com/ternarybob/quaestio/internal/models"
)

// memoryStore is an in-memory StorageManager for pipeline tests
type memoryStore struct {
	mu        sync.Mutex
	materials map[string]*models.Material
	topics    map[string]*models.TopicRecord
	questions map[string]*models.Question
	jobs      map[string]*models.AnalysisJob
	keys      map[string]*models.AnswerKey
	objects   map[string][]byte
	kv        map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		materials: make(map[string]*models.Material),
		topics:    make(map[string]*models.TopicRecord),
		questions: make(map[string]*models.Question),
		jobs:      make(map[string]*models.AnalysisJob),
		keys:      make(map[string]*models.AnswerKey),
		objects:   make(map[string][]byte),
		kv:        make(map[string]string),
	}
}

func (m *memoryStore) MaterialStorage() interfaces.MaterialStorage   { return m }
func (m *memoryStore) TopicStorage() interfaces.TopicStorage         { return m }
func (m *memoryStore) QuestionStorage() interfaces.QuestionStorage   { return m }
func (m *memoryStore) JobStorage() interfaces.JobStorage             { return m }
func (m *memoryStore) AnswerKeyStorage() interfaces.AnswerKeyStorage { return m }
func (m *memoryStore) KeyValueStorage() interfaces.KeyValueStorage   { return m }
func (m *memoryStore) ObjectStorage() interfaces.ObjectStorage       { return m }
func (m *memoryStore) Close() error                                  { return nil }

func (m *memoryStore) SaveMaterial(_ context.Context, material *models.Material) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *material
	m.materials[material.ID] = &copied
	return nil
}

func (m *memoryStore) GetMaterial(_ context.Context, id string) (*models.Material, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	material, ok := m.materials[id]
	if !ok {
		return nil, fmt.Errorf("material %s not found", id)
	}
	copied := *material
	return &copied, nil
}

func (m *memoryStore) ListMaterials(_ context.Context) ([]*models.Material, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Material, 0, len(m.materials))
	for _, material := range m.materials {
		copied := *material
		out = append(out, &copied)
	}
	return out, nil
}

func (m *memoryStore) DeleteMaterial(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.materials, id)
	return nil
}

func (m *memoryStore) SaveTopic(_ context.Context, topic *models.TopicRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *topic
	m.topics[topic.ID] = &copied
	return nil
}

func (m *memoryStore) GetTopic(_ context.Context, id string) (*models.TopicRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	topic, ok := m.topics[id]
	if !ok {
		return nil, fmt.Errorf("topic %s not found", id)
	}
	copied := *topic
	return &copied, nil
}

func (m *memoryStore) ListTopicsByMaterial(_ context.Context, materialID string) ([]*models.TopicRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.TopicRecord
	for _, topic := range m.topics {
		if topic.MaterialID == materialID {
			copied := *topic
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memoryStore) SaveQuestion(_ context.Context, question *models.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *question
	m.questions[question.ID] = &copied
	return nil
}

func (m *memoryStore) GetQuestion(_ context.Context, id string) (*models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	question, ok := m.questions[id]
	if !ok {
		return nil, fmt.Errorf("question %s not found", id)
	}
	copied := *question
	return &copied, nil
}

func (m *memoryStore) ListQuestionsByTopic(_ context.Context, topicID string) ([]*models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Question
	for _, question := range m.questions {
		if question.TopicID == topicID {
			copied := *question
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memoryStore) ListQuestionsByMaterial(_ context.Context, materialID string) ([]*models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Question
	for _, question := range m.questions {
		if question.MaterialID == materialID {
			copied := *question
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memoryStore) ListQuestionsAnalyzedBefore(_ context.Context, cutoff time.Time) ([]*models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Question
	for _, question := range m.questions {
		if question.AnalyzedAt != nil && question.AnalyzedAt.Before(cutoff) {
			copied := *question
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memoryStore) SaveJob(_ context.Context, job *models.AnalysisJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *job
	m.jobs[job.ID] = &copied
	return nil
}

func (m *memoryStore) GetJob(_ context.Context, id string) (*models.AnalysisJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s not found", id)
	}
	copied := *job
	return &copied, nil
}

func (m *memoryStore) ListJobs(_ context.Context, limit int) ([]*models.AnalysisJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.AnalysisJob, 0, len(m.jobs))
	for _, job := range m.jobs {
		copied := *job
		out = append(out, &copied)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryStore) ListActiveJobsByScope(_ context.Context, scope string) ([]*models.AnalysisJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.AnalysisJob
	for _, job := range m.jobs {
		if job.Scope == scope && !job.IsTerminal() {
			copied := *job
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memoryStore) SaveAnswerKey(_ context.Context, key *models.AnswerKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *key
	m.keys[key.Scope] = &copied
	return nil
}

func (m *memoryStore) GetAnswerKey(_ context.Context, scope string) (*models.AnswerKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, ok := m.keys[scope]
	if !ok {
		return nil, fmt.Errorf("no answer key for scope %s", scope)
	}
	copied := *key
	return &copied, nil
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.kv[key]
	if !ok {
		return "", fmt.Errorf("key %s not found", key)
	}
	return value, nil
}

func (m *memoryStore) Set(_ context.Context, key, value, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kv[key] = value
	return nil
}

// Delete serves both the key/value and object storage interfaces; the key
// spaces do not overlap in tests.
func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.kv, key)
	delete(m.objects, key)
	return nil
}

func (m *memoryStore) Upload(_ context.Context, path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = data
	return nil
}

func (m *memoryStore) Download(_ context.Context, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[path]
	if !ok {
		return nil, fmt.Errorf("object %s not found", path)
	}
	return data, nil
}

// countingLLM tracks per-question attempt counts and the concurrent-call
// high-water mark
type countingLLM struct {
	mu        sync.Mutex
	attempts  map[string]int
	inFlight  int
	highWater int
	respond   func(prompt string, attempt int) (string, error)
}

func newCountingLLM(respond func(prompt string, attempt int) (string, error)) *countingLLM {
	return &countingLLM{attempts: make(map[string]int), respond: respond}
}

func (c *countingLLM) Generate(_ context.Context, parts []interfaces.Part, _ interfaces.GenerateOptions) (string, error) {
	var prompt string
	for _, part := range parts {
		prompt += part.Text
	}

	c.mu.Lock()
	c.attempts[prompt]++
	attempt := c.attempts[prompt]
	c.inFlight++
	if c.inFlight > c.highWater {
		c.highWater = c.inFlight
	}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight--
		c.mu.Unlock()
	}()

	return c.respond(prompt, attempt)
}
