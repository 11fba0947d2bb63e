package extraction

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/quaestio/internal/common"
	"github.com/ternarybob/quaestio/internal/interfaces"
	"github.com/ternarybob/quaestio/internal/models"
	"github.com/ternarybob/quaestio/internal/schema"
)

type fakeLLM struct {
	mu       sync.Mutex
	generate func(parts []interfaces.Part) (string, error)
	calls    int
}

func (f *fakeLLM) Generate(_ context.Context, parts []interfaces.Part, _ interfaces.GenerateOptions) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.generate(parts)
}

func testConfig() *common.PipelineConfig {
	return &common.PipelineConfig{
		QuestionsPerTopic: 5,
		MaxQuestions:      8,
		SectionStagger:    time.Millisecond,
		ExtractionTokens:  32768,
	}
}

const validTopicJSON = `{
	"title": "Kinematics",
	"objectives": ["Define velocity and acceleration", "Calculate displacement from velocity-time graphs"],
	"difficulty": 3,
	"question_type_distribution": {"mcq_single": 0.5, "mcq_multi": 0.2, "short_answer": 0.3},
	"example_questions": ["Q1", "Q2", "Q3", "Q4"]
}`

func twoSectionOutline() models.Outline {
	return models.Outline{Sections: []models.OutlineSection{
		{Title: "Kinematics", PageRange: [2]int{1, 5}, Subtopics: []string{"velocity", "acceleration"}},
		{Title: "Dynamics", PageRange: [2]int{6, 10}},
	}}
}

func TestExtractSections_AllSucceed(t *testing.T) {
	service := NewService(&fakeLLM{
		generate: func(_ []interfaces.Part) (string, error) { return validTopicJSON, nil },
	}, testConfig(), common.GetLogger())

	topics, warnings, err := service.ExtractSections(context.Background(), []byte("%PDF"), nil, twoSectionOutline())

	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Empty(t, warnings)
	assert.Equal(t, 0, topics[0].SectionIndex)
	assert.Equal(t, 1, topics[1].SectionIndex)
	assert.Equal(t, 1, topics[0].PageStart)
	assert.Equal(t, 5, topics[0].PageEnd)
	assert.False(t, topics[0].Fallback)
}

func TestExtractSections_FailedSectionYieldsFallback(t *testing.T) {
	service := NewService(&fakeLLM{
		generate: func(parts []interfaces.Part) (string, error) {
			for _, part := range parts {
				if strings.Contains(part.Text, `"Dynamics"`) {
					return "", errors.New("provider unavailable")
				}
			}
			return validTopicJSON, nil
		},
	}, testConfig(), common.GetLogger())

	topics, warnings, err := service.ExtractSections(context.Background(), []byte("%PDF"), nil, twoSectionOutline())

	require.NoError(t, err, "one failed section must not fail the material")
	require.Len(t, topics, 2)
	assert.False(t, topics[0].Fallback)
	assert.True(t, topics[1].Fallback)
	assert.Equal(t, "Dynamics", topics[1].Title)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "fallback")
}

func TestFallbackTopic_PassesTopicValidation(t *testing.T) {
	section := models.OutlineSection{
		Title:     "Thermodynamics",
		PageRange: [2]int{11, 20},
		Subtopics: []string{"entropy", "heat engines"},
	}

	topic := fallbackTopic(section, 2)

	assert.Empty(t, schema.ValidateTopic(&topic))
	assert.True(t, topic.Fallback)
	assert.Equal(t, 2, topic.SectionIndex)
	assert.Equal(t, 11, topic.PageStart)
	assert.Equal(t, 20, topic.PageEnd)
}

func TestExtractSections_OrderMatchesOutline(t *testing.T) {
	outline := models.Outline{Sections: []models.OutlineSection{
		{Title: "A", PageRange: [2]int{1, 2}},
		{Title: "B", PageRange: [2]int{3, 4}},
		{Title: "C", PageRange: [2]int{5, 6}},
	}}
	// Every call fails so topics are all deterministic fallbacks carrying
	// the section title.
	service := NewService(&fakeLLM{
		generate: func(_ []interfaces.Part) (string, error) { return "", errors.New("down") },
	}, testConfig(), common.GetLogger())

	topics, _, err := service.ExtractSections(context.Background(), []byte("%PDF"), nil, outline)

	require.NoError(t, err)
	require.Len(t, topics, 3)
	assert.Equal(t, "A", topics[0].Title)
	assert.Equal(t, "B", topics[1].Title)
	assert.Equal(t, "C", topics[2].Title)
}
