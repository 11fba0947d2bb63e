package authoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/quaestio/internal/common"
	"github.com/ternarybob/quaestio/internal/interfaces"
	"github.com/ternarybob/quaestio/internal/models"
)

type fakeLLM struct {
	onGenerate func(prompt string) (string, error)
	prompts    []string
}

func (f *fakeLLM) Generate(_ context.Context, parts []interfaces.Part, _ interfaces.GenerateOptions) (string, error) {
	var prompt string
	for _, part := range parts {
		prompt += part.Text
	}
	f.prompts = append(f.prompts, prompt)
	return f.onGenerate(prompt)
}

func testConfig() *common.PipelineConfig {
	return &common.PipelineConfig{
		QuestionsPerTopic: 5,
		MaxQuestions:      8,
		SectionStagger:    time.Millisecond,
	}
}

func testTopic() *models.TopicRecord {
	return &models.TopicRecord{
		ID:         "top_1",
		MaterialID: "mat_1",
		Title:      "Kinematics",
		Objectives: []string{"Define velocity", "Calculate displacement"},
		Difficulty: 3,
	}
}

func mcqCandidate(stem string) map[string]interface{} {
	return map[string]interface{}{
		"stem":                 stem,
		"type":                 "mcq_single",
		"choices":              []string{"A", "B", "C", "D"},
		"correct_choice_index": 0,
		"solution_steps":       []string{"recall the definition"},
		"objective_index":      0,
		"difficulty":           3,
	}
}

func candidatesJSON(stems ...string) string {
	candidates := make([]map[string]interface{}, 0, len(stems))
	for _, stem := range stems {
		candidates = append(candidates, mcqCandidate(stem))
	}
	encoded, _ := json.Marshal(map[string]interface{}{"candidates": candidates})
	return string(encoded)
}

func judgeEntry(binary [3]int, likert [3]float64) map[string]interface{} {
	return map[string]interface{}{
		"binary": map[string]int{
			"answerable_from_context":  binary[0],
			"has_single_clear_correct": binary[1],
			"format_justified":         binary[2],
		},
		"likert": map[string]float64{
			"distractors_plausible":  likert[0],
			"clarity":                likert[1],
			"difficulty_appropriate": likert[2],
		},
	}
}

func judgeJSON(entries ...map[string]interface{}) string {
	encoded, _ := json.Marshal(map[string]interface{}{"results": entries})
	return string(encoded)
}

func isJudgePrompt(prompt string) bool  { return strings.Contains(prompt, "Judge each question") }
func isRepairPrompt(prompt string) bool { return strings.Contains(prompt, "Rewrite each question") }

func TestAuthorQuestions_KeepRepairRejectFlow(t *testing.T) {
	judge := judgeJSON(
		judgeEntry([3]int{1, 1, 1}, [3]float64{5, 5, 5}), // 10.0 keep
		judgeEntry([3]int{1, 1, 1}, [3]float64{4, 4, 4}), // 9.2 keep
		judgeEntry([3]int{1, 1, 0}, [3]float64{3, 3, 3}), // 6.4 repair
		judgeEntry([3]int{1, 0, 0}, [3]float64{3, 3, 3}), // 4.4 repair
		judgeEntry([3]int{0, 0, 0}, [3]float64{1, 1, 1}), // 0.8 reject
	)
	llmFake := &fakeLLM{onGenerate: func(prompt string) (string, error) {
		switch {
		case isJudgePrompt(prompt):
			return judge, nil
		case isRepairPrompt(prompt):
			return candidatesJSON("repaired q3", "repaired q4"), nil
		default:
			return candidatesJSON("q1", "q2", "q3", "q4", "q5"), nil
		}
	}}
	service := NewService(llmFake, testConfig(), common.GetLogger())

	questions, _, err := service.AuthorQuestions(context.Background(), testTopic(), 3)

	require.NoError(t, err)
	require.Len(t, questions, 4, "2 kept + 2 repaired")

	// Overgeneration: desired 3 requests ceil(3*1.5) = 5 candidates.
	assert.Contains(t, llmFake.prompts[0], "Generate exactly 5")

	// Ranked by score descending.
	assert.Equal(t, "q1", questions[0].Stem)
	assert.Equal(t, "q2", questions[1].Stem)
	assert.Equal(t, "repaired q3", questions[2].Stem)
	assert.Equal(t, "repaired q4", questions[3].Stem)
	for i := 1; i < len(questions); i++ {
		assert.GreaterOrEqual(t, questions[i-1].Score, questions[i].Score)
	}

	assert.False(t, questions[0].Repaired)
	assert.True(t, questions[2].Repaired)
	assert.Equal(t, "top_1", questions[0].TopicID)
	assert.Equal(t, "mat_1", questions[0].MaterialID)
}

func TestAuthorQuestions_ModelVerdictLabelIgnored(t *testing.T) {
	// The judge response claims "keep" on a candidate whose dimensions
	// compute to a rejecting score; the label must not admit it.
	entry := judgeEntry([3]int{0, 0, 0}, [3]float64{1, 1, 1})
	entry["verdict"] = "keep"
	llmFake := &fakeLLM{onGenerate: func(prompt string) (string, error) {
		if isJudgePrompt(prompt) {
			return judgeJSON(entry), nil
		}
		return candidatesJSON("q1"), nil
	}}
	service := NewService(llmFake, testConfig(), common.GetLogger())

	questions, _, err := service.AuthorQuestions(context.Background(), testTopic(), 1)

	require.NoError(t, err)
	assert.Empty(t, questions, "score-derived reject must override the model's keep label")
}

func TestAuthorQuestions_JudgeFailureAdmitsWithNeutralDefaults(t *testing.T) {
	llmFake := &fakeLLM{onGenerate: func(prompt string) (string, error) {
		if isJudgePrompt(prompt) {
			return "", errors.New("judge provider down")
		}
		return candidatesJSON("q1", "q2"), nil
	}}
	service := NewService(llmFake, testConfig(), common.GetLogger())

	questions, _, err := service.AuthorQuestions(context.Background(), testTopic(), 1)

	require.NoError(t, err)
	require.Len(t, questions, 2)
	for _, q := range questions {
		assert.InDelta(t, 8.4, q.Score, 0.001)
	}
}

func TestAuthorQuestions_CapsAtMaxQuestions(t *testing.T) {
	stems := make([]string, 12)
	entries := make([]map[string]interface{}, 12)
	for i := range stems {
		stems[i] = fmt.Sprintf("q%d", i)
		entries[i] = judgeEntry([3]int{1, 1, 1}, [3]float64{5, 5, 5})
	}
	llmFake := &fakeLLM{onGenerate: func(prompt string) (string, error) {
		if isJudgePrompt(prompt) {
			return judgeJSON(entries...), nil
		}
		return candidatesJSON(stems...), nil
	}}
	service := NewService(llmFake, testConfig(), common.GetLogger())

	questions, _, err := service.AuthorQuestions(context.Background(), testTopic(), 8)

	require.NoError(t, err)
	assert.Len(t, questions, 8)
}

func TestAuthorQuestions_GenerationFailureIsError(t *testing.T) {
	llmFake := &fakeLLM{onGenerate: func(_ string) (string, error) {
		return "", errors.New("provider down")
	}}
	service := NewService(llmFake, testConfig(), common.GetLogger())

	_, _, err := service.AuthorQuestions(context.Background(), testTopic(), 3)
	require.Error(t, err)
}
