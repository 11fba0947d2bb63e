package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/quaestio/internal/models"
)

func intPtr(v int) *int { return &v }

func validMCQCandidate() models.QuestionCandidate {
	return models.QuestionCandidate{
		Stem:               "What is the SI unit of force?",
		Type:               models.TypeMCQSingle,
		Choices:            []string{"Newton", "Joule", "Watt", "Pascal"},
		CorrectChoiceIndex: intPtr(0),
		SolutionSteps:      []string{"Force is measured in newtons."},
		Difficulty:         2,
	}
}

func TestValidateCandidate_ValidMCQ(t *testing.T) {
	candidate := validMCQCandidate()
	assert.Empty(t, ValidateCandidate(&candidate))
}

func TestValidateCandidate_MCQChoiceCount(t *testing.T) {
	candidate := validMCQCandidate()
	candidate.Choices = candidate.Choices[:3]

	issues := ValidateCandidate(&candidate)
	if assert.Len(t, issues, 1) {
		assert.Equal(t, "choices", issues[0].Field)
		assert.Contains(t, issues[0].Message, "exactly 4")
	}
}

func TestValidateCandidate_CorrectIndexRequiredAndBounded(t *testing.T) {
	candidate := validMCQCandidate()
	candidate.CorrectChoiceIndex = nil
	issues := ValidateCandidate(&candidate)
	if assert.Len(t, issues, 1) {
		assert.Equal(t, "correct_choice_index", issues[0].Field)
	}

	candidate.CorrectChoiceIndex = intPtr(4)
	issues = ValidateCandidate(&candidate)
	if assert.Len(t, issues, 1) {
		assert.Contains(t, issues[0].Message, "out of range")
	}
}

func TestValidateCandidate_MCQMultiIndexes(t *testing.T) {
	candidate := validMCQCandidate()
	candidate.Type = models.TypeMCQMulti
	candidate.CorrectChoiceIndex = nil
	candidate.CorrectChoiceIndexes = []int{0, 2}
	assert.Empty(t, ValidateCandidate(&candidate))

	candidate.CorrectChoiceIndexes = nil
	issues := ValidateCandidate(&candidate)
	if assert.Len(t, issues, 1) {
		assert.Equal(t, "correct_choice_indexes", issues[0].Field)
	}

	candidate.CorrectChoiceIndexes = []int{1, 7}
	issues = ValidateCandidate(&candidate)
	if assert.Len(t, issues, 1) {
		assert.Contains(t, issues[0].Message, "out of range")
	}
}

func TestValidateCandidate_ShortAnswerCarriesNoChoices(t *testing.T) {
	candidate := models.QuestionCandidate{
		Stem:          "State Newton's second law.",
		Type:          models.TypeShortAnswer,
		SolutionSteps: []string{"F = ma."},
		Difficulty:    1,
	}
	assert.Empty(t, ValidateCandidate(&candidate))

	candidate.Choices = []string{"F = ma", "F = mv"}
	issues := ValidateCandidate(&candidate)
	if assert.Len(t, issues, 1) {
		assert.Equal(t, "choices", issues[0].Field)
	}
}

func TestValidateCandidate_StemStepsAndType(t *testing.T) {
	candidate := models.QuestionCandidate{Type: "essay", Difficulty: 3}

	issues := ValidateCandidate(&candidate)
	fields := make([]string, len(issues))
	for i, issue := range issues {
		fields[i] = issue.Field
	}
	assert.Contains(t, fields, "stem")
	assert.Contains(t, fields, "solution_steps")
	assert.Contains(t, fields, "type")
}
