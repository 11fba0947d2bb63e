package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/quaestio/internal/models"
)

func validTopic() models.TopicRecord {
	return models.TopicRecord{
		Title:      "Kinematics",
		Objectives: []string{"Define velocity and acceleration.", "Calculate displacement from a velocity-time graph."},
		Difficulty: 3,
		QuestionTypes: map[string]float64{
			"mcq_single":   0.5,
			"mcq_multi":    0.2,
			"short_answer": 0.3,
		},
		ExampleQuestions: []string{
			"What is the SI unit of velocity?",
			"A car accelerates from rest at 2 m/s^2. What is its speed after 5 s?",
			"Distinguish between speed and velocity.",
			"Sketch the velocity-time graph for constant acceleration.",
		},
	}
}

func TestValidateTopic_ValidTopicHasNoIssues(t *testing.T) {
	topic := validTopic()
	assert.Empty(t, ValidateTopic(&topic))
}

func TestValidateTopic_BannedObjectiveVerb(t *testing.T) {
	topic := validTopic()
	topic.Objectives[0] = "Understand velocity and acceleration."

	issues := ValidateTopic(&topic)
	if assert.Len(t, issues, 1) {
		assert.Equal(t, "objectives[0]", issues[0].Field)
		assert.Contains(t, issues[0].Message, "banned vague verb")
	}
}

func TestValidateTopic_UnrecognizedObjectiveVerb(t *testing.T) {
	topic := validTopic()
	topic.Objectives[1] = "Ponder the meaning of acceleration."

	issues := ValidateTopic(&topic)
	if assert.Len(t, issues, 1) {
		assert.Contains(t, issues[0].Message, "not a recognized measurable verb")
	}
}

func TestValidateTopic_VerbMatchingIsCaseInsensitive(t *testing.T) {
	topic := validTopic()
	topic.Objectives[0] = "DEFINE velocity."
	assert.Empty(t, ValidateTopic(&topic))
}

func TestValidateTopic_DistributionMustSumToOne(t *testing.T) {
	topic := validTopic()
	topic.QuestionTypes = map[string]float64{
		"mcq_single":   0.8,
		"short_answer": 0.5,
	}

	issues := ValidateTopic(&topic)
	if assert.Len(t, issues, 1) {
		assert.Equal(t, "question_type_distribution", issues[0].Field)
		assert.Contains(t, issues[0].Message, "1.30")
	}

	// Within tolerance passes
	topic.QuestionTypes = map[string]float64{"mcq_single": 0.52, "short_answer": 0.52}
	assert.Empty(t, ValidateTopic(&topic))
}

func TestValidateTopic_UnknownQuestionType(t *testing.T) {
	topic := validTopic()
	topic.QuestionTypes = map[string]float64{"essay": 1.0}

	issues := ValidateTopic(&topic)
	if assert.Len(t, issues, 1) {
		assert.Contains(t, issues[0].Message, `unknown question type "essay"`)
	}
}

func TestValidateTopic_DifficultyBounds(t *testing.T) {
	topic := validTopic()
	topic.Difficulty = 6
	issues := ValidateTopic(&topic)
	if assert.Len(t, issues, 1) {
		assert.Equal(t, "difficulty", issues[0].Field)
	}

	topic.Difficulty = 0
	assert.Len(t, ValidateTopic(&topic), 1)
}

func TestValidateTopic_ExampleQuestionMinimum(t *testing.T) {
	topic := validTopic()
	topic.ExampleQuestions = topic.ExampleQuestions[:3]

	issues := ValidateTopic(&topic)
	if assert.Len(t, issues, 1) {
		assert.Equal(t, "example_questions", issues[0].Field)
	}
}

func TestValidateOutline_PageRanges(t *testing.T) {
	outline := models.Outline{Sections: []models.OutlineSection{
		{Title: "Intro", PageRange: [2]int{1, 4}},
		{Title: "Core", PageRange: [2]int{5, 12}},
	}}
	assert.Empty(t, ValidateOutline(&outline, 12))

	outline.Sections[1].PageRange = [2]int{5, 99}
	issues := ValidateOutline(&outline, 12)
	if assert.Len(t, issues, 1) {
		assert.Equal(t, "sections[1].page_range", issues[0].Field)
		assert.Contains(t, issues[0].Message, "exceeds document page count")
	}

	// Unknown page count disables the upper-bound check
	assert.Empty(t, ValidateOutline(&outline, 0))
}

func TestValidateOutline_InvertedRangeAndEmptyOutline(t *testing.T) {
	outline := models.Outline{Sections: []models.OutlineSection{
		{Title: "Backwards", PageRange: [2]int{7, 3}},
	}}
	issues := ValidateOutline(&outline, 10)
	if assert.Len(t, issues, 1) {
		assert.Contains(t, issues[0].Message, "start page 7 is after end page 3")
	}

	empty := models.Outline{}
	issues = ValidateOutline(&empty, 10)
	if assert.Len(t, issues, 1) {
		assert.Equal(t, "sections", issues[0].Field)
	}
}
