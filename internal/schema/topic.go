package schema

import (
	"fmt"
	"math"
	"strings"

	"github.com/ternarybob/quaestio/internal/models"
)

const (
	// distributionTolerance is the allowed deviation of question type
	// proportions from summing to exactly 1.0
	distributionTolerance = 0.05

	// minExampleQuestions is the minimum number of example questions a
	// topic must carry
	minExampleQuestions = 4
)

// AllowedObjectiveVerbs are the measurable verbs a learning objective may
// start with
var AllowedObjectiveVerbs = map[string]bool{
	"define": true, "explain": true, "describe": true, "identify": true,
	"calculate": true, "compute": true, "solve": true, "derive": true,
	"apply": true, "compare": true, "contrast": true, "classify": true,
	"distinguish": true, "analyze": true, "evaluate": true, "state": true,
	"list": true, "prove": true, "estimate": true, "interpret": true,
	"predict": true, "construct": true, "demonstrate": true, "summarize": true,
	"sketch": true, "convert": true, "determine": true, "select": true,
}

// BannedObjectiveVerbs are vague verbs that make an objective unmeasurable
var BannedObjectiveVerbs = map[string]bool{
	"understand": true, "know": true, "learn": true, "appreciate": true,
	"grasp": true, "comprehend": true, "realize": true, "familiarize": true,
	"be": true, "see": true,
}

var questionTypeNames = map[string]bool{
	string(models.TypeMCQSingle):   true,
	string(models.TypeMCQMulti):    true,
	string(models.TypeShortAnswer): true,
}

// ValidateTopic checks a TopicRecord against the section-extraction schema:
// measurable objectives, difficulty bounds, question type distribution
// tolerance, and the example question minimum.
func ValidateTopic(topic *models.TopicRecord) []Issue {
	var issues []Issue

	if strings.TrimSpace(topic.Title) == "" {
		issues = append(issues, Issue{Field: "title", Message: "topic title is required"})
	}
	if len(topic.Objectives) == 0 {
		issues = append(issues, Issue{Field: "objectives", Message: "at least one objective is required"})
	}

	for i, objective := range topic.Objectives {
		field := fmt.Sprintf("objectives[%d]", i)
		verb := firstWord(objective)
		if verb == "" {
			issues = append(issues, Issue{Field: field, Message: "objective is empty"})
			continue
		}
		if BannedObjectiveVerbs[verb] {
			issues = append(issues, Issue{Field: field,
				Message: fmt.Sprintf("objective starts with banned vague verb %q", verb)})
		} else if !AllowedObjectiveVerbs[verb] {
			issues = append(issues, Issue{Field: field,
				Message: fmt.Sprintf("objective starts with %q, not a recognized measurable verb", verb)})
		}
	}

	if topic.Difficulty < 1 || topic.Difficulty > 5 {
		issues = append(issues, Issue{Field: "difficulty",
			Message: fmt.Sprintf("difficulty %d is outside 1-5", topic.Difficulty)})
	}

	if len(topic.QuestionTypes) > 0 {
		sum := 0.0
		for name, proportion := range topic.QuestionTypes {
			if !questionTypeNames[name] {
				issues = append(issues, Issue{Field: "question_type_distribution",
					Message: fmt.Sprintf("unknown question type %q", name)})
			}
			sum += proportion
		}
		if math.Abs(sum-1.0) > distributionTolerance {
			issues = append(issues, Issue{Field: "question_type_distribution",
				Message: fmt.Sprintf("proportions sum to %.2f, expected 1.0 +/- %.2f", sum, distributionTolerance)})
		}
	}

	if len(topic.ExampleQuestions) < minExampleQuestions {
		issues = append(issues, Issue{Field: "example_questions",
			Message: fmt.Sprintf("%d example questions, minimum is %d", len(topic.ExampleQuestions), minExampleQuestions)})
	}

	return issues
}

func firstWord(s string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], ".,;:")
}
