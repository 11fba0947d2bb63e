package schema

import (
	"fmt"
	"strings"

	"github.com/ternarybob/quaestio/internal/models"
)

// mcqChoiceCount is the required number of choices for MCQ items
const mcqChoiceCount = 4

// ValidateCandidate performs the structural check applied to generated and
// repaired question candidates: non-empty stem and solution steps, and for
// MCQ items exactly four choices with a valid correct index. Repaired
// candidates are re-validated with this only, never re-judged.
func ValidateCandidate(candidate *models.QuestionCandidate) []Issue {
	var issues []Issue

	if strings.TrimSpace(candidate.Stem) == "" {
		issues = append(issues, Issue{Field: "stem", Message: "stem is required"})
	}
	if len(candidate.SolutionSteps) == 0 {
		issues = append(issues, Issue{Field: "solution_steps", Message: "at least one solution step is required"})
	}
	if candidate.Difficulty < 1 || candidate.Difficulty > 5 {
		issues = append(issues, Issue{Field: "difficulty",
			Message: fmt.Sprintf("difficulty %d is outside 1-5", candidate.Difficulty)})
	}

	switch candidate.Type {
	case models.TypeMCQSingle:
		if len(candidate.Choices) != mcqChoiceCount {
			issues = append(issues, Issue{Field: "choices",
				Message: fmt.Sprintf("%d choices, mcq_single requires exactly %d", len(candidate.Choices), mcqChoiceCount)})
		}
		if candidate.CorrectChoiceIndex == nil {
			issues = append(issues, Issue{Field: "correct_choice_index", Message: "correct_choice_index is required for mcq_single"})
		} else if *candidate.CorrectChoiceIndex < 0 || *candidate.CorrectChoiceIndex >= len(candidate.Choices) {
			issues = append(issues, Issue{Field: "correct_choice_index",
				Message: fmt.Sprintf("index %d is out of range for %d choices", *candidate.CorrectChoiceIndex, len(candidate.Choices))})
		}
	case models.TypeMCQMulti:
		if len(candidate.Choices) != mcqChoiceCount {
			issues = append(issues, Issue{Field: "choices",
				Message: fmt.Sprintf("%d choices, mcq_multi requires exactly %d", len(candidate.Choices), mcqChoiceCount)})
		}
		if len(candidate.CorrectChoiceIndexes) == 0 {
			issues = append(issues, Issue{Field: "correct_choice_indexes", Message: "at least one correct choice is required for mcq_multi"})
		}
		for _, idx := range candidate.CorrectChoiceIndexes {
			if idx < 0 || idx >= len(candidate.Choices) {
				issues = append(issues, Issue{Field: "correct_choice_indexes",
					Message: fmt.Sprintf("index %d is out of range for %d choices", idx, len(candidate.Choices))})
			}
		}
	case models.TypeShortAnswer:
		if len(candidate.Choices) > 0 {
			issues = append(issues, Issue{Field: "choices", Message: "short_answer items must not carry choices"})
		}
	default:
		issues = append(issues, Issue{Field: "type",
			Message: fmt.Sprintf("invalid question type %q", candidate.Type)})
	}

	return issues
}
