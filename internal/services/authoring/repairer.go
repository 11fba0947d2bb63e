// -----------------------------------------------------------------------
// Repair stage - mechanical rewrite instructions for salvageable candidates
// -----------------------------------------------------------------------

package authoring

import (
	"context"
	"fmt"

	"github.com/ternarybob/quaestio/internal/interfaces"
	"github.com/ternarybob/quaestio/internal/models"
	"github.com/ternarybob/quaestio/internal/schema"
	"github.com/ternarybob/quaestio/internal/services/llm"
)

// likertRepairFloor is the Likert value below which a dimension earns a
// rewrite instruction
const likertRepairFloor = 3.0

type repairItem struct {
	candidate    models.QuestionCandidate
	judge        models.JudgeResult
	instructions []string
}

// repairInstructions derives rewrite instructions mechanically from which
// judge dimensions failed. No model judgment is involved in deciding what
// to fix.
func repairInstructions(candidate *models.QuestionCandidate, judge *models.JudgeResult) []string {
	var instructions []string

	if judge.Binary.AnswerableFromContext == 0 {
		instructions = append(instructions,
			"Rewrite the stem so it can be answered from the course material alone, without outside knowledge.")
	}
	if judge.Binary.HasSingleClearCorrect == 0 {
		switch candidate.Type {
		case models.TypeMCQMulti:
			instructions = append(instructions,
				"Rework the choices so the correct set is unambiguous and every listed index is defensibly correct.")
		case models.TypeMCQSingle:
			instructions = append(instructions,
				"Rework the choices so exactly one is correct and the rest are clearly wrong.")
		default:
			instructions = append(instructions,
				"Rewrite the stem so it has a single clear correct answer.")
		}
	}
	if judge.Binary.FormatJustified == 0 {
		if candidate.Type == models.TypeShortAnswer {
			instructions = append(instructions,
				"Convert this item to type mcq_single with exactly 4 choices and a valid correct_choice_index.")
		} else {
			instructions = append(instructions,
				"Convert this item to type short_answer without choices; the content does not justify multiple choice.")
		}
	}
	if judge.Likert.DistractorsPlausible < likertRepairFloor && candidate.Type != models.TypeShortAnswer {
		instructions = append(instructions,
			"Replace implausible distractors with ones reflecting common student errors.")
	}
	if judge.Likert.Clarity < likertRepairFloor {
		instructions = append(instructions,
			"Rewrite the stem to be unambiguous and self-contained.")
	}
	if judge.Likert.DifficultyAppropriate < likertRepairFloor {
		instructions = append(instructions,
			"Adjust the question so its demands match the declared difficulty level.")
	}

	if len(instructions) == 0 {
		instructions = append(instructions,
			"Improve the overall quality of the question while preserving its intent.")
	}
	return instructions
}

// repairCandidates rewrites all repair-verdict candidates in a single call.
// Repaired output is re-validated structurally only; it is never re-judged,
// so each keeps the judge result that sent it here. Candidates that come
// back structurally invalid, or that the model fails to return, are dropped
// with warnings.
func (s *Service) repairCandidates(ctx context.Context, items []repairItem) ([]scoredCandidate, []string) {
	if len(items) == 0 {
		return nil, nil
	}

	raw, err := s.llm.Generate(ctx, []interfaces.Part{
		interfaces.TextPart(buildRepairStagePrompt(items)),
	}, interfaces.GenerateOptions{Structured: true})

	var resp candidateResponse
	if err == nil {
		err = llm.DecodeJSON(raw, &resp)
	}
	if err != nil {
		s.logger.Warn().
			Int("candidate_count", len(items)).
			Err(err).
			Msg("Repair stage call failed, dropping repair-verdict candidates")
		return nil, []string{fmt.Sprintf("repair stage failed for %d candidates: %v", len(items), err)}
	}

	var repaired []scoredCandidate
	var warnings []string
	for i, item := range items {
		if i >= len(resp.Candidates) {
			warnings = append(warnings, fmt.Sprintf("repair stage returned no output for candidate %d", i))
			continue
		}
		candidate := resp.Candidates[i]
		if issues := schema.ValidateCandidate(&candidate); len(issues) > 0 {
			warnings = append(warnings, fmt.Sprintf("repaired candidate %d still invalid: %s",
				i, schema.Issue{Field: issues[0].Field, Message: issues[0].Message}.String()))
			continue
		}
		repaired = append(repaired, scoredCandidate{
			candidate: candidate,
			judge:     item.judge,
			repaired:  true,
		})
	}
	return repaired, warnings
}
