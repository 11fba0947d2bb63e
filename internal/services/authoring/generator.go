package authoring

import (
	"context"
	"fmt"
	"math"

	"github.com/ternarybob/quaestio/internal/interfaces"
	"github.com/ternarybob/quaestio/internal/models"
	"github.com/ternarybob/quaestio/internal/schema"
	"github.com/ternarybob/quaestio/internal/services/llm"
	"github.com/ternarybob/quaestio/internal/services/repair"
)

// overgenerateFactor pads the generation request so the judge has room to
// reject without under-filling the final set
const overgenerateFactor = 1.5

// OvergenerateCount returns the number of candidates to request for a
// desired final count.
func OvergenerateCount(desired int) int {
	return int(math.Ceil(float64(desired) * overgenerateFactor))
}

type candidateResponse struct {
	Candidates []models.QuestionCandidate `json:"candidates"`
}

func validateCandidates(resp candidateResponse) []schema.Issue {
	var issues []schema.Issue
	for i := range resp.Candidates {
		for _, issue := range schema.ValidateCandidate(&resp.Candidates[i]) {
			issues = append(issues, schema.Issue{
				Field:   fmt.Sprintf("candidates[%d].%s", i, issue.Field),
				Message: issue.Message,
			})
		}
	}
	return issues
}

// generateCandidates requests OvergenerateCount(desired) candidates for a
// topic and runs the batch through the repair loop. Candidates that remain
// structurally invalid after repair are dropped with warnings; a failed
// generation call is an error the caller treats as topic-skipping, not
// fatal.
func (s *Service) generateCandidates(ctx context.Context, topic *models.TopicRecord, desired int) ([]models.QuestionCandidate, []string, error) {
	target := OvergenerateCount(desired)

	opts := interfaces.GenerateOptions{Structured: true}
	raw, err := s.llm.Generate(ctx, []interfaces.Part{
		interfaces.TextPart(buildGeneratePrompt(topic, target)),
	}, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("candidate generation for topic %q failed: %w", topic.Title, err)
	}

	spec := repair.Spec[candidateResponse]{
		Name: "candidates",
		Parse: func(raw string) (candidateResponse, error) {
			var resp candidateResponse
			err := llm.DecodeJSON(raw, &resp)
			return resp, err
		},
		Validate: validateCandidates,
		BuildPrompt: func(raw string, issues []schema.Issue) []interfaces.Part {
			return []interfaces.Part{
				interfaces.TextPart(fmt.Sprintf(repairPromptTemplate, formatIssueList(issues), raw)),
			}
		},
		Options: opts,
	}

	resp, warnings, err := repair.Run(ctx, s.llm, s.logger, raw, spec)
	if err != nil {
		return nil, nil, err
	}

	// Drop candidates that are still structurally broken; the rest proceed
	// to judging.
	valid := make([]models.QuestionCandidate, 0, len(resp.Candidates))
	for i := range resp.Candidates {
		if issues := schema.ValidateCandidate(&resp.Candidates[i]); len(issues) > 0 {
			warnings = append(warnings, formatCandidateIssues(i, issues)...)
			continue
		}
		valid = append(valid, resp.Candidates[i])
	}

	if len(valid) == 0 {
		return nil, warnings, fmt.Errorf("no structurally valid candidates for topic %q", topic.Title)
	}

	s.logger.Debug().
		Str("topic", topic.Title).
		Int("requested", target).
		Int("valid", len(valid)).
		Msg("Candidate generation complete")

	return valid, warnings, nil
}
