// -----------------------------------------------------------------------
// Authoring pipeline - generate, judge, repair, rank
// -----------------------------------------------------------------------

package authoring

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestio/internal/common"
	"github.com/ternarybob/quaestio/internal/interfaces"
	"github.com/ternarybob/quaestio/internal/models"
)

// Service runs the question authoring pipeline for one topic at a time:
// overgenerate candidates, judge all six dimensions, repair the salvageable
// ones, then rank and cap the survivors.
type Service struct {
	llm    interfaces.LLMService
	config *common.PipelineConfig
	logger arbor.ILogger
}

// NewService creates an authoring service
func NewService(llmService interfaces.LLMService, config *common.PipelineConfig, logger arbor.ILogger) *Service {
	return &Service{
		llm:    llmService,
		config: config,
		logger: logger,
	}
}

// AuthorQuestions produces the final quality-gated question set for a topic.
// The returned questions carry their composite score and full judge
// breakdown; Number is left unset for the caller to assign within the
// material's question sequence. A generation failure is returned as an
// error so the caller can skip the topic without failing the material.
func (s *Service) AuthorQuestions(ctx context.Context, topic *models.TopicRecord, desired int) ([]models.Question, []string, error) {
	if desired <= 0 {
		desired = s.config.QuestionsPerTopic
	}

	candidates, warnings, err := s.generateCandidates(ctx, topic, desired)
	if err != nil {
		return nil, warnings, err
	}

	judgeResults := s.judgeCandidates(ctx, topic, candidates)

	var kept []scoredCandidate
	var repairBucket []repairItem
	rejected := 0
	for i, candidate := range candidates {
		result := judgeResults[i]
		switch result.Verdict {
		case models.VerdictKeep:
			kept = append(kept, scoredCandidate{candidate: candidate, judge: result})
		case models.VerdictRepair:
			repairBucket = append(repairBucket, repairItem{
				candidate:    candidate,
				judge:        result,
				instructions: repairInstructions(&candidate, &result),
			})
		default:
			rejected++
		}
	}

	repaired, repairWarnings := s.repairCandidates(ctx, repairBucket)
	warnings = append(warnings, repairWarnings...)

	ranked := rank(append(kept, repaired...), s.config.MaxQuestions)

	questions := make([]models.Question, 0, len(ranked))
	now := time.Now()
	for _, entry := range ranked {
		questions = append(questions, models.Question{
			ID:                common.NewQuestionID(),
			TopicID:           topic.ID,
			MaterialID:        topic.MaterialID,
			QuestionCandidate: entry.candidate,
			Score:             entry.judge.Score,
			Judge:             entry.judge,
			Repaired:          entry.repaired,
			CreatedAt:         now,
		})
	}

	s.logger.Info().
		Str("topic", topic.Title).
		Int("generated", len(candidates)).
		Int("kept", len(kept)).
		Int("repaired", len(repaired)).
		Int("rejected", rejected).
		Int("final", len(questions)).
		Msg("Authoring pipeline complete")

	return questions, warnings, nil
}
