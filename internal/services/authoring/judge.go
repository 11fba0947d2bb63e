// -----------------------------------------------------------------------
// Quality judge - six-dimension scoring with threshold verdicts
// -----------------------------------------------------------------------

package authoring

import (
	"context"

	"github.com/ternarybob/quaestio/internal/interfaces"
	"github.com/ternarybob/quaestio/internal/models"
	"github.com/ternarybob/quaestio/internal/services/llm"
)

const (
	// keepThreshold is the composite score at or above which a candidate
	// is kept as-is
	keepThreshold = 7.0

	// repairThreshold is the composite score at or above which a candidate
	// is salvageable via the repair stage; below it the candidate is
	// rejected
	repairThreshold = 4.0
)

// ComputeScore derives the 0-10 composite from the six judge dimensions:
// each binary dimension contributes 2 points, the Likert average scales to
// a maximum of 4.
func ComputeScore(binary models.JudgeBinary, likert models.JudgeLikert) float64 {
	binarySum := binary.AnswerableFromContext + binary.HasSingleClearCorrect + binary.FormatJustified
	likertAvg := (likert.DistractorsPlausible + likert.Clarity + likert.DifficultyAppropriate) / 3.0
	return float64(binarySum)*2.0 + (likertAvg/5.0)*4.0
}

// ResolveVerdict maps a composite score to a verdict. The model's own
// verdict label is never consulted; only the computed score decides.
func ResolveVerdict(score float64) models.Verdict {
	switch {
	case score >= keepThreshold:
		return models.VerdictKeep
	case score >= repairThreshold:
		return models.VerdictRepair
	default:
		return models.VerdictReject
	}
}

// neutralJudgeResult is the default applied when the judge call fails:
// binary dimensions pass, Likert dimensions sit at the scale midpoint.
// The resulting score admits the candidate, favoring availability over
// precision.
func neutralJudgeResult() models.JudgeResult {
	result := models.JudgeResult{
		Binary: models.JudgeBinary{AnswerableFromContext: 1, HasSingleClearCorrect: 1, FormatJustified: 1},
		Likert: models.JudgeLikert{DistractorsPlausible: 3, Clarity: 3, DifficultyAppropriate: 3},
		Issues: []string{"judge unavailable, neutral default applied"},
	}
	result.Score = ComputeScore(result.Binary, result.Likert)
	result.Verdict = ResolveVerdict(result.Score)
	return result
}

type judgeResponse struct {
	Results []struct {
		Binary models.JudgeBinary `json:"binary"`
		Likert models.JudgeLikert `json:"likert"`
		Issues []string           `json:"issues"`
	} `json:"results"`
}

// judgeCandidates scores every candidate for a topic in a single call.
// A failed or malformed judge call yields neutral defaults for all
// candidates rather than discarding the topic's output.
func (s *Service) judgeCandidates(ctx context.Context, topic *models.TopicRecord, candidates []models.QuestionCandidate) []models.JudgeResult {
	results := make([]models.JudgeResult, len(candidates))

	raw, err := s.llm.Generate(ctx, []interfaces.Part{
		interfaces.TextPart(buildJudgePrompt(topic, candidates)),
	}, interfaces.GenerateOptions{Structured: true})

	var resp judgeResponse
	if err == nil {
		err = llm.DecodeJSON(raw, &resp)
	}
	if err != nil {
		s.logger.Warn().
			Str("topic", topic.Title).
			Err(err).
			Msg("Judge call failed, admitting candidates with neutral defaults")
		for i := range results {
			results[i] = neutralJudgeResult()
		}
		return results
	}

	for i := range candidates {
		if i >= len(resp.Results) {
			results[i] = neutralJudgeResult()
			continue
		}
		entry := resp.Results[i]
		result := models.JudgeResult{
			Binary: clampBinary(entry.Binary),
			Likert: clampLikert(entry.Likert),
			Issues: entry.Issues,
		}
		result.Score = ComputeScore(result.Binary, result.Likert)
		result.Verdict = ResolveVerdict(result.Score)
		results[i] = result
	}
	return results
}

func clampBinary(b models.JudgeBinary) models.JudgeBinary {
	clamp := func(v int) int {
		if v > 0 {
			return 1
		}
		return 0
	}
	return models.JudgeBinary{
		AnswerableFromContext: clamp(b.AnswerableFromContext),
		HasSingleClearCorrect: clamp(b.HasSingleClearCorrect),
		FormatJustified:       clamp(b.FormatJustified),
	}
}

func clampLikert(l models.JudgeLikert) models.JudgeLikert {
	clamp := func(v float64) float64 {
		if v < 1 {
			return 1
		}
		if v > 5 {
			return 5
		}
		return v
	}
	return models.JudgeLikert{
		DistractorsPlausible:  clamp(l.DistractorsPlausible),
		Clarity:               clamp(l.Clarity),
		DifficultyAppropriate: clamp(l.DifficultyAppropriate),
	}
}
