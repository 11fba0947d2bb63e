package authoring

import (
	"sort"

	"github.com/ternarybob/quaestio/internal/models"
)

// scoredCandidate pairs a candidate with its judge result through the
// repair and ranking stages
type scoredCandidate struct {
	candidate models.QuestionCandidate
	judge     models.JudgeResult
	repaired  bool
}

// rank merges kept and repaired candidates, orders them by composite score
// descending, and truncates to the per-topic cap. Ties keep generation
// order.
func rank(candidates []scoredCandidate, maxQuestions int) []scoredCandidate {
	ranked := make([]scoredCandidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].judge.Score > ranked[j].judge.Score
	})

	if maxQuestions > 0 && len(ranked) > maxQuestions {
		ranked = ranked[:maxQuestions]
	}
	return ranked
}
