package authoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/quaestio/internal/models"
)

func TestComputeScore(t *testing.T) {
	tests := []struct {
		name   string
		binary models.JudgeBinary
		likert models.JudgeLikert
		want   float64
	}{
		{
			name:   "perfect",
			binary: models.JudgeBinary{AnswerableFromContext: 1, HasSingleClearCorrect: 1, FormatJustified: 1},
			likert: models.JudgeLikert{DistractorsPlausible: 5, Clarity: 5, DifficultyAppropriate: 5},
			want:   10.0,
		},
		{
			name:   "likert floor only",
			binary: models.JudgeBinary{},
			likert: models.JudgeLikert{DistractorsPlausible: 1, Clarity: 1, DifficultyAppropriate: 1},
			want:   0.8,
		},
		{
			name:   "neutral defaults",
			binary: models.JudgeBinary{AnswerableFromContext: 1, HasSingleClearCorrect: 1, FormatJustified: 1},
			likert: models.JudgeLikert{DistractorsPlausible: 3, Clarity: 3, DifficultyAppropriate: 3},
			want:   8.4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ComputeScore(tt.binary, tt.likert), 0.001)
		})
	}
}

func TestResolveVerdict(t *testing.T) {
	assert.Equal(t, models.VerdictKeep, ResolveVerdict(7.0))
	assert.Equal(t, models.VerdictKeep, ResolveVerdict(10.0))
	assert.Equal(t, models.VerdictRepair, ResolveVerdict(6.99))
	assert.Equal(t, models.VerdictRepair, ResolveVerdict(4.0))
	assert.Equal(t, models.VerdictReject, ResolveVerdict(3.99))
	assert.Equal(t, models.VerdictReject, ResolveVerdict(0.8))
}

func TestNeutralJudgeResultAdmits(t *testing.T) {
	result := neutralJudgeResult()
	assert.InDelta(t, 8.4, result.Score, 0.001)
	assert.Equal(t, models.VerdictKeep, result.Verdict)
}

func TestOvergenerateCount(t *testing.T) {
	assert.Equal(t, 5, OvergenerateCount(3))
	assert.Equal(t, 8, OvergenerateCount(5))
	assert.Equal(t, 2, OvergenerateCount(1))
	assert.Equal(t, 12, OvergenerateCount(8))
}
