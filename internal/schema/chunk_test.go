package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/quaestio/internal/models"
)

func validChunk() models.ChunkRecord {
	return models.ChunkRecord{
		Page:    1,
		Summary: "Introduces velocity and acceleration.",
		EvidenceSpans: []models.EvidenceSpan{
			{ID: "s1", ExactText: "Velocity is the rate of change of position."},
		},
		AtomicFacts: []models.AtomicFact{
			{ID: "f1", Statement: "Velocity is the rate of change of position.", Kind: models.FactDefinition, EvidenceSpanID: "s1"},
		},
		ContentDensity:    models.DensityNormal,
		QuestionPotential: models.PotentialHigh,
	}
}

func TestValidateChunk_ValidRecordHasNoIssues(t *testing.T) {
	chunk := validChunk()
	assert.Empty(t, ValidateChunk(&chunk))
}

func TestValidateChunk_DanglingEvidenceSpanReference(t *testing.T) {
	chunk := validChunk()
	chunk.AtomicFacts[0].EvidenceSpanID = "s99"

	issues := ValidateChunk(&chunk)
	if assert.Len(t, issues, 1) {
		assert.Equal(t, "atomic_facts[0].evidence_span_id", issues[0].Field)
		assert.Contains(t, issues[0].Message, "dangling reference")
	}
}

func TestValidateChunk_SpanReferencesDoNotCrossChunks(t *testing.T) {
	a := validChunk()
	b := validChunk()
	b.Page = 2
	b.EvidenceSpans[0].ID = "s2"
	// b's fact points at a span that only exists in chunk a
	b.AtomicFacts[0].EvidenceSpanID = "s1"

	issues := ValidateChunks([]models.ChunkRecord{a, b})
	if assert.Len(t, issues, 1) {
		assert.Equal(t, "chunks[1].atomic_facts[0].evidence_span_id", issues[0].Field)
	}
}

func TestValidateChunk_EvidenceSpanWordLimit(t *testing.T) {
	chunk := validChunk()
	chunk.EvidenceSpans[0].ExactText = strings.Repeat("word ", 51)

	issues := ValidateChunk(&chunk)
	if assert.Len(t, issues, 1) {
		assert.Equal(t, "evidence_spans[0].exact_text", issues[0].Field)
		assert.Contains(t, issues[0].Message, "maximum is 50")
	}

	chunk.EvidenceSpans[0].ExactText = strings.Repeat("word ", 50)
	assert.Empty(t, ValidateChunk(&chunk))
}

func TestValidateChunk_HighPotentialRequiresFacts(t *testing.T) {
	chunk := validChunk()
	chunk.AtomicFacts = nil

	issues := ValidateChunk(&chunk)
	if assert.Len(t, issues, 1) {
		assert.Equal(t, "atomic_facts", issues[0].Field)
	}

	// A low-potential chunk may legitimately carry no facts
	chunk.QuestionPotential = models.PotentialLow
	assert.Empty(t, ValidateChunk(&chunk))
}

func TestValidateChunk_InvalidEnums(t *testing.T) {
	chunk := validChunk()
	chunk.ContentDensity = "packed"
	chunk.QuestionPotential = "extreme"
	chunk.AtomicFacts[0].Kind = "rumor"

	issues := ValidateChunk(&chunk)
	fields := make([]string, len(issues))
	for i, issue := range issues {
		fields[i] = issue.Field
	}
	assert.Contains(t, fields, "content_density")
	assert.Contains(t, fields, "question_potential")
	assert.Contains(t, fields, "atomic_facts[0].kind")
}

func TestValidateChunks_EmptyBatchIsAnIssue(t *testing.T) {
	issues := ValidateChunks(nil)
	if assert.Len(t, issues, 1) {
		assert.Equal(t, "chunks", issues[0].Field)
	}
}
