package schema

import (
	"fmt"
	"strings"

	"github.com/ternarybob/quaestio/internal/models"
)

// maxSpanWords bounds the length of a verbatim evidence excerpt
const maxSpanWords = 50

var factKinds = map[models.FactKind]bool{
	models.FactDefinition:   true,
	models.FactProperty:     true,
	models.FactRelationship: true,
	models.FactProcedure:    true,
	models.FactExample:      true,
	models.FactConstraint:   true,
}

var densities = map[models.ContentDensity]bool{
	models.DensitySparse: true,
	models.DensityNormal: true,
	models.DensityDense:  true,
}

var potentials = map[models.QuestionPotential]bool{
	models.PotentialLow:    true,
	models.PotentialMedium: true,
	models.PotentialHigh:   true,
}

// ValidateChunk checks a single ChunkRecord against the extraction schema:
// enum fields, evidence span shape, and the invariants that every
// evidence_span_id reference resolves within the record and that a
// high-potential chunk carries at least one atomic fact.
func ValidateChunk(chunk *models.ChunkRecord) []Issue {
	var issues []Issue

	if strings.TrimSpace(chunk.Summary) == "" {
		issues = append(issues, Issue{Field: "summary", Message: "summary is required"})
	}
	if !densities[chunk.ContentDensity] {
		issues = append(issues, Issue{Field: "content_density",
			Message: fmt.Sprintf("invalid value %q, expected sparse|normal|dense", chunk.ContentDensity)})
	}
	if !potentials[chunk.QuestionPotential] {
		issues = append(issues, Issue{Field: "question_potential",
			Message: fmt.Sprintf("invalid value %q, expected low|medium|high", chunk.QuestionPotential)})
	}

	spanIDs := chunk.SpanIDs()
	for i, span := range chunk.EvidenceSpans {
		field := fmt.Sprintf("evidence_spans[%d]", i)
		if span.ID == "" {
			issues = append(issues, Issue{Field: field + ".id", Message: "span id is required"})
		}
		if strings.TrimSpace(span.ExactText) == "" {
			issues = append(issues, Issue{Field: field + ".exact_text", Message: "exact_text is required"})
		} else if words := len(strings.Fields(span.ExactText)); words > maxSpanWords {
			issues = append(issues, Issue{Field: field + ".exact_text",
				Message: fmt.Sprintf("exact_text has %d words, maximum is %d", words, maxSpanWords)})
		}
	}

	for i, fact := range chunk.AtomicFacts {
		field := fmt.Sprintf("atomic_facts[%d]", i)
		if strings.TrimSpace(fact.Statement) == "" {
			issues = append(issues, Issue{Field: field + ".statement", Message: "statement is required"})
		}
		if !factKinds[fact.Kind] {
			issues = append(issues, Issue{Field: field + ".kind",
				Message: fmt.Sprintf("invalid fact kind %q", fact.Kind)})
		}
		if fact.EvidenceSpanID == "" {
			issues = append(issues, Issue{Field: field + ".evidence_span_id", Message: "evidence_span_id is required"})
		} else if !spanIDs[fact.EvidenceSpanID] {
			issues = append(issues, Issue{Field: field + ".evidence_span_id",
				Message: fmt.Sprintf("dangling reference %q, no such evidence span in this chunk", fact.EvidenceSpanID)})
		}
	}

	for i, formula := range chunk.Formulas {
		if formula.EvidenceSpanID != "" && !spanIDs[formula.EvidenceSpanID] {
			issues = append(issues, Issue{Field: fmt.Sprintf("formulas[%d].evidence_span_id", i),
				Message: fmt.Sprintf("dangling reference %q", formula.EvidenceSpanID)})
		}
	}
	for i, example := range chunk.WorkedExamples {
		field := fmt.Sprintf("worked_examples[%d]", i)
		if example.EvidenceSpanID != "" && !spanIDs[example.EvidenceSpanID] {
			issues = append(issues, Issue{Field: field + ".evidence_span_id",
				Message: fmt.Sprintf("dangling reference %q", example.EvidenceSpanID)})
		}
		if len(example.Steps) == 0 {
			issues = append(issues, Issue{Field: field + ".steps", Message: "worked example has no steps"})
		}
	}
	for i, def := range chunk.Definitions {
		if def.EvidenceSpanID != "" && !spanIDs[def.EvidenceSpanID] {
			issues = append(issues, Issue{Field: fmt.Sprintf("definitions[%d].evidence_span_id", i),
				Message: fmt.Sprintf("dangling reference %q", def.EvidenceSpanID)})
		}
	}
	for i, constraint := range chunk.Constraints {
		if constraint.EvidenceSpanID != "" && !spanIDs[constraint.EvidenceSpanID] {
			issues = append(issues, Issue{Field: fmt.Sprintf("constraints[%d].evidence_span_id", i),
				Message: fmt.Sprintf("dangling reference %q", constraint.EvidenceSpanID)})
		}
	}

	if chunk.QuestionPotential == models.PotentialHigh && len(chunk.AtomicFacts) == 0 {
		issues = append(issues, Issue{Field: "atomic_facts",
			Message: "question_potential is high but no atomic facts were extracted"})
	}

	return issues
}

// ValidateChunks validates a full per-page extraction batch
func ValidateChunks(chunks []models.ChunkRecord) []Issue {
	var issues []Issue
	if len(chunks) == 0 {
		return []Issue{{Field: "chunks", Message: "no chunks extracted"}}
	}
	for i := range chunks {
		for _, issue := range ValidateChunk(&chunks[i]) {
			issues = append(issues, Issue{
				Field:   fmt.Sprintf("chunks[%d].%s", i, issue.Field),
				Message: issue.Message,
			})
		}
	}
	return issues
}
