// -----------------------------------------------------------------------
// Chunk Record - Per-page structured extraction from source material
// -----------------------------------------------------------------------

package models

// EvidenceSpan is a verbatim excerpt from the source material that anchors
// later claims. ExactText is limited to 50 words by the chunk validator.
type EvidenceSpan struct {
	ID        string `json:"id"`
	ExactText string `json:"exact_text"`
}

// FactKind classifies an atomic fact
type FactKind string

const (
	FactDefinition   FactKind = "definition"
	FactProperty     FactKind = "property"
	FactRelationship FactKind = "relationship"
	FactProcedure    FactKind = "procedure"
	FactExample      FactKind = "example"
	FactConstraint   FactKind = "constraint"
)

// AtomicFact is a single testable statement extracted from a chunk.
// EvidenceSpanID must reference an EvidenceSpan in the same chunk.
type AtomicFact struct {
	ID             string   `json:"id"`
	Statement      string   `json:"statement"`
	Kind           FactKind `json:"kind"`
	EvidenceSpanID string   `json:"evidence_span_id"`
}

// Definition is a term with its meaning
type Definition struct {
	Term           string `json:"term"`
	Meaning        string `json:"meaning"`
	EvidenceSpanID string `json:"evidence_span_id,omitempty"`
}

// FormulaVariable binds a symbol in a formula to its meaning
type FormulaVariable struct {
	Symbol  string `json:"symbol"`
	Meaning string `json:"meaning"`
}

// Formula is an equation or expression with its variable bindings
type Formula struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Expression     string            `json:"expression"`
	Variables      []FormulaVariable `json:"variables,omitempty"`
	EvidenceSpanID string            `json:"evidence_span_id,omitempty"`
}

// Constraint is a condition or limit stated in the material
type Constraint struct {
	Statement      string `json:"statement"`
	AppliesTo      string `json:"applies_to,omitempty"`
	EvidenceSpanID string `json:"evidence_span_id,omitempty"`
}

// WorkedExample is a given -> steps -> answer problem from the material
type WorkedExample struct {
	Given          string   `json:"given"`
	Steps          []string `json:"steps"`
	Answer         string   `json:"answer"`
	EvidenceSpanID string   `json:"evidence_span_id,omitempty"`
}

// Misconception pairs a common mistaken belief with the correction
type Misconception struct {
	Mistaken string `json:"mistaken"`
	Correct  string `json:"correct"`
}

// ContentDensity tags how much extractable content a chunk carries
type ContentDensity string

const (
	DensitySparse ContentDensity = "sparse"
	DensityNormal ContentDensity = "normal"
	DensityDense  ContentDensity = "dense"
)

// QuestionPotential tags how suitable a chunk is for question generation
type QuestionPotential string

const (
	PotentialLow    QuestionPotential = "low"
	PotentialMedium QuestionPotential = "medium"
	PotentialHigh   QuestionPotential = "high"
)

// ChunkRecord is the structured extraction for one page or slide.
// Invariants (enforced by schema.ValidateChunk):
//   - every EvidenceSpanID reference resolves within this record
//   - QuestionPotential == high implies AtomicFacts is non-empty
type ChunkRecord struct {
	Page              int               `json:"page"`
	Summary           string            `json:"summary"`
	KeyTerms          []string          `json:"key_terms,omitempty"`
	EvidenceSpans     []EvidenceSpan    `json:"evidence_spans"`
	AtomicFacts       []AtomicFact      `json:"atomic_facts"`
	Definitions       []Definition      `json:"definitions,omitempty"`
	Formulas          []Formula         `json:"formulas,omitempty"`
	Constraints       []Constraint      `json:"constraints,omitempty"`
	WorkedExamples    []WorkedExample   `json:"worked_examples,omitempty"`
	Misconceptions    []Misconception   `json:"misconceptions,omitempty"`
	ContentDensity    ContentDensity    `json:"content_density"`
	QuestionPotential QuestionPotential `json:"question_potential"`
}

// SpanIDs returns the set of evidence span IDs owned by this chunk
func (c *ChunkRecord) SpanIDs() map[string]bool {
	ids := make(map[string]bool, len(c.EvidenceSpans))
	for _, span := range c.EvidenceSpans {
		ids[span.ID] = true
	}
	return ids
}
