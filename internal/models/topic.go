package models

import "time"

// TopicRecord is the per-section synthesis consumed by the authoring pipeline.
// Invariants (enforced by schema.ValidateTopic):
//   - objectives start with a measurable verb, never a banned vague verb
//   - difficulty is 1-5
//   - question type proportions sum to 1.0 within 0.05 tolerance
//   - at least 4 example questions
type TopicRecord struct {
	ID           string `json:"id,omitempty"`
	MaterialID   string `json:"material_id,omitempty"`
	SectionIndex int    `json:"section_index"`

	Title               string             `json:"title"`
	Objectives          []string           `json:"objectives"`
	Difficulty          int                `json:"difficulty"` // 1-5
	DifficultyRationale string             `json:"difficulty_rationale,omitempty"`
	QuestionTypes       map[string]float64 `json:"question_type_distribution,omitempty"`
	KeyTerms            []string           `json:"key_terms,omitempty"`
	Formulas            []Formula          `json:"formulas,omitempty"`
	Misconceptions      []Misconception    `json:"misconceptions,omitempty"`
	WorkedExamples      []WorkedExample    `json:"worked_examples,omitempty"`
	ExampleQuestions    []string           `json:"example_questions"`

	PageStart int `json:"page_start,omitempty"`
	PageEnd   int `json:"page_end,omitempty"`

	// Fallback marks a deterministic topic produced after an extraction
	// failure; it carries no model-derived content beyond the outline.
	Fallback bool `json:"fallback,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
}
