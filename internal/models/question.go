// -----------------------------------------------------------------------
// Question models - candidates, judge results, persisted questions
// -----------------------------------------------------------------------

package models

import "time"

// QuestionType is the wire format of a question
type QuestionType string

const (
	TypeMCQSingle   QuestionType = "mcq_single"
	TypeMCQMulti    QuestionType = "mcq_multi"
	TypeShortAnswer QuestionType = "short_answer"
)

// QuestionCandidate is a generated question before judging. Candidates are
// created by the generator, scored by the judge, optionally rewritten by the
// repair stage, and never mutated after ranking.
type QuestionCandidate struct {
	Stem                 string       `json:"stem"`
	Type                 QuestionType `json:"type"`
	Choices              []string     `json:"choices,omitempty"`
	CorrectChoiceIndex   *int         `json:"correct_choice_index,omitempty"`
	CorrectChoiceIndexes []int        `json:"correct_choice_indexes,omitempty"` // mcq_multi only
	SolutionSteps        []string     `json:"solution_steps"`
	ObjectiveIndex       int          `json:"objective_index"`
	SourceRefs           []string     `json:"source_refs,omitempty"`
	Difficulty           int          `json:"difficulty"`
}

// JudgeBinary holds the three pass/fail judge dimensions (0 or 1 each)
type JudgeBinary struct {
	AnswerableFromContext int `json:"answerable_from_context"`
	HasSingleClearCorrect int `json:"has_single_clear_correct"`
	FormatJustified       int `json:"format_justified"`
}

// JudgeLikert holds the three 1-5 judge dimensions
type JudgeLikert struct {
	DistractorsPlausible  float64 `json:"distractors_plausible"`
	Clarity               float64 `json:"clarity"`
	DifficultyAppropriate float64 `json:"difficulty_appropriate"`
}

// Verdict is the threshold-derived disposition of a candidate
type Verdict string

const (
	VerdictKeep   Verdict = "keep"
	VerdictRepair Verdict = "repair"
	VerdictReject Verdict = "reject"
)

// JudgeResult is the full scoring breakdown for one candidate. Score and
// Verdict are computed from the six dimensions by the judge, never taken
// from the model's own verdict label.
type JudgeResult struct {
	Binary  JudgeBinary `json:"binary"`
	Likert  JudgeLikert `json:"likert"`
	Issues  []string    `json:"issues,omitempty"`
	Score   float64     `json:"score"`   // 0-10 composite, derived
	Verdict Verdict     `json:"verdict"` // derived from Score thresholds
}

// Question is a persisted, quality-gated question. It carries its composite
// score and the full judge breakdown for downstream audit.
type Question struct {
	ID         string `json:"id"`
	TopicID    string `json:"topic_id"`
	MaterialID string `json:"material_id"`
	Number     int    `json:"number"` // position within the material's question set

	QuestionCandidate

	Score    float64     `json:"score"`
	Judge    JudgeResult `json:"judge"`
	Repaired bool        `json:"repaired,omitempty"`

	// Re-analysis output
	Answer      string     `json:"answer,omitempty"`
	Explanation string     `json:"explanation,omitempty"`
	AnalyzedAt  *time.Time `json:"analyzed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
