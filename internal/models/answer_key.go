package models

import "strings"

// SubpartAnswer is one labelled part of a multi-part answer
type SubpartAnswer struct {
	Label  string `json:"label" yaml:"label"`
	Answer string `json:"answer" yaml:"answer"`
}

// AnswerKeyEntry is the externally supplied reference answer for one
// question number. Read-only reference data for the reconciliation pass.
type AnswerKeyEntry struct {
	QuestionNumber int             `json:"question_number" yaml:"question"`
	Answer         string          `json:"answer,omitempty" yaml:"answer,omitempty"`
	Subparts       []SubpartAnswer `json:"subparts,omitempty" yaml:"subparts,omitempty"`
}

// AnswerKey is an ordered list of entries for one question-set scope
type AnswerKey struct {
	Scope   string           `json:"scope" yaml:"scope"`
	Entries []AnswerKeyEntry `json:"entries" yaml:"entries"`
}

// Lookup returns the entry for a question number, or nil if the key has none
func (k *AnswerKey) Lookup(number int) *AnswerKeyEntry {
	if k == nil {
		return nil
	}
	for i := range k.Entries {
		if k.Entries[i].QuestionNumber == number {
			return &k.Entries[i]
		}
	}
	return nil
}

// Expected returns the normalized expected answer text for comparison.
// Subparts are joined in order when present.
func (e *AnswerKeyEntry) Expected() string {
	if len(e.Subparts) > 0 {
		parts := make([]string, 0, len(e.Subparts))
		for _, sp := range e.Subparts {
			parts = append(parts, sp.Answer)
		}
		return NormalizeAnswer(strings.Join(parts, "; "))
	}
	return NormalizeAnswer(e.Answer)
}

// NormalizeAnswer lowercases and collapses whitespace for answer comparison
func NormalizeAnswer(answer string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(answer))), " ")
}
