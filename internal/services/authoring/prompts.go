package authoring

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/quaestio/internal/models"
	"github.com/ternarybob/quaestio/internal/schema"
)

const generatePromptTemplate = `You are authoring practice questions for the topic %q (difficulty %d/5).

Learning objectives:
%s
Key terms: %s
%s
Generate exactly %d question candidates. Follow the topic's question type distribution: %s.

Return JSON: {"candidates": [...]}. Each candidate:
- "stem": the question text, self-contained and answerable from the material
- "type": "mcq_single" | "mcq_multi" | "short_answer"
- "choices": exactly 4 for MCQ types, omitted for short_answer
- "correct_choice_index": 0-based, mcq_single only
- "correct_choice_indexes": 0-based list, mcq_multi only
- "solution_steps": the worked reasoning from stem to answer
- "objective_index": 0-based index of the objective this question targets
- "difficulty": 1-5
Distractors must reflect plausible student errors, not filler.`

const judgePromptTemplate = `Judge each question candidate below against its topic %q (difficulty %d/5). For each candidate, score six dimensions.

Binary (0 or 1):
- "answerable_from_context": answerable from the course material alone
- "has_single_clear_correct": exactly one defensible correct answer (or answer set for mcq_multi)
- "format_justified": the question format suits the content

Likert (1-5):
- "distractors_plausible": distractors reflect real student errors (5 for short_answer)
- "clarity": stem is unambiguous and self-contained
- "difficulty_appropriate": matches the declared difficulty

Return JSON: {"results": [{"binary": {...}, "likert": {...}, "issues": ["..."]}]}, one result per candidate, same order.

Candidates:
%s`

const repairPromptTemplate = `Your previous JSON output failed validation. Fix ONLY the listed problems; keep every other field exactly as it was. Return the complete corrected JSON document and nothing else.

Problems:
%s

Previous output:
%s`

const repairStagePromptTemplate = `Rewrite each question candidate below according to its instructions. Apply ONLY the listed instructions; preserve everything else. Return JSON: {"candidates": [...]}, same order and same schema as the input candidates.

%s`

func buildGeneratePrompt(topic *models.TopicRecord, count int) string {
	var objectives strings.Builder
	for i, objective := range topic.Objectives {
		fmt.Fprintf(&objectives, "%d. %s\n", i, objective)
	}

	var extras strings.Builder
	if len(topic.Formulas) > 0 {
		extras.WriteString("Formulas:\n")
		for _, formula := range topic.Formulas {
			fmt.Fprintf(&extras, "- %s\n", formula.Expression)
		}
	}
	if len(topic.Misconceptions) > 0 {
		extras.WriteString("Known misconceptions (use for distractors):\n")
		for _, mc := range topic.Misconceptions {
			fmt.Fprintf(&extras, "- students think %q; actually %q\n", mc.Mistaken, mc.Correct)
		}
	}
	if len(topic.ExampleQuestions) > 0 {
		extras.WriteString("Example questions for style:\n")
		for _, example := range topic.ExampleQuestions {
			fmt.Fprintf(&extras, "- %s\n", example)
		}
	}

	distribution, _ := json.Marshal(topic.QuestionTypes)

	return fmt.Sprintf(generatePromptTemplate,
		topic.Title, topic.Difficulty,
		objectives.String(),
		strings.Join(topic.KeyTerms, ", "),
		extras.String(),
		count, string(distribution))
}

func buildJudgePrompt(topic *models.TopicRecord, candidates []models.QuestionCandidate) string {
	var b strings.Builder
	for i, candidate := range candidates {
		encoded, _ := json.Marshal(candidate)
		fmt.Fprintf(&b, "Candidate %d: %s\n", i, string(encoded))
	}
	return fmt.Sprintf(judgePromptTemplate, topic.Title, topic.Difficulty, b.String())
}

func buildRepairStagePrompt(items []repairItem) string {
	var b strings.Builder
	for i, item := range items {
		encoded, _ := json.Marshal(item.candidate)
		fmt.Fprintf(&b, "Candidate %d: %s\nInstructions:\n", i, string(encoded))
		for _, instruction := range item.instructions {
			fmt.Fprintf(&b, "- %s\n", instruction)
		}
		b.WriteString("\n")
	}
	return fmt.Sprintf(repairStagePromptTemplate, b.String())
}

func formatIssueList(issues []schema.Issue) string {
	var b strings.Builder
	for _, issue := range issues {
		b.WriteString("- ")
		b.WriteString(issue.String())
		b.WriteString("\n")
	}
	return b.String()
}

func formatCandidateIssues(index int, issues []schema.Issue) []string {
	warnings := make([]string, 0, len(issues))
	for _, issue := range issues {
		warnings = append(warnings, fmt.Sprintf("candidates[%d].%s", index, issue.String()))
	}
	return warnings
}
