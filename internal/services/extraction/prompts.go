package extraction

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/quaestio/internal/models"
	"github.com/ternarybob/quaestio/internal/schema"
)

const chunkPrompt = `You are analyzing one page of course material at a time. For every page of the attached PDF, produce a chunk record capturing everything a question author would need, without re-reading the source.

Return a JSON object: {"chunks": [...]}. Each chunk has:
- "page": 1-indexed page number
- "summary": 2-3 sentences covering what the page teaches
- "key_terms": terms introduced or central on this page
- "evidence_spans": [{"id": "s1", "exact_text": "..."}] - verbatim quotes of at most 50 words each, the grounding for facts below
- "atomic_facts": [{"statement": "...", "kind": "definition|property|relationship|procedure|example|constraint", "evidence_span_id": "s1"}] - one self-contained fact each, grounded in a span
- "definitions": [{"term": "...", "meaning": "...", "evidence_span_id": "..."}]
- "formulas": [{"expression": "...", "variables": [{"symbol": "...", "meaning": "..."}], "evidence_span_id": "..."}]
- "constraints": [{"statement": "...", "evidence_span_id": "..."}]
- "worked_examples": [{"given": "...", "steps": ["..."], "answer": "...", "evidence_span_id": "..."}]
- "misconceptions": [{"mistaken": "...", "correct": "..."}] - plausible student errors this page invites
- "content_density": "sparse" | "normal" | "dense"
- "question_potential": "low" | "medium" | "high"

Every evidence_span_id must reference a span on the same chunk. Pages with high question_potential must carry atomic facts. Cover every page, including sparse ones.`

const outlinePromptTemplate = `Below are per-page summaries of a course document (%d pages). Group the pages into 1-8 top-level sections that follow the document's own structure. Sections must not overlap and together should cover the full page range.

Return JSON: {"sections": [{"title": "...", "page_range": [start, end], "subtopics": ["...", "..."]}]}. Page numbers are 1-indexed and inclusive.

Page summaries:
%s`

const sectionPromptTemplate = `You are synthesizing a teaching topic from one section of course material. The section is %q, pages %d-%d of the attached PDF. Per-page extraction notes for the section follow below.

Return a JSON topic record:
- "title": the section topic title
- "objectives": learning objectives. Each MUST start with a measurable verb (%s). Never use vague verbs like "understand" or "know".
- "difficulty": 1-5 for the section overall
- "difficulty_rationale": one sentence
- "question_type_distribution": proportions over "mcq_single", "mcq_multi", "short_answer" summing to 1.0
- "key_terms", "formulas", "misconceptions", "worked_examples": carried over and deduplicated from the notes
- "example_questions": at least 4 example questions a teacher could ask about this section

Extraction notes:
%s`

const repairPromptTemplate = `Your previous JSON output failed validation. Fix ONLY the listed problems; keep every other field exactly as it was. Return the complete corrected JSON document and nothing else.

Problems:
%s

Previous output:
%s`

func formatIssues(issues []schema.Issue) string {
	var b strings.Builder
	for _, issue := range issues {
		b.WriteString("- ")
		b.WriteString(issue.String())
		b.WriteString("\n")
	}
	return b.String()
}

func buildOutlinePrompt(chunks []models.ChunkRecord, pageCount int) string {
	var b strings.Builder
	for _, chunk := range chunks {
		fmt.Fprintf(&b, "Page %d: %s", chunk.Page, chunk.Summary)
		if len(chunk.KeyTerms) > 0 {
			fmt.Fprintf(&b, " [terms: %s]", strings.Join(chunk.KeyTerms, ", "))
		}
		b.WriteString("\n")
	}
	return fmt.Sprintf(outlinePromptTemplate, pageCount, b.String())
}

func buildSectionPrompt(section models.OutlineSection, chunks []models.ChunkRecord) string {
	var notes strings.Builder
	for _, chunk := range chunks {
		if chunk.Page < section.Start() || chunk.Page > section.End() {
			continue
		}
		fmt.Fprintf(&notes, "Page %d: %s\n", chunk.Page, chunk.Summary)
		for _, fact := range chunk.AtomicFacts {
			fmt.Fprintf(&notes, "  - fact (%s): %s\n", fact.Kind, fact.Statement)
		}
		for _, def := range chunk.Definitions {
			fmt.Fprintf(&notes, "  - definition: %s: %s\n", def.Term, def.Meaning)
		}
		for _, formula := range chunk.Formulas {
			fmt.Fprintf(&notes, "  - formula: %s\n", formula.Expression)
		}
		for _, mc := range chunk.Misconceptions {
			fmt.Fprintf(&notes, "  - misconception: students think %q; actually %q\n", mc.Mistaken, mc.Correct)
		}
	}

	verbs := make([]string, 0, len(schema.AllowedObjectiveVerbs))
	for verb := range schema.AllowedObjectiveVerbs {
		verbs = append(verbs, verb)
	}
	sort.Strings(verbs)

	return fmt.Sprintf(sectionPromptTemplate,
		section.Title, section.Start(), section.End(),
		strings.Join(verbs, ", "), notes.String())
}
