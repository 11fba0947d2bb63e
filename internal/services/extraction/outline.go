package extraction

import (
	"context"
	"fmt"

	"github.com/ternarybob/quaestio/internal/interfaces"
	"github.com/ternarybob/quaestio/internal/models"
	"github.com/ternarybob/quaestio/internal/schema"
	"github.com/ternarybob/quaestio/internal/services/llm"
	"github.com/ternarybob/quaestio/internal/services/repair"
)

var outlineSchema = map[string]interface{}{
	"type":     "object",
	"required": []string{"sections"},
	"properties": map[string]interface{}{
		"sections": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":     "object",
				"required": []string{"title", "page_range"},
				"properties": map[string]interface{}{
					"title": map[string]interface{}{"type": "string"},
					"page_range": map[string]interface{}{
						"type":  "array",
						"items": map[string]interface{}{"type": "integer"},
					},
					"subtopics": map[string]interface{}{
						"type":  "array",
						"items": map[string]interface{}{"type": "string"},
					},
				},
			},
		},
	},
}

// BuildOutline groups the extracted chunks into top-level sections. The
// model works from chunk summaries only; the PDF is not re-attached.
func (s *Service) BuildOutline(ctx context.Context, chunks []models.ChunkRecord, pageCount int) (models.Outline, []string, error) {
	opts := interfaces.GenerateOptions{
		Structured: true,
		Schema:     outlineSchema,
	}

	raw, err := s.llm.Generate(ctx, []interfaces.Part{
		interfaces.TextPart(buildOutlinePrompt(chunks, pageCount)),
	}, opts)
	if err != nil {
		return models.Outline{}, nil, fmt.Errorf("outline call failed: %w", err)
	}

	spec := repair.Spec[models.Outline]{
		Name: "outline",
		Parse: func(raw string) (models.Outline, error) {
			var outline models.Outline
			err := llm.DecodeJSON(raw, &outline)
			return outline, err
		},
		Validate: func(outline models.Outline) []schema.Issue {
			return schema.ValidateOutline(&outline, pageCount)
		},
		BuildPrompt: func(raw string, issues []schema.Issue) []interfaces.Part {
			return []interfaces.Part{
				interfaces.TextPart(fmt.Sprintf(repairPromptTemplate, formatIssues(issues), raw)),
			}
		},
		Options: opts,
	}

	outline, warnings, err := repair.Run(ctx, s.llm, s.logger, raw, spec)
	if err != nil {
		return models.Outline{}, nil, err
	}
	if len(outline.Sections) == 0 {
		return models.Outline{}, nil, llm.NewError(llm.KindParse, fmt.Errorf("outline has no sections"))
	}

	s.logger.Info().
		Int("section_count", len(outline.Sections)).
		Msg("Outline built")

	return outline, warnings, nil
}
