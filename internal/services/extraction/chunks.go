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

type chunkResponse struct {
	Chunks []models.ChunkRecord `json:"chunks"`
}

// ExtractChunks performs the per-page extraction pass over the raw PDF.
// The whole document goes to the model in a single call; output passes
// through the repair loop before it is trusted.
func (s *Service) ExtractChunks(ctx context.Context, pdfData []byte) ([]models.ChunkRecord, []string, error) {
	parts := []interfaces.Part{
		interfaces.DataPart(pdfData, "application/pdf"),
		interfaces.TextPart(chunkPrompt),
	}

	opts := interfaces.GenerateOptions{
		Structured:      true,
		MaxOutputTokens: s.config.ExtractionTokens,
	}

	raw, err := s.llm.Generate(ctx, parts, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("chunk extraction call failed: %w", err)
	}

	spec := repair.Spec[chunkResponse]{
		Name: "chunks",
		Parse: func(raw string) (chunkResponse, error) {
			var resp chunkResponse
			err := llm.DecodeJSON(raw, &resp)
			return resp, err
		},
		Validate: func(resp chunkResponse) []schema.Issue {
			return schema.ValidateChunks(resp.Chunks)
		},
		BuildPrompt: func(raw string, issues []schema.Issue) []interfaces.Part {
			return []interfaces.Part{
				interfaces.TextPart(fmt.Sprintf(repairPromptTemplate, formatIssues(issues), raw)),
			}
		},
		Options: opts,
	}

	resp, warnings, err := repair.Run(ctx, s.llm, s.logger, raw, spec)
	if err != nil {
		return nil, nil, err
	}
	if len(resp.Chunks) == 0 {
		return nil, nil, llm.NewError(llm.KindParse, fmt.Errorf("chunk extraction returned no chunks"))
	}

	s.logger.Info().
		Int("chunk_count", len(resp.Chunks)).
		Int("warning_count", len(warnings)).
		Msg("Chunk extraction complete")

	return resp.Chunks, warnings, nil
}
