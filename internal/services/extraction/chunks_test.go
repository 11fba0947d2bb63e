package extraction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/quaestio/internal/common"
	"github.com/ternarybob/quaestio/internal/interfaces"
	"github.com/ternarybob/quaestio/internal/models"
)

const validChunksJSON = "```json\n" + `{
	"chunks": [{
		"page": 1,
		"summary": "Introduces velocity as the rate of change of position.",
		"key_terms": ["velocity"],
		"evidence_spans": [{"id": "s1", "exact_text": "Velocity is the rate of change of position with respect to time."}],
		"atomic_facts": [{"statement": "Velocity is the rate of change of position.", "kind": "definition", "evidence_span_id": "s1"}],
		"content_density": "normal",
		"question_potential": "high"
	}]
}` + "\n```"

func TestExtractChunks_StripsFencesAndValidates(t *testing.T) {
	service := NewService(&fakeLLM{
		generate: func(_ []interfaces.Part) (string, error) { return validChunksJSON, nil },
	}, testConfig(), common.GetLogger())

	chunks, warnings, err := service.ExtractChunks(context.Background(), []byte("%PDF"))

	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, chunks, 1)
	assert.Equal(t, 1, chunks[0].Page)
	assert.Equal(t, models.PotentialHigh, chunks[0].QuestionPotential)
}

func TestExtractChunks_AttachesPDF(t *testing.T) {
	var sawPDF bool
	service := NewService(&fakeLLM{
		generate: func(parts []interfaces.Part) (string, error) {
			for _, part := range parts {
				if part.MIMEType == "application/pdf" && len(part.Data) > 0 {
					sawPDF = true
				}
			}
			return validChunksJSON, nil
		},
	}, testConfig(), common.GetLogger())

	_, _, err := service.ExtractChunks(context.Background(), []byte("%PDF-1.7"))

	require.NoError(t, err)
	assert.True(t, sawPDF, "chunk extraction must attach the raw PDF")
}

func TestBuildOutline_RepairsBadPageRange(t *testing.T) {
	responses := []string{
		// First response: section end exceeds page count.
		`{"sections": [{"title": "All of it", "page_range": [1, 99]}]}`,
		// Repair response fixes the range.
		`{"sections": [{"title": "All of it", "page_range": [1, 10]}]}`,
	}
	service := NewService(&fakeLLM{
		generate: func(_ []interfaces.Part) (string, error) {
			resp := responses[0]
			if len(responses) > 1 {
				responses = responses[1:]
			}
			return resp, nil
		},
	}, testConfig(), common.GetLogger())

	outline, warnings, err := service.BuildOutline(context.Background(), nil, 10)

	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, outline.Sections, 1)
	assert.Equal(t, 10, outline.Sections[0].End())
}
