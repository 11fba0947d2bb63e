// -----------------------------------------------------------------------
// Extraction service - chunk, outline, and section stages
// -----------------------------------------------------------------------

package extraction

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestio/internal/common"
	"github.com/ternarybob/quaestio/internal/interfaces"
)

// Service runs the three extraction stages that turn a material PDF into
// topic records: per-page chunking, outline grouping, and per-section
// topic synthesis.
type Service struct {
	llm    interfaces.LLMService
	config *common.PipelineConfig
	logger arbor.ILogger
}

// NewService creates an extraction service
func NewService(llmService interfaces.LLMService, config *common.PipelineConfig, logger arbor.ILogger) *Service {
	return &Service{
		llm:    llmService,
		config: config,
		logger: logger,
	}
}
