// -----------------------------------------------------------------------
// Material pipeline - PDF upload through persisted question set
// -----------------------------------------------------------------------

package jobs

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestio/internal/common"
	"github.com/ternarybob/quaestio/internal/interfaces"
	"github.com/ternarybob/quaestio/internal/models"
	"github.com/ternarybob/quaestio/internal/services/authoring"
	"github.com/ternarybob/quaestio/internal/services/extraction"
	"github.com/ternarybob/quaestio/internal/services/pdfextract"
)

// PDFExtractor is the local (non-model) PDF structure pass
type PDFExtractor interface {
	Extract(data []byte) (*pdfextract.Result, error)
}

// MaterialPipeline runs the full analysis of one uploaded material:
// download, local PDF pass, chunk extraction, outline, section fan-out,
// then the authoring pipeline per topic. A download failure is fatal to
// the job; topic-level authoring failures degrade to warnings.
type MaterialPipeline struct {
	storage    interfaces.StorageManager
	extraction *extraction.Service
	authoring  *authoring.Service
	pdf        PDFExtractor
	config     *common.PipelineConfig
	logger     arbor.ILogger
}

// NewMaterialPipeline creates a material analysis pipeline
func NewMaterialPipeline(
	storage interfaces.StorageManager,
	extractionService *extraction.Service,
	authoringService *authoring.Service,
	pdfService PDFExtractor,
	config *common.PipelineConfig,
	logger arbor.ILogger,
) *MaterialPipeline {
	return &MaterialPipeline{
		storage:    storage,
		extraction: extractionService,
		authoring:  authoringService,
		pdf:        pdfService,
		config:     config,
		logger:     logger,
	}
}

// Run executes the pipeline for one material under the given job record.
// The job is updated phase by phase; the returned error mirrors the job's
// terminal failure state.
func (p *MaterialPipeline) Run(ctx context.Context, jobID, materialID string) error {
	tracker := NewProgressTracker(jobID, p.storage.JobStorage(), p.logger)
	log := p.logger.WithCorrelationId(jobID)

	tracker.Start(ctx)

	tracker.SetPhase(ctx, models.PhaseDownload, "Downloading material")
	material, err := p.storage.MaterialStorage().GetMaterial(ctx, materialID)
	if err != nil {
		tracker.Fail(ctx, fmt.Sprintf("material %s not found: %v", materialID, err))
		return fmt.Errorf("material %s not found: %w", materialID, err)
	}
	pdfData, err := p.storage.ObjectStorage().Download(ctx, material.ObjectPath)
	if err != nil {
		tracker.Fail(ctx, fmt.Sprintf("download failed: %v", err))
		return fmt.Errorf("download of %s failed: %w", material.ObjectPath, err)
	}

	pdfInfo, err := p.pdf.Extract(pdfData)
	if err != nil {
		tracker.Fail(ctx, fmt.Sprintf("PDF unreadable: %v", err))
		return fmt.Errorf("PDF extraction failed: %w", err)
	}
	if material.PageCount != pdfInfo.PageCount {
		material.PageCount = pdfInfo.PageCount
		if err := p.storage.MaterialStorage().SaveMaterial(ctx, material); err != nil {
			log.Warn().Err(err).Msg("Failed to persist page count")
		}
	}

	tracker.SetPhase(ctx, models.PhaseChunkExtract, "Extracting per-page content")
	chunks, warnings, err := p.extraction.ExtractChunks(ctx, pdfData)
	if err != nil {
		tracker.Fail(ctx, fmt.Sprintf("chunk extraction failed: %v", err))
		return fmt.Errorf("chunk extraction failed: %w", err)
	}
	tracker.AddWarnings(ctx, warnings)

	tracker.SetPhase(ctx, models.PhaseOutline, "Building document outline")
	outline, warnings, err := p.extraction.BuildOutline(ctx, chunks, pdfInfo.PageCount)
	if err != nil {
		tracker.Fail(ctx, fmt.Sprintf("outline failed: %v", err))
		return fmt.Errorf("outline failed: %w", err)
	}
	tracker.AddWarnings(ctx, warnings)

	tracker.SetPhase(ctx, models.PhaseSections, fmt.Sprintf("Extracting %d sections", len(outline.Sections)))
	topics, warnings, err := p.extraction.ExtractSections(ctx, pdfData, chunks, outline)
	if err != nil {
		tracker.Fail(ctx, fmt.Sprintf("section extraction failed: %v", err))
		return fmt.Errorf("section extraction failed: %w", err)
	}
	tracker.AddWarnings(ctx, warnings)

	tracker.SetPhase(ctx, models.PhaseAuthoring, fmt.Sprintf("Authoring questions for %d topics", len(topics)))
	tracker.SetTotalItems(ctx, len(topics))

	questionNumber := 0
	authoredTopics := 0
	for i := range topics {
		if tracker.IsCancelled(ctx) {
			log.Warn().Msg("Job cancelled, stopping authoring")
			return nil
		}

		topic := &topics[i]
		topic.ID = common.NewTopicID()
		topic.MaterialID = materialID
		if err := p.storage.TopicStorage().SaveTopic(ctx, topic); err != nil {
			tracker.AddWarnings(ctx, []string{fmt.Sprintf("failed to persist topic %q: %v", topic.Title, err)})
			tracker.IncrementFailed(ctx)
			continue
		}

		tracker.SetCurrentItem(ctx, topic.Title)
		questions, authWarnings, err := p.authoring.AuthorQuestions(ctx, topic, p.config.QuestionsPerTopic)
		tracker.AddWarnings(ctx, authWarnings)
		if err != nil {
			// A topic whose generation fails is skipped, never fatal.
			log.Warn().Str("topic", topic.Title).Err(err).Msg("Authoring failed for topic, skipping")
			tracker.AddWarnings(ctx, []string{fmt.Sprintf("topic %q skipped: %v", topic.Title, err)})
			tracker.IncrementFailed(ctx)
			continue
		}

		saved := 0
		for j := range questions {
			questionNumber++
			questions[j].Number = questionNumber
			if err := p.storage.QuestionStorage().SaveQuestion(ctx, &questions[j]); err != nil {
				tracker.AddWarnings(ctx, []string{fmt.Sprintf("failed to persist question %d: %v", questionNumber, err)})
				continue
			}
			saved++
		}

		log.Info().
			Str("topic", topic.Title).
			Int("question_count", saved).
			Msg("Topic authored")
		authoredTopics++
		tracker.IncrementCompleted(ctx)
	}

	if authoredTopics == 0 {
		tracker.Fail(ctx, "no topics produced questions")
		return fmt.Errorf("no topics produced questions for material %s", materialID)
	}

	tracker.Complete(ctx, fmt.Sprintf("Authored %d questions across %d topics", questionNumber, authoredTopics))
	return nil
}
