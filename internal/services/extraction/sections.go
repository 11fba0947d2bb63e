package extraction

import (
	"context"
	"fmt"
	"sync"

	"github.com/ternarybob/quaestio/internal/interfaces"
	"github.com/ternarybob/quaestio/internal/models"
	"github.com/ternarybob/quaestio/internal/schema"
	"github.com/ternarybob/quaestio/internal/services/llm"
	"github.com/ternarybob/quaestio/internal/services/repair"
	"golang.org/x/time/rate"
)

// ExtractSections synthesizes one topic record per outline section. Sections
// run concurrently with launches spaced by the configured stagger so a burst
// of section calls does not trip provider rate limits. A section whose
// extraction fails yields a deterministic fallback topic instead of failing
// the material; the outcome is recorded as a warning.
func (s *Service) ExtractSections(ctx context.Context, pdfData []byte, chunks []models.ChunkRecord, outline models.Outline) ([]models.TopicRecord, []string, error) {
	topics := make([]models.TopicRecord, len(outline.Sections))
	warningsByIndex := make([][]string, len(outline.Sections))

	launchGate := rate.NewLimiter(rate.Every(s.config.SectionStagger), 1)

	var wg sync.WaitGroup
	for i, section := range outline.Sections {
		wg.Add(1)
		go func(index int, section models.OutlineSection) {
			defer wg.Done()

			if err := launchGate.Wait(ctx); err != nil {
				topics[index] = fallbackTopic(section, index)
				warningsByIndex[index] = []string{
					fmt.Sprintf("section %d (%s): cancelled before launch, using fallback topic", index, section.Title),
				}
				return
			}

			topic, warnings, err := s.extractSection(ctx, pdfData, chunks, section)
			if err != nil {
				s.logger.Warn().
					Int("section_index", index).
					Str("section_title", section.Title).
					Err(err).
					Msg("Section extraction failed, using fallback topic")
				topics[index] = fallbackTopic(section, index)
				warningsByIndex[index] = []string{
					fmt.Sprintf("section %d (%s): extraction failed (%v), using fallback topic", index, section.Title, err),
				}
				return
			}

			topic.SectionIndex = index
			topic.PageStart = section.Start()
			topic.PageEnd = section.End()
			topics[index] = topic
			warningsByIndex[index] = warnings
		}(i, section)
	}
	wg.Wait()

	var allWarnings []string
	for _, w := range warningsByIndex {
		allWarnings = append(allWarnings, w...)
	}

	s.logger.Info().
		Int("topic_count", len(topics)).
		Int("warning_count", len(allWarnings)).
		Msg("Section extraction complete")

	return topics, allWarnings, nil
}

func (s *Service) extractSection(ctx context.Context, pdfData []byte, chunks []models.ChunkRecord, section models.OutlineSection) (models.TopicRecord, []string, error) {
	opts := interfaces.GenerateOptions{Structured: true}

	raw, err := s.llm.Generate(ctx, []interfaces.Part{
		interfaces.DataPart(pdfData, "application/pdf"),
		interfaces.TextPart(buildSectionPrompt(section, chunks)),
	}, opts)
	if err != nil {
		return models.TopicRecord{}, nil, fmt.Errorf("section call failed: %w", err)
	}

	spec := repair.Spec[models.TopicRecord]{
		Name: "topic",
		Parse: func(raw string) (models.TopicRecord, error) {
			var topic models.TopicRecord
			err := llm.DecodeJSON(raw, &topic)
			return topic, err
		},
		Validate: func(topic models.TopicRecord) []schema.Issue {
			return schema.ValidateTopic(&topic)
		},
		BuildPrompt: func(raw string, issues []schema.Issue) []interfaces.Part {
			return []interfaces.Part{
				interfaces.TextPart(fmt.Sprintf(repairPromptTemplate, formatIssues(issues), raw)),
			}
		},
		Options: opts,
	}

	return repair.Run(ctx, s.llm, s.logger, raw, spec)
}

// fallbackTopic builds a deterministic topic from the outline section alone.
// It carries no model-derived content and is flagged so downstream consumers
// can surface the degraded coverage.
func fallbackTopic(section models.OutlineSection, index int) models.TopicRecord {
	objectives := make([]string, 0, len(section.Subtopics)+1)
	objectives = append(objectives, fmt.Sprintf("Describe the main concepts of %s", section.Title))
	for _, subtopic := range section.Subtopics {
		objectives = append(objectives, fmt.Sprintf("Explain %s", subtopic))
	}

	examples := []string{
		fmt.Sprintf("Define the key terms introduced in %s.", section.Title),
		fmt.Sprintf("Explain the central idea of %s in your own words.", section.Title),
		fmt.Sprintf("Describe how the concepts in %s relate to each other.", section.Title),
		fmt.Sprintf("Identify a situation where the material in %s applies.", section.Title),
	}

	return models.TopicRecord{
		SectionIndex: index,
		Title:        section.Title,
		Objectives:   objectives,
		Difficulty:   3,
		QuestionTypes: map[string]float64{
			string(models.TypeMCQSingle):   0.5,
			string(models.TypeMCQMulti):    0.2,
			string(models.TypeShortAnswer): 0.3,
		},
		ExampleQuestions: examples,
		PageStart:        section.Start(),
		PageEnd:          section.End(),
		Fallback:         true,
	}
}
