package export

import (
	"fmt"
	"strings"

	"github.com/ternarybob/quaestio/internal/models"
)

// BuildPracticeSetMarkdown renders a material's question set as a markdown
// document: questions grouped by topic, with an answer section at the end
// when includeAnswers is set.
func BuildPracticeSetMarkdown(material *models.Material, topics []*models.TopicRecord, questions []*models.Question, includeAnswers bool) string {
	var b strings.Builder

	title := material.Name
	if title == "" {
		title = material.ID
	}
	fmt.Fprintf(&b, "# Practice Questions: %s\n\n", title)

	byTopic := make(map[string][]*models.Question)
	for _, question := range questions {
		byTopic[question.TopicID] = append(byTopic[question.TopicID], question)
	}

	for _, topic := range topics {
		topicQuestions := byTopic[topic.ID]
		if len(topicQuestions) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", topic.Title)
		for _, question := range topicQuestions {
			fmt.Fprintf(&b, "**Question %d.** %s\n\n", question.Number, question.Stem)
			for i, choice := range question.Choices {
				fmt.Fprintf(&b, "- %c. %s\n", 'A'+i, choice)
			}
			if len(question.Choices) > 0 {
				b.WriteString("\n")
			}
		}
	}

	if includeAnswers {
		b.WriteString("## Answer Key\n\n")
		for _, topic := range topics {
			for _, question := range byTopic[topic.ID] {
				fmt.Fprintf(&b, "**Question %d.** %s\n\n", question.Number, answerText(question))
				if question.Explanation != "" {
					fmt.Fprintf(&b, "%s\n\n", question.Explanation)
				}
			}
		}
	}

	return b.String()
}

func answerText(question *models.Question) string {
	switch question.Type {
	case models.TypeMCQSingle:
		if question.CorrectChoiceIndex != nil && *question.CorrectChoiceIndex < len(question.Choices) {
			return fmt.Sprintf("%c. %s", 'A'+*question.CorrectChoiceIndex, question.Choices[*question.CorrectChoiceIndex])
		}
	case models.TypeMCQMulti:
		var letters []string
		for _, idx := range question.CorrectChoiceIndexes {
			if idx < len(question.Choices) {
				letters = append(letters, fmt.Sprintf("%c", 'A'+idx))
			}
		}
		if len(letters) > 0 {
			return strings.Join(letters, ", ")
		}
	}
	if question.Answer != "" {
		return question.Answer
	}
	return strings.Join(question.SolutionSteps, " ")
}
