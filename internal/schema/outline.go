package schema

import (
	"fmt"
	"strings"

	"github.com/ternarybob/quaestio/internal/models"
)

// Outline sizing bounds: the builder asks for 3-8 top-level sections.
// A single section is still acceptable for short documents; more than
// eight is flagged so the repair pass can consolidate.
const maxOutlineSections = 8

// ValidateOutline checks the outline invariants: at least one section,
// well-formed page ranges (1 <= start <= end <= pageCount) and titles.
// pageCount of 0 disables the upper-bound page check.
func ValidateOutline(outline *models.Outline, pageCount int) []Issue {
	var issues []Issue

	if len(outline.Sections) == 0 {
		return []Issue{{Field: "sections", Message: "outline must contain at least one section"}}
	}
	if len(outline.Sections) > maxOutlineSections {
		issues = append(issues, Issue{Field: "sections",
			Message: fmt.Sprintf("outline has %d sections, maximum is %d", len(outline.Sections), maxOutlineSections)})
	}

	for i, section := range outline.Sections {
		field := fmt.Sprintf("sections[%d]", i)
		if strings.TrimSpace(section.Title) == "" {
			issues = append(issues, Issue{Field: field + ".title", Message: "section title is required"})
		}
		start, end := section.Start(), section.End()
		if start < 1 {
			issues = append(issues, Issue{Field: field + ".page_range",
				Message: fmt.Sprintf("start page %d is before page 1", start)})
		}
		if start > end {
			issues = append(issues, Issue{Field: field + ".page_range",
				Message: fmt.Sprintf("start page %d is after end page %d", start, end)})
		}
		if pageCount > 0 && end > pageCount {
			issues = append(issues, Issue{Field: field + ".page_range",
				Message: fmt.Sprintf("end page %d exceeds document page count %d", end, pageCount)})
		}
	}

	return issues
}
