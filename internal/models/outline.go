package models

// OutlineSection groups a run of chunks into a top-level section.
// PageRange is [start, end], 1-indexed, inclusive, start <= end.
type OutlineSection struct {
	Title     string   `json:"title"`
	PageRange [2]int   `json:"page_range"`
	Subtopics []string `json:"subtopics,omitempty"`
}

// Start returns the first page of the section
func (s *OutlineSection) Start() int { return s.PageRange[0] }

// End returns the last page of the section
func (s *OutlineSection) End() int { return s.PageRange[1] }

// Outline is the ordered list of sections for one material
type Outline struct {
	Sections []OutlineSection `json:"sections"`
}
