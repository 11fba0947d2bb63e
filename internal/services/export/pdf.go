// -----------------------------------------------------------------------
// PDF export - markdown rendering via goldmark + fpdf
// -----------------------------------------------------------------------

package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestio/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Service renders practice sets to PDF
type Service struct {
	logger arbor.ILogger
}

// NewService creates a PDF export service
func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

// ExportPracticeSet renders the question set for one material as a PDF
func (s *Service) ExportPracticeSet(material *models.Material, topics []*models.TopicRecord, questions []*models.Question, includeAnswers bool) ([]byte, error) {
	markdown := BuildPracticeSetMarkdown(material, topics, questions, includeAnswers)
	return s.ConvertMarkdownToPDF(markdown)
}

// ConvertMarkdownToPDF converts markdown content to a PDF byte slice
func (s *Service) ConvertMarkdownToPDF(markdown string) ([]byte, error) {
	s.logger.Debug().
		Int("markdown_len", len(markdown)).
		Msg("Converting markdown to PDF")

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	pdf.SetFont("Arial", "", 10)

	md := goldmark.New(goldmark.WithExtensions(extension.Strikethrough))
	source := []byte(markdown)
	doc := md.Parser().Parse(text.NewReader(source))

	renderer := &pdfRenderer{
		pdf:    pdf,
		source: source,
		font:   "Arial",
		size:   10,
	}
	if err := renderer.render(doc); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}

	s.logger.Debug().Int("pdf_size", buf.Len()).Msg("PDF generated")
	return buf.Bytes(), nil
}

type pdfRenderer struct {
	pdf    *fpdf.Fpdf
	source []byte
	font   string
	size   float64
	bold   bool
	italic bool
	inList bool
}

func (r *pdfRenderer) render(node ast.Node) error {
	return ast.Walk(node, r.walk)
}

func (r *pdfRenderer) updateFont() {
	style := ""
	if r.bold {
		style += "B"
	}
	if r.italic {
		style += "I"
	}
	r.pdf.SetFont(r.font, style, r.size)
}

func (r *pdfRenderer) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node := n.(type) {
	case *ast.Heading:
		if entering {
			sizes := map[int]float64{1: 16, 2: 13, 3: 11}
			size, ok := sizes[node.Level]
			if !ok {
				size = r.size
			}
			r.pdf.Ln(3)
			r.pdf.SetFont(r.font, "B", size)
		} else {
			r.pdf.Ln(7)
			r.updateFont()
		}
	case *ast.Paragraph:
		if !entering {
			if r.inList {
				r.pdf.Ln(5)
			} else {
				r.pdf.Ln(8)
			}
		}
	case *ast.List:
		r.inList = entering
		if !entering {
			r.pdf.Ln(3)
		}
	case *ast.ListItem:
		if entering {
			r.pdf.CellFormat(6, 5, "", "", 0, "", false, 0, "")
		}
	case *ast.Emphasis:
		if node.Level >= 2 {
			r.bold = entering
		} else {
			r.italic = entering
		}
		r.updateFont()
	case *ast.Text:
		if entering {
			r.pdf.Write(5, string(node.Segment.Value(r.source)))
			if node.HardLineBreak() || node.SoftLineBreak() {
				r.pdf.Ln(5)
			}
		}
	}
	return ast.WalkContinue, nil
}
