// -----------------------------------------------------------------------
// PDF extraction - page count and structure via pdfcpu
// -----------------------------------------------------------------------

package pdfextract

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"
)

// Result holds what the local PDF pass extracts before any model call is
// spent: page count for outline bounds checking plus basic file facts.
type Result struct {
	PageCount   int
	SizeBytes   int64
	IsEncrypted bool
}

// Service extracts structure from uploaded PDF bytes
type Service struct {
	logger arbor.ILogger
}

// NewService creates a PDF extraction service
func NewService(logger arbor.ILogger) *Service {
	return &Service{logger: logger}
}

// Extract reads page count and structure from raw PDF bytes. Invalid PDF
// bytes are an error; the material pipeline treats that as fatal.
func (s *Service) Extract(data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty PDF data")
	}
	if !IsPDF(data) {
		return nil, fmt.Errorf("data is not a PDF document")
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	result := &Result{
		PageCount:   pdfCtx.PageCount,
		SizeBytes:   int64(len(data)),
		IsEncrypted: pdfCtx.Encrypt != nil,
	}

	s.logger.Debug().
		Int("page_count", result.PageCount).
		Int64("file_size", result.SizeBytes).
		Bool("encrypted", result.IsEncrypted).
		Msg("PDF structure extracted")

	return result, nil
}

// IsPDF checks the magic bytes of an upload
func IsPDF(data []byte) bool {
	return len(data) >= 5 && bytes.HasPrefix(data, []byte("%PDF-"))
}
