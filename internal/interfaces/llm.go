package interfaces

import "context"

// Part is one element of an LLM prompt: either text or an inline binary
// attachment (e.g. the raw PDF bytes of a material).
type Part struct {
	Text     string
	Data     []byte
	MIMEType string
}

// TextPart builds a text prompt part
func TextPart(text string) Part {
	return Part{Text: text}
}

// DataPart builds a binary attachment prompt part
func DataPart(data []byte, mimeType string) Part {
	return Part{Data: data, MIMEType: mimeType}
}

// GenerateOptions controls a single content generation call
type GenerateOptions struct {
	Model           string  // Empty uses the configured default
	Temperature     float32 // <= 0 uses the provider default
	MaxOutputTokens int     // <= 0 uses the provider default
	Structured      bool    // Request JSON output conforming to Schema
	Schema          map[string]interface{}
}

// LLMService is the external content-generation collaborator. Generate
// submits prompt parts and returns raw model text. Failures carry a typed
// kind (rate-limited, timeout, provider, parse) via llm.ErrorKind.
type LLMService interface {
	Generate(ctx context.Context, parts []Part, opts GenerateOptions) (string, error)
}
