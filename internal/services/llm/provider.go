package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestio/internal/common"
	"github.com/ternarybob/quaestio/internal/interfaces"
	"google.golang.org/genai"
)

// ProviderType represents the AI provider type
type ProviderType string

const (
	// ProviderGemini uses Google Gemini API
	ProviderGemini ProviderType = "gemini"
	// ProviderClaude uses Anthropic Claude API
	ProviderClaude ProviderType = "claude"
)

// Service routes content generation to the appropriate provider based on
// model string, with provider-level rate-limit retry. It implements
// interfaces.LLMService for the pipeline stages.
type Service struct {
	geminiConfig *common.GeminiConfig
	claudeConfig *common.ClaudeConfig
	llmConfig    *common.LLMConfig
	kvStorage    interfaces.KeyValueStorage
	logger       arbor.ILogger
	retryConfig  *RetryConfig
	geminiClient *genai.Client
	claudeClient anthropic.Client
	claudeAPIKey string
}

// Compile-time assertion
var _ interfaces.LLMService = (*Service)(nil)

// NewService creates a new LLM provider service
func NewService(config *common.Config, kvStorage interfaces.KeyValueStorage, logger arbor.ILogger) *Service {
	return &Service{
		geminiConfig: &config.Gemini,
		claudeConfig: &config.Claude,
		llmConfig:    &config.LLM,
		kvStorage:    kvStorage,
		logger:       logger,
		retryConfig:  NewDefaultRetryConfig(),
	}
}

// DetectProvider determines the provider type from a model string.
// Empty string uses the default provider from config.
func (s *Service) DetectProvider(model string) ProviderType {
	if model == "" {
		return ProviderType(s.llmConfig.DefaultProvider)
	}

	model = strings.ToLower(model)

	if strings.HasPrefix(model, "claude/") || strings.HasPrefix(model, "anthropic/") || strings.HasPrefix(model, "claude-") {
		return ProviderClaude
	}
	if strings.HasPrefix(model, "gemini/") || strings.HasPrefix(model, "google/") || strings.HasPrefix(model, "gemini-") {
		return ProviderGemini
	}

	return ProviderType(s.llmConfig.DefaultProvider)
}

// NormalizeModel removes provider prefix from model name if present
func (s *Service) NormalizeModel(model string) string {
	prefixes := []string{"claude/", "anthropic/", "gemini/", "google/"}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToLower(model), prefix) {
			return model[len(prefix):]
		}
	}
	return model
}

// Generate generates content using the appropriate provider based on model
func (s *Service) Generate(ctx context.Context, parts []interfaces.Part, opts interfaces.GenerateOptions) (string, error) {
	provider := s.DetectProvider(opts.Model)
	model := s.NormalizeModel(opts.Model)

	s.logger.Debug().
		Str("provider", string(provider)).
		Str("model", model).
		Int("part_count", len(parts)).
		Bool("structured", opts.Structured).
		Msg("Generating content with provider")

	switch provider {
	case ProviderClaude:
		return s.generateWithClaude(ctx, parts, opts, model)
	default:
		return s.generateWithGemini(ctx, parts, opts, model)
	}
}

// getGeminiClient returns a Gemini client, creating one if necessary
func (s *Service) getGeminiClient(ctx context.Context) (*genai.Client, error) {
	if s.geminiClient != nil {
		return s.geminiClient, nil
	}

	apiKey, err := common.ResolveAPIKey(ctx, s.kvStorage, "gemini_api_key", s.geminiConfig.APIKey)
	if err != nil {
		return nil, NewError(KindFatal, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, NewError(KindFatal, fmt.Errorf("failed to create Gemini client: %w", err))
	}

	s.geminiClient = client
	return client, nil
}

// getClaudeClient returns a Claude client, creating one if necessary
func (s *Service) getClaudeClient(ctx context.Context) (anthropic.Client, error) {
	if s.claudeAPIKey != "" {
		return s.claudeClient, nil
	}

	apiKey, err := common.ResolveAPIKey(ctx, s.kvStorage, "anthropic_api_key", s.claudeConfig.APIKey)
	if err != nil {
		return anthropic.Client{}, NewError(KindFatal, err)
	}

	s.claudeClient = anthropic.NewClient(option.WithAPIKey(apiKey))
	s.claudeAPIKey = apiKey
	return s.claudeClient, nil
}

// generateWithGemini generates content using Gemini API
func (s *Service) generateWithGemini(ctx context.Context, parts []interfaces.Part, opts interfaces.GenerateOptions, model string) (string, error) {
	client, err := s.getGeminiClient(ctx)
	if err != nil {
		return "", err
	}

	if model == "" {
		model = s.geminiConfig.Model
	}

	geminiParts := make([]*genai.Part, 0, len(parts))
	for _, part := range parts {
		if len(part.Data) > 0 {
			geminiParts = append(geminiParts, genai.NewPartFromBytes(part.Data, part.MIMEType))
		} else {
			geminiParts = append(geminiParts, genai.NewPartFromText(part.Text))
		}
	}
	contents := []*genai.Content{{Role: genai.RoleUser, Parts: geminiParts}}

	temp := opts.Temperature
	if temp <= 0 {
		temp = s.geminiConfig.Temperature
	}
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temp),
	}
	if opts.MaxOutputTokens > 0 {
		config.MaxOutputTokens = int32(opts.MaxOutputTokens)
	} else if s.geminiConfig.MaxTokens > 0 {
		config.MaxOutputTokens = int32(s.geminiConfig.MaxTokens)
	}

	// When a schema is provided, Gemini enforces JSON output matching it
	if opts.Structured {
		config.ResponseMIMEType = "application/json"
		if len(opts.Schema) > 0 {
			genaiSchema, err := convertToGenaiSchema(opts.Schema)
			if err != nil {
				s.logger.Error().Err(err).Msg("Failed to convert output schema")
				// Continue without schema rather than failing
			} else if genaiSchema != nil {
				config.ResponseSchema = genaiSchema
			}
		}
	}

	var resp *genai.GenerateContentResponse
	var apiErr error

	for attempt := 0; attempt <= s.retryConfig.MaxRetries; attempt++ {
		resp, apiErr = client.Models.GenerateContent(ctx, model, contents, config)
		if apiErr == nil {
			break
		}

		if attempt == s.retryConfig.MaxRetries || !IsRateLimitError(apiErr) {
			break
		}

		backoff := s.retryConfig.CalculateBackoff(attempt, ExtractRetryDelay(apiErr))

		s.logger.Warn().
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Err(apiErr).
			Msg("Retrying Gemini API call")

		select {
		case <-ctx.Done():
			return "", NewError(KindTimeout, ctx.Err())
		case <-time.After(backoff):
		}
	}

	if apiErr != nil {
		return "", s.classify(apiErr)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", NewProviderError(0, fmt.Errorf("empty response from Gemini API"))
	}
	responseText := resp.Text()
	if responseText == "" {
		return "", NewProviderError(0, fmt.Errorf("empty text in Gemini response"))
	}

	return responseText, nil
}

// generateWithClaude generates content using Claude API
func (s *Service) generateWithClaude(ctx context.Context, parts []interfaces.Part, opts interfaces.GenerateOptions, model string) (string, error) {
	client, err := s.getClaudeClient(ctx)
	if err != nil {
		return "", err
	}

	if model == "" {
		model = s.claudeConfig.Model
	}

	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(parts))
	for _, part := range parts {
		if len(part.Data) > 0 {
			blocks = append(blocks, anthropic.NewDocumentBlock(anthropic.Base64PDFSourceParam{
				Data: base64.StdEncoding.EncodeToString(part.Data),
			}))
		} else {
			blocks = append(blocks, anthropic.NewTextBlock(part.Text))
		}
	}

	maxTokens := opts.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = s.claudeConfig.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
	}

	temp := opts.Temperature
	if temp <= 0 {
		temp = s.claudeConfig.Temperature
	}
	if temp > 0 {
		params.Temperature = anthropic.Float(float64(temp))
	}

	// Claude has no enforced JSON mode; ask for it in a system message
	if opts.Structured {
		params.System = []anthropic.TextBlockParam{
			{Text: "Respond with a single valid JSON document and nothing else."},
		}
	}

	var resp *anthropic.Message
	var apiErr error

	for attempt := 0; attempt <= s.retryConfig.MaxRetries; attempt++ {
		resp, apiErr = client.Messages.New(ctx, params)
		if apiErr == nil {
			break
		}

		if attempt == s.retryConfig.MaxRetries || !IsRateLimitError(apiErr) {
			break
		}

		backoff := s.retryConfig.CalculateBackoff(attempt, ExtractRetryDelay(apiErr))

		s.logger.Warn().
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Err(apiErr).
			Msg("Retrying Claude API call")

		select {
		case <-ctx.Done():
			return "", NewError(KindTimeout, ctx.Err())
		case <-time.After(backoff):
		}
	}

	if apiErr != nil {
		return "", s.classify(apiErr)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", NewProviderError(0, fmt.Errorf("empty response from Claude API"))
	}

	return text.String(), nil
}

// classify wraps a raw provider error with its taxonomy kind
func (s *Service) classify(err error) error {
	switch kind := KindOf(err); kind {
	case KindRateLimited:
		return NewError(KindRateLimited, err)
	case KindTimeout:
		return NewError(KindTimeout, err)
	case KindProvider:
		return NewProviderError(statusOf(err), err)
	default:
		return NewError(kind, err)
	}
}

// Close releases provider clients
func (s *Service) Close() error {
	s.geminiClient = nil
	s.claudeClient = anthropic.Client{}
	s.claudeAPIKey = ""
	return nil
}

// convertToGenaiSchema converts a map[string]interface{} JSON schema to a
// genai.Schema structure for structured output.
func convertToGenaiSchema(schemaMap map[string]interface{}) (*genai.Schema, error) {
	if len(schemaMap) == 0 {
		return nil, nil
	}

	schema := &genai.Schema{}

	if typeStr, ok := schemaMap["type"].(string); ok {
		switch strings.ToLower(typeStr) {
		case "object":
			schema.Type = genai.TypeObject
		case "array":
			schema.Type = genai.TypeArray
		case "string":
			schema.Type = genai.TypeString
		case "number":
			schema.Type = genai.TypeNumber
		case "integer":
			schema.Type = genai.TypeInteger
		case "boolean":
			schema.Type = genai.TypeBoolean
		}
	}

	if desc, ok := schemaMap["description"].(string); ok {
		schema.Description = desc
	}

	if enumVals, ok := schemaMap["enum"].([]interface{}); ok {
		for _, v := range enumVals {
			if str, ok := v.(string); ok {
				schema.Enum = append(schema.Enum, str)
			}
		}
	} else if enumVals, ok := schemaMap["enum"].([]string); ok {
		schema.Enum = enumVals
	}

	if reqVals, ok := schemaMap["required"].([]interface{}); ok {
		for _, v := range reqVals {
			if str, ok := v.(string); ok {
				schema.Required = append(schema.Required, str)
			}
		}
	} else if reqVals, ok := schemaMap["required"].([]string); ok {
		schema.Required = reqVals
	}

	if itemsMap, ok := schemaMap["items"].(map[string]interface{}); ok {
		itemSchema, err := convertToGenaiSchema(itemsMap)
		if err != nil {
			return nil, fmt.Errorf("failed to convert items schema: %w", err)
		}
		schema.Items = itemSchema
	}

	if propsMap, ok := schemaMap["properties"].(map[string]interface{}); ok {
		schema.Properties = make(map[string]*genai.Schema)
		for propName, propVal := range propsMap {
			if propMap, ok := propVal.(map[string]interface{}); ok {
				propSchema, err := convertToGenaiSchema(propMap)
				if err != nil {
					return nil, fmt.Errorf("failed to convert property '%s': %w", propName, err)
				}
				schema.Properties[propName] = propSchema
			}
		}
	}

	return schema, nil
}
