// Package openai implements the retrieval-augmented compliance analyzer on
// top of the OpenAI chat completion API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/hrflow/compliance-engine/internal/application/port"
	"github.com/hrflow/compliance-engine/internal/domain/entity"
)

// ErrUnparsableResponse marks model output that could not be decoded into
// the expected JSON shape. Callers degrade the AI step instead of failing
// the check.
var ErrUnparsableResponse = errors.New("unparsable model response")

// completionClient is the slice of the OpenAI client the analyzer uses.
// *openai.Client satisfies it; tests substitute a fake.
type completionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Config holds analyzer tuning.
type Config struct {
	APIKey         string
	Model          string
	Temperature    float32
	RetrievalLimit int
	Timeout        time.Duration
}

// Analyzer implements port.ComplianceAnalyzer: retrieve relevant regulation
// entries, ground one model call on them, and parse a bilingual issue list.
type Analyzer struct {
	client         completionClient
	knowledge      port.KnowledgeReader
	model          string
	temperature    float32
	retrievalLimit int
	timeout        time.Duration
	now            func() time.Time
	logger         *zap.Logger
}

// NewAnalyzer creates an analyzer backed by the real OpenAI client.
func NewAnalyzer(cfg Config, knowledge port.KnowledgeReader, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		client:         openai.NewClient(cfg.APIKey),
		knowledge:      knowledge,
		model:          cfg.Model,
		temperature:    cfg.Temperature,
		retrievalLimit: cfg.RetrievalLimit,
		timeout:        cfg.Timeout,
		now:            time.Now,
		logger:         logger,
	}
}

// Analyze runs the RAG step. A nil result with nil error means no knowledge
// entries matched and the step contributes nothing.
func (a *Analyzer) Analyze(ctx context.Context, req port.AnalysisRequest) (*port.AnalysisResult, error) {
	categories := []string{
		knowledgeCategory(req.FormType),
		entity.KnowledgeCategoryGeneral,
		entity.KnowledgeCategorySalary,
	}

	entries, err := a.knowledge.ListByCategories(ctx, categories, a.retrievalLimit)
	if err != nil {
		return nil, fmt.Errorf("knowledge retrieval failed: %w", err)
	}
	if len(entries) == 0 {
		a.logger.Debug("No knowledge entries for category, skipping AI analysis",
			zap.String("form_type", req.FormType))
		return nil, nil
	}

	systemPrompt := buildSystemPrompt(a.now(), entries)
	userPrompt, err := buildUserPrompt(req.FormType, req.FormData)
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis prompt: %w", err)
	}

	callCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	resp, err := a.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: a.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("model call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty completion", ErrUnparsableResponse)
	}

	result, err := parseAnalysis(resp.Choices[0].Message.Content)
	if err != nil {
		a.logger.Error("Failed to parse model response",
			zap.String("form_type", req.FormType),
			zap.Error(err))
		return nil, err
	}

	a.logger.Info("AI compliance analysis completed",
		zap.String("form_type", req.FormType),
		zap.Int("issues", len(result.Issues)))

	return result, nil
}

// knowledgeCategory maps a form type to its regulation category.
func knowledgeCategory(formType string) string {
	switch formType {
	case entity.FormTypeLeave:
		return entity.KnowledgeCategoryLeave
	case entity.FormTypeOvertime:
		return entity.KnowledgeCategoryOvertime
	default:
		return entity.KnowledgeCategoryGeneral
	}
}

// parseAnalysis decodes the model output, tolerating markdown code fences
// around the JSON body. Severities other than blocked normalize to warning.
func parseAnalysis(content string) (*port.AnalysisResult, error) {
	var result port.AnalysisResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		jsonStr := extractJSON(content)
		if jsonStr == "" {
			return nil, fmt.Errorf("%w: no JSON object found", ErrUnparsableResponse)
		}
		if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnparsableResponse, err)
		}
	}

	for i := range result.Issues {
		if result.Issues[i].Severity != string(entity.CheckStatusBlocked) {
			result.Issues[i].Severity = string(entity.CheckStatusWarning)
		}
	}

	return &result, nil
}

// extractJSON pulls the first balanced JSON object out of surrounding text
// such as ```json fences.
func extractJSON(content string) string {
	start := findJSONStart(content)
	if start < 0 {
		return ""
	}
	end := findJSONEnd(content, start)
	if end <= start {
		return ""
	}
	return content[start:end]
}

func findJSONStart(content string) int {
	for i := 0; i < len(content); i++ {
		if content[i] == '{' {
			return i
		}
	}
	return -1
}

func findJSONEnd(content string, start int) int {
	if start < 0 || start >= len(content) || content[start] != '{' {
		return -1
	}

	braceCount := 0
	inString := false
	escapeNext := false

	for i := start; i < len(content); i++ {
		char := content[i]

		if escapeNext {
			escapeNext = false
			continue
		}

		if char == '\\' {
			escapeNext = true
			continue
		}

		if char == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		if char == '{' {
			braceCount++
		} else if char == '}' {
			braceCount--
			if braceCount == 0 {
				return i + 1
			}
		}
	}

	return -1
}
