package openai

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hrflow/compliance-engine/internal/domain/entity"
)

// buildSystemPrompt embeds the current date and the retrieved regulation
// context, and pins down the exact JSON response shape.
func buildSystemPrompt(now time.Time, entries []*entity.RuleKnowledgeEntry) string {
	var sb strings.Builder

	sb.WriteString("You are a labor-law compliance reviewer for employee workflow submissions. ")
	sb.WriteString(fmt.Sprintf("Today is %s (%s).\n\n", now.Format("2006-01-02"), now.Weekday()))

	sb.WriteString("Relevant regulations:\n\n")
	for _, entry := range entries {
		sb.WriteString(fmt.Sprintf("## %s", entry.Title))
		if entry.ArticleNumber != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", entry.ArticleNumber))
		}
		sb.WriteString("\n")
		if entry.Content != "" {
			sb.WriteString(entry.Content)
			sb.WriteString("\n")
		}
		if entry.ContentZh != "" {
			sb.WriteString(entry.ContentZh)
			sb.WriteString("\n")
		}
		if len(entry.Metadata) > 0 {
			if metaJSON, err := json.Marshal(entry.Metadata); err == nil {
				sb.WriteString(fmt.Sprintf("Metadata: %s\n", metaJSON))
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString(`Evaluate the submission against the regulations above. Respond with ONLY a valid JSON object (no markdown, no explanation) with this exact structure:
{
  "summary": "short English summary of the assessment",
  "summary_zh": "繁體中文摘要",
  "issues": [
    {
      "severity": "warning" or "blocked",
      "rule": "human-readable citation of the violated rule",
      "message_en": "English description of the violation",
      "message_zh": "繁體中文違規說明"
    }
  ]
}

Only flag genuine violations. A routine, compliant request must produce an empty issues array.`)

	return sb.String()
}

// buildUserPrompt serializes the submission for the model.
func buildUserPrompt(formType string, formData map[string]interface{}) (string, error) {
	formJSON, err := json.MarshalIndent(formData, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal form data: %w", err)
	}

	return fmt.Sprintf("Submission type: %s\n\nForm data:\n%s", formType, formJSON), nil
}
