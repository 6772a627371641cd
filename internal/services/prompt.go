package services

import (
	"fmt"
	"strings"
)

// maxPromptComments bounds how many comments are sent in one prompt.
const maxPromptComments = 200

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildCommentSummaryPrompt creates the prompt that condenses detractor
// comments into a short summary and a list of recurring themes.
func (pb *PromptBuilder) BuildCommentSummaryPrompt(comments []string, periodLabel string) string {
	if len(comments) > maxPromptComments {
		comments = comments[:maxPromptComments]
	}

	var sb strings.Builder
	for i, c := range comments {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, strings.ReplaceAll(strings.TrimSpace(c), "\n", " "))
	}

	return fmt.Sprintf(`You are a customer experience analyst reviewing Net Promoter Score survey answers.

The comments below were written by detractors (scores 0 to 6) during the period: %s.
Comments may be written in Portuguese or English.

COMMENTS:
%s
Your task is to identify why these customers are unhappy.

Return your response in the following JSON format:
{
  "summary": "<2-4 sentences describing the main sources of dissatisfaction>",
  "themes": ["<short theme>", "<short theme>", "..."]
}

List at most 5 themes, ordered by how often they appear. Do not invent issues that are not in the comments.`,
		periodLabel, sb.String())
}

// extractJSON tries to extract JSON from text that might contain markdown or other formatting
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	} else if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return text
}
