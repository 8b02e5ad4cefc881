package service

import (
	"fmt"
	"strings"

	"ragsearch/internal/domain"
)

const promptTemplate = `
You are an AI assistant.
Summarize the context strictly based on the information provided.

Context:
%s

Query:
%s

Summary:
`

// BuildContext joins the non-empty result texts in rank order, separated by
// a blank line. Results without text are skipped.
func BuildContext(results []domain.Result) string {
	texts := make([]string, 0, len(results))
	for _, r := range results {
		if text, ok := r.Text(); ok {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, "\n\n")
}

// BuildPrompt embeds the context text and query into the summarization prompt.
func BuildPrompt(contextText, query string) string {
	return fmt.Sprintf(promptTemplate, contextText, query)
}
