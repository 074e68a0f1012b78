// Package synthesizer turns retrieved passages and a question into a
// grounded natural-language answer, and scores how well-supported that
// answer is by the retrieval.
package synthesizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"benefits-rag/internal/llmservice"
	"benefits-rag/internal/models"
)

// confidenceDocs is how many of the top retrieved documents feed the
// confidence score.
const confidenceDocs = 3

// Synthesizer invokes the generation provider with a context-grounded
// prompt.
type Synthesizer struct {
	model   llms.Model
	timeout time.Duration
}

// New wraps the generation model. timeout bounds each provider call.
func New(model llms.Model, timeout time.Duration) *Synthesizer {
	return &Synthesizer{model: model, timeout: timeout}
}

// GenerateAnswer builds the grounded prompt from the retrieved documents
// and asks the generation provider for an answer.
func (s *Synthesizer) GenerateAnswer(ctx context.Context, question string, docs []models.RetrievedDocument) (string, error) {
	log.Debug().Msgf("Generating answer for question with %d retrieved documents", len(docs))

	prompt := fmt.Sprintf(models.RagPromptTemplate, buildContext(docs), question)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	messages := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}

	answer, err := llmservice.GenerateContent(ctx, s.model, messages)
	if err != nil {
		return "", err
	}
	log.Debug().Msgf("Generated answer of length %d", len(answer))
	return answer, nil
}

// CalculateConfidence averages the scores of the top retrieved documents
// and clamps the result into [0,1]. An empty retrieval has confidence 0.
func CalculateConfidence(docs []models.RetrievedDocument) float64 {
	if len(docs) == 0 {
		return 0.0
	}

	n := len(docs)
	if n > confidenceDocs {
		n = confidenceDocs
	}
	sum := 0.0
	for _, doc := range docs[:n] {
		sum += doc.Score
	}
	avg := sum / float64(n)

	if avg < 0.0 {
		return 0.0
	}
	if avg > 1.0 {
		return 1.0
	}
	return avg
}

// buildContext concatenates the retrieved documents in the order
// received, with title and source when present and the similarity score
// to 3 decimals.
func buildContext(docs []models.RetrievedDocument) string {
	var b strings.Builder
	for i, doc := range docs {
		fmt.Fprintf(&b, "Document %d:\n", i+1)
		if title := doc.MetadataString(models.MetaTitle, ""); title != "" {
			fmt.Fprintf(&b, "Title: %s\n", title)
		}
		if source := doc.MetadataString(models.MetaSource, ""); source != "" {
			fmt.Fprintf(&b, "Source: %s\n", source)
		}
		fmt.Fprintf(&b, "Content: %s\n", doc.Content)
		fmt.Fprintf(&b, "Relevance Score: %.3f\n\n", doc.Score)
	}
	return b.String()
}
