package synthesizer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"benefits-rag/internal/models"
)

func TestGenerateAnswer_PromptLayout(t *testing.T) {
	model := &mockModel{response: "Leave accrues at 1 day per 30 days worked."}
	s := New(model, time.Second)

	docs := []models.RetrievedDocument{
		{
			ID:      "doc-1",
			Content: "Paid leave accrues at 1 day per 30 days worked.",
			Score:   0.9123,
			Metadata: models.Metadata{
				models.MetaTitle:  "Leave Policy",
				models.MetaSource: "policy-42",
			},
		},
		{
			ID:      "doc-2",
			Content: "Unused leave carries over for one year.",
			Score:   0.75,
		},
	}

	answer, err := s.GenerateAnswer(context.Background(), "How does leave accrue?", docs)
	require.NoError(t, err)
	assert.Equal(t, "Leave accrues at 1 day per 30 days worked.", answer)

	assert.Contains(t, model.prompt, "User Question: How does leave accrue?")
	assert.Contains(t, model.prompt, "Document 1:\n")
	assert.Contains(t, model.prompt, "Title: Leave Policy\n")
	assert.Contains(t, model.prompt, "Source: policy-42\n")
	assert.Contains(t, model.prompt, "Content: Paid leave accrues at 1 day per 30 days worked.\n")
	assert.Contains(t, model.prompt, "Relevance Score: 0.912\n")
	assert.Contains(t, model.prompt, "Document 2:\n")
	assert.Contains(t, model.prompt, "Relevance Score: 0.750\n")
	// document without title or source metadata skips those lines
	assert.NotContains(t, model.prompt, "Source: unknown")
}

func TestGenerateAnswer_EmptyRetrieval(t *testing.T) {
	model := &mockModel{response: "There is no relevant context."}
	s := New(model, 0)

	_, err := s.GenerateAnswer(context.Background(), "anything?", nil)
	require.NoError(t, err)
	assert.Contains(t, model.prompt, "Context Documents:\n\n")
}

func TestGenerateAnswer_ProviderError(t *testing.T) {
	model := &mockModel{err: errors.New("connection refused")}
	s := New(model, time.Second)

	_, err := s.GenerateAnswer(context.Background(), "q", nil)
	assert.ErrorIs(t, err, models.ErrProviderFailure)
}

func TestGenerateAnswer_EmptyContent(t *testing.T) {
	model := &mockModel{response: ""}
	s := New(model, time.Second)

	_, err := s.GenerateAnswer(context.Background(), "q", nil)
	assert.ErrorIs(t, err, models.ErrProviderFailure)
}

func TestCalculateConfidence(t *testing.T) {
	doc := func(score float64) models.RetrievedDocument {
		return models.RetrievedDocument{Score: score}
	}

	tests := []struct {
		name string
		docs []models.RetrievedDocument
		want float64
	}{
		{"empty retrieval", nil, 0.0},
		{"single document", []models.RetrievedDocument{doc(0.8)}, 0.8},
		{"two documents averaged", []models.RetrievedDocument{doc(0.9), doc(0.7)}, 0.8},
		{"only top three counted", []models.RetrievedDocument{doc(0.9), doc(0.8), doc(0.7), doc(0.1), doc(0.0)}, 0.8},
		{"clamped above one", []models.RetrievedDocument{doc(1.4), doc(1.2)}, 1.0},
		{"clamped below zero", []models.RetrievedDocument{doc(-0.5)}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CalculateConfidence(tt.docs), 1e-9)
		})
	}
}
