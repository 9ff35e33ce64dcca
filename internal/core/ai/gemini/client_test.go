package gemini

import (
	"context"
	"testing"

	"fridge-chef/internal/infrastructure/config"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientMissingAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), config.GeminiConfig{Model: "gemini-1.5-flash"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_API_KEY")
}

func TestResponseTextConcatenatesParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{
				genai.Text(`{"recipes": `),
				genai.Text(`[]}`),
			}},
		}},
	}
	assert.Equal(t, `{"recipes": []}`, responseText(resp))
}

func TestResponseTextEmpty(t *testing.T) {
	assert.Equal(t, "", responseText(nil))
	assert.Equal(t, "", responseText(&genai.GenerateContentResponse{}))
	assert.Equal(t, "", responseText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{}},
	}))
}
