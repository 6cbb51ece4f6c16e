package execution

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	genai "google.golang.org/genai"
)

type fakeContentGenerator struct {
	resp *genai.GenerateContentResponse
	err  error

	model    string
	prompt   string
	mimeType string
	deadline bool
}

func (f *fakeContentGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.prompt = contents[0].Parts[0].Text
	f.mimeType = config.ResponseMIMEType
	_, f.deadline = ctx.Deadline()
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func TestGeminiExecute(t *testing.T) {
	fake := &fakeContentGenerator{resp: textResponse(`{"preset":`, ` {}}`)}
	engine := newGeminiEngine(fake, "", nil)

	resp, err := engine.Execute(context.Background(), &ExecutionRequest{
		Purpose: PurposePreset,
		Message: "make a preset",
		Timeout: time.Minute,
	})

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, `{"preset": {}}`, resp.FinalOutput)
	assert.Equal(t, DefaultGeminiModel, fake.model)
	assert.Equal(t, "make a preset", fake.prompt)
	assert.Equal(t, "application/json", fake.mimeType)
	assert.True(t, fake.deadline)
}

func TestGeminiExecute_ModelOverride(t *testing.T) {
	fake := &fakeContentGenerator{resp: textResponse("{}")}
	engine := newGeminiEngine(fake, "gemini-2.5-pro", nil)

	resp, err := engine.Execute(context.Background(), &ExecutionRequest{ModelID: "gemini-custom"})

	require.NoError(t, err)
	assert.Equal(t, "gemini-custom", resp.ModelID)
	assert.False(t, fake.deadline)
}

func TestGeminiExecute_EmptyCandidates(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{"nil response", nil},
		{"no candidates", &genai.GenerateContentResponse{}},
		{"no content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}},
		{"blank text", textResponse("  ")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newGeminiEngine(&fakeContentGenerator{resp: tt.resp}, "", nil)

			resp, err := engine.Execute(context.Background(), &ExecutionRequest{Message: "x"})

			require.NoError(t, err)
			assert.False(t, resp.Success)
			assert.Equal(t, ErrEmptyCandidate.Error(), resp.ErrorMsg)
		})
	}
}

func TestGeminiExecute_TransportError(t *testing.T) {
	boom := errors.New("connection reset")
	engine := newGeminiEngine(&fakeContentGenerator{err: boom}, "", nil)

	_, err := engine.Execute(context.Background(), &ExecutionRequest{Message: "x"})

	require.ErrorIs(t, err, boom)
}

func TestNewGeminiEngine_RequiresKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := NewGeminiEngine(context.Background(), "", "", nil)

	require.ErrorContains(t, err, "GEMINI_API_KEY")
}
