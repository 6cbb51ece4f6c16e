package execution

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spboyer/estimator/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeFenced(t *testing.T, out string) map[string]any {
	t.Helper()
	out = strings.TrimPrefix(out, "```json\n")
	out = strings.TrimSuffix(out, "\n```")
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	return doc
}

func TestMockEngine_Initialize(t *testing.T) {
	engine := NewMockEngine("test-model")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, engine.Initialize(ctx))
}

func TestMockEngine_Questions(t *testing.T) {
	engine := NewMockEngine("test-model")

	resp, err := engine.Execute(context.Background(), &ExecutionRequest{Purpose: PurposeQuestions, Message: "hello"})
	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.Equal(t, "test-model", resp.ModelID)

	doc := decodeFenced(t, resp.FinalOutput)
	questions := doc["questions"].([]any)
	require.Len(t, questions, 3)

	required := 0
	for _, q := range questions {
		qm := q.(map[string]any)
		assert.NotContains(t, qm, "scope", "single mode questions carry no scope")
		if qm["required"] == true {
			required++
		}
	}
	assert.Equal(t, 2, required)
}

func TestMockEngine_BulkQuestionsAreScoped(t *testing.T) {
	engine := NewMockEngine("test-model")
	reqs := []models.RequirementStub{{ID: "r1", Code: "REQ-1"}, {ID: "r2", Code: "REQ-2"}}

	resp, err := engine.Execute(context.Background(), &ExecutionRequest{Purpose: PurposeQuestions, Requirements: reqs})
	require.NoError(t, err)

	questions := decodeFenced(t, resp.FinalOutput)["questions"].([]any)
	scopes := map[string]any{}
	for _, q := range questions {
		qm := q.(map[string]any)
		scopes[qm["id"].(string)] = qm["scope"]
	}
	assert.Equal(t, map[string]any{
		"platform":     "global",
		"integrations": "multi-requirement",
		"users":        "specific",
	}, scopes)
}

func TestMockEngine_Estimations(t *testing.T) {
	engine := NewMockEngine("test-model")
	reqs := []models.RequirementStub{{ID: "r1", Code: "REQ-1", Title: "Login"}, {ID: "r2", Code: "REQ-2", Title: "Search"}}

	resp, err := engine.Execute(context.Background(), &ExecutionRequest{Purpose: PurposeEstimations, Requirements: reqs})
	require.NoError(t, err)

	items := decodeFenced(t, resp.FinalOutput)["estimations"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "r2", items[1].(map[string]any)["requirement_id"])
}

func TestMockEngine_UnknownPurpose(t *testing.T) {
	engine := NewMockEngine("test-model")

	resp, err := engine.Execute(context.Background(), &ExecutionRequest{Purpose: "poem"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.ErrorMsg, "poem")
}

func TestMockEngine_CancelledContext(t *testing.T) {
	engine := NewMockEngine("test-model")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Execute(ctx, &ExecutionRequest{Purpose: PurposePreset})
	require.ErrorIs(t, err, context.Canceled)
}

func TestMockEngine_Shutdown_Idempotent(t *testing.T) {
	engine := NewMockEngine("test-model")

	for i := 0; i < 3; i++ {
		assert.NoError(t, engine.Shutdown(context.Background()), "Shutdown call %d should not error", i+1)
	}
}

var (
	_ AgentEngine = (*MockEngine)(nil)
	_ AgentEngine = (*CopilotEngine)(nil)
	_ AgentEngine = (*GeminiEngine)(nil)
)
