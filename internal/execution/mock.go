package execution

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spboyer/estimator/internal/models"
)

// MockEngine returns canned, schema-valid payloads for each purpose. It is
// deterministic and needs no network, which makes it the engine for offline
// runs and tests.
type MockEngine struct {
	modelID string
}

// NewMockEngine creates a new mock engine
func NewMockEngine(modelID string) *MockEngine {
	return &MockEngine{
		modelID: modelID,
	}
}

func (m *MockEngine) Initialize(ctx context.Context) error {
	return nil
}

func (m *MockEngine) Execute(ctx context.Context, req *ExecutionRequest) (*ExecutionResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil req was passed to MockEngine.Execute")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	var payload any
	switch req.Purpose {
	case PurposeQuestions:
		payload = mockQuestions(req.Requirements)
	case PurposePreset:
		payload = mockPreset()
	case PurposeEstimations:
		payload = mockEstimations(req.Requirements)
	default:
		return &ExecutionResponse{
			ModelID:  m.modelID,
			ErrorMsg: fmt.Sprintf("mock engine has no response for purpose %q", req.Purpose),
		}, nil
	}

	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling mock payload: %w", err)
	}

	return &ExecutionResponse{
		FinalOutput: "```json\n" + string(raw) + "\n```",
		ModelID:     m.modelID,
		DurationMs:  time.Since(start).Milliseconds(),
		Success:     true,
	}, nil
}

func (m *MockEngine) Shutdown(ctx context.Context) error {
	return nil
}

func mockQuestions(reqs []models.RequirementStub) map[string]any {
	platform := map[string]any{
		"id": "platform", "type": "single-choice", "question": "Which platforms must be supported?",
		"required": true, "category": "architecture",
		"options": []map[string]any{
			{"id": "web", "label": "Web"},
			{"id": "mobile", "label": "Mobile"},
			{"id": "both", "label": "Web and mobile"},
		},
	}
	integrations := map[string]any{
		"id": "integrations", "type": "multiple-choice", "question": "Which systems need to be integrated?",
		"required": true, "category": "integration",
		"options": []map[string]any{
			{"id": "sap", "label": "SAP"},
			{"id": "crm", "label": "CRM"},
			{"id": "payments", "label": "Payment provider"},
			{"id": models.OtherOptionID, "label": "Other"},
		},
	}
	users := map[string]any{
		"id": "users", "type": "range", "question": "How many concurrent users are expected?",
		"required": false, "min": 10, "max": 100000, "step": 10, "unit": "users", "default_value": 1000,
	}

	if len(reqs) > 0 {
		ids := make([]string, 0, len(reqs))
		for _, r := range reqs {
			ids = append(ids, r.ID)
		}
		platform["scope"] = string(models.ScopeGlobal)
		integrations["scope"] = string(models.ScopeMultiRequirement)
		integrations["affected_requirement_ids"] = ids
		users["scope"] = string(models.ScopeSpecific)
		users["affected_requirement_ids"] = ids[:1]
	}

	return map[string]any{
		"questions":               []map[string]any{platform, integrations, users},
		"reasoning":               "Platform, integrations and load drive most of the effort.",
		"suggested_tech_category": "ECOMMERCE",
	}
}

func mockPreset() map[string]any {
	return map[string]any{
		"preset": map[string]any{
			"name":          "B2B Commerce",
			"description":   "B2B ecommerce platform with ERP integration",
			"tech_category": "ECOMMERCE",
			"confidence":    0.8,
			"reasoning":     "Derived from the interview answers.",
			"activities": []map[string]any{
				{"code": "ANL", "title": "Requirements analysis", "base_hours": 16, "confidence": 0.9, "priority": "core"},
				{"code": "BE", "title": "Backend services", "base_hours": 40, "confidence": 0.8, "priority": "core"},
				{"code": "FE", "title": "Storefront UI", "base_hours": 32, "confidence": 0.7, "priority": "core"},
				{"code": "INT", "title": "ERP connector", "base_hours": 24, "confidence": 0.6, "priority": "recommended"},
				{"code": "DOC", "title": "Documentation", "base_hours": 8, "confidence": 0.9, "priority": "optional"},
			},
			"driver_values": map[string]string{"COMPLEXITY": "HIGH"},
			"risk_codes":    []string{"INTEGRATION"},
		},
		"metadata": map[string]any{"engine": "mock"},
	}
}

func mockEstimations(reqs []models.RequirementStub) map[string]any {
	items := make([]map[string]any, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, map[string]any{
			"requirement_id":   r.ID,
			"req_code":         r.Code,
			"success":          true,
			"confidence_score": 0.7,
			"reasoning":        fmt.Sprintf("Baseline estimate for %s.", r.Title),
			"activities": []map[string]any{
				{"code": "DEV", "name": "Implementation", "base_hours": 16, "reason": "core work"},
				{"code": "TST", "name": "Testing", "base_hours": 8, "reason": "verification", "from_question_id": "platform"},
			},
		})
	}
	return map[string]any{"estimations": items}
}
