package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"fitweek/internal/app"
	"fitweek/internal/config"
	"fitweek/internal/contract"
	"fitweek/internal/database"
	"fitweek/internal/llm"
	"fitweek/internal/metrics"
	"fitweek/internal/store"
)

type mockTextGenerator struct {
	response string
}

func (m *mockTextGenerator) GenerateContent(_ context.Context, _ string) (llm.ContentResponse, error) {
	return llm.ContentResponse{
		Content: m.response,
		Usage:   llm.TokenUsage{PromptTokens: 10, CompletionTokens: 90, TotalTokens: 100, Model: "mock"},
	}, nil
}

func newTestServer(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	st := store.New(db)
	cfg := &config.Config{DefaultTimezone: "UTC", JWTSecret: "test-secret"}
	a := app.New(cfg, st, metrics.NewStore(db.SQL), &mockTextGenerator{response: `{"days": [{}, {}, {}, {}, {}, {}, {}]}`})

	srv := NewServer(a, NewTokenService(cfg.JWTSecret))
	return srv.Router(), st
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func issueTestToken(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/token", "", map[string]string{
		"user_id": "u1",
		"email":   "user@example.com",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Failed to issue token: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode token response: %v", err)
	}
	return resp.Token
}

func seedSetup(t *testing.T, router *gin.Engine, token string) {
	t.Helper()
	steps := []struct {
		path string
		body any
	}{
		{"/api/v1/setup/questionnaire", contract.Questionnaire{
			Bio:              map[string]any{"age": 30},
			Goals:            map[string]any{"primary": "strength"},
			Diet:             map[string]any{"style": "omnivore"},
			Allergens:        []string{},
			Cuisine:          map[string]any{},
			WorkHours:        map[string]any{},
			GymFrequency:     contract.GymNever,
			GroceryFrequency: contract.GroceryWeekly,
			ReminderPrefs:    map[string]any{},
		}},
		{"/api/v1/setup/equipment", contract.Equipment{Items: []string{"dumbbells"}}},
		{"/api/v1/setup/availability", contract.Availability{FreeBlocks: []contract.FreeBlock{
			{Day: "monday", Start: "18:00", End: "19:00"},
		}}},
		{"/api/v1/pantry", contract.PantrySnapshot{
			Items:            []contract.PantryItem{{Name: "chicken", QtyUnit: "1 kg"}},
			NextShoppingDate: "2099-01-01",
		}},
	}
	for _, step := range steps {
		if w := doJSON(t, router, http.MethodPut, step.path, token, step.body); w.Code != http.StatusOK {
			t.Fatalf("Setup step %s failed: %d %s", step.path, w.Code, w.Body.String())
		}
	}
}

func TestAuthRequired(t *testing.T) {
	router, _ := newTestServer(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/plans/current", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without a token, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/v1/plans/current", "not-a-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for a bad token, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	router, _ := newTestServer(t)

	w := doJSON(t, router, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}

func TestGeneratePlanEndpoint(t *testing.T) {
	router, _ := newTestServer(t)
	token := issueTestToken(t, router)
	seedSetup(t, router, token)

	w := doJSON(t, router, http.MethodPost, "/api/v1/plans/generate", token, map[string]string{"week_start": "2025-01-13"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d %s", w.Code, w.Body.String())
	}

	var resp struct {
		Status string              `json:"status"`
		Plan   contract.WeeklyPlan `json:"plan"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != string(contract.StatusOK) || len(resp.Plan.Days) != 7 {
		t.Errorf("Unexpected response: %s", w.Body.String())
	}
}

func TestGeneratePlanIncompleteSetup(t *testing.T) {
	router, _ := newTestServer(t)
	token := issueTestToken(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/v1/plans/generate", token, map[string]string{"week_start": "2025-01-13"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d %s", w.Code, w.Body.String())
	}

	var resp struct {
		Status        string   `json:"status"`
		MissingFields []string `json:"missing_fields"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != string(contract.StatusInfoNeeded) || len(resp.MissingFields) == 0 {
		t.Errorf("Unexpected response: %s", w.Body.String())
	}
}

func TestLogAdherenceEndpoint(t *testing.T) {
	router, _ := newTestServer(t)
	token := issueTestToken(t, router)
	seedSetup(t, router, token)

	w := doJSON(t, router, http.MethodPost, "/api/v1/logs", token, contract.AdherenceLog{
		Date:        "2025-01-13",
		WorkoutDone: true,
		RPE:         6,
		Soreness:    3,
		MealsDone:   3,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d %s", w.Code, w.Body.String())
	}

	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != string(contract.StatusNoChange) {
		t.Errorf("Expected NO_CHANGE for a low-strain log, got %s", w.Body.String())
	}
}

func TestLogAdherenceEndpointRejectsOutOfRangeScores(t *testing.T) {
	router, _ := newTestServer(t)
	token := issueTestToken(t, router)
	seedSetup(t, router, token)

	w := doJSON(t, router, http.MethodPost, "/api/v1/logs", token, contract.AdherenceLog{
		Date:        "2025-01-13",
		WorkoutDone: true,
		RPE:         11,
		Soreness:    14,
		MealsDone:   3,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d %s", w.Code, w.Body.String())
	}
}

func TestCurrentPlanNotFound(t *testing.T) {
	router, _ := newTestServer(t)
	token := issueTestToken(t, router)

	w := doJSON(t, router, http.MethodGet, "/api/v1/plans/current", token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 when no plan exists, got %d", w.Code)
	}
}

func TestPantryRoundTripOverHTTP(t *testing.T) {
	router, _ := newTestServer(t)
	token := issueTestToken(t, router)
	seedSetup(t, router, token)

	w := doJSON(t, router, http.MethodGet, "/api/v1/pantry", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d %s", w.Code, w.Body.String())
	}

	var snapshot contract.PantrySnapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("Failed to decode pantry: %v", err)
	}
	if len(snapshot.Items) != 1 || snapshot.Items[0].Name != "chicken" {
		t.Errorf("Unexpected pantry: %s", w.Body.String())
	}
}
