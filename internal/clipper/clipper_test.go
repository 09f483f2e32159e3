package clipper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fitweek/internal/llm"
)

type MockTextGenerator struct {
	Response    string
	ShouldError bool
}

func (m *MockTextGenerator) GenerateContent(ctx context.Context, prompt string) (llm.ContentResponse, error) {
	if m.ShouldError {
		return llm.ContentResponse{}, fmt.Errorf("mock ai error")
	}
	return llm.ContentResponse{Content: m.Response, Usage: llm.TokenUsage{TotalTokens: 42, Model: "mock"}}, nil
}

func TestFetchAndCleanHTML(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		html := `
		<html>
			<head><script>alert('bad');</script></head>
			<body>
				<h1>Tasty Recipe</h1>
				<div class="ads">Buy stuff!</div>
				<p>Mix flour and water.</p>
				<script>more_bad_stuff()</script>
				<footer>Copyright 2024</footer>
			</body>
		</html>`
		w.Write([]byte(html))
	}))
	defer ts.Close()

	c := NewClipper(&MockTextGenerator{})

	cleanText, err := c.fetchAndCleanHTML(ts.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if strings.Contains(cleanText, "alert('bad')") {
		t.Error("Failed to remove <script> tags")
	}
	if strings.Contains(cleanText, "Buy stuff!") {
		t.Error("Failed to remove .ads class")
	}
	if strings.Contains(cleanText, "Copyright 2024") {
		t.Error("Failed to remove <footer>")
	}
	if !strings.Contains(cleanText, "Tasty Recipe") {
		t.Error("Expected to find 'Tasty Recipe'")
	}
	if !strings.Contains(cleanText, "Mix flour and water.") {
		t.Error("Expected to find body content")
	}
}

func TestClipURLSuccess(t *testing.T) {
	aiResponse := "Here is the recipe:\n" +
		`{"title": "Mock Pie", "ingredients": ["Apple (3 pieces)", "Flour"], "steps": ["Bake"], "prep_time": "1h", "servings": "8"}`

	c := NewClipper(&MockTextGenerator{Response: aiResponse})

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>Some Content</body></html>"))
	}))
	defer ts.Close()

	recipe, usage, err := c.ClipURL(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("ClipURL failed: %v", err)
	}

	if recipe.Title != "Mock Pie" {
		t.Errorf("Expected title 'Mock Pie', got '%s'", recipe.Title)
	}
	if usage.TotalTokens != 42 {
		t.Errorf("Expected usage passed through, got %+v", usage)
	}

	items := recipe.PantryItems()
	if len(items) != 2 {
		t.Fatalf("Expected 2 pantry items, got %d", len(items))
	}
	if items[0].Name != "Apple" || items[0].QtyUnit != "3 pieces" {
		t.Errorf("Expected the quantity split out, got %+v", items[0])
	}
	if items[1].Name != "Flour" || items[1].QtyUnit != "" {
		t.Errorf("Expected a bare item, got %+v", items[1])
	}
}

func TestClipURLRejectsEmptyRecipe(t *testing.T) {
	c := NewClipper(&MockTextGenerator{Response: `{"title": "", "ingredients": []}`})

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>Some Content</body></html>"))
	}))
	defer ts.Close()

	if _, _, err := c.ClipURL(context.Background(), ts.URL); err == nil {
		t.Fatal("Expected an error for an empty extraction, got nil")
	}
}
