// Package clipper imports recipes from the web. The extracted
// ingredient list can be merged into the user's pantry so planned
// meals line up with what a recipe actually needs.
package clipper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"fitweek/internal/contract"
	"fitweek/internal/llm"
	"fitweek/internal/normalize"
)

// Clipper fetches a recipe page and extracts its structure via the
// text generator.
type Clipper struct {
	textGen    llm.TextGenerator
	httpClient *http.Client
}

// ExtractedRecipe represents the data structured by the model.
type ExtractedRecipe struct {
	Title       string   `json:"title"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
	PrepTime    string   `json:"prep_time"`
	Servings    string   `json:"servings"`
}

// NewClipper creates a new Clipper instance.
func NewClipper(textGen llm.TextGenerator) *Clipper {
	return &Clipper{
		textGen:    textGen,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// ClipURL fetches the URL and extracts the recipe.
func (c *Clipper) ClipURL(ctx context.Context, url string) (*ExtractedRecipe, llm.TokenUsage, error) {
	content, err := c.fetchAndCleanHTML(url)
	if err != nil {
		return nil, llm.TokenUsage{}, fmt.Errorf("failed to fetch content: %w", err)
	}

	prompt := fmt.Sprintf(`
You are a recipe extraction expert. Extract the recipe details from the following page content.
Return the result strictly as a JSON object with this structure:
{
  "title": "Recipe Title",
  "ingredients": ["item 1", "item 2", ...],
  "steps": ["Step 1 description", "Step 2 description", ...],
  "prep_time": "e.g. 30 mins",
  "servings": "e.g. 4 people"
}

Page content:
%s
`, content)

	resp, err := c.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, llm.TokenUsage{}, fmt.Errorf("recipe extraction failed: %w", err)
	}

	obj, err := normalize.ExtractObject(resp.Content)
	if err != nil {
		return nil, resp.Usage, err
	}

	// Round-trip through JSON to map the loose object onto the struct.
	blob, err := json.Marshal(obj)
	if err != nil {
		return nil, resp.Usage, fmt.Errorf("failed to re-encode recipe: %w", err)
	}
	extracted := &ExtractedRecipe{}
	if err := json.Unmarshal(blob, extracted); err != nil {
		return nil, resp.Usage, fmt.Errorf("failed to parse recipe: %w", err)
	}
	if extracted.Title == "" || len(extracted.Ingredients) == 0 {
		return nil, resp.Usage, fmt.Errorf("extracted recipe is missing a title or ingredients")
	}

	return extracted, resp.Usage, nil
}

// PantryItems converts the recipe's ingredient lines into pantry
// items. Lines of the form "name (qty unit)" are split; anything else
// becomes an item with an empty quantity.
func (r *ExtractedRecipe) PantryItems() []contract.PantryItem {
	items := make([]contract.PantryItem, 0, len(r.Ingredients))
	for _, line := range r.Ingredients {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, qty := line, ""
		if open := strings.LastIndex(line, "("); open > 0 && strings.HasSuffix(line, ")") {
			name = strings.TrimSpace(line[:open])
			qty = strings.TrimSpace(line[open+1 : len(line)-1])
		}
		items = append(items, contract.PantryItem{Name: name, QtyUnit: qty})
	}
	return items
}

func (c *Clipper) fetchAndCleanHTML(url string) (string, error) {
	resp, err := c.httpClient.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	// Remove noise to save model tokens
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	return doc.Find("body").Text(), nil
}
