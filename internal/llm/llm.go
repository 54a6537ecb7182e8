// Package llm talks to a chat-completion API to generate ingredient
// lists and shopping categories for plan items.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/yogz/colist/internal/models"
)

const (
	defaultBaseURL     = "https://api.mistral.ai"
	defaultModel       = "mistral-small-latest"
	completionPath     = "/v1/chat/completions"
	defaultHTTPTimeout = 45 * time.Second
)

// ErrNoContent is returned when the model replies with an empty body.
var ErrNoContent = errors.New("empty completion")

// GeneratedIngredient is one line of a generated shopping list.
type GeneratedIngredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity,omitempty"`
}

// Generator produces ingredient lists and item categories. Implemented
// by Client; tests substitute a stub.
type Generator interface {
	GenerateIngredients(ctx context.Context, dishName, note string, peopleCount int) ([]GeneratedIngredient, error)
	Categorize(ctx context.Context, itemNames []string) (map[string]string, error)
}

type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

func NewClient(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: cfg.BaseURL,
		http: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *chatFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    0.2,
		ResponseFormat: &chatFormat{Type: "json_object"},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionPath, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("completion status %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", ErrNoContent
	}
	return out.Choices[0].Message.Content, nil
}

const ingredientSystemPrompt = `Tu es un assistant de cuisine. Pour un plat et un nombre de convives,
réponds uniquement en JSON: {"ingredients":[{"name":"...","quantity":"..."}]}.
Quantités adaptées au nombre de personnes, noms en français, sans commentaire.`

func (c *Client) GenerateIngredients(ctx context.Context, dishName, note string, peopleCount int) ([]GeneratedIngredient, error) {
	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Plat: %s\nNombre de personnes: %d\n", dishName, peopleCount)
	if note != "" {
		fmt.Fprintf(&prompt, "Note: %s\n", note)
	}

	content, err := c.complete(ctx, ingredientSystemPrompt, prompt.String())
	if err != nil {
		return nil, fmt.Errorf("generate ingredients for %q: %w", dishName, err)
	}

	var parsed struct {
		Ingredients []GeneratedIngredient `json:"ingredients"`
	}
	if err := json.Unmarshal([]byte(stripFences(content)), &parsed); err != nil {
		return nil, fmt.Errorf("parse ingredients for %q: %w", dishName, err)
	}
	return parsed.Ingredients, nil
}

const categorySystemPrompt = `Tu classes des articles de courses par rayon de supermarché.
Rayons possibles: ` + models.CategoryList + `.
Réponds uniquement en JSON: {"categories":{"nom article":"rayon"}}.`

// Categorize maps each item name to a store aisle. Names the model
// skips are absent from the result.
func (c *Client) Categorize(ctx context.Context, itemNames []string) (map[string]string, error) {
	if len(itemNames) == 0 {
		return map[string]string{}, nil
	}

	content, err := c.complete(ctx, categorySystemPrompt, "Articles:\n- "+strings.Join(itemNames, "\n- "))
	if err != nil {
		return nil, fmt.Errorf("categorize items: %w", err)
	}

	var parsed struct {
		Categories map[string]string `json:"categories"`
	}
	if err := json.Unmarshal([]byte(stripFences(content)), &parsed); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}
	return parsed.Categories, nil
}

// stripFences removes markdown code fences some models wrap JSON in.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}
