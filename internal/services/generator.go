package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/arnold/lifesync-api/internal/models"
	"google.golang.org/genai"
)

var ErrMissingAPIKey = errors.New("gemini api key is not configured")

// ChatTurn is one prior message passed to the model as context.
type ChatTurn struct {
	Role models.MessageRole
	Text string
}

type GenerateRequest struct {
	Model          string
	System         string
	History        []ChatTurn
	Prompt         string
	Temperature    *float32
	JSON           bool
	Schema         *genai.Schema
	ThinkingBudget int32
}

// Generator produces model text for a prompt. apiKey overrides any key the
// implementation was configured with.
type Generator interface {
	Generate(ctx context.Context, apiKey string, req GenerateRequest) (string, error)
}

// Gemini calls the Gemini API. A client is built per call because the key
// can change at runtime through settings.
type Gemini struct {
	defaultKey string
}

func NewGemini(defaultKey string) *Gemini {
	return &Gemini{defaultKey: defaultKey}
}

func (g *Gemini) Generate(ctx context.Context, apiKey string, req GenerateRequest) (string, error) {
	key := apiKey
	if key == "" {
		key = g.defaultKey
	}
	if key == "" {
		return "", ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create gemini client: %w", err)
	}

	cfg := &genai.GenerateContentConfig{Temperature: req.Temperature}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = req.Schema
	}
	if req.ThinkingBudget > 0 {
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(req.ThinkingBudget)}
	}

	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		var role genai.Role = genai.RoleUser
		if turn.Role == models.RoleBot {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(req.Prompt, genai.RoleUser))

	resp, err := client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}
