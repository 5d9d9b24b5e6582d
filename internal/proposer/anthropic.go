package proposer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/knvmhra/promptchess/internal/prompt"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
)

// Anthropic proposes moves through the messages API. The JSON schema travels
// in the user message since the API has no native schema constraint.
type Anthropic struct {
	cfg  Config
	cat  *prompt.Catalog
	http *httpJSON
}

func NewAnthropic(cfg Config, cat *prompt.Catalog) *Anthropic {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultAnthropicBaseURL
	}
	return &Anthropic{cfg: cfg, cat: cat, http: newHTTPJSON(cfg.Timeout)}
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	System    string             `json:"system,omitempty"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
	Thinking  map[string]any     `json:"thinking,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type     string `json:"type"`
		Text     string `json:"text"`
		Thinking string `json:"thinking"`
	} `json:"content"`
}

func (p *Anthropic) ProposeMove(ctx context.Context, req Request) (Response, error) {
	userText, err := buildContext(p.cat, req)
	if err != nil {
		return Response{}, err
	}
	schemaRaw, err := json.Marshal(chessSchema(p.cfg.CoT))
	if err != nil {
		return Response{}, fmt.Errorf("marshal schema: %w", err)
	}
	userText += "\n\nFormat your response as valid JSON matching this schema. Respond only with JSON: " + string(schemaRaw)

	maxTokens := p.cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	body := anthropicRequest{
		Model:     p.cfg.Model,
		System:    p.cfg.instructionsOr(req.Instructions),
		MaxTokens: maxTokens + 256,
		Messages:  []anthropicMessage{{Role: "user", Content: userText}},
	}
	if p.cfg.Reasoning {
		body.Thinking = map[string]any{"type": "enabled", "budget_tokens": maxTokens}
		body.MaxTokens = maxTokens + 1024
	}

	headers := map[string]string{
		"x-api-key":         p.cfg.APIKey,
		"anthropic-version": anthropicVersion,
	}
	var out anthropicResponse
	if err := p.http.post(ctx, p.cfg.BaseURL+"/v1/messages", headers, body, &out); err != nil {
		return Response{}, err
	}

	var text, thinking strings.Builder
	for _, block := range out.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "thinking":
			thinking.WriteString(block.Thinking)
		}
	}
	if text.Len() == 0 {
		return Response{}, fmt.Errorf("anthropic: no text content")
	}

	resp := extractMove(text.String())
	if resp.Reasoning == "" && p.cfg.Reasoning {
		resp.Reasoning = strings.TrimSpace(thinking.String())
	}
	return resp, nil
}
