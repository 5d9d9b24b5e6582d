package proposer

import (
	"context"
	"fmt"
	"strings"

	"github.com/knvmhra/promptchess/internal/prompt"
)

const defaultOpenAIBaseURL = "https://api.openai.com"

// OpenAI proposes moves through the chat completions API with a strict JSON
// schema response format.
type OpenAI struct {
	cfg  Config
	cat  *prompt.Catalog
	http *httpJSON
}

func NewOpenAI(cfg Config, cat *prompt.Catalog) *OpenAI {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultOpenAIBaseURL
	}
	return &OpenAI{cfg: cfg, cat: cat, http: newHTTPJSON(cfg.Timeout)}
}

type openAIRequest struct {
	Model               string          `json:"model"`
	Messages            []openAIMessage `json:"messages"`
	ResponseFormat      map[string]any  `json:"response_format"`
	MaxCompletionTokens int             `json:"max_completion_tokens,omitempty"`
	ReasoningEffort     string          `json:"reasoning_effort,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *OpenAI) ProposeMove(ctx context.Context, req Request) (Response, error) {
	userText, err := buildContext(p.cat, req)
	if err != nil {
		return Response{}, err
	}

	body := openAIRequest{
		Model: p.cfg.Model,
		Messages: []openAIMessage{
			{Role: "system", Content: p.cfg.instructionsOr(req.Instructions)},
			{Role: "user", Content: userText},
		},
		ResponseFormat: map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   "chess_schema",
				"strict": true,
				"schema": chessSchema(p.cfg.CoT),
			},
		},
		MaxCompletionTokens: p.cfg.MaxTokens,
	}
	if p.cfg.Reasoning {
		body.ReasoningEffort = effortFromTokens(p.cfg.MaxTokens)
	}

	var out openAIResponse
	headers := map[string]string{"Authorization": "Bearer " + p.cfg.APIKey}
	if err := p.http.post(ctx, p.cfg.BaseURL+"/v1/chat/completions", headers, body, &out); err != nil {
		return Response{}, err
	}
	if len(out.Choices) == 0 {
		return Response{}, fmt.Errorf("openai: empty choices")
	}
	return extractMove(out.Choices[0].Message.Content), nil
}

// effortFromTokens maps the token budget onto a reasoning effort tier.
func effortFromTokens(maxTokens int) string {
	switch {
	case maxTokens > 0 && maxTokens < 2000:
		return "low"
	case maxTokens >= 5000:
		return "high"
	default:
		return "medium"
	}
}
