package proposer

import (
	"context"
	"fmt"
	"strings"

	"github.com/knvmhra/promptchess/internal/prompt"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// Gemini proposes moves through the generateContent API with a JSON response
// schema.
type Gemini struct {
	cfg  Config
	cat  *prompt.Catalog
	http *httpJSON
}

func NewGemini(cfg Config, cat *prompt.Catalog) *Gemini {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultGeminiBaseURL
	}
	return &Gemini{cfg: cfg, cat: cat, http: newHTTPJSON(cfg.Timeout)}
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  map[string]any  `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text    string `json:"text"`
	Thought bool   `json:"thought,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		FinishReason string        `json:"finishReason"`
		Content      geminiContent `json:"content"`
	} `json:"candidates"`
}

func (p *Gemini) ProposeMove(ctx context.Context, req Request) (Response, error) {
	userText, err := buildContext(p.cat, req)
	if err != nil {
		return Response{}, err
	}

	// Gemini rejects additionalProperties in response schemas.
	schema := chessSchema(p.cfg.CoT)
	delete(schema, "additionalProperties")

	genCfg := map[string]any{
		"responseMimeType": "application/json",
		"responseSchema":   schema,
	}
	if p.cfg.MaxTokens > 0 {
		genCfg["maxOutputTokens"] = p.cfg.MaxTokens
	}
	if p.cfg.Reasoning {
		genCfg["thinkingConfig"] = map[string]any{
			"thinkingBudget":  p.cfg.MaxTokens,
			"includeThoughts": true,
		}
	}

	body := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: p.cfg.instructionsOr(req.Instructions)}}},
		Contents:          []geminiContent{{Role: "user", Parts: []geminiPart{{Text: userText}}}},
		GenerationConfig:  genCfg,
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", p.cfg.BaseURL, p.cfg.Model)
	headers := map[string]string{"x-goog-api-key": p.cfg.APIKey}
	var out geminiResponse
	if err := p.http.post(ctx, url, headers, body, &out); err != nil {
		return Response{}, err
	}
	if len(out.Candidates) == 0 {
		return Response{}, fmt.Errorf("gemini: no candidates")
	}
	cand := out.Candidates[0]
	if cand.FinishReason != "" && cand.FinishReason != "STOP" {
		return Response{}, fmt.Errorf("gemini: finish reason %s", cand.FinishReason)
	}

	var text, thought strings.Builder
	for _, part := range cand.Content.Parts {
		if part.Text == "" {
			continue
		}
		if part.Thought {
			thought.WriteString(part.Text)
		} else {
			text.WriteString(part.Text)
		}
	}
	if text.Len() == 0 {
		return Response{}, fmt.Errorf("gemini: no text content")
	}

	resp := extractMove(text.String())
	if resp.Reasoning == "" && p.cfg.Reasoning {
		resp.Reasoning = strings.TrimSpace(thought.String())
	}
	return resp, nil
}
