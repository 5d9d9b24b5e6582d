package proposer

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/knvmhra/promptchess/internal/prompt"
)

// Request is the game context handed to a move proposer for one turn. The
// engine re-issues the same request with Feedback set when a previous attempt
// produced an unusable move.
type Request struct {
	FEN          string
	History      string // numbered SAN movetext, may be empty
	Turn         string // "white" or "black"
	LegalSAN     []string
	Instructions string
	Feedback     string
}

// Response is whatever a proposer produced for a turn. MoveText is raw
// candidate text; validation against the legal move set is the engine's job.
type Response struct {
	MoveText  string
	Reasoning string
}

// Proposer produces a candidate move for the side to move. Implementations
// must honor ctx cancellation and deadlines; transport failures are returned
// as errors, unusable text is returned as-is in Response.
type Proposer interface {
	ProposeMove(ctx context.Context, req Request) (Response, error)
}

// chessSchema constrains provider output to a single SAN move, optionally with
// a reasoning field for chain-of-thought players.
func chessSchema(withReasoning bool) map[string]any {
	props := map[string]any{
		"chess_move_SAN": map[string]any{"type": "string"},
	}
	required := []string{"chess_move_SAN"}
	if withReasoning {
		props["reasoning"] = map[string]any{"type": "string"}
		required = append(required, "reasoning")
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

// buildContext renders the per-turn prompt from the catalog, appending retry
// feedback when present.
func buildContext(cat *prompt.Catalog, req Request) (string, error) {
	body, err := cat.Render("move.request", map[string]any{
		"FEN":     req.FEN,
		"History": req.History,
		"Turn":    req.Turn,
		"Legal":   strings.Join(req.LegalSAN, ", "),
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(req.Feedback) != "" {
		body = body + "\n\n" + strings.TrimSpace(req.Feedback)
	}
	return body, nil
}

type moveEnvelope struct {
	Move      string `json:"chess_move_SAN"`
	Reasoning string `json:"reasoning"`
}

// extractMove pulls the SAN move (and optional reasoning) out of provider
// text. Providers are asked for strict JSON but routinely wrap it in prose or
// fences; when no usable JSON is found the raw text is returned so the
// engine's legality check rejects it and the retry policy takes over.
func extractMove(text string) Response {
	trimmed := strings.TrimSpace(text)
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			var env moveEnvelope
			if err := json.Unmarshal([]byte(trimmed[start:end+1]), &env); err == nil && strings.TrimSpace(env.Move) != "" {
				return Response{MoveText: strings.TrimSpace(env.Move), Reasoning: strings.TrimSpace(env.Reasoning)}
			}
		}
	}
	return Response{MoveText: trimmed}
}
