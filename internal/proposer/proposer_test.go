package proposer

import (
	"context"
	"strings"
	"testing"

	"github.com/knvmhra/promptchess/internal/prompt"
)

func TestExtractMove(t *testing.T) {
	cases := []struct {
		name string
		in   string
		move string
	}{
		{"strict json", `{"chess_move_SAN": "Nf3"}`, "Nf3"},
		{"json with reasoning", `{"reasoning": "develop", "chess_move_SAN": "e4"}`, "e4"},
		{"fenced json", "Here you go:\n```json\n{\"chess_move_SAN\": \"O-O\"}\n```", "O-O"},
		{"prose fallback", "I think e4 is best", "I think e4 is best"},
		{"broken json fallback", `{"chess_move_SAN": `, `{"chess_move_SAN":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := extractMove(tc.in)
			if got.MoveText != tc.move {
				t.Fatalf("extractMove(%q).MoveText = %q, want %q", tc.in, got.MoveText, tc.move)
			}
		})
	}

	if got := extractMove(`{"reasoning": "castle early", "chess_move_SAN": "O-O"}`); got.Reasoning != "castle early" {
		t.Fatalf("reasoning not extracted: %+v", got)
	}
}

func TestBuildContextIncludesFeedback(t *testing.T) {
	cat, err := prompt.New("")
	if err != nil {
		t.Fatalf("prompt.New: %v", err)
	}
	req := Request{
		FEN:      "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		Turn:     "white",
		LegalSAN: []string{"e4", "d4"},
		Feedback: "Your previous reply Qq9 is not a legal move in this position.",
	}
	got, err := buildContext(cat, req)
	if err != nil {
		t.Fatalf("buildContext: %v", err)
	}
	if !strings.Contains(got, req.FEN) || !strings.HasSuffix(got, req.Feedback) {
		t.Fatalf("unexpected context: %q", got)
	}
}

func TestScripted(t *testing.T) {
	p := NewScripted("e4", "Nf3")
	for _, want := range []string{"e4", "Nf3"} {
		resp, err := p.ProposeMove(context.Background(), Request{})
		if err != nil {
			t.Fatalf("ProposeMove: %v", err)
		}
		if resp.MoveText != want {
			t.Fatalf("got %q, want %q", resp.MoveText, want)
		}
	}
	if _, err := p.ProposeMove(context.Background(), Request{}); err == nil {
		t.Fatalf("expected error after script exhaustion")
	}
}

func TestRandomPicksLegalMove(t *testing.T) {
	p := NewRandom(7)
	legal := []string{"e4", "d4", "Nf3"}
	for i := 0; i < 20; i++ {
		resp, err := p.ProposeMove(context.Background(), Request{LegalSAN: legal})
		if err != nil {
			t.Fatalf("ProposeMove: %v", err)
		}
		found := false
		for _, mv := range legal {
			if resp.MoveText == mv {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("random proposer returned non-legal move %q", resp.MoveText)
		}
	}
	if _, err := p.ProposeMove(context.Background(), Request{}); err == nil {
		t.Fatalf("expected error with empty legal move list")
	}
}

func TestFactory(t *testing.T) {
	cat, err := prompt.New("")
	if err != nil {
		t.Fatalf("prompt.New: %v", err)
	}
	for _, provider := range []string{"openai", "anthropic", "gemini", "random"} {
		if _, err := New(Config{Provider: provider, Model: "m"}, cat); err != nil {
			t.Fatalf("New(%s): %v", provider, err)
		}
	}
	if _, err := New(Config{Provider: "delphi"}, cat); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestEffortFromTokens(t *testing.T) {
	if got := effortFromTokens(1024); got != "low" {
		t.Fatalf("effortFromTokens(1024) = %q", got)
	}
	if got := effortFromTokens(2000); got != "medium" {
		t.Fatalf("effortFromTokens(2000) = %q", got)
	}
	if got := effortFromTokens(5000); got != "high" {
		t.Fatalf("effortFromTokens(5000) = %q", got)
	}
}
