package proposer

import (
	"fmt"
	"strings"
	"time"

	"github.com/knvmhra/promptchess/internal/prompt"
)

// Config is the static per-player proposer configuration, passed through from
// the players file. The core never branches on Provider outside New.
type Config struct {
	Provider     string
	Model        string
	Instructions string
	Reasoning    bool
	CoT          bool
	MaxTokens    int
	APIKey       string
	BaseURL      string
	Timeout      time.Duration
}

func (c Config) instructionsOr(fallback string) string {
	if s := strings.TrimSpace(c.Instructions); s != "" {
		return s
	}
	return strings.TrimSpace(fallback)
}

// New builds the provider adapter for a player configuration.
func New(cfg Config, cat *prompt.Catalog) (Proposer, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch provider {
	case "openai":
		return NewOpenAI(cfg, cat), nil
	case "anthropic":
		return NewAnthropic(cfg, cat), nil
	case "gemini":
		return NewGemini(cfg, cat), nil
	case "random":
		return NewRandom(0), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %q", cfg.Provider)
	}
}
