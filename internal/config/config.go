package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/knvmhra/promptchess/internal/domain"
	"github.com/knvmhra/promptchess/internal/league"
)

type AppConfig struct {
	// StateLocation is a filesystem path or a redis:// URL.
	StateLocation    string
	PlayersFile      string
	PGNDir           string
	ConfigBackupPath string
	PromptDir        string

	DatabaseURL string

	RetryLimit  int
	MoveTimeout time.Duration
	KFactor     float64

	OpenAIAPIKey    string
	AnthropicAPIKey string
	GeminiAPIKey    string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		StateLocation:    "league_state.json",
		PlayersFile:      "players.yaml",
		PGNDir:           "pgn",
		ConfigBackupPath: "player_configs_backup.json",
		RetryLimit:       3,
		MoveTimeout:      120 * time.Second,
		KFactor:          league.DefaultKFactor,
	}

	if v := strings.TrimSpace(os.Getenv("ARENA_STATE")); v != "" {
		cfg.StateLocation = v
	}
	if v := strings.TrimSpace(os.Getenv("ARENA_PLAYERS")); v != "" {
		cfg.PlayersFile = v
	}
	if v := strings.TrimSpace(os.Getenv("ARENA_PGN_DIR")); v != "" {
		cfg.PGNDir = v
	}
	if v := strings.TrimSpace(os.Getenv("ARENA_CONFIG_BACKUP")); v != "" {
		cfg.ConfigBackupPath = v
	}
	cfg.PromptDir = strings.TrimSpace(os.Getenv("ARENA_PROMPT_DIR"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if v := strings.TrimSpace(os.Getenv("ARENA_RETRY_LIMIT")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("ARENA_RETRY_LIMIT: invalid value %q", v)
		}
		cfg.RetryLimit = n
	}
	if v := strings.TrimSpace(os.Getenv("ARENA_MOVE_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("ARENA_MOVE_TIMEOUT: invalid duration %q", v)
		}
		cfg.MoveTimeout = d
	}
	if v := strings.TrimSpace(os.Getenv("ARENA_K_FACTOR")); v != "" {
		k, err := strconv.ParseFloat(v, 64)
		if err != nil || k <= 0 {
			return nil, fmt.Errorf("ARENA_K_FACTOR: invalid value %q", v)
		}
		cfg.KFactor = k
	}

	cfg.OpenAIAPIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	cfg.AnthropicAPIKey = strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	cfg.GeminiAPIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))

	if strings.TrimSpace(cfg.PlayersFile) == "" {
		return nil, errors.New("ARENA_PLAYERS is required")
	}
	return cfg, nil
}

// APIKeyFor returns the configured key for a provider, empty when unset.
func (c *AppConfig) APIKeyFor(provider string) string {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "openai":
		return c.OpenAIAPIKey
	case "anthropic":
		return c.AnthropicAPIKey
	case "gemini":
		return c.GeminiAPIKey
	}
	return ""
}

type playersFile struct {
	Players []playerEntry `yaml:"players"`
}

type playerEntry struct {
	ID           string   `yaml:"id"`
	Provider     string   `yaml:"provider"`
	Model        string   `yaml:"model"`
	Instructions string   `yaml:"instructions"`
	Reasoning    bool     `yaml:"reasoning"`
	CoT          bool     `yaml:"cot"`
	MaxTokens    int      `yaml:"max_tokens"`
	Rating       *float64 `yaml:"rating"`
}

// LoadPlayers reads the player roster from YAML. Players configured without a
// rating start at the default.
func LoadPlayers(path string) ([]domain.Player, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read players file %s: %w", path, err)
	}
	var f playersFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse players file %s: %w", path, err)
	}
	if len(f.Players) < 2 {
		return nil, fmt.Errorf("players file %s: need at least 2 players, have %d", path, len(f.Players))
	}
	players := make([]domain.Player, 0, len(f.Players))
	for i, e := range f.Players {
		if strings.TrimSpace(e.ID) == "" {
			return nil, fmt.Errorf("players file %s: player %d has no id", path, i)
		}
		if strings.TrimSpace(e.Provider) == "" {
			return nil, fmt.Errorf("players file %s: player %q has no provider", path, e.ID)
		}
		rating := float64(league.DefaultRating)
		if e.Rating != nil {
			rating = *e.Rating
		}
		players = append(players, domain.Player{
			ID:           strings.TrimSpace(e.ID),
			Provider:     strings.ToLower(strings.TrimSpace(e.Provider)),
			Model:        strings.TrimSpace(e.Model),
			Instructions: strings.TrimSpace(e.Instructions),
			Reasoning:    e.Reasoning,
			CoT:          e.CoT,
			MaxTokens:    e.MaxTokens,
			Rating:       rating,
		})
	}
	return players, nil
}
