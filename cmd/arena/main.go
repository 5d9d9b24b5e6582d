package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/knvmhra/promptchess/internal/archive"
	appcfg "github.com/knvmhra/promptchess/internal/config"
	"github.com/knvmhra/promptchess/internal/domain"
	"github.com/knvmhra/promptchess/internal/league"
	"github.com/knvmhra/promptchess/internal/obslog"
	"github.com/knvmhra/promptchess/internal/pgnexport"
	"github.com/knvmhra/promptchess/internal/presenter"
	"github.com/knvmhra/promptchess/internal/prompt"
	"github.com/knvmhra/promptchess/internal/proposer"
	"github.com/knvmhra/promptchess/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer obslog.Sync()

	if err := run(cfg); err != nil {
		if errors.Is(err, context.Canceled) {
			obslog.L().Info("run_interrupted")
			os.Exit(130)
		}
		obslog.L().Error("run_failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *appcfg.AppConfig) error {
	cat, err := prompt.New(cfg.PromptDir)
	if err != nil {
		return fmt.Errorf("prompt catalog: %w", err)
	}

	st, err := store.Open(cfg.StateLocation)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	state, err := st.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if state == nil {
		players, err := appcfg.LoadPlayers(cfg.PlayersFile)
		if err != nil {
			return err
		}
		pairings, err := league.GeneratePairings(players)
		if err != nil {
			return err
		}
		state = store.NewState(players, pairings)
		if err := st.Save(ctx, state); err != nil {
			return fmt.Errorf("persist initial state: %w", err)
		}
		if err := store.WriteConfigBackup(cfg.ConfigBackupPath, players); err != nil {
			return err
		}
		obslog.L().Info("tournament_created",
			zap.Int("players", len(players)),
			zap.Int("pairings", len(pairings)))
	} else {
		if err := state.Validate(); err != nil {
			return fmt.Errorf("resumed state: %w", err)
		}
		store.CheckConfigBackup(cfg.ConfigBackupPath, state.Players)
		done := 0
		for _, p := range state.Pairings {
			if p.Status == domain.PairingCompleted {
				done++
			}
		}
		obslog.L().Info("tournament_resumed",
			zap.Int("players", len(state.Players)),
			zap.Int("completed", done),
			zap.Int("pairings", len(state.Pairings)))
	}

	proposers := make(map[string]proposer.Proposer, len(state.Players))
	for _, p := range state.Players {
		prop, err := proposer.New(proposer.Config{
			Provider:     p.Provider,
			Model:        p.Model,
			Instructions: p.Instructions,
			Reasoning:    p.Reasoning,
			CoT:          p.CoT,
			MaxTokens:    p.MaxTokens,
			APIKey:       cfg.APIKeyFor(p.Provider),
			Timeout:      cfg.MoveTimeout,
		}, cat)
		if err != nil {
			return fmt.Errorf("player %q: %w", p.ID, err)
		}
		proposers[p.ID] = prop
	}

	pgnWriter, err := pgnexport.NewWriter(cfg.PGNDir)
	if err != nil {
		return err
	}

	var repo archive.Repository
	if cfg.DatabaseURL != "" {
		repo, err = archive.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("archive database: %w", err)
		}
		defer repo.Close()
	}

	runner := &league.Runner{
		Store:       st,
		State:       state,
		Proposers:   proposers,
		Cat:         cat,
		PGN:         pgnWriter,
		Archive:     repo,
		KFactor:     cfg.KFactor,
		RetryLimit:  cfg.RetryLimit,
		MoveTimeout: cfg.MoveTimeout,
	}
	if err := runner.Run(ctx); err != nil {
		return err
	}

	for i, g := range state.Games {
		fmt.Println(presenter.GameLine(i+1, g))
	}
	fmt.Print(presenter.Standings(state.Players, state.Games))
	return nil
}
