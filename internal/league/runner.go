package league

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/knvmhra/promptchess/internal/archive"
	"github.com/knvmhra/promptchess/internal/board"
	"github.com/knvmhra/promptchess/internal/domain"
	"github.com/knvmhra/promptchess/internal/obslog"
	"github.com/knvmhra/promptchess/internal/pgnexport"
	"github.com/knvmhra/promptchess/internal/prompt"
	"github.com/knvmhra/promptchess/internal/proposer"
	"github.com/knvmhra/promptchess/internal/store"
)

// Runner drives a tournament sequentially: one game in progress at any time,
// state persisted before and after every game so a crash or interrupt loses at
// most the game being played. PGN and the database archive are side channels;
// their failures are logged but never stop the run.
type Runner struct {
	Store       store.Store
	State       *store.State
	Proposers   map[string]proposer.Proposer
	Cat         *prompt.Catalog
	PGN         *pgnexport.Writer  // optional
	Archive     archive.Repository // optional
	KFactor     float64            // <=0 means default
	RetryLimit  int
	MoveTimeout time.Duration
}

func (r *Runner) kFactor() float64 {
	if r.KFactor > 0 {
		return r.KFactor
	}
	return DefaultKFactor
}

// Run plays pairings until none remain or ctx is cancelled. A cancellation
// snapshots the interrupted game's moves into the state and returns ctx.Err();
// the next run restarts that pairing from move zero.
func (r *Runner) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		idx, ok := NextPending(r.State.Pairings)
		if !ok {
			obslog.L().Info("tournament_complete",
				zap.Int("pairings", len(r.State.Pairings)),
				zap.Int("games", len(r.State.Games)))
			return nil
		}
		if err := r.playPairing(ctx, idx); err != nil {
			return err
		}
	}
}

func (r *Runner) playPairing(ctx context.Context, idx int) error {
	pairing := &r.State.Pairings[idx]
	white, ok := r.State.Player(pairing.WhiteID)
	if !ok {
		return fmt.Errorf("pairing %d: unknown player %q", idx, pairing.WhiteID)
	}
	black, ok := r.State.Player(pairing.BlackID)
	if !ok {
		return fmt.Errorf("pairing %d: unknown player %q", idx, pairing.BlackID)
	}
	whiteProposer, ok := r.Proposers[white.ID]
	if !ok {
		return fmt.Errorf("no proposer for player %q", white.ID)
	}
	blackProposer, ok := r.Proposers[black.ID]
	if !ok {
		return fmt.Errorf("no proposer for player %q", black.ID)
	}

	pairing.Status = domain.PairingInProgress
	if err := r.Store.Save(ctx, r.State); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	obslog.L().Info("game_started",
		zap.Int("pairing", idx),
		zap.String("white", white.ID),
		zap.String("black", black.ID),
		zap.Float64("white_rating", white.Rating),
		zap.Float64("black_rating", black.Rating))

	eng := &Engine{
		White:       Side{Player: *white, Propose: whiteProposer},
		Black:       Side{Player: *black, Propose: blackProposer},
		Cat:         r.Cat,
		RetryLimit:  r.RetryLimit,
		MoveTimeout: r.MoveTimeout,
	}
	outcome, err := eng.Play(ctx)
	if err != nil {
		r.abandon(idx, *pairing, outcome)
		return err
	}

	preWhite, preBlack := white.Rating, black.Rating
	score := whiteScore(outcome.Result)
	delta := UpdateRatings(&white.Rating, &black.Rating, score, r.kFactor())

	rec := domain.GameRecord{
		ID:           uuid.NewString(),
		PairingIndex: idx,
		WhiteID:      white.ID,
		BlackID:      black.ID,
		WhiteRating:  preWhite,
		BlackRating:  preBlack,
		MovesSAN:     outcome.MovesSAN,
		MovesUCI:     outcome.MovesUCI,
		Reasonings:   outcome.Reasonings,
		Result:       outcome.Result,
		Reason:       outcome.Reason,
		ForfeitBy:    outcome.ForfeitBy,
		ForfeitCause: outcome.ForfeitCause,
		WhiteDelta:   delta,
		BlackDelta:   -delta,
		StartedAt:    outcome.StartedAt,
		EndedAt:      outcome.EndedAt,
	}
	pairing.Status = domain.PairingCompleted
	pairing.GameID = rec.ID
	r.State.Games = append(r.State.Games, rec)

	if err := r.Store.Save(ctx, r.State); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}

	seq := len(r.State.Games)
	if r.PGN != nil {
		if path, err := r.PGN.Write(seq, rec); err != nil {
			obslog.L().Warn("pgn_export_failed", zap.String("game_id", rec.ID), zap.Error(err))
		} else {
			obslog.L().Debug("pgn_exported", zap.String("path", path))
		}
	}
	if r.Archive != nil {
		if err := r.Archive.SaveGame(ctx, seq, rec); err != nil {
			obslog.L().Warn("archive_insert_failed", zap.String("game_id", rec.ID), zap.Error(err))
		}
	}

	obslog.L().Info("ratings_updated",
		zap.String("white", white.ID),
		zap.Float64("white_rating", white.Rating),
		zap.String("black", black.ID),
		zap.Float64("black_rating", black.Rating),
		zap.Float64("delta", delta))
	return nil
}

// abandon snapshots an interrupted game and persists with a fresh context,
// since the run context is already cancelled. The pairing stays in_progress
// and restarts from move zero on resume.
func (r *Runner) abandon(idx int, pairing domain.Pairing, outcome Outcome) {
	r.State.Abandoned = append(r.State.Abandoned, domain.PartialGame{
		PairingIndex: idx,
		WhiteID:      pairing.WhiteID,
		BlackID:      pairing.BlackID,
		MovesSAN:     outcome.MovesSAN,
		MovesUCI:     outcome.MovesUCI,
		AbandonedAt:  time.Now().UTC(),
	})
	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := r.Store.Save(saveCtx, r.State); err != nil {
		obslog.L().Error("abandon_persist_failed", zap.Int("pairing", idx), zap.Error(err))
		return
	}
	obslog.L().Info("game_abandoned",
		zap.Int("pairing", idx),
		zap.Int("plies", len(outcome.MovesSAN)))
}

func whiteScore(result board.Result) float64 {
	switch result {
	case board.WhiteWins:
		return 1
	case board.BlackWins:
		return 0
	default:
		return 0.5
	}
}
