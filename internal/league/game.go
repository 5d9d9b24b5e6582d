package league

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/knvmhra/promptchess/internal/board"
	"github.com/knvmhra/promptchess/internal/domain"
	"github.com/knvmhra/promptchess/internal/obslog"
	"github.com/knvmhra/promptchess/internal/prompt"
	"github.com/knvmhra/promptchess/internal/proposer"
)

// defaultRetryLimit is the number of proposal attempts a side gets per turn
// before forfeiting.
const defaultRetryLimit = 3

const defaultMoveTimeout = 120 * time.Second

// Side binds a configured player to its move proposer for one game.
type Side struct {
	Player  domain.Player
	Propose proposer.Proposer
}

// Engine plays a single game between two sides. It owns the per-turn retry
// policy: a proposal that fails (transport error, timeout, unparseable or
// illegal move) is retried with feedback up to RetryLimit attempts, the
// counter resetting on every new turn. Exhaustion forfeits the game to the
// opponent. No move reaches the board until it has been validated legal.
type Engine struct {
	White, Black Side
	Cat          *prompt.Catalog
	RetryLimit   int           // attempts per turn; <=0 means default
	MoveTimeout  time.Duration // per proposer call; <=0 means default
}

// Outcome is everything the engine knows about a finished or interrupted game.
// ForfeitBy/ForfeitCause are set only when Reason is forfeit. Reasonings is
// ply-aligned with MovesSAN; entries are empty for plies without one.
type Outcome struct {
	Result       board.Result
	Reason       board.Reason
	ForfeitBy    board.Color
	ForfeitCause domain.ForfeitCause
	MovesSAN     []string
	MovesUCI     []string
	Reasonings   []string
	StartedAt    time.Time
	EndedAt      time.Time
}

func (e *Engine) retryLimit() int {
	if e.RetryLimit > 0 {
		return e.RetryLimit
	}
	return defaultRetryLimit
}

func (e *Engine) moveTimeout() time.Duration {
	if e.MoveTimeout > 0 {
		return e.MoveTimeout
	}
	return defaultMoveTimeout
}

func (e *Engine) side(c board.Color) Side {
	if c == board.White {
		return e.White
	}
	return e.Black
}

// Play runs the game to a terminal state or a forfeit. A context cancellation
// aborts the in-flight proposer call and returns the partial outcome together
// with ctx.Err(); no rating change ever follows from an interrupted game.
func (e *Engine) Play(ctx context.Context) (Outcome, error) {
	instructions, err := e.Cat.Render("move.instructions", nil)
	if err != nil {
		return Outcome{}, err
	}

	g := board.NewGame()
	out := Outcome{StartedAt: time.Now().UTC()}
	log := obslog.L().With(
		zap.String("white", e.White.Player.ID),
		zap.String("black", e.Black.Player.ID),
	)

	for {
		if term := g.Terminal(); !term.Ongoing() {
			out.Result = term.Result
			out.Reason = term.Reason
			out.MovesSAN = g.MovesSAN()
			out.MovesUCI = g.MovesUCI()
			out.EndedAt = time.Now().UTC()
			log.Info("game_finished",
				zap.String("result", string(out.Result)),
				zap.String("reason", string(out.Reason)),
				zap.Int("plies", len(out.MovesSAN)))
			return out, nil
		}

		turn := g.Turn()
		side := e.side(turn)
		reasoning, cause, err := e.playTurn(ctx, g, side, instructions, log)
		if err != nil {
			if ctx.Err() != nil {
				out.MovesSAN = g.MovesSAN()
				out.MovesUCI = g.MovesUCI()
				out.EndedAt = time.Now().UTC()
				return out, ctx.Err()
			}
			// Retry budget exhausted: the side to move forfeits.
			out.Result = board.BlackWins
			if turn == board.Black {
				out.Result = board.WhiteWins
			}
			out.Reason = domain.ReasonForfeit
			out.ForfeitBy = turn
			out.ForfeitCause = cause
			out.MovesSAN = g.MovesSAN()
			out.MovesUCI = g.MovesUCI()
			out.EndedAt = time.Now().UTC()
			log.Warn("game_forfeited",
				zap.String("by", string(turn)),
				zap.String("cause", string(cause)),
				zap.Int("plies", len(out.MovesSAN)))
			return out, nil
		}
		out.Reasonings = append(out.Reasonings, reasoning)
	}
}

var errRetriesExhausted = errors.New("retry budget exhausted")

// playTurn obtains and applies one legal move for side. On failure it returns
// the cause of the final failed attempt.
func (e *Engine) playTurn(ctx context.Context, g *board.Game, side Side, instructions string, log *zap.Logger) (string, domain.ForfeitCause, error) {
	feedback := ""
	cause := domain.CauseProposerFailure

	for attempt := 1; attempt <= e.retryLimit(); attempt++ {
		if err := ctx.Err(); err != nil {
			return "", cause, err
		}

		req := proposer.Request{
			FEN:          g.FEN(),
			History:      g.NumberedHistory(),
			Turn:         string(g.Turn()),
			LegalSAN:     g.LegalMovesSAN(),
			Instructions: instructions,
			Feedback:     feedback,
		}

		callCtx, cancel := context.WithTimeout(ctx, e.moveTimeout())
		resp, err := side.Propose.ProposeMove(callCtx, req)
		cancel()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", cause, ctxErr
			}
			cause = domain.CauseProposerFailure
			feedback = ""
			log.Warn("propose_failed",
				zap.String("player", side.Player.ID),
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}

		san, uci, err := g.Apply(resp.MoveText)
		if err != nil {
			cause = domain.CauseInvalidMove
			feedback = e.feedbackFor(resp.MoveText)
			log.Warn("move_rejected",
				zap.String("player", side.Player.ID),
				zap.Int("attempt", attempt),
				zap.String("move_text", truncateText(resp.MoveText, 64)))
			continue
		}

		log.Debug("move_applied",
			zap.String("player", side.Player.ID),
			zap.String("san", san),
			zap.String("uci", uci),
			zap.Int("attempt", attempt))
		return resp.Reasoning, "", nil
	}
	return "", cause, errRetriesExhausted
}

// feedbackFor picks the retry feedback text. Short single-token replies get
// the illegal-move message quoting the reply; anything else is treated as
// unreadable output.
func (e *Engine) feedbackFor(moveText string) string {
	trimmed := strings.TrimSpace(moveText)
	key := "move.feedback.unparseable"
	data := map[string]any{}
	if trimmed != "" && len(trimmed) <= 10 && !strings.ContainsAny(trimmed, " \t\n") {
		key = "move.feedback.illegal"
		data["Move"] = trimmed
	}
	text, err := e.Cat.Render(key, data)
	if err != nil {
		obslog.L().Error("feedback_render_failed", zap.String("key", key), zap.Error(err))
		return ""
	}
	return text
}

func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
