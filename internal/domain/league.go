package domain

import (
	"time"

	"github.com/knvmhra/promptchess/internal/board"
)

// Player is one configured model participant. The static fields come from the
// players file and never change during a run; Rating is owned by the rating
// update and mutated exactly once per finished game the player took part in.
type Player struct {
	ID           string  `json:"id"`
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	Instructions string  `json:"instructions,omitempty"`
	Reasoning    bool    `json:"reasoning,omitempty"`
	CoT          bool    `json:"cot,omitempty"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
	Rating       float64 `json:"rating"`
}

// Static returns the player without its mutable rating, for configuration
// backup comparison.
func (p Player) Static() Player {
	p.Rating = 0
	return p
}

// PairingStatus is the scheduler-visible lifecycle of one pairing.
type PairingStatus string

const (
	PairingPending    PairingStatus = "pending"
	PairingInProgress PairingStatus = "in_progress"
	PairingCompleted  PairingStatus = "completed"
)

// Pairing is one scheduled game: two players with a fixed color order. The
// full tournament holds every ordered pair exactly once, so each unordered
// pair meets twice with colors swapped. Immutable once generated except for
// Status and the completed-game reference.
type Pairing struct {
	WhiteID string        `json:"white_id"`
	BlackID string        `json:"black_id"`
	Status  PairingStatus `json:"status"`
	GameID  string        `json:"game_id,omitempty"`
}

// ForfeitCause says why a side forfeited.
type ForfeitCause string

const (
	CauseInvalidMove     ForfeitCause = "invalid_move"
	CauseProposerFailure ForfeitCause = "proposer_failure"
)

// ReasonForfeit supplements the board-level termination reasons for games that
// ended by retry exhaustion rather than on the board.
const ReasonForfeit board.Reason = "forfeit"

// GameRecord is the immutable archive entry for one finished game.
type GameRecord struct {
	ID           string       `json:"id"`
	PairingIndex int          `json:"pairing_index"`
	WhiteID      string       `json:"white_id"`
	BlackID      string       `json:"black_id"`
	WhiteRating  float64      `json:"white_rating"` // pre-game snapshot
	BlackRating  float64      `json:"black_rating"` // pre-game snapshot
	MovesSAN     []string     `json:"moves_san"`
	MovesUCI     []string     `json:"moves_uci"`
	Reasonings   []string     `json:"reasonings,omitempty"`
	Result       board.Result `json:"result"`
	Reason       board.Reason `json:"reason"`
	ForfeitBy    board.Color  `json:"forfeit_by,omitempty"`
	ForfeitCause ForfeitCause `json:"forfeit_cause,omitempty"`
	WhiteDelta   float64      `json:"white_delta"`
	BlackDelta   float64      `json:"black_delta"`
	StartedAt    time.Time    `json:"started_at"`
	EndedAt      time.Time    `json:"ended_at"`
}

// WhiteScore maps the result onto the white player's game score.
func (r GameRecord) WhiteScore() float64 {
	switch r.Result {
	case board.WhiteWins:
		return 1
	case board.BlackWins:
		return 0
	default:
		return 0.5
	}
}

// PartialGame is the undiscarded move list of a game that was interrupted
// before reaching a terminal state. Kept for inspection only; the pairing
// restarts from move zero on resume.
type PartialGame struct {
	PairingIndex int       `json:"pairing_index"`
	WhiteID      string    `json:"white_id"`
	BlackID      string    `json:"black_id"`
	MovesSAN     []string  `json:"moves_san"`
	MovesUCI     []string  `json:"moves_uci"`
	AbandonedAt  time.Time `json:"abandoned_at"`
}
