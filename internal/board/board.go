package board

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// ErrIllegalMove reports a move that parsed but is not a member of the legal
// move set, or text that is not a move at all.
var ErrIllegalMove = errors.New("illegal chess move")

// Color identifies a chess side.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Other() Color {
	if c == White {
		return Black
	}
	return White
}

// Result is a game result token in PGN form.
type Result string

const (
	NoResult  Result = "*"
	WhiteWins Result = "1-0"
	BlackWins Result = "0-1"
	DrawGame  Result = "1/2-1/2"
)

// Reason describes how a terminal result came about.
type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonCheckmate            Reason = "checkmate"
	ReasonStalemate            Reason = "stalemate"
	ReasonRepetition           Reason = "threefold_repetition"
	ReasonFiftyMove            Reason = "fifty_move_rule"
	ReasonInsufficientMaterial Reason = "insufficient_material"
)

// Termination is the terminal status of a position: NoResult while the game is
// ongoing, otherwise a result plus the rule that produced it.
type Termination struct {
	Result Result
	Reason Reason
}

func (t Termination) Ongoing() bool { return t.Result == NoResult }

// Winner returns the winning color for decisive results.
func (t Termination) Winner() (Color, bool) {
	switch t.Result {
	case WhiteWins:
		return White, true
	case BlackWins:
		return Black, true
	default:
		return "", false
	}
}

// Game wraps the rules library with the move-text protocol the league speaks:
// SAN in, canonical SAN+UCI out, automatic draw claims, full repetition and
// clock tracking. A Game is owned by exactly one running league game.
type Game struct {
	g    *nchess.Game
	sans []string
	ucis []string
}

// NewGame starts from the standard starting position.
func NewGame() *Game {
	return &Game{g: nchess.NewGame()}
}

// NewGameFromFEN starts from an arbitrary position. Moves applied before the
// FEN position are not known, so MovesSAN/MovesUCI cover only what this Game
// applies itself.
func NewGameFromFEN(fen string) (*Game, error) {
	opt, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen: %w", err)
	}
	return &Game{g: nchess.NewGame(opt)}, nil
}

// Replay reconstructs a game by applying stored UCI moves from the starting
// position. Output is deterministic for a given move list.
func Replay(movesUCI []string) (*Game, error) {
	b := NewGame()
	for i, mv := range movesUCI {
		if _, _, err := b.Apply(mv); err != nil {
			return nil, fmt.Errorf("replay move %d (%s): %w", i+1, mv, err)
		}
	}
	return b, nil
}

// Turn returns the side to move.
func (b *Game) Turn() Color {
	if b.g.Position().Turn() == nchess.White {
		return White
	}
	return Black
}

// FEN returns the current position in FEN.
func (b *Game) FEN() string { return b.g.FEN() }

// MovesSAN returns the applied moves in canonical SAN, in order.
func (b *Game) MovesSAN() []string { return append([]string(nil), b.sans...) }

// MovesUCI returns the applied moves in UCI, in order.
func (b *Game) MovesUCI() []string { return append([]string(nil), b.ucis...) }

// LegalMovesSAN returns every legal move in the current position in canonical
// SAN. Empty only when the side to move is checkmated or stalemated.
func (b *Game) LegalMovesSAN() []string {
	pos := b.g.Position()
	notation := nchess.AlgebraicNotation{}
	valid := b.g.ValidMoves()
	out := make([]string, 0, len(valid))
	for i := range valid {
		out = append(out, notation.Encode(pos, &valid[i]))
	}
	return out
}

// uciShaped matches coordinate notation: from-square, to-square, optional
// promotion piece.
var uciShaped = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][nbrq]?$`)

// Apply decodes moveText as SAN or UCI, validates it against the legal move
// set and applies it. It returns the canonical SAN and UCI spelling of the
// applied move. UCI-shaped text is decoded as UCI only: the SAN parser is
// lenient enough to read coordinate text like "g1f3" as the pawn move "f3",
// which would apply a move the caller never asked for. Any decode or
// validation failure maps to ErrIllegalMove; the position is left untouched
// in that case.
func (b *Game) Apply(moveText string) (san, uci string, err error) {
	text := strings.TrimSpace(moveText)
	if text == "" {
		return "", "", ErrIllegalMove
	}

	notationSAN := nchess.AlgebraicNotation{}
	notationUCI := nchess.UCINotation{}
	pos := b.g.Position()

	var move *nchess.Move
	var derr error
	if lower := strings.ToLower(text); uciShaped.MatchString(lower) {
		move, derr = notationUCI.Decode(pos, lower)
	} else {
		move, derr = notationSAN.Decode(pos, text)
	}
	if derr != nil {
		return "", "", fmt.Errorf("%w: %q", ErrIllegalMove, text)
	}

	san = notationSAN.Encode(pos, move)
	uci = strings.ToLower(notationUCI.Encode(pos, move))
	if err := b.g.Move(move, nil); err != nil {
		return "", "", fmt.Errorf("%w: %q", ErrIllegalMove, text)
	}
	b.sans = append(b.sans, san)
	b.ucis = append(b.ucis, uci)

	b.claimEligibleDraws()
	return san, uci, nil
}

// claimEligibleDraws converts claimable draws into immediate ones. The library
// treats threefold repetition and the fifty-move rule as claims; league games
// have no one to claim, so both end the game as soon as they are available.
func (b *Game) claimEligibleDraws() {
	if b.g.Outcome() != nchess.NoOutcome {
		return
	}
	for _, method := range b.g.EligibleDraws() {
		if method == nchess.ThreefoldRepetition || method == nchess.FiftyMoveRule {
			_ = b.g.Draw(method)
			return
		}
	}
}

// Terminal reports the terminal status of the current position.
func (b *Game) Terminal() Termination {
	outcome := b.g.Outcome()
	if outcome == nchess.NoOutcome {
		return Termination{Result: NoResult}
	}

	t := Termination{Result: NoResult}
	switch outcome {
	case nchess.WhiteWon:
		t.Result = WhiteWins
	case nchess.BlackWon:
		t.Result = BlackWins
	case nchess.Draw:
		t.Result = DrawGame
	}

	switch b.g.Method() {
	case nchess.Checkmate:
		t.Reason = ReasonCheckmate
	case nchess.Stalemate:
		t.Reason = ReasonStalemate
	case nchess.ThreefoldRepetition, nchess.FivefoldRepetition:
		t.Reason = ReasonRepetition
	case nchess.FiftyMoveRule, nchess.SeventyFiveMoveRule:
		t.Reason = ReasonFiftyMove
	case nchess.InsufficientMaterial:
		t.Reason = ReasonInsufficientMaterial
	}
	return t
}

// NumberedHistory renders the applied SAN moves as a numbered movetext line,
// e.g. "1. e4 e5 2. Nf3". Used for proposer context.
func (b *Game) NumberedHistory() string {
	return NumberedSAN(b.sans)
}

// NumberedSAN renders a SAN move list with move numbering.
func NumberedSAN(sans []string) string {
	var sb strings.Builder
	for i, san := range sans {
		if i%2 == 0 {
			if i > 0 {
				sb.WriteString(" ")
			}
			fmt.Fprintf(&sb, "%d. %s", i/2+1, san)
		} else {
			sb.WriteString(" ")
			sb.WriteString(san)
		}
	}
	return sb.String()
}
