package presenter

import (
	"strings"
	"testing"

	"github.com/knvmhra/promptchess/internal/board"
	"github.com/knvmhra/promptchess/internal/domain"
)

func TestStandingsOrderAndTally(t *testing.T) {
	players := []domain.Player{
		{ID: "alpha", Rating: 1184},
		{ID: "beta", Rating: 1216},
	}
	games := []domain.GameRecord{
		{WhiteID: "beta", BlackID: "alpha", Result: board.WhiteWins},
		{WhiteID: "alpha", BlackID: "beta", Result: board.DrawGame},
	}

	out := Standings(players, games)
	betaAt := strings.Index(out, "beta")
	alphaAt := strings.Index(out, "alpha")
	if betaAt < 0 || alphaAt < 0 || betaAt > alphaAt {
		t.Fatalf("standings are not rating-ordered:\n%s", out)
	}
	if !strings.Contains(out, "(1W 1D 0L)") {
		t.Fatalf("beta tally wrong:\n%s", out)
	}
	if !strings.Contains(out, "(0W 1D 1L)") {
		t.Fatalf("alpha tally wrong:\n%s", out)
	}
}

func TestGameLine(t *testing.T) {
	line := GameLine(2, domain.GameRecord{
		WhiteID:  "alpha",
		BlackID:  "beta",
		MovesSAN: []string{"e4", "e5", "Qh5"},
		Result:   board.WhiteWins,
		Reason:   board.ReasonCheckmate,
	})
	if !strings.Contains(line, "alpha vs beta") || !strings.Contains(line, "1-0") || !strings.Contains(line, "2 moves") {
		t.Fatalf("game line = %q", line)
	}
}

func TestGameLineForfeit(t *testing.T) {
	line := GameLine(1, domain.GameRecord{
		WhiteID:      "alpha",
		BlackID:      "beta",
		Result:       board.BlackWins,
		Reason:       domain.ReasonForfeit,
		ForfeitBy:    board.White,
		ForfeitCause: domain.CauseInvalidMove,
	})
	if !strings.Contains(line, "forfeit by white, invalid_move") {
		t.Fatalf("forfeit line = %q", line)
	}
}
