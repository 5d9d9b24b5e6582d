// Package presenter renders tournament output for the terminal.
package presenter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/knvmhra/promptchess/internal/board"
	"github.com/knvmhra/promptchess/internal/domain"
)

// Standings renders the final table sorted by rating, best first. Ties break
// on player id so the output is stable.
func Standings(players []domain.Player, games []domain.GameRecord) string {
	ranked := append([]domain.Player(nil), players...)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Rating != ranked[j].Rating {
			return ranked[i].Rating > ranked[j].Rating
		}
		return ranked[i].ID < ranked[j].ID
	})

	wins, draws, losses := tally(games)

	var b strings.Builder
	b.WriteString("Final standings\n")
	for i, p := range ranked {
		b.WriteString(fmt.Sprintf("%2d. %-24s %7.1f  (%dW %dD %dL)\n",
			i+1, p.ID, p.Rating, wins[p.ID], draws[p.ID], losses[p.ID]))
	}
	return b.String()
}

// GameLine is a one-line summary of a finished game.
func GameLine(seq int, rec domain.GameRecord) string {
	detail := string(rec.Reason)
	if rec.Reason == domain.ReasonForfeit {
		detail = fmt.Sprintf("forfeit by %s, %s", rec.ForfeitBy, rec.ForfeitCause)
	}
	return fmt.Sprintf("game %d: %s vs %s  %s (%s, %d moves)",
		seq, rec.WhiteID, rec.BlackID, rec.Result, detail, (len(rec.MovesSAN)+1)/2)
}

func tally(games []domain.GameRecord) (wins, draws, losses map[string]int) {
	wins = map[string]int{}
	draws = map[string]int{}
	losses = map[string]int{}
	for _, g := range games {
		switch g.Result {
		case board.WhiteWins:
			wins[g.WhiteID]++
			losses[g.BlackID]++
		case board.BlackWins:
			wins[g.BlackID]++
			losses[g.WhiteID]++
		default:
			draws[g.WhiteID]++
			draws[g.BlackID]++
		}
	}
	return wins, draws, losses
}
