package league

import (
	"fmt"

	"github.com/knvmhra/promptchess/internal/domain"
)

// GeneratePairings builds the full double round-robin schedule: every ordered
// pair of distinct players appears exactly once, so each matchup is played
// twice with colors swapped. The order is deterministic in the player list
// order, which makes interrupted runs resume at a predictable point.
func GeneratePairings(players []domain.Player) ([]domain.Pairing, error) {
	if len(players) < 2 {
		return nil, fmt.Errorf("need at least 2 players, have %d", len(players))
	}
	seen := make(map[string]struct{}, len(players))
	for _, p := range players {
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("duplicate player id %q", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	pairings := make([]domain.Pairing, 0, len(players)*(len(players)-1))
	for i := range players {
		for j := i + 1; j < len(players); j++ {
			pairings = append(pairings,
				domain.Pairing{WhiteID: players[i].ID, BlackID: players[j].ID, Status: domain.PairingPending},
				domain.Pairing{WhiteID: players[j].ID, BlackID: players[i].ID, Status: domain.PairingPending},
			)
		}
	}
	return pairings, nil
}

// NextPending returns the index of the first pairing that has not been
// completed. A pairing left in_progress by an interrupted run is returned
// again so it restarts from move zero.
func NextPending(pairings []domain.Pairing) (int, bool) {
	for i, p := range pairings {
		if p.Status != domain.PairingCompleted {
			return i, true
		}
	}
	return 0, false
}
