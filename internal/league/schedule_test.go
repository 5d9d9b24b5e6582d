package league

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/knvmhra/promptchess/internal/domain"
)

func rosterOf(n int) []domain.Player {
	players := make([]domain.Player, n)
	for i := range players {
		players[i] = domain.Player{ID: fmt.Sprintf("p%d", i+1), Provider: "random", Rating: DefaultRating}
	}
	return players
}

func TestGeneratePairingsCount(t *testing.T) {
	for _, n := range []int{2, 3, 4, 7} {
		pairings, err := GeneratePairings(rosterOf(n))
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if want := n * (n - 1); len(pairings) != want {
			t.Fatalf("n=%d: got %d pairings, want %d", n, len(pairings), want)
		}
	}
}

func TestGeneratePairingsColorsSwapped(t *testing.T) {
	pairings, err := GeneratePairings(rosterOf(4))
	if err != nil {
		t.Fatal(err)
	}
	type matchup struct{ white, black string }
	seen := make(map[matchup]int)
	for _, p := range pairings {
		if p.WhiteID == p.BlackID {
			t.Fatalf("player %q paired against itself", p.WhiteID)
		}
		seen[matchup{p.WhiteID, p.BlackID}]++
	}
	for m, count := range seen {
		if count != 1 {
			t.Fatalf("ordered pair %v appears %d times", m, count)
		}
		if seen[matchup{m.black, m.white}] != 1 {
			t.Fatalf("missing color-swapped pairing for %v", m)
		}
	}
}

func TestGeneratePairingsDeterministic(t *testing.T) {
	a, err := GeneratePairings(rosterOf(5))
	if err != nil {
		t.Fatal(err)
	}
	b, err := GeneratePairings(rosterOf(5))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("pairing order is not deterministic")
	}
}

func TestGeneratePairingsRejectsBadRosters(t *testing.T) {
	if _, err := GeneratePairings(rosterOf(1)); err == nil {
		t.Fatal("expected error for a single player")
	}
	dup := []domain.Player{{ID: "same"}, {ID: "same"}}
	if _, err := GeneratePairings(dup); err == nil {
		t.Fatal("expected error for duplicate ids")
	}
}

func TestNextPending(t *testing.T) {
	pairings := []domain.Pairing{
		{WhiteID: "a", BlackID: "b", Status: domain.PairingCompleted},
		{WhiteID: "b", BlackID: "a", Status: domain.PairingInProgress},
		{WhiteID: "a", BlackID: "c", Status: domain.PairingPending},
	}
	idx, ok := NextPending(pairings)
	if !ok || idx != 1 {
		t.Fatalf("NextPending = (%d, %v), want (1, true): interrupted pairing replays first", idx, ok)
	}

	pairings[1].Status = domain.PairingCompleted
	pairings[2].Status = domain.PairingCompleted
	if _, ok := NextPending(pairings); ok {
		t.Fatal("NextPending found work in a finished tournament")
	}
}
