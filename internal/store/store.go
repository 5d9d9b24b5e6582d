package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/knvmhra/promptchess/internal/domain"
)

// SchemaVersion is bumped whenever the persisted State layout changes shape.
const SchemaVersion = 1

// State is the single persisted document for a tournament run. Every pairing
// appears exactly once across the three statuses; Games holds one record per
// completed pairing and Abandoned keeps the move lists of interrupted games.
type State struct {
	Version   int                  `json:"version"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
	Players   []domain.Player      `json:"players"`
	Pairings  []domain.Pairing     `json:"pairings"`
	Games     []domain.GameRecord  `json:"games"`
	Abandoned []domain.PartialGame `json:"abandoned,omitempty"`
}

// NewState builds a fresh tournament state.
func NewState(players []domain.Player, pairings []domain.Pairing) *State {
	now := time.Now().UTC()
	return &State{
		Version:   SchemaVersion,
		CreatedAt: now,
		UpdatedAt: now,
		Players:   players,
		Pairings:  pairings,
	}
}

// Player returns a pointer into Players for in-place rating updates.
func (s *State) Player(id string) (*domain.Player, bool) {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i], true
		}
	}
	return nil, false
}

// Validate checks the structural invariants a loaded state must satisfy.
func (s *State) Validate() error {
	if s.Version != SchemaVersion {
		return fmt.Errorf("unsupported state version %d (want %d)", s.Version, SchemaVersion)
	}
	ids := make(map[string]struct{}, len(s.Players))
	for _, p := range s.Players {
		if _, dup := ids[p.ID]; dup {
			return fmt.Errorf("duplicate player id %q", p.ID)
		}
		ids[p.ID] = struct{}{}
	}
	completed, inProgress := 0, 0
	for i, pr := range s.Pairings {
		if _, ok := ids[pr.WhiteID]; !ok {
			return fmt.Errorf("pairing %d references unknown player %q", i, pr.WhiteID)
		}
		if _, ok := ids[pr.BlackID]; !ok {
			return fmt.Errorf("pairing %d references unknown player %q", i, pr.BlackID)
		}
		switch pr.Status {
		case domain.PairingPending:
		case domain.PairingInProgress:
			inProgress++
		case domain.PairingCompleted:
			completed++
		default:
			return fmt.Errorf("pairing %d has unknown status %q", i, pr.Status)
		}
	}
	if inProgress > 1 {
		return fmt.Errorf("state has %d in-progress pairings, at most 1 allowed", inProgress)
	}
	if completed != len(s.Games) {
		return fmt.Errorf("state has %d completed pairings but %d game records", completed, len(s.Games))
	}
	return nil
}

// Store persists tournament state. Load returns (nil, nil) when no state has
// been saved yet; the caller starts a fresh tournament in that case.
type Store interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, s *State) error
}

// Open picks a backend from the state location: redis:// and rediss:// URLs
// get the Redis store, anything else is treated as a filesystem path.
func Open(location string) (Store, error) {
	loc := strings.TrimSpace(location)
	if loc == "" {
		return nil, fmt.Errorf("state location is empty")
	}
	if strings.HasPrefix(loc, "redis://") || strings.HasPrefix(loc, "rediss://") {
		return OpenRedis(loc)
	}
	return NewFileStore(loc), nil
}
