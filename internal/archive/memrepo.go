package archive

import (
	"context"
	"sync"

	"github.com/knvmhra/promptchess/internal/domain"
)

// MemRepo is an in-memory Repository for tests and runs without a database.
type MemRepo struct {
	mu    sync.Mutex
	games []ArchivedGame
}

type ArchivedGame struct {
	Seq    int
	Record domain.GameRecord
}

func NewMemRepo() *MemRepo { return &MemRepo{} }

func (m *MemRepo) SaveGame(_ context.Context, seq int, rec domain.GameRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.games {
		if g.Record.ID == rec.ID {
			return nil
		}
	}
	m.games = append(m.games, ArchivedGame{Seq: seq, Record: rec})
	return nil
}

func (m *MemRepo) Games() []ArchivedGame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ArchivedGame(nil), m.games...)
}

func (m *MemRepo) Close() error { return nil }
