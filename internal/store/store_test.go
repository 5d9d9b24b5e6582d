package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/knvmhra/promptchess/internal/domain"
)

func testState() *State {
	players := []domain.Player{
		{ID: "alpha", Provider: "openai", Model: "gpt-x", Rating: 1200},
		{ID: "beta", Provider: "anthropic", Model: "claude-x", Rating: 1200},
	}
	pairings := []domain.Pairing{
		{WhiteID: "alpha", BlackID: "beta", Status: domain.PairingPending},
		{WhiteID: "beta", BlackID: "alpha", Status: domain.PairingPending},
	}
	return NewState(players, pairings)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "league_state.json")
	fs := NewFileStore(path)
	ctx := context.Background()

	loaded, err := fs.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if loaded != nil {
		t.Fatalf("fresh store returned state: %+v", loaded)
	}

	state := testState()
	state.Pairings[0].Status = domain.PairingCompleted
	state.Pairings[0].GameID = "g1"
	state.Games = append(state.Games, domain.GameRecord{ID: "g1", WhiteID: "alpha", BlackID: "beta"})
	if err := fs.Save(ctx, state); err != nil {
		t.Fatal(err)
	}

	loaded, err = fs.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if loaded == nil {
		t.Fatal("saved state did not load")
	}
	if err := loaded.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(loaded.Players) != 2 || len(loaded.Pairings) != 2 || len(loaded.Games) != 1 {
		t.Fatalf("loaded state lost data: %+v", loaded)
	}
	if loaded.Pairings[0].GameID != "g1" {
		t.Fatalf("game reference lost: %+v", loaded.Pairings[0])
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(filepath.Join(dir, "state.json"))
	if err := fs.Save(context.Background(), testState()); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestFileStoreRejectsCorruptState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(path).Load(context.Background()); err == nil {
		t.Fatal("corrupt state loaded without error")
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	rs := NewRedisStore(rdb)
	ctx := context.Background()

	loaded, err := rs.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if loaded != nil {
		t.Fatalf("empty redis returned state: %+v", loaded)
	}

	state := testState()
	if err := rs.Save(ctx, state); err != nil {
		t.Fatal(err)
	}
	loaded, err = rs.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if loaded == nil || len(loaded.Pairings) != 2 {
		t.Fatalf("redis round trip lost data: %+v", loaded)
	}
}

func TestOpenPicksBackend(t *testing.T) {
	st, err := Open(filepath.Join(t.TempDir(), "state.json"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := st.(*FileStore); !ok {
		t.Fatalf("path location opened %T, want *FileStore", st)
	}
	if _, err := Open(""); err == nil {
		t.Fatal("empty location accepted")
	}
}

func TestStateValidate(t *testing.T) {
	state := testState()
	if err := state.Validate(); err != nil {
		t.Fatal(err)
	}

	bad := testState()
	bad.Pairings[0].WhiteID = "ghost"
	if err := bad.Validate(); err == nil {
		t.Fatal("unknown player id passed validation")
	}

	bad = testState()
	bad.Pairings[0].Status = domain.PairingCompleted
	if err := bad.Validate(); err == nil {
		t.Fatal("completed pairing without a game record passed validation")
	}

	bad = testState()
	bad.Version = 99
	if err := bad.Validate(); err == nil {
		t.Fatal("future schema version passed validation")
	}

	bad = testState()
	bad.Pairings[0].Status = domain.PairingInProgress
	bad.Pairings[1].Status = domain.PairingInProgress
	if err := bad.Validate(); err == nil {
		t.Fatal("two in-progress pairings passed validation")
	}

	ok := testState()
	ok.Pairings[0].Status = domain.PairingInProgress
	if err := ok.Validate(); err != nil {
		t.Fatalf("single in-progress pairing rejected: %v", err)
	}
}

func TestConfigBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "player_configs_backup.json")
	players := testState().Players

	if err := WriteConfigBackup(path, players); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "\"rating\": 1200") {
		t.Fatal("backup includes mutable ratings")
	}

	// A second write must not clobber the original snapshot.
	changed := append([]domain.Player(nil), players...)
	changed[0].Model = "gpt-y"
	if err := WriteConfigBackup(path, changed); err != nil {
		t.Fatal(err)
	}
	raw2, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw2) != string(raw) {
		t.Fatal("existing backup was overwritten")
	}

	// Mismatch detection only logs; it must not panic or error.
	CheckConfigBackup(path, changed)
	CheckConfigBackup(filepath.Join(t.TempDir(), "missing.json"), players)
}
