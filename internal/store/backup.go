package store

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/knvmhra/promptchess/internal/domain"
	"github.com/knvmhra/promptchess/internal/obslog"
)

// WriteConfigBackup snapshots the static player configuration (everything but
// the mutable ratings) next to the state, once per tournament. An existing
// backup is left untouched.
func WriteConfigBackup(path string, players []domain.Player) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config backup %s: %w", path, err)
	}
	static := make([]domain.Player, len(players))
	for i, p := range players {
		static[i] = p.Static()
	}
	raw, err := json.MarshalIndent(static, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config backup: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write config backup %s: %w", path, err)
	}
	return nil
}

// CheckConfigBackup compares the resumed state's players against the backup
// written at tournament setup. A mismatch is logged as a warning and the
// persisted configuration stays authoritative; a missing backup is not an
// error.
func CheckConfigBackup(path string, players []domain.Player) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		obslog.L().Warn("config_backup_unreadable", zap.String("path", path), zap.Error(err))
		return
	}
	var saved []domain.Player
	if err := json.Unmarshal(raw, &saved); err != nil {
		obslog.L().Warn("config_backup_corrupt", zap.String("path", path), zap.Error(err))
		return
	}
	if len(saved) != len(players) {
		obslog.L().Warn("config_backup_mismatch",
			zap.Int("backup_players", len(saved)),
			zap.Int("state_players", len(players)))
		return
	}
	byID := make(map[string]domain.Player, len(saved))
	for _, p := range saved {
		byID[p.ID] = p
	}
	for _, p := range players {
		got, ok := byID[p.ID]
		if !ok {
			obslog.L().Warn("config_backup_mismatch", zap.String("player", p.ID), zap.String("detail", "missing from backup"))
			continue
		}
		if got != p.Static() {
			obslog.L().Warn("config_backup_mismatch", zap.String("player", p.ID), zap.String("detail", "configuration changed"))
		}
	}
}
