package pgnexport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knvmhra/promptchess/internal/domain"
)

// Writer exports finished games as numbered PGN files in a directory. File
// names follow the order games finished, so a directory listing reads as the
// tournament history.
type Writer struct {
	dir string
}

func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create pgn dir %s: %w", dir, err)
	}
	return &Writer{dir: dir}, nil
}

// Write renders and writes game number seq (1-based). It returns the file
// path written.
func (w *Writer) Write(seq int, rec domain.GameRecord) (string, error) {
	path := filepath.Join(w.dir, fmt.Sprintf("game_%03d.pgn", seq))
	if err := os.WriteFile(path, []byte(Render(seq, rec)), 0o644); err != nil {
		return "", fmt.Errorf("write pgn %s: %w", path, err)
	}
	return path, nil
}

// Render builds the PGN text for one game record. Reasonings, when present,
// become PGN comments after their moves.
func Render(seq int, rec domain.GameRecord) string {
	var b strings.Builder
	date := rec.EndedAt
	b.WriteString("[Event \"Model Arena\"]\n")
	b.WriteString("[Site \"promptchess\"]\n")
	b.WriteString(fmt.Sprintf("[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day()))
	b.WriteString(fmt.Sprintf("[Round \"%d\"]\n", seq))
	b.WriteString(fmt.Sprintf("[White \"%s\"]\n", sanitize(rec.WhiteID)))
	b.WriteString(fmt.Sprintf("[Black \"%s\"]\n", sanitize(rec.BlackID)))
	b.WriteString(fmt.Sprintf("[WhiteElo \"%d\"]\n", int(rec.WhiteRating)))
	b.WriteString(fmt.Sprintf("[BlackElo \"%d\"]\n", int(rec.BlackRating)))
	if term := terminationTag(rec); term != "" {
		b.WriteString(fmt.Sprintf("[Termination \"%s\"]\n", sanitize(term)))
	}
	b.WriteString(fmt.Sprintf("[Result \"%s\"]\n\n", rec.Result))

	for i, san := range rec.MovesSAN {
		if i%2 == 0 {
			b.WriteString(fmt.Sprintf("%d. ", i/2+1))
		}
		b.WriteString(strings.TrimSpace(san))
		if i < len(rec.Reasonings) && strings.TrimSpace(rec.Reasonings[i]) != "" {
			b.WriteString(" {" + sanitizeComment(rec.Reasonings[i]) + "}")
		}
		b.WriteString(" ")
	}
	b.WriteString(string(rec.Result))
	b.WriteString("\n")
	return b.String()
}

func terminationTag(rec domain.GameRecord) string {
	if rec.Reason == domain.ReasonForfeit {
		return fmt.Sprintf("forfeit by %s (%s)", rec.ForfeitBy, rec.ForfeitCause)
	}
	return strings.ReplaceAll(string(rec.Reason), "_", " ")
}

func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}

// sanitizeComment strips the characters that would end or nest a PGN comment.
func sanitizeComment(s string) string {
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	s = strings.Join(strings.Fields(s), " ")
	return s
}
