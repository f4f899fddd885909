package game

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Exporter appends a plain-text line per played round to a results file.
type Exporter struct {
	mu       sync.Mutex
	filename string
	now      func() time.Time
}

func NewExporter(filename string) *Exporter {
	return &Exporter{filename: filename, now: time.Now}
}

// Round logs one round. Failures are logged, never returned.
func (x *Exporter) Round(playerID string, r Round, t ScoreTally) {
	line := fmt.Sprintf("%s player=%s %s vs %s -> %s (P:%d C:%d T:%d)\n",
		x.now().Format("2006-01-02 15:04:05"), playerLabel(playerID),
		r.PlayerMove.DisplayName(), r.ComputerMove.DisplayName(), r.Outcome,
		t.Player, t.Computer, t.Ties)
	if err := x.write(line); err != nil {
		log.Error().Err(err).Str("file", x.filename).Msg("failed to export round")
	}
}

// Reset logs a reset marker for playerID.
func (x *Exporter) Reset(playerID string) {
	line := fmt.Sprintf("%s player=%s reset\n%s\n",
		x.now().Format("2006-01-02 15:04:05"), playerLabel(playerID), strings.Repeat("-", 40))
	if err := x.write(line); err != nil {
		log.Error().Err(err).Str("file", x.filename).Msg("failed to export reset")
	}
}

func (x *Exporter) write(line string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	dir := filepath.Dir(x.filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	fileExists := false
	if _, err := os.Stat(x.filename); err == nil {
		fileExists = true
	}

	file, err := os.OpenFile(x.filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var sb strings.Builder
	if !fileExists {
		sb.WriteString("Rock Paper Scissors Results\n")
		sb.WriteString(strings.Repeat("=", 50) + "\n")
	}
	sb.WriteString(line)

	if _, err := file.WriteString(sb.String()); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}
	return nil
}

func playerLabel(id string) string {
	if id == "" {
		return "local"
	}
	return id
}
