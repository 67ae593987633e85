package tui

import (
	"fmt"
	"time"
)

type tickMsg time.Time

// snapshotMsg carries a fresh read-only view of today's ledger.
type snapshotMsg struct {
	day      map[string]float64 // category -> seconds
	total    float64
	current  int
	longest  int
	progress map[string]float64 // category -> percent of goal
	score    float64
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatHours(secs float64) string {
	return fmt.Sprintf("%.2fh", secs/3600)
}
