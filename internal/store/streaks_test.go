package store

import (
	"testing"
	"time"

	"github.com/sadopc/lapse/internal/config"
)

// seedDay puts hours of Coding time on a date. With the default config
// the only streak-relevant goal is Coding at 4h/day.
func seedDay(t *testing.T, s *Store, date string, hours float64) {
	t.Helper()
	if err := s.ManualEntry("vim", "Coding", hours*60, "", date); err != nil {
		t.Fatal(err)
	}
}

func day(offset int) time.Time {
	return testDay.AddDate(0, 0, offset)
}

func dayKey(offset int) string {
	return day(offset).Format("2006-01-02")
}

// ============================================================
// Streak evaluation
// ============================================================

func TestStreakStartsWhenGoalsMet(t *testing.T) {
	s := newTestStore(t)
	seedDay(t, s, dayKey(-1), 4.5)

	if err := s.UpdateStreaks(testDay); err != nil {
		t.Fatal(err)
	}

	got := s.Streaks()
	if got.Current != 1 || got.Longest != 1 {
		t.Errorf("streaks = %+v, want current 1 longest 1", got)
	}
	if got.LastDate != dayKey(0) {
		t.Errorf("last date = %s, want %s", got.LastDate, dayKey(0))
	}
}

// Exactly hitting the goal counts as met.
func TestStreakGoalBoundary(t *testing.T) {
	s := newTestStore(t)
	seedDay(t, s, dayKey(-1), 4)

	if err := s.UpdateStreaks(testDay); err != nil {
		t.Fatal(err)
	}
	if got := s.Streaks().Current; got != 1 {
		t.Errorf("current = %d, want 1 (goal exactly reached)", got)
	}
}

func TestStreakContinues(t *testing.T) {
	s := newTestStore(t)
	s.streaks = Streaks{Current: 3, Longest: 5, LastDate: dayKey(-1)}
	seedDay(t, s, dayKey(-1), 6)

	if err := s.UpdateStreaks(testDay); err != nil {
		t.Fatal(err)
	}

	got := s.Streaks()
	if got.Current != 4 {
		t.Errorf("current = %d, want 4", got.Current)
	}
	if got.Longest != 5 {
		t.Errorf("longest = %d, want 5 (unchanged)", got.Longest)
	}
}

func TestStreakNewRecord(t *testing.T) {
	s := newTestStore(t)
	s.streaks = Streaks{Current: 5, Longest: 5, LastDate: dayKey(-1)}
	seedDay(t, s, dayKey(-1), 6)

	if err := s.UpdateStreaks(testDay); err != nil {
		t.Fatal(err)
	}
	if got := s.Streaks().Longest; got != 6 {
		t.Errorf("longest = %d, want 6", got)
	}
}

// A gap in evaluation breaks continuity even when yesterday met its
// goals: the streak restarts at 1 instead of continuing.
func TestStreakGapRestarts(t *testing.T) {
	s := newTestStore(t)
	s.streaks = Streaks{Current: 9, Longest: 9, LastDate: dayKey(-3)}
	seedDay(t, s, dayKey(-1), 5)

	if err := s.UpdateStreaks(testDay); err != nil {
		t.Fatal(err)
	}

	got := s.Streaks()
	if got.Current != 1 {
		t.Errorf("current = %d, want 1 after a gap", got.Current)
	}
	if got.Longest != 9 {
		t.Errorf("longest = %d, want 9 preserved", got.Longest)
	}
}

func TestStreakBreaksWhenGoalsMissed(t *testing.T) {
	s := newTestStore(t)
	s.streaks = Streaks{Current: 4, Longest: 4, LastDate: dayKey(-1)}
	seedDay(t, s, dayKey(-1), 2) // under the 4h goal

	if err := s.UpdateStreaks(testDay); err != nil {
		t.Fatal(err)
	}
	if got := s.Streaks().Current; got != 0 {
		t.Errorf("current = %d, want 0", got)
	}
}

// No data for yesterday counts as zero hours, which fails the goal.
func TestStreakMissingDayFails(t *testing.T) {
	s := newTestStore(t)
	s.streaks = Streaks{Current: 2, Longest: 2, LastDate: dayKey(-1)}

	if err := s.UpdateStreaks(testDay); err != nil {
		t.Fatal(err)
	}
	if got := s.Streaks().Current; got != 0 {
		t.Errorf("current = %d, want 0 with no tracked data", got)
	}
}

// With no productive category carrying a goal there is nothing to meet,
// and a streak of vacuous successes must not accumulate.
func TestStreakNoApplicableGoals(t *testing.T) {
	cfg := config.Default()
	cfg.Goals = map[string]float64{}
	s := openWith(t, cfg)
	seedDay(t, s, dayKey(-1), 8)

	if err := s.UpdateStreaks(testDay); err != nil {
		t.Fatal(err)
	}
	if got := s.Streaks().Current; got != 0 {
		t.Errorf("current = %d, want 0 with no applicable goals", got)
	}
}

// ============================================================
// Idempotence
// ============================================================

// Restarting the tracker several times a day must not inflate the
// streak: the second evaluation on the same date is a no-op.
func TestStreakIdempotentSameDay(t *testing.T) {
	s := newTestStore(t)
	seedDay(t, s, dayKey(-1), 5)

	for i := 0; i < 3; i++ {
		if err := s.UpdateStreaks(testDay); err != nil {
			t.Fatal(err)
		}
	}

	got := s.Streaks()
	if got.Current != 1 || got.Longest != 1 {
		t.Errorf("streaks = %+v after repeated runs, want current 1 longest 1", got)
	}
}

func TestStreakSurvivesReload(t *testing.T) {
	s := newTestStore(t)
	seedDay(t, s, dayKey(-1), 5)
	if err := s.UpdateStreaks(testDay); err != nil {
		t.Fatal(err)
	}
	s.Close()

	loaded, err := Open(s.path, s.cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer loaded.Close()
	loaded.now = s.now

	if err := loaded.UpdateStreaks(testDay); err != nil {
		t.Fatal(err)
	}
	if got := loaded.Streaks().Current; got != 1 {
		t.Errorf("current = %d after reload, want 1 (guard persisted)", got)
	}
}

func openWith(t *testing.T, cfg *config.Config) *Store {
	t.Helper()
	s, err := Open(t.TempDir()+"/ledger.json", cfg)
	if err != nil {
		t.Fatal(err)
	}
	s.now = func() time.Time { return testDay }
	t.Cleanup(func() { s.Close() })
	return s
}
