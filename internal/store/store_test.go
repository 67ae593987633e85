package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sadopc/lapse/internal/classify"
	"github.com/sadopc/lapse/internal/config"
)

var testDay = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ledger.json"), config.Default())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	s.now = func() time.Time { return testDay }
	t.Cleanup(func() { s.Close() })
	return s
}

// checkConservation verifies that every bucket total equals the sum of
// its per-app seconds.
func checkConservation(t *testing.T, s *Store) {
	t.Helper()
	for _, date := range s.Dates() {
		for category, bucket := range s.Snapshot(date) {
			var sum float64
			for _, secs := range bucket.Apps {
				sum += secs
			}
			if diff := bucket.TotalSeconds - sum; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("%s/%s: total %g != app sum %g", date, category, bucket.TotalSeconds, sum)
			}
		}
	}
}

// ============================================================
// Recording
// ============================================================

func TestRecordAccumulates(t *testing.T) {
	s := newTestStore(t)

	if err := s.Record("vim", 12, ""); err != nil {
		t.Fatal(err)
	}
	if err := s.Record("slack", 8, ""); err != nil {
		t.Fatal(err)
	}
	if err := s.Record("vim", 5, ""); err != nil {
		t.Fatal(err)
	}

	day := s.Today()
	if got := day[classify.Coding].Apps["vim"]; got != 17 {
		t.Errorf("vim = %g seconds, want 17", got)
	}
	if got := day[classify.Communication].Apps["slack"]; got != 8 {
		t.Errorf("slack = %g seconds, want 8", got)
	}
	if got := day.TotalSeconds(); got != 25 {
		t.Errorf("day total = %g, want 25", got)
	}
	checkConservation(t, s)
}

func TestRecordValidation(t *testing.T) {
	s := newTestStore(t)

	if err := s.Record("vim", -1, ""); err == nil {
		t.Error("negative seconds should fail")
	}
	if err := s.Record("vim", 0, ""); err != nil {
		t.Errorf("zero seconds should be a no-op, got %v", err)
	}
	if len(s.Today()) != 0 {
		t.Error("store mutated by rejected records")
	}
}

func TestRecordProjects(t *testing.T) {
	s := newTestStore(t)
	s.Record("vim", 60, "lapse")
	s.Record("vim", 30, "")
	s.Record("goland", 10, "lapse")

	bucket := s.Today()[classify.Coding]
	if got := bucket.Projects["lapse"]; got != 70 {
		t.Errorf("project lapse = %g seconds, want 70", got)
	}
	if got := bucket.TotalSeconds; got != 100 {
		t.Errorf("bucket total = %g, want 100", got)
	}
	checkConservation(t, s)
}

// An excluded app leaves the store untouched, down to the serialized
// bytes on disk.
func TestRecordExcludedLeavesFileIdentical(t *testing.T) {
	cfg := config.Default()
	cfg.ExcludedApps = []string{"1password"}
	path := filepath.Join(t.TempDir(), "ledger.json")
	s, err := Open(path, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	s.now = func() time.Time { return testDay }

	s.Record("vim", 10, "")
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Record("1Password 8 - vault", 60, ""); err != nil {
		t.Fatal(err)
	}
	if err := s.Persist(); err != nil {
		t.Fatal(err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("excluded app changed the serialized ledger")
	}
}

// ============================================================
// Manual entries
// ============================================================

func TestManualEntry(t *testing.T) {
	s := newTestStore(t)

	if err := s.ManualEntry("Notes", "Writing", 30, "", "2024-01-01"); err != nil {
		t.Fatal(err)
	}

	day := s.Snapshot("2024-01-01")
	bucket, ok := day["Writing"]
	if !ok {
		t.Fatal("Writing bucket missing")
	}
	if bucket.TotalSeconds != 1800 {
		t.Errorf("total = %g seconds, want 1800", bucket.TotalSeconds)
	}
	if bucket.Apps["Notes"] != 1800 {
		t.Errorf("Notes = %g seconds, want 1800", bucket.Apps["Notes"])
	}
}

func TestManualEntryDefaultsToToday(t *testing.T) {
	s := newTestStore(t)
	if err := s.ManualEntry("whiteboard", "Meetings", 15, "", ""); err != nil {
		t.Fatal(err)
	}
	if got := s.Today()["Meetings"].TotalSeconds; got != 900 {
		t.Errorf("total = %g seconds, want 900", got)
	}
}

func TestManualEntryValidation(t *testing.T) {
	s := newTestStore(t)

	cases := []struct {
		name               string
		app, category      string
		minutes            float64
		date               string
	}{
		{"empty app", "", "Writing", 10, ""},
		{"empty category", "Notes", "", 10, ""},
		{"zero minutes", "Notes", "Writing", 0, ""},
		{"negative minutes", "Notes", "Writing", -5, ""},
		{"bad date", "Notes", "Writing", 10, "01/02/2024"},
	}
	for _, tc := range cases {
		if err := s.ManualEntry(tc.app, tc.category, tc.minutes, "", tc.date); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
	if len(s.Dates()) != 0 {
		t.Error("store mutated by rejected entries")
	}
}

// ============================================================
// Persistence
// ============================================================

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	cfg := config.Default()

	s, err := Open(path, cfg)
	if err != nil {
		t.Fatal(err)
	}
	s.now = func() time.Time { return testDay }
	s.Record("vim", 120, "lapse")
	s.Record("slack", 45, "")
	s.ManualEntry("book", "Reading", 30, "", "2024-03-01")
	s.streaks = Streaks{Current: 3, Longest: 7, LastDate: "2024-03-10"}
	if err := s.Persist(); err != nil {
		t.Fatal(err)
	}
	s.Close()

	loaded, err := Open(path, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer loaded.Close()
	loaded.now = func() time.Time { return testDay }

	day := loaded.Today()
	if got := day[classify.Coding].Apps["vim"]; got != 120 {
		t.Errorf("vim = %g, want 120", got)
	}
	if got := day[classify.Coding].Projects["lapse"]; got != 120 {
		t.Errorf("project = %g, want 120", got)
	}
	if got := loaded.Snapshot("2024-03-01")["Reading"].TotalSeconds; got != 1800 {
		t.Errorf("manual entry = %g, want 1800", got)
	}
	if got := loaded.Streaks(); got != (Streaks{Current: 3, Longest: 7, LastDate: "2024-03-10"}) {
		t.Errorf("streaks = %+v", got)
	}
}

// A ledger that fails to parse must error out and stay on disk exactly
// as it was.
func TestOpenCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	garbage := []byte(`{"2024-03-10": [broken`)
	if err := os.WriteFile(path, garbage, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Open(path, config.Default())
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(garbage) {
		t.Error("corrupt ledger was modified")
	}
}

func TestOpenMissingFile(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "sub", "ledger.json"), config.Default())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if len(s.Dates()) != 0 {
		t.Error("fresh store should be empty")
	}
	if s.Streaks() != (Streaks{}) {
		t.Error("fresh store should have zero streaks")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := newTestStore(t)
	s.Record("vim", 10, "")

	snap := s.Today()
	snap[classify.Coding].Apps["vim"] = 9999
	snap[classify.Coding].TotalSeconds = 9999

	if got := s.Today()[classify.Coding].Apps["vim"]; got != 10 {
		t.Errorf("mutating a snapshot leaked into the store: vim = %g", got)
	}
}

// ============================================================
// Queries
// ============================================================

func TestRangeAndDates(t *testing.T) {
	s := newTestStore(t)
	s.ManualEntry("a", "X", 1, "", "2024-03-01")
	s.ManualEntry("b", "X", 1, "", "2024-03-05")
	s.ManualEntry("c", "X", 1, "", "2024-03-09")

	dates := s.Dates()
	want := []string{"2024-03-01", "2024-03-05", "2024-03-09"}
	if len(dates) != len(want) {
		t.Fatalf("dates = %v", dates)
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Errorf("dates[%d] = %s, want %s", i, dates[i], want[i])
		}
	}

	mid := s.Range("2024-03-02", "2024-03-08")
	if len(mid) != 1 {
		t.Fatalf("range = %d days, want 1", len(mid))
	}
	if _, ok := mid["2024-03-05"]; !ok {
		t.Error("range missed 2024-03-05")
	}

	if got := len(s.Range("", "")); got != 3 {
		t.Errorf("open range = %d days, want 3", got)
	}
}

func TestRows(t *testing.T) {
	s := newTestStore(t)
	s.ManualEntry("vim", "Coding", 60, "lapse", "2024-03-02")
	s.ManualEntry("slack", "Communication", 30, "", "2024-03-01")

	rows := s.Rows("", "")
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3 (2 apps + 1 project)", len(rows))
	}

	// Sorted by date first.
	if rows[0].Date != "2024-03-01" || rows[0].App != "slack" || rows[0].Hours != 0.5 {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].Date != "2024-03-02" || rows[1].App != "vim" || rows[1].Hours != 1 {
		t.Errorf("row 1 = %+v", rows[1])
	}
	if rows[2].Project != "lapse" || rows[2].App != "" || rows[2].Hours != 1 {
		t.Errorf("row 2 = %+v, want project row", rows[2])
	}
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	s.Record("vim", 100, "")
	s.streaks = Streaks{Current: 2, Longest: 5, LastDate: "2024-03-10"}

	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if len(s.Dates()) != 0 {
		t.Error("days survived Clear")
	}
	if s.Streaks() != (Streaks{}) {
		t.Error("streaks survived Clear")
	}
}
