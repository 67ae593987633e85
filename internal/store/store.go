// Package store holds the time-accounting ledger: per-day, per-category,
// per-app totals plus the streak ledger, persisted as one JSON document.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	log "github.com/sirupsen/logrus"

	"github.com/sadopc/lapse/internal/classify"
	"github.com/sadopc/lapse/internal/config"
)

const (
	// streaksKey is the one reserved top-level key in the ledger document.
	// It is never a date and is excluded from all date-range aggregation.
	streaksKey = "streaks"

	dateLayout = "2006-01-02"
)

// ErrCorrupt marks a ledger file that exists but cannot be parsed. The
// file is left untouched; recovery is an explicit user action.
var ErrCorrupt = errors.New("ledger file is corrupt")

// Store is the single shared mutable resource of the tracker. All
// mutation happens under one mutex; readers get deep copies.
type Store struct {
	mu       sync.Mutex
	path     string
	filelock *flock.Flock
	cfg      *config.Config
	cls      *classify.Classifier

	days    map[string]DayRecord
	streaks Streaks
	dirty   bool

	now func() time.Time
}

// Open loads the ledger at path, guarding it with a lock file so two
// processes cannot interleave whole-document writes. A missing file yields
// an empty store with a fresh streak ledger; a file that fails to parse is
// a fatal error and is never overwritten with an empty one.
func Open(path string, cfg *config.Config) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	fl := flock.New(path + ".lock")
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire ledger lock: %w", err)
	}
	if !locked {
		log.Warn("another lapse process holds the ledger, waiting...")
		if err := fl.Lock(); err != nil {
			return nil, fmt.Errorf("acquire ledger lock after waiting: %w", err)
		}
	}

	s := &Store{
		path:     path,
		filelock: fl,
		cfg:      cfg,
		cls:      classify.New(cfg.CustomRules),
		days:     map[string]DayRecord{},
		now:      time.Now,
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		fl.Unlock()
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	if err := s.decode(data); err != nil {
		fl.Unlock()
		return nil, err
	}
	return s, nil
}

// Close releases the ledger lock. It does not persist; callers flush
// through Stop/Persist first.
func (s *Store) Close() error {
	return s.filelock.Unlock()
}

// Record attributes elapsed seconds to app on today's date. Excluded apps
// are silently dropped. The category is resolved by the classifier; the
// bucket total and per-app map are updated as one atomic step, and the
// ledger is persisted before returning. A failed write keeps the
// in-memory mutation and is retried on the next persist.
func (s *Store) Record(app string, seconds float64, project string) error {
	if seconds < 0 {
		return fmt.Errorf("elapsed seconds must be >= 0, got %g", seconds)
	}
	if seconds == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.excluded(app) {
		return nil
	}

	date := s.now().Format(dateLayout)
	category := s.cls.Classify(app)
	s.add(date, category, app, seconds, project)
	return s.persistLocked()
}

// ManualEntry backfills minutes into a caller-supplied category, bypassing
// the classifier. Date defaults to today when empty. Validation errors
// leave the store untouched.
func (s *Store) ManualEntry(app, category string, minutes float64, project, date string) error {
	if app == "" {
		return errors.New("app name must not be empty")
	}
	if category == "" {
		return errors.New("category must not be empty")
	}
	if minutes <= 0 {
		return fmt.Errorf("minutes must be > 0, got %g", minutes)
	}
	if date == "" {
		date = s.now().Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.add(date, category, app, minutes*60, project)
	return s.persistLocked()
}

// add mutates one bucket. Callers hold the mutex.
func (s *Store) add(date, category, app string, seconds float64, project string) {
	day, ok := s.days[date]
	if !ok {
		day = DayRecord{}
		s.days[date] = day
	}
	bucket, ok := day[category]
	if !ok {
		bucket = newBucket()
		day[category] = bucket
	}
	bucket.Apps[app] += seconds
	bucket.TotalSeconds += seconds
	if project != "" {
		if bucket.Projects == nil {
			bucket.Projects = map[string]float64{}
		}
		bucket.Projects[project] += seconds
	}
}

func (s *Store) excluded(app string) bool {
	lower := strings.ToLower(app)
	for _, p := range s.cfg.ExcludedApps {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// Snapshot returns a deep copy of one day's record, or an empty record if
// nothing was tracked that day.
func (s *Store) Snapshot(date string) DayRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if day, ok := s.days[date]; ok {
		return day.clone()
	}
	return DayRecord{}
}

// Today returns a deep copy of today's record.
func (s *Store) Today() DayRecord {
	return s.Snapshot(s.now().Format(dateLayout))
}

// Range returns deep copies of all days with from <= date <= to. Date keys
// sort lexicographically, so plain string compares suffice.
func (s *Store) Range(from, to string) map[string]DayRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]DayRecord{}
	for date, day := range s.days {
		if (from == "" || date >= from) && (to == "" || date <= to) {
			out[date] = day.clone()
		}
	}
	return out
}

// Dates lists all tracked dates in ascending order.
func (s *Store) Dates() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	dates := make([]string, 0, len(s.days))
	for d := range s.days {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Rows flattens a date range into export rows: one row per app, plus one
// per project (with App empty) where project-tagged time exists. Rows are
// sorted by date, category, then app.
func (s *Store) Rows(from, to string) []Row {
	days := s.Range(from, to)

	var rows []Row
	for date, day := range days {
		for category, bucket := range day {
			for app, secs := range bucket.Apps {
				rows = append(rows, Row{
					Date: date, Category: category, App: app, Hours: secs / 3600,
				})
			}
			for project, secs := range bucket.Projects {
				rows = append(rows, Row{
					Date: date, Category: category, Hours: secs / 3600, Project: project,
				})
			}
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.App != b.App {
			return a.App < b.App
		}
		return a.Project < b.Project
	})
	return rows
}

// Classify resolves an app identifier with the store's classifier (custom
// rules first, then the built-in tables). Exposed for read-side display.
func (s *Store) Classify(app string) string {
	return s.cls.Classify(app)
}

// Streaks returns a copy of the streak ledger.
func (s *Store) Streaks() Streaks {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streaks
}

// Clear wipes all tracked days and resets the streak ledger. This is the
// only operation that deletes data, and it is always explicit.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.days = map[string]DayRecord{}
	s.streaks = Streaks{}
	return s.persistLocked()
}

// Persist writes the whole ledger now. Used for the final flush on stop
// and to retry after a failed tick write.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

// Dirty reports whether an earlier persist failed and a retry is pending.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// persistLocked serializes the whole document and replaces the file via
// temp-write-then-rename, so readers never observe a half-written ledger.
// Callers hold the mutex.
func (s *Store) persistLocked() error {
	doc := make(map[string]any, len(s.days)+1)
	for date, day := range s.days {
		doc[date] = day
	}
	doc[streaksKey] = s.streaks

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	if err := s.writeFile(data); err != nil {
		s.dirty = true
		return err
	}
	s.dirty = false
	return nil
}

func (s *Store) writeFile(data []byte) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".ledger-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp ledger: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

func (s *Store) decode(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}

	if msg, ok := raw[streaksKey]; ok {
		if err := json.Unmarshal(msg, &s.streaks); err != nil {
			return fmt.Errorf("%w: %s: streaks: %v", ErrCorrupt, s.path, err)
		}
		delete(raw, streaksKey)
	}

	for date, msg := range raw {
		var day DayRecord
		if err := json.Unmarshal(msg, &day); err != nil {
			return fmt.Errorf("%w: %s: day %s: %v", ErrCorrupt, s.path, date, err)
		}
		for _, bucket := range day {
			if bucket.Apps == nil {
				bucket.Apps = map[string]float64{}
			}
		}
		s.days[date] = day
	}
	return nil
}

// DefaultPath returns ~/.config/lapse/ledger.json (per-OS user config dir).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "lapse", "ledger.json"), nil
}
