package store

import "time"

// UpdateStreaks evaluates yesterday's goals and rolls the streak ledger
// forward. Run once at loop start; calling it again on the same day is a
// no-op (guarded by LastDate), so it is safe to re-run.
//
// "Goals met" means every category that is both productive and has a
// configured goal reached its hours yesterday. A goal with no tracked
// data counts as zero hours and fails. With no applicable goals at all
// the day counts as not met: a streak of vacuous successes is
// meaningless.
func (s *Store) UpdateStreaks(today time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	todayKey := today.Format(dateLayout)
	if s.streaks.LastDate == todayKey {
		return nil
	}

	yesterdayKey := today.AddDate(0, 0, -1).Format(dateLayout)
	day := s.days[yesterdayKey]

	met := false
	for _, category := range s.cfg.ProductiveCategories {
		goal, ok := s.cfg.Goals[category]
		if !ok {
			continue
		}
		var actual float64
		if day != nil {
			if bucket, ok := day[category]; ok {
				actual = bucket.TotalSeconds / 3600
			}
		}
		if actual < goal {
			met = false
			break
		}
		met = true
	}

	prev := s.streaks.LastDate
	if met {
		if prev == yesterdayKey {
			s.streaks.Current++
		} else {
			s.streaks.Current = 1
		}
		if s.streaks.Current > s.streaks.Longest {
			s.streaks.Longest = s.streaks.Current
		}
	} else {
		s.streaks.Current = 0
	}
	s.streaks.LastDate = todayKey

	return s.persistLocked()
}
