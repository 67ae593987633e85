package store

// GoalProgress computes percent-of-goal per category for one day's record.
// Categories with a goal but no tracked time report 0. Progress is not
// capped at 100.
func GoalProgress(day DayRecord, goals map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(goals))
	for category, goal := range goals {
		if goal <= 0 {
			continue
		}
		var hours float64
		if bucket, ok := day[category]; ok {
			hours = bucket.TotalSeconds / 3600
		}
		out[category] = hours / goal * 100
	}
	return out
}

// ProductivityScore returns the share of tracked time spent in productive
// categories, in percent. An empty day scores 0.
func ProductivityScore(day DayRecord, productive []string) float64 {
	total := day.TotalSeconds()
	if total == 0 {
		return 0
	}
	var prod float64
	for _, category := range productive {
		if bucket, ok := day[category]; ok {
			prod += bucket.TotalSeconds
		}
	}
	return prod / total * 100
}
