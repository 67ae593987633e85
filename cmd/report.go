package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/lapse/internal/config"
	"github.com/sadopc/lapse/internal/store"
)

var reportWeek bool

var reportCmd = &cobra.Command{
	Use:   "report [date]",
	Short: "Show tracked time for a day or week",
	Long: `Shows per-category totals for a date (default today), or for the
current week with --week. Dates are YYYY-MM-DD.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, cfg, err := open()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := gate(cfg); err != nil {
			return err
		}

		if reportWeek {
			printWeek(st)
			return nil
		}

		date := time.Now().Format("2006-01-02")
		if len(args) == 1 {
			if _, err := time.Parse("2006-01-02", args[0]); err != nil {
				return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
			}
			date = args[0]
		}
		printDay(st, cfg, date)
		return nil
	},
}

func init() {
	reportCmd.Flags().BoolVarP(&reportWeek, "week", "w", false, "show the current week")
	rootCmd.AddCommand(reportCmd)
}

func printDay(st *store.Store, cfg *config.Config, date string) {
	day := st.Snapshot(date)
	if len(day) == 0 {
		fmt.Printf("No data tracked for %s.\n", date)
		return
	}

	total := day.TotalSeconds()
	fmt.Printf("Time tracking for %s\n\n", date)

	for _, category := range categoriesByTotal(day) {
		bucket := day[category]
		hours := bucket.TotalSeconds / 3600
		pct := bucket.TotalSeconds / total * 100

		goalNote := ""
		if goal, ok := cfg.Goals[category]; ok && goal > 0 {
			if hours >= goal {
				goalNote = fmt.Sprintf("  ✓ goal %gh", goal)
			} else {
				goalNote = fmt.Sprintf("  (goal %gh, %.1fh remaining)", goal, goal-hours)
			}
		}
		fmt.Printf("%s: %.2fh (%.1f%%)%s\n", category, hours, pct, goalNote)

		for i, app := range appsByTotal(bucket.Apps) {
			if i == 5 {
				fmt.Printf("  ... and %d more apps\n", len(bucket.Apps)-5)
				break
			}
			fmt.Printf("  • %s: %.2fh\n", app, bucket.Apps[app]/3600)
		}
		fmt.Println()
	}

	fmt.Printf("Total tracked: %.2f hours\n", total/3600)
	if score := store.ProductivityScore(day, cfg.ProductiveCategories); total > 0 {
		fmt.Printf("Productivity score: %.0f%%\n", score)
	}
	if s := st.Streaks(); s.Current > 0 {
		fmt.Printf("Streak: %d days (longest %d)\n", s.Current, s.Longest)
	}
}

func printWeek(st *store.Store) {
	now := time.Now()
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	start := now.AddDate(0, 0, 1-weekday)
	from := start.Format("2006-01-02")
	to := start.AddDate(0, 0, 6).Format("2006-01-02")

	days := st.Range(from, to)
	if len(days) == 0 {
		fmt.Println("No data tracked this week.")
		return
	}

	// Collapse the week into per-category totals with per-app detail.
	totals := map[string]*store.CategoryBucket{}
	for _, day := range days {
		for category, bucket := range day {
			agg, ok := totals[category]
			if !ok {
				agg = &store.CategoryBucket{Apps: map[string]float64{}}
				totals[category] = agg
			}
			agg.TotalSeconds += bucket.TotalSeconds
			for app, secs := range bucket.Apps {
				agg.Apps[app] += secs
			}
		}
	}

	var weekTotal float64
	for _, b := range totals {
		weekTotal += b.TotalSeconds
	}

	fmt.Printf("Weekly summary (week of %s)\n\n", from)
	for _, category := range categoriesByTotal(totals) {
		bucket := totals[category]
		hours := bucket.TotalSeconds / 3600
		pct := bucket.TotalSeconds / weekTotal * 100
		fmt.Printf("%s: %.2fh (%.1f%%)\n", category, hours, pct)
		for i, app := range appsByTotal(bucket.Apps) {
			if i == 3 {
				break
			}
			fmt.Printf("  • %s: %.2fh\n", app, bucket.Apps[app]/3600)
		}
	}
	fmt.Printf("\nTotal tracked: %.2f hours\n", weekTotal/3600)
}

func categoriesByTotal(day map[string]*store.CategoryBucket) []string {
	categories := make([]string, 0, len(day))
	for c := range day {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		if day[categories[i]].TotalSeconds != day[categories[j]].TotalSeconds {
			return day[categories[i]].TotalSeconds > day[categories[j]].TotalSeconds
		}
		return categories[i] < categories[j]
	})
	return categories
}

func appsByTotal(apps map[string]float64) []string {
	names := make([]string, 0, len(apps))
	for a := range apps {
		names = append(names, a)
	}
	sort.Slice(names, func(i, j int) bool {
		if apps[names[i]] != apps[names[j]] {
			return apps[names[i]] > apps[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}
