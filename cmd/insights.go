package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sadopc/lapse/internal/store"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Trends over the last tracked days",
	Long: `Averages the last seven tracked days (not calendar days), picks the
most productive one, and lists the apps you spent the most time in.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, cfg, err := open()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := gate(cfg); err != nil {
			return err
		}

		dates := st.Dates()
		if len(dates) == 0 {
			fmt.Println("No data tracked yet.")
			return nil
		}
		if len(dates) > 7 {
			dates = dates[len(dates)-7:]
		}

		perCategory := map[string]float64{}
		perApp := map[string]float64{}
		bestDate := ""
		bestScore := -1.0

		for _, date := range dates {
			day := st.Snapshot(date)
			for category, bucket := range day {
				perCategory[category] += bucket.TotalSeconds
				for app, secs := range bucket.Apps {
					perApp[app] += secs
				}
			}
			if score := store.ProductivityScore(day, cfg.ProductiveCategories); score > bestScore {
				bestScore = score
				bestDate = date
			}
		}

		n := float64(len(dates))
		fmt.Printf("Insights over your last %d tracked days\n\n", len(dates))

		fmt.Println("Daily averages:")
		categories := make([]string, 0, len(perCategory))
		for c := range perCategory {
			categories = append(categories, c)
		}
		sort.Slice(categories, func(i, j int) bool {
			return perCategory[categories[i]] > perCategory[categories[j]]
		})
		for _, category := range categories {
			fmt.Printf("  %s: %.2fh/day\n", category, perCategory[category]/n/3600)
		}

		if bestDate != "" {
			fmt.Printf("\nMost productive day: %s (%.0f%% productive)\n", bestDate, bestScore)
		}

		fmt.Println("\nTop apps:")
		apps := appsByTotal(perApp)
		for i, app := range apps {
			if i == 5 {
				break
			}
			fmt.Printf("  %d. %s: %.2fh\n", i+1, app, perApp[app]/3600)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(insightsCmd)
}
