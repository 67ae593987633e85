package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var (
	addProject string
	addDate    string
)

var addCmd = &cobra.Command{
	Use:   "add <app> <category> <minutes>",
	Short: "Record time by hand",
	Long: `Adds a manual entry to the ledger, for time spent away from the
keyboard (meetings, reading, whiteboarding). The date defaults to today.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("minutes must be a number: %w", err)
		}
		if addDate != "" {
			if _, err := time.Parse("2006-01-02", addDate); err != nil {
				return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
			}
		}

		st, _, err := open()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.ManualEntry(args[0], args[1], minutes, addProject, addDate); err != nil {
			return err
		}

		date := addDate
		if date == "" {
			date = time.Now().Format("2006-01-02")
		}
		fmt.Printf("Added %.0f minutes of %q (%s) on %s.\n", minutes, args[0], args[1], date)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addProject, "project", "p", "", "tag the entry with a project")
	addCmd.Flags().StringVar(&addDate, "date", "", "entry date, YYYY-MM-DD (default today)")
	rootCmd.AddCommand(addCmd)
}
