package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/lapse/internal/export"
)

var (
	exportFormat string
	exportOut    string
	exportFrom   string
	exportTo     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the ledger to CSV, JSON or SQLite",
	RunE: func(cmd *cobra.Command, args []string) error {
		ext, ok := map[string]string{"csv": "csv", "json": "json", "sqlite": "db"}[exportFormat]
		if !ok {
			return fmt.Errorf("unknown format %q (csv, json or sqlite)", exportFormat)
		}
		for _, d := range []string{exportFrom, exportTo} {
			if d == "" {
				continue
			}
			if _, err := time.Parse("2006-01-02", d); err != nil {
				return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
			}
		}

		st, cfg, err := open()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := gate(cfg); err != nil {
			return err
		}

		rows := st.Rows(exportFrom, exportTo)
		if len(rows) == 0 {
			fmt.Println("Nothing to export.")
			return nil
		}

		path := exportOut
		if path == "" {
			path = fmt.Sprintf("lapse-export-%s.%s", time.Now().Format("2006-01-02"), ext)
		}

		switch exportFormat {
		case "csv":
			err = export.ToCSV(rows, path)
		case "json":
			err = export.ToJSON(rows, path)
		case "sqlite":
			err = export.ToSQLite(rows, path)
		}
		if err != nil {
			return err
		}

		fmt.Printf("Exported %d rows to %s\n", len(rows), path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "output format: csv, json or sqlite")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output path (default lapse-export-<date>.<ext>)")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "first date to include, YYYY-MM-DD")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "last date to include, YYYY-MM-DD")
	rootCmd.AddCommand(exportCmd)
}
