package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/lapse/internal/store"
)

// ToCSV writes export rows as a CSV file with one row per (date,
// category, app) plus per-project totals.
func ToCSV(rows []store.Row, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"Date", "Category", "App", "Hours", "Project"}); err != nil {
		return err
	}

	for _, r := range rows {
		record := []string{
			r.Date,
			r.Category,
			r.App,
			strconv.FormatFloat(r.Hours, 'f', -1, 64),
			r.Project,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	return w.Error()
}
