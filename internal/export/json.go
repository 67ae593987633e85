package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/lapse/internal/store"
)

type jsonExport struct {
	ExportedAt string    `json:"exported_at"`
	Count      int       `json:"count"`
	Rows       []jsonRow `json:"rows"`
}

type jsonRow struct {
	Date     string  `json:"date"`
	Category string  `json:"category"`
	App      string  `json:"app,omitempty"`
	Hours    float64 `json:"hours"`
	Project  string  `json:"project,omitempty"`
}

// ToJSON writes export rows as a single indented JSON document.
func ToJSON(rows []store.Row, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(rows),
	}

	for _, r := range rows {
		export.Rows = append(export.Rows, jsonRow{
			Date:     r.Date,
			Category: r.Category,
			App:      r.App,
			Hours:    r.Hours,
			Project:  r.Project,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
