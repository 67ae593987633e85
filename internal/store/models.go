package store

// CategoryBucket is one category's accumulated time for one calendar day.
// TotalSeconds always equals the sum of Apps after a completed Record call.
type CategoryBucket struct {
	TotalSeconds float64            `json:"total_seconds"`
	Apps         map[string]float64 `json:"apps"`
	Projects     map[string]float64 `json:"projects,omitempty"`
}

func newBucket() *CategoryBucket {
	return &CategoryBucket{Apps: map[string]float64{}}
}

func (b *CategoryBucket) clone() *CategoryBucket {
	c := &CategoryBucket{
		TotalSeconds: b.TotalSeconds,
		Apps:         make(map[string]float64, len(b.Apps)),
	}
	for k, v := range b.Apps {
		c.Apps[k] = v
	}
	if b.Projects != nil {
		c.Projects = make(map[string]float64, len(b.Projects))
		for k, v := range b.Projects {
			c.Projects[k] = v
		}
	}
	return c
}

// DayRecord maps category → bucket for one YYYY-MM-DD date key.
type DayRecord map[string]*CategoryBucket

func (d DayRecord) clone() DayRecord {
	c := make(DayRecord, len(d))
	for k, v := range d {
		c[k] = v.clone()
	}
	return c
}

// TotalSeconds sums all category totals for the day.
func (d DayRecord) TotalSeconds() float64 {
	var total float64
	for _, b := range d {
		total += b.TotalSeconds
	}
	return total
}

// Streaks is the ledger of consecutive days on which all productive goals
// were met. LastDate is empty until the first evaluation.
type Streaks struct {
	Current  int    `json:"current"`
	Longest  int    `json:"longest"`
	LastDate string `json:"last_date"`
}

// Row is one tabular export row: a per-app total, or a per-project total
// when App is empty and Project is set.
type Row struct {
	Date     string
	Category string
	App      string
	Hours    float64
	Project  string
}
