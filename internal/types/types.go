package types

import (
	"encoding/json"
	"time"

	"github.com/soulinitiatives/cleanup/pkg/cleanup"
)

// Session groups the submissions of one app run.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// LocationEntry is a stored location submission.
type LocationEntry struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	cleanup.LocationRecord
}

// TrashEntry is a stored trash sorting submission.
type TrashEntry struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	cleanup.TrashRecord
}

// DestinationEntry is a stored destination submission.
type DestinationEntry struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	cleanup.DestinationRecord
}

// SurveyEntry is a stored combined survey.
type SurveyEntry struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	cleanup.SurveyRecord
}

// Row is one projected row of a diagnostic select. JSON columns are kept
// as raw JSON.
type Row map[string]any

// StoreStats holds row counts per table.
type StoreStats struct {
	Sessions           int64      `json:"sessions"`
	LocationEntries    int64      `json:"location_entries"`
	TrashEntries       int64      `json:"trash_entries"`
	DestinationSurveys int64      `json:"destination_surveys"`
	Surveys            int64      `json:"surveys"`
	LastSnapshot       *time.Time `json:"last_snapshot,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status        string     `json:"status"`
	Version       string     `json:"version"`
	SchemaVersion int64      `json:"schema_version"`
	Stats         StoreStats `json:"stats"`
}

// TrashEntry maps are sent as {} rather than null when empty.
func (e TrashEntry) MarshalJSON() ([]byte, error) {
	if e.BagsKg == nil {
		e.BagsKg = map[string][]float64{}
	}
	if e.TotalsKgByType == nil {
		e.TotalsKgByType = map[string]float64{}
	}
	if e.BagsCountByType == nil {
		e.BagsCountByType = map[string]int{}
	}
	if e.TrashTypes == nil {
		e.TrashTypes = []string{}
	}
	type Alias TrashEntry
	return json.Marshal(Alias(e))
}
