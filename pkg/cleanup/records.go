package cleanup

// LocationRecord is the row sent to cleanup_location_entries.
type LocationRecord struct {
	SessionID   string `json:"session_id,omitempty"`
	CollectedAt string `json:"collected_at"`

	Homestays []string `json:"homestays"`
	Locations []string `json:"locations"`

	HomestayBags map[string]int     `json:"homestay_bags"`
	HomestayKg   map[string]float64 `json:"homestay_kg"`
	LocationBags map[string]int     `json:"location_bags"`
	LocationKg   map[string]float64 `json:"location_kg"`

	TotalBagsHomestay int     `json:"total_bags_homestay"`
	TotalKgHomestay   float64 `json:"total_kg_homestay"`
	TotalBagsLocation int     `json:"total_bags_location"`
	TotalKgLocation   float64 `json:"total_kg_location"`
}

// TrashRecord is the row sent to cleanup_trash_entries.
type TrashRecord struct {
	SessionID   string `json:"session_id,omitempty"`
	CollectedAt string `json:"collected_at"`

	TrashTypes      []string `json:"trash_types"`
	OtherTrashLabel *string  `json:"other_trash_label"`

	BagsKg          map[string][]float64 `json:"bags_kg"`
	TotalsKgByType  map[string]float64   `json:"totals_kg_by_type"`
	BagsCountByType map[string]int       `json:"bags_count_by_type"`

	TotalBagsTrash int     `json:"total_bags_trash"`
	TotalKgTrash   float64 `json:"total_kg_trash"`
}

// DestinationDetail is one trash type's disposition in a DestinationRecord.
type DestinationDetail struct {
	Bags        int    `json:"bags"`
	Destination string `json:"destination"`
}

// DestinationRecord is the row sent to cleanup_destination_surveys.
type DestinationRecord struct {
	SessionID   string `json:"session_id,omitempty"`
	CollectedAt string `json:"collected_at"`

	DestinationDetails map[string]DestinationDetail `json:"destination_details"`
	TotalBags          int                          `json:"total_bags"`
}

// TrashDetail is one trash type's weight and end use in a SurveyRecord.
type TrashDetail struct {
	Kg     float64 `json:"kg"`
	EndUse string  `json:"end_use"`
}

// SurveyRecord is the row sent to cleanup_surveys by the combined survey.
type SurveyRecord struct {
	SessionID   string `json:"session_id,omitempty"`
	CollectedAt string `json:"collected_at"`

	Homestays  []string `json:"homestays"`
	Locations  []string `json:"locations"`
	TrashTypes []string `json:"trash_types"`

	HomestayBags map[string]int     `json:"homestay_bags"`
	HomestayKg   map[string]float64 `json:"homestay_kg"`
	LocationBags map[string]int     `json:"location_bags"`
	LocationKg   map[string]float64 `json:"location_kg"`

	TrashDetails map[string]TrashDetail `json:"trash_details"`

	TotalBagsHomestay int     `json:"total_bags_homestay"`
	TotalKgHomestay   float64 `json:"total_kg_homestay"`
	TotalBagsLocation int     `json:"total_bags_location"`
	TotalKgLocation   float64 `json:"total_kg_location"`
	TotalKgTrash      float64 `json:"total_kg_trash"`
}
