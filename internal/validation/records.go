package validation

import (
	"fmt"
	"sort"

	"github.com/soulinitiatives/cleanup/pkg/catalog"
	"github.com/soulinitiatives/cleanup/pkg/cleanup"
)

func validateCommon(c *Collector, sessionID, collectedAt string) {
	if sessionID != "" {
		c.Add(ValidateUUID("session_id", sessionID))
	}
	c.Add(ValidateTimestamp("collected_at", collectedAt))
}

func validateLabels(c *Collector, field string, values []string) {
	for i, v := range values {
		ValidateLabel(c, fmt.Sprintf("%s[%d]", field, i), v)
	}
}

func validateKeys(c *Collector, field string, values []string, ok func(string) bool, allowed []string) {
	for i, v := range values {
		if !ok(v) {
			c.Add(ValidateEnum(fmt.Sprintf("%s[%d]", field, i), v, allowed))
		}
	}
}

func validateCounts(c *Collector, field string, m map[string]int) {
	for _, k := range sortedKeys(m) {
		c.Add(ValidateNonNegative(fmt.Sprintf("%s.%s", field, k), float64(m[k])))
	}
}

func validateWeights(c *Collector, field string, m map[string]float64) {
	for _, k := range sortedKeys(m) {
		c.Add(ValidateNonNegative(fmt.Sprintf("%s.%s", field, k), m[k]))
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ValidateLocationRecord validates a location submission. Homestay and
// location names may be typed in, so only their shape is checked.
func ValidateLocationRecord(rec cleanup.LocationRecord) []ValidationError {
	var c Collector
	validateCommon(&c, rec.SessionID, rec.CollectedAt)
	validateLabels(&c, "homestays", rec.Homestays)
	validateLabels(&c, "locations", rec.Locations)
	validateCounts(&c, "homestay_bags", rec.HomestayBags)
	validateWeights(&c, "homestay_kg", rec.HomestayKg)
	validateCounts(&c, "location_bags", rec.LocationBags)
	validateWeights(&c, "location_kg", rec.LocationKg)
	c.Add(ValidateNonNegative("total_bags_homestay", float64(rec.TotalBagsHomestay)))
	c.Add(ValidateNonNegative("total_kg_homestay", rec.TotalKgHomestay))
	c.Add(ValidateNonNegative("total_bags_location", float64(rec.TotalBagsLocation)))
	c.Add(ValidateNonNegative("total_kg_location", rec.TotalKgLocation))
	return c.Errors()
}

// ValidateTrashRecord validates a trash sorting submission.
func ValidateTrashRecord(rec cleanup.TrashRecord) []ValidationError {
	var c Collector
	validateCommon(&c, rec.SessionID, rec.CollectedAt)
	validateKeys(&c, "trash_types", rec.TrashTypes, catalog.IsTrashType, catalog.TrashTypes())
	if rec.OtherTrashLabel != nil {
		ValidateLabel(&c, "other_trash_label", *rec.OtherTrashLabel)
	}
	for _, k := range sortedKeys(rec.BagsKg) {
		for i, kg := range rec.BagsKg[k] {
			c.Add(ValidateNonNegative(fmt.Sprintf("bags_kg.%s[%d]", k, i), kg))
		}
	}
	validateWeights(&c, "totals_kg_by_type", rec.TotalsKgByType)
	validateCounts(&c, "bags_count_by_type", rec.BagsCountByType)
	c.Add(ValidateNonNegative("total_bags_trash", float64(rec.TotalBagsTrash)))
	c.Add(ValidateNonNegative("total_kg_trash", rec.TotalKgTrash))
	return c.Errors()
}

// ValidateDestinationRecord validates a destination submission.
func ValidateDestinationRecord(rec cleanup.DestinationRecord) []ValidationError {
	var c Collector
	validateCommon(&c, rec.SessionID, rec.CollectedAt)
	for _, k := range sortedKeys(rec.DestinationDetails) {
		d := rec.DestinationDetails[k]
		field := "destination_details." + k
		if !catalog.IsDestinationTrash(k) {
			c.Add(ValidateEnum(field, k, catalog.DestinationTrashTypes()))
		}
		c.Add(ValidateNonNegative(field+".bags", float64(d.Bags)))
		c.Add(ValidateEnum(field+".destination", d.Destination, catalog.Destinations()))
	}
	c.Add(ValidateNonNegative("total_bags", float64(rec.TotalBags)))
	return c.Errors()
}

// ValidateSurveyRecord validates a combined survey. Fixed end uses must
// match the catalog.
func ValidateSurveyRecord(rec cleanup.SurveyRecord) []ValidationError {
	var c Collector
	validateCommon(&c, rec.SessionID, rec.CollectedAt)
	validateLabels(&c, "homestays", rec.Homestays)
	validateLabels(&c, "locations", rec.Locations)
	validateKeys(&c, "trash_types", rec.TrashTypes, catalog.IsSurveyTrashType, catalog.SurveyTrashKeys())
	validateCounts(&c, "homestay_bags", rec.HomestayBags)
	validateWeights(&c, "homestay_kg", rec.HomestayKg)
	validateCounts(&c, "location_bags", rec.LocationBags)
	validateWeights(&c, "location_kg", rec.LocationKg)
	for _, k := range sortedKeys(rec.TrashDetails) {
		d := rec.TrashDetails[k]
		field := "trash_details." + k
		if !catalog.IsSurveyTrashType(k) {
			c.Add(ValidateEnum(field, k, catalog.SurveyTrashKeys()))
		}
		c.Add(ValidateNonNegative(field+".kg", d.Kg))
		if fixed := catalog.FixedEndUse(k); fixed != "" && d.EndUse != fixed {
			c.Add(&ValidationError{Field: field + ".end_use", Message: fmt.Sprintf("must be %s", fixed)})
			continue
		}
		c.Add(ValidateEnum(field+".end_use", d.EndUse, catalog.EndUses()))
	}
	c.Add(ValidateNonNegative("total_bags_homestay", float64(rec.TotalBagsHomestay)))
	c.Add(ValidateNonNegative("total_kg_homestay", rec.TotalKgHomestay))
	c.Add(ValidateNonNegative("total_bags_location", float64(rec.TotalBagsLocation)))
	c.Add(ValidateNonNegative("total_kg_location", rec.TotalKgLocation))
	c.Add(ValidateNonNegative("total_kg_trash", rec.TotalKgTrash))
	return c.Errors()
}
