// Package catalog holds the fixed option lists shared by the cleanup
// client and the backend: homestays, cleanup locations, trash types,
// destinations and end uses, plus the backend table names.
package catalog

import (
	"slices"
	"strings"
)

// Backend table and RPC names.
const (
	TableSessions     = "cleanup_sessions"
	TableLocations    = "cleanup_location_entries"
	TableTrash        = "cleanup_trash_entries"
	TableDestinations = "cleanup_destination_surveys"
	TableSurveys      = "cleanup_surveys"

	RPCAnalytics = "cleanup_analytics"
)

// DefaultTimezone is the zone analytics buckets are computed in.
const DefaultTimezone = "Asia/Jayapura"

// CollectedAtOffsetMinutes is the fixed UTC offset (GMT+9) stamped on submissions.
const CollectedAtOffsetMinutes = 9 * 60

// Other is the selection sentinel that enables a free-text entry.
const Other = "Other"

// TrashOther is the trash-type key whose label is typed by the user.
const TrashOther = "other"

var homestays = []string{"Yenbuba", "Bongkso", "Mongkor", "Paparissa", "Kri"}

var locations = []string{"Yenbeser", "Mioskun", "Merpati", "Keruwo", "Kri", "Yenbuba", "Koi"}

// destinationTrashTypes is the sorting list without the free-text entry.
var destinationTrashTypes = []string{
	"sachets_soft_plastics",
	"ropes",
	"styrofoam",
	"pop_mie",
	"medium_plastics_non_renewable",
	"medium_plastics_renewable",
	"hard_plastics",
	"clothing",
	"metal_electronics",
	"aqua_cups",
	"carton_paper",
	"plastic_bottles",
	"sandals",
	"rice_bags",
}

// Destination keys.
const (
	DestinationLandfill   = "landfill"
	DestinationBankSampah = "bank_sampah"
	DestinationKri        = "kri"
)

var destinations = []string{DestinationLandfill, DestinationBankSampah, DestinationKri}

// End-use keys.
const (
	EndUseRecycled = "recycled"
	EndUseDisposed = "disposed"
	EndUseReused   = "reused"
)

var endUses = []string{EndUseRecycled, EndUseDisposed, EndUseReused}

// SurveyTrashType is a trash type offered by the combined survey.
// FixedEndUse is non-empty when the outcome is not user-selectable.
type SurveyTrashType struct {
	Key         string
	FixedEndUse string
}

var surveyTrashTypes = []SurveyTrashType{
	{Key: "sachets", FixedEndUse: EndUseDisposed},
	{Key: "ropes", FixedEndUse: EndUseDisposed},
	{Key: "styrofoam", FixedEndUse: EndUseDisposed},
	{Key: "pop_mie", FixedEndUse: EndUseDisposed},
	{Key: "clothing", FixedEndUse: EndUseDisposed},
	{Key: "rice_bags", FixedEndUse: EndUseDisposed},
	{Key: "soft_plastics", FixedEndUse: EndUseDisposed},

	{Key: "medium_plastics_non_renewable"},
	{Key: "medium_plastics_renewable"},
	{Key: "hard_plastics"},
	{Key: "metal_electronics"},
	{Key: "aqua_cups"},
	{Key: "carton_paper"},
	{Key: "plastic_bottles"},
	{Key: "sandals"},
}

// Homestays returns the homestay catalog in display order.
func Homestays() []string { return slices.Clone(homestays) }

// Locations returns the cleanup location catalog in display order.
func Locations() []string { return slices.Clone(locations) }

// TrashTypes returns the sorting catalog, ending with the free-text "other" key.
func TrashTypes() []string {
	return append(slices.Clone(destinationTrashTypes), TrashOther)
}

// DestinationTrashTypes returns the trash types tracked by the destination form.
func DestinationTrashTypes() []string { return slices.Clone(destinationTrashTypes) }

// Destinations returns the destination keys.
func Destinations() []string { return slices.Clone(destinations) }

// EndUses returns the end-use keys.
func EndUses() []string { return slices.Clone(endUses) }

// SurveyTrashTypes returns the combined-survey trash catalog.
func SurveyTrashTypes() []SurveyTrashType { return slices.Clone(surveyTrashTypes) }

// SurveyTrashKeys returns the keys of SurveyTrashTypes.
func SurveyTrashKeys() []string {
	keys := make([]string, len(surveyTrashTypes))
	for i, t := range surveyTrashTypes {
		keys[i] = t.Key
	}
	return keys
}

func IsHomestay(v string) bool         { return slices.Contains(homestays, v) }
func IsLocation(v string) bool         { return slices.Contains(locations, v) }
func IsTrashType(v string) bool        { return v == TrashOther || slices.Contains(destinationTrashTypes, v) }
func IsDestinationTrash(v string) bool { return slices.Contains(destinationTrashTypes, v) }
func IsDestination(v string) bool      { return slices.Contains(destinations, v) }
func IsEndUse(v string) bool           { return slices.Contains(endUses, v) }

// IsSurveyTrashType reports whether v is a combined-survey trash key.
func IsSurveyTrashType(v string) bool {
	for _, t := range surveyTrashTypes {
		if t.Key == v {
			return true
		}
	}
	return false
}

// FixedEndUse returns the server-invariant end use for key, or "" when the
// user chooses it.
func FixedEndUse(key string) string {
	for _, t := range surveyTrashTypes {
		if t.Key == key {
			return t.FixedEndUse
		}
	}
	return ""
}

// Tables returns every insertable table name.
func Tables() []string {
	return []string{TableSessions, TableLocations, TableTrash, TableDestinations, TableSurveys}
}

// Label turns a catalog key into a display label ("pop_mie" -> "Pop mie").
// Homestay and location names are already display labels.
func Label(key string) string {
	if key == "" {
		return ""
	}
	s := strings.ReplaceAll(key, "_", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}
