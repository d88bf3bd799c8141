package cleanup

import (
	"errors"
	"fmt"
	"maps"

	"github.com/shopspring/decimal"

	"github.com/soulinitiatives/cleanup/pkg/catalog"
)

var (
	// ErrFixedEndUse is returned when changing the end use of a trash type
	// whose outcome is fixed.
	ErrFixedEndUse = errors.New("end use is fixed for this trash type")

	// ErrUnknownEndUse is returned for an end use outside the catalog.
	ErrUnknownEndUse = errors.New("unknown end use")

	// ErrEmptySurvey rejects a combined survey with nothing selected.
	ErrEmptySurvey = errors.New("select at least one homestay, location or trash type")
)

// SurveyTotals are the derived totals of a SurveyForm.
type SurveyTotals struct {
	LocationTotals
	KgTrash decimal.Decimal
}

// SurveyForm is the single-page survey: homestays and locations with bags
// and kilograms, plus kilograms and end use per trash type.
type SurveyForm struct {
	homestays *tally
	locations *tally
	trash     *Selection
	trashKg   map[string]string
	endUse    map[string]string
}

// NewSurveyForm returns an empty combined survey.
func NewSurveyForm() *SurveyForm {
	return &SurveyForm{
		homestays: newTally(catalog.Homestays(), catalog.Other),
		locations: newTally(catalog.Locations(), catalog.Other),
		trash:     NewSelection(catalog.SurveyTrashKeys(), ""),
		trashKg:   map[string]string{},
		endUse:    map[string]string{},
	}
}

func (f *SurveyForm) SelectHomestays(values []string) { f.homestays.selectValues(values) }
func (f *SurveyForm) SetHomestayOther(text string)    { f.homestays.setOther(text) }
func (f *SurveyForm) SelectLocations(values []string) { f.locations.selectValues(values) }
func (f *SurveyForm) SetLocationOther(text string)    { f.locations.setOther(text) }

func (f *SurveyForm) HomestayKeys() []string { return f.homestays.sel.Keys() }
func (f *SurveyForm) LocationKeys() []string { return f.locations.sel.Keys() }

func (f *SurveyForm) SetHomestayBags(key, raw string) error { return f.homestays.setBags(key, raw) }
func (f *SurveyForm) SetHomestayKg(key, raw string) error   { return f.homestays.setKg(key, raw) }
func (f *SurveyForm) SetLocationBags(key, raw string) error { return f.locations.setBags(key, raw) }
func (f *SurveyForm) SetLocationKg(key, raw string) error   { return f.locations.setKg(key, raw) }

// SelectTrash replaces the trash-type selection. New types default to the
// disposed end use; fixed types are forced to their fixed value.
func (f *SurveyForm) SelectTrash(values []string) {
	f.trash.Set(values)
	keys := f.trash.Keys()
	f.trashKg = Reconcile(f.trashKg, keys, "")
	f.endUse = Reconcile(f.endUse, keys, catalog.EndUseDisposed)
	for _, k := range keys {
		if fixed := catalog.FixedEndUse(k); fixed != "" {
			f.endUse[k] = fixed
		}
	}
}

// TrashKeys returns the selected trash types.
func (f *SurveyForm) TrashKeys() []string { return f.trash.Keys() }

// SetTrashKg sets the weight of a selected trash type.
func (f *SurveyForm) SetTrashKg(key, raw string) error {
	if _, ok := f.trashKg[key]; !ok {
		return fmt.Errorf("kg for %q: %w", key, ErrUnknownKey)
	}
	f.trashKg[key] = SanitizeDecimalInput(raw)
	return nil
}

// SetEndUse chooses the end use of a selected trash type.
func (f *SurveyForm) SetEndUse(key, endUse string) error {
	if _, ok := f.endUse[key]; !ok {
		return fmt.Errorf("end use for %q: %w", key, ErrUnknownKey)
	}
	if catalog.FixedEndUse(key) != "" {
		return fmt.Errorf("end use for %q: %w", key, ErrFixedEndUse)
	}
	if !catalog.IsEndUse(endUse) {
		return fmt.Errorf("end use %q: %w", endUse, ErrUnknownEndUse)
	}
	f.endUse[key] = endUse
	return nil
}

// EndUse returns the end use of a selected trash type.
func (f *SurveyForm) EndUse(key string) string { return f.endUse[key] }

// TrashInputs returns a copy of the live kilogram inputs per trash type.
func (f *SurveyForm) TrashInputs() map[string]string { return maps.Clone(f.trashKg) }

func (f *SurveyForm) Totals() SurveyTotals {
	return SurveyTotals{
		LocationTotals: LocationTotals{
			BagsHomestay: f.homestays.totalBags(),
			KgHomestay:   f.homestays.totalKg(),
			BagsLocation: f.locations.totalBags(),
			KgLocation:   f.locations.totalKg(),
		},
		KgTrash: SumDecimals(mapValues(f.trashKg)),
	}
}

func (f *SurveyForm) Table() string { return catalog.TableSurveys }

func (f *SurveyForm) Validate() error {
	if len(f.HomestayKeys()) == 0 && len(f.LocationKeys()) == 0 && len(f.TrashKeys()) == 0 {
		return ErrEmptySurvey
	}
	return nil
}

// Record builds the submission row. Every selected trash type is included;
// an unparseable weight is sent as zero.
func (f *SurveyForm) Record(sessionID, collectedAt string) SurveyRecord {
	totals := f.Totals()
	details := make(map[string]TrashDetail, len(f.trashKg))
	for _, k := range f.trash.Keys() {
		kg, _ := ParseLocaleNumber(f.trashKg[k])
		endUse := catalog.FixedEndUse(k)
		if endUse == "" {
			endUse = f.endUse[k]
		}
		if endUse == "" {
			endUse = catalog.EndUseDisposed
		}
		details[k] = TrashDetail{Kg: kg, EndUse: endUse}
	}
	return SurveyRecord{
		SessionID:         sessionID,
		CollectedAt:       collectedAt,
		Homestays:         f.HomestayKeys(),
		Locations:         f.LocationKeys(),
		TrashTypes:        f.TrashKeys(),
		HomestayBags:      f.homestays.bagsRecord(),
		HomestayKg:        f.homestays.kgRecord(),
		LocationBags:      f.locations.bagsRecord(),
		LocationKg:        f.locations.kgRecord(),
		TrashDetails:      details,
		TotalBagsHomestay: totals.BagsHomestay,
		TotalKgHomestay:   totals.KgHomestay.InexactFloat64(),
		TotalBagsLocation: totals.BagsLocation,
		TotalKgLocation:   totals.KgLocation.InexactFloat64(),
		TotalKgTrash:      totals.KgTrash.InexactFloat64(),
	}
}

func (f *SurveyForm) Payload(sessionID, collectedAt string) any {
	return f.Record(sessionID, collectedAt)
}

func (f *SurveyForm) Empty() bool {
	return f.homestays.empty() && f.locations.empty() && len(f.trash.Selected()) == 0
}

func (f *SurveyForm) Reset() {
	f.homestays.reset()
	f.locations.reset()
	f.trash.Clear()
	f.trashKg = map[string]string{}
	f.endUse = map[string]string{}
}
