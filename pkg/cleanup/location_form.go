package cleanup

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/soulinitiatives/cleanup/pkg/catalog"
)

// ErrNoLocationSelected rejects a location submission without any homestay
// or cleanup location.
var ErrNoLocationSelected = errors.New("select at least one homestay or location")

// LocationTotals are the derived totals of a LocationForm.
type LocationTotals struct {
	BagsHomestay int
	KgHomestay   decimal.Decimal
	BagsLocation int
	KgLocation   decimal.Decimal
}

// LocationForm collects bags and kilograms per homestay and per cleanup
// location. Both lists accept an "Other" free-text entry.
type LocationForm struct {
	homestays *tally
	locations *tally
}

// NewLocationForm returns an empty form over the homestay and location catalogs.
func NewLocationForm() *LocationForm {
	return &LocationForm{
		homestays: newTally(catalog.Homestays(), catalog.Other),
		locations: newTally(catalog.Locations(), catalog.Other),
	}
}

func (f *LocationForm) SelectHomestays(values []string) { f.homestays.selectValues(values) }
func (f *LocationForm) SetHomestayOther(text string)    { f.homestays.setOther(text) }
func (f *LocationForm) SelectLocations(values []string) { f.locations.selectValues(values) }
func (f *LocationForm) SetLocationOther(text string)    { f.locations.setOther(text) }

// HomestayKeys returns the effective homestay keys, free text included.
func (f *LocationForm) HomestayKeys() []string { return f.homestays.sel.Keys() }

// LocationKeys returns the effective location keys, free text included.
func (f *LocationForm) LocationKeys() []string { return f.locations.sel.Keys() }

func (f *LocationForm) SetHomestayBags(key, raw string) error { return f.homestays.setBags(key, raw) }
func (f *LocationForm) SetHomestayKg(key, raw string) error   { return f.homestays.setKg(key, raw) }
func (f *LocationForm) SetLocationBags(key, raw string) error { return f.locations.setBags(key, raw) }
func (f *LocationForm) SetLocationKg(key, raw string) error   { return f.locations.setKg(key, raw) }

// HomestayInputs returns copies of the live bag and kilogram inputs per homestay.
func (f *LocationForm) HomestayInputs() (bags, kg map[string]string) {
	return cloneStrings(f.homestays.bags), cloneStrings(f.homestays.kg)
}

// LocationInputs returns copies of the live bag and kilogram inputs per location.
func (f *LocationForm) LocationInputs() (bags, kg map[string]string) {
	return cloneStrings(f.locations.bags), cloneStrings(f.locations.kg)
}

// Totals sums the current inputs; unparseable entries count as zero.
func (f *LocationForm) Totals() LocationTotals {
	return LocationTotals{
		BagsHomestay: f.homestays.totalBags(),
		KgHomestay:   f.homestays.totalKg(),
		BagsLocation: f.locations.totalBags(),
		KgLocation:   f.locations.totalKg(),
	}
}

func (f *LocationForm) Table() string { return catalog.TableLocations }

func (f *LocationForm) Validate() error {
	if len(f.HomestayKeys()) == 0 && len(f.LocationKeys()) == 0 {
		return ErrNoLocationSelected
	}
	return nil
}

// Record builds the submission row.
func (f *LocationForm) Record(sessionID, collectedAt string) LocationRecord {
	totals := f.Totals()
	return LocationRecord{
		SessionID:         sessionID,
		CollectedAt:       collectedAt,
		Homestays:         f.HomestayKeys(),
		Locations:         f.LocationKeys(),
		HomestayBags:      f.homestays.bagsRecord(),
		HomestayKg:        f.homestays.kgRecord(),
		LocationBags:      f.locations.bagsRecord(),
		LocationKg:        f.locations.kgRecord(),
		TotalBagsHomestay: totals.BagsHomestay,
		TotalKgHomestay:   totals.KgHomestay.InexactFloat64(),
		TotalBagsLocation: totals.BagsLocation,
		TotalKgLocation:   totals.KgLocation.InexactFloat64(),
	}
}

func (f *LocationForm) Payload(sessionID, collectedAt string) any {
	return f.Record(sessionID, collectedAt)
}

func (f *LocationForm) Empty() bool {
	return f.homestays.empty() && f.locations.empty()
}

func (f *LocationForm) Reset() {
	f.homestays.reset()
	f.locations.reset()
}
