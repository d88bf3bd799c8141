package cleanup

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/soulinitiatives/cleanup/pkg/catalog"
)

// MaxBagsPerType bounds the bag count of one trash type.
const MaxBagsPerType = 1000

// ErrTooManyBags is returned when a count exceeds MaxBagsPerType.
var ErrTooManyBags = errors.New("too many bags")

// TrashComputed holds the values derived from a TrashForm.
type TrashComputed struct {
	BagsKg          map[string][]decimal.Decimal
	TotalsKgByType  map[string]decimal.Decimal
	BagsCountByType map[string]int
	TotalBags       int
	TotalKg         decimal.Decimal
}

// TrashForm records sorted trash: a bag count per selected type and one
// kilogram entry per bag. The per-bag slice for a type always has exactly
// count entries.
type TrashForm struct {
	types      *Selection
	otherLabel string
	counts     map[string]int
	bagKg      map[string][]string
}

// NewTrashForm returns an empty trash form.
func NewTrashForm() *TrashForm {
	return &TrashForm{
		types:  NewSelection(catalog.TrashTypes(), ""),
		counts: map[string]int{},
		bagKg:  map[string][]string{},
	}
}

// SelectTypes replaces the trash-type selection. Counts for kept types are
// preserved, new types start at zero bags.
func (f *TrashForm) SelectTypes(values []string) {
	f.types.Set(values)
	keys := f.types.Keys()
	f.counts = Reconcile(f.counts, keys, 0)
	next := make(map[string][]string, len(keys))
	for _, k := range keys {
		next[k] = ResizeSlots(f.bagKg[k], f.counts[k])
	}
	f.bagKg = next
	if !f.types.Has(catalog.TrashOther) {
		f.otherLabel = ""
	}
}

// Types returns the selected trash types.
func (f *TrashForm) Types() []string { return f.types.Keys() }

// SetOtherLabel names the "other" trash type. It is ignored unless "other"
// is selected.
func (f *TrashForm) SetOtherLabel(label string) {
	if f.types.Has(catalog.TrashOther) {
		f.otherLabel = label
	}
}

// OtherLabel returns the trimmed label, or nil when "other" is not selected
// or the label is blank.
func (f *TrashForm) OtherLabel() *string {
	if !f.types.Has(catalog.TrashOther) {
		return nil
	}
	l := strings.TrimSpace(f.otherLabel)
	if l == "" {
		return nil
	}
	return &l
}

// Count returns the bag count for key.
func (f *TrashForm) Count(key string) int { return f.counts[key] }

// SetCount sets the bag count for a selected type and resizes its per-bag
// entries. Negative counts clamp to zero.
func (f *TrashForm) SetCount(key string, n int) error {
	if _, ok := f.counts[key]; !ok {
		return fmt.Errorf("count for %q: %w", key, ErrUnknownKey)
	}
	if n > MaxBagsPerType {
		return fmt.Errorf("count %d for %q: %w (max %d)", n, key, ErrTooManyBags, MaxBagsPerType)
	}
	n = max(n, 0)
	f.counts[key] = n
	f.bagKg[key] = ResizeSlots(f.bagKg[key], n)
	return nil
}

// Increment adds one bag to key.
func (f *TrashForm) Increment(key string) error {
	return f.SetCount(key, f.counts[key]+1)
}

// Decrement removes one bag from key, never going below zero.
func (f *TrashForm) Decrement(key string) error {
	return f.SetCount(key, f.counts[key]-1)
}

// SetBagKg sets the weight of bag i (zero-based) of key.
func (f *TrashForm) SetBagKg(key string, i int, raw string) error {
	slots, ok := f.bagKg[key]
	if !ok {
		return fmt.Errorf("bag kg for %q: %w", key, ErrUnknownKey)
	}
	if i < 0 || i >= len(slots) {
		return fmt.Errorf("bag %d of %q: index out of range [0,%d)", i, key, len(slots))
	}
	slots[i] = SanitizeDecimalInput(raw)
	return nil
}

// BagKgInputs returns a copy of the per-bag entries of key.
func (f *TrashForm) BagKgInputs(key string) []string {
	return slices.Clone(f.bagKg[key])
}

// Computed derives per-type weights and totals. Blank or unparseable bag
// entries are left out of the weight lists.
func (f *TrashForm) Computed() TrashComputed {
	c := TrashComputed{
		BagsKg:          map[string][]decimal.Decimal{},
		TotalsKgByType:  map[string]decimal.Decimal{},
		BagsCountByType: map[string]int{},
		TotalKg:         decimal.Zero,
	}
	for _, k := range f.types.Keys() {
		count := f.counts[k]
		c.BagsCountByType[k] = count
		c.TotalBags += count

		weights := []decimal.Decimal{}
		sum := decimal.Zero
		for _, in := range ResizeSlots(f.bagKg[k], count) {
			if d, ok := ParseLocaleDecimal(in); ok {
				weights = append(weights, d)
				sum = sum.Add(d)
			}
		}
		c.BagsKg[k] = weights
		c.TotalsKgByType[k] = sum
		c.TotalKg = c.TotalKg.Add(sum)
	}
	return c
}

func (f *TrashForm) Table() string { return catalog.TableTrash }

// Validate accepts any state; an empty sorting round is a valid report.
func (f *TrashForm) Validate() error { return nil }

// Record builds the submission row.
func (f *TrashForm) Record(sessionID, collectedAt string) TrashRecord {
	c := f.Computed()
	rec := TrashRecord{
		SessionID:       sessionID,
		CollectedAt:     collectedAt,
		TrashTypes:      f.types.Keys(),
		OtherTrashLabel: f.OtherLabel(),
		BagsKg:          make(map[string][]float64, len(c.BagsKg)),
		TotalsKgByType:  make(map[string]float64, len(c.TotalsKgByType)),
		BagsCountByType: c.BagsCountByType,
		TotalBagsTrash:  c.TotalBags,
		TotalKgTrash:    c.TotalKg.InexactFloat64(),
	}
	for k, ws := range c.BagsKg {
		fs := make([]float64, len(ws))
		for i, w := range ws {
			fs[i] = w.InexactFloat64()
		}
		rec.BagsKg[k] = fs
	}
	for k, v := range c.TotalsKgByType {
		rec.TotalsKgByType[k] = v.InexactFloat64()
	}
	return rec
}

func (f *TrashForm) Payload(sessionID, collectedAt string) any {
	return f.Record(sessionID, collectedAt)
}

func (f *TrashForm) Empty() bool {
	return len(f.types.Selected()) == 0
}

func (f *TrashForm) Reset() {
	f.types.Clear()
	f.otherLabel = ""
	f.counts = map[string]int{}
	f.bagKg = map[string][]string{}
}
