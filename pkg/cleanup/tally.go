package cleanup

import (
	"errors"
	"fmt"
	"maps"

	"github.com/shopspring/decimal"
)

// ErrUnknownKey is returned when a value is entered for a key that is not
// currently selected.
var ErrUnknownKey = errors.New("key is not selected")

// tally is a selection with parallel bag-count and kilogram inputs, one per
// selected key. The input maps always have exactly the selection's keys.
type tally struct {
	sel  *Selection
	bags map[string]string
	kg   map[string]string
}

func newTally(catalog []string, other string) *tally {
	return &tally{
		sel:  NewSelection(catalog, other),
		bags: map[string]string{},
		kg:   map[string]string{},
	}
}

func (t *tally) reconcile() {
	keys := t.sel.Keys()
	t.bags = Reconcile(t.bags, keys, "")
	t.kg = Reconcile(t.kg, keys, "")
}

func (t *tally) selectValues(values []string) {
	t.sel.Set(values)
	t.reconcile()
}

func (t *tally) setOther(text string) {
	t.sel.SetOtherText(text)
	t.reconcile()
}

func (t *tally) setBags(key, raw string) error {
	if _, ok := t.bags[key]; !ok {
		return fmt.Errorf("bags for %q: %w", key, ErrUnknownKey)
	}
	t.bags[key] = SanitizeIntInput(raw)
	return nil
}

func (t *tally) setKg(key, raw string) error {
	if _, ok := t.kg[key]; !ok {
		return fmt.Errorf("kg for %q: %w", key, ErrUnknownKey)
	}
	t.kg[key] = SanitizeDecimalInput(raw)
	return nil
}

func (t *tally) totalBags() int {
	return SumCounts(mapValues(t.bags))
}

func (t *tally) totalKg() decimal.Decimal {
	return SumDecimals(mapValues(t.kg))
}

// bagsRecord converts the bag inputs for submission; unparseable entries are dropped.
func (t *tally) bagsRecord() map[string]int {
	out := make(map[string]int, len(t.bags))
	for k, v := range t.bags {
		if n, ok := ParseCount(v); ok {
			out[k] = n
		}
	}
	return out
}

// kgRecord converts the kilogram inputs for submission; unparseable entries are dropped.
func (t *tally) kgRecord() map[string]float64 {
	out := make(map[string]float64, len(t.kg))
	for k, v := range t.kg {
		if n, ok := ParseLocaleNumber(v); ok {
			out[k] = n
		}
	}
	return out
}

func (t *tally) empty() bool {
	return len(t.sel.Selected()) == 0 && t.sel.OtherText() == ""
}

func (t *tally) reset() {
	t.sel.Clear()
	t.bags = map[string]string{}
	t.kg = map[string]string{}
}

func mapValues(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

func cloneStrings(m map[string]string) map[string]string {
	return maps.Clone(m)
}
