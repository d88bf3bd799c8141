package cleanup

import (
	"errors"
	"fmt"

	"github.com/soulinitiatives/cleanup/pkg/catalog"
)

var (
	// ErrNoBags rejects a destination report without any bag.
	ErrNoBags = errors.New("enter at least one bag")

	// ErrUnknownDestination is returned for a destination outside the catalog.
	ErrUnknownDestination = errors.New("unknown destination")
)

// MissingDestinationError reports a trash type that has bags but no destination.
type MissingDestinationError struct {
	TrashType string
}

func (e *MissingDestinationError) Error() string {
	return fmt.Sprintf("choose a destination for %s", catalog.Label(e.TrashType))
}

// DestinationRow is the state of one trash type in a DestinationForm.
// Destination is empty until chosen.
type DestinationRow struct {
	Bags        int
	Destination string
}

// DestinationForm records where sorted bags were sent, one row per
// destination trash type.
type DestinationForm struct {
	rows map[string]DestinationRow
}

// NewDestinationForm returns an empty destination form.
func NewDestinationForm() *DestinationForm {
	return &DestinationForm{rows: map[string]DestinationRow{}}
}

// Row returns the state of key; unset rows are zero.
func (f *DestinationForm) Row(key string) DestinationRow { return f.rows[key] }

// SetBags sets the bag count of key. Negative counts clamp to zero.
func (f *DestinationForm) SetBags(key string, n int) error {
	if !catalog.IsDestinationTrash(key) {
		return fmt.Errorf("bags for %q: %w", key, ErrUnknownKey)
	}
	row := f.rows[key]
	row.Bags = max(n, 0)
	f.rows[key] = row
	return nil
}

// Increment adds one bag to key.
func (f *DestinationForm) Increment(key string) error {
	return f.SetBags(key, f.rows[key].Bags+1)
}

// Decrement removes one bag from key, never going below zero.
func (f *DestinationForm) Decrement(key string) error {
	return f.SetBags(key, f.rows[key].Bags-1)
}

// SetDestination chooses where the bags of key went. An empty destination
// clears the choice.
func (f *DestinationForm) SetDestination(key, destination string) error {
	if !catalog.IsDestinationTrash(key) {
		return fmt.Errorf("destination for %q: %w", key, ErrUnknownKey)
	}
	if destination != "" && !catalog.IsDestination(destination) {
		return fmt.Errorf("destination %q: %w", destination, ErrUnknownDestination)
	}
	row := f.rows[key]
	row.Destination = destination
	f.rows[key] = row
	return nil
}

// TotalBags sums bags over every trash type.
func (f *DestinationForm) TotalBags() int {
	total := 0
	for _, r := range f.rows {
		total += r.Bags
	}
	return total
}

func (f *DestinationForm) Table() string { return catalog.TableDestinations }

// Validate requires at least one bag, and a destination for every type
// that has bags. Types are checked in catalog order.
func (f *DestinationForm) Validate() error {
	if f.TotalBags() == 0 {
		return ErrNoBags
	}
	for _, k := range catalog.DestinationTrashTypes() {
		r := f.rows[k]
		if r.Bags > 0 && r.Destination == "" {
			return &MissingDestinationError{TrashType: k}
		}
	}
	return nil
}

// Record builds the submission row. Only types with bags are included.
func (f *DestinationForm) Record(sessionID, collectedAt string) DestinationRecord {
	details := map[string]DestinationDetail{}
	for k, r := range f.rows {
		if r.Bags > 0 && r.Destination != "" {
			details[k] = DestinationDetail{Bags: r.Bags, Destination: r.Destination}
		}
	}
	return DestinationRecord{
		SessionID:          sessionID,
		CollectedAt:        collectedAt,
		DestinationDetails: details,
		TotalBags:          f.TotalBags(),
	}
}

func (f *DestinationForm) Payload(sessionID, collectedAt string) any {
	return f.Record(sessionID, collectedAt)
}

func (f *DestinationForm) Empty() bool {
	for _, r := range f.rows {
		if r.Bags > 0 || r.Destination != "" {
			return false
		}
	}
	return true
}

func (f *DestinationForm) Reset() {
	f.rows = map[string]DestinationRow{}
}
