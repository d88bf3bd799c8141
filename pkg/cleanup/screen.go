package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/soulinitiatives/cleanup/pkg/catalog"
)

// ErrSubmitInFlight is returned when a form is edited or submitted while a
// submission is still pending.
var ErrSubmitInFlight = errors.New("submission already in progress")

// Form is the state of one data-entry screen.
type Form interface {
	// Table is the backend table the form submits to.
	Table() string
	// Validate reports why the current state cannot be submitted.
	Validate() error
	// Payload builds the flat submission record.
	Payload(sessionID, collectedAt string) any
	// Empty reports whether nothing has been entered.
	Empty() bool
	// Reset clears every entry.
	Reset()
}

// State is the position of a Screen in its submit cycle.
type State int

const (
	StateEmpty State = iota
	StateEditing
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type screenConfig struct {
	sessions      *SessionManager
	now           func() time.Time
	offsetMinutes int
	logger        *slog.Logger
}

// ScreenOption configures a Screen.
type ScreenOption func(*screenConfig)

// WithSessions attaches submissions to the session held by m.
func WithSessions(m *SessionManager) ScreenOption {
	return func(c *screenConfig) { c.sessions = m }
}

// WithClock overrides the time source used for collected_at.
func WithClock(now func() time.Time) ScreenOption {
	return func(c *screenConfig) { c.now = now }
}

// WithOffset sets the fixed UTC offset, in minutes, of collected_at.
func WithOffset(minutes int) ScreenOption {
	return func(c *screenConfig) { c.offsetMinutes = minutes }
}

// WithLogger sets the screen logger.
func WithLogger(l *slog.Logger) ScreenOption {
	return func(c *screenConfig) { c.logger = l }
}

// Screen drives one form through Empty, Editing and Submitting. At most one
// submission per screen is in flight; entries survive a failed submission
// and are cleared by a successful one.
type Screen[F Form] struct {
	form    F
	backend Backend
	cfg     screenConfig

	mu         sync.Mutex
	submitting bool
}

// NewScreen wraps form.
func NewScreen[F Form](form F, backend Backend, opts ...ScreenOption) *Screen[F] {
	cfg := screenConfig{
		now:           time.Now,
		offsetMinutes: catalog.CollectedAtOffsetMinutes,
		logger:        slog.Default(),
	}
	for _, o := range opts {
		o(&cfg)
	}
	return &Screen[F]{form: form, backend: backend, cfg: cfg}
}

// State returns the current state.
func (s *Screen[F]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.submitting:
		return StateSubmitting
	case s.form.Empty():
		return StateEmpty
	default:
		return StateEditing
	}
}

// Edit applies fn to the form. It is rejected while submitting.
func (s *Screen[F]) Edit(fn func(F) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return ErrSubmitInFlight
	}
	return fn(s.form)
}

// View calls fn with the form for reading.
func (s *Screen[F]) View(fn func(F)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.form)
}

// Submit validates the form, resolves the session when one is attached and
// sends one insert. It returns the record that was sent.
func (s *Screen[F]) Submit(ctx context.Context) (any, error) {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if err := s.form.Validate(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.submitting = true
	s.mu.Unlock()

	record, err := s.send(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	if err != nil {
		s.cfg.logger.Warn("submit failed", "table", s.form.Table(), "error", err)
		return nil, err
	}
	s.form.Reset()
	s.cfg.logger.Info("submitted", "table", s.form.Table())
	return record, nil
}

// send runs with submitting set, so the form cannot change underneath it.
func (s *Screen[F]) send(ctx context.Context) (any, error) {
	var sessionID string
	if s.cfg.sessions != nil {
		id, err := s.cfg.sessions.EnsureSession(ctx)
		if err != nil {
			return nil, fmt.Errorf("no session available: %w", err)
		}
		sessionID = id
	}

	collectedAt := FixedOffsetTimestamp(s.cfg.now(), s.cfg.offsetMinutes)
	record := s.form.Payload(sessionID, collectedAt)
	if err := s.backend.Insert(ctx, s.form.Table(), record); err != nil {
		return nil, fmt.Errorf("insert into %s: %w", s.form.Table(), err)
	}
	return record, nil
}
