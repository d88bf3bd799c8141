package cleanup

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/soulinitiatives/cleanup/pkg/catalog"
)

// SessionCreator creates a new session on the backend and returns its id.
type SessionCreator interface {
	CreateSession(ctx context.Context) (string, error)
}

// BackendSessionCreator inserts an empty row into the sessions table and
// reads back the generated id.
type BackendSessionCreator struct {
	Backend Backend
}

func (c BackendSessionCreator) CreateSession(ctx context.Context) (string, error) {
	var rows []struct {
		ID string `json:"id"`
	}
	if err := c.Backend.InsertReturning(ctx, catalog.TableSessions, struct{}{}, &rows); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	if len(rows) == 0 || rows[0].ID == "" {
		return "", errors.New("create session: backend returned no id")
	}
	return rows[0].ID, nil
}

// SessionManager caches the id grouping the submissions of one app run.
// Concurrent EnsureSession calls share a single creation request. A failed
// creation is never cached.
type SessionManager struct {
	creator SessionCreator
	group   singleflight.Group

	mu       sync.RWMutex
	id       string
	gen      uint64
	inflight int
}

// NewSessionManager returns a manager without a session.
func NewSessionManager(creator SessionCreator) *SessionManager {
	return &SessionManager{creator: creator}
}

// SessionID returns the cached id, if any.
func (m *SessionManager) SessionID() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.id, m.id != ""
}

// Loading reports whether a creation request is in flight.
func (m *SessionManager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inflight > 0
}

// EnsureSession returns the cached id or creates one. A caller whose ctx
// ends stops waiting; the shared creation keeps running for the others.
func (m *SessionManager) EnsureSession(ctx context.Context) (string, error) {
	if id, ok := m.SessionID(); ok {
		return id, nil
	}

	ch := m.group.DoChan("ensure", func() (any, error) {
		if id, ok := m.SessionID(); ok {
			return id, nil
		}
		return m.create(context.WithoutCancel(ctx), false)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// ResetSession creates a new session and replaces the cached id, starting a
// new logical run. On failure the previous id is kept. A creation started
// before the reset never overwrites its result.
func (m *SessionManager) ResetSession(ctx context.Context) (string, error) {
	return m.create(ctx, true)
}

func (m *SessionManager) create(ctx context.Context, reset bool) (string, error) {
	m.mu.Lock()
	if reset {
		m.gen++
	}
	gen := m.gen
	m.inflight++
	m.mu.Unlock()

	id, err := m.creator.CreateSession(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inflight--
	if err != nil {
		return "", err
	}
	if gen != m.gen && m.id != "" {
		return m.id, nil
	}
	m.id = id
	return id, nil
}
