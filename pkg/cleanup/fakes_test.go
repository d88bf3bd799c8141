package cleanup

import (
	"context"
	"encoding/json"
	"sync"
)

type insertCall struct {
	table  string
	record any
}

// fakeBackend records calls. Hooks, when set, replace the default behavior.
type fakeBackend struct {
	mu      sync.Mutex
	inserts []insertCall
	rpcs    []any

	insertFn    func(ctx context.Context, table string, record any) error
	returningFn func(table string, record any) (any, error)
	rpcFn       func(ctx context.Context, fn string, params any) (any, error)
}

func (b *fakeBackend) Insert(ctx context.Context, table string, record any) error {
	b.mu.Lock()
	b.inserts = append(b.inserts, insertCall{table: table, record: record})
	fn := b.insertFn
	b.mu.Unlock()
	if fn != nil {
		return fn(ctx, table, record)
	}
	return nil
}

func (b *fakeBackend) InsertReturning(_ context.Context, table string, record any, out any) error {
	if b.returningFn == nil {
		return nil
	}
	resp, err := b.returningFn(table, record)
	if err != nil {
		return err
	}
	return roundTrip(resp, out)
}

func (b *fakeBackend) Select(context.Context, string, []string, int, any) error {
	return nil
}

func (b *fakeBackend) RPC(ctx context.Context, fn string, params any, out any) error {
	b.mu.Lock()
	b.rpcs = append(b.rpcs, params)
	hook := b.rpcFn
	b.mu.Unlock()
	if hook == nil {
		return nil
	}
	resp, err := hook(ctx, fn, params)
	if err != nil {
		return err
	}
	return roundTrip(resp, out)
}

func (b *fakeBackend) insertCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.inserts)
}

func (b *fakeBackend) rpcCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.rpcs)
}

func roundTrip(in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// fakeCreator hands out ids from a list, optionally failing or blocking.
type fakeCreator struct {
	mu    sync.Mutex
	calls int
	ids   []string
	errs  []error

	started chan struct{}
	release chan struct{}
}

func (c *fakeCreator) CreateSession(ctx context.Context) (string, error) {
	c.mu.Lock()
	n := c.calls
	c.calls++
	c.mu.Unlock()

	if c.started != nil {
		c.started <- struct{}{}
	}
	if c.release != nil {
		<-c.release
	}
	if n < len(c.errs) && c.errs[n] != nil {
		return "", c.errs[n]
	}
	if n < len(c.ids) {
		return c.ids[n], nil
	}
	return "session-extra", nil
}

func (c *fakeCreator) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
