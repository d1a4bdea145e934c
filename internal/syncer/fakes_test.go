package syncer_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"expertstats/internal/services"
	"expertstats/internal/services/codeable"
	"expertstats/internal/store"
	"expertstats/internal/syncer"
	"expertstats/internal/testsupport"
)

type fakeRemote struct {
	mu           sync.Mutex
	profile      json.RawMessage
	transactions map[int]*codeable.TransactionsPage
	tasks        map[string]map[int][]codeable.Task
	failFilter   string
	calls        []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		profile:      json.RawMessage(`{"id":1,"full_name":"Expert"}`),
		transactions: make(map[int]*codeable.TransactionsPage),
		tasks:        make(map[string]map[int][]codeable.Task),
	}
}

func (f *fakeRemote) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeRemote) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRemote) Self(context.Context) (json.RawMessage, error) {
	f.record("self")
	return f.profile, nil
}

func (f *fakeRemote) TransactionsPage(_ context.Context, page int) (*codeable.TransactionsPage, error) {
	f.record(fmt.Sprintf("transactions:%d", page))
	if resp, ok := f.transactions[page]; ok {
		return resp, nil
	}
	return &codeable.TransactionsPage{}, nil
}

func (f *fakeRemote) TasksPage(_ context.Context, filter string, page int) ([]codeable.Task, error) {
	f.record(fmt.Sprintf("tasks:%s:%d", filter, page))
	if filter == f.failFilter {
		return nil, services.Wrap(services.ErrRemote, "", "GET tasks", "returned 500", nil)
	}
	return f.tasks[filter][page], nil
}

func (f *fakeRemote) setTasks(filter string, page int, tasks ...codeable.Task) {
	if f.tasks[filter] == nil {
		f.tasks[filter] = make(map[int][]codeable.Task)
	}
	f.tasks[filter][page] = tasks
}

type fakeGuard struct {
	err     error
	reasons []string
}

func (g *fakeGuard) RequireSession(reason string) error {
	g.reasons = append(g.reasons, reason)
	return g.err
}

type fakeCache struct {
	flushes int
}

func (c *fakeCache) Flush() error {
	c.flushes++
	return nil
}

// failingRecords fails writes for a single task id.
type failingRecords struct {
	*store.Store
	failTaskID int64
}

func (f *failingRecords) InsertTask(ctx context.Context, task *store.Task) error {
	if task.TaskID == f.failTaskID {
		return errors.New("disk full")
	}
	return f.Store.InsertTask(ctx, task)
}

type harness struct {
	store  *store.Store
	remote *fakeRemote
	guard  *fakeGuard
	cache  *fakeCache
	now    time.Time
	proc   *syncer.Processor
}

func newHarness(t *testing.T, opts ...syncer.Option) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	h := &harness{
		store:  testsupport.MustOpenStore(t, cfg),
		remote: newFakeRemote(),
		guard:  &fakeGuard{},
		cache:  &fakeCache{},
		now:    time.Unix(1700000000, 0),
	}
	h.proc = h.newProcessor(t, h.store, opts...)
	return h
}

func (h *harness) newProcessor(t *testing.T, records syncer.Records, opts ...syncer.Option) *syncer.Processor {
	t.Helper()
	clock := func() time.Time { return h.now }
	all := append([]syncer.Option{syncer.WithClock(clock)}, opts...)
	proc, err := syncer.NewProcessor(syncer.Dependencies{
		Remote:   h.remote,
		Guard:    h.guard,
		Settings: h.store,
		Records:  records,
		Cache:    h.cache,
	}, all...)
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	return proc
}

func client(id codeable.ID, name string) *codeable.ClientInfo {
	return &codeable.ClientInfo{ID: id, FullName: name, Role: "client", LastSignInAt: "2024-03-01T09:30:00Z"}
}

func lastEvent(ts int64, actor string) *codeable.Event {
	event := &codeable.Event{Object: &codeable.EventObject{Timestamp: codeable.UnixTime(ts)}}
	if actor != "" {
		event.User = &codeable.EventUser{FullName: actor}
	}
	return event
}

func num(value string) codeable.Number {
	return codeable.NewNumber(decimal.RequireFromString(value))
}

func numPtr(value string) *codeable.Number {
	n := num(value)
	return &n
}
