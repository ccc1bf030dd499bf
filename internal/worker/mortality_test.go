package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"fantamorto/internal/application"
	"fantamorto/internal/models"
)

type nopLogger struct{}

func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Debug(string, ...interface{}) {}

type fakeSweep struct {
	mu    sync.Mutex
	calls int
	res   *application.SweepResult
}

func (f *fakeSweep) Sweep(context.Context) (*application.SweepResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.res, nil
}

type fakeAnnouncer struct {
	prefix string
	mu     sync.Mutex
	deaths []string
	firsts []string
	seen   chan struct{}
}

func newFakeAnnouncer(prefix string) *fakeAnnouncer {
	return &fakeAnnouncer{prefix: prefix, seen: make(chan struct{}, 16)}
}

func (f *fakeAnnouncer) ChatPrefix() string { return f.prefix }

func (f *fakeAnnouncer) AnnounceDeath(_ context.Context, e application.DeathEvent) error {
	f.mu.Lock()
	f.deaths = append(f.deaths, e.ChatID+"/"+e.Athlet.WID)
	f.mu.Unlock()
	f.seen <- struct{}{}
	return nil
}

func (f *fakeAnnouncer) AnnounceFirstDeath(_ context.Context, e application.FirstDeathEvent) error {
	f.mu.Lock()
	f.firsts = append(f.firsts, e.ChatID)
	f.mu.Unlock()
	f.seen <- struct{}{}
	return nil
}

func sampleResult() *application.SweepResult {
	return &application.SweepResult{
		Checked: 3,
		Deaths: []application.DeathEvent{
			{ChatID: "tg:1", Athlet: &models.Athlet{WID: "Q1"}, TeamName: "A", Points: 100},
			{ChatID: "dc:7", Athlet: &models.Athlet{WID: "Q2"}, TeamName: "B", Points: 100},
			{ChatID: "xx:0", Athlet: &models.Athlet{WID: "Q3"}},
		},
		FirstDeaths: []application.FirstDeathEvent{{ChatID: "tg:1"}},
	}
}

func TestRouterRoutesByChatPrefix(t *testing.T) {
	tg, dc := newFakeAnnouncer("tg:"), newFakeAnnouncer("dc:")
	r := NewRouter(nopLogger{})
	r.Register(tg, dc)

	r.Announce(context.Background(), sampleResult())

	if len(tg.deaths) != 1 || tg.deaths[0] != "tg:1/Q1" || len(tg.firsts) != 1 {
		t.Fatalf("telegram got deaths %v firsts %v", tg.deaths, tg.firsts)
	}
	if len(dc.deaths) != 1 || dc.deaths[0] != "dc:7/Q2" || len(dc.firsts) != 0 {
		t.Fatalf("discord got deaths %v firsts %v", dc.deaths, dc.firsts)
	}
}

func TestSweeperRunsOnTicker(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := clockwork.NewFakeClock()
	sweep := &fakeSweep{res: &application.SweepResult{
		Deaths: []application.DeathEvent{{ChatID: "tg:1", Athlet: &models.Athlet{WID: "Q1"}}},
	}}
	tg := newFakeAnnouncer("tg:")
	router := NewRouter(nopLogger{})
	router.Register(tg)

	w := NewMortalitySweeper(sweep, router, time.Hour, clock, nopLogger{})
	if err := w.Init(); err != nil {
		t.Fatalf("Init error = %v", err)
	}
	go w.Run(ctx)

	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("ticker never created: %v", err)
	}
	clock.Advance(time.Hour)

	select {
	case <-tg.seen:
	case <-ctx.Done():
		t.Fatalf("no announcement after one interval")
	}
	w.Stop()

	sweep.mu.Lock()
	defer sweep.mu.Unlock()
	if sweep.calls != 1 {
		t.Fatalf("sweeps = %d, want 1", sweep.calls)
	}
}

func TestSweeperRejectsBadInterval(t *testing.T) {
	w := NewMortalitySweeper(&fakeSweep{}, NewRouter(nopLogger{}), 0, clockwork.NewFakeClock(), nopLogger{})
	if err := w.Init(); err == nil {
		t.Fatalf("Init accepted a zero interval")
	}
}

func TestSweeperStopsWithoutRun(t *testing.T) {
	w := NewMortalitySweeper(&fakeSweep{}, NewRouter(nopLogger{}), time.Hour, clockwork.NewFakeClock(), nopLogger{})

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatalf("Stop waited for a Run that never started")
	}

	// a late Run exits on the closed quit channel
	done := make(chan struct{})
	go func() {
		w.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after Stop")
	}
}
