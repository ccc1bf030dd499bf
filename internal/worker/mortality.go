// Package worker runs the periodic mortality sweep and fans its results out to the chat platforms.
package worker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"fantamorto/internal/application"
)

// Announcer delivers sweep events to the chats of one platform.
type Announcer interface {
	// ChatPrefix is the chat ID prefix owned by this announcer, e.g. "tg:".
	ChatPrefix() string
	AnnounceDeath(ctx context.Context, event application.DeathEvent) error
	AnnounceFirstDeath(ctx context.Context, event application.FirstDeathEvent) error
}

// Router sends each event to the announcer owning its chat.
type Router struct {
	mu         sync.RWMutex
	announcers []Announcer
	logger     application.Logger
}

func NewRouter(logger application.Logger) *Router {
	return &Router{logger: logger}
}

func (r *Router) Register(a ...Announcer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.announcers = append(r.announcers, a...)
}

// Announce delivers every event of res. Delivery failures are logged and skipped.
func (r *Router) Announce(ctx context.Context, res *application.SweepResult) {
	if res == nil {
		return
	}
	for _, d := range res.Deaths {
		a := r.owner(d.ChatID)
		if a == nil {
			r.logger.Warn("no announcer for chat %s", d.ChatID)
			continue
		}
		if err := a.AnnounceDeath(ctx, d); err != nil {
			r.logger.Error("failed to announce death of %s in %s: %v", d.Athlet.WID, d.ChatID, err)
		}
	}
	for _, f := range res.FirstDeaths {
		a := r.owner(f.ChatID)
		if a == nil {
			r.logger.Warn("no announcer for chat %s", f.ChatID)
			continue
		}
		if err := a.AnnounceFirstDeath(ctx, f); err != nil {
			r.logger.Error("failed to announce first death in %s: %v", f.ChatID, err)
		}
	}
}

func (r *Router) owner(chatID string) Announcer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.announcers {
		if strings.HasPrefix(chatID, a.ChatPrefix()) {
			return a
		}
	}
	return nil
}

// MortalitySweeper runs the mortality sweep on a fixed interval.
type MortalitySweeper struct {
	service  application.MortalityService
	router   *Router
	interval time.Duration
	clock    clockwork.Clock
	logger   application.Logger

	started  atomic.Bool
	stopOnce sync.Once
	quit     chan struct{}
	done     chan struct{}
}

func NewMortalitySweeper(service application.MortalityService, router *Router, interval time.Duration, clock clockwork.Clock, logger application.Logger) *MortalitySweeper {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MortalitySweeper{
		service:  service,
		router:   router,
		interval: interval,
		clock:    clock,
		logger:   logger,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (w *MortalitySweeper) Init() error {
	if w.interval <= 0 {
		return errors.New("sweep interval must be positive")
	}
	w.logger.Info("mortality sweep every %s", w.interval)
	return nil
}

func (w *MortalitySweeper) Run(ctx context.Context) {
	w.started.Store(true)
	defer close(w.done)
	ticker := w.clock.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.quit:
			return
		case <-ticker.Chan():
			if err := w.SweepOnce(ctx); err != nil {
				w.logger.Error("mortality sweep failed: %v", err)
			}
		}
	}
}

// Stop ends Run and waits for an in-flight sweep to finish. A sweeper that
// never ran returns at once.
func (w *MortalitySweeper) Stop() {
	w.stopOnce.Do(func() {
		close(w.quit)
	})
	if !w.started.Load() {
		return
	}
	select {
	case <-w.done:
	case <-w.clock.After(10 * time.Second):
		w.logger.Warn("mortality sweep did not stop in time")
	}
}

// SweepOnce runs one sweep and announces its events.
func (w *MortalitySweeper) SweepOnce(ctx context.Context) error {
	res, err := w.service.Sweep(ctx)
	if err != nil {
		return err
	}
	w.router.Announce(ctx, res)
	return nil
}
