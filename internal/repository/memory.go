package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"fantamorto/internal/models"
)

// MemoryStore implements Game and Athlet in process memory. Values are
// copied on the way in and out so callers never share state with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	games   map[uuid.UUID]*models.Game
	athlets map[string]*models.Athlet
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games:   make(map[uuid.UUID]*models.Game),
		athlets: make(map[string]*models.Athlet),
	}
}

func (s *MemoryStore) GetActiveByChat(_ context.Context, chatID string) (*models.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.games {
		if g.ChatID == chatID && g.IsActive() {
			return s.loadLocked(g), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*models.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return nil, nil
	}
	return s.loadLocked(g), nil
}

func (s *MemoryStore) Save(_ context.Context, g *models.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := g.Clone()
	s.games[c.ID] = c
	for _, a := range c.Athlets {
		s.upsertLocked(a)
	}
	return nil
}

func (s *MemoryStore) ListActive(_ context.Context) ([]*models.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var games []*models.Game
	for _, g := range s.games {
		if g.IsActive() {
			games = append(games, s.loadLocked(g))
		}
	}
	slices.SortFunc(games, func(a, b *models.Game) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return games, nil
}

// loadLocked copies g with its arena refreshed from the athlet table, the
// same way the Postgres repository joins rosters on athlets.
func (s *MemoryStore) loadLocked(g *models.Game) *models.Game {
	c := g.Clone()
	for wid := range c.Athlets {
		if a, ok := s.athlets[wid]; ok {
			c.Athlets[wid] = a.Clone()
		}
	}
	return c
}

func (s *MemoryStore) Upsert(_ context.Context, a *models.Athlet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(a)
	return nil
}

func (s *MemoryStore) upsertLocked(a *models.Athlet) {
	c := a.Clone()
	if old, ok := s.athlets[a.WID]; ok {
		if c.DateOfDeath == nil && old.DateOfDeath != nil {
			d := *old.DateOfDeath
			c.DateOfDeath = &d
		}
		c.CreatedAt = old.CreatedAt
	}
	s.athlets[a.WID] = c
}

func (s *MemoryStore) GetByWID(_ context.Context, wid string) (*models.Athlet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.athlets[wid]
	if !ok {
		return nil, nil
	}
	return a.Clone(), nil
}

// ListAliveIDs lists the living athlets rostered in active games.
func (s *MemoryStore) ListAliveIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for _, g := range s.games {
		if !g.IsActive() {
			continue
		}
		for _, t := range g.Teams {
			for _, wid := range t.AthletIDs {
				a, ok := s.athlets[wid]
				if ok && !a.IsDead() && !slices.Contains(ids, wid) {
					ids = append(ids, wid)
				}
			}
		}
	}
	slices.Sort(ids)
	return ids, nil
}
