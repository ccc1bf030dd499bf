package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"fantamorto/internal/game"
	"fantamorto/internal/models"
	"fantamorto/internal/repository"
)

// DeathEvent reports an athlet that died while rostered.
type DeathEvent struct {
	ChatID   string
	GameID   uuid.UUID
	Athlet   *models.Athlet
	TeamName string
	Points   int
}

// FirstDeathEvent reports the teams awarded the first-death bonus of a game.
type FirstDeathEvent struct {
	ChatID  string
	GameID  uuid.UUID
	Teams   []*models.Team
	Athlets []*models.Athlet
}

type SweepResult struct {
	Checked     int
	Deaths      []DeathEvent
	FirstDeaths []FirstDeathEvent
}

type MortalityServiceImpl struct {
	games   repository.Game
	athlets repository.Athlet
	feed    MortalityFeed
	banList *repository.BanList
	cache   *repository.LookupCache
	locks   *chatLocks
	clock   clockwork.Clock
	logger  Logger
}

func NewMortalityServiceImpl(
	games repository.Game,
	athlets repository.Athlet,
	feed MortalityFeed,
	banList *repository.BanList,
	cache *repository.LookupCache,
	locks *chatLocks,
	clock clockwork.Clock,
	logger Logger,
) *MortalityServiceImpl {
	return &MortalityServiceImpl{
		games:   games,
		athlets: athlets,
		feed:    feed,
		banList: banList,
		cache:   cache,
		locks:   locks,
		clock:   clock,
		logger:  logger,
	}
}

// Sweep asks the feed about every living rostered athlet and settles the games holding new deaths.
// A death reaches the athlet store only once every game holding it has been saved, so a failed
// game is retried by the next sweep.
func (s *MortalityServiceImpl) Sweep(ctx context.Context) (*SweepResult, error) {
	ids, err := s.athlets.ListAliveIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list alive athlets: %w", err)
	}
	if len(ids) == 0 {
		return &SweepResult{}, nil
	}

	dead, err := s.feed.FindDead(ctx, ids)
	if err != nil {
		return nil, err
	}
	s.cache.Clear()

	now := s.clock.Now()
	var batch []*models.Athlet
	for _, d := range dead {
		if !d.IsDead() {
			continue
		}
		stored, err := s.athlets.GetByWID(ctx, d.WID)
		if err != nil {
			return nil, fmt.Errorf("failed to get athlet: %w", err)
		}
		if stored == nil {
			d.CreatedAt = now
			stored = d
		} else {
			stored.UpdateFrom(d)
		}
		stored.IsBanned = stored.IsBanned || s.banList.Contains(stored.WID)
		stored.UpdatedAt = now
		batch = append(batch, stored)
	}

	result, unsettled, err := s.settle(ctx, batch)
	if err != nil {
		return nil, err
	}
	if err := s.remember(ctx, batch, unsettled); err != nil {
		return nil, err
	}
	result.Checked = len(ids)
	s.logger.Info("sweep checked %d athlets, %d deaths, %d first deaths",
		result.Checked, len(result.Deaths), len(result.FirstDeaths))
	return result, nil
}

// remember stores the athlets of batch whose games were all settled.
func (s *MortalityServiceImpl) remember(ctx context.Context, batch []*models.Athlet, unsettled map[string]bool) error {
	for _, a := range batch {
		if unsettled[a.WID] {
			s.logger.Warn("death of %s is kept pending until every game is saved", a.WID)
			continue
		}
		if err := s.athlets.Upsert(ctx, a); err != nil {
			return fmt.Errorf("failed to save athlet: %w", err)
		}
	}
	return nil
}

// settle applies batch to every active game holding one of its athlets.
// The returned set holds the WIDs rostered in a game that could not be saved.
func (s *MortalityServiceImpl) settle(ctx context.Context, batch []*models.Athlet) (*SweepResult, map[string]bool, error) {
	result := &SweepResult{}
	unsettled := make(map[string]bool)
	if len(batch) == 0 {
		return result, unsettled, nil
	}
	games, err := s.games.ListActive(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list active games: %w", err)
	}

	for _, g := range games {
		var held []string
		for _, a := range batch {
			if g.DraftedBy(a.WID) != nil {
				held = append(held, a.WID)
			}
		}
		if len(held) == 0 {
			continue
		}
		deaths, first, err := s.settleGame(ctx, g.ChatID, g.ID, batch)
		if err != nil {
			s.logger.Error("failed to settle game %s: %v", g.ID, err)
			for _, wid := range held {
				unsettled[wid] = true
			}
			continue
		}
		result.Deaths = append(result.Deaths, deaths...)
		if first != nil {
			result.FirstDeaths = append(result.FirstDeaths, *first)
		}
	}
	return result, unsettled, nil
}

// settleGame reports a death only when the game still had the athlet alive,
// so settling the same batch twice announces nothing new.
func (s *MortalityServiceImpl) settleGame(
	ctx context.Context,
	chatID string,
	id uuid.UUID,
	batch []*models.Athlet,
) ([]DeathEvent, *FirstDeathEvent, error) {
	unlock := s.locks.Lock(chatID)
	defer unlock()

	g, err := s.games.Get(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load game: %w", err)
	}
	if g == nil || !g.IsActive() {
		return nil, nil, nil
	}

	alive := make(map[string]bool)
	for _, b := range batch {
		if a := g.Athlet(b.WID); a != nil && !a.IsDead() {
			alive[b.WID] = true
		}
	}

	sess := game.NewSession(g, game.WithClock(s.clock))
	sess.ApplyMortality(batch)

	now := s.clock.Now()
	var deaths []DeathEvent
	for _, b := range batch {
		team := g.DraftedBy(b.WID)
		a := g.Athlet(b.WID)
		if !alive[b.WID] || team == nil || !a.IsDead() {
			continue
		}
		deaths = append(deaths, DeathEvent{
			ChatID:   g.ChatID,
			GameID:   g.ID,
			Athlet:   a,
			TeamName: team.Name,
			Points:   game.Score(a, now),
		})
	}

	var first *FirstDeathEvent
	if teams := sess.UpdateFirstDeath(batch); len(teams) > 0 {
		first = &FirstDeathEvent{ChatID: g.ChatID, GameID: g.ID, Teams: teams}
		for _, wid := range g.FirstDeaths {
			first.Athlets = append(first.Athlets, g.Athlet(wid))
		}
	}

	if err := s.games.Save(ctx, g); err != nil {
		return nil, nil, fmt.Errorf("failed to save game: %w", err)
	}
	return deaths, first, nil
}
