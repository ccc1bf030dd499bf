package application

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	domainerrors "fantamorto/internal/errors"
	"fantamorto/internal/game"
	"fantamorto/internal/models"
	"fantamorto/internal/repository"
)

// DraftView describes the draft as it stands.
type DraftView struct {
	Current   *models.Team
	Order     []*models.Team
	Round     int
	Remaining int
}

type DraftResult struct {
	Team   *models.Team
	Athlet *models.Athlet
	Next   *models.Team
	Status models.GameStatus
}

type CaptainResult struct {
	Team    *models.Team
	Captain *models.Athlet
	Missing int
	Status  models.GameStatus
}

// AmbiguousLookupError is returned when a query matches several people.
type AmbiguousLookupError struct {
	Query      string
	Candidates []*models.Athlet
}

func (e *AmbiguousLookupError) Error() string {
	return fmt.Sprintf("%q matches %d people, draft by Wikidata ID instead", e.Query, len(e.Candidates))
}

func (e *AmbiguousLookupError) Unwrap() error {
	return domainerrors.ErrAmbiguousLookup
}

type GameServiceImpl struct {
	games     repository.Game
	athlets   repository.Athlet
	lookup    Lookup
	banList   *repository.BanList
	cache     *repository.LookupCache
	locks     *chatLocks
	mortality *MortalityServiceImpl
	settings  Settings
	clock     clockwork.Clock
	logger    Logger

	sessionOpts []game.Option
}

func NewGameServiceImpl(
	games repository.Game,
	athlets repository.Athlet,
	lookup Lookup,
	banList *repository.BanList,
	cache *repository.LookupCache,
	locks *chatLocks,
	mortality *MortalityServiceImpl,
	settings Settings,
	clock clockwork.Clock,
	logger Logger,
) *GameServiceImpl {
	if settings.TeamSize <= 0 {
		settings.TeamSize = models.DefaultTeamSize
	}
	return &GameServiceImpl{
		games:     games,
		athlets:   athlets,
		lookup:    lookup,
		banList:   banList,
		cache:     cache,
		locks:     locks,
		mortality: mortality,
		settings:  settings,
		clock:     clock,
		logger:    logger,
	}
}

func (s *GameServiceImpl) StartGame(ctx context.Context, chatID string, user models.User) (*models.Game, error) {
	unlock := s.locks.Lock(chatID)
	defer unlock()

	existing, err := s.games.GetActiveByChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	if existing != nil {
		return nil, domainerrors.Newf(domainerrors.KindGameAlreadyActive,
			"a game started by %s is already running in this chat", existing.CreatorName)
	}

	g := models.NewGame(chatID, user, s.settings.TeamSize, s.clock.Now())
	if err := s.games.Save(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}
	s.logger.Info("game %s started in %s by %s", g.ID, chatID, user.ID)
	return g, nil
}

func (s *GameServiceImpl) StopGame(ctx context.Context, chatID string, user models.User) ([]models.Standing, error) {
	var ranking []models.Standing
	_, err := s.mutate(ctx, chatID, func(sess *game.Session) error {
		var err error
		ranking, err = sess.End(user)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("game in %s stopped by %s", chatID, user.ID)
	return ranking, nil
}

func (s *GameServiceImpl) Join(ctx context.Context, chatID string, user models.User, teamName string) (*models.Team, error) {
	var team *models.Team
	_, err := s.mutate(ctx, chatID, func(sess *game.Session) error {
		var err error
		team, err = sess.AddTeam(user, teamName)
		return err
	})
	return team, err
}

func (s *GameServiceImpl) StartDraft(ctx context.Context, chatID string, user models.User) (*DraftView, error) {
	var view *DraftView
	_, err := s.mutate(ctx, chatID, func(sess *game.Session) error {
		if err := sess.StartDraft(user); err != nil {
			return err
		}
		var err error
		view, err = draftView(sess)
		return err
	})
	return view, err
}

func (s *GameServiceImpl) CancelDraft(ctx context.Context, chatID string, user models.User) error {
	_, err := s.mutate(ctx, chatID, func(sess *game.Session) error {
		return sess.CancelDraft(user)
	})
	return err
}

func (s *GameServiceImpl) DraftOrder(ctx context.Context, chatID string) (*DraftView, error) {
	sess, err := s.read(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return draftView(sess)
}

// Info previews a lookup. Only living people are listed, oldest first.
func (s *GameServiceImpl) Info(ctx context.Context, query string) ([]*models.Athlet, error) {
	candidates, err := s.resolve(ctx, query)
	if err != nil {
		return nil, err
	}
	alive := slices.DeleteFunc(candidates, (*models.Athlet).IsDead)
	if len(alive) == 0 {
		return nil, domainerrors.Newf(domainerrors.KindLookupNotFound, "no living person matches %q", query)
	}
	slices.SortStableFunc(alive, func(a, b *models.Athlet) int {
		return a.DateOfBirth.Compare(b.DateOfBirth)
	})
	return alive, nil
}

// Draft resolves query and adds the match to the caller's team.
func (s *GameServiceImpl) Draft(ctx context.Context, chatID string, user models.User, query string) (*DraftResult, error) {
	sess, err := s.read(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if _, err := sess.CanDraft(user.ID); err != nil {
		return nil, err
	}

	candidates, err := s.resolve(ctx, query)
	if err != nil {
		return nil, err
	}
	switch len(candidates) {
	case 0:
		return nil, domainerrors.Newf(domainerrors.KindLookupNotFound, "nobody matches %q", query)
	case 1:
	default:
		return nil, &AmbiguousLookupError{Query: query, Candidates: candidates}
	}
	athlet := candidates[0]

	var result *DraftResult
	_, err = s.mutate(ctx, chatID, func(sess *game.Session) error {
		team, err := sess.Draft(user.ID, athlet, s.settings.AllowDeadPicks)
		if err != nil {
			return err
		}
		result = &DraftResult{
			Team:   team,
			Athlet: athlet,
			Next:   sess.CurrentDrafter(),
			Status: sess.Status(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("%s drafted %s in %s", user.ID, athlet.WID, chatID)
	return result, nil
}

// DropAthlet removes the athlet at idx from the caller's team.
func (s *GameServiceImpl) DropAthlet(ctx context.Context, chatID string, user models.User, idx int) (*models.Athlet, error) {
	var dropped *models.Athlet
	_, err := s.mutate(ctx, chatID, func(sess *game.Session) error {
		var err error
		dropped, err = sess.DropAthlet(user.ID, idx)
		return err
	})
	return dropped, err
}

// SetCaptain picks the captain by roster index, as listed in the team report.
func (s *GameServiceImpl) SetCaptain(ctx context.Context, chatID string, user models.User, idx int) (*CaptainResult, error) {
	var result *CaptainResult
	_, err := s.mutate(ctx, chatID, func(sess *game.Session) error {
		team, err := sess.SetCaptain(user.ID, idx)
		if err != nil {
			return err
		}
		g := sess.Game()
		missing := 0
		for _, t := range g.Teams {
			if !t.HasCaptain() {
				missing++
			}
		}
		result = &CaptainResult{
			Team:    team,
			Captain: g.Athlet(team.CaptainID),
			Missing: missing,
			Status:  sess.Status(),
		}
		return nil
	})
	return result, err
}

func (s *GameServiceImpl) Rename(ctx context.Context, chatID string, user models.User, name string) (*models.Team, error) {
	var team *models.Team
	_, err := s.mutate(ctx, chatID, func(sess *game.Session) error {
		var err error
		team, err = sess.RenameTeam(user.ID, name)
		return err
	})
	return team, err
}

func (s *GameServiceImpl) Ranking(ctx context.Context, chatID string) ([]models.Standing, error) {
	sess, err := s.read(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return sess.Ranking(), nil
}

func (s *GameServiceImpl) Team(ctx context.Context, chatID string, user models.User) (*game.TeamReport, error) {
	sess, err := s.read(ctx, chatID)
	if err != nil {
		return nil, err
	}
	t := sess.Game().TeamByOwner(user.ID)
	if t == nil {
		return nil, domainerrors.New(domainerrors.KindNoTeam, "you have no team in this game")
	}
	report := sess.Report(t)
	return &report, nil
}

func (s *GameServiceImpl) Teams(ctx context.Context, chatID string) ([]*models.Team, error) {
	sess, err := s.read(ctx, chatID)
	if err != nil {
		return nil, err
	}
	teams := sess.Game().Teams
	if len(teams) == 0 {
		return nil, domainerrors.New(domainerrors.KindNoTeams, "no team has joined the game yet")
	}
	return teams, nil
}

// Kill records that wid died today, unless a death date is already known, and
// settles every active game holding it.
func (s *GameServiceImpl) Kill(ctx context.Context, user models.User, wid string) (*SweepResult, error) {
	if err := s.RequireAdmin(user); err != nil {
		return nil, err
	}
	wid = strings.ToUpper(strings.TrimSpace(wid))
	a, err := s.athlets.GetByWID(ctx, wid)
	if err != nil {
		return nil, fmt.Errorf("failed to get athlet: %w", err)
	}
	if a == nil {
		return nil, domainerrors.Newf(domainerrors.KindLookupNotFound, "%s has never been drafted", wid)
	}

	now := s.clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if !a.IsDead() {
		a.DateOfDeath = &today
	}
	a.UpdatedAt = now
	s.logger.Warn("%s marked %s dead by hand", user.ID, wid)

	res, unsettled, err := s.mortality.settle(ctx, []*models.Athlet{a})
	if err != nil {
		return nil, err
	}
	if unsettled[a.WID] {
		return nil, fmt.Errorf("failed to settle the death of %s in every game", wid)
	}
	if err := s.athlets.Upsert(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to save athlet: %w", err)
	}
	s.cache.Clear()
	return res, nil
}

// RequireAdmin fails with NotAdmin unless user is a configured administrator.
func (s *GameServiceImpl) RequireAdmin(user models.User) error {
	if !slices.Contains(s.settings.AdminUserIDs, user.ID) {
		return domainerrors.New(domainerrors.KindNotAdmin, "only an administrator can do that")
	}
	return nil
}

// resolve looks query up and merges the result into the athlet store.
func (s *GameServiceImpl) resolve(ctx context.Context, query string) ([]*models.Athlet, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domainerrors.New(domainerrors.KindLookupNotFound, "tell me a name or a Wikidata ID")
	}

	candidates, ok := s.cache.Get(query)
	if !ok {
		found, err := s.lookup.Search(ctx, query)
		if err != nil {
			return nil, err
		}
		s.cache.Set(query, found)
		candidates = found
	}

	for i, a := range candidates {
		merged, err := s.remember(ctx, a)
		if err != nil {
			return nil, err
		}
		candidates[i] = merged
	}
	return candidates, nil
}

// remember folds a freshly fetched athlet into the stored one and saves it.
func (s *GameServiceImpl) remember(ctx context.Context, fresh *models.Athlet) (*models.Athlet, error) {
	now := s.clock.Now()
	fresh.IsBanned = fresh.IsBanned || s.banList.Contains(fresh.WID)
	stored, err := s.athlets.GetByWID(ctx, fresh.WID)
	if err != nil {
		return nil, fmt.Errorf("failed to get athlet: %w", err)
	}
	if stored == nil {
		fresh.CreatedAt = now
		fresh.UpdatedAt = now
		stored = fresh
	} else if stored.UpdateFrom(fresh) {
		stored.UpdatedAt = now
	}
	if err := s.athlets.Upsert(ctx, stored); err != nil {
		return nil, fmt.Errorf("failed to save athlet: %w", err)
	}
	return stored, nil
}

// mutate runs fn on the chat's active game under the chat lock and saves
// the game only when fn succeeds.
func (s *GameServiceImpl) mutate(ctx context.Context, chatID string, fn func(sess *game.Session) error) (*models.Game, error) {
	unlock := s.locks.Lock(chatID)
	defer unlock()

	sess, err := s.read(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	if err := s.games.Save(ctx, sess.Game()); err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}
	return sess.Game(), nil
}

func (s *GameServiceImpl) read(ctx context.Context, chatID string) (*game.Session, error) {
	g, err := s.games.GetActiveByChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	if g == nil {
		return nil, noActiveGame()
	}
	return s.newSession(g), nil
}

func (s *GameServiceImpl) newSession(g *models.Game) *game.Session {
	opts := append([]game.Option{game.WithClock(s.clock)}, s.sessionOpts...)
	return game.NewSession(g, opts...)
}

func draftView(sess *game.Session) (*DraftView, error) {
	order, err := sess.DraftOrder()
	if err != nil {
		return nil, err
	}
	g := sess.Game()
	remaining := 0
	for _, t := range g.Teams {
		remaining += max(0, g.TeamSize-len(t.AthletIDs))
	}
	return &DraftView{
		Current:   sess.CurrentDrafter(),
		Order:     order,
		Round:     sess.Round(),
		Remaining: remaining,
	}, nil
}
