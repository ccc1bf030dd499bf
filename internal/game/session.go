// Package game holds the rules of a fantamorto play-through: phases, snake draft, rosters and scoring.
// Nothing here performs I/O; callers serialize access per game.
package game

import (
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	domainerrors "fantamorto/internal/errors"
	"fantamorto/internal/models"
)

// ShuffleFunc has the signature of rand.Shuffle.
type ShuffleFunc func(n int, swap func(i, j int))

type Option func(*Session)

func WithClock(clock clockwork.Clock) Option {
	return func(s *Session) {
		s.clock = clock
	}
}

func WithShuffle(shuffle ShuffleFunc) Option {
	return func(s *Session) {
		s.shuffle = shuffle
	}
}

// Session applies game operations to a Game aggregate.
// Every operation validates first and mutates only on success.
type Session struct {
	game    *models.Game
	clock   clockwork.Clock
	shuffle ShuffleFunc
}

func NewSession(g *models.Game, opts ...Option) *Session {
	if g.Athlets == nil {
		g.Athlets = make(map[string]*models.Athlet)
	}
	s := &Session{
		game:    g,
		clock:   clockwork.NewRealClock(),
		shuffle: rand.Shuffle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Game() *models.Game {
	return s.game
}

func (s *Session) Status() models.GameStatus {
	return s.game.Status
}

// AddTeam registers a team for owner. The name defaults to the owner's name.
func (s *Session) AddTeam(owner models.User, name string) (*models.Team, error) {
	if err := s.requirePhase("join", models.GameStatusStart); err != nil {
		return nil, err
	}
	if t := s.game.TeamByOwner(owner.ID); t != nil {
		return nil, domainerrors.Newf(domainerrors.KindDuplicateRoster, "%s already has team %s", owner.DisplayName(), t.Name)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = "Team " + owner.Name
	}
	now := s.clock.Now()
	t := &models.Team{
		ID:        uuid.New(),
		GameID:    s.game.ID,
		Name:      name,
		OwnerID:   owner.ID,
		OwnerName: owner.DisplayName(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.game.Teams = append(s.game.Teams, t)
	s.touch()
	return t, nil
}

// StartDraft shuffles the teams into draft slots and opens the draft.
func (s *Session) StartDraft(user models.User) error {
	if err := s.requireCreator(user, "start the draft"); err != nil {
		return err
	}
	if err := s.requirePhase("start the draft", models.GameStatusStart); err != nil {
		return err
	}
	if len(s.game.Teams) == 0 {
		return domainerrors.New(domainerrors.KindNoTeams, "no team has joined the game yet")
	}

	perm := make([]int, len(s.game.Teams))
	for i := range perm {
		perm[i] = i
	}
	s.shuffle(len(perm), func(i, j int) {
		perm[i], perm[j] = perm[j], perm[i]
	})
	for slot, idx := range perm {
		s.game.Teams[idx].DraftSlot = &slot
	}

	s.game.DraftNumber = 0
	s.game.Status = models.GameStatusDraft
	s.touch()
	return nil
}

// CancelDraft returns to signup, dismissing every drafted athlet.
func (s *Session) CancelDraft(user models.User) error {
	if err := s.requireCreator(user, "cancel the draft"); err != nil {
		return err
	}
	if err := s.requirePhase("cancel the draft", models.GameStatusDraft); err != nil {
		return err
	}

	for _, t := range s.game.Teams {
		t.AthletIDs = nil
		t.CaptainID = ""
		t.DraftSlot = nil
		t.HasFirstDeath = false
	}
	s.game.Athlets = make(map[string]*models.Athlet)
	s.game.FirstDeaths = nil
	s.game.DraftNumber = 0
	s.game.Status = models.GameStatusStart
	s.touch()
	return nil
}

// CanDraft reports whether ownerID may pick now and returns their team.
func (s *Session) CanDraft(ownerID string) (*models.Team, error) {
	if err := s.requirePhase("draft", models.GameStatusDraft); err != nil {
		return nil, err
	}
	t, err := s.ownTeam(ownerID)
	if err != nil {
		return nil, err
	}
	if t.IsFull(s.game.TeamSize) {
		return nil, domainerrors.Newf(domainerrors.KindRosterFull, "team %s already has %d athlets", t.Name, s.game.TeamSize)
	}
	if current := s.CurrentDrafter(); current == nil || current.ID != t.ID {
		who := "nobody"
		if current != nil {
			who = current.OwnerName
		}
		return nil, domainerrors.Newf(domainerrors.KindOutOfTurn, "it is %s's turn to draft", who)
	}
	return t, nil
}

// Draft adds a to the owner's team when it is the owner's turn.
func (s *Session) Draft(ownerID string, a *models.Athlet, allowDead bool) (*models.Team, error) {
	t, err := s.CanDraft(ownerID)
	if err != nil {
		return nil, err
	}
	if holder := s.game.DraftedBy(a.WID); holder != nil {
		return nil, domainerrors.Newf(domainerrors.KindAlreadyDrafted, "%s is already in team %s", a.Name, holder.Name)
	}
	if err := AddAthlet(t, a, s.game.TeamSize, allowDead); err != nil {
		return nil, err
	}

	s.game.Athlets[a.WID] = a
	t.UpdatedAt = s.clock.Now()

	if !s.allFull() {
		sched := s.scheduler()
		sched.Advance(func(id uuid.UUID) bool {
			team := s.game.TeamByID(id)
			return team != nil && !team.IsFull(s.game.TeamSize)
		})
		s.game.DraftNumber = sched.Turn()
	}
	s.autoTransition()
	s.touch()
	return t, nil
}

// DropAthlet removes the athlet at idx from the owner's team during the draft.
// The turn counter is not moved back.
func (s *Session) DropAthlet(ownerID string, idx int) (*models.Athlet, error) {
	if err := s.requirePhase("drop an athlet", models.GameStatusDraft); err != nil {
		return nil, err
	}
	t, err := s.ownTeam(ownerID)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(t.AthletIDs) {
		return nil, domainerrors.Newf(domainerrors.KindNotAMember, "team %s has no athlet number %d", t.Name, idx+1)
	}

	wid := t.AthletIDs[idx]
	if err := RemoveAthlet(t, wid); err != nil {
		return nil, err
	}
	a := s.game.Athlets[wid]
	delete(s.game.Athlets, wid)
	t.UpdatedAt = s.clock.Now()
	s.touch()
	return a, nil
}

// SetCaptain picks the owner's captain by roster index.
func (s *Session) SetCaptain(ownerID string, idx int) (*models.Team, error) {
	if err := s.requirePhase("choose a captain", models.GameStatusDraft, models.GameStatusCaptain); err != nil {
		return nil, err
	}
	t, err := s.ownTeam(ownerID)
	if err != nil {
		return nil, err
	}
	if err := SetCaptainByIndex(t, idx); err != nil {
		return nil, err
	}
	t.UpdatedAt = s.clock.Now()
	s.autoTransition()
	s.touch()
	return t, nil
}

func (s *Session) RenameTeam(ownerID, name string) (*models.Team, error) {
	if !s.game.IsActive() {
		return nil, domainerrors.New(domainerrors.KindPhaseViolation, "the game is over")
	}
	t, err := s.ownTeam(ownerID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return t, nil
	}
	t.Name = name
	t.UpdatedAt = s.clock.Now()
	s.touch()
	return t, nil
}

// End closes the game and freezes the ranking.
func (s *Session) End(user models.User) ([]models.Standing, error) {
	if err := s.requireCreator(user, "stop the game"); err != nil {
		return nil, err
	}
	if !s.game.IsActive() {
		return nil, domainerrors.New(domainerrors.KindPhaseViolation, "the game is already over")
	}

	now := s.clock.Now()
	s.game.FinalRanking = Ranking(s.game, now)
	s.game.Status = models.GameStatusEnd
	s.game.EndedAt = &now
	s.touch()
	return slices.Clone(s.game.FinalRanking), nil
}

// CurrentDrafter is nil outside the draft.
func (s *Session) CurrentDrafter() *models.Team {
	if s.game.Status != models.GameStatusDraft {
		return nil
	}
	return s.game.TeamByID(s.scheduler().Current())
}

// DraftOrder lists the teams in the direction of the current round.
func (s *Session) DraftOrder() ([]*models.Team, error) {
	if err := s.requirePhase("show the draft order", models.GameStatusDraft); err != nil {
		return nil, err
	}
	view := s.scheduler().RoundView()
	teams := make([]*models.Team, 0, len(view))
	for _, id := range view {
		if t := s.game.TeamByID(id); t != nil {
			teams = append(teams, t)
		}
	}
	return teams, nil
}

// Round is the 0-based draft round.
func (s *Session) Round() int {
	return s.scheduler().Round()
}

// Ranking is frozen once the game is over.
func (s *Session) Ranking() []models.Standing {
	if s.game.Status == models.GameStatusEnd && s.game.FinalRanking != nil {
		return slices.Clone(s.game.FinalRanking)
	}
	return Ranking(s.game, s.clock.Now())
}

func (s *Session) TeamScore(t *models.Team) TeamScore {
	return ScoreTeam(s.game, t, s.clock.Now())
}

func (s *Session) Report(t *models.Team) TeamReport {
	return BuildReport(s.game, t, s.clock.Now())
}

func (s *Session) scheduler() *Scheduler {
	type slotted struct {
		slot int
		id   uuid.UUID
	}
	var teams []slotted
	for _, t := range s.game.Teams {
		if t.DraftSlot != nil {
			teams = append(teams, slotted{slot: *t.DraftSlot, id: t.ID})
		}
	}
	slices.SortFunc(teams, func(a, b slotted) int {
		return a.slot - b.slot
	})
	order := make([]uuid.UUID, len(teams))
	for i, t := range teams {
		order[i] = t.id
	}
	return NewScheduler(order, s.game.DraftNumber)
}

func (s *Session) autoTransition() {
	if s.game.Status != models.GameStatusDraft && s.game.Status != models.GameStatusCaptain {
		return
	}
	if !s.allFull() {
		return
	}
	for _, t := range s.game.Teams {
		if !t.HasCaptain() {
			s.game.Status = models.GameStatusCaptain
			return
		}
	}
	s.game.Status = models.GameStatusRun
}

func (s *Session) allFull() bool {
	for _, t := range s.game.Teams {
		if !t.IsFull(s.game.TeamSize) {
			return false
		}
	}
	return true
}

func (s *Session) ownTeam(ownerID string) (*models.Team, error) {
	t := s.game.TeamByOwner(ownerID)
	if t == nil {
		return nil, domainerrors.New(domainerrors.KindNoTeam, "you have no team in this game")
	}
	return t, nil
}

func (s *Session) requireCreator(user models.User, action string) error {
	if user.ID != s.game.CreatorID {
		return domainerrors.Newf(domainerrors.KindNotCreator, "only %s can %s", s.game.CreatorName, action)
	}
	return nil
}

func (s *Session) requirePhase(action string, allowed ...models.GameStatus) error {
	if slices.Contains(allowed, s.game.Status) {
		return nil
	}
	return domainerrors.Newf(domainerrors.KindPhaseViolation, "cannot %s while the game is in %s", action, s.game.Status)
}

func (s *Session) touch() {
	s.game.UpdatedAt = s.clock.Now()
}
