package application

import (
	"context"

	"github.com/jonboulle/clockwork"

	"fantamorto/internal/game"
	"fantamorto/internal/models"
	"fantamorto/internal/repository"
	"fantamorto/pkg/sheets"
)

type Logger interface {
	Error(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Info(format string, v ...interface{})
	Debug(format string, v ...interface{})
}

// Lookup resolves a name or a Wikidata ID into candidate people.
type Lookup interface {
	Search(ctx context.Context, query string) ([]*models.Athlet, error)
}

// MortalityFeed reports which of the given people are now dead.
type MortalityFeed interface {
	FindDead(ctx context.Context, wids []string) ([]*models.Athlet, error)
}

type GameService interface {
	StartGame(ctx context.Context, chatID string, user models.User) (*models.Game, error)
	StopGame(ctx context.Context, chatID string, user models.User) ([]models.Standing, error)
	Join(ctx context.Context, chatID string, user models.User, teamName string) (*models.Team, error)
	StartDraft(ctx context.Context, chatID string, user models.User) (*DraftView, error)
	CancelDraft(ctx context.Context, chatID string, user models.User) error
	DraftOrder(ctx context.Context, chatID string) (*DraftView, error)
	Info(ctx context.Context, query string) ([]*models.Athlet, error)
	Draft(ctx context.Context, chatID string, user models.User, query string) (*DraftResult, error)
	DropAthlet(ctx context.Context, chatID string, user models.User, idx int) (*models.Athlet, error)
	SetCaptain(ctx context.Context, chatID string, user models.User, idx int) (*CaptainResult, error)
	Rename(ctx context.Context, chatID string, user models.User, name string) (*models.Team, error)
	Ranking(ctx context.Context, chatID string) ([]models.Standing, error)
	Team(ctx context.Context, chatID string, user models.User) (*game.TeamReport, error)
	Teams(ctx context.Context, chatID string) ([]*models.Team, error)
	Kill(ctx context.Context, user models.User, wid string) (*SweepResult, error)
	RequireAdmin(user models.User) error
}

type MortalityService interface {
	Sweep(ctx context.Context) (*SweepResult, error)
}

type ExportService interface {
	CSV(ctx context.Context, chatID string) ([]byte, error)
	Excel(ctx context.Context, chatID string) ([]byte, error)
	SyncSheet(ctx context.Context, chatID string) (string, error)
}

// Settings are the game rules and permissions chosen at startup.
type Settings struct {
	TeamSize       int
	AllowDeadPicks bool
	AdminUserIDs   []string
	OwnerEmail     string
}

type Service struct {
	Game      GameService
	Mortality MortalityService
	Export    ExportService
}

// NewService wires the application services. sheetsClient may be nil.
func NewService(
	repos *repository.Repository,
	lookup Lookup,
	feed MortalityFeed,
	banList *repository.BanList,
	sheetsClient sheets.Client,
	settings Settings,
	clock clockwork.Clock,
	logger Logger,
) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if banList == nil {
		banList = repository.NewBanList()
	}
	locks := newChatLocks()
	cache := repository.NewLookupCache()

	mortality := NewMortalityServiceImpl(repos.Game, repos.Athlet, feed, banList, cache, locks, clock, logger)
	return &Service{
		Game:      NewGameServiceImpl(repos.Game, repos.Athlet, lookup, banList, cache, locks, mortality, settings, clock, logger),
		Mortality: mortality,
		Export:    NewExportServiceImpl(repos.Game, sheetsClient, settings.OwnerEmail, clock, logger),
	}
}
