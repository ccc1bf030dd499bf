package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"fantamorto/internal/models"
)

// Game stores whole game aggregates. Getters return nil, nil when nothing matches.
type Game interface {
	GetActiveByChat(ctx context.Context, chatID string) (*models.Game, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Game, error)
	Save(ctx context.Context, g *models.Game) error
	ListActive(ctx context.Context) ([]*models.Game, error)
}

// Athlet stores resolved people shared by every game.
type Athlet interface {
	Upsert(ctx context.Context, a *models.Athlet) error
	GetByWID(ctx context.Context, wid string) (*models.Athlet, error)
	ListAliveIDs(ctx context.Context) ([]string, error)
}

type Repository struct {
	Game
	Athlet
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Game:   NewGamePostgres(db),
		Athlet: NewAthletPostgres(db),
		db:     db,
	}
}

// NewMemoryRepository keeps everything in process memory.
func NewMemoryRepository() *Repository {
	store := NewMemoryStore()
	return &Repository{
		Game:   store,
		Athlet: store,
	}
}
