package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"fantamorto/internal/models"
)

type GamePostgres struct {
	db *sql.DB
}

func NewGamePostgres(db *sql.DB) *GamePostgres {
	return &GamePostgres{db: db}
}

const selectGameColumns = `SELECT id, chat_id, creator_id, creator_name, team_size, status, draft_number,
	first_deaths, final_ranking, created_at, updated_at, ended_at FROM games`

// Save writes the game, its teams, rosters and arena athlets in one transaction.
func (r *GamePostgres) Save(ctx context.Context, g *models.Game) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var ranking []byte
	if g.FinalRanking != nil {
		ranking, err = json.Marshal(g.FinalRanking)
		if err != nil {
			return fmt.Errorf("failed to encode final ranking: %w", err)
		}
	}
	var endedAt sql.NullTime
	if g.EndedAt != nil {
		endedAt = sql.NullTime{Time: *g.EndedAt, Valid: true}
	}

	query := `
		INSERT INTO games (id, chat_id, creator_id, creator_name, team_size, status, draft_number,
			first_deaths, final_ranking, created_at, updated_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			creator_name = EXCLUDED.creator_name,
			team_size = EXCLUDED.team_size,
			status = EXCLUDED.status,
			draft_number = EXCLUDED.draft_number,
			first_deaths = EXCLUDED.first_deaths,
			final_ranking = EXCLUDED.final_ranking,
			updated_at = EXCLUDED.updated_at,
			ended_at = EXCLUDED.ended_at`
	_, err = tx.ExecContext(ctx, query, g.ID, g.ChatID, g.CreatorID, g.CreatorName, g.TeamSize, string(g.Status),
		g.DraftNumber, pq.Array(nonNil(g.FirstDeaths)), ranking, g.CreatedAt, g.UpdatedAt, endedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert game: %w", err)
	}

	for _, a := range g.Athlets {
		if err = upsertAthlet(ctx, tx, a); err != nil {
			return err
		}
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM teams WHERE game_id = $1", g.ID); err != nil {
		return fmt.Errorf("failed to clear teams: %w", err)
	}

	for i, t := range g.Teams {
		var captain sql.NullString
		if t.CaptainID != "" {
			captain = sql.NullString{String: t.CaptainID, Valid: true}
		}
		var slot sql.NullInt64
		if t.DraftSlot != nil {
			slot = sql.NullInt64{Int64: int64(*t.DraftSlot), Valid: true}
		}
		tQuery := `INSERT INTO teams (id, game_id, join_order, name, owner_id, owner_name, captain_id,
				has_first_death, draft_slot, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
		_, err = tx.ExecContext(ctx, tQuery, t.ID, g.ID, i, t.Name, t.OwnerID, t.OwnerName, captain,
			t.HasFirstDeath, slot, t.CreatedAt, t.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert team %s: %w", t.Name, err)
		}

		for pos, wid := range t.AthletIDs {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO team_athlets (team_id, game_id, position, wid) VALUES ($1, $2, $3, $4)",
				t.ID, g.ID, pos, wid)
			if err != nil {
				return fmt.Errorf("failed to insert roster entry %s: %w", wid, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *GamePostgres) Get(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	g, err := scanGame(r.db.QueryRowContext(ctx, selectGameColumns+" WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if err := r.loadTeams(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (r *GamePostgres) GetActiveByChat(ctx context.Context, chatID string) (*models.Game, error) {
	g, err := scanGame(r.db.QueryRowContext(ctx, selectGameColumns+" WHERE chat_id = $1 AND status <> 'END'", chatID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active game: %w", err)
	}
	if err := r.loadTeams(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (r *GamePostgres) ListActive(ctx context.Context) ([]*models.Game, error) {
	rows, err := r.db.QueryContext(ctx, selectGameColumns+" WHERE status <> 'END' ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to list active games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, g := range games {
		if err := r.loadTeams(ctx, g); err != nil {
			return nil, err
		}
	}
	return games, nil
}

func (r *GamePostgres) loadTeams(ctx context.Context, g *models.Game) error {
	query := `SELECT id, name, owner_id, owner_name, captain_id, has_first_death, draft_slot, created_at, updated_at
		FROM teams WHERE game_id = $1 ORDER BY join_order`
	rows, err := r.db.QueryContext(ctx, query, g.ID)
	if err != nil {
		return fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]*models.Team)
	for rows.Next() {
		t := &models.Team{GameID: g.ID}
		var captain sql.NullString
		var slot sql.NullInt64
		if err := rows.Scan(&t.ID, &t.Name, &t.OwnerID, &t.OwnerName, &captain, &t.HasFirstDeath, &slot,
			&t.CreatedAt, &t.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan team: %w", err)
		}
		t.CaptainID = captain.String
		if slot.Valid {
			s := int(slot.Int64)
			t.DraftSlot = &s
		}
		g.Teams = append(g.Teams, t)
		byID[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return err
	}

	aQuery := `
		SELECT ta.team_id, a.wid, a.name, a.date_of_birth, a.date_of_death, a.genders, a.citizenships,
			a.occupations, a.is_banned, a.created_at, a.updated_at
		FROM team_athlets ta
		JOIN athlets a ON a.wid = ta.wid
		WHERE ta.game_id = $1
		ORDER BY ta.team_id, ta.position`
	aRows, err := r.db.QueryContext(ctx, aQuery, g.ID)
	if err != nil {
		return fmt.Errorf("failed to query rosters: %w", err)
	}
	defer aRows.Close()

	for aRows.Next() {
		var teamID uuid.UUID
		var a models.Athlet
		var dod sql.NullTime
		if err := aRows.Scan(&teamID, &a.WID, &a.Name, &a.DateOfBirth, &dod,
			pq.Array(&a.Genders), pq.Array(&a.Citizenships), pq.Array(&a.Occupations),
			&a.IsBanned, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan roster entry: %w", err)
		}
		if dod.Valid {
			d := dod.Time
			a.DateOfDeath = &d
		}
		if t, ok := byID[teamID]; ok {
			t.AthletIDs = append(t.AthletIDs, a.WID)
			g.Athlets[a.WID] = &a
		}
	}
	return aRows.Err()
}

func scanGame(row scanner) (*models.Game, error) {
	g := &models.Game{Athlets: make(map[string]*models.Athlet)}
	var status string
	var ranking []byte
	var endedAt sql.NullTime
	err := row.Scan(&g.ID, &g.ChatID, &g.CreatorID, &g.CreatorName, &g.TeamSize, &status, &g.DraftNumber,
		pq.Array(&g.FirstDeaths), &ranking, &g.CreatedAt, &g.UpdatedAt, &endedAt)
	if err != nil {
		return nil, err
	}
	g.Status = models.GameStatus(status)
	if len(g.FirstDeaths) == 0 {
		g.FirstDeaths = nil
	}
	if len(ranking) > 0 {
		if err := json.Unmarshal(ranking, &g.FinalRanking); err != nil {
			return nil, fmt.Errorf("failed to decode final ranking: %w", err)
		}
	}
	if endedAt.Valid {
		e := endedAt.Time
		g.EndedAt = &e
	}
	return g, nil
}
