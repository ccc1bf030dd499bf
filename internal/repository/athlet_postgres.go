package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"fantamorto/internal/models"
)

type AthletPostgres struct {
	db *sql.DB
}

func NewAthletPostgres(db *sql.DB) *AthletPostgres {
	return &AthletPostgres{db: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const upsertAthletQuery = `
	INSERT INTO athlets (wid, name, date_of_birth, date_of_death, genders, citizenships, occupations, is_banned, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (wid) DO UPDATE SET
		name = EXCLUDED.name,
		date_of_birth = EXCLUDED.date_of_birth,
		date_of_death = COALESCE(EXCLUDED.date_of_death, athlets.date_of_death),
		genders = EXCLUDED.genders,
		citizenships = EXCLUDED.citizenships,
		occupations = EXCLUDED.occupations,
		is_banned = EXCLUDED.is_banned,
		updated_at = EXCLUDED.updated_at`

func upsertAthlet(ctx context.Context, ex execer, a *models.Athlet) error {
	var dod sql.NullTime
	if a.DateOfDeath != nil {
		dod = sql.NullTime{Time: *a.DateOfDeath, Valid: true}
	}
	_, err := ex.ExecContext(ctx, upsertAthletQuery,
		a.WID, a.Name, a.DateOfBirth, dod,
		pq.Array(nonNil(a.Genders)), pq.Array(nonNil(a.Citizenships)), pq.Array(nonNil(a.Occupations)),
		a.IsBanned, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert athlet %s: %w", a.WID, err)
	}
	return nil
}

func (r *AthletPostgres) Upsert(ctx context.Context, a *models.Athlet) error {
	return upsertAthlet(ctx, r.db, a)
}

func (r *AthletPostgres) GetByWID(ctx context.Context, wid string) (*models.Athlet, error) {
	query := `SELECT wid, name, date_of_birth, date_of_death, genders, citizenships, occupations, is_banned, created_at, updated_at
		FROM athlets WHERE wid = $1`
	a, err := scanAthlet(r.db.QueryRowContext(ctx, query, wid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get athlet %s: %w", wid, err)
	}
	return a, nil
}

func (r *AthletPostgres) ListAliveIDs(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT a.wid
		FROM athlets a
		JOIN team_athlets ta ON ta.wid = a.wid
		JOIN games g ON g.id = ta.game_id
		WHERE g.status <> 'END' AND a.date_of_death IS NULL
		ORDER BY a.wid`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list alive athlets: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var wid string
		if err := rows.Scan(&wid); err != nil {
			return nil, fmt.Errorf("failed to scan athlet id: %w", err)
		}
		ids = append(ids, wid)
	}
	return ids, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAthlet(row scanner) (*models.Athlet, error) {
	var a models.Athlet
	var dod sql.NullTime
	err := row.Scan(&a.WID, &a.Name, &a.DateOfBirth, &dod,
		pq.Array(&a.Genders), pq.Array(&a.Citizenships), pq.Array(&a.Occupations),
		&a.IsBanned, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if dod.Valid {
		d := dod.Time
		a.DateOfDeath = &d
	}
	return &a, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
