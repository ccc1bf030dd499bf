package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Team is one player's roster within a game. Athlets are referenced by WID in draft order.
type Team struct {
	ID            uuid.UUID `json:"id" db:"id"`
	GameID        uuid.UUID `json:"game_id" db:"game_id"`
	Name          string    `json:"name" db:"name"`
	OwnerID       string    `json:"owner_id" db:"owner_id"`
	OwnerName     string    `json:"owner_name" db:"owner_name"`
	AthletIDs     []string  `json:"athlet_ids" db:"athlet_ids"`
	CaptainID     string    `json:"captain_id,omitempty" db:"captain_id"`
	HasFirstDeath bool      `json:"has_first_death" db:"has_first_death"`
	DraftSlot     *int      `json:"draft_slot,omitempty" db:"draft_slot"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

func (t *Team) Has(wid string) bool {
	return slices.Contains(t.AthletIDs, wid)
}

func (t *Team) IsFull(capacity int) bool {
	return len(t.AthletIDs) >= capacity
}

func (t *Team) HasCaptain() bool {
	return t.CaptainID != ""
}

func (t *Team) IsCaptain(wid string) bool {
	return t.CaptainID != "" && t.CaptainID == wid
}

func (t *Team) Clone() *Team {
	if t == nil {
		return nil
	}
	c := *t
	c.AthletIDs = slices.Clone(t.AthletIDs)
	if t.DraftSlot != nil {
		s := *t.DraftSlot
		c.DraftSlot = &s
	}
	return &c
}
