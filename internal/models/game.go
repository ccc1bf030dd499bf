package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type GameStatus string

const (
	GameStatusStart   GameStatus = "START"
	GameStatusDraft   GameStatus = "DRAFT"
	GameStatusCaptain GameStatus = "CAPTAIN"
	GameStatusRun     GameStatus = "RUN"
	GameStatusEnd     GameStatus = "END"
)

const DefaultTeamSize = 10

// Game is one play-through in a chat. Athlets is the arena of every rostered athlet keyed by WID.
type Game struct {
	ID           uuid.UUID          `json:"id" db:"id"`
	ChatID       string             `json:"chat_id" db:"chat_id"`
	CreatorID    string             `json:"creator_id" db:"creator_id"`
	CreatorName  string             `json:"creator_name" db:"creator_name"`
	TeamSize     int                `json:"team_size" db:"team_size"`
	Status       GameStatus         `json:"status" db:"status"`
	DraftNumber  int                `json:"draft_number" db:"draft_number"`
	Teams        []*Team            `json:"teams"`
	Athlets      map[string]*Athlet `json:"athlets"`
	FirstDeaths  []string           `json:"first_deaths" db:"first_deaths"`
	FinalRanking []Standing         `json:"final_ranking,omitempty" db:"final_ranking"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" db:"updated_at"`
	EndedAt      *time.Time         `json:"ended_at,omitempty" db:"ended_at"`
}

func NewGame(chatID string, creator User, teamSize int, now time.Time) *Game {
	if teamSize <= 0 {
		teamSize = DefaultTeamSize
	}
	return &Game{
		ID:          uuid.New(),
		ChatID:      chatID,
		CreatorID:   creator.ID,
		CreatorName: creator.DisplayName(),
		TeamSize:    teamSize,
		Status:      GameStatusStart,
		Athlets:     make(map[string]*Athlet),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (g *Game) IsActive() bool {
	return g.Status != GameStatusEnd
}

func (g *Game) TeamByOwner(ownerID string) *Team {
	for _, t := range g.Teams {
		if t.OwnerID == ownerID {
			return t
		}
	}
	return nil
}

func (g *Game) TeamByID(id uuid.UUID) *Team {
	for _, t := range g.Teams {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// DraftedBy returns the team holding wid, if any.
func (g *Game) DraftedBy(wid string) *Team {
	for _, t := range g.Teams {
		if t.Has(wid) {
			return t
		}
	}
	return nil
}

func (g *Game) Athlet(wid string) *Athlet {
	return g.Athlets[wid]
}

// TeamAthlets resolves a team's roster against the arena, in draft order.
func (g *Game) TeamAthlets(t *Team) []*Athlet {
	out := make([]*Athlet, 0, len(t.AthletIDs))
	for _, wid := range t.AthletIDs {
		if a, ok := g.Athlets[wid]; ok {
			out = append(out, a)
		}
	}
	return out
}

// IsFirstDeath reports whether wid belongs to the frozen first-death set.
func (g *Game) IsFirstDeath(wid string) bool {
	return slices.Contains(g.FirstDeaths, wid)
}

// Clone returns a deep copy of the aggregate.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	c := *g
	c.Teams = make([]*Team, len(g.Teams))
	for i, t := range g.Teams {
		c.Teams[i] = t.Clone()
	}
	c.Athlets = make(map[string]*Athlet, len(g.Athlets))
	for wid, a := range g.Athlets {
		c.Athlets[wid] = a.Clone()
	}
	c.FirstDeaths = slices.Clone(g.FirstDeaths)
	c.FinalRanking = slices.Clone(g.FinalRanking)
	if g.EndedAt != nil {
		e := *g.EndedAt
		c.EndedAt = &e
	}
	return &c
}
