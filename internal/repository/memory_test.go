package repository

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"fantamorto/internal/models"
)

func sampleGame() *models.Game {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	dod := time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)
	slot0, slot1 := 1, 0
	g := models.NewGame("tg:42", models.User{ID: "1", Name: "Ann"}, 2, now)
	g.Status = models.GameStatusDraft
	g.DraftNumber = 3
	g.Athlets = map[string]*models.Athlet{
		"Q1": {WID: "Q1", Name: "One", DateOfBirth: time.Date(1940, time.May, 1, 0, 0, 0, 0, time.UTC), DateOfDeath: &dod,
			Genders: []string{"male"}, CreatedAt: now, UpdatedAt: now},
		"Q2": {WID: "Q2", Name: "Two", DateOfBirth: time.Date(1950, time.May, 1, 0, 0, 0, 0, time.UTC),
			Occupations: []string{"actor"}, CreatedAt: now, UpdatedAt: now},
	}
	g.Teams = []*models.Team{
		{ID: uuid.New(), GameID: g.ID, Name: "A", OwnerID: "1", AthletIDs: []string{"Q1"}, CaptainID: "Q1",
			HasFirstDeath: true, DraftSlot: &slot0, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New(), GameID: g.ID, Name: "B", OwnerID: "2", AthletIDs: []string{"Q2"}, DraftSlot: &slot1,
			CreatedAt: now, UpdatedAt: now},
	}
	g.FirstDeaths = []string{"Q1"}
	return g
}

func TestMemoryRoundTripPreservesDraftState(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	g := sampleGame()
	if err := store.Save(ctx, g); err != nil {
		t.Fatalf("Save error = %v", err)
	}

	got, err := store.GetActiveByChat(ctx, "tg:42")
	if err != nil {
		t.Fatalf("GetActiveByChat error = %v", err)
	}
	if !reflect.DeepEqual(got, g) {
		t.Fatalf("loaded game differs from saved game")
	}

	got.Teams[0].AthletIDs[0] = "Q9"
	again, _ := store.Get(ctx, g.ID)
	if again.Teams[0].AthletIDs[0] != "Q1" {
		t.Fatalf("store shares state with loaded copy")
	}
}

func TestJSONRoundTripPreservesDraftState(t *testing.T) {
	g := sampleGame()
	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	var got models.Game
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if got.DraftNumber != 3 || *got.Teams[0].DraftSlot != 1 || *got.Teams[1].DraftSlot != 0 {
		t.Fatalf("draft cursor or slots lost: %d %v %v", got.DraftNumber, got.Teams[0].DraftSlot, got.Teams[1].DraftSlot)
	}
	if len(got.FirstDeaths) != 1 || got.FirstDeaths[0] != "Q1" || !got.Teams[0].HasFirstDeath {
		t.Fatalf("first deaths lost: %v", got.FirstDeaths)
	}
	if !got.Athlets["Q1"].DateOfDeath.Equal(*g.Athlets["Q1"].DateOfDeath) {
		t.Fatalf("date of death lost")
	}
}

func TestMemoryActiveGames(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	g := sampleGame()
	if err := store.Save(ctx, g); err != nil {
		t.Fatalf("Save error = %v", err)
	}

	ids, err := store.ListAliveIDs(ctx)
	if err != nil {
		t.Fatalf("ListAliveIDs error = %v", err)
	}
	if len(ids) != 1 || ids[0] != "Q2" {
		t.Fatalf("alive ids = %v, want [Q2]", ids)
	}

	g.Status = models.GameStatusEnd
	if err := store.Save(ctx, g); err != nil {
		t.Fatalf("Save error = %v", err)
	}
	if got, _ := store.GetActiveByChat(ctx, "tg:42"); got != nil {
		t.Fatalf("ended game still active")
	}
	if games, _ := store.ListActive(ctx); len(games) != 0 {
		t.Fatalf("ListActive = %d games, want 0", len(games))
	}
	if ids, _ := store.ListAliveIDs(ctx); len(ids) != 0 {
		t.Fatalf("alive ids of ended games = %v", ids)
	}
}

func TestMemoryUpsertKeepsKnownDeath(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	dod := time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)
	if err := store.Upsert(ctx, &models.Athlet{WID: "Q1", Name: "One", DateOfDeath: &dod}); err != nil {
		t.Fatalf("Upsert error = %v", err)
	}
	if err := store.Upsert(ctx, &models.Athlet{WID: "Q1", Name: "One renamed"}); err != nil {
		t.Fatalf("Upsert error = %v", err)
	}
	a, _ := store.GetByWID(ctx, "Q1")
	if a.Name != "One renamed" || !a.IsDead() {
		t.Fatalf("athlet = %+v", a)
	}
	if missing, err := store.GetByWID(ctx, "Q404"); missing != nil || err != nil {
		t.Fatalf("GetByWID(missing) = %v, %v", missing, err)
	}
}

func TestMemoryArenaFollowsAthletTable(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	g := sampleGame()
	if err := store.Save(ctx, g); err != nil {
		t.Fatalf("Save error = %v", err)
	}
	dod := time.Date(2024, time.May, 5, 0, 0, 0, 0, time.UTC)
	fresh := g.Athlets["Q2"].Clone()
	fresh.DateOfDeath = &dod
	if err := store.Upsert(ctx, fresh); err != nil {
		t.Fatalf("Upsert error = %v", err)
	}
	got, _ := store.Get(ctx, g.ID)
	if !got.Athlets["Q2"].IsDead() {
		t.Fatalf("arena not refreshed from athlet table")
	}
}
