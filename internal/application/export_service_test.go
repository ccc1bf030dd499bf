package application

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

type fakeSheets struct {
	created []string
	shared  []string
	public  int
	cleared []string
	values  [][]interface{}
}

func (f *fakeSheets) CreateSpreadsheet(_ context.Context, title string) (string, string, error) {
	f.created = append(f.created, title)
	return "sheet-1", "https://example.test/sheet-1", nil
}

func (f *fakeSheets) AddPermission(_ context.Context, _, email, _ string) error {
	f.shared = append(f.shared, email)
	return nil
}

func (f *fakeSheets) MakePublic(context.Context, string) error {
	f.public++
	return nil
}

func (f *fakeSheets) ClearRange(_ context.Context, _, rangeStr string) error {
	f.cleared = append(f.cleared, rangeStr)
	return nil
}

func (f *fakeSheets) UpdateValues(_ context.Context, _, _ string, values [][]interface{}) error {
	f.values = values
	return nil
}

func TestExportCSV(t *testing.T) {
	f := newFixture(t, 2, nil)
	f.drafted(t, pick{ann, "Q1"}, pick{bob, "Q2"})
	if _, err := f.svc.Game.SetCaptain(context.Background(), testChat, bob, 0); err != nil {
		t.Fatalf("SetCaptain error = %v", err)
	}

	data, err := f.svc.Export.CSV(context.Background(), testChat)
	if err != nil {
		t.Fatalf("CSV error = %v", err)
	}
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("csv parse error = %v", err)
	}
	want := [][]string{
		{"Owner ID", "Team", "Athlet ID", "Athlet", "Captain"},
		{"1", "Team Ann", "Q1", "Person Q1", "false"},
		{"2", "Team Bob", "Q2", "Person Q2", "true"},
	}
	if len(rows) != len(want) {
		t.Fatalf("rows = %v, want %v", rows, want)
	}
	for i := range want {
		if !slices.Equal(rows[i], want[i]) {
			t.Fatalf("row %d = %v, want %v", i, rows[i], want[i])
		}
	}
}

func TestExportExcel(t *testing.T) {
	f := newFixture(t, 2, nil)
	f.drafted(t, pick{ann, "Q1"})

	data, err := f.svc.Export.Excel(context.Background(), testChat)
	if err != nil {
		t.Fatalf("Excel error = %v", err)
	}
	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader error = %v", err)
	}
	defer book.Close()

	if sheets := book.GetSheetList(); !slices.Equal(sheets, []string{"Ranking", "Teams"}) {
		t.Fatalf("sheets = %v", sheets)
	}
	ranking, err := book.GetRows("Ranking")
	if err != nil || len(ranking) != 3 || ranking[0][1] != "Team" {
		t.Fatalf("ranking rows = %v, %v", ranking, err)
	}
	teams, err := book.GetRows("Teams")
	if err != nil || len(teams) != 2 || teams[1][1] != "Q1" || teams[1][3] != "1950-08-01" {
		t.Fatalf("teams rows = %v, %v", teams, err)
	}
}

func TestSyncSheet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2, nil)
	f.drafted(t)
	if _, err := f.svc.Export.SyncSheet(ctx, testChat); !errors.Is(err, ErrSheetsNotConfigured) {
		t.Fatalf("SyncSheet error = %v, want ErrSheetsNotConfigured", err)
	}

	client := &fakeSheets{}
	f = newFixture(t, 2, client)
	f.drafted(t)
	for i := 0; i < 2; i++ {
		url, err := f.svc.Export.SyncSheet(ctx, testChat)
		if err != nil {
			t.Fatalf("SyncSheet error = %v", err)
		}
		if !strings.HasSuffix(url, "/sheet-1") {
			t.Fatalf("url = %q", url)
		}
	}
	if len(client.created) != 1 || client.public != 1 {
		t.Fatalf("spreadsheet created %d times, made public %d times", len(client.created), client.public)
	}
	if len(client.cleared) != 2 || len(client.values) != 3 || client.values[0][0] != "Position" {
		t.Fatalf("values = %v", client.values)
	}
}
