package application

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/xuri/excelize/v2"

	"fantamorto/internal/game"
	"fantamorto/internal/models"
	"fantamorto/internal/repository"
	"fantamorto/pkg/sheets"
)

var ErrSheetsNotConfigured = errors.New("google sheets export is not configured")

type ExportServiceImpl struct {
	games      repository.Game
	sheets     sheets.Client
	ownerEmail string
	clock      clockwork.Clock
	logger     Logger

	mu           sync.Mutex
	spreadsheets map[string]string // chat ID -> spreadsheet ID
}

func NewExportServiceImpl(games repository.Game, client sheets.Client, ownerEmail string, clock clockwork.Clock, logger Logger) *ExportServiceImpl {
	return &ExportServiceImpl{
		games:        games,
		sheets:       client,
		ownerEmail:   ownerEmail,
		clock:        clock,
		logger:       logger,
		spreadsheets: make(map[string]string),
	}
}

// CSV lists one row per rostered athlet.
func (s *ExportServiceImpl) CSV(ctx context.Context, chatID string) ([]byte, error) {
	g, err := s.load(ctx, chatID)
	if err != nil {
		return nil, err
	}

	b := &bytes.Buffer{}
	w := csv.NewWriter(b)
	w.Write(csvHeader)
	for _, t := range g.Teams {
		for _, a := range g.TeamAthlets(t) {
			w.Write([]string{t.OwnerID, t.Name, a.WID, a.Name, strconv.FormatBool(t.IsCaptain(a.WID))})
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return b.Bytes(), nil
}

// Excel builds a workbook with the ranking and every roster.
func (s *ExportServiceImpl) Excel(ctx context.Context, chatID string) ([]byte, error) {
	g, err := s.load(ctx, chatID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()

	f := excelize.NewFile()
	defer f.Close()
	f.NewSheet(excelRankingSheet)
	f.NewSheet(excelTeamsSheet)
	f.DeleteSheet("Sheet1")

	writeHeader(f, excelRankingSheet, rankingHeader)
	for i, st := range game.Ranking(g, now) {
		row := i + 2
		f.SetCellValue(excelRankingSheet, fmt.Sprintf("A%d", row), st.Position)
		f.SetCellValue(excelRankingSheet, fmt.Sprintf("B%d", row), st.TeamName)
		f.SetCellValue(excelRankingSheet, fmt.Sprintf("C%d", row), st.OwnerName)
		f.SetCellValue(excelRankingSheet, fmt.Sprintf("D%d", row), st.Score)
	}
	f.SetColWidth(excelRankingSheet, "A", "A", 10)
	f.SetColWidth(excelRankingSheet, "B", "C", 24)
	f.SetColWidth(excelRankingSheet, "D", "D", 10)

	writeHeader(f, excelTeamsSheet, teamsHeader)
	row := 2
	for _, t := range g.Teams {
		for _, a := range g.TeamAthlets(t) {
			f.SetCellValue(excelTeamsSheet, fmt.Sprintf("A%d", row), t.Name)
			f.SetCellValue(excelTeamsSheet, fmt.Sprintf("B%d", row), a.WID)
			f.SetCellValue(excelTeamsSheet, fmt.Sprintf("C%d", row), a.Name)
			f.SetCellValue(excelTeamsSheet, fmt.Sprintf("D%d", row), a.DateOfBirth.Format(dateLayout))
			if a.IsDead() {
				f.SetCellValue(excelTeamsSheet, fmt.Sprintf("E%d", row), a.DateOfDeath.Format(dateLayout))
			}
			f.SetCellValue(excelTeamsSheet, fmt.Sprintf("F%d", row), t.IsCaptain(a.WID))
			f.SetCellValue(excelTeamsSheet, fmt.Sprintf("G%d", row), game.Score(a, now))
			row++
		}
	}
	f.SetColWidth(excelTeamsSheet, "A", "A", 24)
	f.SetColWidth(excelTeamsSheet, "B", "B", 12)
	f.SetColWidth(excelTeamsSheet, "C", "C", 30)
	f.SetColWidth(excelTeamsSheet, "D", "G", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// SyncSheet pushes the ranking of the chat's game to its spreadsheet and returns the sheet URL.
func (s *ExportServiceImpl) SyncSheet(ctx context.Context, chatID string) (string, error) {
	if s.sheets == nil {
		return "", ErrSheetsNotConfigured
	}
	g, err := s.load(ctx, chatID)
	if err != nil {
		return "", err
	}

	id, err := s.ensureSpreadsheet(ctx, chatID)
	if err != nil {
		return "", err
	}

	values := [][]interface{}{toRow(rankingHeader)}
	for _, st := range game.Ranking(g, s.clock.Now()) {
		values = append(values, []interface{}{st.Position, st.TeamName, st.OwnerName, st.Score})
	}
	if err := s.sheets.ClearRange(ctx, id, sheetsClearRange); err != nil {
		return "", fmt.Errorf("failed to clear spreadsheet: %w", err)
	}
	if err := s.sheets.UpdateValues(ctx, id, sheetsStartCell, values); err != nil {
		return "", fmt.Errorf("failed to update spreadsheet: %w", err)
	}
	return spreadsheetURL(id), nil
}

func (s *ExportServiceImpl) ensureSpreadsheet(ctx context.Context, chatID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.spreadsheets[chatID]; ok {
		return id, nil
	}

	id, _, err := s.sheets.CreateSpreadsheet(ctx, sheetsTitlePrefix+chatID)
	if err != nil {
		return "", fmt.Errorf("failed to create spreadsheet: %w", err)
	}
	if s.ownerEmail != "" {
		if err := s.sheets.AddPermission(ctx, id, s.ownerEmail, sheetsOwnerRole); err != nil {
			return "", fmt.Errorf("failed to add owner permission: %w", err)
		}
	}
	if err := s.sheets.MakePublic(ctx, id); err != nil {
		return "", fmt.Errorf("failed to make spreadsheet public: %w", err)
	}
	s.spreadsheets[chatID] = id
	s.logger.Info("created spreadsheet %s for %s", id, chatID)
	return id, nil
}

func (s *ExportServiceImpl) load(ctx context.Context, chatID string) (*models.Game, error) {
	g, err := s.games.GetActiveByChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	if g == nil {
		return nil, noActiveGame()
	}
	return g, nil
}
