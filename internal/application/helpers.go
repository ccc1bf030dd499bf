package application

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	domainerrors "fantamorto/internal/errors"
)

func noActiveGame() error {
	return domainerrors.New(domainerrors.KindNoActiveGame, "there is no game in this chat, use /start")
}

func writeHeader(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
}

func toRow(values []string) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}

func spreadsheetURL(id string) string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s", id)
}
