// Package export renders ledger data into downloadable files.
package export

import (
	"fmt"
	"unicode/utf8"

	"finance/internal/core"

	"github.com/xuri/excelize/v2"
)

const (
	TransactionsSheet = "Transações"
	SpreadsheetMIME   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	maxColumnWidth = 50
)

var spreadsheetHeader = []string{"Data", "Descrição", "Categoria", "Tipo", "Valor"}

// Spreadsheet writes txs, in the order given, to a single-sheet xlsx workbook.
// The header row is bold and every column is sized to its longest value plus
// two, capped at 50.
func Spreadsheet(txs []core.Transaction) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TransactionsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	widths := make([]int, len(spreadsheetHeader))
	track := func(col int, s string) {
		if n := utf8.RuneCountInString(s); n > widths[col] {
			widths[col] = n
		}
	}

	for i, h := range spreadsheetHeader {
		if err := setCell(f, i+1, 1, h); err != nil {
			return nil, err
		}
		track(i, h)
	}

	for r, t := range txs {
		row := r + 2
		values := []any{t.Date.String(), t.Description, t.CategoryName, t.Type.Label(), t.Amount.Float()}
		texts := []string{t.Date.String(), t.Description, t.CategoryName, t.Type.Label(), t.Amount.String()}
		for c, v := range values {
			if err := setCell(f, c+1, row, v); err != nil {
				return nil, err
			}
			track(c, texts[c])
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(spreadsheetHeader), 1)
	if err := f.SetCellStyle(TransactionsSheet, "A1", lastHeader, bold); err != nil {
		return nil, fmt.Errorf("apply header style: %w", err)
	}

	if len(txs) > 0 {
		amount, err := f.NewStyle(&excelize.Style{NumFmt: 2})
		if err != nil {
			return nil, fmt.Errorf("create amount style: %w", err)
		}
		first, _ := excelize.CoordinatesToCellName(len(spreadsheetHeader), 2)
		last, _ := excelize.CoordinatesToCellName(len(spreadsheetHeader), len(txs)+1)
		if err := f.SetCellStyle(TransactionsSheet, first, last, amount); err != nil {
			return nil, fmt.Errorf("apply amount style: %w", err)
		}
	}

	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(TransactionsSheet, col, col, float64(min(w+2, maxColumnWidth))); err != nil {
			return nil, fmt.Errorf("set width of column %s: %w", col, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(TransactionsSheet, cell, v); err != nil {
		return fmt.Errorf("set cell %s: %w", cell, err)
	}
	return nil
}
