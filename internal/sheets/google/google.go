package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"finance/internal/report"
	ports "finance/internal/sheets"

	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Base name without year (e.g. "Resumo"); the year is prefixed per report.
	summaryBase string
	now         func() time.Time

	mu    sync.Mutex
	known map[string]bool
}

var _ ports.SummaryWriter = (*Client)(nil)

// New creates a Sheets client. Credentials come from the environment, see
// newSheetsService.
func New(ctx context.Context, spreadsheetID, summaryBase string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	summaryBase = strings.TrimSpace(summaryBase)
	if summaryBase == "" {
		summaryBase = "Resumo"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		summaryBase:   summaryBase,
		now:           time.Now,
		known:         make(map[string]bool),
	}, nil
}

// WriteMonthSummary writes the header and the month's row into the
// "<year> <base>" sheet, creating the sheet on first use. Month m always
// lands on row m+1.
func (c *Client) WriteMonthSummary(ctx context.Context, r report.Report) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if r.Month < 1 || r.Month > 12 {
		return "", fmt.Errorf("invalid month: %d", r.Month)
	}

	sheet := yearPrefixedName(c.summaryBase, r.Year)
	if err := c.ensureSheet(ctx, sheet); err != nil {
		return "", err
	}

	header := make([]any, len(ports.SummaryHeader))
	for i, h := range ports.SummaryHeader {
		header[i] = h
	}
	rowRange := summaryRange(sheet, r.Month)
	req := &gsheet.BatchUpdateValuesRequest{
		ValueInputOption: "USER_ENTERED",
		Data: []*gsheet.ValueRange{
			{Range: fmt.Sprintf("%s!A1:F1", sheet), Values: [][]any{header}},
			{Range: rowRange, Values: [][]any{summaryRow(r, c.now())}},
		},
	}
	if _, err := c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("failed to update %s: %w", rowRange, err)
	}
	return rowRange, nil
}

func (c *Client) ensureSheet(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.known[name] {
		return nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet metadata: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			c.known[s.Properties.Title] = true
		}
	}
	if c.known[name] {
		return nil
	}

	add := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: name}},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, add).Context(ctx).Do(); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	slog.InfoContext(ctx, "Created summary sheet", "sheet", name)
	c.known[name] = true
	return nil
}

// summaryRow renders the cells written for r. Amounts are plain numbers so
// the sheet can format them.
func summaryRow(r report.Report, updated time.Time) []any {
	top := ""
	if expenses := r.SortedExpenses(); len(expenses) > 0 {
		top = expenses[0].Category
	}
	return []any{
		fmt.Sprintf("%02d/%d", r.Month, r.Year),
		r.TotalIncome.Float(),
		r.TotalExpenses.Float(),
		r.Balance.Float(),
		top,
		updated.UTC().Format(time.RFC3339),
	}
}

func summaryRange(sheet string, month int) string {
	row := month + 1
	return fmt.Sprintf("%s!A%d:F%d", sheet, row, row)
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
