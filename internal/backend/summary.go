// Package backend selects the spreadsheet mirror the worker writes monthly
// summaries to.
package backend

import (
	"context"
	"fmt"

	applog "finance/internal/log"
	"finance/internal/sheets"
	gsheet "finance/internal/sheets/google"
	"finance/internal/sheets/memory"
)

// SummaryType names a summary mirror implementation.
type SummaryType string

const (
	SummaryNone   SummaryType = "none"
	SummaryMemory SummaryType = "memory"
	SummaryGoogle SummaryType = "google"
)

func (t SummaryType) String() string {
	return string(t)
}

// IsValid returns true if the mirror type is known.
func (t SummaryType) IsValid() bool {
	switch t {
	case SummaryNone, SummaryMemory, SummaryGoogle:
		return true
	default:
		return false
	}
}

// SummaryTypes lists the accepted values of SUMMARY_BACKEND.
func SummaryTypes() []SummaryType {
	return []SummaryType{SummaryNone, SummaryMemory, SummaryGoogle}
}

// SummaryConfig holds what the mirror constructors need.
type SummaryConfig struct {
	Type          SummaryType
	SpreadsheetID string
	SheetBase     string
}

// Resolve fills in the type when it was left empty: google when a
// spreadsheet is configured, none otherwise.
func (c SummaryConfig) Resolve() SummaryConfig {
	if c.Type == "" {
		c.Type = SummaryNone
		if c.SpreadsheetID != "" {
			c.Type = SummaryGoogle
		}
	}
	return c
}

func (c SummaryConfig) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid summary backend %q: must be one of %v", c.Type, SummaryTypes())
	}
	if c.Type == SummaryGoogle && c.SpreadsheetID == "" {
		return fmt.Errorf("GOOGLE_SPREADSHEET_ID is required for the google summary backend")
	}
	return nil
}

// NewSummaryWriter builds the configured mirror. It returns a nil writer for
// SummaryNone so callers can pass the result straight to the worker.
func NewSummaryWriter(ctx context.Context, cfg SummaryConfig, logger *applog.Logger) (sheets.SummaryWriter, error) {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentSheets)

	cfg = cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case SummaryGoogle:
		client, err := gsheet.New(ctx, cfg.SpreadsheetID, cfg.SheetBase)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		logger.Info("Initialized Google Sheets summary mirror", "spreadsheet_id", cfg.SpreadsheetID)
		return client, nil
	case SummaryMemory:
		logger.Info("Initialized in-memory summary mirror")
		return memory.New(), nil
	default:
		logger.Info("Summary mirror disabled")
		return nil, nil
	}
}
