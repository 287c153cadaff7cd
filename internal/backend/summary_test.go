package backend

import (
	"context"
	"strings"
	"testing"

	"finance/internal/sheets/memory"
)

func TestSummaryConfigResolve(t *testing.T) {
	tests := []struct {
		name string
		cfg  SummaryConfig
		want SummaryType
	}{
		{"empty without spreadsheet", SummaryConfig{}, SummaryNone},
		{"empty with spreadsheet", SummaryConfig{SpreadsheetID: "abc"}, SummaryGoogle},
		{"explicit memory", SummaryConfig{Type: SummaryMemory, SpreadsheetID: "abc"}, SummaryMemory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Resolve().Type; got != tt.want {
				t.Errorf("Resolve().Type = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSummaryConfigValidate(t *testing.T) {
	if err := (SummaryConfig{Type: "excel"}).Validate(); err == nil || !strings.Contains(err.Error(), "invalid summary backend") {
		t.Errorf("Validate() unknown type = %v", err)
	}
	if err := (SummaryConfig{Type: SummaryGoogle}).Validate(); err == nil || !strings.Contains(err.Error(), "GOOGLE_SPREADSHEET_ID") {
		t.Errorf("Validate() google without id = %v", err)
	}
	if err := (SummaryConfig{Type: SummaryNone}).Validate(); err != nil {
		t.Errorf("Validate() none = %v", err)
	}
}

func TestNewSummaryWriter(t *testing.T) {
	w, err := NewSummaryWriter(context.Background(), SummaryConfig{}, nil)
	if err != nil || w != nil {
		t.Fatalf("none: writer=%v err=%v", w, err)
	}

	w, err = NewSummaryWriter(context.Background(), SummaryConfig{Type: SummaryMemory}, nil)
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := w.(*memory.Store); !ok {
		t.Fatalf("memory: got %T", w)
	}

	if _, err := NewSummaryWriter(context.Background(), SummaryConfig{Type: "excel"}, nil); err == nil {
		t.Fatal("expected error for unknown type")
	}
}
