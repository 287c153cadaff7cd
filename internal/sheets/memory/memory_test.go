package memory

import (
	"context"
	"errors"
	"testing"

	"finance/internal/core"
	"finance/internal/report"
)

func TestMemoryStoreWriteAndRead(t *testing.T) {
	s := New()
	ctx := context.Background()

	r := report.Aggregate(core.Period{Year: 2024, Month: 3}, []core.Transaction{
		{Type: core.Income, Amount: core.MoneyFromCents(1000), CategoryName: "Salário"},
	}, nil)
	ref, err := s.WriteMonthSummary(ctx, r)
	if err != nil || ref != "mem:2024-03" {
		t.Fatalf("unexpected write: ref=%q err=%v", ref, err)
	}

	r.TotalIncome = core.MoneyFromCents(5000)
	if _, err := s.WriteMonthSummary(ctx, r); err != nil {
		t.Fatalf("second write: %v", err)
	}

	got, ok := s.Summary(core.Period{Year: 2024, Month: 3})
	if !ok {
		t.Fatal("expected stored summary")
	}
	if got.TotalIncome.String() != "50.00" {
		t.Errorf("expected overwritten summary, got income %s", got.TotalIncome)
	}
	if s.Writes() != 2 {
		t.Errorf("expected 2 writes, got %d", s.Writes())
	}
	if _, ok := s.Summary(core.Period{Year: 2024, Month: 4}); ok {
		t.Error("unexpected summary for april")
	}
}

func TestMemoryStoreRejectsInvalidPeriod(t *testing.T) {
	s := New()
	_, err := s.WriteMonthSummary(context.Background(), report.Report{Year: 2024, Month: 13})
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if s.Writes() != 0 {
		t.Errorf("expected no writes, got %d", s.Writes())
	}
}
