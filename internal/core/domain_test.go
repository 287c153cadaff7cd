package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-05")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.String() != "2024-03-05" {
		t.Fatalf("unexpected date %s", d)
	}
	for _, bad := range []string{"", "05/03/2024", "2024-13-01", "2024-02-30"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrValidation) {
			t.Fatalf("%q expected validation error, got %v", bad, err)
		}
	}
}

func TestCategoryValidate(t *testing.T) {
	good := Category{Name: "Lazer", Type: Expense, Color: DefaultCategoryColor}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []Category{
		{Name: " ", Type: Expense, Color: DefaultCategoryColor},
		{Name: "x", Type: "transfer", Color: DefaultCategoryColor},
		{Name: "x", Type: Income, Color: "red"},
	}
	for i, c := range bads {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Description: "ok",
		Amount:      MoneyFromCents(100),
		Type:        Expense,
		CategoryID:  1,
		Date:        NewDate(2025, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	zeroAmount := good
	zeroAmount.Amount = Zero
	if err := zeroAmount.Validate(); err != nil {
		t.Fatalf("zero amount should be accepted, got %v", err)
	}

	bads := []Transaction{
		{Description: "", Amount: MoneyFromCents(1), Type: Expense, CategoryID: 1, Date: NewDate(2025, 1, 1)},
		{Description: "a", Amount: MoneyFromCents(-1), Type: Expense, CategoryID: 1, Date: NewDate(2025, 1, 1)},
		{Description: "a", Amount: MoneyFromCents(1), Type: "other", CategoryID: 1, Date: NewDate(2025, 1, 1)},
		{Description: "a", Amount: MoneyFromCents(1), Type: Income, CategoryID: 0, Date: NewDate(2025, 1, 1)},
		{Description: "a", Amount: MoneyFromCents(1), Type: Income, CategoryID: 1, Date: Date{Time: time.Time{}}},
	}
	for i, tx := range bads {
		if err := tx.Validate(); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d expected validation error, got %v", i, err)
		}
	}
}

func TestTransactionPatchApply(t *testing.T) {
	orig := Transaction{ID: 7, Description: "old", Amount: MoneyFromCents(100), Type: Expense, CategoryID: 1, Date: NewDate(2024, 1, 1)}
	desc := "new"
	got := TransactionPatch{Description: &desc}.Apply(orig)
	if got.Description != "new" || got.Amount.Cents() != 100 || got.Type != Expense || got.CategoryID != 1 || got.Date != orig.Date {
		t.Fatalf("patch touched more than description: %+v", got)
	}
}

func TestPeriodBounds(t *testing.T) {
	start, end := Period{Year: 2024, Month: 12}.Bounds()
	if start.String() != "2024-12-01" || end.String() != "2025-01-01" {
		t.Fatalf("december bounds wrong: %s %s", start, end)
	}
	start, end = Period{Year: 2024, Month: 2}.Bounds()
	if start.String() != "2024-02-01" || end.String() != "2024-03-01" {
		t.Fatalf("february bounds wrong: %s %s", start, end)
	}
}

func TestPeriodValidate(t *testing.T) {
	for _, p := range []Period{{2024, 0}, {2024, 13}, {0, 5}} {
		if err := p.Validate(); !errors.Is(err, ErrValidation) {
			t.Fatalf("%+v expected validation error, got %v", p, err)
		}
	}
	if err := (Period{Year: 2024, Month: 12}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}
