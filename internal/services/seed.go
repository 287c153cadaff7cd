package services

import (
	"context"

	"finance/internal/core"
)

// DefaultCategories is the starter set inserted into an empty database.
var DefaultCategories = []core.Category{
	{Name: "Alimentação", Type: core.Expense, Color: "#ef4444"},
	{Name: "Transporte", Type: core.Expense, Color: "#f97316"},
	{Name: "Moradia", Type: core.Expense, Color: "#eab308"},
	{Name: "Saúde", Type: core.Expense, Color: "#22c55e"},
	{Name: "Educação", Type: core.Expense, Color: "#3b82f6"},
	{Name: "Lazer", Type: core.Expense, Color: "#8b5cf6"},
	{Name: "Roupas", Type: core.Expense, Color: "#ec4899"},
	{Name: "Serviços", Type: core.Expense, Color: "#6b7280"},
	{Name: "Outros", Type: core.Expense, Color: "#64748b"},
	{Name: "Salário", Type: core.Income, Color: "#10b981"},
	{Name: "Freelance", Type: core.Income, Color: "#059669"},
	{Name: "Investimentos", Type: core.Income, Color: "#047857"},
	{Name: "Vendas", Type: core.Income, Color: "#065f46"},
	{Name: "Outras receitas", Type: core.Income, Color: "#064e3b"},
}

// SeedStore is the subset of the store the seed loader needs.
type SeedStore interface {
	CountCategories(ctx context.Context) (int64, error)
	InsertCategories(ctx context.Context, cats []core.Category) error
}

// SeedCategories inserts cats when no category exists yet. It reports how
// many rows were inserted; zero means the database was already populated.
// The insert is all or nothing.
func SeedCategories(ctx context.Context, store SeedStore, cats []core.Category) (int, error) {
	n, err := store.CountCategories(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	for _, c := range cats {
		if err := c.Validate(); err != nil {
			return 0, err
		}
	}
	if err := store.InsertCategories(ctx, cats); err != nil {
		return 0, err
	}
	return len(cats), nil
}
