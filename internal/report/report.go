// Package report aggregates one month of ledger activity into the dashboard
// summary used by the API and by the document export.
package report

import (
	"context"
	"fmt"
	"sort"

	"finance/internal/core"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var hundred = decimal.NewFromInt(100)

// Source is the read side of the store the report needs.
type Source interface {
	TransactionsBetween(ctx context.Context, from, to core.Date) ([]core.Transaction, error)
	ListBudgets(ctx context.Context, month, year int) ([]core.Budget, error)
}

type (
	// Report is the monthly summary. Totals are exact sums over cents.
	Report struct {
		TotalIncome        core.Money            `json:"total_income"`
		TotalExpenses      core.Money            `json:"total_expenses"`
		Balance            core.Money            `json:"balance"`
		ExpensesByCategory map[string]core.Money `json:"expenses_by_category"`
		BudgetAnalysis     []BudgetLine          `json:"budget_analysis"`
		Month              int                   `json:"month"`
		Year               int                   `json:"year"`
	}

	// BudgetLine compares one budget with what was actually spent against it.
	BudgetLine struct {
		CategoryID int64      `json:"category_id"`
		Category   string     `json:"category"`
		Budgeted   core.Money `json:"budgeted"`
		Spent      core.Money `json:"spent"`
		Remaining  core.Money `json:"remaining"`
		Percentage float64    `json:"percentage"`
	}

	// CategoryTotal is one entry of ExpensesByCategory in display order.
	CategoryTotal struct {
		Category string
		Amount   core.Money
	}
)

// Build loads the transactions and budgets of the given month and aggregates
// them. Transactions are fetched exactly once for the half-open interval
// [first of month, first of next month).
func Build(ctx context.Context, src Source, year, month int) (Report, error) {
	p := core.Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return Report{}, err
	}
	start, end := p.Bounds()

	var (
		txs     []core.Transaction
		budgets []core.Budget
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = src.TransactionsBetween(gctx, start, end)
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		budgets, err = src.ListBudgets(gctx, month, year)
		if err != nil {
			return fmt.Errorf("load budgets: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	return Aggregate(p, txs, budgets), nil
}

// Aggregate computes the report from already loaded rows. Transactions outside
// p are expected to have been filtered by the caller.
func Aggregate(p core.Period, txs []core.Transaction, budgets []core.Budget) Report {
	r := Report{
		TotalIncome:        core.Zero,
		TotalExpenses:      core.Zero,
		ExpensesByCategory: make(map[string]core.Money),
		BudgetAnalysis:     make([]BudgetLine, 0, len(budgets)),
		Month:              p.Month,
		Year:               p.Year,
	}

	spentByCategory := make(map[int64]core.Money)
	for _, t := range txs {
		switch t.Type {
		case core.Income:
			r.TotalIncome = r.TotalIncome.Add(t.Amount)
		case core.Expense:
			r.TotalExpenses = r.TotalExpenses.Add(t.Amount)
			r.ExpensesByCategory[t.CategoryName] = r.ExpensesByCategory[t.CategoryName].Add(t.Amount)
			spentByCategory[t.CategoryID] = spentByCategory[t.CategoryID].Add(t.Amount)
		}
	}
	r.Balance = r.TotalIncome.Sub(r.TotalExpenses)

	for _, b := range budgets {
		spent := spentByCategory[b.CategoryID]
		r.BudgetAnalysis = append(r.BudgetAnalysis, BudgetLine{
			CategoryID: b.CategoryID,
			Category:   b.CategoryName,
			Budgeted:   b.Amount,
			Spent:      spent,
			Remaining:  b.Amount.Sub(spent),
			Percentage: percentage(spent, b.Amount),
		})
	}

	return r
}

// percentage returns spent as a share of budgeted, rounded to two decimals.
// A non-positive budget yields 0.
func percentage(spent, budgeted core.Money) float64 {
	if !budgeted.IsPositive() {
		return 0
	}
	return spent.Decimal().Mul(hundred).Div(budgeted.Decimal()).Round(2).InexactFloat64()
}

// SortedExpenses returns ExpensesByCategory ordered by amount, largest first,
// with ties broken by name.
func (r Report) SortedExpenses() []CategoryTotal {
	out := make([]CategoryTotal, 0, len(r.ExpensesByCategory))
	for name, amount := range r.ExpensesByCategory {
		out = append(out, CategoryTotal{Category: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Decimal().Cmp(out[j].Amount.Decimal()); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Period returns the month the report covers.
func (r Report) Period() core.Period {
	return core.Period{Year: r.Year, Month: r.Month}
}
