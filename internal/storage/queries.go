package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"finance/internal/core"
)

const timeLayout = time.RFC3339Nano

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds every statement the repository issues. Relationships are
// always resolved with explicit JOINs; nothing is loaded lazily.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type scanner interface {
	Scan(dest ...any) error
}

// ---- categories ----

const categoryColumns = `id, name, type, color, created_at`

func scanCategory(s scanner) (core.Category, error) {
	var (
		c       core.Category
		typ     string
		created string
	)
	if err := s.Scan(&c.ID, &c.Name, &typ, &c.Color, &created); err != nil {
		return core.Category{}, err
	}
	c.Type = core.TxType(typ)
	c.CreatedAt = parseTimestamp(created)
	return c, nil
}

func (q *Queries) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (q *Queries) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	return scanCategory(row)
}

func (q *Queries) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO categories (name, type, color, created_at) VALUES (?, ?, ?, ?)
		 RETURNING `+categoryColumns,
		c.Name, string(c.Type), c.Color, formatTimestamp(c.CreatedAt))
	return scanCategory(row)
}

func (q *Queries) CountCategories(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n)
	return n, err
}

func (q *Queries) CountTransactionsByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE category_id = ?`, categoryID).Scan(&n)
	return n, err
}

func (q *Queries) DeleteCategory(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ---- transactions ----

const transactionSelect = `SELECT t.id, t.description, t.amount_cents, t.type, t.category_id,
	COALESCE(c.name, ''), t.date, t.created_at, t.updated_at
	FROM transactions t LEFT JOIN categories c ON c.id = t.category_id`

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		t                   core.Transaction
		cents               int64
		typ, date, cat, upd string
	)
	if err := s.Scan(&t.ID, &t.Description, &cents, &typ, &t.CategoryID, &t.CategoryName, &date, &cat, &upd); err != nil {
		return core.Transaction{}, err
	}
	t.Amount = core.MoneyFromCents(cents)
	t.Type = core.TxType(typ)
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("stored date %q: %w", date, err)
	}
	t.Date = d
	t.CreatedAt = parseTimestamp(cat)
	t.UpdatedAt = parseTimestamp(upd)
	return t, nil
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	defer rows.Close()
	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// TransactionFilter narrows a ledger listing. Zero values mean "no filter";
// date bounds are inclusive.
type TransactionFilter struct {
	CategoryID int64
	Type       core.TxType
	StartDate  *core.Date
	EndDate    *core.Date
}

func (f TransactionFilter) where() (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if f.CategoryID != 0 {
		clauses = append(clauses, "t.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.Type != "" {
		clauses = append(clauses, "t.type = ?")
		args = append(args, string(f.Type))
	}
	if f.StartDate != nil {
		clauses = append(clauses, "t.date >= ?")
		args = append(args, f.StartDate.String())
	}
	if f.EndDate != nil {
		clauses = append(clauses, "t.date <= ?")
		args = append(args, f.EndDate.String())
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (q *Queries) CountTransactions(ctx context.Context, f TransactionFilter) (int64, error) {
	where, args := f.where()
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions t`+where, args...).Scan(&n)
	return n, err
}

func (q *Queries) ListTransactions(ctx context.Context, f TransactionFilter, limit, offset int) ([]core.Transaction, error) {
	where, args := f.where()
	query := transactionSelect + where + ` ORDER BY t.date DESC, t.id DESC`
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

// ListTransactionsBetween returns transactions with from <= date < to.
func (q *Queries) ListTransactionsBetween(ctx context.Context, from, to core.Date) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx,
		transactionSelect+` WHERE t.date >= ? AND t.date < ? ORDER BY t.date, t.id`,
		from.String(), to.String())
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

func (q *Queries) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, transactionSelect+` WHERE t.id = ?`, id))
}

func (q *Queries) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO transactions (description, amount_cents, type, category_id, date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.Description, t.Amount.Cents(), string(t.Type), t.CategoryID, t.Date.String(),
		formatTimestamp(t.CreatedAt), formatTimestamp(t.UpdatedAt))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (q *Queries) UpdateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE transactions
		 SET description = ?, amount_cents = ?, type = ?, category_id = ?, date = ?, updated_at = ?
		 WHERE id = ?`,
		t.Description, t.Amount.Cents(), string(t.Type), t.CategoryID, t.Date.String(),
		formatTimestamp(t.UpdatedAt), t.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ---- budgets ----

const budgetSelect = `SELECT b.id, b.category_id, COALESCE(c.name, ''), b.amount_cents, b.month, b.year,
	b.created_at, b.updated_at
	FROM budgets b LEFT JOIN categories c ON c.id = b.category_id`

func scanBudget(s scanner) (core.Budget, error) {
	var (
		b        core.Budget
		cents    int64
		cat, upd string
	)
	if err := s.Scan(&b.ID, &b.CategoryID, &b.CategoryName, &cents, &b.Month, &b.Year, &cat, &upd); err != nil {
		return core.Budget{}, err
	}
	b.Amount = core.MoneyFromCents(cents)
	b.CreatedAt = parseTimestamp(cat)
	b.UpdatedAt = parseTimestamp(upd)
	return b, nil
}

func (q *Queries) ListBudgets(ctx context.Context, month, year int) ([]core.Budget, error) {
	rows, err := q.db.QueryContext(ctx, budgetSelect+` WHERE b.month = ? AND b.year = ? ORDER BY b.id`, month, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (q *Queries) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	return scanBudget(q.db.QueryRowContext(ctx, budgetSelect+` WHERE b.id = ?`, id))
}

func (q *Queries) CreateBudget(ctx context.Context, b core.Budget) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO budgets (category_id, amount_cents, month, year, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		b.CategoryID, b.Amount.Cents(), b.Month, b.Year,
		formatTimestamp(b.CreatedAt), formatTimestamp(b.UpdatedAt))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
