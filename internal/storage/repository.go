package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finance/internal/core"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 1000
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

// TransactionPage is one page of a filtered ledger listing.
type TransactionPage struct {
	Transactions []core.Transaction `json:"transactions"`
	Total        int64              `json:"total"`
	Pages        int                `json:"pages"`
	CurrentPage  int                `json:"current_page"`
	PerPage      int                `json:"per_page"`
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

// SetClock replaces the time source used for timestamps.
func (r *SQLiteRepository) SetClock(now func() time.Time) {
	r.now = now
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) withTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(r.queries.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ---- categories ----

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	cats, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if cats == nil {
		cats = []core.Category{}
	}
	return cats, nil
}

// CreateCategory inserts c. A duplicate name is reported as core.ErrConflict
// and leaves the table untouched.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.CreatedAt = r.now()
	var created core.Category
	err := r.withTx(ctx, func(q *Queries) error {
		var err error
		created, err = q.CreateCategory(ctx, c)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return core.Category{}, core.Conflictf("category %q already exists", c.Name)
		}
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	slog.InfoContext(ctx, "Category saved to SQLite", "id", created.ID, "name", created.Name, "type", created.Type)
	return created, nil
}

// DeleteCategory removes a category that nothing references.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	err := r.withTx(ctx, func(q *Queries) error {
		if _, err := q.GetCategory(ctx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return core.NotFoundf("category %d", id)
			}
			return fmt.Errorf("get category: %w", err)
		}

		n, err := q.CountTransactionsByCategory(ctx, id)
		if err != nil {
			return fmt.Errorf("count category transactions: %w", err)
		}
		if n > 0 {
			return core.Conflictf("category %d has dependent transactions", id)
		}

		if _, err := q.DeleteCategory(ctx, id); err != nil {
			if isForeignKeyViolation(err) {
				return core.Conflictf("category %d has dependent budgets", id)
			}
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Category deleted", "id", id)
	return nil
}

func (r *SQLiteRepository) CountCategories(ctx context.Context) (int64, error) {
	n, err := r.queries.CountCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

// InsertCategories stores all of cats in one transaction; any failure rolls
// back every row.
func (r *SQLiteRepository) InsertCategories(ctx context.Context, cats []core.Category) error {
	now := r.now()
	err := r.withTx(ctx, func(q *Queries) error {
		for _, c := range cats {
			c.CreatedAt = now
			if _, err := q.CreateCategory(ctx, c); err != nil {
				if isUniqueViolation(err) {
					return core.Conflictf("category %q already exists", c.Name)
				}
				return fmt.Errorf("insert category %q: %w", c.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return nil
}

// ---- transactions ----

// ListTransactions returns one page of the filtered ledger, newest first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, f TransactionFilter, page, perPage int) (TransactionPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPageSize
	}
	if perPage > MaxPageSize {
		perPage = MaxPageSize
	}

	total, err := r.queries.CountTransactions(ctx, f)
	if err != nil {
		return TransactionPage{}, fmt.Errorf("count transactions: %w", err)
	}

	pages := int((total + int64(perPage) - 1) / int64(perPage))

	// Pages past the end are empty; the offset is only computed within range.
	items := []core.Transaction{}
	if page <= pages {
		items, err = r.queries.ListTransactions(ctx, f, perPage, (page-1)*perPage)
		if err != nil {
			return TransactionPage{}, fmt.Errorf("list transactions: %w", err)
		}
		if items == nil {
			items = []core.Transaction{}
		}
	}

	return TransactionPage{
		Transactions: items,
		Total:        total,
		Pages:        pages,
		CurrentPage:  page,
		PerPage:      perPage,
	}, nil
}

// FilterTransactions returns every transaction matching f, newest first.
func (r *SQLiteRepository) FilterTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error) {
	items, err := r.queries.ListTransactions(ctx, f, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("filter transactions: %w", err)
	}
	return items, nil
}

// TransactionsBetween returns transactions dated in [from, to).
func (r *SQLiteRepository) TransactionsBetween(ctx context.Context, from, to core.Date) ([]core.Transaction, error) {
	items, err := r.queries.ListTransactionsBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list transactions between %s and %s: %w", from, to, err)
	}
	return items, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	t, err := r.queries.GetTransaction(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, core.NotFoundf("transaction %d", id)
		}
		return core.Transaction{}, fmt.Errorf("get transaction by id: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	now := r.now()
	t.CreatedAt, t.UpdatedAt = now, now

	var created core.Transaction
	err := r.withTx(ctx, func(q *Queries) error {
		id, err := q.CreateTransaction(ctx, t)
		if err != nil {
			return err
		}
		created, err = q.GetTransaction(ctx, id)
		return err
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return core.Transaction{}, core.Validationf("category %d does not exist", t.CategoryID)
		}
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", created.ID,
		"description", created.Description,
		"amount_cents", created.Amount.Cents(),
		"type", created.Type,
		"date", created.Date.String())
	return created, nil
}

// UpdateTransaction applies patch to the stored row and returns the row as it
// was before and after the change.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, id int64, patch core.TransactionPatch) (before, after core.Transaction, err error) {
	err = r.withTx(ctx, func(q *Queries) error {
		current, err := q.GetTransaction(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return core.NotFoundf("transaction %d", id)
			}
			return fmt.Errorf("get transaction: %w", err)
		}
		before = current

		next := patch.Apply(current)
		if err := next.Validate(); err != nil {
			return err
		}
		next.UpdatedAt = r.now()
		if _, err := q.UpdateTransaction(ctx, next); err != nil {
			if isForeignKeyViolation(err) {
				return core.Validationf("category %d does not exist", next.CategoryID)
			}
			return fmt.Errorf("update transaction: %w", err)
		}
		after, err = q.GetTransaction(ctx, id)
		return err
	})
	if err != nil {
		return core.Transaction{}, core.Transaction{}, err
	}
	return before, after, nil
}

// DeleteTransaction removes the row and returns it as it was stored.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	var deleted core.Transaction
	err := r.withTx(ctx, func(q *Queries) error {
		t, err := q.GetTransaction(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return core.NotFoundf("transaction %d", id)
			}
			return fmt.Errorf("get transaction: %w", err)
		}
		deleted = t
		_, err = q.DeleteTransaction(ctx, id)
		return err
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return deleted, nil
}

// ---- budgets ----

func (r *SQLiteRepository) ListBudgets(ctx context.Context, month, year int) ([]core.Budget, error) {
	budgets, err := r.queries.ListBudgets(ctx, month, year)
	if err != nil {
		return nil, fmt.Errorf("list budgets for %02d/%d: %w", month, year, err)
	}
	if budgets == nil {
		budgets = []core.Budget{}
	}
	return budgets, nil
}

// CreateBudget inserts b. A second budget for the same category and period is
// reported as core.ErrConflict with no row written.
func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	now := r.now()
	b.CreatedAt, b.UpdatedAt = now, now

	var created core.Budget
	err := r.withTx(ctx, func(q *Queries) error {
		id, err := q.CreateBudget(ctx, b)
		if err != nil {
			return err
		}
		created, err = q.GetBudget(ctx, id)
		return err
	})
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return core.Budget{}, core.Conflictf("budget already exists for category %d in %02d/%d", b.CategoryID, b.Month, b.Year)
		case isForeignKeyViolation(err):
			return core.Budget{}, core.Validationf("category %d does not exist", b.CategoryID)
		}
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget saved to SQLite",
		"id", created.ID,
		"category_id", created.CategoryID,
		"amount_cents", created.Amount.Cents(),
		"month", created.Month,
		"year", created.Year)
	return created, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlitedrv.Error
	if errors.As(err, &se) {
		code := se.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
			return true
		}
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isForeignKeyViolation(err error) bool {
	var se *sqlitedrv.Error
	if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
