package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"finance/internal/amqp"
	"finance/internal/core"
	"finance/internal/storage"
)

// Store is the persistence the ledger works against.
type Store interface {
	ListCategories(ctx context.Context) ([]core.Category, error)
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	CountCategories(ctx context.Context) (int64, error)
	InsertCategories(ctx context.Context, cats []core.Category) error

	ListTransactions(ctx context.Context, f storage.TransactionFilter, page, perPage int) (storage.TransactionPage, error)
	FilterTransactions(ctx context.Context, f storage.TransactionFilter) ([]core.Transaction, error)
	TransactionsBetween(ctx context.Context, from, to core.Date) ([]core.Transaction, error)
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, id int64, patch core.TransactionPatch) (before, after core.Transaction, err error)
	DeleteTransaction(ctx context.Context, id int64) (core.Transaction, error)

	ListBudgets(ctx context.Context, month, year int) ([]core.Budget, error)
	CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
}

// EventPublisher is satisfied by *amqp.Client.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, e *amqp.LedgerEvent) error
}

type (
	CategoryInput struct {
		Name  string
		Type  core.TxType
		Color string
	}

	// TransactionInput is a new ledger entry. A nil Date means today.
	TransactionInput struct {
		Description string
		Amount      *core.Money
		Type        core.TxType
		CategoryID  int64
		Date        *core.Date
	}

	BudgetInput struct {
		CategoryID int64
		Amount     *core.Money
		Month      int
		Year       int
	}

	// TransactionQuery is a filtered, paginated ledger listing.
	TransactionQuery struct {
		Filter  storage.TransactionFilter
		Page    int
		PerPage int
	}
)

// Ledger orchestrates category, transaction and budget writes. Every write
// that changes a month's figures notifies the registered listeners and, when
// a publisher is configured, emits a ledger event.
type Ledger struct {
	store  Store
	events EventPublisher
	now    func() time.Time

	mu        sync.RWMutex
	listeners []func(core.Period)
}

func NewLedger(store Store, events EventPublisher) *Ledger {
	return &Ledger{
		store:  store,
		events: events,
		now:    time.Now,
	}
}

// SetClock replaces the clock used for default dates and periods.
func (l *Ledger) SetClock(now func() time.Time) {
	l.now = now
}

// Today returns the current calendar date on the ledger clock.
func (l *Ledger) Today() core.Date {
	return core.DateOf(l.now())
}

// CurrentPeriod returns the month containing Today.
func (l *Ledger) CurrentPeriod() core.Period {
	return core.CurrentPeriod(l.now())
}

// OnChange registers fn to run after any write that affects period p.
func (l *Ledger) OnChange(fn func(p core.Period)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// ---- categories ----

func (l *Ledger) ListCategories(ctx context.Context) ([]core.Category, error) {
	return l.store.ListCategories(ctx)
}

func (l *Ledger) CreateCategory(ctx context.Context, in CategoryInput) (core.Category, error) {
	c := core.Category{
		Name:  strings.TrimSpace(in.Name),
		Type:  in.Type,
		Color: strings.TrimSpace(in.Color),
	}
	if c.Color == "" {
		c.Color = core.DefaultCategoryColor
	}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	return l.store.CreateCategory(ctx, c)
}

func (l *Ledger) DeleteCategory(ctx context.Context, id int64) error {
	return l.store.DeleteCategory(ctx, id)
}

// ---- transactions ----

func (l *Ledger) ListTransactions(ctx context.Context, q TransactionQuery) (storage.TransactionPage, error) {
	if q.Filter.Type != "" && !q.Filter.Type.Valid() {
		return storage.TransactionPage{}, core.Validationf("invalid transaction type %q: must be income or expense", q.Filter.Type)
	}
	return l.store.ListTransactions(ctx, q.Filter, q.Page, q.PerPage)
}

// ExportTransactions returns every transaction dated within the optional
// inclusive bounds, newest first.
func (l *Ledger) ExportTransactions(ctx context.Context, start, end *core.Date) ([]core.Transaction, error) {
	return l.store.FilterTransactions(ctx, storage.TransactionFilter{StartDate: start, EndDate: end})
}

func (l *Ledger) CreateTransaction(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	if in.Amount == nil {
		return core.Transaction{}, core.Validationf("amount is required")
	}
	t := core.Transaction{
		Description: strings.TrimSpace(in.Description),
		Amount:      *in.Amount,
		Type:        in.Type,
		CategoryID:  in.CategoryID,
	}
	if in.Date != nil {
		t.Date = *in.Date
	} else {
		t.Date = l.Today()
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	created, err := l.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}

	l.changed(ctx, amqp.KindTransactionCreated, created.ID, periodOf(created.Date))
	return created, nil
}

// UpdateTransaction changes only the fields present in patch.
func (l *Ledger) UpdateTransaction(ctx context.Context, id int64, patch core.TransactionPatch) (core.Transaction, error) {
	if patch.Description != nil {
		d := strings.TrimSpace(*patch.Description)
		patch.Description = &d
	}

	before, after, err := l.store.UpdateTransaction(ctx, id, patch)
	if err != nil {
		return core.Transaction{}, err
	}

	l.changed(ctx, amqp.KindTransactionUpdated, id, periodOf(before.Date))
	if p := periodOf(after.Date); p != periodOf(before.Date) {
		l.changed(ctx, amqp.KindTransactionUpdated, id, p)
	}
	return after, nil
}

func (l *Ledger) DeleteTransaction(ctx context.Context, id int64) error {
	deleted, err := l.store.DeleteTransaction(ctx, id)
	if err != nil {
		return err
	}
	l.changed(ctx, amqp.KindTransactionDeleted, id, periodOf(deleted.Date))
	return nil
}

// ---- budgets ----

func (l *Ledger) ListBudgets(ctx context.Context, p core.Period) ([]core.Budget, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return l.store.ListBudgets(ctx, p.Month, p.Year)
}

func (l *Ledger) CreateBudget(ctx context.Context, in BudgetInput) (core.Budget, error) {
	if in.Amount == nil {
		return core.Budget{}, core.Validationf("amount is required")
	}
	b := core.Budget{
		CategoryID: in.CategoryID,
		Amount:     *in.Amount,
		Month:      in.Month,
		Year:       in.Year,
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	created, err := l.store.CreateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, err
	}

	l.changed(ctx, amqp.KindBudgetCreated, created.ID, core.Period{Year: created.Year, Month: created.Month})
	return created, nil
}

// changed notifies listeners and publishes an event. Publishing failures are
// logged only: the write has already been committed.
func (l *Ledger) changed(ctx context.Context, kind string, id int64, p core.Period) {
	l.mu.RLock()
	listeners := l.listeners
	l.mu.RUnlock()
	for _, fn := range listeners {
		fn(p)
	}

	if l.events == nil {
		return
	}
	if err := l.events.PublishLedgerEvent(ctx, amqp.NewLedgerEvent(kind, id, p)); err != nil {
		slog.WarnContext(ctx, "Failed to publish ledger event",
			"kind", kind,
			"entity_id", id,
			"period", fmt.Sprintf("%d-%02d", p.Year, p.Month),
			"error", err)
	}
}

func periodOf(d core.Date) core.Period {
	return core.Period{Year: d.Year(), Month: int(d.Month())}
}
