package core

import (
	"regexp"
	"strings"
	"time"
)

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

// DefaultCategoryColor is used when a category is created without a color.
const DefaultCategoryColor = "#6b7280"

const dateLayout = "2006-01-02"

type (
	// TxType is the direction of money for a transaction or a category.
	TxType string

	// Date is a calendar date without time of day, always in UTC.
	Date struct {
		time.Time
	}

	Category struct {
		ID        int64     `json:"id"`
		Name      string    `json:"name"`
		Type      TxType    `json:"type"`
		Color     string    `json:"color"`
		CreatedAt time.Time `json:"created_at"`
	}

	// Transaction type is independent of the owning category's type; the
	// two are never cross-checked.
	Transaction struct {
		ID           int64     `json:"id"`
		Description  string    `json:"description"`
		Amount       Money     `json:"amount"`
		Type         TxType    `json:"type"`
		CategoryID   int64     `json:"category_id"`
		CategoryName string    `json:"category_name"`
		Date         Date      `json:"date"`
		CreatedAt    time.Time `json:"created_at"`
		UpdatedAt    time.Time `json:"updated_at"`
	}

	// TransactionPatch carries the fields of a partial update. Nil fields
	// keep their stored value.
	TransactionPatch struct {
		Description *string
		Amount      *Money
		Type        *TxType
		CategoryID  *int64
		Date        *Date
	}

	Budget struct {
		ID           int64     `json:"id"`
		CategoryID   int64     `json:"category_id"`
		CategoryName string    `json:"category_name"`
		Amount       Money     `json:"amount"`
		Month        int       `json:"month"`
		Year         int       `json:"year"`
		CreatedAt    time.Time `json:"created_at"`
		UpdatedAt    time.Time `json:"updated_at"`
	}
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Valid reports whether t is one of the known directions.
func (t TxType) Valid() bool {
	return t == Income || t == Expense
}

// Label returns the user-facing label used in exports.
func (t TxType) Label() string {
	if t == Income {
		return "Receita"
	}
	return "Despesa"
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, Validationf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate checks the fields a category must carry before it is stored.
func (c Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return Validationf("category name is required")
	}
	if len(name) > 100 {
		return Validationf("category name too long (max 100 characters)")
	}
	if !c.Type.Valid() {
		return Validationf("invalid category type %q: must be income or expense", c.Type)
	}
	if !hexColor.MatchString(c.Color) {
		return Validationf("invalid color %q: expected #rrggbb", c.Color)
	}
	return nil
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return Validationf("description is required")
	}
	if len(t.Description) > 200 {
		return Validationf("description too long (max 200 characters)")
	}
	if t.Amount.IsNegative() {
		return Validationf("amount cannot be negative")
	}
	if !t.Type.Valid() {
		return Validationf("invalid transaction type %q: must be income or expense", t.Type)
	}
	if t.CategoryID <= 0 {
		return Validationf("category_id is required")
	}
	if t.Date.IsZero() {
		return Validationf("date is required")
	}
	return nil
}

// Apply overwrites the fields present in p and leaves the rest untouched.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.CategoryID != nil {
		t.CategoryID = *p.CategoryID
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	return t
}

func (b Budget) Validate() error {
	if b.CategoryID <= 0 {
		return Validationf("category_id is required")
	}
	if b.Amount.IsNegative() {
		return Validationf("budget amount cannot be negative")
	}
	return Period{Year: b.Year, Month: b.Month}.Validate()
}
