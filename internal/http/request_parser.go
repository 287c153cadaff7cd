package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"finance/internal/core"
	"finance/internal/services"
	"finance/internal/storage"
)

const maxBodyBytes = 1 << 20

// ParseMonthParams extracts year and month from query parameters, using
// the period of now as defaults. Non-numeric values fall back to the
// default; out-of-range values are a validation error.
func ParseMonthParams(query url.Values, now core.Period) (core.Period, error) {
	p := now
	if v, ok := intParam(query, "year"); ok {
		p.Year = v
	}
	if v, ok := intParam(query, "month"); ok {
		p.Month = v
	}
	if err := p.Validate(); err != nil {
		return core.Period{}, err
	}
	return p, nil
}

// ParseTransactionQuery reads the listing filters and pagination. Dates must
// be ISO formatted; page and per_page fall back to the defaults when not
// numeric and are clamped by the store.
func ParseTransactionQuery(query url.Values) (services.TransactionQuery, error) {
	var q services.TransactionQuery

	if v, ok := intParam(query, "category_id"); ok {
		q.Filter.CategoryID = int64(v)
	}
	if v := strings.TrimSpace(query.Get("type")); v != "" {
		q.Filter.Type = core.TxType(v)
	}

	var err error
	if q.Filter.StartDate, err = dateParam(query, "start_date"); err != nil {
		return q, err
	}
	if q.Filter.EndDate, err = dateParam(query, "end_date"); err != nil {
		return q, err
	}

	q.Page = 1
	if v, ok := intParam(query, "page"); ok {
		q.Page = v
	}
	q.PerPage = storage.DefaultPageSize
	if v, ok := intParam(query, "per_page"); ok {
		q.PerPage = v
	}
	return q, nil
}

// ParseDateRange reads the optional start_date and end_date of an export.
func ParseDateRange(query url.Values) (start, end *core.Date, err error) {
	if start, err = dateParam(query, "start_date"); err != nil {
		return nil, nil, err
	}
	if end, err = dateParam(query, "end_date"); err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

func intParam(query url.Values, key string) (int, bool) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func dateParam(query url.Values, key string) (*core.Date, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return nil, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// pathID parses the {id} segment. Non-numeric ids name no resource.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, core.NotFoundf("no resource with id %q", raw)
	}
	return id, nil
}

// decodeJSON reads a single JSON object from the body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return core.Validationf("request body is required")
		case errors.As(err, &maxErr):
			return core.Validationf("request body too large")
		case errors.Is(err, core.ErrValidation):
			return err
		default:
			return core.Validationf("invalid JSON body: %v", err)
		}
	}
	return nil
}

type (
	categoryRequest struct {
		Name  string      `json:"name"`
		Type  core.TxType `json:"type"`
		Color string      `json:"color"`
	}

	// transactionRequest serves both create and partial update; nil fields
	// were absent from the body. Amount accepts a number or a numeric string.
	transactionRequest struct {
		Description *string      `json:"description"`
		Amount      *core.Money  `json:"amount"`
		Type        *core.TxType `json:"type"`
		CategoryID  *int64       `json:"category_id"`
		Date        *string      `json:"date"`
	}

	budgetRequest struct {
		CategoryID int64       `json:"category_id"`
		Amount     *core.Money `json:"amount"`
		Month      int         `json:"month"`
		Year       int         `json:"year"`
	}
)

// date returns the parsed date, or nil when absent or empty.
func (t transactionRequest) date() (*core.Date, error) {
	if t.Date == nil || strings.TrimSpace(*t.Date) == "" {
		return nil, nil
	}
	d, err := core.ParseDate(*t.Date)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (t transactionRequest) input() (services.TransactionInput, error) {
	in := services.TransactionInput{Amount: t.Amount}
	if t.Description != nil {
		in.Description = *t.Description
	}
	if t.Type != nil {
		in.Type = *t.Type
	}
	if t.CategoryID != nil {
		in.CategoryID = *t.CategoryID
	}
	d, err := t.date()
	if err != nil {
		return in, err
	}
	in.Date = d
	return in, nil
}

func (t transactionRequest) patch() (core.TransactionPatch, error) {
	p := core.TransactionPatch{
		Description: t.Description,
		Amount:      t.Amount,
		Type:        t.Type,
		CategoryID:  t.CategoryID,
	}
	d, err := t.date()
	if err != nil {
		return p, err
	}
	p.Date = d
	return p, nil
}
