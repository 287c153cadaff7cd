package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"finance/internal/core"
	"finance/internal/storage"
)

func TestParseMonthParams(t *testing.T) {
	now := core.Period{Year: 2024, Month: 3}
	tests := []struct {
		name    string
		query   url.Values
		want    core.Period
		wantErr bool
	}{
		{name: "defaults", query: url.Values{}, want: now},
		{name: "both provided", query: url.Values{"year": {"2023"}, "month": {"11"}}, want: core.Period{Year: 2023, Month: 11}},
		{name: "only month", query: url.Values{"month": {"7"}}, want: core.Period{Year: 2024, Month: 7}},
		{name: "non-numeric falls back", query: url.Values{"month": {"abc"}, "year": {"x"}}, want: now},
		{name: "month zero", query: url.Values{"month": {"0"}}, wantErr: true},
		{name: "month thirteen", query: url.Values{"month": {"13"}}, wantErr: true},
		{name: "negative year", query: url.Values{"year": {"-1"}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonthParams(tt.query, now)
			if tt.wantErr {
				if !errors.Is(err, core.ErrValidation) {
					t.Fatalf("err = %v, want validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseTransactionQuery(t *testing.T) {
	q, err := ParseTransactionQuery(url.Values{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Page != 1 || q.PerPage != storage.DefaultPageSize {
		t.Fatalf("defaults = page %d per_page %d", q.Page, q.PerPage)
	}
	if q.Filter.CategoryID != 0 || q.Filter.Type != "" || q.Filter.StartDate != nil || q.Filter.EndDate != nil {
		t.Fatalf("expected empty filter, got %+v", q.Filter)
	}

	q, err = ParseTransactionQuery(url.Values{
		"category_id": {"4"},
		"type":        {"expense"},
		"start_date":  {"2024-01-01"},
		"end_date":    {"2024-01-31"},
		"page":        {"3"},
		"per_page":    {"10"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Filter.CategoryID != 4 || q.Filter.Type != core.Expense || q.Page != 3 || q.PerPage != 10 {
		t.Fatalf("parsed = %+v", q)
	}
	if q.Filter.StartDate.String() != "2024-01-01" || q.Filter.EndDate.String() != "2024-01-31" {
		t.Fatalf("dates = %s..%s", q.Filter.StartDate, q.Filter.EndDate)
	}

	if _, err := ParseTransactionQuery(url.Values{"end_date": {"31-01-2024"}}); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestParseDateRange(t *testing.T) {
	start, end, err := ParseDateRange(url.Values{"start_date": {"2024-02-01"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start == nil || start.String() != "2024-02-01" || end != nil {
		t.Fatalf("range = %v..%v", start, end)
	}

	if _, _, err := ParseDateRange(url.Values{"start_date": {"2024-02-30"}}); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"name":"Mercado","type":"expense"}`},
		{name: "empty", body: "", wantErr: true},
		{name: "malformed", body: `{"name":`, wantErr: true},
		{name: "too large", body: `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(tt.body))
			var dst categoryRequest
			err := decodeJSON(httptest.NewRecorder(), req, &dst)
			if tt.wantErr {
				if !errors.Is(err, core.ErrValidation) {
					t.Fatalf("err = %v, want validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if dst.Name != "Mercado" || dst.Type != core.Expense {
				t.Fatalf("decoded %+v", dst)
			}
		})
	}
}

func TestTransactionRequest(t *testing.T) {
	desc := "Feira"
	blank := "  "
	amount := core.MoneyFromCents(1250)

	in, err := transactionRequest{Description: &desc, Amount: &amount, Date: &blank}.input()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Description != "Feira" || in.Date != nil || in.Amount.Cents() != 1250 {
		t.Fatalf("input = %+v", in)
	}

	day := "2024-05-06"
	p, err := transactionRequest{Date: &day}.patch()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Date == nil || p.Date.String() != day || p.Amount != nil || p.Description != nil {
		t.Fatalf("patch = %+v", p)
	}

	bad := "06/05/2024"
	if _, err := (transactionRequest{Date: &bad}).patch(); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestPathID(t *testing.T) {
	for raw, wantErr := range map[string]bool{"7": false, "0": true, "-3": true, "abc": true} {
		req := httptest.NewRequest(http.MethodDelete, "/api/transactions/"+raw, nil)
		req.SetPathValue("id", raw)
		id, err := pathID(req)
		if wantErr {
			if !errors.Is(err, core.ErrNotFound) {
				t.Fatalf("%q: err = %v, want not found", raw, err)
			}
			continue
		}
		if err != nil || id != 7 {
			t.Fatalf("%q: id=%d err=%v", raw, id, err)
		}
	}
}
