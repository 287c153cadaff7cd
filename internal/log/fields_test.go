package log

import (
	"errors"
	"testing"
)

func TestLogFieldsBuilders(t *testing.T) {
	f := NewFields().
		WithComponent(ComponentHTTP).
		WithRequestID("").
		WithClientIP("10.0.0.1").
		WithError(nil).
		WithOperation(OpList).
		WithHTTPRequest("GET", "/api/transactions", "page=2", "", "").
		WithHTTPResponse(200, 12, true)

	want := map[string]any{
		FieldComponent:  ComponentHTTP,
		FieldClientIP:   "10.0.0.1",
		FieldOperation:  OpList,
		FieldMethod:     "GET",
		FieldPath:       "/api/transactions",
		FieldQuery:      "page=2",
		FieldStatusCode: 200,
		FieldDuration:   int64(12),
		FieldSuccess:    true,
	}
	if len(f) != len(want) {
		t.Fatalf("got %d fields, want %d: %v", len(f), len(want), f)
	}
	for k, v := range want {
		if f[k] != v {
			t.Fatalf("%s = %v, want %v", k, f[k], v)
		}
	}

	f.WithRequestID("req-1").WithError(errors.New("boom"))
	if f[FieldRequestID] != "req-1" || f[FieldError] != "boom" {
		t.Fatalf("fields = %v", f)
	}
	if got := len(f.ToSlice()); got != 2*len(f) {
		t.Fatalf("ToSlice length = %d", got)
	}
}
