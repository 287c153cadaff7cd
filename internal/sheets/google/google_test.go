package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"finance/internal/core"
	"finance/internal/report"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), "  ", "Resumo")
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	clearCredentialEnv(t)

	_, err := New(context.Background(), "sheet-id", "")
	if err == nil {
		t.Fatal("expected error without credentials")
	}
	if !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "/nonexistent/creds.json")

	_, err := New(context.Background(), "sheet-id", "")
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("expected file read error, got %v", err)
	}
}

func TestWriteMonthSummary_Uninitialized(t *testing.T) {
	c := &Client{spreadsheetID: "test"}
	_, err := c.WriteMonthSummary(context.Background(), report.Report{Year: 2024, Month: 3})
	if err == nil || err.Error() != "sheets service not initialized" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Resumo", 2024, "2024 Resumo"},
		{"  Resumo  ", 2025, "2025 Resumo"},
		{"2023 Resumo", 2024, "2023 Resumo"},
		{"1234Resumo", 2024, "2024 1234Resumo"},
		{"", 2024, ""},
	}
	for _, tt := range tests {
		if got := yearPrefixedName(tt.base, tt.year); got != tt.want {
			t.Errorf("yearPrefixedName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
		}
	}
}

func TestSummaryRange(t *testing.T) {
	if got := summaryRange("2024 Resumo", 1); got != "2024 Resumo!A2:F2" {
		t.Errorf("january range = %q", got)
	}
	if got := summaryRange("2024 Resumo", 12); got != "2024 Resumo!A13:F13" {
		t.Errorf("december range = %q", got)
	}
}

func TestSummaryRow(t *testing.T) {
	r := report.Aggregate(core.Period{Year: 2024, Month: 3}, []core.Transaction{
		{Type: core.Income, Amount: core.MoneyFromCents(100000), CategoryID: 1, CategoryName: "Salário"},
		{Type: core.Expense, Amount: core.MoneyFromCents(20050), CategoryID: 2, CategoryName: "Alimentação"},
		{Type: core.Expense, Amount: core.MoneyFromCents(5000), CategoryID: 3, CategoryName: "Transporte"},
	}, nil)
	updated := time.Date(2024, 3, 15, 9, 0, 0, 0, time.FixedZone("BRT", -3*3600))

	row := summaryRow(r, updated)
	if len(row) != 6 {
		t.Fatalf("expected 6 cells, got %d", len(row))
	}
	if row[0] != "03/2024" {
		t.Errorf("period cell = %v", row[0])
	}
	if row[1] != 1000.0 || row[2] != 250.5 || row[3] != 749.5 {
		t.Errorf("amount cells = %v %v %v", row[1], row[2], row[3])
	}
	if row[4] != "Alimentação" {
		t.Errorf("top category = %v", row[4])
	}
	if row[5] != "2024-03-15T12:00:00Z" {
		t.Errorf("updated cell = %v", row[5])
	}

	empty := summaryRow(report.Aggregate(core.Period{Year: 2024, Month: 4}, nil, nil), updated)
	if empty[4] != "" {
		t.Errorf("expected empty top category, got %v", empty[4])
	}
}

const testOAuthClient = `{"installed":{"client_id":"test","client_secret":"test","redirect_uris":["http://localhost"],"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GOOGLE_SERVICE_ACCOUNT_JSON", "GOOGLE_SERVICE_ACCOUNT_FILE", "GOOGLE_APPLICATION_CREDENTIALS",
		"GOOGLE_OAUTH_CLIENT_JSON", "GOOGLE_OAUTH_CLIENT_FILE", "GOOGLE_OAUTH_TOKEN_JSON", "GOOGLE_OAUTH_TOKEN_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestNew_OAuthClientWithoutToken(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("GOOGLE_OAUTH_CLIENT_JSON", testOAuthClient)

	_, err := New(context.Background(), "sheet-id", "")
	if err == nil || !strings.Contains(err.Error(), "missing oauth token") {
		t.Fatalf("expected missing token error, got %v", err)
	}
}

func TestNew_OAuthInvalidClient(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("GOOGLE_OAUTH_CLIENT_JSON", `{"bogus":true}`)
	t.Setenv("GOOGLE_OAUTH_TOKEN_JSON", `{"access_token":"x"}`)

	_, err := New(context.Background(), "sheet-id", "")
	if err == nil || !strings.Contains(err.Error(), "oauth config") {
		t.Fatalf("expected oauth config error, got %v", err)
	}
}

func TestNew_OAuthCredentials(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("GOOGLE_OAUTH_CLIENT_JSON", testOAuthClient)
	t.Setenv("GOOGLE_OAUTH_TOKEN_JSON", `{"access_token":"x","token_type":"Bearer","refresh_token":"r"}`)

	c, err := New(context.Background(), "sheet-id", "")
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if c.summaryBase != "Resumo" {
		t.Errorf("summaryBase = %q, want Resumo", c.summaryBase)
	}
}

func TestSaveTokenRoundTrip(t *testing.T) {
	clearCredentialEnv(t)
	path := filepath.Join(t.TempDir(), "token.json")
	if err := SaveToken(path, &oauth2.Token{AccessToken: "abc", RefreshToken: "def"}); err != nil {
		t.Fatalf("SaveToken() = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("token file mode = %v, want 0600", info.Mode().Perm())
	}

	t.Setenv("GOOGLE_OAUTH_TOKEN_FILE", path)
	tok, err := tokenFromEnv()
	if err != nil {
		t.Fatalf("tokenFromEnv() = %v", err)
	}
	if tok.AccessToken != "abc" || tok.RefreshToken != "def" {
		t.Errorf("token = %+v", tok)
	}
}
