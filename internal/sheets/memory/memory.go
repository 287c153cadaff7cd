package memory

import (
	"context"
	"fmt"
	"sync"

	"finance/internal/core"
	"finance/internal/report"
	ports "finance/internal/sheets"
)

// Store keeps the last summary written for each month. It backs the worker
// when no spreadsheet is configured and in tests.
type Store struct {
	mu     sync.Mutex
	rows   map[core.Period]report.Report
	writes int
}

var _ ports.SummaryWriter = (*Store)(nil)

func New() *Store {
	return &Store{rows: make(map[core.Period]report.Report)}
}

// WriteMonthSummary replaces the stored summary for the report's month.
func (s *Store) WriteMonthSummary(_ context.Context, r report.Report) (string, error) {
	p := r.Period()
	if err := p.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[p] = r
	s.writes++
	return fmt.Sprintf("mem:%04d-%02d", p.Year, p.Month), nil
}

// Summary returns the last summary written for p.
func (s *Store) Summary(p core.Period) (report.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[p]
	return r, ok
}

// Writes counts successful WriteMonthSummary calls.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
