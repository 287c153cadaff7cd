package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"finance/internal/cache"
	"finance/internal/core"
	"finance/internal/report"

	"golang.org/x/sync/singleflight"
)

// Reports serves monthly reports from a cache. Concurrent misses for the
// same month share one build. A build that overlaps an invalidation of its
// month is returned to its callers but never cached.
type Reports struct {
	src   report.Source
	cache cache.Cache[report.Report]
	group singleflight.Group

	mu  sync.Mutex
	gen map[string]uint64
}

// NewReports returns a report service. A nil c disables caching.
func NewReports(src report.Source, c cache.Cache[report.Report]) *Reports {
	return &Reports{src: src, cache: c, gen: make(map[string]uint64)}
}

// Monthly returns the report for year/month.
func (s *Reports) Monthly(ctx context.Context, year, month int) (report.Report, error) {
	p := core.Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return report.Report{}, err
	}
	if s.cache == nil {
		return report.Build(ctx, s.src, year, month)
	}

	key := cacheKey(p)
	if r, ok := s.cache.Get(key); ok {
		return r, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		start := s.generation(key)
		r, err := report.Build(context.WithoutCancel(ctx), s.src, year, month)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		if s.gen[key] == start {
			s.cache.Set(key, r)
		}
		s.mu.Unlock()
		return r, nil
	})
	if err != nil {
		return report.Report{}, err
	}
	return v.(report.Report), nil
}

// Invalidate drops the cached report for p. It is registered as a ledger
// change listener.
func (s *Reports) Invalidate(p core.Period) {
	if s.cache == nil {
		return
	}
	key := cacheKey(p)
	s.mu.Lock()
	s.gen[key]++
	s.mu.Unlock()
	s.group.Forget(key)
	s.cache.Delete(key)
}

func (s *Reports) generation(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen[key]
}

// NewReportCache builds the LRU used by Reports and registers it with m for
// periodic expiry.
func NewReportCache(m *cache.Manager, size int, ttl time.Duration) *cache.LRUCache[report.Report] {
	c := cache.NewLRUCache[report.Report](size, ttl)
	if m != nil {
		m.Register(c)
	}
	return c
}

func cacheKey(p core.Period) string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}
