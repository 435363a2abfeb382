package services

import (
	"context"
	"log"
	"sync"
	"time"

	"elsahm-admin/models"
)

// StatsCache holds one dashboard snapshot for ttl.
type StatsCache struct {
	mu        sync.Mutex
	data      *models.DashboardStats
	timestamp time.Time
	ttl       time.Duration
}

func NewStatsCache(ttl time.Duration) *StatsCache {
	return &StatsCache{ttl: ttl}
}

func (c *StatsCache) isValid(now time.Time) bool {
	return c.data != nil && now.Sub(c.timestamp) < c.ttl
}

// IsValid reports whether a snapshot is held and younger than ttl at now.
func (c *StatsCache) IsValid(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isValid(now)
}

// Get returns the snapshot when it is still valid at now.
func (c *StatsCache) Get(now time.Time) (*models.DashboardStats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.isValid(now) {
		return nil, false
	}
	stats := *c.data
	return &stats, true
}

func (c *StatsCache) Set(stats *models.DashboardStats, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := *stats
	c.data = &copied
	c.timestamp = at
}

func (c *StatsCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = nil
	c.timestamp = time.Time{}
}

// StatsMirror keeps the last snapshot outside the process.
type StatsMirror interface {
	Load(ctx context.Context) (*models.DashboardStats, error)
	Save(ctx context.Context, stats *models.DashboardStats, ttl time.Duration) error
	Delete(ctx context.Context) error
}

// ComplaintCounter is the slice of the complaint store the dashboard needs.
type ComplaintCounter interface {
	Count(ctx context.Context, status models.ComplaintStatus) (int64, error)
}

// StatsService serves dashboard numbers from the cache, then the mirror,
// then the stores.
type StatsService struct {
	cache      *StatsCache
	complaints ComplaintCounter
	users      UserStats
	mirror     StatsMirror

	now func() time.Time
}

// NewStatsService wires the cache and stores. mirror may be nil.
func NewStatsService(cache *StatsCache, complaints ComplaintCounter, users UserStats, mirror StatsMirror) *StatsService {
	return &StatsService{
		cache:      cache,
		complaints: complaints,
		users:      users,
		mirror:     mirror,
		now:        time.Now,
	}
}

func (s *StatsService) Get(ctx context.Context) (*models.DashboardStats, error) {
	now := s.now()
	if stats, ok := s.cache.Get(now); ok {
		return stats, nil
	}

	if s.mirror != nil {
		stats, err := s.mirror.Load(ctx)
		if err != nil {
			log.Printf("Failed to load stats mirror: %v", err)
		} else if stats != nil && now.Sub(stats.GeneratedAt) < s.cache.ttl {
			s.cache.Set(stats, stats.GeneratedAt)
			return stats, nil
		}
	}

	return s.ForceRefresh(ctx)
}

// ForceRefresh recomputes the snapshot regardless of the cache.
func (s *StatsService) ForceRefresh(ctx context.Context) (*models.DashboardStats, error) {
	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.Set(stats, stats.GeneratedAt)
	if s.mirror != nil {
		if err := s.mirror.Save(ctx, stats, s.cache.ttl); err != nil {
			log.Printf("Failed to save stats mirror: %v", err)
		}
	}
	return stats, nil
}

// Invalidate drops the cached snapshot and its mirror copy.
func (s *StatsService) Invalidate(ctx context.Context) {
	s.cache.Invalidate()
	if s.mirror != nil {
		if err := s.mirror.Delete(ctx); err != nil {
			log.Printf("Failed to delete stats mirror: %v", err)
		}
	}
}

func (s *StatsService) compute(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	var err error

	counts := []struct {
		status models.ComplaintStatus
		dst    *int64
	}{
		{"", &stats.TotalComplaints},
		{models.StatusOpen, &stats.OpenComplaints},
		{models.StatusInProgress, &stats.InProgressComplaints},
		{models.StatusClosed, &stats.ClosedComplaints},
	}
	for _, c := range counts {
		if *c.dst, err = s.complaints.Count(ctx, c.status); err != nil {
			return nil, err
		}
	}

	if stats.TotalUsers, err = s.users.CountUsers(ctx); err != nil {
		return nil, err
	}
	if stats.TotalBalance, err = s.users.TotalBalance(ctx); err != nil {
		return nil, err
	}

	stats.GeneratedAt = s.now()
	return stats, nil
}
