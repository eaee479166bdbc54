package analytics

import (
	"context"
	"fmt"

	"github.com/heungsikyu/AirBnB-marketing/pkg/common/models"
	"github.com/heungsikyu/AirBnB-marketing/pkg/store"
)

// Service answers analytics queries from the posting history and conversion
// counters.
type Service struct {
	store      *store.Store
	cache      *Cache
	windowDays int
}

func NewService(st *store.Store, cache *Cache, windowDays int) *Service {
	if windowDays <= 0 {
		windowDays = 30
	}
	return &Service{store: st, cache: cache, windowDays: windowDays}
}

func (s *Service) window(days int) int {
	if days <= 0 {
		return s.windowDays
	}
	if days > 365 {
		return 365
	}
	return days
}

func (s *Service) Overview(ctx context.Context, days int) (models.Overview, error) {
	days = s.window(days)
	if cached, ok := s.cache.GetOverview(ctx, days); ok {
		return cached, nil
	}

	attempts, err := s.store.QueryPostingHistory(ctx, "", "", days)
	if err != nil {
		return models.Overview{}, fmt.Errorf("loading posting history: %w", err)
	}
	conversions, err := s.store.QueryConversionStats(ctx, "")
	if err != nil {
		return models.Overview{}, fmt.Errorf("loading conversion stats: %w", err)
	}

	overview := BuildOverview(attempts, conversions, days)
	s.cache.SetOverview(ctx, days, overview)
	return overview, nil
}

func (s *Service) Performance(ctx context.Context, days, topN int) (models.Performance, error) {
	days = s.window(days)
	attempts, err := s.store.QueryPostingHistory(ctx, "", "", days)
	if err != nil {
		return models.Performance{}, fmt.Errorf("loading posting history: %w", err)
	}

	titles := map[string]models.Listing{}
	for _, attempt := range attempts {
		if _, ok := titles[attempt.ListingID]; ok {
			continue
		}
		listing, err := s.store.GetListing(ctx, attempt.ListingID)
		if err != nil {
			continue
		}
		titles[attempt.ListingID] = listing
	}

	return BuildPerformance(attempts, titles, topN), nil
}

func (s *Service) Trends(ctx context.Context, days int) (models.Trends, error) {
	days = s.window(days)
	if days < 7 {
		days = 7
	}
	attempts, err := s.store.QueryPostingHistory(ctx, "", "", days)
	if err != nil {
		return models.Trends{}, fmt.Errorf("loading posting history: %w", err)
	}
	return BuildTrends(attempts), nil
}

// Export returns the attempt history as JSON rows or a CSV document.
func (s *Service) Export(ctx context.Context, days int, format string) (interface{}, error) {
	days = s.window(days)
	attempts, err := s.store.QueryPostingHistory(ctx, "", "", days)
	if err != nil {
		return nil, fmt.Errorf("loading posting history: %w", err)
	}
	switch format {
	case "", "json":
		return attempts, nil
	case "csv":
		return ExportCSV(attempts), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// DashboardStats is the compact rollup the dashboard landing page shows.
func (s *Service) DashboardStats(ctx context.Context) (models.DashboardStats, error) {
	overview, err := s.Overview(ctx, s.windowDays)
	if err != nil {
		return models.DashboardStats{}, err
	}
	total, err := s.store.CountListings(ctx, false)
	if err != nil {
		return models.DashboardStats{}, fmt.Errorf("counting listings: %w", err)
	}
	active, err := s.store.CountListings(ctx, true)
	if err != nil {
		return models.DashboardStats{}, fmt.Errorf("counting active listings: %w", err)
	}

	return models.DashboardStats{
		TotalListings:    total,
		ActiveListings:   active,
		TotalPosts:       overview.TotalPosts,
		SuccessfulPosts:  overview.SuccessfulPosts,
		FailedPosts:      overview.FailedPosts,
		TotalClicks:      overview.TotalClicks,
		TotalConversions: overview.TotalConversions,
		SuccessRate:      overview.SuccessRate,
		ConversionRate:   overview.ConversionRate,
	}, nil
}
