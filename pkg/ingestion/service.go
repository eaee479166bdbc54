package ingestion

import (
	"context"
	"fmt"

	"github.com/heungsikyu/AirBnB-marketing/pkg/common/kafka"
	"github.com/heungsikyu/AirBnB-marketing/pkg/common/logger"
	"github.com/heungsikyu/AirBnB-marketing/pkg/store"
)

// Service runs the daily collection: pull listings from the collector and
// upsert them into the store.
type Service struct {
	collector Collector
	store     *store.Store
	producer  *kafka.Producer
	limit     int
}

func NewService(collector Collector, st *store.Store, producer *kafka.Producer, limit int) *Service {
	if limit <= 0 {
		limit = 50
	}
	return &Service{
		collector: collector,
		store:     st,
		producer:  producer,
		limit:     limit,
	}
}

// RunDailyCollection returns the number of listings refreshed. A collector
// failure fails the whole run; a store failure aborts it mid-way. Both are
// retried on the next trigger by the scheduler.
func (s *Service) RunDailyCollection(ctx context.Context) (int, error) {
	listings, err := s.collector.Collect(ctx)
	if err != nil {
		return 0, fmt.Errorf("collecting listings: %w", err)
	}
	if len(listings) > s.limit {
		listings = listings[:s.limit]
	}

	saved := 0
	for _, listing := range listings {
		if err := s.store.UpsertListing(ctx, listing); err != nil {
			return saved, fmt.Errorf("upserting listing %s: %w", listing.ID, err)
		}
		saved++
	}

	if s.producer != nil && saved > 0 {
		if err := s.producer.PublishEvent(ctx, "listings.collected", "ingestion", map[string]interface{}{
			"count": saved,
		}); err != nil {
			logger.WithError(err).Warn("failed to publish collection event")
		}
	}

	logger.WithField("count", saved).Info("Daily collection complete")
	return saved, nil
}
