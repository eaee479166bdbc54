package analytics

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/heungsikyu/AirBnB-marketing/pkg/common/logger"
	"github.com/heungsikyu/AirBnB-marketing/pkg/common/models"
	"github.com/heungsikyu/AirBnB-marketing/pkg/store"
)

// EngagementHandler folds click and conversion events from the event bus
// into the per-platform counters.
type EngagementHandler struct {
	store *store.Store
	cache *Cache
}

func NewEngagementHandler(st *store.Store, cache *Cache) *EngagementHandler {
	return &EngagementHandler{store: st, cache: cache}
}

// Handle applies one engagement event. Returning an error leaves the message
// uncommitted so the consumer retries it.
func (h *EngagementHandler) Handle(ctx context.Context, event models.EngagementEvent) error {
	if event.ListingID == "" || event.Platform == "" {
		logger.WithFields(map[string]interface{}{
			"listing_id": event.ListingID,
			"platform":   event.Platform,
		}).Warn("dropping malformed engagement event")
		return nil
	}
	if event.Clicks < 0 || event.Conversions < 0 {
		logger.WithField("listing_id", event.ListingID).Warn("dropping engagement event with negative counters")
		return nil
	}
	if event.Clicks == 0 && event.Conversions == 0 {
		return nil
	}

	err := h.store.UpsertConversionCounter(ctx, event.ListingID, event.Platform, event.Clicks, event.Conversions)
	if err != nil {
		return fmt.Errorf("applying engagement for listing %s: %w", event.ListingID, err)
	}
	h.cache.Invalidate(ctx)
	return nil
}

// HandleEvent adapts a bus event to Handle. Events whose payload does not
// decode are dropped so they are not redelivered forever.
func (h *EngagementHandler) HandleEvent(ctx context.Context, event models.Event) error {
	raw, err := json.Marshal(event.Data)
	if err != nil {
		logger.WithError(err).WithField("event_id", event.ID).Warn("dropping undecodable engagement event")
		return nil
	}
	var engagement models.EngagementEvent
	if err := json.Unmarshal(raw, &engagement); err != nil {
		logger.WithError(err).WithField("event_id", event.ID).Warn("dropping undecodable engagement event")
		return nil
	}
	return h.Handle(ctx, engagement)
}
