package publisher

import (
	"context"
	"fmt"
	"time"

	"github.com/heungsikyu/AirBnB-marketing/pkg/common/kafka"
	"github.com/heungsikyu/AirBnB-marketing/pkg/common/logger"
	"github.com/heungsikyu/AirBnB-marketing/pkg/common/models"
	"github.com/heungsikyu/AirBnB-marketing/pkg/store"
)

// Coordinator drains the pending content queue. Every publish action leaves
// a posting attempt behind, success or not, and content that keeps failing
// is parked as dead after maxAttempts tries.
type Coordinator struct {
	store       *store.Store
	registry    Registry
	producer    *kafka.Producer
	batchSize   int
	maxAttempts int
	timeout     time.Duration
}

func NewCoordinator(st *store.Store, registry Registry, producer *kafka.Producer, batchSize, maxAttempts int, timeout time.Duration) *Coordinator {
	if batchSize <= 0 {
		batchSize = 10
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Coordinator{
		store:       st,
		registry:    registry,
		producer:    producer,
		batchSize:   batchSize,
		maxAttempts: maxAttempts,
		timeout:     timeout,
	}
}

// CycleReport summarizes one posting cycle.
type CycleReport struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Dead      int `json:"dead"`
}

// RunPostingCycle publishes up to batchSize pending records in FIFO order.
// One record's failure never blocks the rest of the batch.
func (c *Coordinator) RunPostingCycle(ctx context.Context) (CycleReport, error) {
	var report CycleReport

	pending, err := c.store.ListPendingContent(ctx, c.batchSize)
	if err != nil {
		return report, fmt.Errorf("fetching pending content: %w", err)
	}

	for _, content := range pending {
		report.Attempted++
		result := c.publishOne(ctx, content)
		if result.Success {
			report.Succeeded++
		} else {
			report.Failed++
			if c.finalizeFailure(ctx, content) == models.ContentStatusDead {
				report.Dead++
			}
		}
	}

	if report.Attempted > 0 {
		logger.WithFields(map[string]interface{}{
			"attempted": report.Attempted,
			"succeeded": report.Succeeded,
			"failed":    report.Failed,
			"dead":      report.Dead,
		}).Info("Posting cycle complete")
	}
	return report, nil
}

func (c *Coordinator) publishOne(ctx context.Context, content models.ContentRecord) models.PublishResult {
	result := c.execute(ctx, content)

	attempt := models.PostingAttempt{
		ContentID:    content.ID,
		ListingID:    content.ListingID,
		Platform:     content.Platform,
		PostID:       result.PostID,
		PostURL:      result.URL,
		Status:       models.AttemptStatusSuccess,
		ErrorMessage: result.Error,
		PostedAt:     time.Now().UTC(),
		Analytics:    result.Analytics,
	}
	if !result.Success {
		attempt.Status = models.AttemptStatusFailed
		if attempt.ErrorMessage == "" {
			attempt.ErrorMessage = "publish failed"
		}
	}
	if err := c.store.AppendPostingAttempt(ctx, attempt); err != nil {
		logger.WithError(err).WithField("content_id", content.ID).Error("failed to record posting attempt")
	}

	if result.Success {
		if err := c.store.MarkContentPosted(ctx, content.ID); err != nil {
			logger.WithError(err).WithField("content_id", content.ID).Error("failed to mark content posted")
		}
		c.saveTracking(ctx, content)
	}

	c.emitAttemptEvent(ctx, content, attempt)
	return result
}

func (c *Coordinator) execute(ctx context.Context, content models.ContentRecord) models.PublishResult {
	pub, ok := c.registry[content.Platform]
	if !ok {
		return models.PublishResult{Error: fmt.Sprintf("platform %s is not enabled", content.Platform)}
	}

	listing, err := c.store.GetListing(ctx, content.ListingID)
	if err != nil {
		return models.PublishResult{Error: fmt.Sprintf("loading listing %s: %v", content.ListingID, err)}
	}

	publishCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return pub.Publish(publishCtx, content, listing)
}

func (c *Coordinator) finalizeFailure(ctx context.Context, content models.ContentRecord) string {
	status, err := c.store.RecordPublishFailure(ctx, content.ID, c.maxAttempts)
	if err != nil {
		logger.WithError(err).WithField("content_id", content.ID).Error("failed to record publish failure")
		return ""
	}
	if status == models.ContentStatusDead {
		logger.WithFields(map[string]interface{}{
			"content_id": content.ID,
			"listing_id": content.ListingID,
			"platform":   content.Platform,
		}).Warn("content exhausted its publish attempts")
	}
	return status
}

func (c *Coordinator) saveTracking(ctx context.Context, content models.ContentRecord) {
	listing, err := c.store.GetListing(ctx, content.ListingID)
	if err != nil {
		logger.WithError(err).WithField("listing_id", content.ListingID).Warn("skipping tracking URL, listing missing")
		return
	}
	trackingURL := BuildTrackingURL(listing.BookingURL, content.Platform)
	if trackingURL == "" {
		return
	}
	if err := c.store.SaveTrackingURL(ctx, content.ListingID, content.Platform, trackingURL); err != nil {
		logger.WithError(err).WithField("listing_id", content.ListingID).Warn("failed to save tracking URL")
	}
}

func (c *Coordinator) emitAttemptEvent(ctx context.Context, content models.ContentRecord, attempt models.PostingAttempt) {
	if c.producer == nil {
		return
	}
	err := c.producer.PublishEvent(ctx, "posting.attempted", "publisher", map[string]interface{}{
		"content_id": content.ID,
		"listing_id": content.ListingID,
		"platform":   content.Platform,
		"status":     attempt.Status,
		"post_id":    attempt.PostID,
	})
	if err != nil {
		logger.WithError(err).Warn("failed to publish posting event")
	}
}
