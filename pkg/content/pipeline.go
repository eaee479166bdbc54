package content

import (
	"context"
	"fmt"
	"time"

	"github.com/heungsikyu/AirBnB-marketing/pkg/common/logger"
	"github.com/heungsikyu/AirBnB-marketing/pkg/common/models"
	"github.com/heungsikyu/AirBnB-marketing/pkg/store"
)

// Pipeline generates pending content records for listings that do not have
// fresh content yet. One record per enabled platform.
type Pipeline struct {
	store       *store.Store
	synthesizer Synthesizer
	platforms   []string
	limit       int
	timeout     time.Duration
}

func NewPipeline(st *store.Store, synthesizer Synthesizer, platforms []string, limit int, timeout time.Duration) *Pipeline {
	if limit <= 0 {
		limit = 20
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Pipeline{
		store:       st,
		synthesizer: synthesizer,
		platforms:   platforms,
		limit:       limit,
		timeout:     timeout,
	}
}

// GenerateContent synthesizes and stores one payload per platform. A
// synthesizer failure on one platform is logged and skipped; the others
// still get their records. A store failure aborts the listing.
func (p *Pipeline) GenerateContent(ctx context.Context, listing models.Listing) (int, error) {
	created := 0
	for _, platform := range p.platforms {
		payload, err := p.synthesize(ctx, platform, listing)
		if err != nil {
			logger.WithError(err).WithFields(map[string]interface{}{
				"listing_id": listing.ID,
				"platform":   platform,
			}).Warn("content synthesis failed, skipping platform")
			continue
		}

		if _, err := p.store.CreateContent(ctx, listing.ID, platform, payload); err != nil {
			return created, fmt.Errorf("saving content for listing %s on %s: %w", listing.ID, platform, err)
		}
		created++
	}
	return created, nil
}

func (p *Pipeline) synthesize(ctx context.Context, platform string, listing models.Listing) (map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.synthesizer.Synthesize(ctx, platform, listing)
}

// RunDailyGeneration generates content for listings without a record newer
// than 24 hours. Returns the number of content records created.
func (p *Pipeline) RunDailyGeneration(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-24 * time.Hour)
	listings, err := p.store.ListingsNeedingContent(ctx, cutoff, p.limit)
	if err != nil {
		return 0, fmt.Errorf("selecting listings for generation: %w", err)
	}

	total := 0
	for _, listing := range listings {
		created, err := p.GenerateContent(ctx, listing)
		total += created
		if err != nil {
			return total, err
		}
	}

	logger.WithFields(map[string]interface{}{
		"listings": len(listings),
		"records":  total,
	}).Info("Daily content generation complete")
	return total, nil
}
