package store

import (
	"context"
	"errors"
	"time"

	"github.com/heungsikyu/AirBnB-marketing/pkg/common/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrContentNotFound = errors.New("content record not found")
)

// Store is the persistence layer for listings, generated content, posting
// attempts, and conversion counters.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(
		&listingModel{},
		&contentModel{},
		&attemptModel{},
		&conversionModel{},
	)
}

// listingColumns are the fields refreshed on every ingestion run. created_at
// is deliberately absent so the original insert time survives upserts.
var listingColumns = []string{
	"title", "description", "city", "latitude", "longitude",
	"price_per_night", "property_type", "max_guests", "bedrooms", "bathrooms",
	"amenities", "rating", "review_count", "host_name", "host_rating",
	"images", "booking_url", "scraped_at", "is_active",
}

// UpsertListing inserts the listing or refreshes all mutable fields,
// reactivating it either way. Calling it twice with the same data leaves the
// row unchanged.
func (s *Store) UpsertListing(ctx context.Context, listing models.Listing) error {
	model := toListingModel(listing)
	model.CreatedAt = time.Now().UTC()
	if model.ScrapedAt.IsZero() {
		model.ScrapedAt = model.CreatedAt
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(listingColumns),
	}).Create(&model).Error
}

func (s *Store) GetListing(ctx context.Context, id string) (models.Listing, error) {
	var model listingModel
	err := s.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Listing{}, ErrListingNotFound
	}
	if err != nil {
		return models.Listing{}, err
	}
	return mapListingModel(model), nil
}

// ListListings returns listings ordered by recency of scraping, newest first.
func (s *Store) ListListings(ctx context.Context, activeOnly bool, limit, offset int) ([]models.Listing, error) {
	if limit <= 0 {
		limit = 100
	}
	query := s.db.WithContext(ctx).Order("scraped_at DESC").Limit(limit).Offset(offset)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var records []listingModel
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	listings := make([]models.Listing, 0, len(records))
	for _, record := range records {
		listings = append(listings, mapListingModel(record))
	}
	return listings, nil
}

func (s *Store) CountListings(ctx context.Context, activeOnly bool) (int64, error) {
	query := s.db.WithContext(ctx).Model(&listingModel{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

// ListingsNeedingContent returns active listings with no content record
// created at or after the cutoff, newest first.
func (s *Store) ListingsNeedingContent(ctx context.Context, cutoff time.Time, limit int) ([]models.Listing, error) {
	if limit <= 0 {
		limit = 20
	}
	fresh := s.db.Model(&contentModel{}).
		Select("listing_id").
		Where("created_at >= ?", cutoff)

	var records []listingModel
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("id NOT IN (?)", fresh).
		Order("scraped_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	listings := make([]models.Listing, 0, len(records))
	for _, record := range records {
		listings = append(listings, mapListingModel(record))
	}
	return listings, nil
}

func (s *Store) CreateContent(ctx context.Context, listingID, platform string, payload map[string]interface{}) (models.ContentRecord, error) {
	model := contentModel{
		ListingID: listingID,
		Platform:  platform,
		Payload:   payload,
		Status:    models.ContentStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return models.ContentRecord{}, err
	}
	return mapContentModel(model), nil
}

func (s *Store) GetContent(ctx context.Context, id int64) (models.ContentRecord, error) {
	var model contentModel
	err := s.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ContentRecord{}, ErrContentNotFound
	}
	if err != nil {
		return models.ContentRecord{}, err
	}
	return mapContentModel(model), nil
}

// ListPendingContent returns pending records oldest first, so retried items
// are not starved by newer content.
func (s *Store) ListPendingContent(ctx context.Context, limit int) ([]models.ContentRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []contentModel
	err := s.db.WithContext(ctx).
		Where("status = ?", models.ContentStatusPending).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	content := make([]models.ContentRecord, 0, len(records))
	for _, record := range records {
		content = append(content, mapContentModel(record))
	}
	return content, nil
}

// MarkContentPosted transitions the record to posted and stamps posted_at in
// the same update, keeping the two in lockstep.
func (s *Store) MarkContentPosted(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	result := s.db.WithContext(ctx).Model(&contentModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":    models.ContentStatusPosted,
			"posted_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrContentNotFound
	}
	return nil
}

// RecordPublishFailure bumps the attempt counter and dead-letters the record
// once maxAttempts is reached, in a single atomic update. It returns the
// record's status after the update.
func (s *Store) RecordPublishFailure(ctx context.Context, id int64, maxAttempts int) (string, error) {
	result := s.db.WithContext(ctx).Model(&contentModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempt_count": gorm.Expr("attempt_count + 1"),
			"status": gorm.Expr(
				"CASE WHEN attempt_count + 1 >= ? THEN ? ELSE status END",
				maxAttempts, models.ContentStatusDead,
			),
		})
	if result.Error != nil {
		return "", result.Error
	}
	if result.RowsAffected == 0 {
		return "", ErrContentNotFound
	}
	var model contentModel
	if err := s.db.WithContext(ctx).Select("status").First(&model, "id = ?", id).Error; err != nil {
		return "", err
	}
	return model.Status, nil
}

// AppendPostingAttempt records one publish outcome. History is append-only.
func (s *Store) AppendPostingAttempt(ctx context.Context, attempt models.PostingAttempt) error {
	model := attemptModel{
		ContentID:    attempt.ContentID,
		ListingID:    attempt.ListingID,
		Platform:     attempt.Platform,
		PostID:       attempt.PostID,
		PostURL:      attempt.PostURL,
		Status:       attempt.Status,
		ErrorMessage: attempt.ErrorMessage,
		PostedAt:     attempt.PostedAt,
		Analytics:    attempt.Analytics,
	}
	if model.PostedAt.IsZero() {
		model.PostedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Create(&model).Error
}

// QueryPostingHistory returns attempts within the window, newest first.
// Empty listingID or platform means no filter on that field.
func (s *Store) QueryPostingHistory(ctx context.Context, listingID, platform string, sinceDays int) ([]models.PostingAttempt, error) {
	if sinceDays <= 0 {
		sinceDays = 30
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -sinceDays)
	query := s.db.WithContext(ctx).Where("posted_at >= ?", cutoff)
	if listingID != "" {
		query = query.Where("listing_id = ?", listingID)
	}
	if platform != "" {
		query = query.Where("platform = ?", platform)
	}
	var records []attemptModel
	if err := query.Order("posted_at DESC, id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	attempts := make([]models.PostingAttempt, 0, len(records))
	for _, record := range records {
		attempts = append(attempts, mapAttemptModel(record))
	}
	return attempts, nil
}

// UpsertConversionCounter creates the (listing, platform) counter row if
// absent and adds the deltas atomically. Concurrent calls never lose an
// increment: the add happens inside the upsert statement.
func (s *Store) UpsertConversionCounter(ctx context.Context, listingID, platform string, deltaClicks, deltaConversions int64) error {
	now := time.Now().UTC()
	model := conversionModel{
		ListingID:       listingID,
		Platform:        platform,
		ClickCount:      deltaClicks,
		ConversionCount: deltaConversions,
		CreatedAt:       now,
		LastUpdated:     now,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "listing_id"}, {Name: "platform"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"click_count":      gorm.Expr("click_count + ?", deltaClicks),
			"conversion_count": gorm.Expr("conversion_count + ?", deltaConversions),
			"last_updated":     now,
		}),
	}).Create(&model).Error
}

// SaveTrackingURL attaches the tracking link to the counter row, creating it
// zero-initialized when absent.
func (s *Store) SaveTrackingURL(ctx context.Context, listingID, platform, trackingURL string) error {
	now := time.Now().UTC()
	model := conversionModel{
		ListingID:   listingID,
		Platform:    platform,
		TrackingURL: trackingURL,
		CreatedAt:   now,
		LastUpdated: now,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "listing_id"}, {Name: "platform"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"tracking_url": trackingURL,
			"last_updated": now,
		}),
	}).Create(&model).Error
}

func (s *Store) QueryConversionStats(ctx context.Context, listingID string) ([]models.ConversionStat, error) {
	query := s.db.WithContext(ctx).Order("last_updated DESC")
	if listingID != "" {
		query = query.Where("listing_id = ?", listingID)
	}
	var records []conversionModel
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	stats := make([]models.ConversionStat, 0, len(records))
	for _, record := range records {
		stats = append(stats, mapConversionModel(record))
	}
	return stats, nil
}

// PurgeOlderThan deletes posting attempts older than the horizon and
// deactivates listings not refreshed within it. Running it twice in a row is
// a no-op the second time.
func (s *Store) PurgeOlderThan(ctx context.Context, days int) (attemptsDeleted, listingsDeactivated int64, err error) {
	if days <= 0 {
		return 0, 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	result := s.db.WithContext(ctx).Where("posted_at < ?", cutoff).Delete(&attemptModel{})
	if result.Error != nil {
		return 0, 0, result.Error
	}
	attemptsDeleted = result.RowsAffected

	result = s.db.WithContext(ctx).Model(&listingModel{}).
		Where("scraped_at < ? AND is_active = ?", cutoff, true).
		Update("is_active", false)
	if result.Error != nil {
		return attemptsDeleted, 0, result.Error
	}
	listingsDeactivated = result.RowsAffected

	return attemptsDeleted, listingsDeactivated, nil
}
