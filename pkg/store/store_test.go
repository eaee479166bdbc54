package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/heungsikyu/AirBnB-marketing/pkg/common/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "store.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	s := New(db)
	if err := s.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return s
}

func sampleListing(id string) models.Listing {
	return models.Listing{
		ID:            id,
		Title:         "Hanok stay near Bukchon",
		Description:   "Traditional house, quiet alley, five minutes to the palace.",
		City:          "Seoul",
		Latitude:      37.5665,
		Longitude:     126.978,
		PricePerNight: 85000,
		PropertyType:  "house",
		MaxGuests:     4,
		Bedrooms:      2,
		Bathrooms:     1,
		Amenities:     []string{"wifi", "kitchen"},
		Rating:        4.8,
		ReviewCount:   120,
		HostName:      "Minji",
		HostRating:    4.9,
		Images:        []string{"https://img.example.com/1.jpg"},
		BookingURL:    "https://airbnb.com/rooms/" + id,
		ScrapedAt:     time.Now().UTC(),
	}
}

func TestUpsertListingIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	listing := sampleListing("L1")

	if err := s.UpsertListing(ctx, listing); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := s.UpsertListing(ctx, listing); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	count, err := s.CountListings(ctx, false)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 listing after double upsert, got %d", count)
	}

	got, err := s.GetListing(ctx, "L1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != listing.Title || got.City != listing.City {
		t.Fatalf("listing fields not preserved: %+v", got)
	}
	if !got.IsActive {
		t.Fatal("upserted listing should be active")
	}
}

func TestUpsertListingReactivates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	stale := sampleListing("L1")
	stale.ScrapedAt = time.Now().UTC().AddDate(0, 0, -120)
	if err := s.UpsertListing(ctx, stale); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, _, err := s.PurgeOlderThan(ctx, 90); err != nil {
		t.Fatalf("purge: %v", err)
	}
	got, err := s.GetListing(ctx, "L1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.IsActive {
		t.Fatal("stale listing should be deactivated")
	}

	fresh := sampleListing("L1")
	if err := s.UpsertListing(ctx, fresh); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	got, err = s.GetListing(ctx, "L1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.IsActive {
		t.Fatal("re-upserted listing should be active again")
	}
}

func TestGetListingNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetListing(context.Background(), "missing"); err != ErrListingNotFound {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}
}

func TestPendingContentFIFO(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.UpsertListing(ctx, sampleListing("L1")); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	first, err := s.CreateContent(ctx, "L1", models.PlatformInstagram, map[string]interface{}{"caption": "a"})
	if err != nil {
		t.Fatalf("create content: %v", err)
	}
	second, err := s.CreateContent(ctx, "L1", models.PlatformBlog, map[string]interface{}{"title": "b"})
	if err != nil {
		t.Fatalf("create content: %v", err)
	}

	pending, err := s.ListPendingContent(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending records, got %d", len(pending))
	}
	if pending[0].ID != first.ID || pending[1].ID != second.ID {
		t.Fatalf("pending content not oldest-first: %d, %d", pending[0].ID, pending[1].ID)
	}

	if err := s.MarkContentPosted(ctx, first.ID); err != nil {
		t.Fatalf("mark posted: %v", err)
	}
	pending, err = s.ListPendingContent(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != second.ID {
		t.Fatalf("posted record still pending: %+v", pending)
	}

	posted, err := s.GetContent(ctx, first.ID)
	if err != nil {
		t.Fatalf("get content: %v", err)
	}
	if posted.Status != models.ContentStatusPosted {
		t.Fatalf("expected posted status, got %q", posted.Status)
	}
	if posted.PostedAt == nil {
		t.Fatal("posted record must carry posted_at")
	}
}

func TestMarkContentPostedUnknownID(t *testing.T) {
	s := newTestStore(t)
	if err := s.MarkContentPosted(context.Background(), 404); err != ErrContentNotFound {
		t.Fatalf("expected ErrContentNotFound, got %v", err)
	}
}

func TestRecordPublishFailureDeadLetters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	record, err := s.CreateContent(ctx, "L1", models.PlatformYouTube, map[string]interface{}{"title": "t"})
	if err != nil {
		t.Fatalf("create content: %v", err)
	}

	status, err := s.RecordPublishFailure(ctx, record.ID, 3)
	if err != nil {
		t.Fatalf("first failure: %v", err)
	}
	if status != models.ContentStatusPending {
		t.Fatalf("expected pending after 1/3 failures, got %q", status)
	}

	if _, err := s.RecordPublishFailure(ctx, record.ID, 3); err != nil {
		t.Fatalf("second failure: %v", err)
	}
	status, err = s.RecordPublishFailure(ctx, record.ID, 3)
	if err != nil {
		t.Fatalf("third failure: %v", err)
	}
	if status != models.ContentStatusDead {
		t.Fatalf("expected dead after 3/3 failures, got %q", status)
	}

	pending, err := s.ListPendingContent(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("dead record must not be re-selected, got %d pending", len(pending))
	}
}

func TestConversionCounterUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.UpsertConversionCounter(ctx, "L1", models.PlatformInstagram, 3, 1); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := s.UpsertConversionCounter(ctx, "L1", models.PlatformInstagram, 2, 0); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if err := s.UpsertConversionCounter(ctx, "L1", models.PlatformBlog, 1, 0); err != nil {
		t.Fatalf("other platform upsert: %v", err)
	}

	stats, err := s.QueryConversionStats(ctx, "L1")
	if err != nil {
		t.Fatalf("query stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected one row per (listing, platform), got %d", len(stats))
	}
	byPlatform := map[string]models.ConversionStat{}
	for _, stat := range stats {
		byPlatform[stat.Platform] = stat
	}
	ig := byPlatform[models.PlatformInstagram]
	if ig.ClickCount != 5 || ig.ConversionCount != 1 {
		t.Fatalf("instagram counters wrong: clicks=%d conversions=%d", ig.ClickCount, ig.ConversionCount)
	}
}

func TestSaveTrackingURLKeepsCounters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.UpsertConversionCounter(ctx, "L1", models.PlatformBlog, 4, 2); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.SaveTrackingURL(ctx, "L1", models.PlatformBlog, "https://airbnb.com/rooms/L1?utm_source=blog"); err != nil {
		t.Fatalf("save tracking url: %v", err)
	}

	stats, err := s.QueryConversionStats(ctx, "L1")
	if err != nil {
		t.Fatalf("query stats: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("expected 1 row, got %d", len(stats))
	}
	if stats[0].ClickCount != 4 || stats[0].ConversionCount != 2 {
		t.Fatalf("tracking url update must not reset counters: %+v", stats[0])
	}
	if stats[0].TrackingURL == "" {
		t.Fatal("tracking url not saved")
	}
}

func TestPurgeOlderThanIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := models.PostingAttempt{
		ContentID: 1,
		ListingID: "L1",
		Platform:  models.PlatformInstagram,
		Status:    models.AttemptStatusSuccess,
		PostedAt:  time.Now().UTC().AddDate(0, 0, -120),
	}
	recent := models.PostingAttempt{
		ContentID: 2,
		ListingID: "L1",
		Platform:  models.PlatformInstagram,
		Status:    models.AttemptStatusSuccess,
		PostedAt:  time.Now().UTC(),
	}
	if err := s.AppendPostingAttempt(ctx, old); err != nil {
		t.Fatalf("append old: %v", err)
	}
	if err := s.AppendPostingAttempt(ctx, recent); err != nil {
		t.Fatalf("append recent: %v", err)
	}

	deleted, _, err := s.PurgeOlderThan(ctx, 90)
	if err != nil {
		t.Fatalf("first purge: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 attempt deleted, got %d", deleted)
	}

	deleted, deactivated, err := s.PurgeOlderThan(ctx, 90)
	if err != nil {
		t.Fatalf("second purge: %v", err)
	}
	if deleted != 0 || deactivated != 0 {
		t.Fatalf("second purge must be a no-op, got deleted=%d deactivated=%d", deleted, deactivated)
	}

	history, err := s.QueryPostingHistory(ctx, "", "", 365)
	if err != nil {
		t.Fatalf("query history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected only the recent attempt to survive, got %d", len(history))
	}
}

func TestQueryPostingHistoryFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	attempts := []models.PostingAttempt{
		{ContentID: 1, ListingID: "L1", Platform: models.PlatformInstagram, Status: models.AttemptStatusSuccess, PostedAt: now.Add(-2 * time.Hour)},
		{ContentID: 2, ListingID: "L1", Platform: models.PlatformBlog, Status: models.AttemptStatusFailed, ErrorMessage: "timeout", PostedAt: now.Add(-time.Hour)},
		{ContentID: 3, ListingID: "L2", Platform: models.PlatformInstagram, Status: models.AttemptStatusSuccess, PostedAt: now},
	}
	for _, attempt := range attempts {
		if err := s.AppendPostingAttempt(ctx, attempt); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	history, err := s.QueryPostingHistory(ctx, "L1", "", 7)
	if err != nil {
		t.Fatalf("query by listing: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 attempts for L1, got %d", len(history))
	}
	if !history[0].PostedAt.After(history[1].PostedAt) {
		t.Fatal("history must be newest first")
	}

	history, err = s.QueryPostingHistory(ctx, "", models.PlatformInstagram, 7)
	if err != nil {
		t.Fatalf("query by platform: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 instagram attempts, got %d", len(history))
	}
}

func TestListingsNeedingContent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.UpsertListing(ctx, sampleListing("L1")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.UpsertListing(ctx, sampleListing("L2")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := s.CreateContent(ctx, "L1", models.PlatformInstagram, map[string]interface{}{"caption": "x"}); err != nil {
		t.Fatalf("create content: %v", err)
	}

	cutoff := time.Now().UTC().Add(-24 * time.Hour)
	needing, err := s.ListingsNeedingContent(ctx, cutoff, 10)
	if err != nil {
		t.Fatalf("listings needing content: %v", err)
	}
	if len(needing) != 1 || needing[0].ID != "L2" {
		t.Fatalf("expected only L2 to need content, got %+v", needing)
	}
}
