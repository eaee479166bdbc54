package content

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/heungsikyu/AirBnB-marketing/pkg/common/logger"
	"github.com/heungsikyu/AirBnB-marketing/pkg/common/models"
	"github.com/heungsikyu/AirBnB-marketing/pkg/store"
)

func init() {
	logger.Init()
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "content.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	st := store.New(db)
	if err := st.AutoMigrate(); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	return st
}

func testListing(id string) models.Listing {
	return models.Listing{
		ID:            id,
		Title:         "Seaside Loft",
		City:          "Busan",
		PricePerNight: 85000,
		PropertyType:  "loft",
		MaxGuests:     4,
		Rating:        4.7,
		ReviewCount:   120,
		Amenities:     []string{"wifi", "kitchen"},
		Images:        []string{"https://images.example.com/l1/main.jpg"},
		BookingURL:    "https://airbnb.com/rooms/" + id,
		ScrapedAt:     time.Now().UTC(),
	}
}

type flakySynthesizer struct {
	failOn string
}

func (f *flakySynthesizer) Synthesize(ctx context.Context, platform string, listing models.Listing) (map[string]interface{}, error) {
	if platform == f.failOn {
		return nil, errors.New("synthesis backend unavailable")
	}
	return map[string]interface{}{"caption": listing.Title}, nil
}

func TestGenerateContentCreatesOneRecordPerPlatform(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	listing := testListing("busan-001")
	if err := st.UpsertListing(ctx, listing); err != nil {
		t.Fatalf("upsert listing: %v", err)
	}

	pipeline := NewPipeline(st, NewTemplateSynthesizer(DefaultTemplates()),
		[]string{models.PlatformInstagram, models.PlatformYouTube, models.PlatformBlog}, 20, time.Second)

	created, err := pipeline.GenerateContent(ctx, listing)
	if err != nil {
		t.Fatalf("generate content: %v", err)
	}
	if created != 3 {
		t.Fatalf("expected 3 records, got %d", created)
	}

	pending, err := st.ListPendingContent(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("expected 3 pending records, got %d", len(pending))
	}
	seen := map[string]bool{}
	for _, record := range pending {
		if record.Status != models.ContentStatusPending {
			t.Fatalf("new content must be pending, got %q", record.Status)
		}
		if record.ListingID != listing.ID {
			t.Fatalf("wrong listing id %q", record.ListingID)
		}
		seen[record.Platform] = true
	}
	for _, platform := range []string{models.PlatformInstagram, models.PlatformYouTube, models.PlatformBlog} {
		if !seen[platform] {
			t.Fatalf("missing record for %s", platform)
		}
	}
}

func TestGenerateContentSkipsFailedPlatform(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	listing := testListing("busan-002")
	if err := st.UpsertListing(ctx, listing); err != nil {
		t.Fatalf("upsert listing: %v", err)
	}

	pipeline := NewPipeline(st, &flakySynthesizer{failOn: models.PlatformYouTube},
		[]string{models.PlatformInstagram, models.PlatformYouTube, models.PlatformBlog}, 20, time.Second)

	created, err := pipeline.GenerateContent(ctx, listing)
	if err != nil {
		t.Fatalf("generate content: %v", err)
	}
	if created != 2 {
		t.Fatalf("expected 2 records, got %d", created)
	}

	pending, err := st.ListPendingContent(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	for _, record := range pending {
		if record.Platform == models.PlatformYouTube {
			t.Fatal("failed platform must not get a record")
		}
	}
}

func TestRunDailyGenerationSkipsFreshListings(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	fresh := testListing("seoul-001")
	stale := testListing("seoul-002")
	for _, listing := range []models.Listing{fresh, stale} {
		if err := st.UpsertListing(ctx, listing); err != nil {
			t.Fatalf("upsert listing: %v", err)
		}
	}
	if _, err := st.CreateContent(ctx, fresh.ID, models.PlatformInstagram, map[string]interface{}{"caption": "x"}); err != nil {
		t.Fatalf("seed content: %v", err)
	}

	pipeline := NewPipeline(st, NewTemplateSynthesizer(DefaultTemplates()),
		[]string{models.PlatformInstagram}, 20, time.Second)

	created, err := pipeline.RunDailyGeneration(ctx)
	if err != nil {
		t.Fatalf("daily generation: %v", err)
	}
	if created != 1 {
		t.Fatalf("expected 1 new record for the stale listing, got %d", created)
	}
}

func TestTemplateSynthesizerFillsPlaceholders(t *testing.T) {
	synth := NewTemplateSynthesizer(TemplateCatalog{Platforms: map[string]PlatformTemplates{
		"instagram": {
			Captions: []string{"%TITLE% in %CITY% for %PRICE% KRW"},
			Hashtags: []string{"#airbnb"},
		},
	}})

	payload, err := synth.Synthesize(context.Background(), models.PlatformInstagram, testListing("busan-003"))
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	caption, _ := payload["caption"].(string)
	if !strings.Contains(caption, "Seaside Loft in Busan for 85000 KRW") {
		t.Fatalf("placeholders not filled: %q", caption)
	}
	if strings.Contains(caption, "%TITLE%") || strings.Contains(caption, "%CITY%") {
		t.Fatalf("raw placeholder left in caption: %q", caption)
	}
	hashtags, _ := payload["hashtags"].(string)
	if !strings.Contains(hashtags, "#busan") {
		t.Fatalf("expected city hashtag, got %q", hashtags)
	}
}

func TestSynthesizeHonorsCancelledContext(t *testing.T) {
	synth := NewTemplateSynthesizer(DefaultTemplates())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := synth.Synthesize(ctx, models.PlatformInstagram, testListing("busan-004")); err == nil {
		t.Fatal("expected context error")
	}
}
