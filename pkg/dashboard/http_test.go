package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/heungsikyu/AirBnB-marketing/pkg/common/config"
	"github.com/heungsikyu/AirBnB-marketing/pkg/common/logger"
	"github.com/heungsikyu/AirBnB-marketing/pkg/common/models"
	"github.com/heungsikyu/AirBnB-marketing/pkg/orchestrator"
	"github.com/heungsikyu/AirBnB-marketing/pkg/store"
)

func init() {
	logger.Init()
}

func newTestHandler(t *testing.T) (*Handler, *store.Store) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "dashboard.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	st := store.New(db)
	if err := st.AutoMigrate(); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	cfg := &config.Config{
		PostingSchedule:      []string{"09:00"},
		SchedulerTick:        time.Minute,
		CleanupRetentionDays: 90,
		AnalyticsWindowDays:  30,
		PostingBatchSize:     10,
		MaxPublishAttempts:   3,
		PublishTimeout:       time.Second,
		SynthesizeTimeout:    time.Second,
		CollectionLimit:      10,
		GenerationLimit:      10,
		ReportsDir:           t.TempDir(),
	}
	orch, err := orchestrator.New(cfg, st, nil, nil)
	if err != nil {
		t.Fatalf("building orchestrator: %v", err)
	}
	return NewHandler(st, orch, cfg.EnabledPlatforms()), st
}

func newTestRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	h.Register(r.PathPrefix("/api/v1").Subrouter())
	return r
}

func TestTrackEndpointAccumulatesClicks(t *testing.T) {
	handler, st := newTestHandler(t)
	router := newTestRouter(handler)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/track/seoul-001/instagram", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("track status: %d", rec.Code)
		}
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/track/seoul-001/instagram?conversion=true", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("track conversion status: %d", rec.Code)
	}

	stats, err := st.QueryConversionStats(context.Background(), "seoul-001")
	if err != nil {
		t.Fatalf("query stats: %v", err)
	}
	if len(stats) != 1 || stats[0].ClickCount != 4 || stats[0].ConversionCount != 1 {
		t.Fatalf("counters wrong: %+v", stats)
	}
}

func TestOverviewEndpoint(t *testing.T) {
	handler, st := newTestHandler(t)
	router := newTestRouter(handler)

	err := st.AppendPostingAttempt(context.Background(), models.PostingAttempt{
		ContentID: 1,
		ListingID: "seoul-001",
		Platform:  models.PlatformBlog,
		Status:    models.AttemptStatusSuccess,
		PostedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed attempt: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/overview?days=7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("overview status: %d, body %s", rec.Code, rec.Body.String())
	}

	var overview models.Overview
	if err := json.Unmarshal(rec.Body.Bytes(), &overview); err != nil {
		t.Fatalf("decode overview: %v", err)
	}
	if overview.TotalPosts != 1 || overview.SuccessRate != 100 || overview.PeriodDays != 7 {
		t.Fatalf("unexpected overview: %+v", overview)
	}
}

func TestGetListingNotFound(t *testing.T) {
	handler, _ := newTestHandler(t)
	router := newTestRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/listings/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSystemStatusListsJobs(t *testing.T) {
	handler, _ := newTestHandler(t)
	router := newTestRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/system/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status endpoint: %d", rec.Code)
	}

	var status struct {
		Jobs []models.JobStatus `json:"jobs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	names := map[string]bool{}
	for _, job := range status.Jobs {
		names[job.Name] = true
	}
	for _, want := range []string{"collect-listings", "generate-content", "daily-report", "cleanup", "monthly-report", "posting-09:00"} {
		if !names[want] {
			t.Fatalf("missing job %q in %v", want, status.Jobs)
		}
	}
}

func TestExportEndpointRejectsBadFormat(t *testing.T) {
	handler, _ := newTestHandler(t)
	router := newTestRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/export?format=xml", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad format, got %d", rec.Code)
	}
}
