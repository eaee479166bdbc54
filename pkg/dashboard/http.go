package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/heungsikyu/AirBnB-marketing/pkg/common/logger"
	"github.com/heungsikyu/AirBnB-marketing/pkg/common/models"
	"github.com/heungsikyu/AirBnB-marketing/pkg/orchestrator"
	"github.com/heungsikyu/AirBnB-marketing/pkg/store"
)

// Handler exposes the dashboard and analytics API.
type Handler struct {
	store        *store.Store
	orchestrator *orchestrator.Orchestrator
	enabled      []string
}

func NewHandler(st *store.Store, orch *orchestrator.Orchestrator, enabledPlatforms []string) *Handler {
	return &Handler{store: st, orchestrator: orch, enabled: enabledPlatforms}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/analytics/overview", h.handleOverview).Methods(http.MethodGet)
	r.HandleFunc("/analytics/performance", h.handlePerformance).Methods(http.MethodGet)
	r.HandleFunc("/analytics/trends", h.handleTrends).Methods(http.MethodGet)
	r.HandleFunc("/analytics/export", h.handleExport).Methods(http.MethodGet)
	r.HandleFunc("/listings", h.handleListListings).Methods(http.MethodGet)
	r.HandleFunc("/listings/{id}", h.handleGetListing).Methods(http.MethodGet)
	r.HandleFunc("/listings/{id}/history", h.handleListingHistory).Methods(http.MethodGet)
	r.HandleFunc("/dashboard/stats", h.handleDashboardStats).Methods(http.MethodGet)
	r.HandleFunc("/system/status", h.handleSystemStatus).Methods(http.MethodGet)
	r.HandleFunc("/posting/run", h.handleRunPosting).Methods(http.MethodPost)
	r.HandleFunc("/track/{listing}/{platform}", h.handleTrack).Methods(http.MethodPost)
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.orchestrator.Analytics().Overview(r.Context(), parseDays(r, 30))
	if err != nil {
		logger.Log.WithError(err).Error("failed to build overview")
		http.Error(w, "failed to build overview", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (h *Handler) handlePerformance(w http.ResponseWriter, r *http.Request) {
	performance, err := h.orchestrator.Analytics().Performance(r.Context(), parseDays(r, 30), parseLimit(r, 10))
	if err != nil {
		logger.Log.WithError(err).Error("failed to build performance")
		http.Error(w, "failed to build performance", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, performance)
}

func (h *Handler) handleTrends(w http.ResponseWriter, r *http.Request) {
	trends, err := h.orchestrator.Analytics().Trends(r.Context(), parseDays(r, 30))
	if err != nil {
		logger.Log.WithError(err).Error("failed to build trends")
		http.Error(w, "failed to build trends", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, trends)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	data, err := h.orchestrator.Analytics().Export(r.Context(), parseDays(r, 30), format)
	if err != nil {
		logger.Log.WithError(err).Error("failed to export analytics")
		http.Error(w, "failed to export analytics", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":        data,
		"format":      formatOrJSON(format),
		"exported_at": time.Now().UTC(),
	})
}

func (h *Handler) handleListListings(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") != "false"
	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	listings, err := h.store.ListListings(r.Context(), activeOnly, parseLimit(r, 50), offset)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list listings")
		http.Error(w, "failed to list listings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": listings})
}

func (h *Handler) handleGetListing(w http.ResponseWriter, r *http.Request) {
	listing, err := h.store.GetListing(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, store.ErrListingNotFound) {
			http.Error(w, "listing not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to get listing")
		http.Error(w, "failed to get listing", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"listing": listing})
}

func (h *Handler) handleListingHistory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	attempts, err := h.store.QueryPostingHistory(r.Context(), id, r.URL.Query().Get("platform"), parseDays(r, 30))
	if err != nil {
		logger.Log.WithError(err).Error("failed to query posting history")
		http.Error(w, "failed to query posting history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": attempts})
}

func (h *Handler) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.orchestrator.Analytics().DashboardStats(r.Context())
	if err != nil {
		logger.Log.WithError(err).Error("failed to build dashboard stats")
		http.Error(w, "failed to build dashboard stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"started_at":        h.orchestrator.StartedAt(),
		"uptime_seconds":    int64(time.Since(h.orchestrator.StartedAt()).Seconds()),
		"enabled_platforms": h.enabled,
		"jobs":              h.orchestrator.Jobs(),
	})
}

func (h *Handler) handleRunPosting(w http.ResponseWriter, r *http.Request) {
	report, err := h.orchestrator.TriggerPostingCycle(r.Context())
	if err != nil {
		logger.Log.WithError(err).Error("manual posting cycle failed")
		http.Error(w, "posting cycle failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleTrack records one click (and optionally a conversion) against the
// listing's platform counters. It backs the redirect endpoints the tracking
// URLs point at.
func (h *Handler) handleTrack(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	event := models.EngagementEvent{
		ListingID:  vars["listing"],
		Platform:   vars["platform"],
		Clicks:     1,
		OccurredAt: time.Now().UTC(),
	}
	if r.URL.Query().Get("conversion") == "true" {
		event.Conversions = 1
	}
	if err := h.orchestrator.Engagement().Handle(r.Context(), event); err != nil {
		logger.Log.WithError(err).Error("failed to record engagement")
		http.Error(w, "failed to record engagement", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{"tracked": true})
}

func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	if v, err := strconv.Atoi(raw); err == nil && v > 0 {
		return v
	}
	return fallback
}

func parseDays(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return fallback
	}
	if v, err := strconv.Atoi(raw); err == nil && v > 0 {
		return v
	}
	return fallback
}

func formatOrJSON(format string) string {
	if format == "" {
		return "json"
	}
	return format
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
