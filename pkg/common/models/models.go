package models

import (
	"time"
)

// Platforms the pipeline can target. A platform is enabled when its publish
// credentials are configured.
const (
	PlatformInstagram = "instagram"
	PlatformYouTube   = "youtube"
	PlatformBlog      = "blog"
)

// Content record lifecycle. A record starts pending, moves to posted on the
// first successful publish, and moves to dead once the publish attempt limit
// is exhausted.
const (
	ContentStatusPending = "pending"
	ContentStatusPosted  = "posted"
	ContentStatusDead    = "dead"
)

// Posting attempt outcomes.
const (
	AttemptStatusSuccess = "success"
	AttemptStatusFailed  = "failed"
)

// Listing is one marketed unit (a property), created or refreshed by
// ingestion and soft-deactivated after the retention horizon.
type Listing struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	City          string    `json:"city"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	PricePerNight int       `json:"price_per_night"`
	PropertyType  string    `json:"property_type"`
	MaxGuests     int       `json:"max_guests"`
	Bedrooms      int       `json:"bedrooms"`
	Bathrooms     int       `json:"bathrooms"`
	Amenities     []string  `json:"amenities"`
	Rating        float64   `json:"rating"`
	ReviewCount   int       `json:"review_count"`
	HostName      string    `json:"host_name"`
	HostRating    float64   `json:"host_rating"`
	Images        []string  `json:"images"`
	BookingURL    string    `json:"booking_url"`
	CreatedAt     time.Time `json:"created_at"`
	ScrapedAt     time.Time `json:"scraped_at"`
	IsActive      bool      `json:"is_active"`
}

// ContentRecord is one generated payload for one listing on one platform.
type ContentRecord struct {
	ID           int64                  `json:"id"`
	ListingID    string                 `json:"listing_id"`
	Platform     string                 `json:"platform"`
	Payload      map[string]interface{} `json:"payload"`
	Status       string                 `json:"status"`
	AttemptCount int                    `json:"attempt_count"`
	CreatedAt    time.Time              `json:"created_at"`
	PostedAt     *time.Time             `json:"posted_at,omitempty"`
}

// PostingAttempt is the append-only record of one publish action.
type PostingAttempt struct {
	ID           int64                  `json:"id"`
	ContentID    int64                  `json:"content_id"`
	ListingID    string                 `json:"listing_id"`
	Platform     string                 `json:"platform"`
	PostID       string                 `json:"post_id,omitempty"`
	PostURL      string                 `json:"post_url,omitempty"`
	Status       string                 `json:"status"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	PostedAt     time.Time              `json:"posted_at"`
	Analytics    map[string]interface{} `json:"analytics,omitempty"`
}

// ConversionStat holds the running click/conversion counters for one
// (listing, platform) pair. Counters only grow.
type ConversionStat struct {
	ID              int64     `json:"id"`
	ListingID       string    `json:"listing_id"`
	Platform        string    `json:"platform"`
	TrackingURL     string    `json:"tracking_url"`
	ClickCount      int64     `json:"click_count"`
	ConversionCount int64     `json:"conversion_count"`
	CreatedAt       time.Time `json:"created_at"`
	LastUpdated     time.Time `json:"last_updated"`
}

// PublishResult is what a platform publisher reports back.
type PublishResult struct {
	Success   bool                   `json:"success"`
	PostID    string                 `json:"post_id,omitempty"`
	URL       string                 `json:"url,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Analytics map[string]interface{} `json:"analytics,omitempty"`
}

// Event bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

// EngagementEvent is a click/conversion delta arriving from tracking links.
type EngagementEvent struct {
	ListingID   string    `json:"listing_id"`
	Platform    string    `json:"platform"`
	Clicks      int64     `json:"clicks"`
	Conversions int64     `json:"conversions"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Analytics report models
type DailyStat struct {
	Posts   int `json:"posts"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

type PlatformStat struct {
	Posts       int   `json:"posts"`
	Success     int   `json:"success"`
	Failed      int   `json:"failed"`
	Clicks      int64 `json:"clicks"`
	Conversions int64 `json:"conversions"`
}

type Overview struct {
	PeriodDays       int                     `json:"period_days"`
	TotalPosts       int                     `json:"total_posts"`
	SuccessfulPosts  int                     `json:"successful_posts"`
	FailedPosts      int                     `json:"failed_posts"`
	SuccessRate      float64                 `json:"success_rate"`
	TotalClicks      int64                   `json:"total_clicks"`
	TotalConversions int64                   `json:"total_conversions"`
	ConversionRate   float64                 `json:"conversion_rate"`
	DailyStats       map[string]DailyStat    `json:"daily_stats"`
	PlatformStats    map[string]PlatformStat `json:"platform_stats"`
}

type ListingPerformance struct {
	ListingID   string   `json:"listing_id"`
	Title       string   `json:"title"`
	City        string   `json:"city"`
	Posts       int      `json:"posts"`
	Success     int      `json:"success"`
	Failed      int      `json:"failed"`
	Platforms   []string `json:"platforms"`
	SuccessRate float64  `json:"success_rate"`
}

type Performance struct {
	TopPerformers      []ListingPerformance `json:"top_performers"`
	TotalListings      int                  `json:"total_listings"`
	AverageSuccessRate float64              `json:"average_success_rate"`
}

type WeeklyStat struct {
	Posts   int `json:"posts"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

type GrowthPoint struct {
	Week       string  `json:"week"`
	GrowthRate float64 `json:"growth_rate"`
	Posts      int     `json:"posts"`
}

type Trends struct {
	WeeklyStats       map[string]WeeklyStat `json:"weekly_stats"`
	GrowthRates       []GrowthPoint         `json:"growth_rates"`
	AverageGrowthRate float64               `json:"average_growth_rate"`
}

type DashboardStats struct {
	TotalListings    int64   `json:"total_listings"`
	ActiveListings   int64   `json:"active_listings"`
	TotalPosts       int     `json:"total_posts"`
	SuccessfulPosts  int     `json:"successful_posts"`
	FailedPosts      int     `json:"failed_posts"`
	TotalClicks      int64   `json:"total_clicks"`
	TotalConversions int64   `json:"total_conversions"`
	SuccessRate      float64 `json:"success_rate"`
	ConversionRate   float64 `json:"conversion_rate"`
}

// Report artifacts written by the report jobs.
type DailyReport struct {
	GeneratedAt time.Time            `json:"generated_at"`
	PeriodDays  int                  `json:"period_days"`
	Overview    Overview             `json:"overview"`
	TopListings []ListingPerformance `json:"top_listings"`
}

type MonthlyReport struct {
	GeneratedAt     time.Time `json:"generated_at"`
	PeriodDays      int       `json:"period_days"`
	Overview        Overview  `json:"overview"`
	Trends          Trends    `json:"trends"`
	Recommendations []string  `json:"recommendations"`
}

// JobStatus is a snapshot of one scheduled job for status endpoints.
type JobStatus struct {
	Name      string     `json:"name"`
	Trigger   string     `json:"trigger"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	NextRun   time.Time  `json:"next_run"`
	RunCount  int        `json:"run_count"`
	LastError string     `json:"last_error,omitempty"`
}
