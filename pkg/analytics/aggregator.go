package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/heungsikyu/AirBnB-marketing/pkg/common/models"
)

// BuildOverview folds posting attempts and conversion counters into the
// period overview. Rates with a zero denominator are reported as zero.
func BuildOverview(attempts []models.PostingAttempt, conversions []models.ConversionStat, periodDays int) models.Overview {
	overview := models.Overview{
		PeriodDays:    periodDays,
		DailyStats:    map[string]models.DailyStat{},
		PlatformStats: map[string]models.PlatformStat{},
	}

	for _, attempt := range attempts {
		overview.TotalPosts++
		day := attempt.PostedAt.UTC().Format("2006-01-02")
		dailyStat := overview.DailyStats[day]
		platformStat := overview.PlatformStats[attempt.Platform]
		dailyStat.Posts++
		platformStat.Posts++
		if attempt.Status == models.AttemptStatusSuccess {
			overview.SuccessfulPosts++
			dailyStat.Success++
			platformStat.Success++
		} else {
			overview.FailedPosts++
			dailyStat.Failed++
			platformStat.Failed++
		}
		overview.DailyStats[day] = dailyStat
		overview.PlatformStats[attempt.Platform] = platformStat
	}

	for _, conversion := range conversions {
		overview.TotalClicks += conversion.ClickCount
		overview.TotalConversions += conversion.ConversionCount
		platformStat := overview.PlatformStats[conversion.Platform]
		platformStat.Clicks += conversion.ClickCount
		platformStat.Conversions += conversion.ConversionCount
		overview.PlatformStats[conversion.Platform] = platformStat
	}

	if overview.TotalPosts > 0 {
		overview.SuccessRate = float64(overview.SuccessfulPosts) / float64(overview.TotalPosts) * 100
	}
	if overview.TotalClicks > 0 {
		overview.ConversionRate = float64(overview.TotalConversions) / float64(overview.TotalClicks) * 100
	}
	return overview
}

// BuildPerformance ranks listings by publish success rate. Ties break on
// post volume, then listing id, so the order is stable.
func BuildPerformance(attempts []models.PostingAttempt, listings map[string]models.Listing, topN int) models.Performance {
	if topN <= 0 {
		topN = 10
	}

	byListing := map[string]*models.ListingPerformance{}
	platforms := map[string]map[string]bool{}
	for _, attempt := range attempts {
		perf, ok := byListing[attempt.ListingID]
		if !ok {
			perf = &models.ListingPerformance{ListingID: attempt.ListingID}
			if listing, found := listings[attempt.ListingID]; found {
				perf.Title = listing.Title
				perf.City = listing.City
			}
			byListing[attempt.ListingID] = perf
			platforms[attempt.ListingID] = map[string]bool{}
		}
		perf.Posts++
		platforms[attempt.ListingID][attempt.Platform] = true
		if attempt.Status == models.AttemptStatusSuccess {
			perf.Success++
		} else {
			perf.Failed++
		}
	}

	var ranked []models.ListingPerformance
	var rateSum float64
	for id, perf := range byListing {
		for platform := range platforms[id] {
			perf.Platforms = append(perf.Platforms, platform)
		}
		sort.Strings(perf.Platforms)
		if perf.Posts > 0 {
			perf.SuccessRate = float64(perf.Success) / float64(perf.Posts) * 100
		}
		rateSum += perf.SuccessRate
		ranked = append(ranked, *perf)
	}

	sort.Slice(ranked, func(i, k int) bool {
		if ranked[i].SuccessRate != ranked[k].SuccessRate {
			return ranked[i].SuccessRate > ranked[k].SuccessRate
		}
		if ranked[i].Posts != ranked[k].Posts {
			return ranked[i].Posts > ranked[k].Posts
		}
		return ranked[i].ListingID < ranked[k].ListingID
	})

	performance := models.Performance{TotalListings: len(ranked)}
	if len(ranked) > 0 {
		performance.AverageSuccessRate = rateSum / float64(len(ranked))
	}
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	performance.TopPerformers = ranked
	return performance
}

// BuildTrends groups attempts into ISO weeks and computes week-over-week
// growth. A week following an empty week yields no growth point.
func BuildTrends(attempts []models.PostingAttempt) models.Trends {
	trends := models.Trends{WeeklyStats: map[string]models.WeeklyStat{}}

	for _, attempt := range attempts {
		year, week := attempt.PostedAt.UTC().ISOWeek()
		key := fmt.Sprintf("%d-W%02d", year, week)
		stat := trends.WeeklyStats[key]
		stat.Posts++
		if attempt.Status == models.AttemptStatusSuccess {
			stat.Success++
		} else {
			stat.Failed++
		}
		trends.WeeklyStats[key] = stat
	}

	weeks := make([]string, 0, len(trends.WeeklyStats))
	for week := range trends.WeeklyStats {
		weeks = append(weeks, week)
	}
	sort.Strings(weeks)

	var rateSum float64
	for i := 1; i < len(weeks); i++ {
		prev := trends.WeeklyStats[weeks[i-1]]
		curr := trends.WeeklyStats[weeks[i]]
		if prev.Posts == 0 {
			continue
		}
		rate := float64(curr.Posts-prev.Posts) / float64(prev.Posts) * 100
		trends.GrowthRates = append(trends.GrowthRates, models.GrowthPoint{
			Week:       weeks[i],
			GrowthRate: rate,
			Posts:      curr.Posts,
		})
		rateSum += rate
	}
	if len(trends.GrowthRates) > 0 {
		trends.AverageGrowthRate = rateSum / float64(len(trends.GrowthRates))
	}
	return trends
}

// ExportCSV renders the attempt history in the export column order.
func ExportCSV(attempts []models.PostingAttempt) string {
	var sb strings.Builder
	sb.WriteString("id,listing_id,platform,status,posted_at,error_message\n")
	for _, attempt := range attempts {
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%s,%s,%s\n",
			attempt.ID,
			attempt.ListingID,
			attempt.Platform,
			attempt.Status,
			attempt.PostedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			csvEscape(attempt.ErrorMessage),
		))
	}
	return sb.String()
}

func csvEscape(value string) string {
	if strings.ContainsAny(value, ",\"\n") {
		return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
	}
	return value
}
