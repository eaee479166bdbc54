package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/heungsikyu/AirBnB-marketing/pkg/common/logger"
	"github.com/heungsikyu/AirBnB-marketing/pkg/common/models"
)

// Sink persists generated reports.
type Sink interface {
	WriteDaily(report models.DailyReport) error
	WriteMonthly(report models.MonthlyReport) error
}

// FileSink writes reports as timestamped JSON files under one directory.
type FileSink struct {
	dir string
}

func NewFileSink(dir string) *FileSink {
	if dir == "" {
		dir = "reports"
	}
	return &FileSink{dir: dir}
}

func (s *FileSink) WriteDaily(report models.DailyReport) error {
	name := fmt.Sprintf("analytics_report_%s.json", report.GeneratedAt.Format("20060102_150405"))
	return s.write(name, report)
}

func (s *FileSink) WriteMonthly(report models.MonthlyReport) error {
	name := fmt.Sprintf("monthly_report_%s.json", report.GeneratedAt.Format("200601"))
	return s.write(name, report)
}

func (s *FileSink) write(name string, report interface{}) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating reports directory: %w", err)
	}
	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	logger.WithField("path", path).Info("Report written")
	return nil
}

// Reporter generates the scheduled daily and monthly reports.
type Reporter struct {
	service *Service
	sink    Sink
}

func NewReporter(service *Service, sink Sink) *Reporter {
	return &Reporter{service: service, sink: sink}
}

// RunDailyReport covers the last 7 days.
func (r *Reporter) RunDailyReport(ctx context.Context) error {
	overview, err := r.service.Overview(ctx, 7)
	if err != nil {
		return fmt.Errorf("building daily overview: %w", err)
	}
	performance, err := r.service.Performance(ctx, 7, 5)
	if err != nil {
		return fmt.Errorf("building daily performance: %w", err)
	}

	report := models.DailyReport{
		GeneratedAt: time.Now().UTC(),
		PeriodDays:  7,
		Overview:    overview,
		TopListings: performance.TopPerformers,
	}
	return r.sink.WriteDaily(report)
}

// RunMonthlyReport covers the last 30 days and attaches recommendations.
func (r *Reporter) RunMonthlyReport(ctx context.Context) error {
	overview, err := r.service.Overview(ctx, 30)
	if err != nil {
		return fmt.Errorf("building monthly overview: %w", err)
	}
	trends, err := r.service.Trends(ctx, 30)
	if err != nil {
		return fmt.Errorf("building monthly trends: %w", err)
	}

	report := models.MonthlyReport{
		GeneratedAt:     time.Now().UTC(),
		PeriodDays:      30,
		Overview:        overview,
		Trends:          trends,
		Recommendations: Recommendations(overview.PlatformStats),
	}
	return r.sink.WriteMonthly(report)
}

// Recommendations flags platforms whose conversion rate falls below 5% or
// clears 15%. When every platform sits in between, generic advice is
// returned instead of an empty list.
func Recommendations(platformStats map[string]models.PlatformStat) []string {
	var recommendations []string
	for _, platform := range sortedPlatforms(platformStats) {
		stats := platformStats[platform]
		if stats.Posts == 0 {
			continue
		}
		rate := 0.0
		if stats.Clicks > 0 {
			rate = float64(stats.Conversions) / float64(stats.Clicks) * 100
		}
		if rate < 5 {
			recommendations = append(recommendations,
				fmt.Sprintf("%s: conversion rate is low, consider improving content quality", platform))
		} else if rate > 15 {
			recommendations = append(recommendations,
				fmt.Sprintf("%s: conversion rate is strong, consider posting more content", platform))
		}
	}
	if len(recommendations) == 0 {
		recommendations = append(recommendations,
			"performance is balanced across platforms",
			"try varying content formats",
			"revisit the hashtag strategy",
		)
	}
	return recommendations
}

func sortedPlatforms(platformStats map[string]models.PlatformStat) []string {
	platforms := make([]string, 0, len(platformStats))
	for platform := range platformStats {
		platforms = append(platforms, platform)
	}
	sort.Strings(platforms)
	return platforms
}
