package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/heungsikyu/AirBnB-marketing/pkg/analytics"
	"github.com/heungsikyu/AirBnB-marketing/pkg/common/config"
	"github.com/heungsikyu/AirBnB-marketing/pkg/common/kafka"
	"github.com/heungsikyu/AirBnB-marketing/pkg/common/logger"
	"github.com/heungsikyu/AirBnB-marketing/pkg/common/models"
	"github.com/heungsikyu/AirBnB-marketing/pkg/content"
	"github.com/heungsikyu/AirBnB-marketing/pkg/ingestion"
	"github.com/heungsikyu/AirBnB-marketing/pkg/publisher"
	"github.com/heungsikyu/AirBnB-marketing/pkg/scheduler"
	"github.com/heungsikyu/AirBnB-marketing/pkg/store"
)

// Orchestrator wires the pipeline stages together and drives them through
// the scheduler: collect listings, generate content, publish it, report on
// the results, and clean up old data.
type Orchestrator struct {
	cfg         *config.Config
	store       *store.Store
	scheduler   *scheduler.Scheduler
	ingestion   *ingestion.Service
	pipeline    *content.Pipeline
	coordinator *publisher.Coordinator
	analytics   *analytics.Service
	reporter    *analytics.Reporter
	engagement  *analytics.EngagementHandler
	cache       *analytics.Cache
	startedAt   time.Time
}

func New(cfg *config.Config, st *store.Store, redisClient *redis.Client, producer *kafka.Producer) (*Orchestrator, error) {
	cities, err := ingestion.LoadCities(cfg.CityCatalogPath)
	if err != nil {
		logger.WithError(err).Warn("city catalog unreadable, using built-in cities")
	}
	if len(cities.Cities) == 0 {
		cities = ingestion.DefaultCities()
	}
	collector := ingestion.NewCatalogCollector(cities, 5)
	ingestionSvc := ingestion.NewService(collector, st, producer, cfg.CollectionLimit)

	templates, err := content.LoadTemplates(cfg.TemplateCatalogPath)
	if err != nil {
		logger.WithError(err).Warn("template catalog unreadable, using built-in templates")
	}
	platforms := cfg.EnabledPlatforms()
	if len(platforms) == 0 {
		logger.Log.Warn("no platform credentials configured, publishing is disabled")
	}
	pipeline := content.NewPipeline(st, content.NewTemplateSynthesizer(templates),
		platforms, cfg.GenerationLimit, cfg.SynthesizeTimeout)

	registry := publisher.NewRegistry(cfg)
	coordinator := publisher.NewCoordinator(st, registry, producer,
		cfg.PostingBatchSize, cfg.MaxPublishAttempts, cfg.PublishTimeout)

	cache := analytics.NewCache(redisClient, cfg.OverviewCacheTTL)
	analyticsSvc := analytics.NewService(st, cache, cfg.AnalyticsWindowDays)
	reporter := analytics.NewReporter(analyticsSvc, analytics.NewFileSink(cfg.ReportsDir))

	o := &Orchestrator{
		cfg:         cfg,
		store:       st,
		scheduler:   scheduler.New(scheduler.SystemClock(), cfg.SchedulerTick),
		ingestion:   ingestionSvc,
		pipeline:    pipeline,
		coordinator: coordinator,
		analytics:   analyticsSvc,
		reporter:    reporter,
		engagement:  analytics.NewEngagementHandler(st, cache),
		cache:       cache,
	}
	if err := o.registerJobs(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Orchestrator) registerJobs() error {
	jobs := []struct {
		name    string
		trigger scheduler.Trigger
		run     scheduler.JobFunc
	}{
		{"collect-listings", scheduler.DailyAt(6, 0), o.runCollection},
		{"generate-content", scheduler.DailyAt(7, 0), o.runGeneration},
		{"daily-report", scheduler.DailyAt(8, 0), o.reporter.RunDailyReport},
		{"cleanup", scheduler.WeeklyAt(time.Sunday, 2, 0), o.runCleanup},
		{"monthly-report", scheduler.MonthlyAt(1, 3, 0), o.reporter.RunMonthlyReport},
	}
	for _, job := range jobs {
		if err := o.scheduler.Register(job.name, job.trigger, job.run); err != nil {
			return err
		}
	}

	for _, slot := range o.cfg.PostingSchedule {
		trigger, err := scheduler.ParseDailySlot(slot)
		if err != nil {
			return fmt.Errorf("posting schedule: %w", err)
		}
		name := "posting-" + slot
		if err := o.scheduler.Register(name, trigger, o.runPostingCycle); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) runCollection(ctx context.Context) error {
	_, err := o.ingestion.RunDailyCollection(ctx)
	return err
}

func (o *Orchestrator) runGeneration(ctx context.Context) error {
	_, err := o.pipeline.RunDailyGeneration(ctx)
	return err
}

func (o *Orchestrator) runPostingCycle(ctx context.Context) error {
	report, err := o.coordinator.RunPostingCycle(ctx)
	if err != nil {
		return err
	}
	if report.Attempted > 0 {
		o.cache.Invalidate(ctx)
	}
	return nil
}

func (o *Orchestrator) runCleanup(ctx context.Context) error {
	attempts, listings, err := o.store.PurgeOlderThan(ctx, o.cfg.CleanupRetentionDays)
	if err != nil {
		return err
	}
	logger.WithFields(map[string]interface{}{
		"attempts_deleted":     attempts,
		"listings_deactivated": listings,
	}).Info("Cleanup complete")
	o.cache.Invalidate(ctx)
	return nil
}

// Start launches the scheduler loop.
func (o *Orchestrator) Start(ctx context.Context) {
	o.startedAt = time.Now().UTC()
	o.scheduler.Start(ctx)
}

// Stop halts the scheduler and waits for a running job to finish.
func (o *Orchestrator) Stop() {
	o.scheduler.Stop()
}

// TriggerPostingCycle runs one posting cycle outside the schedule, for the
// manual dashboard action.
func (o *Orchestrator) TriggerPostingCycle(ctx context.Context) (publisher.CycleReport, error) {
	report, err := o.coordinator.RunPostingCycle(ctx)
	if err == nil && report.Attempted > 0 {
		o.cache.Invalidate(ctx)
	}
	return report, err
}

func (o *Orchestrator) Analytics() *analytics.Service { return o.analytics }

func (o *Orchestrator) Engagement() *analytics.EngagementHandler { return o.engagement }

func (o *Orchestrator) Jobs() []models.JobStatus { return o.scheduler.Jobs() }

func (o *Orchestrator) StartedAt() time.Time { return o.startedAt }
