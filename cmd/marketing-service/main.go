package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/heungsikyu/AirBnB-marketing/pkg/common/config"
	"github.com/heungsikyu/AirBnB-marketing/pkg/common/database"
	"github.com/heungsikyu/AirBnB-marketing/pkg/common/kafka"
	"github.com/heungsikyu/AirBnB-marketing/pkg/common/logger"
	"github.com/heungsikyu/AirBnB-marketing/pkg/dashboard"
	"github.com/heungsikyu/AirBnB-marketing/pkg/orchestrator"
	"github.com/heungsikyu/AirBnB-marketing/pkg/store"
)

func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to database")
	}
	defer database.Close(db)

	st := store.New(db)
	if err := st.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate marketing tables")
	}

	redisClient := database.NewRedis(cfg)

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.PostingEventsTopic)
	defer producer.Close()

	orch, err := orchestrator.New(cfg, st, redisClient, producer)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to build orchestrator")
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	dashboard.NewHandler(st, orch, cfg.EnabledPlatforms()).Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orch.Start(ctx)

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.EngagementTopic, cfg.KafkaGroupID)
	defer consumer.Close()
	go func() {
		if err := consumer.Consume(ctx, orch.Engagement().HandleEvent); err != nil && ctx.Err() == nil {
			logger.Log.WithError(err).Error("engagement consumer stopped")
		}
	}()

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Marketing Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Marketing Service...")
	cancel()
	orch.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	logger.Log.Info("Marketing Service stopped")
}
