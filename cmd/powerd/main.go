package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"power-status-backend/config"
	"power-status-backend/internal/api"
	"power-status-backend/internal/db"
	"power-status-backend/internal/logger"
	"power-status-backend/internal/metrics"
	"power-status-backend/internal/model"
	"power-status-backend/internal/monitor"
	"power-status-backend/internal/notification"
	"power-status-backend/internal/probe"
	"power-status-backend/internal/schedule"
	"power-status-backend/internal/store"
	"power-status-backend/internal/stream"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration from %s: %v\n", configPath, err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level)
	defer log.Sync()
	log.Info("configuration loaded", "path", configPath)

	gormDB, err := db.Init(&cfg.Database, log)
	if err != nil {
		log.Fatal("failed to initialize database", "error", err)
	}
	appStore := store.NewGormStore(gormDB)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	payloads := notification.NewPayloadBuilder(appStore)
	emitter := notification.NewEmitter(cfg.WorkerPool.Size, cfg.WorkerPool.Buffer, log, m)

	var webpushOptions *webpush.Options
	if cfg.Push.Enabled {
		if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
			log.Fatal("push is enabled but VAPID keys are not configured")
		}
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		emitter.Subscribe(notification.NewWebPushNotifier(gormDB, payloads, webpushOptions, log))
	}

	if cfg.MQTT.Enabled {
		publisher, err := notification.NewPahoPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID)
		if err != nil {
			log.Fatal("failed to connect to MQTT broker", "broker", cfg.MQTT.Broker, "error", err)
		}
		defer publisher.Close()
		emitter.Subscribe(notification.NewMQTTNotifier(publisher, payloads, cfg.MQTT.TopicPrefix))
		log.Info("publishing changes over MQTT", "broker", cfg.MQTT.Broker)
	}

	hub := stream.NewHub(payloads, log)
	go hub.Run(ctx)
	emitter.Subscribe(hub)
	emitter.Start(ctx)

	var predictor api.SchedulePredictor
	if cfg.Schedule.Enabled {
		p := schedule.NewPredictor(schedule.NewHTTPSource(cfg.Schedule.URLTemplate), cfg.Schedule, log, m)
		go p.Run(ctx)
		predictor = p
	}

	if cfg.Monitor.Enabled {
		prober := probe.NewProber(map[model.CheckType]probe.Checker{
			model.CheckTypePing: &probe.PingChecker{Privileged: cfg.Monitor.PingPrivileged},
			model.CheckTypeHTTP: probe.NewHTTPChecker(),
		}, cfg.Monitor.AttemptTimeout, cfg.Monitor.RetryBackoff)

		monitorSvc := monitor.NewService(appStore, prober, emitter, cfg.Monitor.CheckSchedule, log, m)
		go func() {
			if err := monitorSvc.Run(ctx); err != nil {
				log.Fatal("availability monitor stopped", "error", err)
			}
		}()
	}

	handler := api.NewHandler(appStore, predictor, webpushOptions, hub, log)
	router := api.NewRouter(handler, cfg.Server, reg)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info("HTTP server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server ListenAndServe failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	log.Info("shutdown signal received, stopping services")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
		return
	}

	log.Info("server gracefully stopped")
}
