package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"oddsengine/internal/buffer"
	"oddsengine/internal/config"
	cronrunner "oddsengine/internal/cron"
	"oddsengine/internal/db"
	"oddsengine/internal/detector"
	"oddsengine/internal/handler"
	"oddsengine/internal/livegame"
	"oddsengine/internal/logger"
	"oddsengine/internal/models"
	"oddsengine/internal/probability"
	"oddsengine/internal/publisher"
	gormrepository "oddsengine/internal/repository/gorm"
	"oddsengine/internal/risk"
	signalgen "oddsengine/internal/signal"
	"oddsengine/internal/stream"
)

func main() {
	cfgPath := os.Getenv("OE_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("OE_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)

	oddsBuffer := buffer.New(cfg.Buffer.GlobalCapacity, cfg.Buffer.MarketCapacity)
	lineDetector := detector.NewLineMovement(detector.LineMovementConfig{
		MoneylineThreshold: cfg.LineMovement.MoneylineThreshold,
		SpreadThreshold:    cfg.LineMovement.SpreadThreshold,
		TotalThreshold:     cfg.LineMovement.TotalThreshold,
		PublicThreshold:    cfg.LineMovement.PublicThreshold,
	})
	arbDetector := detector.NewArbitrage(detector.ArbitrageConfig{
		MinProfitPercent: cfg.Arbitrage.MinProfitPercent,
	})
	valueDetector := detector.NewValue(detector.ValueConfig{
		MinEdge:       cfg.Value.MinEdge,
		MaxEdge:       cfg.Value.MaxEdge,
		KellyFraction: cfg.Value.KellyFraction,
	})
	corrDetector := detector.NewCorrelation(detector.CorrelationConfig{
		MinCorrelation:  cfg.Correlation.MinCorrelation,
		MinObservations: cfg.Correlation.MinObservations,
	})

	riskMgr := risk.New(risk.Config{
		MaxStakeFraction: cfg.Risk.MaxStakeFraction,
		MaxPerMarket:     cfg.Risk.MaxPerMarket,
		MinConfidence:    cfg.Risk.MinConfidence,
		MaxSignalAge:     cfg.Risk.MaxSignalAge,
		StaleDataAction:  cfg.Risk.StaleDataAction,
	}, logger)

	generator := signalgen.NewGenerator(signalgen.Config{
		MaxActive:   cfg.Signals.MaxActive,
		MovementTTL: cfg.Signals.MovementTTL,
		ValueTTL:    cfg.Signals.ValueTTL,
	}, valueDetector, lineDetector, arbDetector, oddsBuffer, store, logger)
	generator.Risk = riskMgr

	streamEngine := stream.NewEngine(oddsBuffer, lineDetector, store, logger, cfg.Stream.SubscriberBuffer)
	defer streamEngine.Close()

	probHTTP := &http.Client{Timeout: cfg.Prediction.Timeout}
	probClient := probability.NewClient(probHTTP, cfg.Prediction.BaseURL)
	predictor := stream.NewPredictor(probClient, streamEngine, logger, cfg.Prediction.StdDevRatio)

	liveAnalyzer := livegame.NewAnalyzer(cfg.LiveGame.HistoryCapacity, logger)

	var signalPublisher *publisher.StreamPublisher
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		signalPublisher = publisher.NewStreamPublisher(redisClient, logger, cfg.Redis.Stream, 0)
		streamEngine.Subscribe(stream.ChannelSignals, func(ev stream.Event) {
			sig, ok := ev.Data.(models.TradingSignal)
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := signalPublisher.PublishSignal(ctx, sig); err != nil {
				logger.Warn("redis publish failed", zap.Error(err))
			}
			cancel()
		})
	}

	generator.OnSignal = func(sig models.TradingSignal) {
		streamEngine.Publish(stream.ChannelSignals, sig)
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(router)
	oddsHandler := &handler.OddsHandler{Engine: streamEngine, Buffer: oddsBuffer}
	oddsHandler.Register(router)
	analysisHandler := &handler.AnalysisHandler{Value: valueDetector, Arb: arbDetector, Corr: corrDetector}
	analysisHandler.Register(router)
	signalHandler := &handler.SignalHandler{Repo: store, Generator: generator}
	signalHandler.Register(router)
	predictionHandler := &handler.PredictionHandler{Predictor: predictor, Timeout: cfg.Prediction.Timeout}
	predictionHandler.Register(router)
	liveHandler := &handler.LiveHandler{Analyzer: liveAnalyzer}
	liveHandler.Register(router)
	feedHandler := &handler.FeedHandler{Repo: store}
	feedHandler.Register(router)
	wsHandler := &handler.WSHandler{Engine: streamEngine, Logger: logger}
	wsHandler.Register(router)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Cron.Enabled {
		cronRunner := cronrunner.New(logger, ctx)

		_, err = cronRunner.Add(cfg.Cron.SignalCleanup, func(ctx context.Context) {
			n, err := store.DeleteExpiredSignals(ctx, time.Now().UTC())
			if err != nil {
				logger.Warn("delete expired signals failed", zap.Error(err))
				return
			}
			if n > 0 {
				logger.Info("deleted expired signals", zap.Int64("count", n))
			}
		})
		if err != nil {
			logger.Warn("cron register signal cleanup failed", zap.Error(err))
		}

		_, err = cronRunner.Add(cfg.Cron.FeedHealthFlush, func(ctx context.Context) {
			streamEngine.FlushFeedHealth(ctx)
		})
		if err != nil {
			logger.Warn("cron register feed health flush failed", zap.Error(err))
		}

		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
