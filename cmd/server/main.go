package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ocerny17-lgtm/kavarna/config"
	"github.com/ocerny17-lgtm/kavarna/internal/api"
	"github.com/ocerny17-lgtm/kavarna/internal/api/handler"
	"github.com/ocerny17-lgtm/kavarna/internal/metrics"
	"github.com/ocerny17-lgtm/kavarna/internal/repository"
	"github.com/ocerny17-lgtm/kavarna/internal/service"
	"github.com/ocerny17-lgtm/kavarna/pkg/database"
	"github.com/ocerny17-lgtm/kavarna/pkg/logger"
	"github.com/ocerny17-lgtm/kavarna/pkg/tracing"
)

// @title Kavarna Order Board API
// @version 1.0
// @description Shared café order board with multi-client synchronization

func must[T any](v T, err error) T { if err != nil { panic(err) }; return v }

func mustDo(err error) { if err != nil { panic(err) } }

func main() {
	cfg := must(config.Load())
	mustDo(logger.Init(cfg.Log.Level, cfg.Telemetry.SentryDSN))
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing := must(tracing.Init(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint))
	defer shutdownTracing(context.Background())

	db := must(database.InitDB(cfg))
	orderRepo := repository.NewGormOrderRepository(db)
	mustDo(orderRepo.(*repository.GormOrderRepository).InitSchema())
	defer orderRepo.Close()

	channel := buildChannel(cfg)
	m := metrics.NewRegistry()

	pusher := service.NewRemotePusher(channel, cfg.Sync.QueueSize, m)
	stopPush := pusher.Start(cfg.Sync.Workers)

	orders := service.NewOrderService(orderRepo, pusher, m)
	mustDo(orders.Restore(ctx))

	puller := service.NewRemotePuller(orders, channel, cfg.Sync.Interval, m)
	stopPull := puller.Start()

	auth := must(service.NewAuthService(cfg.Auth.Credentials, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL))
	legacy := must(repository.NewFileStore(cfg.Legacy.FilePath))

	h := handler.NewHandler(orders, auth, legacy, cfg.Auth.SessionCookie)
	router := api.NewRouter(cfg, h, auth, m)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: router}
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = stopPull(shutdownCtx)
	_ = stopPush(shutdownCtx)
}

// buildChannel 按配置选择远端通道；off 时纯本地运行
func buildChannel(cfg *config.Config) repository.RemoteChannel {
	switch cfg.Sync.Channel {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return repository.NewRedisChannel(client, cfg.Sync.Key)
	case "http":
		return repository.NewHTTPChannel(cfg.Sync.URL, 5*time.Second)
	default:
		logger.Warn("remote sync disabled, running on local state only")
		return repository.NopChannel{}
	}
}
