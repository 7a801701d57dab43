package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/d60-Lab/topic-scheduler/config"
	"github.com/d60-Lab/topic-scheduler/internal/api"
	"github.com/d60-Lab/topic-scheduler/internal/api/handler"
	"github.com/d60-Lab/topic-scheduler/internal/model"
	"github.com/d60-Lab/topic-scheduler/internal/notify"
	"github.com/d60-Lab/topic-scheduler/internal/push"
	"github.com/d60-Lab/topic-scheduler/internal/repository"
	"github.com/d60-Lab/topic-scheduler/internal/service"
	"github.com/d60-Lab/topic-scheduler/internal/telemetry"
	"github.com/d60-Lab/topic-scheduler/pkg/database"
	"github.com/d60-Lab/topic-scheduler/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger.Init(cfg.Log.Level)
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg)
	if err != nil {
		logger.Fatal("init tracing", zap.Error(err))
	}

	rdb, err := database.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Fatal("init redis", zap.Error(err))
	}

	var journal repository.JournalRepository
	if db, err := database.InitJournalDB(cfg); err != nil {
		logger.Fatal("init journal db", zap.Error(err))
	} else if db != nil {
		if err := db.AutoMigrate(&model.Promotion{}); err != nil {
			logger.Fatal("migrate journal db", zap.Error(err))
		}
		journal = repository.NewJournalRepository(db)
	}

	sets := repository.NewSortedSetRepository(rdb)
	topics := repository.NewTopicRepository(rdb)
	posts := repository.NewPostRepository(rdb)
	users := repository.NewUserRepository(rdb)
	notifications := repository.NewNotificationRepository(rdb)

	pusher := push.NewPusher(rdb, 0)
	stopPusher := pusher.Start(2)
	notifier := notify.NewNotifier(users, notifications)

	engine := service.NewScheduledTopics(sets, topics, posts, users, notifier, pusher, journal)
	trigger := service.NewTrigger(engine, cfg.Scheduler.Spec, func(err error) {
		if cfg.Sentry.DSN != "" {
			sentry.CaptureException(err)
		}
	})
	if cfg.Scheduler.Enabled {
		if err := trigger.Start(); err != nil {
			logger.Fatal("start scheduler", zap.Error(err))
		}
	}

	srv := api.NewServer(cfg, handler.NewHandler(engine, trigger, sets, journal, rdb))
	go func() {
		logger.Info("ops api listening", zap.String("addr", cfg.API.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ops api", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	trigger.Stop()
	_ = srv.Shutdown(shutdownCtx)
	_ = stopPusher(shutdownCtx)
	_ = shutdownTracer(shutdownCtx)
	_ = rdb.Close()
}
