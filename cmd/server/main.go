package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/rscdev/sixmans/internal/config"
	"github.com/rscdev/sixmans/internal/coordinator"
	"github.com/rscdev/sixmans/internal/game"
	"github.com/rscdev/sixmans/internal/store"
	"github.com/rscdev/sixmans/internal/web"
)

func main() {
	// A .env file is optional; the environment always wins.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("parsing configuration")
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}
	log := logrus.WithField("component", "server")

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		log.WithError(err).Fatal("creating data directory")
	}
	db, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		log.WithError(err).Fatal("initializing database")
	}
	defer db.Close()

	coord := coordinator.New(coordinator.Config{
		QueueIdleTimeout: cfg.QueueIdleTimeout,
		SelectionTimeout: cfg.SelectionTimeout,
		PickTimeout:      cfg.PickTimeout,
		ReportTimeout:    cfg.ReportTimeout,
		CancelTimeout:    cfg.CancelTimeout,
		TeardownDelay:    cfg.TeardownDelay,
	}, db, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := coord.LoadState(ctx); err != nil {
		log.WithError(err).Fatal("loading persisted state")
	}
	go coord.Run(ctx)

	seedDefaultQueue(coord, cfg, log)

	server := web.NewServer(coord)
	server.StartSSE(coord.Events())

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server,
	}

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop

		log.Info("shutting down")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("HTTP server shutdown")
		}
	}()

	log.WithField("port", cfg.Port).Info("server running")
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.WithError(err).Fatal("HTTP server error")
	}
	log.Info("server stopped")
}

// seedDefaultQueue creates the configured default queue on a fresh
// database so the server is usable out of the box.
func seedDefaultQueue(coord *coordinator.Coordinator, cfg config.Config, log *logrus.Entry) {
	if len(coord.GetState().Queues) > 0 {
		return
	}
	resp := make(chan coordinator.CreateQueueReply, 1)
	coord.Send(coordinator.CreateQueue{
		Name:     cfg.DefaultQueueName,
		Capacity: cfg.DefaultQueueCapacity,
		Points: game.PointSchedule{
			PerPlay: cfg.DefaultPointsPerPlay,
			PerWin:  cfg.DefaultPointsPerWin,
		},
		Response: resp,
	})
	if reply := <-resp; reply.Err != nil {
		log.WithError(reply.Err).Warn("seeding default queue")
	} else {
		log.WithField("queue", cfg.DefaultQueueName).Info("created default queue")
	}
}
