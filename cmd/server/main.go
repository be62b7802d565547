package main

import (
	"context"
	"errors"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/evote/internal/adapters/handler/http"
	"github.com/vncsmyrnk/evote/internal/bootstrap"
	"github.com/vncsmyrnk/evote/internal/config"
	"github.com/vncsmyrnk/evote/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}
	if err := cfg.Ledger.RequireSigner(); err != nil {
		logrus.Fatal(err)
	}

	log, err := logging.New(logging.Options{Level: cfg.LogLevel, SentryDSN: cfg.SentryDSN})
	if err != nil {
		logrus.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to start")
	}
	defer app.Close()

	handler := http.NewHandler(log, http.Handlers{
		Vote:       http.NewVoteHandler(app.Votes),
		Election:   http.NewElectionHandler(app.Tally, app.Votes),
		Enrollment: http.NewEnrollmentHandler(app.Enrollment),
		TenantAuth: http.NewTenantAuth([]byte(cfg.TenantTokenSecret)),
	})
	server := &stdhttp.Server{Addr: cfg.HTTPAddr, Handler: handler}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown failed")
	}
}
