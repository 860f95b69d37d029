package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	flag "github.com/spf13/pflag"

	"github.com/chaos-io/bgeraser/config"
	"github.com/chaos-io/bgeraser/server"
	"github.com/chaos-io/bgeraser/session"
	nhttp "github.com/chaos-io/bgeraser/util/http"
)

func main() {
	cfg := config.Default()
	cfg.BindServerFlags(flag.CommandLine)
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config: ", err)
	}

	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		log.Fatal(err)
	}
	slog.SetDefault(logger)

	ctl := session.NewController(session.Options{
		Threshold: cfg.Threshold,
		MaxWidth:  cfg.MaxWidth,
		Workers:   cfg.Workers,
		TTL:       cfg.SessionTTL,

		// 按 URL 载入和直接上传用同一个上限
		MaxImageBytes: cfg.MaxUploadBytes,
	}, nhttp.NewHTTPClientWithTimeout(cfg.DownloadTimeout))

	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.SweepSpec, func() { ctl.Sweep() }); err != nil {
		log.Fatal("invalid sweep spec: ", err)
	}
	sweeper.Start()

	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = os.Stderr
	router := server.New(ctl, cfg.MaxUploadBytes).Router(gin.Logger(), gin.Recovery())

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("listening", "addr", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("shutting down")
	<-sweeper.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "err", err)
	}
}
