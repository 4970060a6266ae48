package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MarxCha/poa-dashboard/internal/domain/speech"
	"github.com/MarxCha/poa-dashboard/internal/infrastructure/recognizer"
	"github.com/MarxCha/poa-dashboard/internal/interfaces/http/handler"
	"github.com/MarxCha/poa-dashboard/internal/interfaces/http/router"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the session API to the dashboard frontend",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadConfigAndLogger()
		if err != nil {
			return err
		}

		var (
			rec        speech.Recognizer = recognizer.Unsupported{}
			utterances handler.UtteranceSink
		)
		if cfg.Voice.Enabled {
			ch := recognizer.NewChannelRecognizer()
			rec, utterances = ch, ch
		}

		app, err := newApplication(cmd.Context(), cfg, log, rec)
		if err != nil {
			return err
		}
		defer app.close()

		log.Info("Starting POA session controller",
			zap.String("app", cfg.App.Name),
			zap.String("env", cfg.App.Env),
			zap.String("backend", app.client.BaseURL()),
			zap.String("store", cfg.Store.Driver),
		)

		// a backend that is down at startup is reported through the session
		if err := app.orchestrator.Start(cmd.Context()); err != nil {
			log.Warn("session started without data", zap.Error(err))
		}

		engineCfg := router.EngineConfig{
			Logger:      log,
			CORSOrigins: cfg.HTTP.CORSAllowOrigins,
			Health:      handler.Health(app.orchestrator),
			ReleaseMode: cfg.App.Env == "production",
		}
		if cfg.Metrics.Enabled {
			engineCfg.Metrics = app.metrics.Handler()
			engineCfg.MetricsPath = cfg.Metrics.Path
		}
		engine := router.NewEngine(engineCfg)
		router.NewRouter(engine).
			Register(handler.NewSessionHandler(app.orchestrator)).
			Register(handler.NewAuthHandler(app.orchestrator)).
			Register(handler.NewVoiceHandler(app.orchestrator, utterances)).
			Register(handler.NewDataHandler(app.orchestrator)).
			Register(handler.NewThemeHandler(app.orchestrator)).
			Setup()

		srv := &http.Server{
			Addr:         ":" + cfg.HTTP.Port,
			Handler:      engine,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("Server starting", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
		case err := <-errCh:
			return err
		}
		log.Info("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return err
		}
		log.Info("Server exited gracefully")
		return nil
	},
}
