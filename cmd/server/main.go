package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/mahirjain10/image-upload-lambda/internal/app"
	"github.com/mahirjain10/image-upload-lambda/internal/router"
	"github.com/rs/zerolog/log"
)

// base64 inflates by 4/3; leave room for the JSON envelope.
func maxBodyBytes(maxImageBytes int) int64 {
	return int64(maxImageBytes)*4/3 + 64<<10
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	srv := &http.Server{
		Addr:              ":" + application.Config.ServerPort,
		Handler:           router.New(application.Handler, maxBodyBytes(application.Config.MaxImageBytes), application.Logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		application.Logger.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			application.Logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	application.Logger.Info().Msg("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		application.Logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
