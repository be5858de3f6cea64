package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// serve starts the TCP and HTTP listeners and handles graceful shutdown
func (app *application) serve() error {
	app.Web = &http.Server{
		Addr:         app.Config.HTTPAddr,
		Handler:      app.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := app.TCP.Listen(); err != nil {
		return err
	}

	shutdownError := make(chan error)

	go func() {
		// Set up signal handling for graceful shutdown
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		// Wait for shutdown signal
		s := <-quit
		app.Logger.Info("Shutting down server", zap.String("signal", s.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		app.TCP.Shutdown()
		shutdownError <- app.Web.Shutdown(ctx)
	}()

	go func() {
		if err := app.TCP.Serve(); err != nil {
			app.Logger.Error("tcp serve error", zap.Error(err))
		}
	}()

	app.Logger.Info("Starting server",
		zap.String("tcp_address", app.TCP.Addr()),
		zap.String("http_address", app.Web.Addr))

	if err := app.Web.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	if err := <-shutdownError; err != nil {
		return err
	}

	app.Logger.Info("Server stopped gracefully")

	return nil
}
