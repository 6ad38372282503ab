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

	"docqa/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the question answering HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(os.Stdout)
		if err != nil {
			return err
		}
		srv := api.NewServer(a.router, a.holder, a.log, api.Options{
			RateLimitRPS:   a.cfg.Server.RateLimitRPS,
			RateLimitBurst: a.cfg.Server.RateLimitBurst,
		})
		httpServer := &http.Server{
			Addr:         a.cfg.Server.Addr,
			Handler:      srv,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: a.cfg.GeneratorTimeout() + 10*time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Graceful shutdown.
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh
			a.log.Info("shutting down...")

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				a.log.Error("shutdown", "error", err)
			}
		}()

		a.log.Info("starting docqa", "addr", a.cfg.Server.Addr, "chunks", a.holder.Current().Len())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
