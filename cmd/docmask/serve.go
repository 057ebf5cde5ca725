package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docmask/internal/api"
	"github.com/dgallion1/docmask/internal/cms"
	"github.com/dgallion1/docmask/internal/pipeline"
	"github.com/dgallion1/docmask/internal/wordfreq"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var nounsFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(os.Stdout)
			if err != nil {
				return err
			}
			if err := cfg.ValidateServe(); err != nil {
				log.Error("invalid configuration", "error", err)
				return err
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			// Initialize clients.
			client := cms.NewClient(cfg.CMSURL(), cfg.MicroCMSAPIKey, cfg.CMSTimeout)
			oracle, err := loadOracle(nounsFile, cfg, log)
			if err != nil {
				return err
			}
			hist := wordfreq.NewAggregator()

			// Initialize pipeline.
			orch := pipeline.NewOrchestrator(cfg, client, oracle, hist, log)
			orch.Start(ctx)

			srv := api.NewServer(orch, client, client.Stats, oracle, hist, log, cfg)
			httpServer := &http.Server{
				Addr:         ":" + cfg.Port,
				Handler:      srv,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 120 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			// Graceful shutdown.
			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				<-sigCh
				log.Info("shutting down...")

				orch.Stop()

				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutdownCancel()
				httpServer.Shutdown(shutdownCtx)

				client.Close()
			}()

			log.Info("starting docmask", "port", cfg.Port, "workers", cfg.WorkerCount)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("server error", "error", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&nounsFile, "nouns-file", "", "Newline-separated noun list used instead of the tagger")
	return cmd
}
