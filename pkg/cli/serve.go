package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vetsight-ai/noshow/pkg/artifact"
	"github.com/vetsight-ai/noshow/pkg/common/logger"
	"github.com/vetsight-ai/noshow/pkg/dataset"
	"github.com/vetsight-ai/noshow/pkg/serving"
)

func newServeCmd() *cobra.Command {
	var (
		artifactPath string
		featuresPath string
		ratesPath    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve predictions over HTTP",
		Run: func(cmd *cobra.Command, args []string) {
			artifactPath = fallback(artifactPath, cfg.ArtifactPath)
			featuresPath = fallback(featuresPath, cfg.FeaturesFile)
			ratesPath = fallback(ratesPath, cfg.BaselineRatesFile)

			// Artifacts and the feature table are loaded once here and
			// never mutated, so request handling needs no locking.
			bundle, err := artifact.Load(artifactPath)
			if err != nil {
				logger.Log.WithError(err).Fatal("failed to load artifact bundle")
			}
			features, err := dataset.ReadFeatures(featuresPath)
			if err != nil {
				logger.Log.WithError(err).Fatal("failed to load feature table")
			}
			rates, err := serving.LoadBaselineRates(ratesPath)
			if err != nil {
				logger.Log.WithError(err).Fatal("failed to load baseline rates")
			}

			service := serving.NewService(bundle, features, rates)
			server := &http.Server{
				Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
				Handler:      service.Routes(),
				ReadTimeout:  cfg.ReadTimeout,
				WriteTimeout: cfg.WriteTimeout,
			}

			go func() {
				logger.Log.WithFields(map[string]interface{}{
					"host":     cfg.ServerHost,
					"port":     cfg.ServerPort,
					"run_id":   bundle.RunID,
					"features": len(features),
				}).Info("no-show prediction service started")

				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Log.WithError(err).Fatal("failed to start server")
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			logger.Log.Info("shutting down prediction service...")

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				logger.Log.WithError(err).Error("server forced to shutdown")
			}

			logger.Log.Info("prediction service stopped")
		},
	}

	cmd.Flags().StringVar(&artifactPath, "artifact", "", "artifact bundle path")
	cmd.Flags().StringVar(&featuresPath, "features", "", "feature table for day-batch scoring")
	cmd.Flags().StringVar(&ratesPath, "rates", "", "baseline rates YAML path")
	return cmd
}
