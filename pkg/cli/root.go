// Package cli wires the pipeline stages into the noshow command.
package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/vetsight-ai/noshow/pkg/common/config"
	"github.com/vetsight-ai/noshow/pkg/common/logger"
)

var cfg *config.Config

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "noshow",
		Short: "Veterinary appointment no-show prediction pipeline",
		Long: `noshow turns raw appointment and transaction exports into no-show
predictions. The stages mirror the batch pipeline:

  label      derive no-show labels from transaction evidence
  features   engineer the model's input features
  train      fit the model and write the artifact bundle
  predict    score a single future appointment from the command line
  serve      expose single and day-batch predictions over HTTP`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			logger.Init()
			cfg = config.Load()
		},
	}

	root.AddCommand(
		newLabelCmd(),
		newFeaturesCmd(),
		newTrainCmd(),
		newPredictCmd(),
		newServeCmd(),
	)
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// fallback substitutes the configured default when a path flag was left
// unset.
func fallback(flag, configured string) string {
	if flag != "" {
		return flag
	}
	return configured
}
