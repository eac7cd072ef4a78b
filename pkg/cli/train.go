package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/vetsight-ai/noshow/pkg/common/logger"
	"github.com/vetsight-ai/noshow/pkg/dataset"
	"github.com/vetsight-ai/noshow/pkg/training"
)

func newTrainCmd() *cobra.Command {
	var (
		inputPath    string
		artifactPath string
		epochs       int
		learningRate float64
		holdout      float64
		seed         int64
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Fit the no-show model and write the artifact bundle",
		Run: func(cmd *cobra.Command, args []string) {
			inputPath = fallback(inputPath, cfg.FeaturesFile)
			artifactPath = fallback(artifactPath, cfg.ArtifactPath)
			if epochs == 0 {
				epochs = cfg.TrainEpochs
			}
			if learningRate == 0 {
				learningRate = cfg.TrainLearningRate
			}
			if holdout == 0 {
				holdout = cfg.TrainHoldout
			}
			if seed == 0 {
				seed = cfg.TrainSeed
			}

			rows, err := dataset.ReadFeatures(inputPath)
			if err != nil {
				logger.Log.WithError(err).Fatal("failed to load feature table")
			}

			result, err := training.Fit(rows, training.Options{
				Epochs:       epochs,
				LearningRate: learningRate,
				Holdout:      holdout,
				Seed:         seed,
			})
			if err != nil {
				logger.Log.WithError(err).Fatal("training failed")
			}

			if err := ensureDir(artifactPath); err != nil {
				logger.Log.WithError(err).Fatal("failed to create artifact directory")
			}
			if err := result.Bundle.Save(artifactPath); err != nil {
				logger.Log.WithError(err).Fatal("failed to write artifact bundle")
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Metric", "Value"})
			t.AppendRow(table.Row{"Run id", result.Bundle.RunID})
			t.AppendRow(table.Row{"Samples", result.Bundle.Metrics.Samples})
			t.AppendRow(table.Row{"Positives (no-shows)", result.Bundle.Metrics.Positives})
			t.AppendRow(table.Row{"Feature columns", len(result.Bundle.Columns)})
			t.AppendRow(table.Row{"Train accuracy", fmt.Sprintf("%.4f", result.Train.Accuracy)})
			t.AppendRow(table.Row{"Holdout accuracy", fmt.Sprintf("%.4f", result.Holdout.Accuracy)})
			t.AppendRow(table.Row{"Holdout loss", fmt.Sprintf("%.4f", result.Holdout.Loss)})
			t.AppendRow(table.Row{"Artifact", artifactPath})
			t.Render()
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "feature table produced by the features stage")
	cmd.Flags().StringVarP(&artifactPath, "output", "o", "", "artifact bundle destination")
	cmd.Flags().IntVar(&epochs, "epochs", 0, "gradient descent epochs")
	cmd.Flags().Float64Var(&learningRate, "learning-rate", 0, "gradient descent learning rate")
	cmd.Flags().Float64Var(&holdout, "holdout", 0, "evaluation holdout fraction")
	cmd.Flags().Int64Var(&seed, "seed", 0, "shuffle seed for the holdout split")
	return cmd
}
