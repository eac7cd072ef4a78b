package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/vetsight-ai/noshow/pkg/common/logger"
	"github.com/vetsight-ai/noshow/pkg/dataset"
	"github.com/vetsight-ai/noshow/pkg/features"
)

func newFeaturesCmd() *cobra.Command {
	var inputPath, outputPath string

	cmd := &cobra.Command{
		Use:   "features",
		Short: "Engineer model features from the labeled appointment table",
		Run: func(cmd *cobra.Command, args []string) {
			inputPath = fallback(inputPath, cfg.LabeledFile)
			outputPath = fallback(outputPath, cfg.FeaturesFile)

			labeled, err := dataset.ReadLabeled(inputPath)
			if err != nil {
				logger.Log.WithError(err).Fatal("failed to load labeled table")
			}

			result := features.Engineer(labeled)

			if err := ensureDir(outputPath); err != nil {
				logger.Log.WithError(err).Fatal("failed to create output directory")
			}
			if err := dataset.WriteFeatures(outputPath, result.Rows); err != nil {
				logger.Log.WithError(err).Fatal("failed to write feature table")
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Metric", "Value"})
			t.AppendRow(table.Row{"Labeled rows in", len(labeled)})
			t.AppendRow(table.Row{"Feature rows", len(result.Rows)})
			t.AppendRow(table.Row{"Dropped (bad timestamps)", result.DroppedNoTime})
			t.AppendRow(table.Row{"Output", outputPath})
			t.Render()
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "labeled table produced by the label stage")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "feature table destination")
	return cmd
}
