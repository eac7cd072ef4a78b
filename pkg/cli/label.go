package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/vetsight-ai/noshow/pkg/common/logger"
	"github.com/vetsight-ai/noshow/pkg/dataset"
	"github.com/vetsight-ai/noshow/pkg/label"
)

func newLabelCmd() *cobra.Command {
	var appointmentsPath, transactionsPath, outputPath string

	cmd := &cobra.Command{
		Use:   "label",
		Short: "Derive no-show labels from appointment and transaction exports",
		Run: func(cmd *cobra.Command, args []string) {
			appointmentsPath = fallback(appointmentsPath, cfg.AppointmentsFile)
			transactionsPath = fallback(transactionsPath, cfg.TransactionsFile)
			outputPath = fallback(outputPath, cfg.LabeledFile)

			appts, err := dataset.ReadAppointments(appointmentsPath)
			if err != nil {
				logger.Log.WithError(err).Fatal("failed to load appointments")
			}
			txns, err := dataset.ReadTransactions(transactionsPath)
			if err != nil {
				logger.Log.WithError(err).Fatal("failed to load transactions")
			}

			result := label.Derive(appts, txns)

			if err := ensureDir(outputPath); err != nil {
				logger.Log.WithError(err).Fatal("failed to create output directory")
			}
			if err := dataset.WriteLabeled(outputPath, result.Rows); err != nil {
				logger.Log.WithError(err).Fatal("failed to write labeled table")
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Metric", "Value"})
			t.AppendRow(table.Row{"Appointments in", len(appts)})
			t.AppendRow(table.Row{"Labeled rows", len(result.Rows)})
			t.AppendRow(table.Row{"Missing patient id", result.MissingPatientID})
			t.AppendRow(table.Row{"No-show rate", fmt.Sprintf("%.1f%%", result.NoShowRate()*100)})
			t.AppendRow(table.Row{"Output", outputPath})
			t.Render()
		},
	}

	cmd.Flags().StringVar(&appointmentsPath, "appointments", "", "appointment CSV export")
	cmd.Flags().StringVar(&transactionsPath, "transactions", "", "transaction CSV export")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "labeled table destination")
	return cmd
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
