package cli

import (
	"fmt"
	"math"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/vetsight-ai/noshow/pkg/artifact"
	"github.com/vetsight-ai/noshow/pkg/common/logger"
	"github.com/vetsight-ai/noshow/pkg/scoring"
	"github.com/vetsight-ai/noshow/pkg/serving"
)

func newPredictCmd() *cobra.Command {
	var (
		artifactPath string
		ratesPath    string
		req          serving.PredictRequest
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Score a single future appointment",
		Run: func(cmd *cobra.Command, args []string) {
			artifactPath = fallback(artifactPath, cfg.ArtifactPath)
			ratesPath = fallback(ratesPath, cfg.BaselineRatesFile)

			bundle, err := artifact.Load(artifactPath)
			if err != nil {
				logger.Log.WithError(err).Fatal("failed to load artifact bundle")
			}
			rates, err := serving.LoadBaselineRates(ratesPath)
			if err != nil {
				logger.Log.WithError(err).Fatal("failed to load baseline rates")
			}

			scheduled, err := time.Parse("2006-01-02 15:04", req.AppointmentDate+" "+req.AppointmentTime)
			if err != nil {
				logger.Log.WithError(err).Fatal("invalid appointment date/time")
			}

			row := serving.ReconstructFeatures(req, scheduled, time.Now(), rates)
			probability, err := scoring.NewScorer(bundle).Probability(row)
			if err != nil {
				logger.Log.WithError(err).Fatal("prediction failed")
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Field", "Value"})
			t.AppendRow(table.Row{"Scheduled", scheduled.Format("2006-01-02 15:04")})
			t.AppendRow(table.Row{"Prediction", scoring.Label(probability)})
			t.AppendRow(table.Row{"No-show probability", fmt.Sprintf("%.0f%%", math.Round(probability*100))})
			t.AppendRow(table.Row{"Risk tier", scoring.Tier(probability)})
			t.Render()
		},
	}

	cmd.Flags().StringVar(&artifactPath, "artifact", "", "artifact bundle path")
	cmd.Flags().StringVar(&ratesPath, "rates", "", "baseline rates YAML path")
	cmd.Flags().StringVar(&req.AppointmentDate, "date", "", "appointment date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.AppointmentTime, "time", "", "appointment time (HH:MM)")
	cmd.Flags().Float64Var(&req.PastNoShowRate, "past-noshow-rate", 0, "patient's historical no-show rate in percent")
	cmd.Flags().Float64Var(&req.DaysSinceLastAppt, "days-since-last", 0, "days since the patient's last visit")
	cmd.Flags().Float64Var(&req.DurationMin, "duration", 15, "appointment duration in minutes")
	cmd.Flags().StringVar(&req.AppointmentType, "type", "Examination", "appointment type")
	cmd.Flags().StringVar(&req.Provider, "provider", "", "provider name for the baseline lookup")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("time")
	return cmd
}
