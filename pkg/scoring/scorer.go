package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/vetsight-ai/noshow/pkg/artifact"
	"github.com/vetsight-ai/noshow/pkg/dataset"
	"github.com/vetsight-ai/noshow/pkg/ml/linear"
	"github.com/vetsight-ai/noshow/pkg/schema"
)

// Risk tiers for outreach prioritization.
const (
	TierHigh   = "High Risk"
	TierMedium = "Medium Risk"
	TierLow    = "Low Risk"
)

// Risk factor annotations. Advisory only; the model never sees them.
const (
	FactorHistory  = "History of No-Shows"
	FactorFarAhead = "Booked Far in Advance"
	FactorType     = "High-Risk Appointment Type"
)

// Suggested outreach actions per tier.
const (
	ActionCall     = "Call to Confirm"
	ActionReminder = "Send Reminder"
	ActionNone     = "None"
)

// Appointment types with elevated historical no-show rates.
var highRiskTypes = map[string]bool{
	"Boarding": true,
	"Grooming": true,
}

// Scorer applies a fitted artifact bundle to feature rows. The bundle is
// injected, immutable, and safe to share across concurrent callers.
type Scorer struct {
	bundle *artifact.Bundle
}

func NewScorer(bundle *artifact.Bundle) *Scorer {
	return &Scorer{bundle: bundle}
}

// Probability encodes, aligns, and scales one feature row, then runs the
// model. This is the single code path shared by training-time validation
// and inference, so the reconstruction cannot drift.
func (s *Scorer) Probability(row dataset.FeatureRow) (float64, error) {
	vector := schema.Align(schema.Encode(row), s.bundle.Columns)
	if err := s.bundle.Scaler.Transform(vector, s.bundle.Columns); err != nil {
		return 0, fmt.Errorf("scale features: %w", err)
	}
	return linear.Predict(s.bundle.Model, vector), nil
}

// Tier maps a no-show probability to an outreach tier.
func Tier(probability float64) string {
	switch {
	case probability > 0.6:
		return TierHigh
	case probability >= 0.3:
		return TierMedium
	default:
		return TierLow
	}
}

// Label is the binary decision used where no tiering is wanted, e.g. the
// single-appointment prediction response.
func Label(probability float64) string {
	if probability > 0.5 {
		return "No-Show"
	}
	return "Show"
}

// Action suggests the outreach step for a tier.
func Action(tier string) string {
	switch tier {
	case TierHigh:
		return ActionCall
	case TierMedium:
		return ActionReminder
	default:
		return ActionNone
	}
}

// RiskFactors lists the advisory flags that apply to a row, independent of
// its tier. Callers decide whether to surface them.
func RiskFactors(row dataset.FeatureRow) []string {
	var factors []string
	if row.PastNoShowRate != nil && *row.PastNoShowRate > 0.5 {
		factors = append(factors, FactorHistory)
	}
	if row.LeadTimeHours > 72 {
		factors = append(factors, FactorFarAhead)
	}
	if highRiskTypes[row.AppointmentType] {
		factors = append(factors, FactorType)
	}
	return factors
}

// DaySummary aggregates a day's scored appointments for the dashboard.
type DaySummary struct {
	TotalAppointments int     `json:"total_appointments"`
	PredictedNoShows  int     `json:"predicted_noshows"`
	NoShowRate        float64 `json:"noshow_rate"`
	TopRiskFactors    string  `json:"top_risk_factors"`
}

// ScoredAppointment is one row of the day view.
type ScoredAppointment struct {
	ID          string `json:"id"`
	PatientName string `json:"patient_name"`
	Time        string `json:"time"`
	Reason      string `json:"reason"`
	RiskFactors string `json:"risk_factors"`
	Prediction  string `json:"prediction"`
	Action      string `json:"action"`
}

// ScoreDay scores every appointment of a day and builds the summary.
// Risk factors are surfaced only for High Risk appointments; the top
// factor is the most frequent one across those, first-encountered winning
// ties. Zero rows produce a zero summary, not an error.
func (s *Scorer) ScoreDay(rows []dataset.FeatureRow) (DaySummary, []ScoredAppointment, error) {
	scored := make([]ScoredAppointment, 0, len(rows))

	var highRisk int
	factorCounts := make(map[string]int)
	var factorOrder []string

	for _, row := range rows {
		probability, err := s.Probability(row)
		if err != nil {
			return DaySummary{}, nil, err
		}
		tier := Tier(probability)

		displayFactors := "None"
		if tier == TierHigh {
			highRisk++
			factors := RiskFactors(row)
			for _, factor := range factors {
				if _, seen := factorCounts[factor]; !seen {
					factorOrder = append(factorOrder, factor)
				}
				factorCounts[factor]++
			}
			if len(factors) > 0 {
				displayFactors = strings.Join(factors, ", ")
			}
		}

		scored = append(scored, ScoredAppointment{
			ID:          row.ID,
			PatientName: "Patient " + row.PatientID,
			Time:        row.ScheduledAt.Format("15:04"),
			Reason:      row.AppointmentType,
			RiskFactors: displayFactors,
			Prediction:  tier,
			Action:      Action(tier),
		})
	}

	summary := DaySummary{
		TotalAppointments: len(rows),
		PredictedNoShows:  highRisk,
		TopRiskFactors:    topFactor(factorCounts, factorOrder),
	}
	if len(rows) > 0 {
		summary.NoShowRate = math.Round(float64(highRisk)/float64(len(rows))*1000) / 10
	}
	return summary, scored, nil
}

func topFactor(counts map[string]int, order []string) string {
	top := "None"
	best := 0
	for _, factor := range order {
		if counts[factor] > best {
			best = counts[factor]
			top = factor
		}
	}
	return top
}
