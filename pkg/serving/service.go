package serving

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/vetsight-ai/noshow/pkg/artifact"
	"github.com/vetsight-ai/noshow/pkg/common/logger"
	"github.com/vetsight-ai/noshow/pkg/dataset"
	"github.com/vetsight-ai/noshow/pkg/observability/metrics"
	"github.com/vetsight-ai/noshow/pkg/scoring"
)

// Service serves predictions from artifacts loaded once at startup. All
// state is read-only after construction, so concurrent requests need no
// coordination.
type Service struct {
	scorer   *scoring.Scorer
	features []dataset.FeatureRow
	rates    BaselineRates
	now      func() time.Time
}

func NewService(bundle *artifact.Bundle, features []dataset.FeatureRow, rates BaselineRates) *Service {
	return &Service{
		scorer:   scoring.NewScorer(bundle),
		features: features,
		rates:    rates,
		now:      time.Now,
	}
}

func (s *Service) Routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware)
	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w)
	}).Methods("GET")
	router.HandleFunc("/api/v1/predict", s.handlePredict).Methods("POST")
	router.HandleFunc("/api/v1/appointments", s.handleAppointmentsByDate).Methods("GET")
	return router
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// The dashboard is a plain browser page; allow it from anywhere.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PredictRequest is the compact record a client submits for one future
// appointment. PastNoShowRate arrives as a percentage (0-100).
type PredictRequest struct {
	AppointmentDate   string  `json:"appointment_date"`
	AppointmentTime   string  `json:"appointment_time"`
	PastNoShowRate    float64 `json:"past_noshow_rate"`
	DaysSinceLastAppt float64 `json:"days_since_last_appt"`
	DurationMin       float64 `json:"duration_min"`
	AppointmentType   string  `json:"appointment_type"`
	Provider          string  `json:"doctor"`
}

type PredictResponse struct {
	Prediction        string  `json:"prediction"`
	NoShowProbability float64 `json:"no_show_probability"`
}

func (s *Service) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.ObserveRejection()
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	scheduled, err := time.Parse("2006-01-02 15:04", req.AppointmentDate+" "+req.AppointmentTime)
	if err != nil {
		metrics.ObserveRejection()
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("invalid appointment date/time %q %q", req.AppointmentDate, req.AppointmentTime))
		return
	}

	row := ReconstructFeatures(req, scheduled, s.now(), s.rates)
	probability, err := s.scorer.Probability(row)
	if err != nil {
		logger.Log.WithError(err).Error("prediction failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Log.WithFields(map[string]interface{}{
		"scheduled":   scheduled.Format("2006-01-02 15:04"),
		"probability": probability,
	}).Info("single prediction served")

	metrics.ObservePrediction(probability > 0.5)
	writeJSON(w, http.StatusOK, PredictResponse{
		Prediction:        scoring.Label(probability),
		NoShowProbability: math.Round(probability*100) / 100,
	})
}

// ReconstructFeatures rebuilds the model's input record for a future
// appointment the same way training-time engineering would have, with the
// provider and practice baselines taken from the static lookup. The CLI
// predict command and the HTTP handler share this single mirror point.
func ReconstructFeatures(req PredictRequest, scheduled, now time.Time, rates BaselineRates) dataset.FeatureRow {
	pastRate := req.PastNoShowRate / 100.0
	daysSince := req.DaysSinceLastAppt

	row := dataset.FeatureRow{
		LeadTimeHours:      scheduled.Sub(now).Hours(),
		DurationMin:        req.DurationMin,
		DaysSinceLastAppt:  &daysSince,
		PastNoShowRate:     &pastRate,
		ResourceNoShowRate: rates.ProviderRate(req.Provider),
		PracticeNoShowRate: rates.PracticeRate,
		DayOfWeek:          scheduled.Weekday().String(),
		HourOfDay:          scheduled.Hour(),
		IsWeekend:          scheduled.Weekday() == time.Saturday || scheduled.Weekday() == time.Sunday,
	}
	row.AppointmentType = req.AppointmentType
	return row
}

type dayResponse struct {
	Summary      scoring.DaySummary          `json:"summary"`
	Appointments []scoring.ScoredAppointment `json:"appointments"`
}

func (s *Service) handleAppointmentsByDate(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "missing required query parameter: date")
		return
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid date %q, want YYYY-MM-DD", date))
		return
	}

	var dayRows []dataset.FeatureRow
	for _, row := range s.features {
		if dataset.DateOf(row.ScheduledAt) == date {
			dayRows = append(dayRows, row)
		}
	}

	summary, scored, err := s.scorer.ScoreDay(dayRows)
	if err != nil {
		logger.Log.WithError(err).Error("day scoring failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if scored == nil {
		scored = []scoring.ScoredAppointment{}
	}

	highRisk := 0
	for _, appt := range scored {
		if appt.Prediction == scoring.TierHigh {
			highRisk++
		}
	}
	metrics.ObserveDayBatch(highRisk)

	writeJSON(w, http.StatusOK, dayResponse{Summary: summary, Appointments: scored})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
