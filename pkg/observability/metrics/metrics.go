package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	predictionsServed atomic.Int64
	noShowPredictions atomic.Int64
	dayBatchesScored  atomic.Int64
	highRiskFlagged   atomic.Int64
	requestsRejected  atomic.Int64
)

// ObservePrediction records one single-appointment prediction.
func ObservePrediction(noShow bool) {
	predictionsServed.Add(1)
	if noShow {
		noShowPredictions.Add(1)
	}
}

// ObserveDayBatch records one day-batch scoring pass and how many of its
// appointments landed in the high-risk tier.
func ObserveDayBatch(highRisk int) {
	dayBatchesScored.Add(1)
	highRiskFlagged.Add(int64(highRisk))
}

// ObserveRejection records a request refused before scoring.
func ObserveRejection() {
	requestsRejected.Add(1)
}

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP noshow_predictions_served_total Number of single-appointment predictions served.\n")
	fmt.Fprintf(w, "# TYPE noshow_predictions_served_total counter\n")
	fmt.Fprintf(w, "noshow_predictions_served_total %d\n", predictionsServed.Load())

	fmt.Fprintf(w, "# HELP noshow_predictions_noshow_total Number of predictions that crossed the no-show threshold.\n")
	fmt.Fprintf(w, "# TYPE noshow_predictions_noshow_total counter\n")
	fmt.Fprintf(w, "noshow_predictions_noshow_total %d\n", noShowPredictions.Load())

	fmt.Fprintf(w, "# HELP noshow_day_batches_scored_total Number of day-batch scoring passes served.\n")
	fmt.Fprintf(w, "# TYPE noshow_day_batches_scored_total counter\n")
	fmt.Fprintf(w, "noshow_day_batches_scored_total %d\n", dayBatchesScored.Load())

	fmt.Fprintf(w, "# HELP noshow_high_risk_flagged_total Number of appointments placed in the high-risk tier across day batches.\n")
	fmt.Fprintf(w, "# TYPE noshow_high_risk_flagged_total counter\n")
	fmt.Fprintf(w, "noshow_high_risk_flagged_total %d\n", highRiskFlagged.Load())

	fmt.Fprintf(w, "# HELP noshow_requests_rejected_total Number of requests refused before scoring.\n")
	fmt.Fprintf(w, "# TYPE noshow_requests_rejected_total counter\n")
	fmt.Fprintf(w, "noshow_requests_rejected_total %d\n", requestsRejected.Load())
}
