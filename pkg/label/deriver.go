package label

import (
	"github.com/vetsight-ai/noshow/pkg/common/logger"
	"github.com/vetsight-ai/noshow/pkg/dataset"
)

// Result carries the labeled appointment table plus the data-quality
// counters surfaced by the derivation.
type Result struct {
	Rows             []dataset.LabeledAppointment
	MissingPatientID int
}

// NoShowRate returns the share of labeled rows marked no-show.
func (r Result) NoShowRate() float64 {
	if len(r.Rows) == 0 {
		return 0
	}
	var noShows int
	for _, row := range r.Rows {
		if row.NoShow {
			noShows++
		}
	}
	return float64(noShows) / float64(len(r.Rows))
}

// Derive joins appointments to their same-day transaction aggregates and
// computes the no-show label. Appointments without a patient identifier
// cannot be joined and are dropped, counted in the result. The function is
// pure given its inputs.
func Derive(appts []dataset.Appointment, txns []dataset.Transaction) Result {
	aggregates := aggregate(txns)

	result := Result{Rows: make([]dataset.LabeledAppointment, 0, len(appts))}
	for _, appt := range appts {
		if appt.PatientID == "" {
			result.MissingPatientID++
			continue
		}

		key := dataset.DateKey{PatientID: appt.PatientID, Date: dataset.DateOf(appt.ScheduledAt)}
		agg := aggregates[key] // zero aggregate when unmatched

		result.Rows = append(result.Rows, dataset.LabeledAppointment{
			Appointment:  appt,
			DayAggregate: agg,
			NoShow:       !(agg.AnyRevenue && agg.AnyInClinic && !appt.Deleted),
		})
	}

	if result.MissingPatientID > 0 {
		logger.Log.WithField("rows", result.MissingPatientID).
			Info("dropped appointments with missing patient id")
	}
	return result
}

// aggregate rolls transactions up to one row per (patient, calendar date):
// summed amount and quantity, OR'd in-clinic and revenue flags, and a
// distinct transaction count.
func aggregate(txns []dataset.Transaction) map[dataset.DateKey]dataset.DayAggregate {
	aggregates := make(map[dataset.DateKey]dataset.DayAggregate)
	seen := make(map[dataset.DateKey]map[string]struct{})

	for _, txn := range txns {
		if txn.PatientID == "" {
			continue
		}
		key := dataset.DateKey{PatientID: txn.PatientID, Date: dataset.DateOf(txn.ReportedAt)}

		agg := aggregates[key]
		agg.TotalAmount += txn.Amount
		agg.TotalQuantity += txn.Quantity
		agg.AnyInClinic = agg.AnyInClinic || txn.InClinic
		agg.AnyRevenue = agg.AnyRevenue || txn.Revenue

		ids := seen[key]
		if ids == nil {
			ids = make(map[string]struct{})
			seen[key] = ids
		}
		if _, dup := ids[txn.ID]; !dup {
			ids[txn.ID] = struct{}{}
			agg.TxnCount++
		}

		aggregates[key] = agg
	}
	return aggregates
}
