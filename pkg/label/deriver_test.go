package label

import (
	"testing"
	"time"

	"github.com/vetsight-ai/noshow/pkg/dataset"
)

func ts(value string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDeriveLabelInvariant(t *testing.T) {
	cases := []struct {
		name     string
		revenue  bool
		inClinic bool
		deleted  bool
		noShow   bool
	}{
		{"in-clinic revenue visit", true, true, false, false},
		{"revenue but not in clinic", true, false, false, true},
		{"in clinic but no revenue", false, true, false, true},
		{"no transactions matched", false, false, false, true},
		{"deleted despite revenue", true, true, true, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			appts := []dataset.Appointment{{
				ID:          "a1",
				PatientID:   "p1",
				ScheduledAt: ts("2025-03-10 09:00"),
				Deleted:     tc.deleted,
			}}
			var txns []dataset.Transaction
			if tc.revenue || tc.inClinic {
				txns = append(txns, dataset.Transaction{
					ID:         "t1",
					PatientID:  "p1",
					ReportedAt: ts("2025-03-10 10:30"),
					Amount:     50,
					InClinic:   tc.inClinic,
					Revenue:    tc.revenue,
				})
			}

			result := Derive(appts, txns)
			if len(result.Rows) != 1 {
				t.Fatalf("expected 1 labeled row, got %d", len(result.Rows))
			}
			if result.Rows[0].NoShow != tc.noShow {
				t.Fatalf("expected no_show=%v, got %v", tc.noShow, result.Rows[0].NoShow)
			}
		})
	}
}

func TestDeriveDropsMissingPatientID(t *testing.T) {
	appts := []dataset.Appointment{
		{ID: "a1", PatientID: "", ScheduledAt: ts("2025-03-10 09:00")},
		{ID: "a2", PatientID: "p1", ScheduledAt: ts("2025-03-10 09:00")},
	}

	result := Derive(appts, nil)
	if result.MissingPatientID != 1 {
		t.Fatalf("expected 1 filtered row, got %d", result.MissingPatientID)
	}
	if len(result.Rows) != 1 || result.Rows[0].ID != "a2" {
		t.Fatalf("expected only a2 to survive, got %+v", result.Rows)
	}
}

func TestDeriveAggregatesTransactionsByDay(t *testing.T) {
	appts := []dataset.Appointment{{
		ID:          "a1",
		PatientID:   "p1",
		ScheduledAt: ts("2025-03-10 09:00"),
	}}
	txns := []dataset.Transaction{
		{ID: "t1", PatientID: "p1", ReportedAt: ts("2025-03-10 09:15"), Amount: 30, Quantity: 1, InClinic: true, Revenue: false},
		{ID: "t2", PatientID: "p1", ReportedAt: ts("2025-03-10 16:45"), Amount: 20, Quantity: 2, InClinic: false, Revenue: true},
		// Duplicate id must not inflate the count.
		{ID: "t2", PatientID: "p1", ReportedAt: ts("2025-03-10 16:45"), Amount: 20, Quantity: 2, InClinic: false, Revenue: true},
		// Different day, must not join.
		{ID: "t3", PatientID: "p1", ReportedAt: ts("2025-03-11 10:00"), Amount: 99, Quantity: 1, InClinic: true, Revenue: true},
	}

	result := Derive(appts, txns)
	row := result.Rows[0]
	if row.TotalAmount != 70 {
		t.Fatalf("expected total amount 70, got %v", row.TotalAmount)
	}
	if row.TotalQuantity != 5 {
		t.Fatalf("expected total quantity 5, got %v", row.TotalQuantity)
	}
	if row.TxnCount != 2 {
		t.Fatalf("expected 2 distinct transactions, got %d", row.TxnCount)
	}
	if !row.AnyInClinic || !row.AnyRevenue {
		t.Fatalf("expected OR'd flags true, got inclinic=%v revenue=%v", row.AnyInClinic, row.AnyRevenue)
	}
	// Revenue and in-clinic both true on the day, not deleted: a show.
	if row.NoShow {
		t.Fatal("expected show, got no-show")
	}
}

func TestDeriveUnmatchedAppointmentDefaults(t *testing.T) {
	appts := []dataset.Appointment{{
		ID:          "a1",
		PatientID:   "p1",
		ScheduledAt: ts("2025-03-10 09:00"),
	}}

	result := Derive(appts, nil)
	row := result.Rows[0]
	if row.TotalAmount != 0 || row.TxnCount != 0 || row.AnyInClinic || row.AnyRevenue {
		t.Fatalf("expected zero aggregate defaults, got %+v", row.DayAggregate)
	}
	if !row.NoShow {
		t.Fatal("expected unmatched appointment to default to no-show")
	}
}

func TestNoShowRate(t *testing.T) {
	result := Result{Rows: []dataset.LabeledAppointment{
		{NoShow: true}, {NoShow: false}, {NoShow: true}, {NoShow: true},
	}}
	if got := result.NoShowRate(); got != 0.75 {
		t.Fatalf("expected rate 0.75, got %v", got)
	}
	if got := (Result{}).NoShowRate(); got != 0 {
		t.Fatalf("expected empty rate 0, got %v", got)
	}
}
