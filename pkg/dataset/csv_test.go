package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestReadAppointments(t *testing.T) {
	path := writeFixture(t, "appointments.csv",
		"APPOINTMENT_ID,PATIENT_ID,APPOINTMENT_DATETIME,CREATED_DATE,DURATION,SCHEDULE_TYPE,APPOINTMENT_TYPE,RESOURCE_ID,PRACTICE_ID,IS_DELETED\n"+
			"a1,p1,2025-03-10 09:00:00,2025-03-01 10:30:00,30,Standard,Examination,r1,c1,false\n"+
			"a2,p2,not-a-date,2025-03-01 10:30:00,15,Standard,Surgery,r1,c1,true\n")

	appts, err := ReadAppointments(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(appts) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(appts))
	}
	if appts[0].ScheduledAt != time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) {
		t.Fatalf("unexpected scheduled time %v", appts[0].ScheduledAt)
	}
	if appts[0].Duration != 30 || appts[0].Deleted {
		t.Fatalf("unexpected row %+v", appts[0])
	}
	// Unparseable timestamps load as zero times; the features stage
	// decides whether to drop them.
	if !appts[1].ScheduledAt.IsZero() {
		t.Fatalf("expected zero time for bad timestamp, got %v", appts[1].ScheduledAt)
	}
	if !appts[1].Deleted {
		t.Fatal("expected deleted flag to parse")
	}
}

func TestReadAppointmentsMissingColumn(t *testing.T) {
	path := writeFixture(t, "appointments.csv", "APPOINTMENT_ID,PATIENT_ID\na1,p1\n")
	_, err := ReadAppointments(path)
	if err == nil || !strings.Contains(err.Error(), "APPOINTMENT_DATETIME") {
		t.Fatalf("expected missing-column error, got %v", err)
	}
}

func TestReadAppointmentsMissingFileNamesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.csv")
	_, err := ReadAppointments(path)
	if err == nil || !strings.Contains(err.Error(), "nope.csv") {
		t.Fatalf("expected error naming the missing file, got %v", err)
	}
}

func TestLabeledRoundTrip(t *testing.T) {
	rows := []LabeledAppointment{{
		Appointment: Appointment{
			ID:              "a1",
			PatientID:       "p1",
			ScheduledAt:     time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
			CreatedAt:       time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC),
			Duration:        30,
			AppointmentType: "Examination",
			ResourceID:      "r1",
			PracticeID:      "c1",
		},
		DayAggregate: DayAggregate{TotalAmount: 120.5, TxnCount: 3, AnyInClinic: true, AnyRevenue: true},
		NoShow:       false,
	}}

	path := filepath.Join(t.TempDir(), "labeled.csv")
	if err := WriteLabeled(path, rows); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	loaded, err := ReadLabeled(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 row, got %d", len(loaded))
	}
	if loaded[0] != rows[0] {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", loaded[0], rows[0])
	}
}

func TestFeatureRoundTripPreservesNullability(t *testing.T) {
	days := 10.0
	rate := 0.5
	prev := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	withHistory := FeatureRow{
		LeadTimeHours:     48,
		DayOfWeek:         "Monday",
		HourOfDay:         9,
		Month:             3,
		DurationMin:       30,
		PrevApptAt:        &prev,
		DaysSinceLastAppt: &days,
		PastNoShowRate:    &rate,
	}
	withHistory.ID = "a1"
	withHistory.PatientID = "p1"
	withHistory.ScheduledAt = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	withHistory.CreatedAt = time.Date(2025, 3, 8, 9, 0, 0, 0, time.UTC)

	firstVisit := withHistory
	firstVisit.ID = "a2"
	firstVisit.PrevApptAt = nil
	firstVisit.DaysSinceLastAppt = nil
	firstVisit.PastNoShowRate = nil

	path := filepath.Join(t.TempDir(), "features.csv")
	if err := WriteFeatures(path, []FeatureRow{withHistory, firstVisit}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	loaded, err := ReadFeatures(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if loaded[0].PastNoShowRate == nil || *loaded[0].PastNoShowRate != 0.5 {
		t.Fatalf("expected past rate 0.5, got %v", loaded[0].PastNoShowRate)
	}
	if loaded[0].PrevApptAt == nil || !loaded[0].PrevApptAt.Equal(prev) {
		t.Fatalf("expected prev appt preserved, got %v", loaded[0].PrevApptAt)
	}
	if loaded[1].PastNoShowRate != nil || loaded[1].DaysSinceLastAppt != nil || loaded[1].PrevApptAt != nil {
		t.Fatalf("expected nil history preserved for first visit, got %+v", loaded[1])
	}
}
