package schema

import (
	"math"
	"reflect"
	"testing"

	"github.com/vetsight-ai/noshow/pkg/dataset"
)

func featureRow(day string, hour int, apptType string, weekend bool) dataset.FeatureRow {
	row := dataset.FeatureRow{
		LeadTimeHours: 48,
		DurationMin:   30,
		DayOfWeek:     day,
		HourOfDay:     hour,
		IsWeekend:     weekend,
	}
	row.AppointmentType = apptType
	return row
}

func TestFitColumnsDropsBaselineCategory(t *testing.T) {
	rows := []dataset.FeatureRow{
		featureRow("Monday", 9, "Examination", false),
		featureRow("Tuesday", 14, "Surgery", false),
	}
	columns := FitColumns(rows)

	// Numeric features lead, in fixed order.
	if !reflect.DeepEqual(columns[:len(NumericFeatures)], NumericFeatures) {
		t.Fatalf("expected numeric prefix, got %v", columns[:len(NumericFeatures)])
	}

	set := make(map[string]bool, len(columns))
	for _, c := range columns {
		set[c] = true
	}
	// Monday sorts before Tuesday and is the dropped baseline.
	if set["day_of_week=Monday"] {
		t.Fatal("baseline category should be dropped")
	}
	if !set["day_of_week=Tuesday"] {
		t.Fatal("expected day_of_week=Tuesday indicator")
	}
	// Hours sort numerically: 9 is baseline, 14 kept.
	if set["hour_of_day=9"] || !set["hour_of_day=14"] {
		t.Fatalf("expected hour 9 dropped and 14 kept, got %v", columns)
	}
	// Only one is_weekend value observed, so it is baseline and no
	// indicator survives.
	if set["is_weekend=false"] || set["is_weekend=true"] {
		t.Fatal("single-valued categorical should produce no indicators")
	}
}

func TestEncodeImputesMissingHistory(t *testing.T) {
	row := featureRow("Monday", 9, "Examination", false)
	// First-ever appointment: nil history features.
	values := Encode(row)

	if values["days_since_last_appt"] != 0 || values["past_noshow_rate"] != 0 {
		t.Fatalf("expected nil history imputed to 0, got %v / %v",
			values["days_since_last_appt"], values["past_noshow_rate"])
	}
	if values["day_of_week=Monday"] != 1 {
		t.Fatal("expected day indicator set")
	}
	if values["is_weekend=false"] != 1 {
		t.Fatal("expected weekend indicator encoded as string category")
	}
}

func TestAlignZeroFillsAndDiscards(t *testing.T) {
	columns := []string{"lead_time_hours", "day_of_week=Tuesday"}
	values := map[string]float64{
		"lead_time_hours":    48,
		"day_of_week=Friday": 1, // unseen at training time: discarded
	}
	vector := Align(values, columns)
	if !reflect.DeepEqual(vector, []float64{48, 0}) {
		t.Fatalf("expected [48 0], got %v", vector)
	}
}

func TestAlignIdempotent(t *testing.T) {
	columns := []string{"lead_time_hours", "duration_min", "day_of_week=Tuesday"}
	values := map[string]float64{"lead_time_hours": 48, "day_of_week=Tuesday": 1}

	once := Align(values, columns)
	twice := Align(Named(once, columns), columns)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("alignment not idempotent: %v vs %v", once, twice)
	}
}

func TestFirstAppointmentAlignedRowIsFullyNumeric(t *testing.T) {
	// A brand-new patient's first appointment must come out of alignment
	// with concrete zeros, never missing values.
	row := featureRow("Monday", 9, "Examination", false)
	columns := FitColumns([]dataset.FeatureRow{row, featureRow("Tuesday", 14, "Surgery", true)})

	vector := Align(Encode(row), columns)
	if len(vector) != len(columns) {
		t.Fatalf("expected width %d, got %d", len(columns), len(vector))
	}
	for i, v := range vector {
		if math.IsNaN(v) {
			t.Fatalf("NaN at column %s", columns[i])
		}
	}
	named := Named(vector, columns)
	if named["days_since_last_appt"] != 0 || named["past_noshow_rate"] != 0 {
		t.Fatal("expected imputed zeros for first-appointment history features")
	}
}

func TestScalerStandardizesNumericOnly(t *testing.T) {
	rows := []map[string]float64{
		{"lead_time_hours": 10, "duration_min": 30},
		{"lead_time_hours": 20, "duration_min": 30},
	}
	scaler := FitScaler(rows, []string{"lead_time_hours", "duration_min"})

	stat := scaler.Stats["lead_time_hours"]
	if stat.Mean != 15 || stat.Scale != 5 {
		t.Fatalf("expected mean 15 scale 5, got %+v", stat)
	}
	// Zero variance: scale clamps to 1.
	if scaler.Stats["duration_min"].Scale != 1 {
		t.Fatalf("expected zero-variance scale 1, got %+v", scaler.Stats["duration_min"])
	}

	columns := []string{"lead_time_hours", "duration_min", "day_of_week=Tuesday"}
	vector := []float64{10, 30, 1}
	if err := scaler.Transform(vector, columns); err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if vector[0] != -1 {
		t.Fatalf("expected standardized -1, got %v", vector[0])
	}
	if vector[2] != 1 {
		t.Fatalf("indicator column must not be scaled, got %v", vector[2])
	}
}

func TestScalerRejectsMismatchedFeatureSet(t *testing.T) {
	scaler := FitScaler([]map[string]float64{{"lead_time_hours": 10}}, []string{"lead_time_hours"})
	err := scaler.Transform([]float64{1}, []string{"duration_min"})
	if err == nil {
		t.Fatal("expected configuration error for mismatched feature set")
	}
}
