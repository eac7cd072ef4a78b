// Package schema turns engineered feature rows into the fixed numeric
// vector shape a fitted model expects: one-hot encoding, reference-column
// reconciliation, and numeric standardization.
package schema

import (
	"sort"
	"strconv"

	"github.com/vetsight-ai/noshow/pkg/dataset"
)

// NumericFeatures is the fixed, ordered list of scaled numeric inputs.
// The scaler is fit on exactly this list and never on indicator columns.
var NumericFeatures = []string{
	"lead_time_hours",
	"duration_min",
	"days_since_last_appt",
	"past_noshow_rate",
	"resource_noshow_rate",
	"practice_noshow_rate",
}

// Categorical feature names, expanded to one indicator column per observed
// value. Booleans encode as the strings "true"/"false" so category names
// stay stable across loads.
var CategoricalFeatures = []string{
	"day_of_week",
	"hour_of_day",
	"appointment_type",
	"is_weekend",
}

// Encode flattens a feature row into named numeric values: the six numeric
// features (nil history imputed to 0, the documented neutral-rate default)
// plus a 1-valued indicator per categorical value. Whether an indicator
// survives is decided later by Align against the reference columns.
func Encode(row dataset.FeatureRow) map[string]float64 {
	values := map[string]float64{
		"lead_time_hours":      row.LeadTimeHours,
		"duration_min":         row.DurationMin,
		"days_since_last_appt": imputeZero(row.DaysSinceLastAppt),
		"past_noshow_rate":     imputeZero(row.PastNoShowRate),
		"resource_noshow_rate": row.ResourceNoShowRate,
		"practice_noshow_rate": row.PracticeNoShowRate,
	}
	for name, value := range categoricalValues(row) {
		values[name+"="+value] = 1
	}
	return values
}

// FitColumns establishes the reference column ordering from training rows:
// the numeric features first, then per categorical feature its observed
// values in sorted order with the first dropped as the implicit baseline.
func FitColumns(rows []dataset.FeatureRow) []string {
	observed := make(map[string]map[string]struct{}, len(CategoricalFeatures))
	for _, name := range CategoricalFeatures {
		observed[name] = make(map[string]struct{})
	}
	for _, row := range rows {
		for name, value := range categoricalValues(row) {
			observed[name][value] = struct{}{}
		}
	}

	columns := append([]string{}, NumericFeatures...)
	for _, name := range CategoricalFeatures {
		values := make([]string, 0, len(observed[name]))
		for value := range observed[name] {
			values = append(values, value)
		}
		sortCategories(values)
		if len(values) > 0 {
			values = values[1:] // baseline category
		}
		for _, value := range values {
			columns = append(columns, name+"="+value)
		}
	}
	return columns
}

func categoricalValues(row dataset.FeatureRow) map[string]string {
	return map[string]string{
		"day_of_week":      row.DayOfWeek,
		"hour_of_day":      strconv.Itoa(row.HourOfDay),
		"appointment_type": row.AppointmentType,
		"is_weekend":       strconv.FormatBool(row.IsWeekend),
	}
}

// sortCategories orders numerically when every value parses as an integer
// (hour_of_day), lexically otherwise.
func sortCategories(values []string) {
	numeric := true
	for _, value := range values {
		if _, err := strconv.Atoi(value); err != nil {
			numeric = false
			break
		}
	}
	if numeric {
		sort.Slice(values, func(i, j int) bool {
			a, _ := strconv.Atoi(values[i])
			b, _ := strconv.Atoi(values[j])
			return a < b
		})
		return
	}
	sort.Strings(values)
}

func imputeZero(value *float64) float64 {
	if value == nil {
		return 0
	}
	return *value
}
