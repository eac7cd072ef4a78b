package features

import (
	"sort"
	"time"

	"github.com/vetsight-ai/noshow/pkg/common/logger"
	"github.com/vetsight-ai/noshow/pkg/dataset"
)

// Hour-of-day slot buckets, bounds inclusive.
const (
	morningStart   = 7
	morningEnd     = 11
	afternoonStart = 12
	afternoonEnd   = 16
	eveningStart   = 17
	eveningEnd     = 20
)

// Result carries the engineered feature table and the count of rows
// dropped for unparseable timestamps.
type Result struct {
	Rows          []dataset.FeatureRow
	DroppedNoTime int
}

// Engineer derives the model's input features from the labeled appointment
// table. Rows whose scheduled or created timestamp failed to parse are
// dropped, not imputed. Output is sorted by patient and scheduled time,
// which the per-patient history features require.
func Engineer(labeled []dataset.LabeledAppointment) Result {
	var result Result

	rows := make([]dataset.FeatureRow, 0, len(labeled))
	for _, row := range labeled {
		if row.ScheduledAt.IsZero() || row.CreatedAt.IsZero() {
			result.DroppedNoTime++
			continue
		}
		rows = append(rows, dataset.FeatureRow{LabeledAppointment: row})
	}
	if result.DroppedNoTime > 0 {
		logger.Log.WithField("rows", result.DroppedNoTime).
			Info("dropped rows with unparseable timestamps")
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].PatientID != rows[j].PatientID {
			return rows[i].PatientID < rows[j].PatientID
		}
		if !rows[i].ScheduledAt.Equal(rows[j].ScheduledAt) {
			return rows[i].ScheduledAt.Before(rows[j].ScheduledAt)
		}
		return rows[i].ID < rows[j].ID
	})

	for i := range rows {
		calendarFeatures(&rows[i])
	}
	patientHistoryFeatures(rows)
	cohortRates(rows)

	result.Rows = rows
	return result
}

func calendarFeatures(row *dataset.FeatureRow) {
	scheduled := row.ScheduledAt

	row.LeadTimeHours = scheduled.Sub(row.CreatedAt).Hours() // unclamped, may be negative
	row.DayOfWeek = scheduled.Weekday().String()
	row.HourOfDay = scheduled.Hour()
	row.Month = int(scheduled.Month())
	row.WeekdayNum = weekdayNum(scheduled.Weekday())
	row.IsWeekend = row.WeekdayNum >= 5

	row.IsMorningSlot = row.HourOfDay >= morningStart && row.HourOfDay <= morningEnd
	row.IsAfternoonSlot = row.HourOfDay >= afternoonStart && row.HourOfDay <= afternoonEnd
	row.IsEveningSlot = row.HourOfDay >= eveningStart && row.HourOfDay <= eveningEnd

	row.DurationMin = row.Duration

	row.IsMonthStart = scheduled.Day() == 1
	row.IsMonthEnd = scheduled.Day() == lastDayOfMonth(scheduled)
}

// weekdayNum maps to the Monday=0..Sunday=6 convention the model was
// built around, not Go's Sunday=0.
func weekdayNum(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func lastDayOfMonth(t time.Time) int {
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1).Day()
}

// patientHistoryFeatures walks each patient's chronologically sorted
// appointments. The past no-show rate at position k is the mean label over
// positions 1..k-1 only; the current row's own outcome never feeds its own
// feature.
func patientHistoryFeatures(rows []dataset.FeatureRow) {
	var (
		patient   string
		prevAt    time.Time
		havePrev  bool
		priorSeen int
		priorNS   int
	)

	for i := range rows {
		row := &rows[i]
		if row.PatientID != patient {
			patient = row.PatientID
			havePrev = false
			priorSeen = 0
			priorNS = 0
		}

		if havePrev {
			prev := prevAt
			row.PrevApptAt = &prev
			days := float64(int(row.ScheduledAt.Sub(prev).Hours() / 24))
			row.DaysSinceLastAppt = &days
			rate := float64(priorNS) / float64(priorSeen)
			row.PastNoShowRate = &rate
		}

		prevAt = row.ScheduledAt
		havePrev = true
		priorSeen++
		if row.NoShow {
			priorNS++
		}
	}
}

// cohortRates computes long-run provider and practice baselines over the
// full dataset. These intentionally include each row's own outcome; they
// stand in for a stable provider baseline, not a per-appointment signal.
func cohortRates(rows []dataset.FeatureRow) {
	type tally struct {
		total  int
		noShow int
	}
	byResource := make(map[string]*tally)
	byPractice := make(map[string]*tally)

	bump := func(m map[string]*tally, key string, noShow bool) {
		t := m[key]
		if t == nil {
			t = &tally{}
			m[key] = t
		}
		t.total++
		if noShow {
			t.noShow++
		}
	}
	for i := range rows {
		bump(byResource, rows[i].ResourceID, rows[i].NoShow)
		bump(byPractice, rows[i].PracticeID, rows[i].NoShow)
	}

	rate := func(t *tally) float64 {
		if t == nil || t.total == 0 {
			return 0
		}
		return float64(t.noShow) / float64(t.total)
	}
	for i := range rows {
		rows[i].ResourceNoShowRate = rate(byResource[rows[i].ResourceID])
		rows[i].PracticeNoShowRate = rate(byPractice[rows[i].PracticeID])
	}
}
