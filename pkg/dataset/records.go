package dataset

import "time"

// Appointment is one physical appointment as exported from the practice
// management system. Immutable once loaded.
type Appointment struct {
	ID              string
	PatientID       string
	ScheduledAt     time.Time
	CreatedAt       time.Time
	Duration        float64
	ScheduleType    string
	AppointmentType string
	ResourceID      string
	PracticeID      string
	Deleted         bool
}

// Transaction is one billing line from the practice management system.
type Transaction struct {
	ID         string
	PatientID  string
	ReportedAt time.Time
	Amount     float64
	Quantity   float64
	InClinic   bool
	Revenue    bool
}

// DayAggregate summarizes a patient's transactions on one calendar date.
// At most one aggregate exists per (patient, date).
type DayAggregate struct {
	TotalAmount   float64
	TotalQuantity float64
	TxnCount      int
	AnyInClinic   bool
	AnyRevenue    bool
}

// LabeledAppointment joins an appointment with its same-day transaction
// aggregate (zero-valued when no transactions matched) and the derived
// no-show label. An appointment counts as a show only when it generated
// in-clinic revenue on the scheduled date and was not deleted.
type LabeledAppointment struct {
	Appointment
	DayAggregate
	NoShow bool
}

// FeatureRow is a labeled appointment enriched with the model's input
// features. Prior-history features are pointers so that "no prior
// appointments" stays distinguishable from a genuine zero until schema
// alignment imputes it.
type FeatureRow struct {
	LabeledAppointment

	LeadTimeHours   float64
	DayOfWeek       string
	HourOfDay       int
	Month           int
	WeekdayNum      int
	IsWeekend       bool
	IsMorningSlot   bool
	IsAfternoonSlot bool
	IsEveningSlot   bool
	DurationMin     float64

	PrevApptAt        *time.Time
	DaysSinceLastAppt *float64
	PastNoShowRate    *float64

	ResourceNoShowRate float64
	PracticeNoShowRate float64

	IsMonthStart bool
	IsMonthEnd   bool
}

// DateKey identifies a (patient, calendar date) join key.
type DateKey struct {
	PatientID string
	Date      string // "2006-01-02"
}

// DateOf truncates a timestamp to its calendar-date key form.
func DateOf(t time.Time) string {
	return t.Format("2006-01-02")
}
