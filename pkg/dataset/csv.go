package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Timestamp layouts accepted on load, tried in order. Values that match
// none of them parse to the zero time; downstream stages decide whether
// that drops the row.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

type header map[string]int

func readTable(path string) (header, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("read %s: empty file", path)
	}

	head := make(header, len(records[0]))
	for i, name := range records[0] {
		head[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	return head, records[1:], nil
}

func (h header) require(path string, names ...string) error {
	for _, name := range names {
		if _, ok := h[name]; !ok {
			return fmt.Errorf("%s: missing required column %s", path, name)
		}
	}
	return nil
}

func (h header) get(record []string, name string) string {
	idx, ok := h[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseFloat(value string) float64 {
	if value == "" {
		return 0
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseInt(value string) int {
	if value == "" {
		return 0
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return i
}

func parseBool(value string) bool {
	switch strings.ToLower(value) {
	case "true", "t", "1", "yes":
		return true
	}
	return false
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatNullableFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}

func formatNullableTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

// ReadAppointments loads the raw appointment table.
func ReadAppointments(path string) ([]Appointment, error) {
	head, records, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if err := head.require(path, "APPOINTMENT_ID", "PATIENT_ID", "APPOINTMENT_DATETIME", "CREATED_DATE"); err != nil {
		return nil, err
	}

	appts := make([]Appointment, 0, len(records))
	for _, record := range records {
		appts = append(appts, Appointment{
			ID:              head.get(record, "APPOINTMENT_ID"),
			PatientID:       head.get(record, "PATIENT_ID"),
			ScheduledAt:     parseTime(head.get(record, "APPOINTMENT_DATETIME")),
			CreatedAt:       parseTime(head.get(record, "CREATED_DATE")),
			Duration:        parseFloat(head.get(record, "DURATION")),
			ScheduleType:    head.get(record, "SCHEDULE_TYPE"),
			AppointmentType: head.get(record, "APPOINTMENT_TYPE"),
			ResourceID:      head.get(record, "RESOURCE_ID"),
			PracticeID:      head.get(record, "PRACTICE_ID"),
			Deleted:         parseBool(head.get(record, "IS_DELETED")),
		})
	}
	return appts, nil
}

// ReadTransactions loads the raw transaction table.
func ReadTransactions(path string) ([]Transaction, error) {
	head, records, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if err := head.require(path, "TRANSACTION_ID", "PATIENT_ID", "REPORTING_DATETIME"); err != nil {
		return nil, err
	}

	txns := make([]Transaction, 0, len(records))
	for _, record := range records {
		txns = append(txns, Transaction{
			ID:         head.get(record, "TRANSACTION_ID"),
			PatientID:  head.get(record, "PATIENT_ID"),
			ReportedAt: parseTime(head.get(record, "REPORTING_DATETIME")),
			Amount:     parseFloat(head.get(record, "AMOUNT")),
			Quantity:   parseFloat(head.get(record, "QUANTITY")),
			InClinic:   parseBool(head.get(record, "IS_INCLINIC")),
			Revenue:    parseBool(head.get(record, "IS_REVENUE")),
		})
	}
	return txns, nil
}

var labeledColumns = []string{
	"APPOINTMENT_ID", "PATIENT_ID", "APPOINTMENT_DATETIME", "CREATED_DATE",
	"DURATION", "SCHEDULE_TYPE", "APPOINTMENT_TYPE", "RESOURCE_ID",
	"PRACTICE_ID", "IS_DELETED", "TOTAL_AMOUNT", "TOTAL_QTY", "TXN_COUNT",
	"ANY_INCLINIC", "ANY_REVENUE", "NO_SHOW",
}

func labeledRecord(row LabeledAppointment) []string {
	return []string{
		row.ID,
		row.PatientID,
		row.ScheduledAt.Format("2006-01-02 15:04:05"),
		row.CreatedAt.Format("2006-01-02 15:04:05"),
		formatFloat(row.Duration),
		row.ScheduleType,
		row.AppointmentType,
		row.ResourceID,
		row.PracticeID,
		strconv.FormatBool(row.Deleted),
		formatFloat(row.TotalAmount),
		formatFloat(row.TotalQuantity),
		strconv.Itoa(row.TxnCount),
		strconv.FormatBool(row.AnyInClinic),
		strconv.FormatBool(row.AnyRevenue),
		strconv.FormatBool(row.NoShow),
	}
}

func labeledFromRecord(head header, record []string) LabeledAppointment {
	return LabeledAppointment{
		Appointment: Appointment{
			ID:              head.get(record, "APPOINTMENT_ID"),
			PatientID:       head.get(record, "PATIENT_ID"),
			ScheduledAt:     parseTime(head.get(record, "APPOINTMENT_DATETIME")),
			CreatedAt:       parseTime(head.get(record, "CREATED_DATE")),
			Duration:        parseFloat(head.get(record, "DURATION")),
			ScheduleType:    head.get(record, "SCHEDULE_TYPE"),
			AppointmentType: head.get(record, "APPOINTMENT_TYPE"),
			ResourceID:      head.get(record, "RESOURCE_ID"),
			PracticeID:      head.get(record, "PRACTICE_ID"),
			Deleted:         parseBool(head.get(record, "IS_DELETED")),
		},
		DayAggregate: DayAggregate{
			TotalAmount:   parseFloat(head.get(record, "TOTAL_AMOUNT")),
			TotalQuantity: parseFloat(head.get(record, "TOTAL_QTY")),
			TxnCount:      parseInt(head.get(record, "TXN_COUNT")),
			AnyInClinic:   parseBool(head.get(record, "ANY_INCLINIC")),
			AnyRevenue:    parseBool(head.get(record, "ANY_REVENUE")),
		},
		NoShow: parseBool(head.get(record, "NO_SHOW")),
	}
}

// WriteLabeled persists the labeled appointment table between pipeline stages.
func WriteLabeled(path string, rows []LabeledAppointment) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, labeledRecord(row))
	}
	return writeTable(path, labeledColumns, records)
}

// ReadLabeled loads a labeled appointment table written by WriteLabeled.
func ReadLabeled(path string) ([]LabeledAppointment, error) {
	head, records, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if err := head.require(path, "APPOINTMENT_ID", "PATIENT_ID", "APPOINTMENT_DATETIME", "NO_SHOW"); err != nil {
		return nil, err
	}

	rows := make([]LabeledAppointment, 0, len(records))
	for _, record := range records {
		rows = append(rows, labeledFromRecord(head, record))
	}
	return rows, nil
}

var featureColumns = append(append([]string{}, labeledColumns...),
	"LEAD_TIME_HOURS", "DAY_OF_WEEK", "HOUR_OF_DAY", "MONTH", "WEEKDAY_NUM",
	"IS_WEEKEND", "IS_MORNING_SLOT", "IS_AFTERNOON_SLOT", "IS_EVENING_SLOT",
	"DURATION_MIN", "PREV_APPT_DATE", "DAYS_SINCE_LAST_APPT",
	"PAST_NOSHOW_RATE", "RESOURCE_NOSHOW_RATE", "PRACTICE_NOSHOW_RATE",
	"IS_MONTH_START", "IS_MONTH_END",
)

// WriteFeatures persists the engineered feature table.
func WriteFeatures(path string, rows []FeatureRow) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		record := labeledRecord(row.LabeledAppointment)
		record = append(record,
			formatFloat(row.LeadTimeHours),
			row.DayOfWeek,
			strconv.Itoa(row.HourOfDay),
			strconv.Itoa(row.Month),
			strconv.Itoa(row.WeekdayNum),
			strconv.FormatBool(row.IsWeekend),
			strconv.FormatBool(row.IsMorningSlot),
			strconv.FormatBool(row.IsAfternoonSlot),
			strconv.FormatBool(row.IsEveningSlot),
			formatFloat(row.DurationMin),
			formatNullableTime(row.PrevApptAt),
			formatNullableFloat(row.DaysSinceLastAppt),
			formatNullableFloat(row.PastNoShowRate),
			formatFloat(row.ResourceNoShowRate),
			formatFloat(row.PracticeNoShowRate),
			strconv.FormatBool(row.IsMonthStart),
			strconv.FormatBool(row.IsMonthEnd),
		)
		records = append(records, record)
	}
	return writeTable(path, featureColumns, records)
}

// ReadFeatures loads a feature table written by WriteFeatures.
func ReadFeatures(path string) ([]FeatureRow, error) {
	head, records, err := readTable(path)
	if err != nil {
		return nil, err
	}
	if err := head.require(path, "APPOINTMENT_ID", "PATIENT_ID", "APPOINTMENT_DATETIME", "LEAD_TIME_HOURS"); err != nil {
		return nil, err
	}

	rows := make([]FeatureRow, 0, len(records))
	for _, record := range records {
		row := FeatureRow{
			LabeledAppointment: labeledFromRecord(head, record),
			LeadTimeHours:      parseFloat(head.get(record, "LEAD_TIME_HOURS")),
			DayOfWeek:          head.get(record, "DAY_OF_WEEK"),
			HourOfDay:          parseInt(head.get(record, "HOUR_OF_DAY")),
			Month:              parseInt(head.get(record, "MONTH")),
			WeekdayNum:         parseInt(head.get(record, "WEEKDAY_NUM")),
			IsWeekend:          parseBool(head.get(record, "IS_WEEKEND")),
			IsMorningSlot:      parseBool(head.get(record, "IS_MORNING_SLOT")),
			IsAfternoonSlot:    parseBool(head.get(record, "IS_AFTERNOON_SLOT")),
			IsEveningSlot:      parseBool(head.get(record, "IS_EVENING_SLOT")),
			DurationMin:        parseFloat(head.get(record, "DURATION_MIN")),
			ResourceNoShowRate: parseFloat(head.get(record, "RESOURCE_NOSHOW_RATE")),
			PracticeNoShowRate: parseFloat(head.get(record, "PRACTICE_NOSHOW_RATE")),
			IsMonthStart:       parseBool(head.get(record, "IS_MONTH_START")),
			IsMonthEnd:         parseBool(head.get(record, "IS_MONTH_END")),
		}
		if value := head.get(record, "PREV_APPT_DATE"); value != "" {
			if t := parseTime(value); !t.IsZero() {
				row.PrevApptAt = &t
			}
		}
		if value := head.get(record, "DAYS_SINCE_LAST_APPT"); value != "" {
			f := parseFloat(value)
			row.DaysSinceLastAppt = &f
		}
		if value := head.get(record, "PAST_NOSHOW_RATE"); value != "" {
			f := parseFloat(value)
			row.PastNoShowRate = &f
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func writeTable(path string, columns []string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
