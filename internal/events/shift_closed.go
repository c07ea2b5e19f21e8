package events

const (
	ShiftClosedTopic = "gaha.timeclock.shift_closed"
	ShiftClosedType  = "timeclock.shift_closed"
)

// ShiftClosedEvent is emitted when an employee clocks out, for downstream
// payroll aggregation. Durations are minutes of wall-clock time.
type ShiftClosedEvent struct {
	Username      string `json:"username"`
	WorkDate      string `json:"work_date"`
	ClockIn       string `json:"clock_in"`
	ClockOut      string `json:"clock_out"`
	LunchMinutes  int64  `json:"lunch_minutes"`
	WorkedMinutes int64  `json:"worked_minutes"`
}
