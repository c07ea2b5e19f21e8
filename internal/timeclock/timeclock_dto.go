package timeclock

import "time"

// TimeEntryResponse mirrors the column names the web client has always
// consumed (clockin_time, lunch_start, ...). Durations are derived on the
// way out and only present once the entry is closed.
type TimeEntryResponse struct {
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	Date          string  `json:"date"`
	ClockInTime   string  `json:"clockin_time"`
	LunchStart    *string `json:"lunch_start"`
	LunchEnd      *string `json:"lunch_end"`
	ClockOutTime  *string `json:"clockout_time"`
	State         string  `json:"state"`
	LunchMinutes  *int64  `json:"lunch_minutes,omitempty"`
	WorkedMinutes *int64  `json:"worked_minutes,omitempty"`
}

func mapToResponse(e TimeEntry) TimeEntryResponse {
	resp := TimeEntryResponse{
		ID:          e.ID.String(),
		Username:    e.Username,
		Date:        e.WorkDate.Format("2006-01-02"),
		ClockInTime: e.ClockIn.Format(time.RFC3339),
		State:       e.State(),
	}
	if e.LunchStart != nil {
		v := e.LunchStart.Format(time.RFC3339)
		resp.LunchStart = &v
	}
	if e.LunchEnd != nil {
		v := e.LunchEnd.Format(time.RFC3339)
		resp.LunchEnd = &v
	}
	if e.ClockOut != nil {
		v := e.ClockOut.Format(time.RFC3339)
		resp.ClockOutTime = &v

		lunch := int64(e.LunchDuration().Minutes())
		worked := int64(e.WorkedDuration().Minutes())
		resp.LunchMinutes = &lunch
		resp.WorkedMinutes = &worked
	}
	return resp
}
