package entity

import (
	"time"
)

const (
	WorkshopDateLayout = "2006-01-02"
	WorkshopTimeLayout = "15:04"

	// UnregisterCutoff is how close to the start a registration becomes final.
	UnregisterCutoff = 2 * time.Hour
)

type Workshop struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	MeetingLink string `json:"meetingLink"`
	Description string `json:"description"`
	Instructor  string `json:"instructor"`
	Material    string `json:"material,omitempty"`
}

// StartsAt combines Date and Time in loc.
func (w Workshop) StartsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(WorkshopDateLayout+"T"+WorkshopTimeLayout, w.Date+"T"+w.Time, loc)
}

// UnregisterOpen reports whether a student may still withdraw at now.
// Closed when the start is UnregisterCutoff or less away, already past,
// or cannot be parsed.
func (w Workshop) UnregisterOpen(now time.Time) bool {
	start, err := w.StartsAt(now.Location())
	if err != nil {
		return false
	}
	return start.Sub(now) > UnregisterCutoff
}

type Registration struct {
	Username   string `json:"username"`
	WorkshopID int64  `json:"workshopId"`
}

// AttendanceMark is one present/absent decision posted by staff.
type AttendanceMark struct {
	WorkshopID int64  `json:"workshopId"`
	Username   string `json:"username"`
	IsPresent  bool   `json:"isPresent"`
}

type AttendanceRecord struct {
	WorkshopID   int64  `json:"workshopId"`
	WorkshopName string `json:"workshopName"`
	Username     string `json:"username"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	IsPresent    bool   `json:"isPresent"`
}

type Participant struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}
