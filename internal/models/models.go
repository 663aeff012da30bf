package models

type EventStatus string

const (
	EventConfirmed EventStatus = "confirmed"
	EventPending   EventStatus = "pending"
	EventCancelled EventStatus = "cancelled"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

type ViewMode string

const (
	ViewDay   ViewMode = "day"
	ViewWeek  ViewMode = "week"
	ViewMonth ViewMode = "month"
)

// CalendarEvent is a committed session on a trainer's calendar.
// Date is YYYY-MM-DD, StartTime/EndTime are HH:MM within the same day.
type CalendarEvent struct {
	ID          string      `db:"event_id"`
	Title       string      `db:"title"`
	Date        string      `db:"event_date"`
	StartTime   string      `db:"start_time"`
	EndTime     string      `db:"end_time"`
	SessionType string      `db:"session_type"`
	ClientName  string      `db:"client_name"`
	Status      EventStatus `db:"status"`
}

// BookingRequest is a client-initiated ask awaiting trainer accept/reject.
// Time is the requested start, Duration is in minutes.
type BookingRequest struct {
	ID          string        `db:"request_id"`
	ClientName  string        `db:"client_name"`
	Date        string        `db:"request_date"`
	Time        string        `db:"start_time"`
	Duration    int           `db:"duration_minutes"`
	SessionType string        `db:"session_type"`
	Message     string        `db:"message"`
	Status      RequestStatus `db:"status"`
}

func (s EventStatus) Valid() bool {
	return s == EventConfirmed || s == EventPending || s == EventCancelled
}

func (s RequestStatus) Valid() bool {
	return s == RequestPending || s == RequestAccepted || s == RequestRejected
}

func (m ViewMode) Valid() bool {
	return m == ViewDay || m == ViewWeek || m == ViewMonth
}
