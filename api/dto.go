package api

type EventCreateRequest struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	SessionType string `json:"session_type"`
	ClientName  string `json:"client_name"`
	Status      string `json:"status,omitempty"`
}

type EventUpdateRequest struct {
	Title       *string `json:"title,omitempty"`
	Date        *string `json:"date,omitempty"`
	StartTime   *string `json:"start_time,omitempty"`
	EndTime     *string `json:"end_time,omitempty"`
	SessionType *string `json:"session_type,omitempty"`
	ClientName  *string `json:"client_name,omitempty"`
	Status      *string `json:"status,omitempty"`
}

type EventStatusRequest struct {
	Status string `json:"status"`
}

type EventResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	SessionType string `json:"session_type"`
	ClientName  string `json:"client_name"`
	Status      string `json:"status"`
}

type ScheduleResponse struct {
	TrainerID string          `json:"trainer_id"`
	View      string          `json:"view"`
	Date      string          `json:"date"`
	Events    []EventResponse `json:"events"`
}

type BookingCreateRequest struct {
	ClientName  string `json:"client_name"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Duration    int    `json:"duration_minutes"`
	SessionType string `json:"session_type"`
	Message     string `json:"message,omitempty"`
}

type BookingStatusRequest struct {
	Status string `json:"status"`
}

type BookingResponse struct {
	ID          string `json:"id"`
	ClientName  string `json:"client_name"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Duration    int    `json:"duration_minutes"`
	SessionType string `json:"session_type"`
	Message     string `json:"message,omitempty"`
	Status      string `json:"status"`
}

// BookingResolutionResponse is returned when a request is resolved.
// Event is set only when the request was accepted.
type BookingResolutionResponse struct {
	Request BookingResponse `json:"request"`
	Event   *EventResponse  `json:"event,omitempty"`
}

type SlotsResponse struct {
	TrainerID string   `json:"trainer_id"`
	Date      string   `json:"date"`
	Duration  int      `json:"duration_minutes"`
	Slots     []string `json:"slots"`
}
