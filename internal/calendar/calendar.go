package calendar

import (
	"fmt"
	"sync"
	"time"

	"coachcal-service/internal/dateutil"
	"coachcal-service/internal/models"
	"coachcal-service/internal/timeutil"
	"coachcal-service/pkg/response"

	"github.com/google/uuid"
)

type Direction string

const (
	DirectionNext Direction = "next"
	DirectionPrev Direction = "prev"
)

// Store owns a single trainer's events and booking requests for the lifetime
// of the session, plus the navigation cursor (selected date, view mode).
// All methods serialize on an internal mutex and queries return copies, so
// readers never observe a partial mutation.
type Store struct {
	mu sync.Mutex

	events   []models.CalendarEvent
	requests []models.BookingRequest

	selectedDate time.Time
	viewMode     models.ViewMode

	now func() time.Time
}

type Options struct {
	InitialEvents   []models.CalendarEvent
	InitialRequests []models.BookingRequest

	// Now is the clock used for GoToToday and the initial cursor.
	// Defaults to time.Now.
	Now func() time.Time
}

func New(opts Options) *Store {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	s := &Store{
		events:       make([]models.CalendarEvent, 0, len(opts.InitialEvents)),
		requests:     make([]models.BookingRequest, 0, len(opts.InitialRequests)),
		selectedDate: dateutil.TruncateToDate(now()),
		viewMode:     models.ViewWeek,
		now:          now,
	}

	s.events = append(s.events, opts.InitialEvents...)
	s.requests = append(s.requests, opts.InitialRequests...)

	return s
}

// Queries

func (s *Store) Events() []models.CalendarEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.CalendarEvent, len(s.events))
	copy(out, s.events)

	return out
}

func (s *Store) Requests() []models.BookingRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.BookingRequest, len(s.requests))
	copy(out, s.requests)

	return out
}

func (s *Store) SelectedDate() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.selectedDate
}

func (s *Store) ViewMode() models.ViewMode {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.viewMode
}

// DayEvents returns events dated on the selected date.
func (s *Store) DayEvents() []models.CalendarEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.eventsOnLocked(dateutil.FormatISODate(s.selectedDate))
}

// WeekEvents returns events from the selected date's Sunday through the
// following Saturday, inclusive.
func (s *Store) WeekEvents() []models.CalendarEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.eventsBetweenLocked(dateutil.StartOfWeek(s.selectedDate), dateutil.EndOfWeek(s.selectedDate))
}

// MonthEvents returns events sharing the selected date's month and year.
func (s *Store) MonthEvents() []models.CalendarEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.eventsBetweenLocked(dateutil.StartOfMonth(s.selectedDate), dateutil.EndOfMonth(s.selectedDate))
}

func (s *Store) PendingRequests() []models.BookingRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.BookingRequest, 0)
	for _, r := range s.requests {
		if r.Status == models.RequestPending {
			out = append(out, r)
		}
	}

	return out
}

// EventsOn is the explicit-date form of DayEvents.
func (s *Store) EventsOn(date string) ([]models.CalendarEvent, error) {
	const op = "calendar.Store.EventsOn"

	if _, err := dateutil.ParseISODate(date); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.eventsOnLocked(date), nil
}

// EventsInWeek is the explicit-date form of WeekEvents.
func (s *Store) EventsInWeek(date string) ([]models.CalendarEvent, error) {
	const op = "calendar.Store.EventsInWeek"

	d, err := dateutil.ParseISODate(date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.eventsBetweenLocked(dateutil.StartOfWeek(d), dateutil.EndOfWeek(d)), nil
}

// EventsInMonth is the explicit-date form of MonthEvents.
func (s *Store) EventsInMonth(date string) ([]models.CalendarEvent, error) {
	const op = "calendar.Store.EventsInMonth"

	d, err := dateutil.ParseISODate(date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.eventsBetweenLocked(dateutil.StartOfMonth(d), dateutil.EndOfMonth(d)), nil
}

func (s *Store) eventsOnLocked(date string) []models.CalendarEvent {
	out := make([]models.CalendarEvent, 0)
	for _, e := range s.events {
		if e.Date == date {
			out = append(out, e)
		}
	}

	return out
}

// eventsBetweenLocked buckets by calendar date, from and to inclusive.
// Events with unparseable dates are skipped.
func (s *Store) eventsBetweenLocked(from, to time.Time) []models.CalendarEvent {
	out := make([]models.CalendarEvent, 0)
	for _, e := range s.events {
		d, err := dateutil.ParseISODate(e.Date)
		if err != nil {
			continue
		}
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, e)
	}

	return out
}

// Event mutations

// AddEvent assigns a fresh id and appends. Overlap with existing events is
// not checked here; callers are expected to consult IsSlotAvailable first.
func (s *Store) AddEvent(e models.CalendarEvent) models.CalendarEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = uuid.NewString()
	s.events = append(s.events, e)

	return e
}

// EventUpdate carries the fields of a partial event edit. Nil fields are
// left untouched.
type EventUpdate struct {
	Title       *string
	Date        *string
	StartTime   *string
	EndTime     *string
	SessionType *string
	ClientName  *string
	Status      *models.EventStatus
}

func (s *Store) UpdateEvent(id string, upd EventUpdate) (models.CalendarEvent, error) {
	const op = "calendar.Store.UpdateEvent"

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.eventIndexLocked(id)
	if i < 0 {
		return models.CalendarEvent{}, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	e := s.events[i]
	if upd.Title != nil {
		e.Title = *upd.Title
	}
	if upd.Date != nil {
		e.Date = *upd.Date
	}
	if upd.StartTime != nil {
		e.StartTime = *upd.StartTime
	}
	if upd.EndTime != nil {
		e.EndTime = *upd.EndTime
	}
	if upd.SessionType != nil {
		e.SessionType = *upd.SessionType
	}
	if upd.ClientName != nil {
		e.ClientName = *upd.ClientName
	}
	if upd.Status != nil {
		e.Status = *upd.Status
	}

	// A partial edit must not invert the interval; an inverted range would
	// poison the overlap math for the whole day.
	if upd.StartTime != nil || upd.EndTime != nil {
		d, err := timeutil.DurationBetween(e.StartTime, e.EndTime)
		if err != nil {
			return models.CalendarEvent{}, fmt.Errorf("%s: %w", op, err)
		}
		if d == 0 {
			return models.CalendarEvent{}, fmt.Errorf("%s: %s-%s is empty: %w", op, e.StartTime, e.EndTime, response.ErrValidation)
		}
	}

	s.events[i] = e

	return e, nil
}

func (s *Store) DeleteEvent(id string) error {
	const op = "calendar.Store.DeleteEvent"

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.eventIndexLocked(id)
	if i < 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	s.events = append(s.events[:i], s.events[i+1:]...)

	return nil
}

// UpdateEventStatus enforces the event state machine: pending may become
// confirmed or cancelled, confirmed may become cancelled, cancelled is
// terminal.
func (s *Store) UpdateEventStatus(id string, status models.EventStatus) (models.CalendarEvent, error) {
	const op = "calendar.Store.UpdateEventStatus"

	if !status.Valid() {
		return models.CalendarEvent{}, fmt.Errorf("%s: status %q: %w", op, status, response.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.eventIndexLocked(id)
	if i < 0 {
		return models.CalendarEvent{}, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	if !eventTransitionAllowed(s.events[i].Status, status) {
		return models.CalendarEvent{}, fmt.Errorf("%s: %s -> %s: %w", op, s.events[i].Status, status, response.ErrInvalidTransition)
	}

	s.events[i].Status = status

	return s.events[i], nil
}

func eventTransitionAllowed(from, to models.EventStatus) bool {
	switch from {
	case models.EventPending:
		return to == models.EventConfirmed || to == models.EventCancelled
	case models.EventConfirmed:
		return to == models.EventCancelled
	default:
		return false
	}
}

func (s *Store) eventIndexLocked(id string) int {
	for i, e := range s.events {
		if e.ID == id {
			return i
		}
	}

	return -1
}

// Request mutations

// AddRequest assigns a fresh req-prefixed id and appends. New requests
// always start pending.
func (s *Store) AddRequest(r models.BookingRequest) models.BookingRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = "req-" + uuid.NewString()
	r.Status = models.RequestPending
	s.requests = append(s.requests, r)

	return r
}

// UpdateRequestStatus resolves a pending request. Accepting synthesizes
// exactly one confirmed calendar event from the request in the same critical
// section and returns it; rejecting returns nil. Resolved requests are
// terminal.
func (s *Store) UpdateRequestStatus(id string, status models.RequestStatus) (*models.CalendarEvent, error) {
	const op = "calendar.Store.UpdateRequestStatus"

	if status != models.RequestAccepted && status != models.RequestRejected {
		return nil, fmt.Errorf("%s: status %q: %w", op, status, response.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.requestIndexLocked(id)
	if i < 0 {
		return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	req := s.requests[i]
	if req.Status != models.RequestPending {
		return nil, fmt.Errorf("%s: request already %s: %w", op, req.Status, response.ErrInvalidTransition)
	}

	if status == models.RequestRejected {
		s.requests[i].Status = models.RequestRejected
		return nil, nil
	}

	endTime, err := timeutil.AddMinutesToTime(req.Time, req.Duration)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	event := models.CalendarEvent{
		ID:          uuid.NewString(),
		Title:       req.SessionType + " Session",
		Date:        req.Date,
		StartTime:   req.Time,
		EndTime:     endTime,
		SessionType: req.SessionType,
		ClientName:  req.ClientName,
		Status:      models.EventConfirmed,
	}

	s.requests[i].Status = models.RequestAccepted
	s.events = append(s.events, event)

	return &event, nil
}

// DeleteRequest removes a request regardless of its status.
func (s *Store) DeleteRequest(id string) error {
	const op = "calendar.Store.DeleteRequest"

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.requestIndexLocked(id)
	if i < 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	s.requests = append(s.requests[:i], s.requests[i+1:]...)

	return nil
}

func (s *Store) requestIndexLocked(id string) int {
	for i, r := range s.requests {
		if r.ID == id {
			return i
		}
	}

	return -1
}

// Availability

// IsSlotAvailable checks a candidate session against the day's non-cancelled
// events.
func (s *Store) IsSlotAvailable(date, startTime string, duration int) (bool, error) {
	const op = "calendar.Store.IsSlotAvailable"

	if _, err := dateutil.ParseISODate(date); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	ok, err := timeutil.IsTimeSlotAvailable(startTime, duration, s.occupiedRanges(date))
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return ok, nil
}

// AvailableSlots lists the free start times on a date for the given session
// duration, ascending.
func (s *Store) AvailableSlots(date string, duration, startHour, endHour, intervalMinutes int) ([]string, error) {
	const op = "calendar.Store.AvailableSlots"

	if _, err := dateutil.ParseISODate(date); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	slots, err := timeutil.GetAvailableTimeSlots(duration, s.occupiedRanges(date), startHour, endHour, intervalMinutes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return slots, nil
}

func (s *Store) occupiedRanges(date string) []timeutil.TimeRange {
	s.mu.Lock()
	defer s.mu.Unlock()

	ranges := make([]timeutil.TimeRange, 0)
	for _, e := range s.events {
		if e.Date != date || e.Status == models.EventCancelled {
			continue
		}
		ranges = append(ranges, timeutil.TimeRange{Start: e.StartTime, End: e.EndTime})
	}

	return ranges
}

// Navigation

// NavigateDate moves the cursor by one day, one week, or one calendar month
// depending on the view mode.
func (s *Store) NavigateDate(direction Direction) error {
	const op = "calendar.Store.NavigateDate"

	if direction != DirectionNext && direction != DirectionPrev {
		return fmt.Errorf("%s: direction %q: %w", op, direction, response.ErrValidation)
	}

	step := 1
	if direction == DirectionPrev {
		step = -1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.viewMode {
	case models.ViewDay:
		s.selectedDate = dateutil.AddDays(s.selectedDate, step)
	case models.ViewWeek:
		s.selectedDate = dateutil.AddDays(s.selectedDate, 7*step)
	case models.ViewMonth:
		s.selectedDate = dateutil.AddMonths(s.selectedDate, step)
	}

	return nil
}

func (s *Store) GoToToday() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selectedDate = dateutil.TruncateToDate(s.now())
}

// ChangeViewMode sets the view granularity without moving the cursor.
func (s *Store) ChangeViewMode(mode models.ViewMode) error {
	const op = "calendar.Store.ChangeViewMode"

	if !mode.Valid() {
		return fmt.Errorf("%s: mode %q: %w", op, mode, response.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.viewMode = mode

	return nil
}

func (s *Store) SetSelectedDate(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selectedDate = dateutil.TruncateToDate(t)
}
