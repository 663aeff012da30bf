package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"coachcal-service/api"
	"coachcal-service/internal/calendar"
	"coachcal-service/internal/dateutil"
	"coachcal-service/internal/lock"
	"coachcal-service/internal/models"
	"coachcal-service/internal/timeutil"
	"coachcal-service/pkg/response"
)

// Store is the persistence mirror. A nil Store keeps calendars purely
// in-memory.
type Store interface {
	ListEvents(ctx context.Context, trainerID string) ([]models.CalendarEvent, error)
	ListRequests(ctx context.Context, trainerID string) ([]models.BookingRequest, error)
	SaveEvent(ctx context.Context, trainerID string, e models.CalendarEvent) error
	DeleteEvent(ctx context.Context, trainerID, eventID string) error
	SaveRequest(ctx context.Context, trainerID string, r models.BookingRequest) error
	DeleteRequest(ctx context.Context, trainerID, requestID string) error
}

// BusinessHours bounds the slot grid offered to clients.
type BusinessHours struct {
	StartHour       int
	EndHour         int
	IntervalMinutes int
}

func DefaultBusinessHours() BusinessHours {
	return BusinessHours{
		StartHour:       timeutil.DefaultStartHour,
		EndHour:         timeutil.DefaultEndHour,
		IntervalMinutes: timeutil.DefaultIntervalMinutes,
	}
}

// Service owns one calendar.Store per trainer, seeded from the persistence
// mirror on first touch. The in-memory store stays authoritative for the
// session; every mutation is mirrored back after it is applied.
type Service struct {
	store  Store
	locker lock.Locker
	hours  BusinessHours

	mu        sync.Mutex
	calendars map[string]*calendar.Store
}

func NewService(store Store, locker lock.Locker, hours BusinessHours) *Service {
	if hours.StartHour == 0 && hours.EndHour == 0 {
		hours = DefaultBusinessHours()
	}

	return &Service{
		store:     store,
		locker:    locker,
		hours:     hours,
		calendars: make(map[string]*calendar.Store),
	}
}

func (s *Service) calendarFor(ctx context.Context, trainerID string) (*calendar.Store, error) {
	const op = "service.calendarFor"

	s.mu.Lock()
	defer s.mu.Unlock()

	if cal, ok := s.calendars[trainerID]; ok {
		return cal, nil
	}

	var opts calendar.Options
	if s.store != nil {
		events, err := s.store.ListEvents(ctx, trainerID)
		if err != nil {
			return nil, fmt.Errorf("%s: seed events: %w", op, err)
		}
		requests, err := s.store.ListRequests(ctx, trainerID)
		if err != nil {
			return nil, fmt.Errorf("%s: seed requests: %w", op, err)
		}
		opts.InitialEvents = events
		opts.InitialRequests = requests
	}

	cal := calendar.New(opts)
	s.calendars[trainerID] = cal

	return cal, nil
}

// Events

func (s *Service) CreateEvent(ctx context.Context, trainerID string, req *api.EventCreateRequest) (*api.EventResponse, error) {
	const op = "service.CreateEvent"

	if err := validateEventTimes(req.Date, req.StartTime, req.EndTime); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	status := models.EventStatus(req.Status)
	if req.Status == "" {
		status = models.EventPending
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%s: status %q: %w", op, req.Status, response.ErrValidation)
	}

	cal, err := s.calendarFor(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	event := cal.AddEvent(models.CalendarEvent{
		Title:       req.Title,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		SessionType: req.SessionType,
		ClientName:  req.ClientName,
		Status:      status,
	})

	if s.store != nil {
		if err := s.store.SaveEvent(ctx, trainerID, event); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	resp := eventResponse(event)

	return &resp, nil
}

func (s *Service) GetEvent(ctx context.Context, trainerID, eventID string) (*api.EventResponse, error) {
	const op = "service.GetEvent"

	cal, err := s.calendarFor(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, e := range cal.Events() {
		if e.ID == eventID {
			resp := eventResponse(e)
			return &resp, nil
		}
	}

	return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
}

// GetSchedule returns the day, week, or month bucket anchored at date.
func (s *Service) GetSchedule(ctx context.Context, trainerID string, view models.ViewMode, date string) (*api.ScheduleResponse, error) {
	const op = "service.GetSchedule"

	if !view.Valid() {
		return nil, fmt.Errorf("%s: view %q: %w", op, view, response.ErrValidation)
	}

	cal, err := s.calendarFor(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var events []models.CalendarEvent
	switch view {
	case models.ViewDay:
		events, err = cal.EventsOn(date)
	case models.ViewWeek:
		events, err = cal.EventsInWeek(date)
	case models.ViewMonth:
		events, err = cal.EventsInMonth(date)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := &api.ScheduleResponse{
		TrainerID: trainerID,
		View:      string(view),
		Date:      date,
		Events:    make([]api.EventResponse, 0, len(events)),
	}
	for _, e := range events {
		resp.Events = append(resp.Events, eventResponse(e))
	}

	return resp, nil
}

func (s *Service) UpdateEvent(ctx context.Context, trainerID, eventID string, req *api.EventUpdateRequest) (*api.EventResponse, error) {
	const op = "service.UpdateEvent"

	upd, err := eventUpdateFromRequest(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cal, err := s.calendarFor(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	event, err := cal.UpdateEvent(eventID, upd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.store != nil {
		if err := s.store.SaveEvent(ctx, trainerID, event); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	resp := eventResponse(event)

	return &resp, nil
}

func (s *Service) UpdateEventStatus(ctx context.Context, trainerID, eventID string, status models.EventStatus) (*api.EventResponse, error) {
	const op = "service.UpdateEventStatus"

	cal, err := s.calendarFor(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	event, err := cal.UpdateEventStatus(eventID, status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.store != nil {
		if err := s.store.SaveEvent(ctx, trainerID, event); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	resp := eventResponse(event)

	return &resp, nil
}

func (s *Service) DeleteEvent(ctx context.Context, trainerID, eventID string) error {
	const op = "service.DeleteEvent"

	cal, err := s.calendarFor(ctx, trainerID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := cal.DeleteEvent(eventID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if s.store != nil {
		if err := s.store.DeleteEvent(ctx, trainerID, eventID); err != nil && !errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

// Requests

func (s *Service) CreateRequest(ctx context.Context, trainerID string, req *api.BookingCreateRequest) (*api.BookingResponse, error) {
	const op = "service.CreateRequest"

	if _, err := dateutil.ParseISODate(req.Date); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if req.Duration <= 0 {
		return nil, fmt.Errorf("%s: duration %d: %w", op, req.Duration, response.ErrValidation)
	}
	// The requested session must fit before midnight.
	if _, err := timeutil.AddMinutesToTime(req.Time, req.Duration); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cal, err := s.calendarFor(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	request := cal.AddRequest(models.BookingRequest{
		ClientName:  req.ClientName,
		Date:        req.Date,
		Time:        req.Time,
		Duration:    req.Duration,
		SessionType: req.SessionType,
		Message:     req.Message,
	})

	if s.store != nil {
		if err := s.store.SaveRequest(ctx, trainerID, request); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	resp := bookingResponse(request)

	return &resp, nil
}

func (s *Service) ListPendingRequests(ctx context.Context, trainerID string) ([]api.BookingResponse, error) {
	const op = "service.ListPendingRequests"

	cal, err := s.calendarFor(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pending := cal.PendingRequests()
	result := make([]api.BookingResponse, 0, len(pending))
	for _, r := range pending {
		result = append(result, bookingResponse(r))
	}

	return result, nil
}

// ResolveRequest accepts or rejects a pending booking request. Acceptance
// synthesizes the confirmed event atomically in the calendar store; the
// trainer lock keeps two surfaces from resolving the same request across
// instances.
func (s *Service) ResolveRequest(ctx context.Context, trainerID, requestID string, status models.RequestStatus) (*api.BookingResolutionResponse, error) {
	const op = "service.ResolveRequest"

	if s.locker != nil {
		lockKey := fmt.Sprintf("trainer:%s", trainerID)

		locked, err := s.locker.Lock(ctx, lockKey, 10*time.Second)
		if err != nil {
			return nil, fmt.Errorf("%s: lock error: %w", op, err)
		}
		if !locked {
			return nil, fmt.Errorf("%s: %w", op, response.ErrLocked)
		}
		defer func() {
			_ = s.locker.Unlock(ctx, lockKey)
		}()
	}

	cal, err := s.calendarFor(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	event, err := cal.UpdateRequestStatus(requestID, status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var request models.BookingRequest
	for _, r := range cal.Requests() {
		if r.ID == requestID {
			request = r
			break
		}
	}

	if s.store != nil {
		if err := s.store.SaveRequest(ctx, trainerID, request); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if event != nil {
			if err := s.store.SaveEvent(ctx, trainerID, *event); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}
	}

	resp := &api.BookingResolutionResponse{
		Request: bookingResponse(request),
	}
	if event != nil {
		er := eventResponse(*event)
		resp.Event = &er
	}

	return resp, nil
}

func (s *Service) DeleteRequest(ctx context.Context, trainerID, requestID string) error {
	const op = "service.DeleteRequest"

	cal, err := s.calendarFor(ctx, trainerID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := cal.DeleteRequest(requestID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if s.store != nil {
		if err := s.store.DeleteRequest(ctx, trainerID, requestID); err != nil && !errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

// Slots

// AvailableSlots lists free start times on a date for a session duration,
// bounded by the configured business hours.
func (s *Service) AvailableSlots(ctx context.Context, trainerID, date string, duration int) (*api.SlotsResponse, error) {
	const op = "service.AvailableSlots"

	if duration <= 0 {
		return nil, fmt.Errorf("%s: duration %d: %w", op, duration, response.ErrValidation)
	}

	cal, err := s.calendarFor(ctx, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	slots, err := cal.AvailableSlots(date, duration, s.hours.StartHour, s.hours.EndHour, s.hours.IntervalMinutes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.SlotsResponse{
		TrainerID: trainerID,
		Date:      date,
		Duration:  duration,
		Slots:     slots,
	}, nil
}

// helpers

func validateEventTimes(date, startTime, endTime string) error {
	if _, err := dateutil.ParseISODate(date); err != nil {
		return err
	}

	start, err := timeutil.TimeToMinutes(startTime)
	if err != nil {
		return err
	}
	end, err := timeutil.TimeToMinutes(endTime)
	if err != nil {
		return err
	}
	if start >= end {
		return fmt.Errorf("start_time %s is not before end_time %s: %w", startTime, endTime, response.ErrValidation)
	}

	return nil
}

func eventUpdateFromRequest(req *api.EventUpdateRequest) (calendar.EventUpdate, error) {
	var upd calendar.EventUpdate

	if req.Date != nil {
		if _, err := dateutil.ParseISODate(*req.Date); err != nil {
			return upd, err
		}
		upd.Date = req.Date
	}
	if req.StartTime != nil {
		if _, err := timeutil.TimeToMinutes(*req.StartTime); err != nil {
			return upd, err
		}
		upd.StartTime = req.StartTime
	}
	if req.EndTime != nil {
		if _, err := timeutil.TimeToMinutes(*req.EndTime); err != nil {
			return upd, err
		}
		upd.EndTime = req.EndTime
	}
	if req.Status != nil {
		status := models.EventStatus(*req.Status)
		if !status.Valid() {
			return upd, fmt.Errorf("status %q: %w", *req.Status, response.ErrValidation)
		}
		upd.Status = &status
	}

	upd.Title = req.Title
	upd.SessionType = req.SessionType
	upd.ClientName = req.ClientName

	return upd, nil
}

func eventResponse(e models.CalendarEvent) api.EventResponse {
	return api.EventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Date:        e.Date,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		SessionType: e.SessionType,
		ClientName:  e.ClientName,
		Status:      string(e.Status),
	}
}

func bookingResponse(r models.BookingRequest) api.BookingResponse {
	return api.BookingResponse{
		ID:          r.ID,
		ClientName:  r.ClientName,
		Date:        r.Date,
		Time:        r.Time,
		Duration:    r.Duration,
		SessionType: r.SessionType,
		Message:     r.Message,
		Status:      string(r.Status),
	}
}
