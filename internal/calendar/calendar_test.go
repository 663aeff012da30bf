package calendar

import (
	"errors"
	"strings"
	"testing"
	"time"

	"coachcal-service/internal/models"
	"coachcal-service/pkg/response"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()

	if opts.Now == nil {
		opts.Now = func() time.Time { return date(2024, time.January, 17) }
	}

	return New(opts)
}

func seedEvent(date, start, end string, status models.EventStatus) models.CalendarEvent {
	return models.CalendarEvent{
		ID:          "evt-" + date + "-" + start,
		Title:       "Strength Training Session",
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		SessionType: "Strength Training",
		ClientName:  "Alex",
		Status:      status,
	}
}

func TestDayEvents(t *testing.T) {
	s := newTestStore(t, Options{
		InitialEvents: []models.CalendarEvent{
			seedEvent("2024-01-17", "09:00", "10:00", models.EventConfirmed),
			seedEvent("2024-01-18", "09:00", "10:00", models.EventConfirmed),
		},
	})
	s.SetSelectedDate(date(2024, time.January, 17))

	got := s.DayEvents()
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	if got[0].Date != "2024-01-17" {
		t.Errorf("got event on %s", got[0].Date)
	}
}

func TestWeekEventsBucketsSundayThroughSaturday(t *testing.T) {
	s := newTestStore(t, Options{
		InitialEvents: []models.CalendarEvent{
			seedEvent("2024-01-13", "09:00", "10:00", models.EventConfirmed), // Saturday before
			seedEvent("2024-01-14", "09:00", "10:00", models.EventConfirmed), // Sunday
			seedEvent("2024-01-17", "09:00", "10:00", models.EventConfirmed), // Wednesday
			seedEvent("2024-01-20", "09:00", "10:00", models.EventConfirmed), // Saturday
			seedEvent("2024-01-21", "09:00", "10:00", models.EventConfirmed), // Sunday after
		},
	})
	// Cursor on a Wednesday.
	s.SetSelectedDate(date(2024, time.January, 17))

	got := s.WeekEvents()
	if len(got) != 3 {
		t.Fatalf("got %d events, want 3", len(got))
	}
	for _, e := range got {
		if e.Date < "2024-01-14" || e.Date > "2024-01-20" {
			t.Errorf("event on %s is outside the week", e.Date)
		}
	}
}

func TestMonthEvents(t *testing.T) {
	s := newTestStore(t, Options{
		InitialEvents: []models.CalendarEvent{
			seedEvent("2024-01-01", "09:00", "10:00", models.EventConfirmed),
			seedEvent("2024-01-31", "09:00", "10:00", models.EventConfirmed),
			seedEvent("2024-02-01", "09:00", "10:00", models.EventConfirmed),
			seedEvent("2023-01-15", "09:00", "10:00", models.EventConfirmed),
		},
	})
	s.SetSelectedDate(date(2024, time.January, 15))

	got := s.MonthEvents()
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
}

func TestQueriesReturnCopies(t *testing.T) {
	s := newTestStore(t, Options{
		InitialEvents: []models.CalendarEvent{
			seedEvent("2024-01-17", "09:00", "10:00", models.EventConfirmed),
		},
	})

	events := s.Events()
	events[0].Title = "mutated"

	if s.Events()[0].Title == "mutated" {
		t.Error("query result aliases store state")
	}
}

func TestAddEventAssignsUniqueIDs(t *testing.T) {
	s := newTestStore(t, Options{})

	a := s.AddEvent(seedEvent("2024-01-17", "09:00", "10:00", models.EventPending))
	b := s.AddEvent(seedEvent("2024-01-17", "09:30", "10:30", models.EventPending))

	if a.ID == "" || b.ID == "" || a.ID == b.ID {
		t.Fatalf("ids not unique: %q, %q", a.ID, b.ID)
	}

	// Overlap is deliberately not checked on direct adds; both must land.
	if len(s.Events()) != 2 {
		t.Fatalf("got %d events, want 2", len(s.Events()))
	}
}

func TestUpdateEventMergesFields(t *testing.T) {
	s := newTestStore(t, Options{})
	e := s.AddEvent(seedEvent("2024-01-17", "09:00", "10:00", models.EventPending))

	title := "Mobility Session"
	end := "10:30"
	got, err := s.UpdateEvent(e.ID, EventUpdate{Title: &title, EndTime: &end})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Title != "Mobility Session" || got.EndTime != "10:30" {
		t.Errorf("merge failed: %+v", got)
	}
	if got.StartTime != "09:00" || got.ClientName != "Alex" {
		t.Errorf("untouched fields changed: %+v", got)
	}
}

func TestUpdateEventRejectsInvertedInterval(t *testing.T) {
	s := newTestStore(t, Options{})
	e := s.AddEvent(seedEvent("2024-01-17", "09:00", "10:00", models.EventPending))

	// Moving only the start past the existing end must not leave the store
	// holding an inverted range.
	start := "11:00"
	if _, err := s.UpdateEvent(e.ID, EventUpdate{StartTime: &start}); !errors.Is(err, response.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}

	end := "09:00"
	if _, err := s.UpdateEvent(e.ID, EventUpdate{EndTime: &end}); !errors.Is(err, response.ErrValidation) {
		t.Fatalf("want ErrValidation for empty interval, got %v", err)
	}

	got := s.Events()[0]
	if got.StartTime != "09:00" || got.EndTime != "10:00" {
		t.Errorf("rejected update mutated the event: %+v", got)
	}

	// The untouched event still occupies its slot.
	ok, err := s.IsSlotAvailable("2024-01-17", "09:30", 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("occupied slot reported available")
	}
}

func TestUpdateEventNotFound(t *testing.T) {
	s := newTestStore(t, Options{})

	if _, err := s.UpdateEvent("missing", EventUpdate{}); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
	if err := s.DeleteEvent("missing"); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestDeleteEvent(t *testing.T) {
	s := newTestStore(t, Options{})
	e := s.AddEvent(seedEvent("2024-01-17", "09:00", "10:00", models.EventPending))

	if err := s.DeleteEvent(e.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Events()) != 0 {
		t.Error("event not removed")
	}
}

func TestEventStatusMachine(t *testing.T) {
	s := newTestStore(t, Options{})
	e := s.AddEvent(seedEvent("2024-01-17", "09:00", "10:00", models.EventPending))

	if _, err := s.UpdateEventStatus(e.ID, models.EventConfirmed); err != nil {
		t.Fatalf("pending -> confirmed: %v", err)
	}

	// confirmed -> pending is not a modeled transition.
	if _, err := s.UpdateEventStatus(e.ID, models.EventPending); !errors.Is(err, response.ErrInvalidTransition) {
		t.Errorf("confirmed -> pending: want ErrInvalidTransition, got %v", err)
	}

	if _, err := s.UpdateEventStatus(e.ID, models.EventCancelled); err != nil {
		t.Fatalf("confirmed -> cancelled: %v", err)
	}

	// cancelled is terminal.
	if _, err := s.UpdateEventStatus(e.ID, models.EventConfirmed); !errors.Is(err, response.ErrInvalidTransition) {
		t.Errorf("cancelled -> confirmed: want ErrInvalidTransition, got %v", err)
	}

	if _, err := s.UpdateEventStatus(e.ID, models.EventStatus("done")); !errors.Is(err, response.ErrValidation) {
		t.Errorf("unknown status: want ErrValidation, got %v", err)
	}
}

func TestAddRequest(t *testing.T) {
	s := newTestStore(t, Options{})

	r := s.AddRequest(models.BookingRequest{
		ClientName:  "Alex",
		Date:        "2024-01-20",
		Time:        "10:00",
		Duration:    60,
		SessionType: "Strength Training",
		Status:      models.RequestAccepted, // must be ignored
	})

	if !strings.HasPrefix(r.ID, "req-") {
		t.Errorf("request id %q lacks req- prefix", r.ID)
	}
	if r.Status != models.RequestPending {
		t.Errorf("new request status %q, want pending", r.Status)
	}
	if len(s.PendingRequests()) != 1 {
		t.Error("request not visible in PendingRequests")
	}
}

func TestAcceptRequestSynthesizesEvent(t *testing.T) {
	s := newTestStore(t, Options{
		InitialRequests: []models.BookingRequest{{
			ID:          "req-1",
			ClientName:  "Alex",
			Date:        "2024-01-20",
			Time:        "10:00",
			Duration:    60,
			SessionType: "Strength Training",
			Status:      models.RequestPending,
		}},
	})

	event, err := s.UpdateRequestStatus("req-1", models.RequestAccepted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event == nil {
		t.Fatal("accepted request produced no event")
	}

	if event.Title != "Strength Training Session" {
		t.Errorf("title %q", event.Title)
	}
	if event.Date != "2024-01-20" || event.StartTime != "10:00" || event.EndTime != "11:00" {
		t.Errorf("wrong interval: %+v", event)
	}
	if event.Status != models.EventConfirmed {
		t.Errorf("status %q, want confirmed", event.Status)
	}
	if event.ClientName != "Alex" {
		t.Errorf("client %q", event.ClientName)
	}

	if len(s.PendingRequests()) != 0 {
		t.Error("accepted request still pending")
	}
}

func TestAcceptedEventAppearsInDayView(t *testing.T) {
	s := newTestStore(t, Options{
		InitialRequests: []models.BookingRequest{{
			ID:          "req-1",
			ClientName:  "Alex",
			Date:        "2024-01-20",
			Time:        "10:00",
			Duration:    60,
			SessionType: "Strength Training",
			Status:      models.RequestPending,
		}},
	})

	if _, err := s.UpdateRequestStatus("req-1", models.RequestAccepted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.SetSelectedDate(date(2024, time.January, 20))

	got := s.DayEvents()
	if len(got) != 1 {
		t.Fatalf("got %d day events, want exactly 1", len(got))
	}
	e := got[0]
	if e.StartTime != "10:00" || e.EndTime != "11:00" || e.Status != models.EventConfirmed {
		t.Errorf("unexpected event: %+v", e)
	}
}

func TestRejectRequestProducesNoEvent(t *testing.T) {
	s := newTestStore(t, Options{
		InitialRequests: []models.BookingRequest{{
			ID:       "req-1",
			Date:     "2024-01-20",
			Time:     "10:00",
			Duration: 60,
			Status:   models.RequestPending,
		}},
	})

	event, err := s.UpdateRequestStatus("req-1", models.RequestRejected)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event != nil {
		t.Error("rejected request produced an event")
	}
	if len(s.Events()) != 0 {
		t.Error("store gained an event on rejection")
	}
}

func TestResolvedRequestsAreTerminal(t *testing.T) {
	s := newTestStore(t, Options{
		InitialRequests: []models.BookingRequest{{
			ID:       "req-1",
			Date:     "2024-01-20",
			Time:     "10:00",
			Duration: 60,
			Status:   models.RequestPending,
		}},
	})

	if _, err := s.UpdateRequestStatus("req-1", models.RequestAccepted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A second resolution must never silently flip the status.
	if _, err := s.UpdateRequestStatus("req-1", models.RequestRejected); !errors.Is(err, response.ErrInvalidTransition) {
		t.Fatalf("want ErrInvalidTransition, got %v", err)
	}

	for _, r := range s.Requests() {
		if r.ID == "req-1" && r.Status != models.RequestAccepted {
			t.Errorf("status flipped to %q", r.Status)
		}
	}

	// And accepting twice must not synthesize a second event.
	if len(s.Events()) != 1 {
		t.Errorf("got %d events, want 1", len(s.Events()))
	}
}

func TestUpdateRequestStatusErrors(t *testing.T) {
	s := newTestStore(t, Options{})

	if _, err := s.UpdateRequestStatus("missing", models.RequestAccepted); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}

	r := s.AddRequest(models.BookingRequest{Date: "2024-01-20", Time: "10:00", Duration: 60})
	if _, err := s.UpdateRequestStatus(r.ID, models.RequestPending); !errors.Is(err, response.ErrValidation) {
		t.Errorf("pending is not a resolution: want ErrValidation, got %v", err)
	}
}

func TestAcceptRequestCrossingMidnightFails(t *testing.T) {
	s := newTestStore(t, Options{})
	r := s.AddRequest(models.BookingRequest{Date: "2024-01-20", Time: "23:30", Duration: 60})

	if _, err := s.UpdateRequestStatus(r.ID, models.RequestAccepted); !errors.Is(err, response.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}

	// The failed acceptance must not consume the request.
	if len(s.PendingRequests()) != 1 {
		t.Error("request left non-pending after failed acceptance")
	}
	if len(s.Events()) != 0 {
		t.Error("event synthesized despite failure")
	}
}

func TestAcceptRequestEndingAtMidnightFails(t *testing.T) {
	s := newTestStore(t, Options{})
	r := s.AddRequest(models.BookingRequest{Date: "2024-01-20", Time: "23:00", Duration: 60})

	// 23:00+60m would end at 24:00, which is not a representable time; an
	// accepted event with that end would break every later availability
	// query for the day.
	if _, err := s.UpdateRequestStatus(r.ID, models.RequestAccepted); !errors.Is(err, response.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
	if len(s.Events()) != 0 {
		t.Error("event synthesized despite failure")
	}

	if _, err := s.AvailableSlots("2024-01-20", 30, 6, 22, 30); err != nil {
		t.Errorf("availability broken after failed acceptance: %v", err)
	}
}

func TestDeleteRequest(t *testing.T) {
	s := newTestStore(t, Options{})
	r := s.AddRequest(models.BookingRequest{Date: "2024-01-20", Time: "10:00", Duration: 60})

	if err := s.DeleteRequest(r.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.DeleteRequest(r.ID); !errors.Is(err, response.ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestIsSlotAvailableIgnoresCancelledEvents(t *testing.T) {
	s := newTestStore(t, Options{
		InitialEvents: []models.CalendarEvent{
			seedEvent("2024-01-17", "09:00", "10:00", models.EventCancelled),
			seedEvent("2024-01-17", "11:00", "12:00", models.EventConfirmed),
		},
	})

	ok, err := s.IsSlotAvailable("2024-01-17", "09:00", 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("cancelled event should not block the slot")
	}

	ok, err = s.IsSlotAvailable("2024-01-17", "11:30", 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("confirmed event should block the slot")
	}
}

func TestAvailableSlots(t *testing.T) {
	s := newTestStore(t, Options{
		InitialEvents: []models.CalendarEvent{
			seedEvent("2024-01-17", "09:00", "10:00", models.EventConfirmed),
		},
	})

	slots, err := s.AvailableSlots("2024-01-17", 60, 8, 11, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"08:00", "10:00"}
	if len(slots) != len(want) {
		t.Fatalf("got %v, want %v", slots, want)
	}
	for i := range want {
		if slots[i] != want[i] {
			t.Fatalf("got %v, want %v", slots, want)
		}
	}

	// Another day is wide open.
	slots, err = s.AvailableSlots("2024-01-18", 60, 8, 11, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 5 {
		t.Errorf("open day: got %v", slots)
	}
}

func TestNavigateDateByMode(t *testing.T) {
	s := newTestStore(t, Options{})
	s.SetSelectedDate(date(2024, time.January, 17))

	if err := s.ChangeViewMode(models.ViewDay); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.NavigateDate(DirectionNext); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.SelectedDate(); !got.Equal(date(2024, time.January, 18)) {
		t.Errorf("day next: got %v", got)
	}

	if err := s.ChangeViewMode(models.ViewWeek); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.NavigateDate(DirectionPrev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.SelectedDate(); !got.Equal(date(2024, time.January, 11)) {
		t.Errorf("week prev: got %v", got)
	}
}

func TestNavigateMonthRollsOverCalendarCorrectly(t *testing.T) {
	s := newTestStore(t, Options{})
	s.SetSelectedDate(date(2024, time.January, 31))

	if err := s.ChangeViewMode(models.ViewMonth); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.NavigateDate(DirectionNext); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := s.SelectedDate()
	if got.Year() != 2024 || got.Month() != time.February {
		t.Fatalf("got %v, want a date in February 2024", got)
	}
}

func TestNavigateDateInvalidDirection(t *testing.T) {
	s := newTestStore(t, Options{})

	if err := s.NavigateDate(Direction("sideways")); !errors.Is(err, response.ErrValidation) {
		t.Errorf("want ErrValidation, got %v", err)
	}
}

func TestGoToToday(t *testing.T) {
	today := date(2024, time.March, 5)
	s := newTestStore(t, Options{Now: func() time.Time { return today }})
	s.SetSelectedDate(date(2024, time.January, 1))

	s.GoToToday()

	if got := s.SelectedDate(); !got.Equal(today) {
		t.Errorf("got %v, want %v", got, today)
	}
}

func TestChangeViewModeKeepsCursor(t *testing.T) {
	s := newTestStore(t, Options{})
	s.SetSelectedDate(date(2024, time.January, 17))

	if err := s.ChangeViewMode(models.ViewMonth); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.SelectedDate(); !got.Equal(date(2024, time.January, 17)) {
		t.Errorf("cursor moved to %v", got)
	}
	if s.ViewMode() != models.ViewMonth {
		t.Errorf("mode is %q", s.ViewMode())
	}

	if err := s.ChangeViewMode(models.ViewMode("year")); !errors.Is(err, response.ErrValidation) {
		t.Errorf("want ErrValidation, got %v", err)
	}
}

func TestExplicitDateQueries(t *testing.T) {
	s := newTestStore(t, Options{
		InitialEvents: []models.CalendarEvent{
			seedEvent("2024-01-14", "09:00", "10:00", models.EventConfirmed),
			seedEvent("2024-01-20", "09:00", "10:00", models.EventConfirmed),
			seedEvent("2024-02-05", "09:00", "10:00", models.EventConfirmed),
		},
	})

	week, err := s.EventsInWeek("2024-01-17")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(week) != 2 {
		t.Errorf("week: got %d events, want 2", len(week))
	}

	month, err := s.EventsInMonth("2024-02-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(month) != 1 {
		t.Errorf("month: got %d events, want 1", len(month))
	}

	if _, err := s.EventsOn("bogus"); !errors.Is(err, response.ErrValidation) {
		t.Errorf("want ErrValidation, got %v", err)
	}
}
