package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"coachcal-service/internal/models"
	"coachcal-service/pkg/response"

	_ "github.com/lib/pq"
)

// Storage mirrors the in-memory calendar stores into postgres. It seeds a
// trainer's store on first touch and receives every mutation afterwards.
type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// #### events ####

func (s *Storage) ListEvents(ctx context.Context, trainerID string) ([]models.CalendarEvent, error) {
	const op = "storage.postgres.ListEvents"

	rows, err := s.db.QueryContext(ctx, `
		SELECT event_id, title, event_date, start_time, end_time, session_type, client_name, status
		FROM calendar_events
		WHERE trainer_id = $1
		ORDER BY event_date, start_time`, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var events []models.CalendarEvent
	for rows.Next() {
		var e models.CalendarEvent
		if err := rows.Scan(&e.ID, &e.Title, &e.Date, &e.StartTime, &e.EndTime, &e.SessionType, &e.ClientName, &e.Status); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return events, nil
}

func (s *Storage) SaveEvent(ctx context.Context, trainerID string, e models.CalendarEvent) error {
	const op = "storage.postgres.SaveEvent"

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO calendar_events (event_id, trainer_id, title, event_date, start_time, end_time, session_type, client_name, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (event_id)
		DO UPDATE
		SET title = EXCLUDED.title,
			event_date = EXCLUDED.event_date,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			session_type = EXCLUDED.session_type,
			client_name = EXCLUDED.client_name,
			status = EXCLUDED.status;
		`,
		e.ID, trainerID, e.Title, e.Date, e.StartTime, e.EndTime, e.SessionType, e.ClientName, string(e.Status),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) DeleteEvent(ctx context.Context, trainerID, eventID string) error {
	const op = "storage.postgres.DeleteEvent"

	res, err := s.db.ExecContext(ctx, `DELETE FROM calendar_events WHERE trainer_id = $1 AND event_id = $2`, trainerID, eventID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

// #### requests ####

func (s *Storage) ListRequests(ctx context.Context, trainerID string) ([]models.BookingRequest, error) {
	const op = "storage.postgres.ListRequests"

	rows, err := s.db.QueryContext(ctx, `
		SELECT request_id, client_name, request_date, start_time, duration_minutes, session_type, message, status
		FROM booking_requests
		WHERE trainer_id = $1
		ORDER BY request_date, start_time`, trainerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var requests []models.BookingRequest
	for rows.Next() {
		var r models.BookingRequest
		if err := rows.Scan(&r.ID, &r.ClientName, &r.Date, &r.Time, &r.Duration, &r.SessionType, &r.Message, &r.Status); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		requests = append(requests, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return requests, nil
}

func (s *Storage) SaveRequest(ctx context.Context, trainerID string, r models.BookingRequest) error {
	const op = "storage.postgres.SaveRequest"

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO booking_requests (request_id, trainer_id, client_name, request_date, start_time, duration_minutes, session_type, message, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (request_id)
		DO UPDATE
		SET client_name = EXCLUDED.client_name,
			request_date = EXCLUDED.request_date,
			start_time = EXCLUDED.start_time,
			duration_minutes = EXCLUDED.duration_minutes,
			session_type = EXCLUDED.session_type,
			message = EXCLUDED.message,
			status = EXCLUDED.status;
		`,
		r.ID, trainerID, r.ClientName, r.Date, r.Time, r.Duration, r.SessionType, r.Message, string(r.Status),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) DeleteRequest(ctx context.Context, trainerID, requestID string) error {
	const op = "storage.postgres.DeleteRequest"

	res, err := s.db.ExecContext(ctx, `DELETE FROM booking_requests WHERE trainer_id = $1 AND request_id = $2`, trainerID, requestID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}
