package get

import (
	"coachcal-service/api"
	"coachcal-service/internal/dateutil"
	"coachcal-service/internal/models"
	"coachcal-service/pkg/response"
	"coachcal-service/pkg/sl"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type ScheduleGetter interface {
	GetSchedule(ctx context.Context, trainerID string, view models.ViewMode, date string) (*api.ScheduleResponse, error)
}

type Response struct {
	response.Response
	Schedule *api.ScheduleResponse `json:"schedule,omitempty"`
}

// New serves the day/week/month views. View defaults to week and date to
// today, matching the calendar screen's initial state.
func New(log *slog.Logger, getter ScheduleGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedule.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		trainerID := chi.URLParam(r, "trainerID")
		if trainerID == "" {
			log.Error("trainer_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "trainer_id is required"))
			return
		}

		view := r.URL.Query().Get("view")
		if view == "" {
			view = string(models.ViewWeek)
		}

		date := r.URL.Query().Get("date")
		if date == "" {
			date = dateutil.FormatISODate(time.Now())
		}

		schedule, err := getter.GetSchedule(r.Context(), trainerID, models.ViewMode(view), date)

		if errors.Is(err, response.ErrValidation) {
			log.Error("validation failed", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION_ERROR), "validation failed"))
			return
		}

		if err != nil {
			log.Error("Failed to get schedule", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to get schedule"))
			return
		}

		log.Info("Schedule retrieved", slog.Int("count", len(schedule.Events)))
		render.JSON(w, r, Response{
			Schedule: schedule,
		})
	}
}
