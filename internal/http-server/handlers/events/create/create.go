package create

import (
	"coachcal-service/api"
	"coachcal-service/pkg/response"
	"coachcal-service/pkg/sl"
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type EventCreator interface {
	CreateEvent(ctx context.Context, trainerID string, req *api.EventCreateRequest) (*api.EventResponse, error)
}

type Request struct {
	api.EventCreateRequest
}

type Response struct {
	response.Response
	Event api.EventResponse `json:"event,omitempty"`
}

func New(log *slog.Logger, creator EventCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.events.create.New"

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

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		if req.Date == "" || req.StartTime == "" || req.EndTime == "" {
			log.Error("date, start_time and end_time are required")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "date, start_time and end_time are required"))
			return
		}

		event, err := creator.CreateEvent(r.Context(), trainerID, &req.EventCreateRequest)

		if errors.Is(err, response.ErrValidation) {
			log.Error("validation failed", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION_ERROR), "validation failed"))
			return
		}

		if err != nil {
			log.Error("Failed to create event", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create event"))
			return
		}

		log.Info("Event created", slog.Any("event", event))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			Event: *event,
		})
	}
}
