package status

import (
	"coachcal-service/api"
	"coachcal-service/internal/models"
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

type EventStatusUpdater interface {
	UpdateEventStatus(ctx context.Context, trainerID, eventID string, status models.EventStatus) (*api.EventResponse, error)
}

type Request struct {
	api.EventStatusRequest
}

type Response struct {
	response.Response
	Event api.EventResponse `json:"event,omitempty"`
}

func New(log *slog.Logger, updater EventStatusUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.events.status.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		trainerID := chi.URLParam(r, "trainerID")
		id := chi.URLParam(r, "id")
		if trainerID == "" || id == "" {
			log.Error("trainer_id or id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "trainer_id and id are required"))
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

		if req.Status == "" {
			log.Error("status is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "status is required"))
			return
		}

		event, err := updater.UpdateEventStatus(r.Context(), trainerID, id, models.EventStatus(req.Status))

		if errors.Is(err, response.ErrValidation) {
			log.Error("validation failed", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION_ERROR), "validation failed"))
			return
		}

		if errors.Is(err, response.ErrNotFound) {
			log.Error("resource not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
			return
		}

		if errors.Is(err, response.ErrInvalidTransition) {
			log.Error("invalid state transition", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.INVALID_TRANSITION), "invalid state transition"))
			return
		}

		if err != nil {
			log.Error("Failed to update event status", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to update event status"))
			return
		}

		log.Info("Event status updated", slog.Any("event", event))
		render.JSON(w, r, Response{
			Event: *event,
		})
	}
}
