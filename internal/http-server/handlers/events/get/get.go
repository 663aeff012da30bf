package get

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

type EventGetter interface {
	GetEvent(ctx context.Context, trainerID, eventID string) (*api.EventResponse, error)
}

type Response struct {
	response.Response
	Event *api.EventResponse `json:"event,omitempty"`
}

func New(log *slog.Logger, getter EventGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.events.get.New"

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

		event, err := getter.GetEvent(r.Context(), trainerID, id)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("resource not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
			return
		}

		if err != nil {
			log.Error("Failed to get event", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to get event"))
			return
		}

		log.Info("Event retrieved", slog.Any("event", event))
		render.JSON(w, r, Response{
			Event: event,
		})
	}
}
