package get

import (
	"coachcal-service/api"
	"coachcal-service/pkg/response"
	"coachcal-service/pkg/sl"
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type PendingLister interface {
	ListPendingRequests(ctx context.Context, trainerID string) ([]api.BookingResponse, error)
}

type Response struct {
	response.Response
	Requests []api.BookingResponse `json:"requests"`
	Total    int                   `json:"total"`
}

func New(log *slog.Logger, lister PendingLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.requests.get.New"

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

		requests, err := lister.ListPendingRequests(r.Context(), trainerID)

		if err != nil {
			log.Error("Failed to list requests", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list requests"))
			return
		}

		log.Info("Pending requests retrieved", slog.Int("count", len(requests)))
		render.JSON(w, r, Response{
			Requests: requests,
			Total:    len(requests),
		})
	}
}
