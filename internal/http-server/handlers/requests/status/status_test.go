package status

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"coachcal-service/api"
	"coachcal-service/internal/models"
	"coachcal-service/pkg/response"

	"github.com/go-chi/chi/v5"
)

type resolverStub struct {
	resolution *api.BookingResolutionResponse
	err        error

	gotTrainer string
	gotRequest string
	gotStatus  models.RequestStatus
}

func (r *resolverStub) ResolveRequest(ctx context.Context, trainerID, requestID string, status models.RequestStatus) (*api.BookingResolutionResponse, error) {
	r.gotTrainer = trainerID
	r.gotRequest = requestID
	r.gotStatus = status
	if r.err != nil {
		return nil, r.err
	}
	return r.resolution, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// do routes a request through chi so URL params resolve.
func do(t *testing.T, resolver *resolverStub, body string) *httptest.ResponseRecorder {
	t.Helper()

	router := chi.NewRouter()
	router.Put("/trainers/{trainerID}/requests/{id}/status", New(discardLogger(), resolver))

	req := httptest.NewRequest(http.MethodPut, "/trainers/t1/requests/req-1/status", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func TestAcceptReturnsSynthesizedEvent(t *testing.T) {
	resolver := &resolverStub{
		resolution: &api.BookingResolutionResponse{
			Request: api.BookingResponse{ID: "req-1", Status: "accepted"},
			Event: &api.EventResponse{
				ID: "e1", Date: "2024-01-20", StartTime: "10:00", EndTime: "11:00", Status: "confirmed",
			},
		},
	}

	rec := do(t, resolver, `{"status":"accepted"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	if resolver.gotTrainer != "t1" || resolver.gotRequest != "req-1" {
		t.Errorf("resolver called with trainer=%q request=%q", resolver.gotTrainer, resolver.gotRequest)
	}
	if resolver.gotStatus != models.RequestAccepted {
		t.Errorf("resolver called with status %q", resolver.gotStatus)
	}

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Event == nil || resp.Event.EndTime != "11:00" {
		t.Errorf("event missing from response: %+v", resp)
	}
}

func TestRejectOmitsEvent(t *testing.T) {
	resolver := &resolverStub{
		resolution: &api.BookingResolutionResponse{
			Request: api.BookingResponse{ID: "req-1", Status: "rejected"},
		},
	}

	rec := do(t, resolver, `{"status":"rejected"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Event != nil {
		t.Errorf("rejection should carry no event: %+v", resp.Event)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		err      error
		wantCode int
		wantBody string
	}{
		{fmt.Errorf("svc: %w", response.ErrNotFound), http.StatusNotFound, string(response.NOT_FOUND)},
		{fmt.Errorf("svc: %w", response.ErrInvalidTransition), http.StatusConflict, string(response.INVALID_TRANSITION)},
		{fmt.Errorf("svc: %w", response.ErrValidation), http.StatusBadRequest, string(response.VALIDATION_ERROR)},
		{fmt.Errorf("svc: %w", response.ErrLocked), http.StatusLocked, string(response.LOCKED)},
		{fmt.Errorf("boom"), http.StatusInternalServerError, string(response.FAILED_REQUEST)},
	}

	for _, c := range cases {
		rec := do(t, &resolverStub{err: c.err}, `{"status":"accepted"}`)

		if rec.Code != c.wantCode {
			t.Errorf("%v: status %d, want %d", c.err, rec.Code, c.wantCode)
		}
		if !bytes.Contains(rec.Body.Bytes(), []byte(c.wantBody)) {
			t.Errorf("%v: body %q lacks code %q", c.err, rec.Body.String(), c.wantBody)
		}
	}
}

func TestBadRequests(t *testing.T) {
	rec := do(t, &resolverStub{}, `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status %d, want 400", rec.Code)
	}

	rec = do(t, &resolverStub{}, `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty status: status %d, want 400", rec.Code)
	}
}
