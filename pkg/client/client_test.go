package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type recordedRequest struct {
	mu          sync.Mutex
	method      string
	uri         string
	contentType string
	idempotency string
	body        string
}

func newRecordingServer(t *testing.T, status int, response string) (*httptest.Server, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.method = r.Method
		rec.uri = r.URL.RequestURI()
		rec.contentType = r.Header.Get("Content-Type")
		rec.idempotency = r.Header.Get("Idempotency-Key")
		rec.body = string(body)
		rec.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestBookingClient_Requests(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK, `{}`)
	c := NewBookingClient(srv.URL)
	ctx := context.Background()

	tests := []struct {
		name       string
		call       func() (*Response, error)
		wantMethod string
		wantURI    string
	}{
		{"available slots", func() (*Response, error) {
			return c.AvailableSlots(ctx, "2026-03-02", "507f1f77bcf86cd799439011")
		}, http.MethodGet, "/api/bookings/available-slots?date=2026-03-02&eventTypeId=507f1f77bcf86cd799439011"},
		{"list all", func() (*Response, error) { return c.ListMeetings(ctx, "") }, http.MethodGet, "/api/meetings"},
		{"list upcoming", func() (*Response, error) { return c.ListMeetings(ctx, "upcoming") }, http.MethodGet, "/api/meetings?type=upcoming"},
		{"get", func() (*Response, error) { return c.GetMeeting(ctx, "abc") }, http.MethodGet, "/api/meetings/abc"},
		{"cancel", func() (*Response, error) { return c.Cancel(ctx, "abc") }, http.MethodPut, "/api/meetings/abc/cancel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.call(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.method != tt.wantMethod || rec.uri != tt.wantURI {
				t.Errorf("got %s %s, want %s %s", rec.method, rec.uri, tt.wantMethod, tt.wantURI)
			}
		})
	}
}

func TestBookingClient_CancelSendsNoBody(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK, `{}`)

	if _, err := NewBookingClient(srv.URL).Cancel(context.Background(), "abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.body != "" || rec.contentType != "" {
		t.Errorf("cancel should be bodiless, got content-type %q body %q", rec.contentType, rec.body)
	}
}

func TestBookingClient_CreateIdempotent(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusCreated, `{"id":"b1","status":"scheduled","inviteeName":"Ada"}`)
	c := NewBookingClient(srv.URL)

	resp, err := c.CreateIdempotent(context.Background(), map[string]any{"inviteeName": "Ada"}, "key-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.idempotency != "key-1" {
		t.Errorf("Idempotency-Key = %q", rec.idempotency)
	}
	if rec.contentType != "application/json" {
		t.Errorf("Content-Type = %q", rec.contentType)
	}

	var sent map[string]any
	if err := json.Unmarshal([]byte(rec.body), &sent); err != nil || sent["inviteeName"] != "Ada" {
		t.Errorf("unexpected request body %q", rec.body)
	}

	booking, err := c.DecodeBooking(resp)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if booking.ID != "b1" || booking.InviteeName != "Ada" {
		t.Errorf("unexpected booking %+v", booking)
	}
}

func TestBookingClient_DecodeSlots(t *testing.T) {
	srv, _ := newRecordingServer(t, http.StatusOK,
		`{"availableSlots":[{"startTime":"2026-03-02T14:00:00Z","endTime":"2026-03-02T14:30:00Z"}]}`)
	c := NewBookingClient(srv.URL)

	resp, err := c.AvailableSlots(context.Background(), "2026-03-02", "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	slots, err := c.DecodeSlots(resp)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("got %d slots, want 1", len(slots))
	}
	want := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	if !slots[0].StartTime.Equal(want) {
		t.Errorf("start = %s, want %s", slots[0].StartTime, want)
	}
}

func TestEventTypeClient_EscapesKey(t *testing.T) {
	srv, rec := newRecordingServer(t, http.StatusOK, `{}`)

	if _, err := NewEventTypeClient(srv.URL).GetBySlug(context.Background(), "a b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.uri != "/api/event-types/a%20b" {
		t.Errorf("uri = %q", rec.uri)
	}
}

func TestGetErrorMessage(t *testing.T) {
	srv, _ := newRecordingServer(t, http.StatusBadRequest, `{"error":"Time slot is already booked","code":"CONFLICT"}`)

	resp, err := NewBookingClient(srv.URL).Create(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if got := GetErrorMessage(resp); got != "Time slot is already booked" {
		t.Errorf("GetErrorMessage = %q", got)
	}
}

func TestWaitForHealthy(t *testing.T) {
	srv, _ := newRecordingServer(t, http.StatusOK, `{"status":"ok"}`)

	if err := NewHttpClient(srv.URL).WaitForHealthy(context.Background(), time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
