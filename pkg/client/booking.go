package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"slotkeeper/pkg/model"
)

type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseURL string) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *BookingClient) AvailableSlots(ctx context.Context, date, eventTypeID string) (*Response, error) {
	q := url.Values{}
	q.Set("date", date)
	q.Set("eventTypeId", eventTypeID)
	return c.httpClient.GET(ctx, "/api/bookings/available-slots?"+q.Encode())
}

func (c *BookingClient) Create(ctx context.Context, body any) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/bookings", body)
}

// CreateIdempotent sends key as the Idempotency-Key header so a retried
// request replays the first response.
func (c *BookingClient) CreateIdempotent(ctx context.Context, body any, key string) (*Response, error) {
	return c.httpClient.POSTWithHeaders(ctx, "/api/bookings", body, map[string]string{
		"Idempotency-Key": key,
	})
}

func (c *BookingClient) CreateRaw(ctx context.Context, rawBody []byte) (*Response, error) {
	return c.httpClient.POSTRaw(ctx, "/api/bookings", rawBody)
}

func (c *BookingClient) ListMeetings(ctx context.Context, meetingType string) (*Response, error) {
	path := "/api/meetings"
	if meetingType != "" {
		path += "?type=" + url.QueryEscape(meetingType)
	}
	return c.httpClient.GET(ctx, path)
}

func (c *BookingClient) GetMeeting(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/meetings/"+url.PathEscape(id))
}

func (c *BookingClient) Cancel(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.PUT(ctx, "/api/meetings/"+url.PathEscape(id)+"/cancel", nil)
}

func (c *BookingClient) DecodeBooking(resp *Response) (*model.BookingView, error) {
	var booking model.BookingView
	if err := json.Unmarshal(resp.Body, &booking); err != nil {
		return nil, fmt.Errorf("could not decode booking %s: %w", resp.String(), err)
	}
	return &booking, nil
}

func (c *BookingClient) DecodeBookings(resp *Response) ([]*model.BookingView, error) {
	var bookings []*model.BookingView
	if err := json.Unmarshal(resp.Body, &bookings); err != nil {
		return nil, fmt.Errorf("could not decode bookings %s: %w", resp.String(), err)
	}
	return bookings, nil
}

func (c *BookingClient) DecodeSlots(resp *Response) ([]model.SlotView, error) {
	var slots model.AvailableSlotsResponse
	if err := json.Unmarshal(resp.Body, &slots); err != nil {
		return nil, fmt.Errorf("could not decode available slots %s: %w", resp.String(), err)
	}
	return slots.AvailableSlots, nil
}
