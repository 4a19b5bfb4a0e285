package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"slotkeeper/pkg/model"
)

type EventTypeClient struct {
	httpClient *HttpClient
}

func NewEventTypeClient(baseURL string) *EventTypeClient {
	return &EventTypeClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *EventTypeClient) Create(ctx context.Context, body any) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/event-types", body)
}

func (c *EventTypeClient) List(ctx context.Context) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/event-types")
}

func (c *EventTypeClient) GetBySlug(ctx context.Context, slug string) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/event-types/"+url.PathEscape(slug))
}

func (c *EventTypeClient) Update(ctx context.Context, id string, body any) (*Response, error) {
	return c.httpClient.PUT(ctx, "/api/event-types/"+url.PathEscape(id), body)
}

func (c *EventTypeClient) Delete(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.DELETE(ctx, "/api/event-types/"+url.PathEscape(id))
}

func (c *EventTypeClient) DecodeEventType(resp *Response) (*model.EventType, error) {
	var eventType model.EventType
	if err := json.Unmarshal(resp.Body, &eventType); err != nil {
		return nil, fmt.Errorf("could not decode event type %s: %w", resp.String(), err)
	}
	return &eventType, nil
}

func (c *EventTypeClient) DecodeEventTypes(resp *Response) ([]*model.EventType, error) {
	var eventTypes []*model.EventType
	if err := json.Unmarshal(resp.Body, &eventTypes); err != nil {
		return nil, fmt.Errorf("could not decode event types %s: %w", resp.String(), err)
	}
	return eventTypes, nil
}
