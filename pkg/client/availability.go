package client

import (
	"context"
	"encoding/json"
	"fmt"

	"slotkeeper/pkg/model"
)

type AvailabilityClient struct {
	httpClient *HttpClient
}

func NewAvailabilityClient(baseURL string) *AvailabilityClient {
	return &AvailabilityClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *AvailabilityClient) Get(ctx context.Context) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/availability")
}

func (c *AvailabilityClient) Replace(ctx context.Context, body any) (*Response, error) {
	return c.httpClient.PUT(ctx, "/api/availability", body)
}

func (c *AvailabilityClient) DecodeAvailability(resp *Response) (*model.Availability, error) {
	var availability model.Availability
	if err := json.Unmarshal(resp.Body, &availability); err != nil {
		return nil, fmt.Errorf("could not decode availability %s: %w", resp.String(), err)
	}
	return &availability, nil
}
