package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"medcompanion/pkg/model"
)

const (
	HeaderUserID         = "X-User-ID"
	HeaderIdempotencyKey = "Idempotency-Key"
)

// CompanionClient talks to the companion HTTP API.
type CompanionClient struct {
	httpClient *HttpClient
}

func NewCompanionClient(baseURL string) *CompanionClient {
	return &CompanionClient{
		httpClient: NewHttpClient(baseURL),
	}
}

// HTTP exposes the underlying client for raw requests.
func (c *CompanionClient) HTTP() *HttpClient {
	return c.httpClient
}

// Chat sends one chat turn. An empty idempotencyKey sends none.
func (c *CompanionClient) Chat(ctx context.Context, userID int64, message, idempotencyKey string) (*model.ChatResponse, error) {
	body := model.ChatRequest{UserID: &userID, Message: message}
	resp, err := c.httpClient.POST(ctx, "/api/v1/chat", body, userHeaders(userID, idempotencyKey))
	return decodeOK[model.ChatResponse]("chat", resp, err)
}

func (c *CompanionClient) ProcessAppointment(ctx context.Context, userID int64, message, idempotencyKey string) (*model.AppointmentResponse, error) {
	body := model.AppointmentRequest{UserID: userID, Message: message}
	resp, err := c.httpClient.POST(ctx, "/api/v1/appointments/process", body, userHeaders(userID, idempotencyKey))
	return decodeOK[model.AppointmentResponse]("appointment turn", resp, err)
}

func (c *CompanionClient) ResetAppointment(ctx context.Context, userID int64) error {
	resp, err := c.httpClient.DELETE(ctx, "/api/v1/appointments/reset/"+strconv.FormatInt(userID, 10))
	if err != nil {
		return err
	}
	return resp.Expect("reset", http.StatusOK)
}

func (c *CompanionClient) GetAppointment(ctx context.Context, confirmationID string) (*model.Appointment, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/appointments/"+url.PathEscape(confirmationID))
	return decodeOK[model.Appointment]("get appointment", resp, err)
}

// ListAppointments returns a user's appointments, newest first. limit <= 0
// uses the server default.
func (c *CompanionClient) ListAppointments(ctx context.Context, userID int64, limit int) (*model.AppointmentList, error) {
	path := "/api/v1/users/" + strconv.FormatInt(userID, 10) + "/appointments"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	resp, err := c.httpClient.GET(ctx, path)
	return decodeOK[model.AppointmentList]("list appointments", resp, err)
}

func decodeOK[T any](op string, resp *Response, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	if err := resp.Expect(op, http.StatusOK); err != nil {
		return nil, err
	}
	var out T
	if err := resp.DecodeJSON(&out); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return &out, nil
}

func userHeaders(userID int64, idempotencyKey string) map[string]string {
	headers := map[string]string{HeaderUserID: strconv.FormatInt(userID, 10)}
	if idempotencyKey != "" {
		headers[HeaderIdempotencyKey] = idempotencyKey
	}
	return headers
}
