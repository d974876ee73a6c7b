package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"hirfa/pkg/model"
)

type Metadata struct {
	TotalCount int64 `json:"total_count"`
	Limit      int   `json:"limit"`
	Offset     int64 `json:"offset"`
}

// StatusError is returned when the API answers with an unexpected status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Message)
}

// MarketplaceClient is a typed client for the marketplace HTTP API.
type MarketplaceClient struct {
	httpClient *HttpClient
}

func NewMarketplaceClient(baseURL string) *MarketplaceClient {
	return &MarketplaceClient{httpClient: NewHttpClient(baseURL)}
}

// As returns a client acting on behalf of the holder of token.
func (c *MarketplaceClient) As(token string) *MarketplaceClient {
	return &MarketplaceClient{httpClient: c.httpClient.WithToken(token)}
}

func (c *MarketplaceClient) HTTP() *HttpClient {
	return c.httpClient
}

func (c *MarketplaceClient) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResult, error) {
	var out model.AuthResult
	if err := c.call(ctx, http.MethodPost, "/api/v1/auth/register", req, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *MarketplaceClient) Login(ctx context.Context, email, password string) (*model.AuthResult, error) {
	var out model.AuthResult
	req := model.LoginRequest{Email: email, Password: password}
	if err := c.call(ctx, http.MethodPost, "/api/v1/auth/login", req, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *MarketplaceClient) Me(ctx context.Context) (*model.User, error) {
	var out model.User
	if err := c.call(ctx, http.MethodGet, "/api/v1/auth/me", nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *MarketplaceClient) ListCraftsmen(ctx context.Context, query url.Values) ([]model.CraftsmanProfile, *Metadata, error) {
	path := "/api/v1/craftsmen"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, statusError(resp)
	}

	var wrapper struct {
		Data []model.CraftsmanProfile `json:"data"`
		Metadata
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode craftsmen list: %w", err)
	}
	return wrapper.Data, &wrapper.Metadata, nil
}

func (c *MarketplaceClient) CreateBooking(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	var out model.Booking
	if err := c.call(ctx, http.MethodPost, "/api/v1/bookings", req, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *MarketplaceClient) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	var out model.Booking
	if err := c.call(ctx, http.MethodGet, "/api/v1/bookings/id/"+url.PathEscape(id), nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *MarketplaceClient) ListBookings(ctx context.Context, limit int, offset int64) ([]model.Booking, *Metadata, error) {
	path := "/api/v1/bookings?limit=" + strconv.Itoa(limit) + "&offset=" + strconv.FormatInt(offset, 10)
	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, statusError(resp)
	}

	var wrapper struct {
		Data []model.Booking `json:"data"`
		Metadata
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode booking list: %w", err)
	}
	return wrapper.Data, &wrapper.Metadata, nil
}

func (c *MarketplaceClient) UpdateBookingStatus(ctx context.Context, id, action string) (*model.Booking, error) {
	var out model.Booking
	path := "/api/v1/bookings/id/" + url.PathEscape(id) + "/status"
	if err := c.call(ctx, http.MethodPatch, path, model.BookingAction{Action: action}, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *MarketplaceClient) CreateReview(ctx context.Context, req *model.ReviewRequest) (*model.Review, error) {
	var out model.Review
	if err := c.call(ctx, http.MethodPost, "/api/v1/reviews", req, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *MarketplaceClient) Notifications(ctx context.Context, unreadOnly bool) (*model.NotificationList, error) {
	var out model.NotificationList
	path := "/api/v1/notifications?unread_only=" + strconv.FormatBool(unreadOnly)
	if err := c.call(ctx, http.MethodGet, path, nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// call sends body and decodes the "data" member of the envelope into out.
func (c *MarketplaceClient) call(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	resp, err := c.httpClient.request(ctx, method, path, body)
	if err != nil {
		return err
	}
	if resp.StatusCode != wantStatus {
		return statusError(resp)
	}

	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return fmt.Errorf("could not decode response envelope: %w", err)
	}
	if err := json.Unmarshal(wrapper.Data, out); err != nil {
		return fmt.Errorf("could not decode response data: %w", err)
	}
	return nil
}

func statusError(resp *Response) *StatusError {
	return &StatusError{StatusCode: resp.StatusCode, Message: GetErrorMessage(resp)}
}
