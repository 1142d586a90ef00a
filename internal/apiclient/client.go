// Package apiclient talks to the server's REST API and implements the booking
// backend on top of it, so the CLI runs the same orchestration as the server.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/DeveloperForam/test-house-design/internal/booking"
	"github.com/DeveloperForam/test-house-design/internal/ledger"
	"github.com/DeveloperForam/test-house-design/internal/models"
	"github.com/DeveloperForam/test-house-design/internal/money"
)

var ErrUnauthorized = errors.New("unauthorized")

const DefaultTimeout = 15 * time.Second

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a client for baseURL (e.g. http://localhost:8080). Each request
// is bounded by timeout.
func New(baseURL, token string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// apiError is the body of any non-2xx response; the server uses either key.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e apiError) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// statusError is a non-2xx response.
type statusError struct {
	status int
	text   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.status, e.text)
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, headers map[string]string, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode >= 300 {
		var apiErr apiError
		json.NewDecoder(resp.Body).Decode(&apiErr)
		return &statusError{status: resp.StatusCode, text: apiErr.text()}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// rejections are the validation errors the server reports with a 400.
var rejections = []error{
	ledger.ErrExceedsPending,
	ledger.ErrSoldAlready,
	ledger.ErrNonPositiveAmount,
	booking.ErrInvalidMobile,
	booking.ErrInvalidAdvance,
	models.ErrInvalidPaymentDetails,
	models.ErrUnknownPaymentMethod,
	money.ErrInvalidAmount,
}

// rejection is a 400 response, matched to the sentinel its text names if any.
type rejection struct {
	text string
	err  error
}

func (r *rejection) Error() string { return r.text }

func (r *rejection) Unwrap() error { return r.err }

func rejected(text string) error {
	r := &rejection{text: text}
	for _, sentinel := range rejections {
		if strings.Contains(text, sentinel.Error()) {
			r.err = sentinel
			break
		}
	}
	return &booking.ValidationError{Err: r}
}

// classify turns a failed response into the error callers match on.
func classify(err error, conflict error) error {
	var se *statusError
	if !errors.As(err, &se) {
		return err
	}
	switch se.status {
	case http.StatusBadRequest:
		return rejected(se.text)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", models.ErrNotFound, se.text)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, se.text)
	case http.StatusConflict:
		if conflict != nil {
			return conflict
		}
	}
	return err
}

func mutationError(op string, err error, conflict error) error {
	var se *statusError
	if !errors.As(err, &se) {
		return &booking.MutationError{Op: op, Err: err}
	}
	if se.status == http.StatusBadRequest {
		return rejected(se.text)
	}
	return &booking.MutationError{Op: op, Message: se.text, Err: classify(err, conflict)}
}

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	var resp struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/login",
		map[string]string{"username": username, "password": password}, nil, &resp)
	if err != nil {
		return "", time.Time{}, classify(err, nil)
	}
	c.token = resp.Token
	return resp.Token, resp.ExpiresAt, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return classify(c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil), nil)
}

func (c *Client) GetHouse(ctx context.Context, projectID, houseNumber string) (*models.House, error) {
	var resp struct {
		Data *models.House `json:"data"`
	}
	path := fmt.Sprintf("/api/houses/%s/%s", url.PathEscape(projectID), url.PathEscape(houseNumber))
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, classify(err, nil)
	}
	return resp.Data, nil
}

// CreateBooking submits the booking form. The server assigns the ids and moves
// the house to booked in the same transaction.
func (c *Client) CreateBooking(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	req := models.CreateBookingRequest{
		ProjectID:      b.ProjectID,
		HouseNumber:    b.HouseNumber,
		CustomerName:   b.CustomerName,
		MobileNo:       b.MobileNo,
		PaymentType:    string(b.PaymentType),
		AdvancePayment: b.AdvancePayment,
		BookingDate:    b.BookingDate.String(),
	}
	var resp struct {
		Data *models.Booking `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/bookings/create", req, nil, &resp); err != nil {
		return nil, mutationError("create booking", err, booking.ErrHouseUnavailable)
	}
	return resp.Data, nil
}

func (c *Client) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	var resp struct {
		Data *models.Booking `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/payment-history/"+url.PathEscape(bookingID), nil, nil, &resp); err != nil {
		return nil, classify(err, nil)
	}
	return resp.Data, nil
}

func (c *Client) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	var resp struct {
		Data []*models.Booking `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/bookings", nil, nil, &resp); err != nil {
		return nil, classify(err, nil)
	}
	return resp.Data, nil
}

func (c *Client) ListPayments(ctx context.Context, bookingID string) ([]models.Payment, error) {
	var resp struct {
		Data []models.Payment `json:"data"`
	}
	path := "/api/payment-history?bookingId=" + url.QueryEscape(bookingID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, classify(err, nil)
	}
	return resp.Data, nil
}

// AddPayment posts the payment with its id as the idempotency key, so
// resubmitting the same payment can never record it twice.
func (c *Client) AddPayment(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	details, err := json.Marshal(p.PaymentDetails)
	if err != nil {
		return nil, &booking.MutationError{Op: "add payment", Err: err}
	}
	req := models.AddPaymentRequest{
		BookingID:           p.BookingID,
		AmountReceived:      p.AmountReceived,
		PaymentMethod:       string(p.PaymentMethod),
		PaymentDetails:      details,
		PaymentReceivedDate: p.PaymentReceivedDate.String(),
	}
	var resp struct {
		Data *models.Payment `json:"data"`
	}
	headers := map[string]string{"Idempotency-Key": p.ID}
	if err := c.do(ctx, http.MethodPost, "/api/payment-history/add-payment", req, headers, &resp); err != nil {
		return nil, mutationError("add payment", err, ledger.ErrExceedsPending)
	}
	return resp.Data, nil
}
