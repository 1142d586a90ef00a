package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DeveloperForam/test-house-design/internal/booking"
	"github.com/DeveloperForam/test-house-design/internal/ledger"
	"github.com/DeveloperForam/test-house-design/internal/models"
	"github.com/DeveloperForam/test-house-design/internal/money"
)

func newClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New(srv.URL, "tok", time.Second, zap.NewNop())
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

const bookingJSON = `{"data":{"id":"bk-1","bookingId":"BK-20240101-ABCDEF","projectId":"proj-1",
"houseNumber":"A-101","totalAmount":500000,"advancePayment":100000,"bookingDate":"2024-01-01"}}`

func TestGetHouseSendsToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/houses/proj-1/A-101", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"data": map[string]interface{}{"projectId": "proj-1", "houseNumber": "A-101", "price": 500000, "status": "available"},
		})
	})
	c := newClient(t, mux)

	h, err := c.GetHouse(context.Background(), "proj-1", "A-101")

	require.NoError(t, err)
	assert.Equal(t, money.Rupees(500000), h.Price)
	assert.Equal(t, models.HouseStatusAvailable, h.Status)
}

func TestGetBookingNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/payment-history/missing", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "booking not found"})
	})
	c := newClient(t, mux)

	_, err := c.GetBooking(context.Background(), "missing")

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUnauthorized(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/bookings", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
	})
	c := newClient(t, mux)

	_, err := c.ListBookings(context.Background())

	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateBookingConflict(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/bookings/create", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 100000.0, req["advancePayment"])
		writeJSON(w, http.StatusConflict, map[string]string{"message": "house is not available"})
	})
	c := newClient(t, mux)

	_, err := c.CreateBooking(context.Background(), &models.Booking{
		ProjectID:      "proj-1",
		HouseNumber:    "A-101",
		AdvancePayment: money.Rupees(100000),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, booking.ErrHouseUnavailable)
	var m *booking.MutationError
	require.True(t, errors.As(err, &m))
	assert.Equal(t, "house is not available", m.Message)
}

func TestListPaymentsDecodesRows(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/payment-history", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bk-1", r.URL.Query().Get("bookingId"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[
			{"id":"p1","bookingId":"bk-1","amountReceived":150000,"paymentMethod":"upi",
			 "paymentDetails":{"upiTxnId":"UPI123456789012"},"paymentReceivedDate":"2024-02-01",
			 "pendingAfter":250000,"sold":false}
		],"pendingAmount":250000,"state":"OPEN"}`))
	})
	c := newClient(t, mux)

	payments, err := c.ListPayments(context.Background(), "bk-1")

	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, money.Rupees(150000), payments[0].AmountReceived)
	assert.Equal(t, models.UPIDetails{TxnID: "UPI123456789012"}, payments[0].PaymentDetails)
}

func TestAddPaymentThroughService(t *testing.T) {
	var (
		posts int
		key   string
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/payment-history/bk-1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(bookingJSON))
	})
	mux.HandleFunc("/api/payment-history", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": []interface{}{}})
	})
	mux.HandleFunc("/api/payment-history/add-payment", func(w http.ResponseWriter, r *http.Request) {
		posts++
		key = r.Header.Get("Idempotency-Key")
		var req map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		req["id"] = "p-server"
		writeJSON(w, http.StatusCreated, map[string]interface{}{"data": req})
	})
	svc := booking.NewService(newClient(t, mux), zap.NewNop())
	received, err := models.ParseDate("2024-03-01")
	require.NoError(t, err)

	t.Run("over pending is rejected locally", func(t *testing.T) {
		_, err := svc.AddPayment(context.Background(), booking.AddPaymentInput{
			BookingID:    "bk-1",
			Amount:       money.Rupees(400001),
			Details:      models.CashDetails{},
			ReceivedDate: received,
		})

		assert.ErrorIs(t, err, ledger.ErrExceedsPending)
		assert.True(t, booking.IsValidation(err))
		assert.Zero(t, posts)
	})

	t.Run("recorded", func(t *testing.T) {
		p, err := svc.AddPayment(context.Background(), booking.AddPaymentInput{
			BookingID:    "bk-1",
			Amount:       money.Rupees(150000),
			Details:      models.ChequeDetails{ChequeNo: "000123"},
			ReceivedDate: received,
		})

		require.NoError(t, err)
		assert.Equal(t, 1, posts)
		assert.NotEmpty(t, key)
		assert.Equal(t, money.Rupees(150000), p.AmountReceived)
		assert.Equal(t, models.ChequeDetails{ChequeNo: "000123"}, p.PaymentDetails)
	})
}

func TestAddPaymentLostRace(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/payment-history/add-payment", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "payment exceeds pending amount"})
	})
	c := newClient(t, mux)

	_, err := c.AddPayment(context.Background(), &models.Payment{
		ID:             "p1",
		BookingID:      "bk-1",
		AmountReceived: money.Rupees(10),
		PaymentMethod:  models.PaymentMethodCash,
		PaymentDetails: models.CashDetails{},
	})

	assert.ErrorIs(t, err, ledger.ErrExceedsPending)
	assert.False(t, booking.IsValidation(err))
}

func TestAddPaymentServerValidation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]string
		want error
	}{
		{"exceeds pending", map[string]string{"error": "amountReceived: payment exceeds pending amount"}, ledger.ErrExceedsPending},
		{"sold", map[string]string{"error": "bookingId: booking is already fully paid"}, ledger.ErrSoldAlready},
		{"bad amount", map[string]string{"error": "amountReceived: invalid amount: negative"}, money.ErrInvalidAmount},
		{"bad details", map[string]string{"error": "paymentDetails: invalid payment details: missing upiTxnId"}, models.ErrInvalidPaymentDetails},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/api/payment-history/add-payment", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusBadRequest, tt.body)
			})
			c := newClient(t, mux)

			_, err := c.AddPayment(context.Background(), &models.Payment{
				ID:             "p1",
				BookingID:      "bk-1",
				AmountReceived: money.Rupees(10),
				PaymentMethod:  models.PaymentMethodCash,
				PaymentDetails: models.CashDetails{},
			})

			assert.ErrorIs(t, err, tt.want)
			assert.True(t, booking.IsValidation(err))
			assert.Equal(t, tt.body["error"], err.Error())
		})
	}
}

func TestServerValidationWithoutKnownCause(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/bookings/create", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bookingDate: unrecognised date"})
	})
	c := newClient(t, mux)

	_, err := c.CreateBooking(context.Background(), &models.Booking{ProjectID: "proj-1", HouseNumber: "A-101"})

	require.Error(t, err)
	assert.True(t, booking.IsValidation(err))
	assert.Equal(t, "bookingDate: unrecognised date", err.Error())
}

func TestLoginKeepsToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"token": "fresh", "expiresAt": time.Now().Add(time.Hour)})
	})
	mux.HandleFunc("/api/bookings", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer fresh", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": []interface{}{}})
	})
	c := newClient(t, mux)

	token, _, err := c.Login(context.Background(), "admin", "pw")
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)

	_, err = c.ListBookings(context.Background())
	assert.NoError(t, err)
}
