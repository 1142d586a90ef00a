package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeveloperForam/test-house-design/internal/ledger"
)

const bookingBody = `{"data":{"id":"bk-1","bookingId":"BK-20240101-ABCDEF","projectId":"proj-1",
"projectName":"Lily Heights","houseNumber":"A-101","customerName":"Asha Patil","mobileNo":"9876543210",
"paymentType":"cash","totalAmount":500000,"advancePayment":100000,"bookingDate":"2024-01-01"}}`

const paymentsBody = `{"data":[{"id":"p1","bookingId":"bk-1","amountReceived":150000,"paymentMethod":"cash",
"paymentDetails":{},"paymentReceivedDate":"2024-02-01","pendingAfter":250000,"sold":false}]}`

type fakeAPI struct {
	mux      *http.ServeMux
	server   *httptest.Server
	posts    int
	lastAuth string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{mux: http.NewServeMux()}
	api.mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"token": "tok-123", "expiresAt": time.Now().Add(time.Hour)})
	})
	api.mux.HandleFunc("/api/bookings", func(w http.ResponseWriter, r *http.Request) {
		api.lastAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data":[]}`))
	})
	api.mux.HandleFunc("/api/payment-history/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(bookingBody))
	})
	api.mux.HandleFunc("/api/payment-history", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(paymentsBody))
	})
	api.mux.HandleFunc("/api/payment-history/add-payment", func(w http.ResponseWriter, r *http.Request) {
		api.posts++
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"p2","bookingId":"bk-1","amountReceived":1,"paymentMethod":"cash","paymentReceivedDate":"2024-03-01"}}`))
	})
	api.server = httptest.NewServer(api.mux)
	t.Cleanup(api.server.Close)
	return api
}

func run(t *testing.T, api *fakeAPI, tokenFile string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(envToken, "")
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{"--api", api.server.URL, "--token-file", tokenFile}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestLoginSavesToken(t *testing.T) {
	api := newFakeAPI(t)
	tokenFile := filepath.Join(t.TempDir(), "adminctl", "token")

	out, err := run(t, api, tokenFile, "login", "-u", "admin", "-p", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as admin")

	data, err := os.ReadFile(tokenFile)
	require.NoError(t, err)
	assert.Equal(t, "tok-123\n", string(data))

	out, err = run(t, api, tokenFile, "booking", "list")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", api.lastAuth)
	assert.Contains(t, out, "No bookings yet.")
}

func TestCommandsNeedLogin(t *testing.T) {
	api := newFakeAPI(t)

	_, err := run(t, api, filepath.Join(t.TempDir(), "missing"), "booking", "list")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "adminctl login")
}

func writeToken(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("tok-123\n"), 0o600))
	return path
}

func TestBookingShowPrintsRunningBalance(t *testing.T) {
	api := newFakeAPI(t)

	out, err := run(t, api, writeToken(t), "booking", "show", "BK-20240101-ABCDEF")

	require.NoError(t, err)
	assert.Contains(t, out, "Total     ₹5,00,000")
	assert.Contains(t, out, "₹1,50,000")
	assert.Contains(t, out, "Pending   ₹2,50,000  [OPEN]")

	out, err = run(t, api, writeToken(t), "--locale", "en-US", "booking", "show", "bk-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Total     ₹500,000")
}

func TestPaymentAdd(t *testing.T) {
	t.Run("over pending is refused without a write", func(t *testing.T) {
		api := newFakeAPI(t)

		_, err := run(t, api, writeToken(t), "payment", "add", "bk-1", "--amount", "2,50,001")

		assert.ErrorIs(t, err, ledger.ErrExceedsPending)
		assert.Zero(t, api.posts)
	})

	t.Run("bad card details", func(t *testing.T) {
		api := newFakeAPI(t)

		_, err := run(t, api, writeToken(t), "payment", "add", "bk-1", "--amount", "1000", "--method", "card", "--last4", "12a4")

		assert.Error(t, err)
		assert.Zero(t, api.posts)
	})

	t.Run("recorded", func(t *testing.T) {
		api := newFakeAPI(t)

		out, err := run(t, api, writeToken(t), "payment", "add", "bk-1", "--amount", "1", "--date", "2024-03-01")

		require.NoError(t, err)
		assert.Equal(t, 1, api.posts)
		assert.Contains(t, out, "Recorded ₹1 by cash")
	})
}

func TestHashPassword(t *testing.T) {
	api := newFakeAPI(t)

	out, err := run(t, api, writeToken(t), "hash-password", "s3cret")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "$2"), out)
}
