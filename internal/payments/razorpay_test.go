package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func TestClient_CreateIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key_id", user)
		assert.Equal(t, "key_secret", pass)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)

		var body createIntentBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, createIntentBody{Amount: 13800, Currency: "INR", Receipt: "o1"}, body)

		_ = json.NewEncoder(w).Encode(Intent{ID: "order_abc", Amount: body.Amount, Currency: body.Currency, Receipt: body.Receipt, Status: "created"})
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL + "/", KeyID: "key_id", KeySecret: "key_secret"}, srv.Client(), nil)
	intent, err := client.CreateIntent(context.Background(), IntentRequest{Amount: 13800, Currency: "INR", Receipt: "o1"})
	require.NoError(t, err)
	assert.Equal(t, "order_abc", intent.ID)
	assert.Equal(t, int64(13800), intent.Amount)
	assert.Equal(t, "o1", intent.Receipt)
}

func TestClient_LookupIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/order_abc" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(Intent{ID: "order_abc", Amount: 500, Currency: "INR", Receipt: "o1"})
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL}, srv.Client(), nil)
	intent, err := client.LookupIntent(context.Background(), "order_abc")
	require.NoError(t, err)
	assert.Equal(t, "o1", intent.Receipt)

	_, err = client.LookupIntent(context.Background(), "order_missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClient_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL}, srv.Client(), nil)
	_, err := client.CreateIntent(context.Background(), IntentRequest{Amount: 1, Currency: "INR", Receipt: "o1"})
	assert.ErrorIs(t, err, domain.ErrGatewayUnavailable)
}

func TestClient_TimeoutIsUnavailable(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(ClientConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, srv.Client(), nil)
	start := time.Now()
	_, err := client.CreateIntent(context.Background(), IntentRequest{Amount: 1, Currency: "INR", Receipt: "o1"})
	assert.ErrorIs(t, err, domain.ErrGatewayUnavailable)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClient_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL}, srv.Client(), nil)
	for i := 0; i < 5; i++ {
		_, err := client.CreateIntent(context.Background(), IntentRequest{Amount: 1, Currency: "INR", Receipt: "o1"})
		require.True(t, errors.Is(err, domain.ErrGatewayUnavailable))
	}

	_, err := client.CreateIntent(context.Background(), IntentRequest{Amount: 1, Currency: "INR", Receipt: "o1"})
	assert.ErrorIs(t, err, domain.ErrGatewayUnavailable)
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls))
}

func TestClient_NotFoundDoesNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL}, srv.Client(), nil)
	for i := 0; i < 8; i++ {
		_, err := client.LookupIntent(context.Background(), "order_x")
		require.ErrorIs(t, err, domain.ErrNotFound)
	}
}
