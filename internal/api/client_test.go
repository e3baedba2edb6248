package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_FetchTrades(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	c := NewClient(env.server.URL + "/")
	resp, err := c.FetchTrades(context.Background(), mintA)
	require.NoError(t, err)
	assert.Len(t, resp.Trades, 3)

	_, err = c.FetchTrades(context.Background(), mintB)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestClient_FetchCoinsAndDashboard(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	c := NewClient(env.server.URL)
	coins, err := c.FetchCoins(context.Background())
	require.NoError(t, err)
	require.Len(t, coins.Coins, 1)

	dash, err := c.FetchDashboard(context.Background())
	require.NoError(t, err)
	assert.Len(t, dash.Dashboard.RecentTrades, 3)
}

func TestClient_SuccessFalseIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":false,"error":"maintenance","trades":[{"id":"x"}]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchTrades(context.Background(), mintA)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maintenance")
}

func TestClient_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchCoins(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, WithTimeout(50*time.Millisecond)).FetchCoins(context.Background())
	assert.Error(t, err)
}
