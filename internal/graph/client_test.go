package graph

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/prospect-scout/internal/types"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(Config{BaseURL: baseURL, APIKey: "test-key"})
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresConfig(t *testing.T) {
	_, err := NewClient(Config{APIKey: "k"})
	assert.Error(t, err)

	_, err = NewClient(Config{BaseURL: "http://example.com"})
	assert.Error(t, err)
}

func TestQueryConnections_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "companyx", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"profiles": [
				{
					"person": "Pat Lee",
					"title": "VP Engineering",
					"connections": [
						{"connector": "Dana", "strength": 0.8, "origin": "co_employment", "detail": "Acme Corp (2019-2021)"},
						{"connector": "Sam", "strength": 0.3, "origin": "correspondence"}
					]
				}
			]
		}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	records, err := c.QueryConnections(context.Background(), "companyx", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Pat Lee", records[0].TargetPerson)
	assert.Equal(t, "Dana", records[0].ConnectorName)
	assert.Equal(t, types.OriginCoEmployment, records[0].Origin)
	assert.Equal(t, 0.8, records[0].Strength)
}

func TestQueryConnections_PartialResultIsUsable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"status": "partial",
			"profiles": [
				{"person": "Jo Marsh", "connections": [{"connector": "Sam", "strength": 0.5, "origin": "calendar"}]}
			]
		}`))
	}))
	defer srv.Close()

	records, err := newTestClient(t, srv.URL).QueryConnections(context.Background(), "retailco", 0)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestQueryConnections_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ok", "profiles": []}`))
	}))
	defer srv.Close()

	records, err := newTestClient(t, srv.URL).QueryConnections(context.Background(), "nobodyknows", 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestQueryConnections_BackendErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"status": "error", "error": "index unavailable"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).QueryConnections(context.Background(), "companyx", 10)
	require.Error(t, err)

	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, "index unavailable", backendErr.Message)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestQueryConnections_RetriesRateLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"status": "ok", "profiles": [{"person": "Pat Lee", "connections": [{"connector": "Dana", "strength": 0.7, "origin": "co_employment"}]}]}`))
	}))
	defer srv.Close()

	records, err := newTestClient(t, srv.URL).QueryConnections(context.Background(), "companyx", 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestQueryConnections_ExhaustsRetryCeiling(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).QueryConnections(context.Background(), "companyx", 10)
	require.Error(t, err)

	var transient *TransientError
	require.ErrorAs(t, err, &transient)
	assert.Equal(t, maxAttempts, transient.Attempts)
	assert.Equal(t, int32(maxAttempts), atomic.LoadInt32(&calls))
}

func TestQueryConnections_UnknownStatusRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "shrug"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).QueryConnections(context.Background(), "companyx", 10)
	assert.Error(t, err)
}

func TestQueryConnections_EmptyTermShortCircuits(t *testing.T) {
	records, err := newTestClient(t, "http://unused.invalid").QueryConnections(context.Background(), "", 10)
	assert.NoError(t, err)
	assert.Nil(t, records)
}

func TestFlatten_SkipsMalformedEntries(t *testing.T) {
	profiles := []profileResult{
		{Person: "", Connections: []connectionResult{{Connector: "Dana", Strength: 0.5}}},
		{Person: "Pat", Connections: []connectionResult{
			{Connector: "", Strength: 0.5},
			{Connector: "Dana", Strength: 1.7},
			{Connector: "Sam", Strength: 0.4, Origin: "calendar"},
		}},
	}
	records := flatten(profiles)
	require.Len(t, records, 1)
	assert.Equal(t, "Sam", records[0].ConnectorName)
}
