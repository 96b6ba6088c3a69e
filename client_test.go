package sdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diagramastext/diagramastext/sdk/go/headers"
)

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "plain", raw: "https://foo.bar", want: "https://foo.bar"},
		{name: "trailing slash trimmed", raw: "https://foo.bar/", want: "https://foo.bar"},
		{name: "path kept", raw: "https://foo.bar/api/v1/", want: "https://foo.bar/api/v1"},
		{name: "surrounding whitespace", raw: "  https://foo.bar  ", want: "https://foo.bar"},
		{name: "empty", raw: "", wantErr: true},
		{name: "missing scheme", raw: "foo.bar", wantErr: true},
		{name: "missing host", raw: "https://", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := normalizeBaseURL(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient(Config{})
	require.NoError(t, err)
	assert.NotNil(t, client.Auth)
	assert.NotNil(t, client.Diagrams)
	assert.Equal(t, defaultBaseURL, client.baseURL)
}

func TestNewClientRejectsInvalidBaseURL(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "not a url"})
	require.Error(t, err)
}

func TestRequestPreparation(t *testing.T) {
	var gotUA, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotRequestID = r.Header.Get(headers.RequestID)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"svg": "<svg/>"})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, NewMemoryStore())
	_, err := client.Diagrams.GenerateC4(context.Background(), "C4 diagram of a Go web server")
	require.NoError(t, err)

	assert.Equal(t, defaultUserAgent, gotUA)
	assert.NotEmpty(t, gotRequestID)
}

func TestTelemetryHooksFire(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"svg": "<svg/>"})
	}))
	defer srv.Close()

	var requests, responses, logEntries, metrics int
	client, err := NewClient(Config{
		BaseURL: srv.URL,
		Telemetry: TelemetryHooks{
			OnHTTPRequest: func(ctx context.Context, req *http.Request) { requests++ },
			OnHTTPResponse: func(ctx context.Context, req *http.Request, resp *http.Response, err error, latency time.Duration) {
				responses++
			},
			OnLogEntry: func(ctx context.Context, entry LogEntry) { logEntries++ },
			OnMetric:   func(ctx context.Context, metric Metric) { metrics++ },
		},
	})
	require.NoError(t, err)

	_, err = client.Diagrams.GenerateC4(context.Background(), "C4 diagram of a Go web server")
	require.NoError(t, err)
	assert.Equal(t, 1, requests)
	assert.Equal(t, 1, responses)
	assert.Equal(t, 1, logEntries)
	assert.Equal(t, 1, metrics)
}
