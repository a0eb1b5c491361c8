package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestObserveHTTPRequest(t *testing.T) {
	m := New()

	m.ObserveHTTPRequest("post", "/api/users/login", http.StatusOK, 10*time.Millisecond)
	m.ObserveHTTPRequest("POST", "/api/users/login", http.StatusOK, 20*time.Millisecond)
	m.ObserveHTTPRequest("POST", "/api/users/login", http.StatusBadRequest, time.Millisecond)

	out := scrape(t, m)
	assert.Contains(t, out, `bizdesk_http_requests_total{method="POST",path="/api/users/login",status="200"} 2`)
	assert.Contains(t, out, `bizdesk_http_requests_total{method="POST",path="/api/users/login",status="400"} 1`)
	assert.Contains(t, out, `bizdesk_http_request_duration_seconds_count{method="POST",path="/api/users/login"} 3`)
}

func TestTrackInFlight(t *testing.T) {
	m := New()

	done := m.TrackInFlight()
	assert.Contains(t, scrape(t, m), "bizdesk_http_inflight_requests 1")
	done()
	assert.Contains(t, scrape(t, m), "bizdesk_http_inflight_requests 0")
}

func TestObservePersonaCall(t *testing.T) {
	m := New()

	m.ObservePersonaCall("Sales", "success", time.Second)
	m.ObservePersonaCall("Sales", "failure", time.Second)
	m.ObservePersonaCall("Sales", "success", time.Second)
	m.ObservePersonaCall("Finance", "canceled", time.Millisecond)

	out := scrape(t, m)
	assert.Contains(t, out, `bizdesk_agents_persona_calls_total{outcome="success",persona="Sales"} 2`)
	assert.Contains(t, out, `bizdesk_agents_persona_calls_total{outcome="failure",persona="Sales"} 1`)
	assert.Contains(t, out, `bizdesk_agents_persona_calls_total{outcome="canceled",persona="Finance"} 1`)
	assert.Contains(t, out, `bizdesk_agents_persona_call_duration_seconds_count{persona="Sales"} 3`)
}

func TestHandler_ExposesRuntimeCollectors(t *testing.T) {
	m := New()
	m.ObserveGRPCCall("/bizdesk.v1.Bizdesk/Login", "OK")

	out := scrape(t, m)
	assert.Contains(t, out, `bizdesk_grpc_requests_total{code="OK",method="/bizdesk.v1.Bizdesk/Login"} 1`)
	assert.Contains(t, out, "go_goroutines")
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.ObserveGRPCCall("/x", "OK")

	assert.NotContains(t, scrape(t, b), `method="/x"`)
	assert.NotSame(t, a.Registry(), b.Registry())
}
