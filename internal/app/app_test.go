package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/callcenter-service/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		App:   config.AppConfig{Name: "callcenter-test", Version: "test"},
		Auth:  config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4},
		Queue: config.QueueConfig{Timezone: "UTC"},
		Seed: config.SeedConfig{
			OnStart:       true,
			AdminEmail:    "admin@example.com",
			AdminPassword: "admin-pass",
			AdminName:     "Admin",
		},
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	a, err := New(context.Background(), testConfig(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func doJSON(t *testing.T, a *App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.Fiber.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func login(t *testing.T, a *App, email, password string) string {
	t.Helper()
	status, body := doJSON(t, a, http.MethodPost, "/api/auth/login", "", map[string]any{"email": email, "password": password})
	require.Equal(t, http.StatusOK, status, body)
	data := body["data"].(map[string]any)
	return data["auth"].(map[string]any)["token"].(string)
}

func TestHealthLive(t *testing.T) {
	a := newTestApp(t)
	status, body := doJSON(t, a, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alive", body["status"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a := newTestApp(t)
	status, body := doJSON(t, a, http.MethodGet, "/api/contacts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", body["error"].(map[string]any)["code"])
}

func TestLoginRejectsBadPassword(t *testing.T) {
	a := newTestApp(t)
	status, _ := doJSON(t, a, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "admin@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestTelephonisteQueueFlow(t *testing.T) {
	a := newTestApp(t)
	adminToken := login(t, a, "admin@example.com", "admin-pass")

	status, body := doJSON(t, a, http.MethodPost, "/api/users", adminToken, map[string]any{
		"name": "Tel", "email": "tel@example.com", "password": "tel-pass-1", "isTelephoniste": true,
	})
	require.Equal(t, http.StatusCreated, status, body)
	telID := body["data"].(map[string]any)["id"].(string)
	_, hasHash := body["data"].(map[string]any)["passwordHash"]
	assert.False(t, hasHash)

	status, body = doJSON(t, a, http.MethodPost, "/api/contacts", adminToken, map[string]any{
		"phone": "514-555-0199", "name": "Lead", "assignedToTelephonisteId": telID,
	})
	require.Equal(t, http.StatusCreated, status, body)
	contactID := body["data"].(map[string]any)["id"].(string)
	assert.Equal(t, "(514) 555-0199", body["data"].(map[string]any)["phoneDisplay"])
	assert.Equal(t, "5145550199", body["data"].(map[string]any)["phone"])

	status, _ = doJSON(t, a, http.MethodPost, "/api/contacts", adminToken, map[string]any{"phone": "5145550199"})
	assert.Equal(t, http.StatusBadRequest, status)

	telToken := login(t, a, "tel@example.com", "tel-pass-1")
	status, body = doJSON(t, a, http.MethodGet, "/api/telephoniste/contacts/random", telToken, nil)
	require.Equal(t, http.StatusOK, status, body)
	data := body["data"].(map[string]any)
	assert.Equal(t, contactID, data["contact"].(map[string]any)["id"])
	assert.Equal(t, float64(1), data["totalAvailable"])

	status, body = doJSON(t, a, http.MethodPost, "/api/contacts/"+contactID+"/call-log", telToken, map[string]any{
		"callSid": "CA-1", "status": "completed", "duration": 30,
	})
	require.Equal(t, http.StatusOK, status, body)

	status, body = doJSON(t, a, http.MethodGet, "/api/telephoniste/contacts/random", telToken, nil)
	require.Equal(t, http.StatusOK, status, body)
	data = body["data"].(map[string]any)
	assert.Nil(t, data["contact"])
	assert.Equal(t, float64(0), data["totalAvailable"])

	status, body = doJSON(t, a, http.MethodGet, "/api/telephoniste/contacts/activity-history", telToken, nil)
	require.Equal(t, http.StatusOK, status, body)
	report := body["data"].(map[string]any)
	assert.Equal(t, float64(1), report["stats"].(map[string]any)["callsMade"])
	assert.Len(t, report["contacts"], 1)

	status, _ = doJSON(t, a, http.MethodGet, "/api/contacts", telToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = doJSON(t, a, http.MethodGet, "/api/history/contacts/"+contactID, adminToken, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, float64(2), body["total"])
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	a := newTestApp(t)
	status, body := doJSON(t, a, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["error"].(map[string]any)["code"])
}

func TestMetricsEndpoint(t *testing.T) {
	a := newTestApp(t)
	doJSON(t, a, http.MethodGet, "/health/live", "", nil)

	resp, err := a.Fiber.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "callcenter_http_requests_total")
}
