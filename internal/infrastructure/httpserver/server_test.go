package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handyapp/gateway/internal/application/services"
	"github.com/handyapp/gateway/internal/core/ports"
	"github.com/handyapp/gateway/internal/infrastructure/repositories"
	"github.com/handyapp/gateway/test/mocks"
)

type testEnv struct {
	server  *Server
	remote  *mocks.RemoteStoreMock
	channel *mocks.NotificationChannelMock
}

func newTestEnv(t *testing.T, limiter ports.RateLimiterService) *testEnv {
	t.Helper()
	remote := &mocks.RemoteStoreMock{}
	channel := &mocks.NotificationChannelMock{}
	notifier := services.NewNotificationService(repositories.NewDeviceRegistry(), channel, time.Second, nil)
	t.Cleanup(func() { _ = notifier.Close(context.Background()) })

	srv := NewServer(&ServerConfig{InstanceID: "gw-1"}, nil, ServerDeps{
		CacheAside:   services.NewCacheAsideService(remote, mocks.NewCacheMock(), 0, nil),
		Directory:    services.NewDirectoryService(remote, nil),
		Notification: notifier,
		RateLimiter:  limiter,
	})
	return &testEnv{server: srv, remote: remote, channel: channel}
}

func (e *testEnv) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.server.Echo().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestKV_WriteThenReadFromCache(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/kv", url.Values{"key": {"a"}, "value": {"1"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(0), decode(t, rec)["status"])

	rec = env.do(http.MethodGet, "/testget?key=a", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "1", body["value"])
	assert.Equal(t, "cache", body["source"])
	assert.Equal(t, int32(0), env.remote.GetCalls.Load())
}

func TestKV_ReadMissingIsNotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodGet, "/kv?key=nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(1), body["status"])
	assert.Equal(t, "not_found", body["code"])
}

func TestKV_WriteRemoteFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	env.remote.PutFn = func(ctx context.Context, key, value string) error { return errors.New("refused") }

	rec := env.do(http.MethodPost, "/testput?key=a&value=1", url.Values{})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "remote_unavailable", decode(t, rec)["code"])

	// The cached value is still served.
	rec = env.do(http.MethodGet, "/kv?key=a", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", decode(t, rec)["value"])
}

func TestKV_WriteRequiresValuePresenceOnly(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/kv", url.Values{"key": {"a"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", decode(t, rec)["code"])
	assert.Equal(t, int32(0), env.remote.PutCalls.Load())

	rec = env.do(http.MethodPost, "/kv", url.Values{"key": {"a"}, "value": {""}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(http.MethodPost, "/testput?key=b&value=", url.Values{})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int32(2), env.remote.PutCalls.Load())

	rec = env.do(http.MethodGet, "/kv?key=a", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", decode(t, rec)["value"])
}

func TestKV_WriteJSONBody(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/kv", strings.NewReader(`{"key":"j","value":"1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	env.server.Echo().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/kv", strings.NewReader(`{"key":"j"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	env.server.Echo().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServices_RegisterAndValidate(t *testing.T) {
	env := newTestEnv(t, nil)
	form := url.Values{"name": {"Bob"}, "type": {"Gardening"}, "location": {"X"}, "cost": {"60"}, "description": {"d"}}

	rec := env.do(http.MethodPost, "/postService", form)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.NotEmpty(t, body["serviceId"])
	assert.Len(t, body["steps"], 2)
	assert.Equal(t, int32(2), env.remote.PutServiceCalls.Load())

	form.Del("cost")
	rec = env.do(http.MethodPost, "/services", form)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", decode(t, rec)["code"])
	assert.Equal(t, int32(2), env.remote.PutServiceCalls.Load())
}

func TestServices_PartialWriteReportsSteps(t *testing.T) {
	env := newTestEnv(t, nil)
	env.remote.PutServiceFn = func(ctx context.Context, key, value string) error {
		if key == "Gardening" {
			return nil
		}
		return errors.New("timeout")
	}
	form := url.Values{"name": {"Bob"}, "type": {"Gardening"}, "location": {"X"}, "cost": {"60"}, "description": {"d"}}

	rec := env.do(http.MethodPost, "/services", form)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "partial_write_failure", body["code"])
	assert.NotEmpty(t, body["serviceId"])
	steps := body["steps"].([]interface{})
	assert.Equal(t, true, steps[0].(map[string]interface{})["ok"])
	assert.Equal(t, false, steps[1].(map[string]interface{})["ok"])
}

func TestServices_Lookup(t *testing.T) {
	env := newTestEnv(t, nil)
	env.remote.GetServiceProviderFn = func(ctx context.Context, serviceType, location string) ([]byte, bool, error) {
		if serviceType == "Gardening" && location == "X" {
			return []byte(`{"status":0,"name":"Bob"}`), true, nil
		}
		return []byte(`{"status":1}`), true, nil
	}

	rec := env.do(http.MethodGet, "/getService?serviceType=Gardening&location=X", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(0), body["status"])
	assert.Equal(t, "", body["error"])
	assert.Equal(t, "Bob", body["data"].(map[string]interface{})["name"])

	rec = env.do(http.MethodGet, "/services?type=Plumbing&location=X", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, float64(1), body["status"])
	assert.NotEmpty(t, body["error"])
}

func TestServices_StubsAcknowledge(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, path := range []string{"/services/delete", "/changeServiceAvailability", "/updateService"} {
		rec := env.do(http.MethodPost, path, url.Values{"serviceID": {"id-1"}})
		require.Equal(t, http.StatusOK, rec.Code, path)
		body := decode(t, rec)
		assert.Equal(t, float64(0), body["status"])
		assert.Equal(t, "success", body["message"])
	}
	assert.Equal(t, int32(0), env.remote.PutServiceCalls.Load())
}

func TestNotifications_RegisterAndBroadcast(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/registerAndroidDeviceForGCMPush", url.Values{
		"username": {"alice"}, "userType": {"sr"}, "new_push_device_token": {"tok1"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decode(t, rec)["status"])

	rec = env.do(http.MethodPost, "/notifications/broadcast?wait=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(1), body["recipients"])
	report := body["report"].(map[string]interface{})
	assert.Equal(t, float64(1), report["delivered"])

	rec = env.do(http.MethodPost, "/devices", url.Values{"username": {"bob"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIndexShowsInstance(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gw-1")

	rec = env.do(http.MethodGet, "/balancing_get?location=Xville", nil)
	assert.Contains(t, rec.Body.String(), "Xville")
}

type denyAll struct{}

func (denyAll) Allow(ctx context.Context, clientKey string) (bool, int, int, time.Time, error) {
	return false, 0, 10, time.Now().Add(time.Minute), nil
}

func TestRateLimitRejects(t *testing.T) {
	env := newTestEnv(t, denyAll{})

	rec := env.do(http.MethodGet, "/kv?key=a", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "10", rec.Header().Get("X-RateLimit-Limit"))

	rec = env.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
