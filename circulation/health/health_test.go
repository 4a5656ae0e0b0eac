package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/health"
)

func serve(t *testing.T, server *health.Server, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	return rec
}

func Test_Liveness_ReturnsOK(t *testing.T) {
	// arrange
	server := health.NewServer()

	// act
	rec := serve(t, server, "/healthz")

	// assert
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func Test_Readiness_ReturnsOK_WhenAllChecksPass(t *testing.T) {
	// arrange
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	server := health.NewServer(
		health.WithCheck("redis", health.RedisCheck(client)),
		health.WithCheck("postgres", func(context.Context) error { return nil }),
	)

	// act
	rec := serve(t, server, "/readyz")

	// assert
	require.Equal(t, http.StatusOK, rec.Code)

	var report health.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "ok", report.Status)
	assert.Equal(t, map[string]string{"redis": "ok", "postgres": "ok"}, report.Checks)
}

func Test_Readiness_ReturnsUnavailable_WhenACheckFails(t *testing.T) {
	// arrange
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	server := health.NewServer(
		health.WithCheck("redis", health.RedisCheck(client)),
		health.WithCheck("postgres", func(context.Context) error { return errors.New("connection refused") }),
	)

	// act
	rec := serve(t, server, "/readyz")

	// assert
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var report health.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "unavailable", report.Status)
	assert.Equal(t, "ok", report.Checks["redis"])
	assert.Equal(t, "connection refused", report.Checks["postgres"])
}

func Test_Readiness_ReportsRedisDown(t *testing.T) {
	// arrange
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	server := health.NewServer(health.WithCheck("redis", health.RedisCheck(client)))

	// act
	report := server.Ready(context.Background())

	// assert
	assert.Equal(t, "unavailable", report.Status)
	assert.NotEqual(t, "ok", report.Checks["redis"])
}
