package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/vetpos/internal/health"
)

type fakeProbes struct {
	db, redis error
}

func (f fakeProbes) PingDB(context.Context, time.Duration) error    { return f.db }
func (f fakeProbes) PingRedis(context.Context, time.Duration) error { return f.redis }

func ready(t *testing.T, h health.Handler) (int, map[string]string) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.Ready(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return rr.Code, body
}

func TestLive(t *testing.T) {
	rr := httptest.NewRecorder()
	health.Handler{}.Live(rr, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "ok", rr.Body.String())
}

func TestReadyReportsEachDependency(t *testing.T) {
	code, body := ready(t, health.Handler{Checker: fakeProbes{}})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, map[string]string{"db": "ok", "redis": "ok"}, body)

	code, body = ready(t, health.Handler{Checker: fakeProbes{db: errors.New("db down")}})
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "db down", body["db"])
	require.Equal(t, "ok", body["redis"])
}

func TestReadyTreatsUnconfiguredAsDisabled(t *testing.T) {
	code, body := ready(t, health.Handler{Checker: health.Probes{}})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, map[string]string{"db": "disabled", "redis": "disabled"}, body)
}

func TestReadyPingsRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	h := health.Handler{Checker: health.Probes{Redis: client}, RedisTimeout: 200 * time.Millisecond}
	code, _ := ready(t, h)
	require.Equal(t, http.StatusOK, code)

	mr.Close()
	code, body := ready(t, h)
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.NotEqual(t, "ok", body["redis"])
}

func TestReadyReportsDraining(t *testing.T) {
	t.Cleanup(func() { health.SetReady(true) })
	h := health.Handler{Checker: fakeProbes{}}

	health.SetReady(false)
	code, body := ready(t, h)
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, "draining", body["status"])

	health.SetReady(true)
	code, _ = ready(t, h)
	require.Equal(t, http.StatusOK, code)
}
