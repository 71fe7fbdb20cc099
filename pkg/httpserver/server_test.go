package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/socialkit/pkg/httpserver"
	"github.com/dmitrymomot/socialkit/pkg/logger"
)

func waitRun(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		require.Fail(t, "run did not finish")
		return nil
	}
}

func TestServer_RunAndShutdown(t *testing.T) {
	t.Parallel()
	var order []string
	srv := httpserver.New(httpserver.Config{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second},
		httpserver.WithLogger(logger.Discard()),
		httpserver.OnShutdown(func(context.Context) error { order = append(order, "first"); return nil }),
		httpserver.OnShutdown(func(context.Context) error { order = append(order, "second"); return nil }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
	}()

	<-srv.Ready()
	resp, err := http.Get("http://" + srv.Addr().String())
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	assert.ErrorIs(t, srv.Run(ctx, nil), httpserver.ErrAlreadyRunning)

	cancel()
	require.NoError(t, waitRun(t, done))
	assert.Equal(t, []string{"second", "first"}, order)
}

func TestServer_ShutdownHookError(t *testing.T) {
	t.Parallel()
	hookErr := errors.New("close hub")
	srv := httpserver.New(httpserver.Config{Addr: "127.0.0.1:0"},
		httpserver.OnShutdown(func(context.Context) error { return hookErr }),
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, nil) }()
	<-srv.Ready()
	cancel()

	err := waitRun(t, done)
	assert.ErrorIs(t, err, httpserver.ErrShutdown)
	assert.ErrorIs(t, err, hookErr)
}

func TestServer_StartError(t *testing.T) {
	t.Parallel()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	srv := httpserver.New(httpserver.Config{Addr: l.Addr().String()})
	err = srv.Run(context.Background(), nil)
	assert.ErrorIs(t, err, httpserver.ErrStart)
}

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	decode := func(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
		t.Helper()
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return body
	}

	t.Run("liveness", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		httpserver.HealthHandler(nil, 0)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", decode(t, rec)["status"])
	})

	t.Run("failing dependency", func(t *testing.T) {
		t.Parallel()
		h := httpserver.HealthHandler(logger.Discard(), time.Second,
			httpserver.Check{Name: "mongo", Probe: func(context.Context) error { return nil }},
			httpserver.Check{Name: "redis", Probe: func(context.Context) error { return errors.New("down") }},
		)
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "unavailable", body["status"])
		assert.Equal(t, map[string]any{"mongo": "ok", "redis": "unavailable"}, body["checks"])
	})
}
