// Copyright (c) 2026 Narratives. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/narratives/internal/platform/metrics"
)

/*
TestInstrument verifies that requests are counted under their route pattern.
*/
func TestInstrument(t *testing.T) {
	registry := metrics.New()

	router := chi.NewRouter()
	router.Use(registry.Instrument)
	router.Get("/literature/{id}", func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/literature/a", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/literature/b", nil))

	count, err := testutil.GatherAndCount(registry.Gatherer(), "http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "both ids share one series")
}

/*
TestHandler exposes the realtime gauge.
*/
func TestHandler(t *testing.T) {
	registry := metrics.New()
	registry.RealtimeSubscriptions.Set(2)

	recorder := httptest.NewRecorder()
	registry.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "realtime_subscriptions 2")
}
