// Copyright (c) 2026 Narratives. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/narratives/internal/ambience"
	"github.com/taibuivan/narratives/internal/api"
	"github.com/taibuivan/narratives/internal/comment"
	"github.com/taibuivan/narratives/internal/gateway"
	"github.com/taibuivan/narratives/internal/identity"
	"github.com/taibuivan/narratives/internal/literature"
	"github.com/taibuivan/narratives/internal/platform/config"
	"github.com/taibuivan/narratives/internal/platform/metrics"
	"github.com/taibuivan/narratives/internal/site"
	"github.com/taibuivan/narratives/internal/summary"
	"github.com/taibuivan/narratives/internal/web"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type works struct{}

func (works) ListWorks(context.Context) ([]literature.Work, error) {
	return []literature.Work{{ID: "1", Type: literature.TypePoem, Title: "Tide"}}, nil
}

func (works) GetWork(_ context.Context, id string) (*literature.Work, error) {
	if id != "1" {
		return nil, &gateway.Error{Code: "PGRST116", Message: gateway.MessageNoRows}
	}
	return &literature.Work{ID: "1", Type: literature.TypePoem, Title: "Tide", Content: "Water."}, nil
}

func (works) CreateWork(context.Context, literature.Draft) ([]literature.Work, error) {
	return nil, nil
}

func (works) UpdateWork(context.Context, string, literature.Patch) error { return nil }

func (works) DeleteWork(context.Context, string) error { return nil }

type comments struct{}

func (comments) ListComments(context.Context, string) ([]comment.Comment, error) { return nil, nil }

func (comments) CreateComment(context.Context, string, comment.Input) ([]comment.Comment, error) {
	return nil, nil
}

type anonymous struct{}

func (anonymous) Enabled(string) bool { return false }

func (anonymous) SignInWithOAuth(context.Context, string, string) (string, error) { return "", nil }

func (anonymous) ExchangeCodeForSession(context.Context, string, string, string) (*gateway.Session, string, error) {
	return nil, "", errors.New("not configured")
}

func (anonymous) GetSession(context.Context, string) (*gateway.Session, error) { return nil, nil }

func (anonymous) RefreshSession(context.Context, string) (*gateway.Session, error) { return nil, nil }

func (anonymous) SignOut(context.Context, string) error { return nil }

func (anonymous) OnAuthStateChange(context.Context, string, func(gateway.AuthEvent, *gateway.Session)) (*gateway.Subscription, error) {
	return gateway.NewSubscription(func() {}), nil
}

func newServer(t *testing.T) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := discardLogger()
	hub := gateway.NewHub(logger, nil)
	list := literature.NewList(works{}, hub, logger)
	require.NoError(t, list.Activate(ctx))
	t.Cleanup(list.Deactivate)

	summaries := summary.NewService(nil, logger)
	pages, err := web.NewHandler(web.Deps{
		Works:       list,
		WorkRepo:    works{},
		CommentRepo: comments{},
		Feed:        hub,
		Auth:        anonymous{},
		Summary:     summaries,
		Content:     site.Default(),
		Logger:      logger,
	})
	require.NoError(t, err)

	liveness, readiness := api.NewHealthHandlers(nil, logger)
	cfg := &config.Config{ServerPort: "0", Environment: "test", PublicOrigin: "http://localhost"}

	server := api.NewServer(ctx, cfg, logger, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      anonymous{},
		Identity:  identity.NewHandler(anonymous{}, cfg.PublicOrigin, false),
		Works:     literature.NewHandler(literature.NewService(works{}, logger)),
		Comments:  comment.NewHandler(comment.NewService(comments{}, logger), nil),
		Summary:   summary.NewHandler(summaries, works{}),
		Ambience:  ambience.NewHandler(site.DefaultTrackURL),
		Web:       pages,
		Metrics:   metrics.New(),
	})
	return server.Handler()
}

/*
TestServer_Routes checks that every surface is mounted where clients
expect it.
*/
func TestServer_Routes(t *testing.T) {
	handler := newServer(t)

	tests := []struct {
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{method: http.MethodGet, path: "/health", wantStatus: http.StatusOK, wantBody: `"ok"`},
		{method: http.MethodGet, path: "/ready", wantStatus: http.StatusOK, wantBody: `"ready"`},
		{method: http.MethodGet, path: "/api/v1/works", wantStatus: http.StatusOK, wantBody: `"Tide"`},
		{method: http.MethodGet, path: "/api/v1/works/2", wantStatus: http.StatusNotFound},
		{method: http.MethodGet, path: "/api/v1/works/1/comments", wantStatus: http.StatusOK, wantBody: `"data":[]`},
		{method: http.MethodPost, path: "/api/v1/works", wantStatus: http.StatusUnauthorized},
		{method: http.MethodPost, path: "/api/v1/works/1/summary", wantStatus: http.StatusServiceUnavailable, wantBody: "AI summary is not configured."},
		{method: http.MethodGet, path: "/api/v1/auth/session", wantStatus: http.StatusOK, wantBody: `"data":null`},
		{method: http.MethodGet, path: "/", wantStatus: http.StatusOK, wantBody: "Latest Works"},
		{method: http.MethodGet, path: "/admin", wantStatus: http.StatusOK, wantBody: "Admin Access"},
		{method: http.MethodPost, path: "/ambience/toggle", wantStatus: http.StatusSeeOther},
		{method: http.MethodGet, path: "/metrics", wantStatus: http.StatusOK, wantBody: "http_requests_total"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, httptest.NewRequest(tt.method, tt.path, strings.NewReader("")))

			assert.Equal(t, tt.wantStatus, recorder.Code)
			if tt.wantBody != "" {
				assert.Contains(t, recorder.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestReadiness_Degraded(t *testing.T) {
	_, readiness := api.NewHealthHandlers([]api.Check{
		{Name: "postgres", Ping: func(context.Context) error { return nil }},
		{Name: "redis", Ping: func(context.Context) error { return errors.New("connection refused") }},
	}, discardLogger())

	recorder := httptest.NewRecorder()
	readiness(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"degraded"`)
	assert.Contains(t, recorder.Body.String(), "connection refused")
	assert.Contains(t, recorder.Body.String(), `{"name":"postgres","ok":true}`)
}
