// Copyright (c) 2026 Narratives. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package summary_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/narratives/internal/gateway"
	"github.com/taibuivan/narratives/internal/literature"
	"github.com/taibuivan/narratives/internal/summary"
)

type oneWork struct{ work literature.Work }

func (r oneWork) GetWork(_ context.Context, id string) (*literature.Work, error) {
	if id != r.work.ID {
		return nil, &gateway.Error{Code: "PGRST116", Message: gateway.MessageNoRows}
	}
	return &r.work, nil
}

func TestHandler_Summarize(t *testing.T) {
	works := oneWork{work: literature.Work{ID: "1", Title: "Tide", Content: "Water, again."}}

	tests := []struct {
		name       string
		summarizer summary.Summarizer
		path       string
		wantStatus int
	}{
		{name: "configured", summarizer: &countingSummarizer{text: "About water."}, path: "/api/v1/works/1/summary", wantStatus: http.StatusOK},
		{name: "not configured", path: "/api/v1/works/1/summary", wantStatus: http.StatusServiceUnavailable},
		{name: "unknown work", summarizer: &countingSummarizer{text: "x"}, path: "/api/v1/works/2/summary", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := chi.NewRouter()
			router.Route("/api/v1/works", summary.NewHandler(summary.NewService(tt.summarizer, discardLogger()), works).RegisterRoutes)

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, tt.path, nil))
			assert.Equal(t, tt.wantStatus, recorder.Code)

			if tt.wantStatus == http.StatusOK {
				var body struct {
					Data struct {
						Summary string `json:"summary"`
					} `json:"data"`
				}
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
				assert.Equal(t, "About water.", body.Data.Summary)
			}
		})
	}
}
