package literature_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/narratives/internal/literature"
	"github.com/taibuivan/narratives/internal/platform/ctxutil"
	"github.com/taibuivan/narratives/internal/platform/sec"
)

func newTestRouter(repo *memoryRepository, signedIn bool) http.Handler {
	handler := literature.NewHandler(literature.NewService(repo, discardLogger()))

	router := chi.NewRouter()
	if signedIn {
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				claims := &sec.AuthClaims{SessionID: "s1", UserID: "github:1"}
				next.ServeHTTP(writer, request.WithContext(ctxutil.WithSessionClaims(request.Context(), claims)))
			})
		})
	}
	router.Route("/api/v1/works", handler.RegisterRoutes)
	return router
}

func TestHandler_ListWorks(t *testing.T) {
	repo := newMemoryRepository(literature.Work{ID: "1", Title: "Tide", PublishedDate: date("2024-01-01")})

	recorder := httptest.NewRecorder()
	newTestRouter(repo, false).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/works", nil))

	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data []literature.Work `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "2024-01-01", body.Data[0].PublishedDate.String())
}

func TestHandler_GetWork_NotFound(t *testing.T) {
	recorder := httptest.NewRecorder()
	newTestRouter(newMemoryRepository(), false).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/works/nope", nil))

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

/*
TestHandler_WritesRequireSession checks that anonymous writes get 401 and
never reach the repository.
*/
func TestHandler_WritesRequireSession(t *testing.T) {
	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/works"},
		{http.MethodPatch, "/api/v1/works/1"},
		{http.MethodDelete, "/api/v1/works/1"},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			repo := newMemoryRepository()
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{"title":"x"}`))

			newTestRouter(repo, false).ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
			assert.Empty(t, repo.created)
			assert.Empty(t, repo.updated)
			assert.Empty(t, repo.deleted)
		})
	}
}

func TestHandler_CreateWork(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCalls  int
	}{
		{
			name:       "valid draft",
			body:       `{"type":"Poem","title":"Tide","content":"Waves.","published_date":"2024-01-01","author":"Admin"}`,
			wantStatus: http.StatusCreated,
			wantCalls:  1,
		},
		{
			name:       "blank title",
			body:       `{"type":"Poem","title":"","content":"Waves.","published_date":"2024-01-01","author":"Admin"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed body",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemoryRepository()
			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodPost, "/api/v1/works", strings.NewReader(tt.body))

			newTestRouter(repo, true).ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Len(t, repo.created, tt.wantCalls)
		})
	}
}

func TestHandler_DeleteWork(t *testing.T) {
	repo := newMemoryRepository()
	recorder := httptest.NewRecorder()

	newTestRouter(repo, true).ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/api/v1/works/abc", nil))

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, []string{"abc"}, repo.deleted)
}
