package web_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/narratives/internal/comment"
	"github.com/taibuivan/narratives/internal/gateway"
	"github.com/taibuivan/narratives/internal/literature"
	"github.com/taibuivan/narratives/internal/platform/ctxutil"
	"github.com/taibuivan/narratives/internal/platform/sec"
	"github.com/taibuivan/narratives/internal/site"
	"github.com/taibuivan/narratives/internal/summary"
	"github.com/taibuivan/narratives/internal/web"
)

const testEmail = "writer@example.com"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func work(id, title, published string) literature.Work {
	date, err := literature.ParseDate(published)
	if err != nil {
		panic(err)
	}
	return literature.Work{ID: id, Type: literature.TypePoem, Title: title, Content: title + " body", PublishedDate: date, Author: "Admin"}
}

// # Works

type workRepository struct {
	mu      sync.Mutex
	works   []literature.Work
	err     error
	created []literature.Draft
	updated map[string]literature.Patch
	deleted []string
}

func newWorkRepository(works ...literature.Work) *workRepository {
	return &workRepository{works: works, updated: map[string]literature.Patch{}}
}

func (r *workRepository) ListWorks(_ context.Context) ([]literature.Work, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	works := slices.Clone(r.works)
	literature.Sort(works)
	return works, r.err
}

func (r *workRepository) GetWork(_ context.Context, id string) (*literature.Work, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, work := range r.works {
		if work.ID == id {
			return &work, nil
		}
	}
	return nil, &gateway.Error{Code: "PGRST116", Message: gateway.MessageNoRows}
}

func (r *workRepository) CreateWork(_ context.Context, draft literature.Draft) ([]literature.Work, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, draft)
	return []literature.Work{{ID: "created", Title: draft.Title}}, nil
}

func (r *workRepository) UpdateWork(_ context.Context, id string, patch literature.Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updated[id] = patch
	return nil
}

func (r *workRepository) DeleteWork(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, id)
	return nil
}

// # Comments

type commentRepository struct {
	mu       sync.Mutex
	comments []comment.Comment
}

func (r *commentRepository) ListComments(_ context.Context, literatureID string) ([]comment.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []comment.Comment
	for _, c := range r.comments {
		if c.LiteratureID == literatureID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *commentRepository) CreateComment(_ context.Context, literatureID string, input comment.Input) ([]comment.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	created := comment.Comment{
		ID:           "c" + time.Now().Format("150405.000000"),
		LiteratureID: literatureID,
		AuthorName:   input.AuthorName,
		Content:      input.Content,
		CreatedAt:    time.Now(),
	}
	r.comments = append(r.comments, created)
	return []comment.Comment{created}, nil
}

func (r *commentRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.comments)
}

// # Auth

// stubAuth knows one session, keyed by the token "valid".
type stubAuth struct{}

func (stubAuth) Enabled(provider string) bool { return provider == "github" }

func (stubAuth) SignInWithOAuth(context.Context, string, string) (string, error) { return "", nil }

func (stubAuth) ExchangeCodeForSession(context.Context, string, string, string) (*gateway.Session, string, error) {
	return nil, "", nil
}

func (stubAuth) GetSession(_ context.Context, token string) (*gateway.Session, error) {
	if token != "valid" {
		return nil, nil
	}
	return &gateway.Session{ID: "s1", AccessToken: token, User: gateway.User{ID: "github:1", Email: testEmail}}, nil
}

func (stubAuth) RefreshSession(context.Context, string) (*gateway.Session, error) { return nil, nil }

func (stubAuth) SignOut(context.Context, string) error { return nil }

func (stubAuth) OnAuthStateChange(context.Context, string, func(gateway.AuthEvent, *gateway.Session)) (*gateway.Subscription, error) {
	return gateway.NewSubscription(func() {}), nil
}

// # Fixture

type fixture struct {
	router   http.Handler
	hub      *gateway.Hub
	list     *literature.List
	works    *workRepository
	comments *commentRepository
}

func newFixture(t *testing.T, works ...literature.Work) *fixture {
	t.Helper()

	f := &fixture{
		hub:      gateway.NewHub(discardLogger(), nil),
		works:    newWorkRepository(works...),
		comments: &commentRepository{},
	}
	f.list = literature.NewList(f.works, f.hub, discardLogger())
	_ = f.list.Activate(context.Background())
	t.Cleanup(f.list.Deactivate)

	handler, err := web.NewHandler(web.Deps{
		Works:       f.list,
		WorkRepo:    f.works,
		CommentRepo: f.comments,
		Feed:        f.hub,
		Auth:        stubAuth{},
		Summary:     summary.NewService(nil, discardLogger()),
		Content:     site.Default(),
		Logger:      discardLogger(),
		Now:         func() time.Time { return time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Use(signInFromHeader)
	handler.RegisterRoutes(router)
	router.Route("/live", handler.RegisterLiveRoutes)
	f.router = router
	return f
}

// signInFromHeader signs in requests that carry X-Test-User.
func signInFromHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if email := request.Header.Get("X-Test-User"); email != "" {
			claims := &sec.AuthClaims{SessionID: "s1", UserID: "github:1", Email: email}
			request = request.WithContext(ctxutil.WithSessionClaims(request.Context(), claims))
		}
		next.ServeHTTP(writer, request)
	})
}
