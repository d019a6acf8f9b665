package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/deppfellow/articles-api/internal/config"
	"github.com/deppfellow/articles-api/internal/handler"
	"github.com/deppfellow/articles-api/internal/lib/healthcheck"
	"github.com/deppfellow/articles-api/internal/model"
	"github.com/deppfellow/articles-api/internal/repository"
	"github.com/deppfellow/articles-api/internal/server"
	"github.com/deppfellow/articles-api/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore is an in-memory ArticleStore so the full stack from router
// to service runs without a database.
type memoryStore struct {
	articles []model.Article
	nextID   int64
	block    bool
}

func (m *memoryStore) List(ctx context.Context) ([]model.Article, error) {
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return append([]model.Article(nil), m.articles...), nil
}

func (m *memoryStore) Create(_ context.Context, in model.NewArticle) (model.Article, error) {
	m.nextID++
	a := model.Article{ID: m.nextID, Title: in.Title, Content: in.Content, Author: in.Author}
	m.articles = append(m.articles, a)
	return a, nil
}

func (m *memoryStore) find(id int64) int {
	for i, a := range m.articles {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (m *memoryStore) Update(_ context.Context, id int64, patch model.ArticlePatch) (model.Article, error) {
	if patch.Empty() {
		return model.Article{}, repository.ErrNoFieldsToUpdate
	}
	i := m.find(id)
	if i < 0 {
		return model.Article{}, repository.ErrArticleNotFound
	}
	if patch.Title != nil {
		m.articles[i].Title = *patch.Title
	}
	if patch.Content != nil {
		m.articles[i].Content = *patch.Content
	}
	if patch.Author != nil {
		m.articles[i].Author = *patch.Author
	}
	return m.articles[i], nil
}

func (m *memoryStore) Delete(_ context.Context, id int64) (model.Article, error) {
	i := m.find(id)
	if i < 0 {
		return model.Article{}, repository.ErrArticleNotFound
	}
	a := m.articles[i]
	m.articles = append(m.articles[:i], m.articles[i+1:]...)
	return a, nil
}

func newTestRouter(t *testing.T, store *memoryStore, requestTimeout int) *echo.Echo {
	t.Helper()

	logger := zerolog.Nop()
	s := &server.Server{
		Config: &config.Config{
			Primary: config.Primary{Env: "test"},
			Server: config.ServerConfig{
				CORSAllowedOrigins: []string{"*"},
				RequestTimeout:     requestTimeout,
			},
			Observability: config.DefaultObservabilityConfig(),
		},
		Logger: &logger,
		Health: healthcheck.NewChecker("test", time.Second, &logger, nil),
	}

	svc := service.NewArticleService(store, nil)
	h := &handler.Handlers{
		Article: handler.NewArticleHandler(s, svc),
		Health:  handler.NewHealthHandler(s),
		OpenAPI: handler.NewOpenAPIHandler(s),
	}

	return NewRouter(s, h)
}

func request(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_ArticleLifecycle(t *testing.T) {
	e := newTestRouter(t, &memoryStore{}, 0)

	rec := request(e, http.MethodGet, "/articles", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "No articles found.")

	rec = request(e, http.MethodPost, "/articles", `{"title":"First","content":"Body","author":"Ann"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"Article created successfully.","article":{"id":1,"title":"First","content":"Body","author":"Ann"}}`, rec.Body.String())

	rec = request(e, http.MethodPost, "/articles", `{"title":"Second","content":"More","author":"Bob"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = request(e, http.MethodPatch, "/articles/1", `{"content":"Edited"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Article updated successfully.","article":{"id":1,"title":"First","content":"Edited","author":"Ann"}}`, rec.Body.String())

	rec = request(e, http.MethodPatch, "/articles/1", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No fields provided for update.")

	rec = request(e, http.MethodPatch, "/articles/99", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Article not found.")

	rec = request(e, http.MethodDelete, "/articles/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Article deleted successfully.")

	rec = request(e, http.MethodGet, "/articles", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":1,"title":"First","content":"Edited","author":"Ann"}]`, rec.Body.String())

	rec = request(e, http.MethodDelete, "/articles/2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_UnassignableIDsAreNotFound(t *testing.T) {
	e := newTestRouter(t, &memoryStore{}, 0)

	rec := request(e, http.MethodPost, "/articles", `{"title":"First","content":"Body","author":"Ann"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	tests := []struct {
		method string
		target string
		body   string
	}{
		{http.MethodDelete, "/articles/0", ""},
		{http.MethodDelete, "/articles/-3", ""},
		{http.MethodPatch, "/articles/0", `{"title":"x"}`},
		{http.MethodPatch, "/articles/-3", `{"title":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rec := request(e, tt.method, tt.target, tt.body)

			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Contains(t, rec.Body.String(), "ARTICLE_NOT_FOUND")
			assert.Contains(t, rec.Body.String(), "Article not found.")
		})
	}

	rec = request(e, http.MethodDelete, "/articles/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Root(t *testing.T) {
	e := newTestRouter(t, &memoryStore{}, 0)

	rec := request(e, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to the article management API!", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRouter_UnknownRouteAndMethod(t *testing.T) {
	e := newTestRouter(t, &memoryStore{}, 0)

	rec := request(e, http.MethodGet, "/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Route not found")

	rec = request(e, http.MethodPut, "/articles/1", `{"title":"x"}`)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_Status(t *testing.T) {
	e := newTestRouter(t, &memoryStore{}, 0)

	rec := request(e, http.MethodGet, "/status", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestRouter_RequestTimeout(t *testing.T) {
	e := newTestRouter(t, &memoryStore{block: true}, 1)

	rec := request(e, http.MethodGet, "/articles", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
