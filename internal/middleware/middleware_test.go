package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/articles-api/internal/config"
	"github.com/deppfellow/articles-api/internal/errs"
	"github.com/deppfellow/articles-api/internal/server"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(buf *bytes.Buffer) *server.Server {
	logger := zerolog.New(buf)
	return &server.Server{
		Config: &config.Config{
			Primary: config.Primary{Env: "test"},
			Server: config.ServerConfig{
				CORSAllowedOrigins: []string{"*"},
			},
			Observability: config.DefaultObservabilityConfig(),
		},
		Logger: &logger,
	}
}

func newTestEcho(s *server.Server) *echo.Echo {
	e := echo.New()
	m := NewMiddlewares(s)
	e.HTTPErrorHandler = m.Global.GlobalErrorHandler
	e.Use(RequestID(), m.ContextEnhancer.EnhanceContext(), m.RateLimit.Limit())
	return e
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errs.HTTPError {
	t.Helper()

	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGlobalErrorHandler_HTTPError(t *testing.T) {
	var logs bytes.Buffer
	e := newTestEcho(newTestServer(&logs))
	code := "ARTICLE_NOT_FOUND"
	e.GET("/articles/:id", func(c echo.Context) error {
		return errs.NewNotFoundError("Article not found.", true, &code)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles/9", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "Article not found.", body.Message)
	assert.Equal(t, "ARTICLE_NOT_FOUND", body.Code)
	assert.True(t, body.Override)
}

func TestGlobalErrorHandler_UnknownRoute(t *testing.T) {
	var logs bytes.Buffer
	e := newTestEcho(newTestServer(&logs))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", decodeError(t, rec).Message)
}

func TestGlobalErrorHandler_RawErrorIsLoggedNotReturned(t *testing.T) {
	var logs bytes.Buffer
	e := newTestEcho(newTestServer(&logs))
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("dial tcp 10.0.0.5:5432: secret detail")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret detail")
	assert.Equal(t, "Internal Server Error", decodeError(t, rec).Message)
	assert.Contains(t, logs.String(), "secret detail")
}

func TestRequestID(t *testing.T) {
	var logs bytes.Buffer
	e := newTestEcho(newTestServer(&logs))
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, GetRequestID(c))
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := rec.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	for _, bad := range []string{"has space", "line\nbreak", strings.Repeat("x", maxRequestIDLength+1)} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, bad)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		replaced := rec.Header().Get(RequestIDHeader)
		assert.NotEqual(t, bad, replaced)
		assert.Len(t, replaced, 36)
	}
}

func TestEnhanceContext_ArticleID(t *testing.T) {
	var logs bytes.Buffer
	e := newTestEcho(newTestServer(&logs))
	e.DELETE("/articles/:id", func(c echo.Context) error {
		GetLogger(c).Info().Msg("deleting")
		return c.NoContent(http.StatusOK)
	})

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/articles/7", nil))

	assert.Contains(t, logs.String(), `"article_id":"7"`)
	assert.Contains(t, logs.String(), `"path":"/articles/:id"`)
}

func TestRequestAttributes(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/articles/3", nil)
	req.Header.Set("User-Agent", "curl/8.0")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/articles/:id")
	c.SetParamNames("id")
	c.SetParamValues("3")
	c.Set(RequestIDKey, "req-1")

	attrs := requestAttributes(c)

	assert.Equal(t, "3", attrs["article.id"])
	assert.Equal(t, "/articles/:id", attrs["http.route"])
	assert.Equal(t, "req-1", attrs["request.id"])
	assert.Equal(t, "curl/8.0", attrs["http.user_agent"])

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, ok := requestAttributes(c)["article.id"]
	assert.False(t, ok)
}

func TestEnhanceContext_LoggerInRequestContext(t *testing.T) {
	var logs bytes.Buffer
	e := newTestEcho(newTestServer(&logs))
	e.GET("/articles", func(c echo.Context) error {
		zerolog.Ctx(c.Request().Context()).Info().Msg("from service")
		GetLogger(c).Info().Msg("from handler")
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/articles", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	e.ServeHTTP(httptest.NewRecorder(), req)

	lines := bytes.Split(bytes.TrimSpace(logs.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Contains(t, string(line), `"request_id":"req-42"`)
		assert.Contains(t, string(line), `"path":"/articles"`)
	}
}

func TestGetLogger_WithoutEnhancer(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	assert.NotNil(t, GetLogger(c))
}

func TestRateLimit(t *testing.T) {
	var logs bytes.Buffer
	s := newTestServer(&logs)
	s.Config.Server.RateLimit = 1

	e := newTestEcho(s)
	e.GET("/articles", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/status", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles", nil))
		statuses = append(statuses, rec.Code)
	}
	assert.Equal(t, http.StatusOK, statuses[0])
	assert.Contains(t, statuses[1:], http.StatusTooManyRequests)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestStatusFromError(t *testing.T) {
	assert.Equal(t, http.StatusOK, statusFromError(nil, http.StatusOK))
	assert.Equal(t, http.StatusBadRequest, statusFromError(errs.NewBadRequestError("x", false, nil, nil), http.StatusOK))
	assert.Equal(t, http.StatusMethodNotAllowed, statusFromError(echo.ErrMethodNotAllowed, http.StatusOK))
	assert.Equal(t, http.StatusInternalServerError, statusFromError(errors.New("x"), http.StatusOK))
	assert.Equal(t, http.StatusServiceUnavailable, statusFromError(&pgconn.PgError{Code: "08006"}, http.StatusOK))
}

func TestToHTTPError(t *testing.T) {
	notFound := errs.NewNotFoundError("Article not found.", false, nil)

	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{name: "http error unchanged", err: notFound, status: http.StatusNotFound, code: "NOT_FOUND", message: "Article not found."},
		{name: "unknown route", err: echo.ErrNotFound, status: http.StatusNotFound, code: "NOT_FOUND", message: msgRouteNotFound},
		{name: "context timeout", err: echo.ErrServiceUnavailable, status: http.StatusServiceUnavailable, code: "SERVICE_UNAVAILABLE", message: msgRequestTimeout},
		{name: "method not allowed", err: echo.ErrMethodNotAllowed, status: http.StatusMethodNotAllowed, code: "METHOD_NOT_ALLOWED", message: "Method Not Allowed"},
		{name: "echo 500 hides message", err: echo.NewHTTPError(http.StatusInternalServerError, "boom"), status: http.StatusInternalServerError, code: "INTERNAL_SERVER_ERROR", message: "Internal Server Error"},
		{name: "raw error", err: errors.New("driver exploded"), status: http.StatusInternalServerError, code: "INTERNAL_SERVER_ERROR", message: "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toHTTPError(tt.err)

			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.message, got.Message)
		})
	}
}
