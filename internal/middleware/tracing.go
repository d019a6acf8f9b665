package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/deppfellow/articles-api/internal/server"
)

// TracingMiddleware owns the New Relic Echo middleware. nrApp is nil when
// New Relic is disabled.
type TracingMiddleware struct {
	server *server.Server
	nrApp  *newrelic.Application
}

func NewTracingMiddleware(s *server.Server, nrApp *newrelic.Application) *TracingMiddleware {
	return &TracingMiddleware{
		server: s,
		nrApp:  nrApp,
	}
}

// NewRelicMiddleware starts a transaction per request, or passes requests
// through untouched without an application.
func (tm *TracingMiddleware) NewRelicMiddleware() echo.MiddlewareFunc {
	if tm.nrApp == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return nrecho.Middleware(tm.nrApp)
}

// EnhanceTracing annotates the current transaction with request metadata,
// the article id on /articles/:id routes, any returned error and the final
// status code.
func (tm *TracingMiddleware) EnhanceTracing() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			txn := newrelic.FromContext(c.Request().Context())
			if txn == nil {
				return next(c)
			}

			for key, value := range requestAttributes(c) {
				txn.AddAttribute(key, value)
			}

			err := next(c)
			if err != nil {
				txn.NoticeError(nrpkgerrors.Wrap(err))
			}
			txn.AddAttribute("http.status_code", statusFromError(err, c.Response().Status))

			return err
		}
	}
}

// requestAttributes lists the custom transaction attributes for a request.
// Empty values are left out.
func requestAttributes(c echo.Context) map[string]string {
	attrs := map[string]string{
		"http.real_ip":    c.RealIP(),
		"http.user_agent": c.Request().UserAgent(),
		"http.route":      c.Path(),
		"request.id":      GetRequestID(c),
		"article.id":      c.Param(articleIDParam),
	}
	for key, value := range attrs {
		if value == "" {
			delete(attrs, key)
		}
	}
	return attrs
}
