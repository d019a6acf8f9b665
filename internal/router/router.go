// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API routes,
// mapping specific paths to their corresponding handlers.
package router

import (
	"github.com/deppfellow/articles-api/internal/handler"
	"github.com/deppfellow/articles-api/internal/middleware"
	"github.com/deppfellow/articles-api/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the Echo instance with the global middleware chain and
// every route.
//
// Middleware order matters: the request id and the New Relic transaction
// must exist before the context enhancer builds the request logger, and
// the logger must exist before anything that logs.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	m := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = m.Global.GlobalErrorHandler

	router.Use(
		m.Global.CORS(),
		m.Global.Secure(),
		middleware.RequestID(),
		m.Tracing.NewRelicMiddleware(),
		m.Tracing.EnhanceTracing(),
		m.ContextEnhancer.EnhanceContext(),
		m.Global.RequestLogger(),
		m.Global.Recover(),
		m.RateLimit.Limit(),
		m.Global.Timeout(),
	)

	registerSystemRoutes(router, h)
	registerArticleRoutes(router, h)

	return router
}
