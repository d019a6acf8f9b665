package middleware

import (
	"github.com/deppfellow/articles-api/internal/logger"
	"github.com/deppfellow/articles-api/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// LoggerKey is the Echo context key of the request-scoped logger.
const LoggerKey = "logger"

// articleIDParam is the route parameter naming the target article.
const articleIDParam = "id"

// ContextEnhancer derives a per-request logger from the server logger.
type ContextEnhancer struct {
	server *server.Server
}

func NewContextEnhancer(s *server.Server) *ContextEnhancer {
	return &ContextEnhancer{server: s}
}

// EnhanceContext attaches request_id, method, route, ip, the raw article id
// of /articles/:id routes and any New Relic trace ids to a child logger.
//
// The logger is reachable both through GetLogger and through zerolog.Ctx on
// the request context. Must run after RequestID and the New Relic middleware.
func (ce *ContextEnhancer) EnhanceContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			fields := ce.server.Logger.With().
				Str("request_id", GetRequestID(c)).
				Str("method", req.Method).
				Str("path", c.Path()).
				Str("ip", c.RealIP())
			if id := c.Param(articleIDParam); id != "" {
				fields = fields.Str("article_id", id)
			}
			requestLogger := fields.Logger()

			if txn := newrelic.FromContext(req.Context()); txn != nil {
				requestLogger = logger.WithTraceContext(requestLogger, txn)
			}

			c.Set(LoggerKey, &requestLogger)
			c.SetRequest(req.WithContext(requestLogger.WithContext(req.Context())))

			return next(c)
		}
	}
}

// GetLogger returns the request logger, or a disabled one outside
// EnhanceContext.
func GetLogger(c echo.Context) *zerolog.Logger {
	if l, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
		return l
	}

	nop := zerolog.Nop()
	return &nop
}
