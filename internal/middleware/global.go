package middleware

import (
	"net/http"
	"time"

	"github.com/deppfellow/articles-api/internal/errs"
	"github.com/deppfellow/articles-api/internal/server"
	"github.com/deppfellow/articles-api/internal/sqlerr"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// GlobalMiddlewares groups middleware applied to every route and the
// global error handler. They read their settings from the server config.
type GlobalMiddlewares struct {
	server *server.Server
}

func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: global.server.Config.Server.CORSAllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
	})
}

// statusFromError returns the status the global error handler will write
// for err. The response status is not final yet when a handler returns an
// error, see https://github.com/labstack/echo/issues/2310.
func statusFromError(err error, fallback int) int {
	if err == nil {
		return fallback
	}
	return toHTTPError(err).Status
}

// RequestLogger writes one "API" line per request at a level derived from
// the final status: Error for 5xx, Warn for 4xx, Info otherwise.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			statusCode := statusFromError(v.Error, v.Status)

			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			if requestID := GetRequestID(c); requestID != "" {
				e = e.Str("request_id", requestID)
			}

			e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("ip", c.RealIP()).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.Recover()
}

func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// Timeout bounds every request's context by server.request_timeout seconds
// so a hung query is cancelled. Zero disables it.
func (global *GlobalMiddlewares) Timeout() echo.MiddlewareFunc {
	seconds := global.server.Config.Server.RequestTimeout
	if seconds <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	return middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Timeout: time.Duration(seconds) * time.Second,
	})
}

// Messages for echo errors that would otherwise leak framework wording.
const (
	msgRouteNotFound  = "Route not found"
	msgRequestTimeout = "The request timed out, please retry later"
)

// toHTTPError normalizes any error returned by a handler or middleware into
// the client-facing errs.HTTPError shape.
//
// Echo's own errors keep their status; their message is only passed through
// below 500. Everything else goes through sqlerr.HandleError, which never
// exposes driver text.
func toHTTPError(err error) *errs.HTTPError {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var echoErr *echo.HTTPError
	if !errors.As(err, &echoErr) {
		if errors.As(sqlerr.HandleError(err), &httpErr) {
			return httpErr
		}
		return errs.NewInternalServerError()
	}

	switch echoErr.Code {
	case http.StatusNotFound:
		return errs.NewNotFoundError(msgRouteNotFound, false, nil)
	case http.StatusServiceUnavailable:
		return errs.NewServiceUnavailableError(msgRequestTimeout)
	}

	message := http.StatusText(echoErr.Code)
	if msg, ok := echoErr.Message.(string); ok && echoErr.Code < http.StatusInternalServerError {
		message = msg
	}

	return &errs.HTTPError{
		Code:    errs.MakeUpperCaseWithUnderscores(http.StatusText(echoErr.Code)),
		Message: message,
		Status:  echoErr.Code,
	}
}

// GlobalErrorHandler is the final error funnel for the entire HTTP server.
// The original error is logged; the client only sees the sanitized shape.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	httpErr := toHTTPError(err)

	logger := GetLogger(c)

	event := logger.Warn()
	if httpErr.Status >= http.StatusInternalServerError {
		event = logger.Error().Stack()
	}
	event.
		Err(err).
		Int("status", httpErr.Status).
		Str("error_code", httpErr.Code).
		Msg(httpErr.Message)

	if c.Response().Committed {
		return
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(httpErr.Status)
		return
	}

	_ = c.JSON(httpErr.Status, httpErr)
}
