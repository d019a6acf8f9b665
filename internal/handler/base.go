package handler

import (
	"net/http"
	"reflect"
	"time"

	"github.com/deppfellow/articles-api/internal/middleware"
	"github.com/deppfellow/articles-api/internal/server"
	"github.com/deppfellow/articles-api/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Handler is the base handler type that holds shared application
// dependencies. Concrete handlers embed it.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc is a typed endpoint: it receives a bound and validated
// request and returns a response or an error. Req is a pointer to a
// request struct.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

// ResponseHandler writes a successful result and describes it for logs
// and tracing.
type ResponseHandler interface {
	Handle(c echo.Context, result interface{}) error
	GetOperation() string
	AddAttributes(txn *newrelic.Transaction, result interface{})
}

// JSONResponseHandler writes JSON responses with a given status code.
type JSONResponseHandler struct {
	status int
}

func (h JSONResponseHandler) Handle(c echo.Context, result interface{}) error {
	return c.JSON(h.status, result)
}

func (h JSONResponseHandler) GetOperation() string {
	return "handler"
}

func (h JSONResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {
	if txn == nil || result == nil {
		return
	}
	if v := reflect.ValueOf(result); v.Kind() == reflect.Slice {
		txn.AddAttribute("response.items", v.Len())
	}
}

// TextResponseHandler writes a plain text body. The result must be a string.
type TextResponseHandler struct {
	status int
}

func (h TextResponseHandler) Handle(c echo.Context, result interface{}) error {
	return c.String(h.status, result.(string))
}

func (h TextResponseHandler) GetOperation() string {
	return "handler_text"
}

func (h TextResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {}

// newRequest returns a zero request for one call. When Req is a pointer
// type a new struct is allocated, so concurrent requests never share
// bound fields.
func newRequest[Req validation.Validatable]() Req {
	var req Req
	t := reflect.TypeOf(&req).Elem()
	if t.Kind() == reflect.Pointer {
		return reflect.New(t.Elem()).Interface().(Req)
	}
	return req
}

// phase records the outcome of one pipeline step ("validation" or
// "handler") as New Relic attributes.
func phase(txn *newrelic.Transaction, name string, d time.Duration, err error) {
	if txn == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failed"
		txn.NoticeError(nrpkgerrors.Wrap(err))
	}
	txn.AddAttribute(name+".status", status)
	txn.AddAttribute(name+".duration_ms", d.Milliseconds())
}

// handleRequest is the pipeline shared by every typed endpoint: bind and
// validate into a fresh request, run the handler, then write the response.
// Each step is timed, logged and reported to New Relic.
func handleRequest[Req validation.Validatable](
	c echo.Context,
	handler func(c echo.Context, req Req) (interface{}, error),
	responseHandler ResponseHandler,
) error {
	start := time.Now()
	route := c.Path()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", route)
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", responseHandler.GetOperation()).
		Str("route", route).
		Logger()

	logger.Debug().Msg("handling request")

	req := newRequest[Req]()

	err := validation.BindAndValidate(c, req)
	validationDuration := time.Since(start)
	phase(txn, "validation", validationDuration, err)
	if err != nil {
		logger.Warn().
			Err(err).
			Dur("validation_duration", validationDuration).
			Msg("request validation failed")
		return err
	}

	handlerStart := time.Now()
	result, err := handler(c, req)
	handlerDuration := time.Since(handlerStart)
	phase(txn, "handler", handlerDuration, err)

	totalDuration := time.Since(start)
	if txn != nil {
		txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
	}

	if err != nil {
		logger.Warn().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", totalDuration).
			Msg("handler execution failed")
		return err
	}

	responseHandler.AddAttributes(txn, result)

	logger.Debug().
		Dur("validation_duration", validationDuration).
		Dur("handler_duration", handlerDuration).
		Dur("total_duration", totalDuration).
		Msg("request completed successfully")

	return responseHandler.Handle(c, result)
}

// Handle wraps a typed handler with binding, validation, logging and
// tracing, and writes its result as JSON with status.
//
//	router.POST("/articles", handler.Handle(h, h.CreateArticle, http.StatusCreated))
func Handle[Req validation.Validatable, Res any](
	h Handler,
	handler HandlerFunc[Req, Res],
	status int,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, func(c echo.Context, req Req) (interface{}, error) {
			return handler(c, req)
		}, JSONResponseHandler{status: status})
	}
}

// HandleText is Handle for endpoints that answer with plain text.
func HandleText[Req validation.Validatable](
	h Handler,
	handler HandlerFunc[Req, string],
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, func(c echo.Context, req Req) (interface{}, error) {
			return handler(c, req)
		}, TextResponseHandler{status: http.StatusOK})
	}
}
