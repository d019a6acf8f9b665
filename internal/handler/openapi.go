package handler

import (
	"embed"
	"fmt"
	"net/http"

	"github.com/deppfellow/articles-api/internal/server"
	"github.com/labstack/echo/v4"
)

//go:embed static/openapi.html static/openapi.json
var docs embed.FS

// OpenAPIHandler serves the API reference UI and the document it renders.
type OpenAPIHandler struct {
	Handler
}

func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s),
	}
}

// ServeOpenAPIUI serves the reference page. Caching is disabled so a new
// build's docs show up immediately.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	return h.serve(c, "static/openapi.html", echo.MIMETextHTMLCharsetUTF8)
}

// ServeOpenAPISpec serves the OpenAPI document.
func (h *OpenAPIHandler) ServeOpenAPISpec(c echo.Context) error {
	return h.serve(c, "static/openapi.json", echo.MIMEApplicationJSONCharsetUTF8)
}

func (h *OpenAPIHandler) serve(c echo.Context, name, contentType string) error {
	body, err := docs.ReadFile(name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	c.Response().Header().Set("Cache-Control", "no-cache")

	if err := c.Blob(http.StatusOK, contentType, body); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	return nil
}
