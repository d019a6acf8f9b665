package router

import (
	"net/http"

	"github.com/deppfellow/articles-api/internal/handler"
	"github.com/labstack/echo/v4"
)

func registerArticleRoutes(r *echo.Echo, h *handler.Handlers) {
	a := h.Article

	r.GET("/", handler.HandleText(a.Handler, a.Root))

	articles := r.Group("/articles")
	articles.GET("", handler.Handle(a.Handler, a.ListArticles, http.StatusOK))
	articles.POST("", handler.Handle(a.Handler, a.CreateArticle, http.StatusCreated))
	articles.PATCH("/:id", handler.Handle(a.Handler, a.UpdateArticle, http.StatusOK))
	articles.DELETE("/:id", handler.Handle(a.Handler, a.DeleteArticle, http.StatusOK))
}
