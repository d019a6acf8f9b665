package handler

import (
	"context"

	"github.com/deppfellow/articles-api/internal/model"
	"github.com/deppfellow/articles-api/internal/server"
	"github.com/labstack/echo/v4"
)

const (
	MsgWelcome        = "Welcome to the article management API!"
	MsgArticleCreated = "Article created successfully."
	MsgArticleUpdated = "Article updated successfully."
	MsgArticleDeleted = "Article deleted successfully."
)

// ArticleService is the business layer behind the article routes.
type ArticleService interface {
	ListArticles(ctx context.Context) ([]model.Article, error)
	CreateArticle(ctx context.Context, in model.NewArticle) (model.Article, error)
	UpdateArticle(ctx context.Context, id int64, patch model.ArticlePatch) (model.Article, error)
	DeleteArticle(ctx context.Context, id int64) (model.Article, error)
}

// ArticleResponse is the body of every successful write.
type ArticleResponse struct {
	Message string        `json:"message"`
	Article model.Article `json:"article"`
}

type ArticleHandler struct {
	Handler
	articles ArticleService
}

func NewArticleHandler(s *server.Server, articles ArticleService) *ArticleHandler {
	return &ArticleHandler{
		Handler:  NewHandler(s),
		articles: articles,
	}
}

type rootRequest struct{}

func (r *rootRequest) Validate() error { return nil }

// Root answers GET / with a plain text greeting.
func (h *ArticleHandler) Root(c echo.Context, _ *rootRequest) (string, error) {
	return MsgWelcome, nil
}

// ListArticles answers GET /articles with a bare JSON array ordered by id.
func (h *ArticleHandler) ListArticles(c echo.Context, _ *model.ListArticlesRequest) ([]model.Article, error) {
	return h.articles.ListArticles(c.Request().Context())
}

func (h *ArticleHandler) CreateArticle(c echo.Context, req *model.CreateArticleRequest) (ArticleResponse, error) {
	article, err := h.articles.CreateArticle(c.Request().Context(), req.NewArticle())
	if err != nil {
		return ArticleResponse{}, err
	}
	return ArticleResponse{Message: MsgArticleCreated, Article: article}, nil
}

// UpdateArticle applies PATCH /articles/:id.
func (h *ArticleHandler) UpdateArticle(c echo.Context, req *model.UpdateArticleRequest) (ArticleResponse, error) {
	article, err := h.articles.UpdateArticle(c.Request().Context(), req.ID, req.Patch())
	if err != nil {
		return ArticleResponse{}, err
	}
	return ArticleResponse{Message: MsgArticleUpdated, Article: article}, nil
}

func (h *ArticleHandler) DeleteArticle(c echo.Context, req *model.ArticleIDRequest) (ArticleResponse, error) {
	article, err := h.articles.DeleteArticle(c.Request().Context(), req.ID)
	if err != nil {
		return ArticleResponse{}, err
	}
	return ArticleResponse{Message: MsgArticleDeleted, Article: article}, nil
}
