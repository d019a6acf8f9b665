package model

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ListArticlesRequest has no input; it exists so listing goes through the
// same bind and validate pipeline as the other routes.
type ListArticlesRequest struct{}

func (r *ListArticlesRequest) Validate() error {
	return nil
}

// CreateArticleRequest is the POST /articles body. All three fields must be
// present and non-empty.
type CreateArticleRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
	Author  string `json:"author" validate:"required"`
}

func (r *CreateArticleRequest) Validate() error {
	return validate.Struct(r)
}

func (r *CreateArticleRequest) NewArticle() NewArticle {
	return NewArticle{
		Title:   r.Title,
		Content: r.Content,
		Author:  r.Author,
	}
}

// ArticleIDRequest carries the :id path parameter. Any integer binds; an id
// no row can have is reported as not found by the store.
type ArticleIDRequest struct {
	ID int64 `param:"id" json:"-"`
}

func (r *ArticleIDRequest) Validate() error {
	return validate.Struct(r)
}

// UpdateArticleRequest is PATCH /articles/:id. A field left out of the body
// stays nil and is not written; a field sent as "" is rejected.
type UpdateArticleRequest struct {
	ID      int64   `param:"id" json:"-"`
	Title   *string `json:"title" validate:"omitnil,min=1"`
	Content *string `json:"content" validate:"omitnil,min=1"`
	Author  *string `json:"author" validate:"omitnil,min=1"`
}

func (r *UpdateArticleRequest) Validate() error {
	return validate.Struct(r)
}

func (r *UpdateArticleRequest) Patch() ArticlePatch {
	return ArticlePatch{
		Title:   r.Title,
		Content: r.Content,
		Author:  r.Author,
	}
}
