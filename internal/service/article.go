package service

import (
	"context"
	"errors"

	"github.com/deppfellow/articles-api/internal/errs"
	"github.com/deppfellow/articles-api/internal/model"
	"github.com/deppfellow/articles-api/internal/repository"
	"github.com/deppfellow/articles-api/internal/sqlerr"
	"github.com/rs/zerolog"
)

const (
	MsgNoArticles      = "No articles found."
	MsgArticleNotFound = "Article not found."
	MsgNoFields        = "No fields provided for update."
)

var (
	codeArticlesNotFound = "ARTICLES_NOT_FOUND"
	codeArticleNotFound  = "ARTICLE_NOT_FOUND"
	codeNoFields         = "NO_FIELDS_TO_UPDATE"
)

// ArticleStore is the persistence the service needs. It is satisfied by
// *repository.ArticleRepository.
type ArticleStore interface {
	List(ctx context.Context) ([]model.Article, error)
	Create(ctx context.Context, in model.NewArticle) (model.Article, error)
	Update(ctx context.Context, id int64, patch model.ArticlePatch) (model.Article, error)
	Delete(ctx context.Context, id int64) (model.Article, error)
}

// EventPublisher hands article changes to the background job queue.
type EventPublisher interface {
	PublishArticleEvent(ctx context.Context, event model.ArticleEvent, article model.Article) error
}

type ArticleService struct {
	store  ArticleStore
	events EventPublisher
}

// NewArticleService builds the service. events may be nil, in which case
// no events are published.
func NewArticleService(store ArticleStore, events EventPublisher) *ArticleService {
	return &ArticleService{
		store:  store,
		events: events,
	}
}

// ListArticles returns all articles ordered by id. An empty table is
// reported as a 404.
func (s *ArticleService) ListArticles(ctx context.Context) ([]model.Article, error) {
	articles, err := s.store.List(ctx)
	if err != nil {
		return nil, storeError(ctx, "list", err)
	}

	if len(articles) == 0 {
		return nil, errs.NewNotFoundError(MsgNoArticles, true, &codeArticlesNotFound)
	}

	return articles, nil
}

func (s *ArticleService) CreateArticle(ctx context.Context, in model.NewArticle) (model.Article, error) {
	article, err := s.store.Create(ctx, in)
	if err != nil {
		return model.Article{}, storeError(ctx, "create", err)
	}

	s.publish(ctx, model.ArticleCreated, article)
	return article, nil
}

// UpdateArticle writes only the fields present in patch.
func (s *ArticleService) UpdateArticle(ctx context.Context, id int64, patch model.ArticlePatch) (model.Article, error) {
	article, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return model.Article{}, mapStoreError(ctx, "update", err)
	}

	s.publish(ctx, model.ArticleUpdated, article)
	return article, nil
}

// DeleteArticle removes an article and returns its last state.
func (s *ArticleService) DeleteArticle(ctx context.Context, id int64) (model.Article, error) {
	article, err := s.store.Delete(ctx, id)
	if err != nil {
		return model.Article{}, mapStoreError(ctx, "delete", err)
	}

	s.publish(ctx, model.ArticleDeleted, article)
	return article, nil
}

func mapStoreError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNoFieldsToUpdate):
		return errs.NewBadRequestError(MsgNoFields, true, &codeNoFields, nil)
	case errors.Is(err, repository.ErrArticleNotFound):
		return errs.NewNotFoundError(MsgArticleNotFound, true, &codeArticleNotFound)
	default:
		return storeError(ctx, op, err)
	}
}

// storeError logs the driver error, which never reaches the client, and
// returns its classified form.
func storeError(ctx context.Context, op string, err error) error {
	zerolog.Ctx(ctx).Error().
		Err(err).
		Str("store_operation", op).
		Str("sql_error", string(sqlerr.ErrCode(err))).
		Msg("article store failed")

	return sqlerr.HandleError(err)
}

// publish is best effort: the article change is already committed, so a
// queue failure is logged and dropped.
func (s *ArticleService) publish(ctx context.Context, event model.ArticleEvent, article model.Article) {
	if s.events == nil {
		return
	}

	if err := s.events.PublishArticleEvent(ctx, event, article); err != nil {
		zerolog.Ctx(ctx).Warn().
			Err(err).
			Str("event", string(event)).
			Int64("article_id", article.ID).
			Msg("failed to publish article event")
	}
}
