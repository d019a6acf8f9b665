package service

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/deppfellow/articles-api/internal/errs"
	"github.com/deppfellow/articles-api/internal/model"
	"github.com/deppfellow/articles-api/internal/repository"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	articles []model.Article
	err      error

	gotID    int64
	gotPatch model.ArticlePatch
}

func (f *fakeStore) List(context.Context) ([]model.Article, error) {
	return f.articles, f.err
}

func (f *fakeStore) Create(_ context.Context, in model.NewArticle) (model.Article, error) {
	if f.err != nil {
		return model.Article{}, f.err
	}
	return model.Article{ID: 1, Title: in.Title, Content: in.Content, Author: in.Author}, nil
}

func (f *fakeStore) Update(_ context.Context, id int64, patch model.ArticlePatch) (model.Article, error) {
	f.gotID, f.gotPatch = id, patch
	if f.err != nil {
		return model.Article{}, f.err
	}
	return model.Article{ID: id, Title: *patch.Title}, nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) (model.Article, error) {
	f.gotID = id
	if f.err != nil {
		return model.Article{}, f.err
	}
	return model.Article{ID: id}, nil
}

type publishedEvent struct {
	event model.ArticleEvent
	id    int64
}

type fakePublisher struct {
	events []publishedEvent
	err    error
}

func (f *fakePublisher) PublishArticleEvent(_ context.Context, event model.ArticleEvent, article model.Article) error {
	f.events = append(f.events, publishedEvent{event: event, id: article.ID})
	return f.err
}

func requireHTTPError(t *testing.T, err error, status int) *errs.HTTPError {
	t.Helper()

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, status, httpErr.Status)
	return httpErr
}

func title(s string) *string { return &s }

func TestListArticles(t *testing.T) {
	store := &fakeStore{articles: []model.Article{{ID: 1}, {ID: 2}}}
	svc := NewArticleService(store, nil)

	articles, err := svc.ListArticles(context.Background())
	require.NoError(t, err)
	assert.Len(t, articles, 2)
}

func TestListArticles_EmptyIsNotFound(t *testing.T) {
	svc := NewArticleService(&fakeStore{}, nil)

	_, err := svc.ListArticles(context.Background())

	httpErr := requireHTTPError(t, err, http.StatusNotFound)
	assert.Equal(t, MsgNoArticles, httpErr.Message)
	assert.Equal(t, "ARTICLES_NOT_FOUND", httpErr.Code)
}

func TestListArticles_StoreErrorIsSanitized(t *testing.T) {
	svc := NewArticleService(&fakeStore{err: errors.New("pq: password authentication failed")}, nil)

	_, err := svc.ListArticles(context.Background())

	httpErr := requireHTTPError(t, err, http.StatusInternalServerError)
	assert.NotContains(t, httpErr.Message, "password")
}

func TestListArticles_StoreErrorIsLoggedFromContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(context.Background())
	svc := NewArticleService(&fakeStore{err: errors.New("relation \"articles\" does not exist")}, nil)

	_, err := svc.ListArticles(ctx)
	require.Error(t, err)

	assert.Contains(t, buf.String(), "article store failed")
	assert.Contains(t, buf.String(), `relation \"articles\" does not exist`)
	assert.Contains(t, buf.String(), `"store_operation":"list"`)
	assert.Contains(t, buf.String(), `"sql_error":"other"`)
}

func TestCreateArticle_StoreErrorLogsSQLClass(t *testing.T) {
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(context.Background())
	svc := NewArticleService(&fakeStore{err: &pgconn.PgError{Code: "42P01", Message: `relation "articles" does not exist`}}, nil)

	_, err := svc.CreateArticle(ctx, model.NewArticle{Title: "T", Content: "C", Author: "A"})
	requireHTTPError(t, err, http.StatusInternalServerError)

	assert.Contains(t, buf.String(), `"sql_error":"undefined_table"`)
	assert.Contains(t, buf.String(), `"store_operation":"create"`)
}

func TestCreateArticle_PublishesEvent(t *testing.T) {
	events := &fakePublisher{}
	svc := NewArticleService(&fakeStore{}, events)

	article, err := svc.CreateArticle(context.Background(), model.NewArticle{Title: "T", Content: "C", Author: "A"})
	require.NoError(t, err)

	assert.Equal(t, "T", article.Title)
	assert.Equal(t, []publishedEvent{{event: model.ArticleCreated, id: 1}}, events.events)
}

func TestCreateArticle_NotNullViolationIsBadRequest(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23502", TableName: "articles", ColumnName: "title", Message: "null value"}
	events := &fakePublisher{}
	svc := NewArticleService(&fakeStore{err: pgErr}, events)

	_, err := svc.CreateArticle(context.Background(), model.NewArticle{})

	requireHTTPError(t, err, http.StatusBadRequest)
	assert.Empty(t, events.events)
}

func TestCreateArticle_PublishFailureDoesNotFailRequest(t *testing.T) {
	svc := NewArticleService(&fakeStore{}, &fakePublisher{err: errors.New("redis down")})

	_, err := svc.CreateArticle(context.Background(), model.NewArticle{Title: "T"})
	assert.NoError(t, err)
}

func TestUpdateArticle(t *testing.T) {
	store := &fakeStore{}
	events := &fakePublisher{}
	svc := NewArticleService(store, events)

	article, err := svc.UpdateArticle(context.Background(), 9, model.ArticlePatch{Title: title("New")})
	require.NoError(t, err)

	assert.Equal(t, int64(9), store.gotID)
	assert.Equal(t, "New", article.Title)
	assert.Equal(t, []publishedEvent{{event: model.ArticleUpdated, id: 9}}, events.events)
}

func TestUpdateArticle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"no fields", repository.ErrNoFieldsToUpdate, http.StatusBadRequest, MsgNoFields},
		{"not found", repository.ErrArticleNotFound, http.StatusNotFound, MsgArticleNotFound},
		{"store failure", errors.New("boom"), http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := &fakePublisher{}
			svc := NewArticleService(&fakeStore{err: tt.err}, events)

			_, err := svc.UpdateArticle(context.Background(), 1, model.ArticlePatch{Title: title("x")})

			httpErr := requireHTTPError(t, err, tt.status)
			assert.Equal(t, tt.message, httpErr.Message)
			assert.Empty(t, events.events)
		})
	}
}

func TestDeleteArticle(t *testing.T) {
	events := &fakePublisher{}
	svc := NewArticleService(&fakeStore{}, events)

	article, err := svc.DeleteArticle(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, int64(3), article.ID)
	assert.Equal(t, []publishedEvent{{event: model.ArticleDeleted, id: 3}}, events.events)
}

func TestDeleteArticle_NotFound(t *testing.T) {
	svc := NewArticleService(&fakeStore{err: repository.ErrArticleNotFound}, nil)

	_, err := svc.DeleteArticle(context.Background(), 3)

	httpErr := requireHTTPError(t, err, http.StatusNotFound)
	assert.Equal(t, MsgArticleNotFound, httpErr.Message)
}
