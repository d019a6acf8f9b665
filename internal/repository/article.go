package repository

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/deppfellow/articles-api/internal/model"
	"github.com/jackc/pgx/v5"
)

var (
	// ErrArticleNotFound is returned when no row has the requested id.
	ErrArticleNotFound = errors.New("article not found")

	// ErrNoFieldsToUpdate is returned by Update for a patch with no field set.
	ErrNoFieldsToUpdate = errors.New("no fields to update")
)

const (
	articlesTable    = "articles"
	articleColumns   = "id, title, content, author"
	listArticlesSQL  = "SELECT " + articleColumns + " FROM " + articlesTable + " ORDER BY id ASC"
	createArticleSQL = "INSERT INTO " + articlesTable + " (title, content, author) VALUES ($1, $2, $3) RETURNING " + articleColumns
	deleteArticleSQL = "DELETE FROM " + articlesTable + " WHERE id = $1 RETURNING " + articleColumns
)

// assignable reports whether id fits the SERIAL id column. Anything else
// can never match a row, and sending it would fail as an int4 overflow.
func assignable(id int64) bool {
	return id >= 1 && id <= math.MaxInt32
}

// ArticleRepository runs the SQL for the articles table.
type ArticleRepository struct {
	db DBTX
}

func NewArticleRepository(db DBTX) *ArticleRepository {
	return &ArticleRepository{db: db}
}

func scanArticle(row pgx.Row) (model.Article, error) {
	var a model.Article
	err := row.Scan(&a.ID, &a.Title, &a.Content, &a.Author)
	return a, err
}

// List returns every article ordered by ascending id. An empty table yields
// an empty slice and no error.
func (r *ArticleRepository) List(ctx context.Context) ([]model.Article, error) {
	rows, err := r.db.Query(ctx, listArticlesSQL)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	articles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Article, error) {
		return scanArticle(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	return articles, nil
}

// Create inserts a new article and returns it with its assigned id.
func (r *ArticleRepository) Create(ctx context.Context, in model.NewArticle) (model.Article, error) {
	article, err := scanArticle(r.db.QueryRow(ctx, createArticleSQL, in.Title, in.Content, in.Author))
	if err != nil {
		return model.Article{}, fmt.Errorf("create article: %w", err)
	}
	return article, nil
}

// Update applies a partial update and returns the updated row.
//
// Only supplied fields are written. A patch with no field returns
// ErrNoFieldsToUpdate and an id outside the SERIAL range returns
// ErrArticleNotFound, both without touching the database.
func (r *ArticleRepository) Update(ctx context.Context, id int64, patch model.ArticlePatch) (model.Article, error) {
	assignments := articleAssignments(patch)
	if len(assignments) == 0 {
		return model.Article{}, ErrNoFieldsToUpdate
	}

	if !assignable(id) {
		return model.Article{}, ErrArticleNotFound
	}

	query, args := buildUpdate(articlesTable, id, assignments, articleColumns)

	article, err := scanArticle(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Article{}, ErrArticleNotFound
	}
	if err != nil {
		return model.Article{}, fmt.Errorf("update article %d: %w", id, err)
	}
	return article, nil
}

// Delete removes an article and returns the row as it was before deletion.
func (r *ArticleRepository) Delete(ctx context.Context, id int64) (model.Article, error) {
	if !assignable(id) {
		return model.Article{}, ErrArticleNotFound
	}

	article, err := scanArticle(r.db.QueryRow(ctx, deleteArticleSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Article{}, ErrArticleNotFound
	}
	if err != nil {
		return model.Article{}, fmt.Errorf("delete article %d: %w", id, err)
	}
	return article, nil
}
