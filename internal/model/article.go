// Package model holds the domain types shared by the repository, service
// and handler layers.
package model

// Article is the single managed resource.
//
// ID is assigned by the database on insert and never changes.
type Article struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`
}

// NewArticle carries the fields of an article to insert.
type NewArticle struct {
	Title   string
	Content string
	Author  string
}

// ArticlePatch carries a partial update. A nil field was not supplied and
// keeps its stored value.
type ArticlePatch struct {
	Title   *string
	Content *string
	Author  *string
}

// Empty reports whether the patch supplies no field at all.
func (p ArticlePatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.Author == nil
}

// ArticleEvent names a change made to an article.
type ArticleEvent string

const (
	ArticleCreated ArticleEvent = "created"
	ArticleUpdated ArticleEvent = "updated"
	ArticleDeleted ArticleEvent = "deleted"
)
