package repository

import (
	"github.com/deppfellow/articles-api/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Article *ArticleRepository
}

// NewRepositories constructs the repository container on top of the
// server's connection pool.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Article: NewArticleRepository(s.DB.Pool),
	}
}
