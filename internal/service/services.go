package service

import (
	"github.com/deppfellow/articles-api/internal/repository"
	"github.com/deppfellow/articles-api/internal/server"
)

// Services is a container for the business layer.
type Services struct {
	Article *ArticleService
}

// NewServices wires every service to its repository. Article events are
// published only when the server has a job service.
func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	var events EventPublisher
	if s.Job != nil {
		events = s.Job
	}

	return &Services{
		Article: NewArticleService(repos.Article, events),
	}, nil
}
