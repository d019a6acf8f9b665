package job

import (
	"encoding/json"
	"time"

	"github.com/deppfellow/articles-api/internal/model"
	"github.com/hibiken/asynq"
)

const (
	// TaskArticleEvent is the job type name stored in Redis.
	TaskArticleEvent = "article:event"
)

// ArticleEventPayload is the JSON payload of an article event task.
type ArticleEventPayload struct {
	Event   model.ArticleEvent `json:"event"`
	Article model.Article      `json:"article"`
}

// NewArticleEventTask constructs the task for one article change.
//
// Options: up to 3 retries, "default" queue, 30s per attempt.
func NewArticleEventTask(event model.ArticleEvent, article model.Article) (*asynq.Task, error) {
	payload, err := json.Marshal(ArticleEventPayload{
		Event:   event,
		Article: article,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskArticleEvent,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue("default"),
		asynq.Timeout(30*time.Second),
	), nil
}
