// Package job provides background job processing using Asynq.
//
// Asynq is a Redis-backed job queue:
//   - Article changes are enqueued (producer) through asynq.Client.
//   - A server runs workers that process those tasks (consumer) using asynq.Server.
package job

import (
	"context"
	"fmt"

	"github.com/deppfellow/articles-api/internal/config"
	"github.com/deppfellow/articles-api/internal/model"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// enqueuer is the producer side of asynq.
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// JobService holds the Asynq client (enqueue) and server (worker execution).
type JobService struct {
	Client enqueuer

	server *asynq.Server
	logger *zerolog.Logger

	notifier Notifier
	notifyTo string
}

// NewJobService creates a JobService that uses Redis at cfg.Redis.Address.
//
// Queue weights give "critical" tasks the largest share of the 10 workers.
func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			Logger: asynqLogger{logger: logger},
		},
	)

	return &JobService{
		Client: asynq.NewClient(redisOpt),
		server: server,
		logger: logger,
	}
}

// PublishArticleEvent enqueues an article event task.
func (j *JobService) PublishArticleEvent(ctx context.Context, event model.ArticleEvent, article model.Article) error {
	task, err := NewArticleEventTask(event, article)
	if err != nil {
		return fmt.Errorf("failed to build article event task: %w", err)
	}

	info, err := j.Client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue article event: %w", err)
	}

	j.logger.Debug().
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Str("event", string(event)).
		Msg("article event enqueued")

	return nil
}

// Start registers task handlers and starts the worker server. It returns
// once the workers are running.
func (j *JobService) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskArticleEvent, j.handleArticleEventTask)

	j.logger.Info().Msg("starting background job server")

	if err := j.server.Start(mux); err != nil {
		return err
	}

	return nil
}

// Stop waits for in-flight tasks, then closes the Redis connections.
func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	j.server.Shutdown()
	if err := j.Client.Close(); err != nil {
		j.logger.Error().Err(err).Msg("failed to close job client")
	}
}

// asynqLogger routes asynq's internal logging through zerolog.
type asynqLogger struct {
	logger *zerolog.Logger
}

func (l asynqLogger) Debug(args ...interface{}) { l.logger.Debug().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...interface{})  { l.logger.Info().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...interface{})  { l.logger.Warn().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...interface{}) { l.logger.Error().Msg(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...interface{}) { l.logger.Fatal().Msg(fmt.Sprint(args...)) }
