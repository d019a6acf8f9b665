package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/deppfellow/articles-api/internal/config"
	"github.com/deppfellow/articles-api/internal/lib/email"
	"github.com/deppfellow/articles-api/internal/model"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Notifier delivers article event notifications.
type Notifier interface {
	SendArticleEvent(ctx context.Context, to string, event model.ArticleEvent, article model.Article) error
}

// InitHandlers prepares the dependencies of the task handlers. Without
// notification settings, events are processed and logged but nobody is
// notified.
func (j *JobService) InitHandlers(cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Integration.NotificationsEnabled() {
		logger.Info().Msg("article event notifications disabled")
		return
	}

	j.SetNotifier(email.NewClient(cfg.Integration, logger), cfg.Integration.NotifyEmail)
}

// SetNotifier sets who is told about article events.
func (j *JobService) SetNotifier(n Notifier, to string) {
	j.notifier = n
	j.notifyTo = to
}

// handleArticleEventTask processes one article event.
func (j *JobService) handleArticleEventTask(ctx context.Context, t *asynq.Task) error {
	var p ArticleEventPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		// Retrying cannot fix a malformed payload.
		return fmt.Errorf("failed to unmarshal article event payload: %v: %w", err, asynq.SkipRetry)
	}

	logger := j.logger.With().
		Str("type", TaskArticleEvent).
		Str("event", string(p.Event)).
		Int64("article_id", p.Article.ID).
		Logger()

	logger.Info().Msg("processing article event")

	if j.notifier == nil {
		return nil
	}

	if err := j.notifier.SendArticleEvent(ctx, j.notifyTo, p.Event, p.Article); err != nil {
		logger.Error().Err(err).Msg("failed to send article event notification")
		return err
	}

	logger.Info().Str("to", j.notifyTo).Msg("sent article event notification")
	return nil
}
