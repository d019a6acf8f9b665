// Package email provides an email sending client.
//
// It uses Resend (resend-go) as the email provider and renders HTML
// bodies from templates embedded in the binary.
package email

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/deppfellow/articles-api/internal/config"
	"github.com/deppfellow/articles-api/internal/model"
	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

const senderName = "Articles API"

// sender is the part of the Resend API the client uses.
type sender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Client wraps the Resend client and a logger.
type Client struct {
	emails sender
	from   string
	logger *zerolog.Logger
}

// NewClient creates an email Client from the integration settings.
func NewClient(cfg config.IntegrationConfig, logger *zerolog.Logger) *Client {
	return &Client{
		emails: resend.NewClient(cfg.ResendAPIKey).Emails,
		from:   cfg.FromEmail,
		logger: logger,
	}
}

// Render executes a template with data and returns the HTML body.
func Render(name Template, data map[string]string) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, string(name)+".html", data); err != nil {
		return "", errors.Wrapf(err, "failed to execute email template %s", name)
	}
	return body.String(), nil
}

// SendEmail renders templateName with data and sends it to a single
// recipient through Resend.
func (c *Client) SendEmail(ctx context.Context, to, subject string, templateName Template, data map[string]string) error {
	html, err := Render(templateName, data)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", senderName, c.from),
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	sent, err := c.emails.SendWithContext(ctx, params)
	if err != nil {
		return errors.Wrap(err, "failed to send email")
	}

	c.logger.Debug().
		Str("email_id", sent.Id).
		Str("template", string(templateName)).
		Msg("email sent")

	return nil
}

// SendArticleEvent notifies to that an article was created, updated or
// deleted.
func (c *Client) SendArticleEvent(ctx context.Context, to string, event model.ArticleEvent, article model.Article) error {
	data := map[string]string{
		"Event":   string(event),
		"ID":      strconv.FormatInt(article.ID, 10),
		"Title":   article.Title,
		"Content": article.Content,
		"Author":  article.Author,
	}

	return c.SendEmail(
		ctx,
		to,
		fmt.Sprintf("Article %s: %s", event, article.Title),
		TemplateArticleEvent,
		data,
	)
}
