package email

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"

	config "github.com/wildlander/launcher/configs"
	"github.com/wildlander/launcher/internal/core/domain/feed"
	"github.com/wildlander/launcher/internal/core/ports"
)

//go:embed templates/*.html
var templateFS embed.FS

// sendFunc delivers one message and returns the provider's status code.
type sendFunc func(msg *mail.SGMailV3) (int, error)

// AnnouncementService mails newly published posts to the announce list.
type AnnouncementService struct {
	config   *config.EmailConfig
	logger   *logrus.Logger
	send     sendFunc
	template *template.Template
}

type announcementData struct {
	Title     string
	Content   string
	URL       string
	Published string
	SiteName  string
}

// NewAnnouncementService creates the SendGrid-backed announcer.
func NewAnnouncementService(cfg *config.EmailConfig, logger *logrus.Logger) (*AnnouncementService, error) {
	client := sendgrid.NewSendClient(cfg.SendGridAPIKey)
	return newAnnouncementService(cfg, logger, func(msg *mail.SGMailV3) (int, error) {
		resp, err := client.Send(msg)
		if err != nil {
			return 0, err
		}
		return resp.StatusCode, nil
	})
}

func newAnnouncementService(cfg *config.EmailConfig, logger *logrus.Logger, send sendFunc) (*AnnouncementService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/announcement.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse announcement template: %w", err)
	}
	return &AnnouncementService{config: cfg, logger: logger, send: send, template: tmpl}, nil
}

// AnnouncePost sends one email per recipient. It is a no-op when no
// recipients are configured.
func (e *AnnouncementService) AnnouncePost(ctx context.Context, post *feed.Post) error {
	if len(e.config.AnnounceTo) == 0 {
		return nil
	}
	data := announcementData{
		Title:    post.Title,
		Content:  post.Content,
		URL:      e.absoluteURL(post.URL),
		SiteName: e.config.FromName,
	}
	if !post.Published.IsZero() {
		data.Published = post.Published.Format(time.DateOnly)
	}
	var buf bytes.Buffer
	if err := e.template.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render announcement: %w", err)
	}
	subject := fmt.Sprintf("%s - %s", e.config.FromName, post.Title)

	var errs []error
	for _, to := range e.config.AnnounceTo {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.sendEmail(to, subject, buf.String()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *AnnouncementService) absoluteURL(u string) string {
	if u == "" || u[0] != '/' {
		return u
	}
	return e.config.BaseURL + u
}

// sendEmail sends an email using SendGrid
func (e *AnnouncementService) sendEmail(to, subject, htmlContent string) error {
	from := mail.NewEmail(e.config.FromName, e.config.FromEmail)
	recipient := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, recipient, "", htmlContent)

	status, err := e.send(message)
	if err == nil && status >= 300 {
		err = fmt.Errorf("sendgrid returned status %d", status)
	}
	if err != nil {
		if e.logger != nil {
			e.logger.WithFields(logrus.Fields{
				"to":      to,
				"subject": subject,
			}).WithError(err).Error("Failed to send email")
		}
		return fmt.Errorf("failed to send email: %w", err)
	}

	if e.logger != nil {
		e.logger.WithFields(logrus.Fields{
			"to":          to,
			"subject":     subject,
			"status_code": status,
		}).Info("Email sent successfully")
	}
	return nil
}

var _ ports.AnnouncementService = (*AnnouncementService)(nil)
