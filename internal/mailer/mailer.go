package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"async-standup/internal/config"
	"async-standup/pkg/logger"
)

const activationSubject = "Welcome to Async Standup - Activate Your Account"

type sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGrid delivers activation invites through the SendGrid v3 API.
type SendGrid struct {
	client sender
	cfg    config.MailConfig
	log    logger.Logger
}

func NewSendGrid(cfg config.MailConfig, log logger.Logger) *SendGrid {
	return &SendGrid{
		client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
		cfg:    cfg,
		log:    log,
	}
}

func (m *SendGrid) SendActivation(ctx context.Context, email, name, token string) error {
	link := ActivationLink(m.cfg.BaseURL, token)
	plain, html, err := renderActivation(name, link)
	if err != nil {
		return err
	}

	message := mail.NewSingleEmail(
		mail.NewEmail(m.cfg.FromName, m.cfg.FromAddress),
		activationSubject,
		mail.NewEmail(name, email),
		plain,
		html,
	)

	if m.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.Timeout)
		defer cancel()
	}

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: unexpected status %d: %s", resp.StatusCode, resp.Body)
	}

	m.log.Info("activation email sent", "email", email, "status", resp.StatusCode)
	return nil
}

// LogMailer writes the activation link to the log instead of sending mail.
// Used when no SendGrid key is configured.
type LogMailer struct {
	baseURL string
	log     logger.Logger
}

func NewLogMailer(baseURL string, log logger.Logger) *LogMailer {
	return &LogMailer{baseURL: baseURL, log: log}
}

func (m *LogMailer) SendActivation(ctx context.Context, email, name, token string) error {
	m.log.Warn("mail delivery disabled, activation link logged",
		"email", email,
		"name", name,
		"link", ActivationLink(m.baseURL, token),
	)
	return nil
}

func ActivationLink(baseURL, token string) string {
	return baseURL + "/activate/" + url.PathEscape(token)
}

var activationHTML = template.Must(template.New("activation").Parse(`<h1>Welcome to Async Standup!</h1>
<p>Hi {{.Name}},</p>
<p>You have been added as a team member. Please click the link below to activate your account and set your password:</p>
<p><a href="{{.Link}}">Activate Account</a></p>
<p>If you did not expect this invitation, you can ignore this email.</p>`))

func renderActivation(name, link string) (string, string, error) {
	plain := fmt.Sprintf("Hi %s,\n\nYou have been added as a team member of Async Standup.\nActivate your account and set your password here: %s\n", name, link)

	var html bytes.Buffer
	if err := activationHTML.Execute(&html, struct{ Name, Link string }{name, link}); err != nil {
		return "", "", fmt.Errorf("render activation email: %w", err)
	}
	return plain, html.String(), nil
}
