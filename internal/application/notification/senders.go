package notification

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/pg-onboarding-api/internal/domain"
	"github.com/pg-onboarding-api/internal/infrastructure/smtp"
	"github.com/pg-onboarding-api/internal/infrastructure/sns"
)

const emailSubject = "Your verification code"

var emailHTML = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif;">
  <p>Use the code below to verify your email address.</p>
  <p style="font-size: 24px; letter-spacing: 4px;"><strong>{{.Code}}</strong></p>
  <p>This code expires in {{.Minutes}} minutes. If you did not request it, you can ignore this email.</p>
</body>
</html>`))

type emailData struct {
	Code    string
	Minutes int
}

// EmailSender delivers codes through the SMTP mailer.
type EmailSender struct {
	mailer smtp.Mailer
}

func NewEmailSender(mailer smtp.Mailer) *EmailSender {
	return &EmailSender{mailer: mailer}
}

func (s *EmailSender) Send(ctx context.Context, job Job) error {
	if job.Recipient == "" {
		return errors.New("no email address for user")
	}
	msg, err := renderEmail(job)
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, msg)
}

func renderEmail(job Job) (smtp.Message, error) {
	data := emailData{Code: job.Code, Minutes: int(job.TTL.Minutes())}
	var html bytes.Buffer
	if err := emailHTML.Execute(&html, data); err != nil {
		return smtp.Message{}, fmt.Errorf("render email: %w", err)
	}
	return smtp.Message{
		To:      job.Recipient,
		Subject: emailSubject,
		Text:    fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", data.Code, data.Minutes),
		HTML:    html.String(),
	}, nil
}

// ProfileReader resolves the mobile number a user entered on their basic profile.
type ProfileReader interface {
	Get(ctx context.Context, userID string) (*domain.Profile, error)
}

// SMSSender delivers codes over AWS SNS to the number on the user's basic profile.
type SMSSender struct {
	sms      sns.SMSSender
	profiles ProfileReader
}

func NewSMSSender(sms sns.SMSSender, profiles ProfileReader) *SMSSender {
	return &SMSSender{sms: sms, profiles: profiles}
}

func (s *SMSSender) Send(ctx context.Context, job Job) error {
	to := job.Recipient
	if to == "" {
		p, err := s.profiles.Get(ctx, job.UserID)
		if err != nil {
			return fmt.Errorf("lookup mobile number: %w", err)
		}
		to = p.MobileNumber
	}
	if to == "" {
		return errors.New("no mobile number on profile")
	}
	msg := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", job.Code, int(job.TTL.Minutes()))
	return s.sms.SendSMS(ctx, to, msg)
}

// LogSender stands in for a channel without a delivery provider. The code is not logged.
type LogSender struct{}

func (LogSender) Send(_ context.Context, job Job) error {
	slog.Info("otp delivery skipped, no provider configured", "user_id", job.UserID, "channel", job.Channel)
	return nil
}
