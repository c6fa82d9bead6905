package notification

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pg-onboarding-api/internal/domain"
	"github.com/pg-onboarding-api/internal/infrastructure/smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Send(ctx context.Context, msg smtp.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type mockSMS struct{ mock.Mock }

func (m *mockSMS) SendSMS(ctx context.Context, to, message string) error {
	return m.Called(ctx, to, message).Error(0)
}

type mockProfiles struct{ mock.Mock }

func (m *mockProfiles) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if p, _ := args.Get(0).(*domain.Profile); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestEmailSender_RendersCode(t *testing.T) {
	mailer := new(mockMailer)
	mailer.On("Send", mock.Anything, mock.MatchedBy(func(m smtp.Message) bool {
		return m.To == "a@example.com" &&
			m.Subject == emailSubject &&
			containsAll(m.Text, "482913", "5 minutes") &&
			containsAll(m.HTML, "<strong>482913</strong>")
	})).Return(nil)

	s := NewEmailSender(mailer)
	err := s.Send(context.Background(), Job{Channel: domain.ChannelEmail, Recipient: "a@example.com", Code: "482913", TTL: 5 * time.Minute})
	require.NoError(t, err)
	mailer.AssertExpectations(t)
}

func TestEmailSender_NoRecipient(t *testing.T) {
	s := NewEmailSender(new(mockMailer))
	assert.Error(t, s.Send(context.Background(), Job{Channel: domain.ChannelEmail}))
}

func TestSMSSender_UsesProfileNumber(t *testing.T) {
	profiles := new(mockProfiles)
	profiles.On("Get", mock.Anything, "u1").Return(&domain.Profile{MobileNumber: "+919876543210"}, nil)
	sms := new(mockSMS)
	sms.On("SendSMS", mock.Anything, "+919876543210", mock.MatchedBy(func(msg string) bool {
		return containsAll(msg, "111111")
	})).Return(nil)

	s := NewSMSSender(sms, profiles)
	require.NoError(t, s.Send(context.Background(), Job{UserID: "u1", Channel: domain.ChannelMobile, Code: "111111", TTL: 5 * time.Minute}))
	sms.AssertExpectations(t)
}

func TestSMSSender_NoNumber(t *testing.T) {
	profiles := new(mockProfiles)
	profiles.On("Get", mock.Anything, "u1").Return(&domain.Profile{}, nil)
	sms := new(mockSMS)

	s := NewSMSSender(sms, profiles)
	assert.Error(t, s.Send(context.Background(), Job{UserID: "u1", Channel: domain.ChannelMobile}))
	sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
}

func TestSMSSender_ProfileMissing(t *testing.T) {
	profiles := new(mockProfiles)
	profiles.On("Get", mock.Anything, "u1").Return(nil, errors.New("profile not found: not found"))

	s := NewSMSSender(new(mockSMS), profiles)
	assert.Error(t, s.Send(context.Background(), Job{UserID: "u1", Channel: domain.ChannelMobile}))
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, LogSender{}.Send(context.Background(), Job{UserID: "u1", Channel: domain.ChannelMobile}))
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
