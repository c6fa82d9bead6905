package domain

import (
	"fmt"
	"time"
)

// Channel is a verification target.
type Channel string

const (
	ChannelEmail  Channel = "email"
	ChannelMobile Channel = "mobile"
)

// Channels lists every supported channel in display order.
var Channels = []Channel{ChannelEmail, ChannelMobile}

// ParseChannel maps a request value onto a Channel.
func ParseChannel(s string) (Channel, error) {
	for _, ch := range Channels {
		if string(ch) == s {
			return ch, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, ErrInvalidChannel)
}

// ChannelState is the per-channel verification sub-record.
// Code and IssuedAt are set together on issuance and cleared together on confirmation.
type ChannelState struct {
	Code     string     `json:"-" dynamodbav:"code,omitempty" bson:"code,omitempty"`
	IssuedAt *time.Time `json:"issued_at,omitempty" dynamodbav:"issued_at,omitempty" bson:"issued_at,omitempty"`
	Verified bool       `json:"verified" dynamodbav:"verified" bson:"verified"`
	Attempts int        `json:"-" dynamodbav:"attempts" bson:"attempts"`
}

// Pending reports whether a code is outstanding.
func (s *ChannelState) Pending() bool {
	return s != nil && s.Code != "" && s.IssuedAt != nil
}

// VerificationRecord holds OTP state for one user. PK: user_id.
type VerificationRecord struct {
	UserID    string        `json:"user_id" dynamodbav:"user_id" bson:"user_id"`
	Email     *ChannelState `json:"email,omitempty" dynamodbav:"email,omitempty" bson:"email,omitempty"`
	Mobile    *ChannelState `json:"mobile,omitempty" dynamodbav:"mobile,omitempty" bson:"mobile,omitempty"`
	CreatedAt time.Time     `json:"created" dynamodbav:"created_at" bson:"created_at"`
	UpdatedAt time.Time     `json:"updated" dynamodbav:"updated_at" bson:"updated_at"`
}

// State returns the sub-record for ch, or nil when the channel was never touched.
func (r *VerificationRecord) State(ch Channel) *ChannelState {
	if r == nil {
		return nil
	}
	switch ch {
	case ChannelEmail:
		return r.Email
	case ChannelMobile:
		return r.Mobile
	}
	return nil
}

// WriteCondition guards a channel write against concurrent changes.
type WriteCondition struct {
	// RequireUnverified rejects the write when the stored channel is already verified.
	RequireUnverified bool
	// ExpectCode, when set, rejects the write unless the stored code still equals it.
	ExpectCode string
}

// ChannelStatus is the client-facing view of a channel. The code itself is never exposed.
type ChannelStatus struct {
	Verified  bool       `json:"verified"`
	Pending   bool       `json:"pending"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// VerificationStatus is the read-only projection returned by the status endpoint.
type VerificationStatus struct {
	Email  ChannelStatus `json:"email"`
	Mobile ChannelStatus `json:"mobile"`
}

// Set stores cs as the status for ch.
func (s *VerificationStatus) Set(ch Channel, cs ChannelStatus) {
	switch ch {
	case ChannelEmail:
		s.Email = cs
	case ChannelMobile:
		s.Mobile = cs
	}
}
