package verification

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/pg-onboarding-api/internal/application/notification"
	"github.com/pg-onboarding-api/internal/config"
	"github.com/pg-onboarding-api/internal/domain"
	"github.com/pg-onboarding-api/internal/observability"
)

// RecordStore persists one verification record per user.
type RecordStore interface {
	Get(ctx context.Context, userID string) (*domain.VerificationRecord, error)
	SaveChannel(ctx context.Context, userID string, ch domain.Channel, st *domain.ChannelState, cond domain.WriteCondition) error
	// ReserveAttempt atomically counts one confirm attempt against code. It fails with
	// domain.ErrConditionFailed once limit attempts are spent or the code was replaced.
	ReserveAttempt(ctx context.Context, userID string, ch domain.Channel, code string, limit int) error
}

// Locker serializes issuance per user and channel.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// Dispatcher queues code delivery.
type Dispatcher interface {
	Enqueue(job notification.Job) error
}

// Result is the outcome of a successful request or confirm.
type Result struct {
	Message string
}

type Service interface {
	RequestCode(ctx context.Context, userID, email, channel string) (*Result, error)
	ConfirmCode(ctx context.Context, userID, channel, otp string) (*Result, error)
	Status(ctx context.Context, userID string) (*domain.VerificationStatus, error)
}

// Deps wires a Service. Clock and Codes default to time.Now and a crypto/rand generator.
type Deps struct {
	Store      RecordStore
	Locker     Locker
	Dispatcher Dispatcher
	Config     config.OTPConfig
	Clock      func() time.Time
	Codes      func() (string, error)
}

type service struct {
	store      RecordStore
	locker     Locker
	dispatcher Dispatcher
	ttl        time.Duration
	maxAtt     int
	lockTTL    time.Duration
	now        func() time.Time
	newCode    func() (string, error)
}

func NewService(d Deps) Service {
	s := &service{
		store:      d.Store,
		locker:     d.Locker,
		dispatcher: d.Dispatcher,
		ttl:        d.Config.TTL,
		maxAtt:     d.Config.MaxAttempts,
		lockTTL:    d.Config.LockTTL,
		now:        d.Clock,
		newCode:    d.Codes,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newCode == nil {
		s.newCode = GenerateCode
	}
	if s.ttl <= 0 {
		s.ttl = 5 * time.Minute
	}
	if s.lockTTL <= 0 {
		s.lockTTL = 10 * time.Second
	}
	return s
}

func (s *service) RequestCode(ctx context.Context, userID, email, channel string) (*Result, error) {
	ch, err := domain.ParseChannel(channel)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Acquire(ctx, userID+":"+string(ch), s.lockTTL)
	if errors.Is(err, domain.ErrLockBusy) {
		return nil, domain.ErrIssuanceInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("acquire issuance lock: %w", err)
	}
	defer unlock()

	rec, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if st := rec.State(ch); st != nil && st.Verified {
		return nil, fmt.Errorf("%s: %w", ch, domain.ErrAlreadyVerified)
	}

	code, err := s.newCode()
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}
	issuedAt := s.now().UTC()
	st := &domain.ChannelState{Code: code, IssuedAt: &issuedAt}

	err = s.store.SaveChannel(ctx, userID, ch, st, domain.WriteCondition{RequireUnverified: true})
	if errors.Is(err, domain.ErrConditionFailed) {
		// Verified between our read and write.
		return nil, fmt.Errorf("%s: %w", ch, domain.ErrAlreadyVerified)
	}
	if err != nil {
		return nil, fmt.Errorf("save %s code: %w", ch, err)
	}
	observability.OTPIssued.WithLabelValues(string(ch)).Inc()

	job := notification.Job{UserID: userID, Channel: ch, Code: code, TTL: s.ttl}
	if ch == domain.ChannelEmail {
		job.Recipient = email
	}
	if err := s.dispatcher.Enqueue(job); err != nil {
		slog.Error("otp dispatch not queued", "user_id", userID, "channel", ch, "err", err)
	}

	return &Result{Message: "OTP sent to your " + string(ch)}, nil
}

func (s *service) ConfirmCode(ctx context.Context, userID, channel, otp string) (*Result, error) {
	ch, err := domain.ParseChannel(channel)
	if err != nil {
		return nil, err
	}

	rec, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	st := rec.State(ch)
	if !st.Pending() {
		s.confirmed(ch, "missing")
		return nil, fmt.Errorf("%s: %w", ch, domain.ErrNoOutstandingCode)
	}
	if s.maxAtt > 0 && st.Attempts >= s.maxAtt {
		s.confirmed(ch, "locked")
		return nil, fmt.Errorf("%s: %w", ch, domain.ErrTooManyAttempts)
	}
	if s.now().Sub(*st.IssuedAt) > s.ttl {
		s.confirmed(ch, "expired")
		return nil, fmt.Errorf("%s: %w", ch, domain.ErrCodeExpired)
	}

	if s.maxAtt > 0 {
		err := s.store.ReserveAttempt(ctx, userID, ch, st.Code, s.maxAtt)
		if errors.Is(err, domain.ErrConditionFailed) {
			return s.afterRejectedAttempt(ctx, userID, ch, st.Code, otp)
		}
		if err != nil {
			return nil, fmt.Errorf("reserve %s attempt: %w", ch, err)
		}
	}

	if subtle.ConstantTimeCompare([]byte(otp), []byte(st.Code)) != 1 {
		s.confirmed(ch, "mismatch")
		return nil, fmt.Errorf("%s: %w", ch, domain.ErrCodeMismatch)
	}

	cleared := &domain.ChannelState{Verified: true}
	err = s.store.SaveChannel(ctx, userID, ch, cleared, domain.WriteCondition{ExpectCode: st.Code})
	if errors.Is(err, domain.ErrConditionFailed) {
		return s.afterLostRace(ctx, userID, ch)
	}
	if err != nil {
		return nil, fmt.Errorf("save %s verification: %w", ch, err)
	}
	s.confirmed(ch, "verified")
	return &Result{Message: string(ch) + " verified"}, nil
}

func (s *service) Status(ctx context.Context, userID string) (*domain.VerificationStatus, error) {
	rec, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := &domain.VerificationStatus{}
	for _, ch := range domain.Channels {
		out.Set(ch, s.channelStatus(rec.State(ch), now))
	}
	return out, nil
}

func (s *service) channelStatus(st *domain.ChannelState, now time.Time) domain.ChannelStatus {
	if st == nil {
		return domain.ChannelStatus{}
	}
	cs := domain.ChannelStatus{Verified: st.Verified}
	if st.Pending() {
		expires := st.IssuedAt.Add(s.ttl)
		cs.IssuedAt = st.IssuedAt
		cs.ExpiresAt = &expires
		cs.Pending = !now.After(expires)
	}
	return cs
}

// load returns the user's record, or nil when none exists yet.
func (s *service) load(ctx context.Context, userID string) (*domain.VerificationRecord, error) {
	rec, err := s.store.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load verification record: %w", err)
	}
	return rec, nil
}

// afterRejectedAttempt resolves a confirm whose attempt could not be reserved. The
// guess is only compared once the code is spent, so it never counts as a free try.
func (s *service) afterRejectedAttempt(ctx context.Context, userID string, ch domain.Channel, code, otp string) (*Result, error) {
	rec, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	cur := rec.State(ch)
	switch {
	case cur.Pending() && cur.Code == code:
		s.confirmed(ch, "locked")
		return nil, fmt.Errorf("%s: %w", ch, domain.ErrTooManyAttempts)
	case cur != nil && cur.Verified && subtle.ConstantTimeCompare([]byte(otp), []byte(code)) == 1:
		s.confirmed(ch, "verified")
		return &Result{Message: string(ch) + " verified"}, nil
	}
	s.confirmed(ch, "mismatch")
	return nil, fmt.Errorf("%s: %w", ch, domain.ErrCodeMismatch)
}

// afterLostRace resolves a confirm whose conditional write failed. A concurrent confirm
// of the same code counts as success; a re-issued code makes ours stale.
func (s *service) afterLostRace(ctx context.Context, userID string, ch domain.Channel) (*Result, error) {
	rec, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if st := rec.State(ch); st != nil && st.Verified {
		s.confirmed(ch, "verified")
		return &Result{Message: string(ch) + " verified"}, nil
	}
	s.confirmed(ch, "mismatch")
	return nil, fmt.Errorf("%s: %w", ch, domain.ErrCodeMismatch)
}

func (s *service) confirmed(ch domain.Channel, result string) {
	observability.OTPConfirm.WithLabelValues(string(ch), result).Inc()
}

// GenerateCode draws a 6-digit code uniformly from [100000, 999999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
