package quiz

import (
	"context"
	"strings"
	"sync"
	"time"

	"trivia-wager/internal/ids"
	"trivia-wager/internal/ledger"
	"trivia-wager/internal/questions"

	"github.com/rs/zerolog/log"
)

const (
	defaultSessionTTL      = 15 * time.Minute
	defaultResultRetention = 10 * time.Minute
)

type Config struct {
	AllowNegativeBalance bool
	MaxWager             int64
	SessionTTL           time.Duration
	ResultRetention      time.Duration
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the ULID session id generator.
func WithIDGenerator(next func() string) Option {
	return func(s *Service) { s.newID = next }
}

// Service owns every player's in-progress round. All transitions for one user
// run under that user's lock, so they are applied in submission order and the
// single ledger commit of a round cannot race with itself.
type Service struct {
	ledger    ledger.Store
	questions questions.Provider
	validator *WagerValidator
	ttl       time.Duration
	retention time.Duration
	now       func() time.Time
	newID     func() string

	mu     sync.Mutex
	users  map[string]*userState
	graded map[string]gradedResult
}

type userState struct {
	mu     sync.Mutex
	active *Session
}

type gradedResult struct {
	userID    string
	result    CommitResult
	expiresAt time.Time
}

func NewService(st ledger.Store, qp questions.Provider, cfg Config, opts ...Option) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.ResultRetention <= 0 {
		cfg.ResultRetention = defaultResultRetention
	}
	s := &Service{
		ledger:    st,
		questions: qp,
		validator: NewWagerValidator(st, cfg.AllowNegativeBalance, cfg.MaxWager),
		ttl:       cfg.SessionTTL,
		retention: cfg.ResultRetention,
		now:       time.Now,
		newID:     ids.New,
		users:     map[string]*userState{},
		graded:    map[string]gradedResult{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// lockUser returns the user's state with its lock held.
func (s *Service) lockUser(userID string) *userState {
	s.mu.Lock()
	u := s.users[userID]
	if u == nil {
		u = &userState{}
		s.users[userID] = u
	}
	s.mu.Unlock()
	u.mu.Lock()
	return u
}

// activeLocked resolves sessionID against the user's current round. Expired
// rounds are abandoned on access. Caller holds u.mu.
func (s *Service) activeLocked(u *userState, sessionID string, now time.Time) (*Session, error) {
	sess := u.active
	if sess == nil || sess.ID != sessionID {
		return nil, ErrSessionNotFound
	}
	if s.expired(sess, now) {
		s.abandonLocked(u, "expired")
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *Service) expired(sess *Session, now time.Time) bool {
	return !sess.Status.Terminal() && now.Sub(sess.LastActivityAt) > s.ttl
}

func (s *Service) abandonLocked(u *userState, reason string) {
	sess := u.active
	if sess == nil {
		return
	}
	sess.Status = StatusAbandoned
	u.active = nil
	metricSessionsAbandoned.Add(1)
	log.Info().
		Str("user_id", sess.UserID).
		Str("session_id", sess.ID).
		Str("reason", reason).
		Msg("quiz session abandoned")
}

// OpenCategory starts a round. Any round the user still has open is abandoned
// without touching the ledger.
func (s *Service) OpenCategory(ctx context.Context, userID, category string) (*OpenResult, error) {
	userID = strings.TrimSpace(userID)
	category = strings.TrimSpace(category)
	if userID == "" || category == "" {
		return nil, ErrInvalidRequest
	}
	u := s.lockUser(userID)
	defer u.mu.Unlock()

	if u.active != nil {
		s.abandonLocked(u, "replaced")
	}
	now := s.now()
	sess := &Session{
		ID:             s.newID(),
		UserID:         userID,
		Category:       category,
		Status:         StatusCategorySelected,
		CreatedAt:      now,
		LastActivityAt: now,
	}
	u.active = sess
	metricSessionsOpened.Add(1)
	log.Debug().Str("user_id", userID).Str("session_id", sess.ID).Str("category", category).Msg("quiz session opened")
	return &OpenResult{SessionID: sess.ID, Category: category, Status: sess.Status}, nil
}

// SubmitWager validates amount and fixes it on the session when approved. A
// rejection leaves the session in category_selected so another amount may be
// tried.
func (s *Service) SubmitWager(ctx context.Context, userID, sessionID string, amount int64) (Decision, error) {
	u := s.lockUser(userID)
	defer u.mu.Unlock()

	now := s.now()
	sess, err := s.activeLocked(u, sessionID, now)
	if err != nil {
		return Decision{}, err
	}
	if sess.Status != StatusCategorySelected {
		return Decision{}, ErrInvalidSessionState
	}
	sess.Status = StatusWagerPending
	decision, err := s.validator.Validate(ctx, userID, amount)
	if err != nil || !decision.Approved {
		sess.Status = StatusCategorySelected
		sess.LastActivityAt = now
		if err != nil {
			return Decision{}, err
		}
		metricWagersRejected.Add(1)
		log.Debug().Str("user_id", userID).Str("session_id", sessionID).Int64("amount", amount).Str("reason", decision.Reason).Msg("wager rejected")
		return decision, nil
	}
	sess.Wager = amount
	sess.Status = StatusWagerApproved
	sess.LastActivityAt = now
	metricWagersApproved.Add(1)
	return decision, nil
}

// GetQuestion issues the round's question on first call and returns the same
// question afterwards.
func (s *Service) GetQuestion(ctx context.Context, userID, sessionID string) (*PublicQuestion, error) {
	u := s.lockUser(userID)
	defer u.mu.Unlock()

	now := s.now()
	sess, err := s.activeLocked(u, sessionID, now)
	if err != nil {
		return nil, err
	}
	switch sess.Status {
	case StatusWagerApproved:
		q, err := s.questions.FetchQuestion(ctx, sess.Category)
		if err != nil {
			return nil, err
		}
		sess.Question = &q
		sess.Status = StatusQuestionIssued
	case StatusQuestionIssued:
	default:
		return nil, ErrInvalidSessionState
	}
	sess.LastActivityAt = now
	return publicQuestion(sess), nil
}

// CloseSession abandons the round explicitly.
func (s *Service) CloseSession(ctx context.Context, userID, sessionID string) error {
	u := s.lockUser(userID)
	defer u.mu.Unlock()

	if _, err := s.activeLocked(u, sessionID, s.now()); err != nil {
		if _, ok := s.gradedResult(userID, sessionID); ok {
			return ErrInvalidSessionState
		}
		return err
	}
	s.abandonLocked(u, "client_closed")
	return nil
}

// SessionStatus reports where a round currently stands.
func (s *Service) SessionStatus(ctx context.Context, userID, sessionID string) (Status, error) {
	u := s.lockUser(userID)
	defer u.mu.Unlock()

	sess, err := s.activeLocked(u, sessionID, s.now())
	if err != nil {
		if _, ok := s.gradedResult(userID, sessionID); ok {
			return StatusGraded, nil
		}
		return "", err
	}
	return sess.Status, nil
}

func (s *Service) GetStatistics(ctx context.Context, userID string) (ledger.Ledger, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ledger.Ledger{}, ErrInvalidRequest
	}
	l, err := s.ledger.Read(ctx, userID)
	if err != nil {
		return ledger.Ledger{}, ledger.Unavailable(err)
	}
	return l, nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.questions.Categories(ctx)
}

func publicQuestion(sess *Session) *PublicQuestion {
	return &PublicQuestion{
		SessionID: sess.ID,
		Category:  sess.Question.Category,
		Prompt:    sess.Question.Prompt,
		Choices:   append([]string(nil), sess.Question.Choices...),
		Wager:     sess.Wager,
	}
}
