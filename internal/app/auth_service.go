package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tutordesk/internal/model"
	"tutordesk/internal/pkg/jwtutil"
	"tutordesk/internal/pkg/logger"
	"tutordesk/internal/repository"
)

const minPasswordLength = 6

// Session is one signed-in browser session of one account.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

type RevocationStore interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

type SessionEventPublisher interface {
	Publish(ctx context.Context, evt model.SessionEvent) error
}

type AuthService struct {
	accounts      *repository.AccountRepository
	revocations   RevocationStore
	states        StateStore
	events        SessionEventPublisher
	jwtSecret     string
	jwtExpiration time.Duration
	log           *logger.Logger
}

type CredentialsInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	Token   string         `json:"token"`
	Session *Session       `json:"session"`
	Account *model.Account `json:"account"`
}

func NewAuthService(
	accounts *repository.AccountRepository,
	revocations RevocationStore,
	states StateStore,
	events SessionEventPublisher,
	jwtSecret string,
	jwtExpiration time.Duration,
	log *logger.Logger,
) *AuthService {
	return &AuthService{
		accounts:      accounts,
		revocations:   revocations,
		states:        states,
		events:        events,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		log:           log.With("service", "AuthService"),
	}
}

// SignUp creates the identity only. The profile row is written by onboarding.
func (s *AuthService) SignUp(ctx context.Context, input CredentialsInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	if email == "" || !strings.Contains(email, "@") || len(input.Password) < minPasswordLength {
		return nil, ErrInvalidInput
	}

	existing, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	account := &model.Account{
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		// lost a race with a concurrent sign-up for the same email
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	s.log.Info("account created", "user_id", account.ID)
	return s.openSession(ctx, account)
}

func (s *AuthService) SignIn(ctx context.Context, input CredentialsInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, ErrInvalidInput
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredential
	}
	return s.openSession(ctx, account)
}

func (s *AuthService) SignOut(ctx context.Context, session *Session) error {
	if session == nil {
		return ErrUnauthenticated
	}
	if err := s.revocations.Revoke(ctx, session.ID, time.Until(session.ExpiresAt)); err != nil {
		return err
	}
	if err := s.states.Delete(ctx, session.ID); err != nil {
		s.log.Warn("drop view state failed", "session_id", session.ID, "error", err)
	}
	s.publish(ctx, model.SessionSignedOut, session)
	return nil
}

// CurrentSession validates a bearer token and returns the session it carries.
func (s *AuthService) CurrentSession(ctx context.Context, token string) (*Session, error) {
	claims, err := jwtutil.ParseToken(s.jwtSecret, token)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	revoked, err := s.revocations.IsRevoked(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrUnauthenticated
	}
	session := &Session{
		ID:     claims.SessionID,
		UserID: claims.UserID,
		Email:  claims.Email,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

func (s *AuthService) openSession(ctx context.Context, account *model.Account) (*AuthResult, error) {
	sessionID := uuid.NewString()
	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, account.ID, account.Email, sessionID)
	if err != nil {
		return nil, err
	}
	session := &Session{
		ID:        sessionID,
		UserID:    account.ID,
		Email:     account.Email,
		ExpiresAt: time.Now().Add(s.jwtExpiration),
	}
	s.publish(ctx, model.SessionSignedIn, session)
	return &AuthResult{Token: token, Session: session, Account: account}, nil
}

func (s *AuthService) publish(ctx context.Context, kind string, session *Session) {
	if s.events == nil {
		return
	}
	evt := model.SessionEvent{
		Type:      kind,
		UserID:    session.UserID,
		SessionID: session.ID,
		At:        time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, evt); err != nil {
		s.log.Warn("publish session event failed", "type", kind, "error", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
