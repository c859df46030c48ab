package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"taskify/internal/apperrors"
	"taskify/internal/models"
	"taskify/internal/repository"
)

type AuthConfig struct {
	FrontendURL   string
	ResetTokenTTL time.Duration
}

// AuthService runs registration, login and the password reset flow.
type AuthService struct {
	users   repository.UserRepository
	hasher  PasswordHasher
	tokens  *TokenIssuer
	mailer  EmailSender
	metrics *Metrics

	frontendURL string
	resetTTL    time.Duration
	now         func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users repository.UserRepository, hasher PasswordHasher, tokens *TokenIssuer, mailer EmailSender, metrics *Metrics, cfg AuthConfig) *AuthService {
	ttl := cfg.ResetTokenTTL
	if ttl <= 0 {
		ttl = DefaultResetTokenTTL
	}
	return &AuthService{
		users:       users,
		hasher:      hasher,
		tokens:      tokens,
		mailer:      mailer,
		metrics:     metrics,
		frontendURL: strings.TrimRight(cfg.FrontendURL, "/"),
		resetTTL:    ttl,
		now:         time.Now,
	}
}

type RegisterInput struct {
	Name     string
	LastName string
	Age      int
	Email    string
	Password string
}

// Register creates an account and returns its id. A duplicate email is a
// conflict whether the pre-check or the store's unique constraint catches it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, error) {
	if in.Name == "" || in.LastName == "" || in.Email == "" || in.Password == "" {
		return "", apperrors.Validation("validation_error", "name, last_name, age, email and password are required")
	}
	if err := CheckPasswordPolicy(in.Password); err != nil {
		return "", apperrors.Validation("weak_password", PasswordPolicyMessage)
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		s.metrics.authEvent("register", "conflict")
		return "", apperrors.ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", apperrors.Internal(fmt.Errorf("lookup email: %w", err))
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return "", apperrors.Internal(fmt.Errorf("hash password: %w", err))
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		LastName:     in.LastName,
		Age:          in.Age,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.metrics.authEvent("register", "conflict")
			return "", apperrors.ErrEmailTaken
		}
		return "", apperrors.Internal(fmt.Errorf("create user: %w", err))
	}
	s.metrics.authEvent("register", "success")

	s.sendWelcome(ctx, u)
	return u.ID, nil
}

// sendWelcome never fails registration; problems are only logged.
func (s *AuthService) sendWelcome(ctx context.Context, u *models.User) {
	msg, err := WelcomeEmail(u.Email, u.Name, s.frontendURL)
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	s.metrics.email("welcome", err)
	if err != nil {
		slog.Warn("welcome email failed", "user_id", u.ID, "error", err)
	}
}

type LoginResult struct {
	Token  string
	Claims SessionClaims
	User   *models.User
}

// Login answers ErrInvalidCredentials for unknown emails and wrong passwords alike.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, apperrors.Validation("validation_error", "Email and password are required")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Burn a comparable amount of time so response latency does not reveal the miss.
			s.hasher.Verify(s.timingHash(), password)
			s.metrics.authEvent("login", "failure")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Internal(fmt.Errorf("lookup email: %w", err))
	}

	if !s.hasher.Verify(u.PasswordHash, password) {
		s.metrics.authEvent("login", "failure")
		return nil, apperrors.ErrInvalidCredentials
	}

	token, claims, err := s.tokens.Issue(u)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("sign token: %w", err))
	}
	s.metrics.authEvent("login", "success")
	return &LoginResult{Token: token, Claims: claims, User: u}, nil
}

func (s *AuthService) timingHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash(uuid.NewString())
	})
	return s.dummyHash
}

// RequestPasswordReset stores a fresh reset token on the account and mails the
// link. Unknown emails succeed silently. If the mail cannot be delivered the
// token is withdrawn and ErrDeliveryFailed is returned.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if email == "" {
		return apperrors.Validation("validation_error", "Email is required")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.authEvent("reset_request", "unknown_email")
			return nil
		}
		return apperrors.Internal(fmt.Errorf("lookup email: %w", err))
	}

	tok, err := NewResetToken(s.now().UTC(), s.resetTTL)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("generate reset token: %w", err))
	}
	if err := s.users.SetResetToken(ctx, u.ID, tok.Hash, tok.ExpiresAt); err != nil {
		return apperrors.Internal(fmt.Errorf("store reset token: %w", err))
	}

	msg, err := ResetPasswordEmail(u.Email, ResetLink(s.frontendURL, tok.Raw), s.resetTTL)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("render reset email: %w", err))
	}
	sendErr := s.mailer.Send(ctx, msg)
	s.metrics.email("reset_password", sendErr)
	if sendErr != nil {
		// A newer request may have replaced the token already; leave that one alone.
		err := s.users.ClearResetToken(context.WithoutCancel(ctx), u.ID, tok.Hash)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Error("failed to withdraw reset token after delivery failure", "user_id", u.ID, "error", err)
		}
		s.metrics.authEvent("reset_request", "delivery_failed")
		return apperrors.ErrDeliveryFailed.Wrap(sendErr)
	}

	s.metrics.authEvent("reset_request", "sent")
	return nil
}

// ResetPassword redeems token once. Policy violations are reported before the
// store is touched.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return apperrors.Validation("validation_error", "token and new_password are required")
	}
	if err := CheckPasswordPolicy(newPassword); err != nil {
		return apperrors.Validation("weak_password", PasswordPolicyMessage)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("hash password: %w", err))
	}

	if _, err := s.users.RedeemResetToken(ctx, HashResetToken(token), hash, s.now().UTC()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.authEvent("reset_redeem", "invalid")
			return apperrors.ErrInvalidResetToken
		}
		return apperrors.Internal(fmt.Errorf("redeem reset token: %w", err))
	}

	s.metrics.authEvent("reset_redeem", "success")
	return nil
}

// Authenticate verifies a session token and returns its claims.
func (s *AuthService) Authenticate(token string) (*SessionClaims, error) {
	if token == "" {
		return nil, apperrors.ErrAuthRequired
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, apperrors.ErrInvalidToken.Wrap(err)
	}
	return claims, nil
}

func (s *AuthService) SessionTTL() time.Duration {
	return s.tokens.TTL()
}
