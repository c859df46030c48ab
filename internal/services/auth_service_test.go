package services

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"taskify/internal/apperrors"
	"taskify/internal/repository/repotest"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) bySubject(subject string) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Message
	for _, msg := range m.sent {
		if msg.Subject == subject {
			out = append(out, msg)
		}
	}
	return out
}

var tokenInLink = regexp.MustCompile(`changePassword\?token=([0-9a-f]{64})`)

func newTestAuth(t *testing.T) (*AuthService, *repotest.Users, *recordingMailer) {
	t.Helper()
	users := repotest.NewUsers()
	mailer := &recordingMailer{}
	svc := NewAuthService(users, NewBcryptHasher(bcrypt.MinCost), NewTokenIssuer("test-secret", time.Hour), mailer, NewMetrics(), AuthConfig{
		FrontendURL:   "http://front.test/",
		ResetTokenTTL: time.Hour,
	})
	return svc, users, mailer
}

func registerAlice(t *testing.T, svc *AuthService) string {
	t.Helper()
	id, err := svc.Register(context.Background(), RegisterInput{
		Name: "Alice", LastName: "Smith", Age: 30, Email: "alice@example.com", Password: "Secret#123",
	})
	require.NoError(t, err)
	return id
}

func TestRegisterThenLogin(t *testing.T) {
	svc, _, mailer := newTestAuth(t)
	id := registerAlice(t, svc)

	res, err := svc.Login(context.Background(), "alice@example.com", "Secret#123")
	require.NoError(t, err)
	assert.Equal(t, id, res.User.ID)
	assert.NotEqual(t, "Secret#123", res.User.PasswordHash)

	claims, err := svc.Authenticate(res.Token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.WithinDuration(t, claims.IssuedAt.Add(time.Hour), claims.ExpiresAt, time.Second)

	assert.Len(t, mailer.bySubject("Welcome to Taskify!"), 1)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, users, _ := newTestAuth(t)
	registerAlice(t, svc)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Other", LastName: "Person", Age: 20, Email: "alice@example.com", Password: "Another#123",
	})
	assert.ErrorIs(t, err, apperrors.ErrEmailTaken)
	assert.Equal(t, 1, users.Count())
}

func TestRegisterConcurrentSameEmail(t *testing.T) {
	svc, users, _ := newTestAuth(t)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Register(context.Background(), RegisterInput{
				Name: "Race", LastName: "Runner", Age: 40, Email: "race@example.com", Password: "Secret#123",
			})
		}()
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperrors.ErrEmailTaken):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)
	assert.Equal(t, 1, users.Count())
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	svc, users, _ := newTestAuth(t)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Weak", LastName: "Pw", Age: 1, Email: "weak@example.com", Password: "short1!",
	})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Zero(t, users.Count())
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	registerAlice(t, svc)

	_, unknown := svc.Login(context.Background(), "nobody@example.com", "Secret#123")
	_, wrong := svc.Login(context.Background(), "alice@example.com", "Wrong#1234")

	assert.ErrorIs(t, unknown, apperrors.ErrInvalidCredentials)
	assert.ErrorIs(t, wrong, apperrors.ErrInvalidCredentials)
	assert.Equal(t, unknown.Error(), wrong.Error())
}

func TestAuthenticateRejectsMissingAndForeignTokens(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	id := registerAlice(t, svc)

	_, err := svc.Authenticate("")
	assert.ErrorIs(t, err, apperrors.ErrAuthRequired)

	foreign, _, err := NewTokenIssuer("other-secret", time.Hour).Issue(mustUser(t, id))
	require.NoError(t, err)
	_, err = svc.Authenticate(foreign)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, users, mailer := newTestAuth(t)
	id := registerAlice(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.RequestPasswordReset(ctx, "alice@example.com"))

	resets := mailer.bySubject("Reset your Taskify password")
	require.Len(t, resets, 1)
	assert.Equal(t, "alice@example.com", resets[0].To)
	m := tokenInLink.FindStringSubmatch(resets[0].HTML)
	require.NotNil(t, m, "reset link missing from %q", resets[0].HTML)
	raw := m[1]

	stored, err := users.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, stored.ResetTokenHash)
	assert.NotEqual(t, raw, *stored.ResetTokenHash)
	assert.Equal(t, HashResetToken(raw), *stored.ResetTokenHash)

	require.NoError(t, svc.ResetPassword(ctx, raw, "Changed#456"))

	_, err = svc.Login(ctx, "alice@example.com", "Secret#123")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "alice@example.com", "Changed#456")
	assert.NoError(t, err)

	err = svc.ResetPassword(ctx, raw, "Another#789")
	assert.ErrorIs(t, err, apperrors.ErrInvalidResetToken)

	stored, err = users.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, stored.ResetTokenHash)
	assert.Nil(t, stored.ResetTokenExpiry)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	svc, _, mailer := newTestAuth(t)
	registerAlice(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.RequestPasswordReset(ctx, "alice@example.com"))
	raw := tokenInLink.FindStringSubmatch(mailer.bySubject("Reset your Taskify password")[0].HTML)[1]

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	err := svc.ResetPassword(ctx, raw, "Changed#456")
	assert.ErrorIs(t, err, apperrors.ErrInvalidResetToken)
	assert.Equal(t, 404, apperrors.KindOf(err).Status())
}

func TestResetPasswordWeakPasswordKeepsToken(t *testing.T) {
	svc, _, mailer := newTestAuth(t)
	registerAlice(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.RequestPasswordReset(ctx, "alice@example.com"))
	raw := tokenInLink.FindStringSubmatch(mailer.bySubject("Reset your Taskify password")[0].HTML)[1]

	err := svc.ResetPassword(ctx, raw, "weakpass")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	assert.NoError(t, svc.ResetPassword(ctx, raw, "Strong#Pass1"))
}

func TestResetPasswordUnknownToken(t *testing.T) {
	svc, _, _ := newTestAuth(t)
	registerAlice(t, svc)

	err := svc.ResetPassword(context.Background(), "deadbeef", "Changed#456")
	assert.ErrorIs(t, err, apperrors.ErrInvalidResetToken)
}

func TestRequestPasswordResetUnknownEmail(t *testing.T) {
	svc, _, mailer := newTestAuth(t)

	assert.NoError(t, svc.RequestPasswordReset(context.Background(), "ghost@example.com"))
	assert.Empty(t, mailer.bySubject("Reset your Taskify password"))
}

func TestRequestPasswordResetDeliveryFailureWithdrawsToken(t *testing.T) {
	svc, users, mailer := newTestAuth(t)
	id := registerAlice(t, svc)
	mailer.err = errors.New("smtp down")

	err := svc.RequestPasswordReset(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, apperrors.ErrDeliveryFailed)
	assert.Equal(t, 500, apperrors.KindOf(err).Status())

	stored, err := users.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, stored.ResetTokenHash)
}

// sendFunc adapts a function to EmailSender.
type sendFunc func(ctx context.Context, msg Message) error

func (f sendFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }

func TestDeliveryFailureKeepsNewerResetToken(t *testing.T) {
	svc, users, mailer := newTestAuth(t)
	id := registerAlice(t, svc)

	newer := "newer-token-hash"
	svc.mailer = sendFunc(func(ctx context.Context, msg Message) error {
		// A second request stores its token while this delivery is failing.
		require.NoError(t, users.SetResetToken(ctx, id, newer, time.Now().Add(time.Hour)))
		return errors.New("smtp down")
	})

	err := svc.RequestPasswordReset(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, apperrors.ErrDeliveryFailed)

	stored, err := users.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, stored.ResetTokenHash)
	assert.Equal(t, newer, *stored.ResetTokenHash)
	assert.Empty(t, mailer.bySubject("Reset your Taskify password"))
}

func TestRegisterSucceedsWhenWelcomeEmailFails(t *testing.T) {
	svc, users, mailer := newTestAuth(t)
	mailer.err = errors.New("smtp down")

	registerAlice(t, svc)
	assert.Equal(t, 1, users.Count())
}
