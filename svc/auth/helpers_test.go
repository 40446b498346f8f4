package auth_test

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mfagate/pkg/email"
	"github.com/dmitrymomot/mfagate/pkg/secrets"
	"github.com/dmitrymomot/mfagate/svc/auth"
)

const (
	testPassword = "Abcdef12!@"
	testEmail    = "alice@x.com"
)

var (
	testEmailKey = strings.Repeat("ab", 32)
	testTOTPKey  = strings.Repeat("cd", 32)
	codePattern  = regexp.MustCompile(`\b\d{6}\b`)
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

// lastCode returns the code in the most recent message sent to address.
func (m *mockSender) lastCode(t *testing.T, address string) string {
	t.Helper()
	for i := len(m.Calls) - 1; i >= 0; i-- {
		p, ok := m.Calls[i].Arguments.Get(1).(email.SendEmailParams)
		if !ok || p.SendTo != address {
			continue
		}
		code := codePattern.FindString(p.BodyText)
		require.NotEmpty(t, code, "message carries no code")
		return code
	}
	t.Fatalf("no message sent to %s", address)
	return ""
}

func newSender() *mockSender {
	s := &mockSender{}
	s.On("SendEmail", mock.Anything, mock.Anything).Return(nil)
	return s
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock { return &clock{now: time.Now()} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testConfig() auth.Config {
	cfg := auth.DefaultConfig()
	cfg.JWTSecret = "test-signing-secret-of-at-least-32-bytes"
	cfg.EmailEncryptionKey = testEmailKey
	cfg.TOTPSecretKey = testTOTPKey
	return cfg
}

func newBoxes(t *testing.T) (*secrets.Box, *secrets.Box) {
	t.Helper()
	ek, err := secrets.ParseKey(testEmailKey)
	require.NoError(t, err)
	tk, err := secrets.ParseKey(testTOTPKey)
	require.NoError(t, err)
	emailBox, err := secrets.New(ek, "email")
	require.NoError(t, err)
	totpBox, err := secrets.New(tk, "totp")
	require.NoError(t, err)
	return emailBox, totpBox
}

func newCredentials(t *testing.T, storage auth.Storage) *auth.CredentialStore {
	t.Helper()
	emailBox, totpBox := newBoxes(t)
	return auth.NewCredentialStore(storage, emailBox, totpBox)
}

func newService(t *testing.T, opts ...auth.ServiceOption) (*auth.Service, *auth.MemoryStorage, *mockSender) {
	t.Helper()
	storage := auth.NewMemoryStorage()
	sender := newSender()
	svc, err := auth.NewService(testConfig(), storage, sender, opts...)
	require.NoError(t, err)
	return svc, storage, sender
}

func register(t *testing.T, svc *auth.Service, address string) *auth.User {
	t.Helper()
	user, err := svc.Register(context.Background(), auth.RegisterInput{
		Username:        "alice",
		Email:           address,
		Password:        testPassword,
		ConfirmPassword: testPassword,
	})
	require.NoError(t, err)
	return user
}
