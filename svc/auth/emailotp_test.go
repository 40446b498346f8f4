package auth_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mfagate/pkg/email"
	"github.com/dmitrymomot/mfagate/svc/auth"
)

func TestGenerateCode_Range(t *testing.T) {
	t.Parallel()

	for range 2000 {
		code, err := auth.GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 100000)
		require.LessOrEqual(t, n, 999999)
	}
}

func setupEmailOTP(t *testing.T, sender email.EmailSender) (*auth.EmailOTP, *auth.User, *clock) {
	t.Helper()
	storage := auth.NewMemoryStorage()
	creds := newCredentials(t, storage)
	user, err := creds.Create(context.Background(), "alice", testEmail, testPassword)
	require.NoError(t, err)
	clk := newClock()
	otp := auth.NewEmailOTP(storage, sender, auth.WithEmailOTPClock(clk.Now))
	return otp, user, clk
}

func TestEmailOTP_SingleUse(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sender := newSender()
	otp, user, _ := setupEmailOTP(t, sender)

	require.NoError(t, otp.Issue(ctx, user, testEmail))
	code := sender.lastCode(t, testEmail)

	sender.AssertCalled(t, "SendEmail", mock.Anything, mock.MatchedBy(func(p email.SendEmailParams) bool {
		return p.SendTo == testEmail && p.Tag == "mfa-code" && p.Subject != "" && p.BodyHTML != ""
	}))

	ok, err := otp.Verify(ctx, user.ID, code)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = otp.Verify(ctx, user.ID, code)
	require.NoError(t, err)
	assert.False(t, ok, "second use must fail")
}

func TestEmailOTP_Expiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sender := newSender()
	otp, user, clk := setupEmailOTP(t, sender)

	require.NoError(t, otp.Issue(ctx, user, testEmail))
	code := sender.lastCode(t, testEmail)

	clk.Advance(auth.DefaultCodeTTL)
	ok, err := otp.Verify(ctx, user.ID, code)
	require.NoError(t, err)
	assert.False(t, ok, "a code is dead at its expiry instant")

	n, err := otp.Purge(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	clk.Advance(time.Second)
	n, err = otp.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestEmailOTP_WrongCode(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sender := newSender()
	otp, user, _ := setupEmailOTP(t, sender)
	require.NoError(t, otp.Issue(ctx, user, testEmail))
	code := sender.lastCode(t, testEmail)

	wrong := "100000"
	if code == wrong {
		wrong = "100001"
	}
	ok, err := otp.Verify(ctx, user.ID, wrong)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = otp.Verify(ctx, user.ID, code)
	require.NoError(t, err)
	assert.True(t, ok, "a failed guess does not burn the real code")
}

func TestEmailOTP_DeliveryFailureKeepsCode(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sender := &mockSender{}
	sender.On("SendEmail", mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	otp, user, _ := setupEmailOTP(t, sender)

	err := otp.Issue(ctx, user, testEmail)
	require.Error(t, err)
	assert.Equal(t, auth.KindDelivery, auth.KindOf(err))
	assert.ErrorIs(t, err, auth.ErrDeliveryFailed)

	code := sender.lastCode(t, testEmail)
	ok, err := otp.Verify(ctx, user.ID, code)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEmailOTP_ConcurrentVerifySucceedsOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sender := newSender()
	otp, user, _ := setupEmailOTP(t, sender)
	require.NoError(t, otp.Issue(ctx, user, testEmail))
	code := sender.lastCode(t, testEmail)

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := otp.Verify(ctx, user.ID, code)
			if err == nil && ok {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
}
