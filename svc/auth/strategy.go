package auth

import "context"

// Strategy is one kind of second factor.
type Strategy interface {
	Method() MfaMethod
	// Challenge prepares a verification, e.g. by sending a code. It may be
	// a no-op.
	Challenge(ctx context.Context, user *User) error
	Verify(ctx context.Context, user *User, code string) (bool, error)
}

type emailStrategy struct {
	otp   *EmailOTP
	creds *CredentialStore
}

// NewEmailStrategy adapts EmailOTP to Strategy.
func NewEmailStrategy(otp *EmailOTP, creds *CredentialStore) Strategy {
	return &emailStrategy{otp: otp, creds: creds}
}

func (s *emailStrategy) Method() MfaMethod { return MfaEmail }

func (s *emailStrategy) Challenge(ctx context.Context, user *User) error {
	address, err := s.creds.DecryptEmail(user)
	if err != nil {
		return err
	}
	return s.otp.Issue(ctx, user, address)
}

func (s *emailStrategy) Verify(ctx context.Context, user *User, code string) (bool, error) {
	return s.otp.Verify(ctx, user.ID, code)
}

type totpStrategy struct {
	totp *TOTP
}

// NewTOTPStrategy adapts TOTP to Strategy.
func NewTOTPStrategy(t *TOTP) Strategy {
	return &totpStrategy{totp: t}
}

func (s *totpStrategy) Method() MfaMethod { return MfaTOTP }

func (s *totpStrategy) Challenge(context.Context, *User) error { return nil }

func (s *totpStrategy) Verify(ctx context.Context, user *User, code string) (bool, error) {
	return s.totp.Verify(ctx, user.ID, code)
}
