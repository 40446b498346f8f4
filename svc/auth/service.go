package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mfagate/pkg/email"
	"github.com/dmitrymomot/mfagate/pkg/jwt"
	"github.com/dmitrymomot/mfagate/pkg/logger"
	"github.com/dmitrymomot/mfagate/pkg/ratelimiter"
	"github.com/dmitrymomot/mfagate/pkg/secrets"
	"github.com/dmitrymomot/mfagate/pkg/validator"
)

const (
	maxUsernameLength = 64
	maxEmailLength    = 254
)

// Service runs registration, login and second-factor flows.
type Service struct {
	creds      *CredentialStore
	emailOTP   *EmailOTP
	totp       *TOTP
	tokens     *TokenIssuer
	gate       *Gate
	strategies map[MfaMethod]Strategy
	login      *attemptLimiter
	verify     *attemptLimiter
	logger     *slog.Logger
	purgeEvery time.Duration
}

type serviceOptions struct {
	logger *slog.Logger
	limits ratelimiter.Store
	now    func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

// WithLogger sets the logger shared by every component.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		if log != nil {
			o.logger = log
		}
	}
}

// WithAttemptStore enables login and verification attempt limits backed by
// store.
func WithAttemptStore(store ratelimiter.Store) ServiceOption {
	return func(o *serviceOptions) { o.limits = store }
}

// WithClock replaces time.Now in every component.
func WithClock(now func() time.Time) ServiceOption {
	return func(o *serviceOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// NewService wires the components described by cfg.
func NewService(cfg Config, storage Storage, sender email.EmailSender, opts ...ServiceOption) (*Service, error) {
	o := serviceOptions{logger: logger.Discard(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	emailKey, err := secrets.ParseKey(cfg.EmailEncryptionKey)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	totpKey := emailKey
	if cfg.TOTPSecretKey != "" {
		if totpKey, err = secrets.ParseKey(cfg.TOTPSecretKey); err != nil {
			return nil, errors.Join(ErrInvalidConfig, err)
		}
	}
	emailBox, err := secrets.New(emailKey, "email")
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	secretBox, err := secrets.New(totpKey, "totp")
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	jwtSvc, err := jwt.New([]byte(cfg.JWTSecret), jwt.WithIssuer(cfg.JWTIssuer), jwt.WithLeeway(cfg.JWTLeeway))
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	creds := NewCredentialStore(storage, emailBox, secretBox,
		WithBcryptCost(cfg.BcryptCost),
		WithCredentialLogger(o.logger),
		WithCredentialClock(o.now),
	)
	emailOTP := NewEmailOTP(storage, sender,
		WithCodeTTL(cfg.OTPTTL),
		WithEmailOTPLogger(o.logger),
		WithEmailOTPClock(o.now),
	)
	totp := NewTOTP(creds, cfg.TOTPIssuer,
		WithTOTPSkew(cfg.TOTPSkew),
		WithTOTPLogger(o.logger),
		WithTOTPClock(o.now),
	)
	tokens := NewTokenIssuer(jwtSvc,
		WithTokenTTL(cfg.PendingTokenTTL, cfg.FullTokenTTL),
		WithTokenClock(o.now),
	)

	strategies := map[MfaMethod]Strategy{
		MfaEmail: NewEmailStrategy(emailOTP, creds),
		MfaTOTP:  NewTOTPStrategy(totp),
	}

	s := &Service{
		creds:      creds,
		emailOTP:   emailOTP,
		totp:       totp,
		tokens:     tokens,
		gate:       NewGate(tokens),
		strategies: strategies,
		logger:     o.logger,
		purgeEvery: cfg.CodePurgeInterval,
	}

	if o.limits != nil {
		if s.login, err = newAttemptLimiter(o.limits, "login", cfg.LoginMaxAttempts, cfg.LoginWindow, o.logger); err != nil {
			return nil, err
		}
		if s.verify, err = newAttemptLimiter(o.limits, "verify", cfg.VerifyMaxAttempts, cfg.VerifyWindow, o.logger); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func newAttemptLimiter(store ratelimiter.Store, scope string, maxAttempts int, window time.Duration, log *slog.Logger) (*attemptLimiter, error) {
	l, err := ratelimiter.New(store, ratelimiter.Config{MaxAttempts: maxAttempts, Window: window})
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	return &attemptLimiter{limiter: l, scope: scope, logger: log}, nil
}

// Gate returns the access gate for HTTP middleware.
func (s *Service) Gate() *Gate { return s.gate }

// Credentials returns the credential store.
func (s *Service) Credentials() *CredentialStore { return s.creds }

// RegisterInput is the registration request.
type RegisterInput struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Register creates an account without a second factor.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	const op = "auth.register"

	if err := validator.Apply(
		validator.Required("username", in.Username),
		validator.MaxLen("username", in.Username, maxUsernameLength),
		validator.Required("email", in.Email),
		validator.MaxLen("email", in.Email, maxEmailLength),
		validator.ValidEmail("email", strings.TrimSpace(in.Email)),
		validator.Required("password", in.Password),
		validator.PasswordMaxBytes("password", in.Password, MaxPasswordBytes),
		validator.Required("confirmPassword", in.ConfirmPassword),
	); err != nil {
		return nil, validationError(op, err)
	}
	if in.Password != in.ConfirmPassword {
		return nil, wrap(op, ErrPasswordMismatch)
	}
	return s.creds.Create(ctx, in.Username, in.Email, in.Password)
}

// LoginInput is the login request.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	ClientIP string `json:"-"`
}

// LoginResult is either a pending session (RequiresMfa) or a full one.
type LoginResult struct {
	RequiresMfa bool
	Method      MfaMethod
	Token       string
	User        *Profile
}

// Login checks the password. Accounts with a second factor get a pending
// token and, for email codes, a freshly sent code.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	const op = "auth.login"

	if err := validator.Apply(
		validator.Required("email", in.Email),
		validator.Required("password", in.Password),
	); err != nil {
		return nil, validationError(op, err)
	}

	lookup := s.creds.LookupHash(in.Email)
	if err := s.login.hit(ctx, op, in.ClientIP, lookup); err != nil {
		return nil, err
	}

	user, err := s.creds.VerifyPassword(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, wrap(op, ErrInvalidCredentials)
	}
	s.login.reset(ctx, in.ClientIP, lookup)

	state, err := AfterPassword(ctx, user.MfaEnabled)
	if err != nil {
		return nil, err
	}

	if state == StatePendingMFA {
		strategy, err := s.strategyFor(op, user)
		if err != nil {
			return nil, err
		}
		token, err := s.tokens.IssuePending(user.ID)
		if err != nil {
			return nil, err
		}
		if err := strategy.Challenge(ctx, user); err != nil {
			return nil, err
		}
		s.logger.InfoContext(ctx, "login pending second factor",
			logger.Component("auth"),
			logger.UserID(user.ID),
			logger.Strategy(string(strategy.Method())),
			logger.Tier(string(TierPending)),
		)
		return &LoginResult{RequiresMfa: true, Method: strategy.Method(), Token: token}, nil
	}

	return s.complete(ctx, op, user)
}

// VerifyMFA checks code with the user's configured second factor and
// returns a full session.
func (s *Service) VerifyMFA(ctx context.Context, session Session, code string) (*LoginResult, error) {
	const op = "auth.verify_mfa"

	code = strings.TrimSpace(code)
	if err := validator.Apply(validator.Required("code", code)); err != nil {
		return nil, validationError(op, err)
	}

	user, err := s.sessionUser(ctx, session)
	if err != nil {
		return nil, err
	}
	strategy, err := s.strategyFor(op, user)
	if err != nil {
		return nil, err
	}

	uid := user.ID.String()
	if err := s.verify.hit(ctx, op, uid); err != nil {
		return nil, err
	}
	ok, err := strategy.Verify(ctx, user, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logger.InfoContext(ctx, "second factor rejected",
			logger.Component("auth"),
			logger.UserID(user.ID),
			logger.Strategy(string(strategy.Method())),
		)
		return nil, wrap(op, ErrInvalidCode)
	}
	s.verify.reset(ctx, uid)

	if _, err := AfterVerification(ctx, session.State); err != nil {
		return nil, err
	}
	return s.complete(ctx, op, user)
}

// ResendCode sends a new email code to a user with a pending session.
func (s *Service) ResendCode(ctx context.Context, session Session) error {
	const op = "auth.resend_code"

	user, err := s.sessionUser(ctx, session)
	if err != nil {
		return err
	}
	if !user.MfaEnabled || user.MfaMethod != MfaEmail {
		return wrap(op, ErrEmailMfaInactive)
	}
	if err := s.verify.hit(ctx, op, "resend", user.ID.String()); err != nil {
		return err
	}
	return s.strategies[MfaEmail].Challenge(ctx, user)
}

// SetupTOTP provisions an authenticator secret and enables TOTP.
func (s *Service) SetupTOTP(ctx context.Context, userID uuid.UUID) (TOTPSetup, error) {
	user, err := s.creds.GetUser(ctx, userID)
	if err != nil {
		return TOTPSetup{}, err
	}
	label, err := s.creds.DecryptEmail(user)
	if err != nil {
		return TOTPSetup{}, err
	}
	return s.totp.Setup(ctx, user.ID, label)
}

// EnableEmailMFA switches the user to emailed codes.
func (s *Service) EnableEmailMFA(ctx context.Context, userID uuid.UUID) error {
	if err := s.creds.EnableEmailMfa(ctx, userID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "email codes enabled",
		logger.Component("auth"),
		logger.UserID(userID),
		logger.Strategy(string(MfaEmail)),
	)
	return nil
}

// Me returns the profile of userID.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (Profile, error) {
	user, err := s.creds.GetUser(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	return s.creds.Profile(user)
}

// PurgeExpiredCodes deletes expired email codes.
func (s *Service) PurgeExpiredCodes(ctx context.Context) (int64, error) {
	return s.emailOTP.Purge(ctx)
}

// RunPurger purges expired codes on every tick until ctx is done.
func (s *Service) RunPurger(ctx context.Context) {
	if s.purgeEvery <= 0 {
		return
	}
	ticker := time.NewTicker(s.purgeEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.PurgeExpiredCodes(ctx)
			if err != nil {
				s.logger.ErrorContext(ctx, "failed to purge expired codes",
					logger.Component("purger"),
					logger.Error(err),
				)
				continue
			}
			if n > 0 {
				s.logger.DebugContext(ctx, "purged expired codes",
					logger.Component("purger"),
					slog.Int64("count", n),
				)
			}
		}
	}
}

func (s *Service) sessionUser(ctx context.Context, session Session) (*User, error) {
	id, err := session.UserID()
	if err != nil {
		return nil, wrap("auth.session", ErrInvalidToken)
	}
	return s.creds.GetUser(ctx, id)
}

func (s *Service) strategyFor(op string, user *User) (Strategy, error) {
	if !user.MfaEnabled {
		return nil, wrap(op, ErrMfaNotEnabled)
	}
	strategy, ok := s.strategies[user.MfaMethod]
	if !ok {
		return nil, internalError(op, errors.New("no strategy for method "+string(user.MfaMethod)))
	}
	return strategy, nil
}

func (s *Service) complete(ctx context.Context, op string, user *User) (*LoginResult, error) {
	token, err := s.tokens.IssueFull(user.ID)
	if err != nil {
		return nil, err
	}
	profile, err := s.creds.Profile(user)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "session established",
		logger.Component("auth"),
		logger.Event(op),
		logger.UserID(user.ID),
		logger.Tier(string(TierFull)),
	)
	return &LoginResult{Method: user.MfaMethod, Token: token, User: &profile}, nil
}
