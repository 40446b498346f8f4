package account

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/mfagate/handler"
	"github.com/dmitrymomot/mfagate/pkg/binder"
	"github.com/dmitrymomot/mfagate/pkg/clientip"
	"github.com/dmitrymomot/mfagate/pkg/logger"
	"github.com/dmitrymomot/mfagate/pkg/ratelimiter"
	"github.com/dmitrymomot/mfagate/svc/auth"
)

// MaxBodySize bounds every JSON request body.
const MaxBodySize = 16 << 10

// AuthHandler serves the authentication endpoints.
type AuthHandler struct {
	svc             *auth.Service
	errorHandler    handler.ErrorHandler[handler.Context]
	registerLimiter *ratelimiter.Limiter
	logger          *slog.Logger
}

// AuthHandlerOption configures an AuthHandler.
type AuthHandlerOption func(*AuthHandler)

// WithRegisterLimiter limits registrations per client IP.
func WithRegisterLimiter(l *ratelimiter.Limiter) AuthHandlerOption {
	return func(h *AuthHandler) { h.registerLimiter = l }
}

// WithLogger sets the logger used when no error handler is given.
func WithLogger(log *slog.Logger) AuthHandlerOption {
	return func(h *AuthHandler) {
		if log != nil {
			h.logger = log
		}
	}
}

// NewAuthHandler creates an AuthHandler. A nil errorHandler falls back to
// handler.NewErrorHandler with ErrorClassifier.
func NewAuthHandler(svc *auth.Service, errorHandler handler.ErrorHandler[handler.Context], opts ...AuthHandlerOption) *AuthHandler {
	h := &AuthHandler{
		svc:          svc,
		errorHandler: errorHandler,
		logger:       logger.Discard(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.errorHandler == nil {
		h.errorHandler = handler.NewErrorHandler(h.logger, ErrorClassifier)
	}
	return h
}

func (h *AuthHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	handler.WriteError(w, r, h.errorHandler, err)
}

func (h *AuthHandler) Handle() http.Handler {
	r := chi.NewRouter()
	gate := h.svc.Gate()
	jsonBody := binder.JSONWithLimit(MaxBodySize)

	r.Group(func(r chi.Router) {
		if h.registerLimiter != nil {
			r.Use(ratelimiter.Middleware(h.registerLimiter,
				func(req *http.Request) string {
					return ratelimiter.JoinKey("register", clientip.GetIPFromContext(req.Context()))
				},
				ratelimiter.WithErrorResponder(func(w http.ResponseWriter, req *http.Request, _ *ratelimiter.Result, err error) {
					if err != nil {
						h.writeError(w, req, err)
						return
					}
					h.writeError(w, req, handler.ErrTooManyRequests)
				}),
			))
		}
		r.Post("/register", handler.Wrap(h.register,
			handler.WithBinder[handler.Context, RegisterRequest](jsonBody),
			handler.WithErrorHandler[handler.Context, RegisterRequest](h.errorHandler),
		))
	})

	r.Post("/login", handler.Wrap(h.login,
		handler.WithBinder[handler.Context, LoginRequest](jsonBody),
		handler.WithErrorHandler[handler.Context, LoginRequest](h.errorHandler),
	))

	r.Group(func(r chi.Router) {
		r.Use(gate.RequirePending(h.writeError))
		r.Post("/verify-mfa", handler.Wrap(h.verifyMFA,
			handler.WithBinder[handler.Context, VerifyMFARequest](jsonBody),
			handler.WithErrorHandler[handler.Context, VerifyMFARequest](h.errorHandler),
		))
		r.Post("/resend-mfa", handler.Wrap(h.resendMFA,
			handler.WithErrorHandler[handler.Context, struct{}](h.errorHandler),
		))
	})

	r.Group(func(r chi.Router) {
		r.Use(gate.RequireFull(h.writeError))
		r.Post("/setup-mfa", handler.Wrap(h.setupTOTP,
			handler.WithErrorHandler[handler.Context, struct{}](h.errorHandler),
		))
		r.Post("/setup-mfa/email", handler.Wrap(h.setupEmail,
			handler.WithErrorHandler[handler.Context, struct{}](h.errorHandler),
		))
		r.Get("/me", handler.Wrap(h.me,
			handler.WithErrorHandler[handler.Context, struct{}](h.errorHandler),
		))
	})

	return r
}

func (h *AuthHandler) register(ctx handler.Context, req RegisterRequest) handler.Response {
	user, err := h.svc.Register(ctx, auth.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(RegisterResponse{
		Message: "user registered",
		UserID:  user.ID,
	}, handler.WithJSONStatus(http.StatusCreated))
}

func (h *AuthHandler) login(ctx handler.Context, req LoginRequest) handler.Response {
	res, err := h.svc.Login(ctx, auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		ClientIP: clientip.GetIPFromContext(ctx),
	})
	if err != nil {
		return handler.Error(err)
	}
	if res.RequiresMfa {
		return handler.JSON(LoginResponse{
			Message:     "second factor required",
			RequiresMfa: true,
			TempToken:   res.Token,
			Method:      res.Method,
		})
	}
	return handler.JSON(LoginResponse{
		Message: "login successful",
		Token:   res.Token,
		User:    res.User,
	})
}

func (h *AuthHandler) verifyMFA(ctx handler.Context, req VerifyMFARequest) handler.Response {
	session, ok := auth.SessionFromContext(ctx)
	if !ok {
		return handler.Error(auth.ErrMissingToken)
	}
	res, err := h.svc.VerifyMFA(ctx, session, req.Code)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(LoginResponse{
		Message: "verification successful",
		Token:   res.Token,
		User:    res.User,
	})
}

func (h *AuthHandler) resendMFA(ctx handler.Context, _ struct{}) handler.Response {
	session, ok := auth.SessionFromContext(ctx)
	if !ok {
		return handler.Error(auth.ErrMissingToken)
	}
	if err := h.svc.ResendCode(ctx, session); err != nil {
		return handler.Error(err)
	}
	return handler.JSON(MessageResponse{Message: "verification code sent"})
}

func (h *AuthHandler) setupTOTP(ctx handler.Context, _ struct{}) handler.Response {
	session, ok := auth.SessionFromContext(ctx)
	if !ok {
		return handler.Error(auth.ErrMissingToken)
	}
	userID, err := session.UserID()
	if err != nil {
		return handler.Error(auth.ErrInvalidToken)
	}
	setup, err := h.svc.SetupTOTP(ctx, userID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(SetupMFAResponse{
		Message:    "scan the QR code with your authenticator app",
		Secret:     setup.Secret,
		QRCode:     setup.QRCode,
		OtpauthURL: setup.URI,
	})
}

func (h *AuthHandler) setupEmail(ctx handler.Context, _ struct{}) handler.Response {
	session, ok := auth.SessionFromContext(ctx)
	if !ok {
		return handler.Error(auth.ErrMissingToken)
	}
	userID, err := session.UserID()
	if err != nil {
		return handler.Error(auth.ErrInvalidToken)
	}
	if err := h.svc.EnableEmailMFA(ctx, userID); err != nil {
		return handler.Error(err)
	}
	return handler.JSON(MessageResponse{Message: "email verification codes enabled"})
}

func (h *AuthHandler) me(ctx handler.Context, _ struct{}) handler.Response {
	session, ok := auth.SessionFromContext(ctx)
	if !ok {
		return handler.Error(auth.ErrMissingToken)
	}
	userID, err := session.UserID()
	if err != nil {
		return handler.Error(auth.ErrInvalidToken)
	}
	profile, err := h.svc.Me(ctx, userID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(ProfileResponse{User: profile})
}
