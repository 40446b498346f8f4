package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrymomot/mfagate/pkg/jwt"
	"github.com/dmitrymomot/mfagate/pkg/statemachine"
)

// Access states.
const (
	StateUnauthenticated = statemachine.StringState("unauthenticated")
	StatePendingMFA      = statemachine.StringState("pending_mfa")
	StateAuthenticated   = statemachine.StringState("authenticated")
)

// Access events.
const (
	EventPresentPending   = statemachine.StringEvent("present_pending")
	EventPresentFull      = statemachine.StringEvent("present_full")
	EventPasswordVerified = statemachine.StringEvent("password_verified")
	EventVerifyMFA        = statemachine.StringEvent("verify_mfa")
)

func mfaEnabledGuard(want bool) statemachine.Guard {
	return func(_ context.Context, _ statemachine.State, _ statemachine.Event, data any) bool {
		enabled, ok := data.(bool)
		return ok && enabled == want
	}
}

// accessMachine is shared; statemachine.Machine is read-only after build.
var accessMachine = statemachine.MustNew(
	statemachine.WithTransition(StateUnauthenticated, StatePendingMFA, EventPresentPending),
	statemachine.WithTransition(StateUnauthenticated, StateAuthenticated, EventPresentFull),
	statemachine.WithTransition(StateUnauthenticated, StatePendingMFA, EventPasswordVerified,
		statemachine.WithGuard(mfaEnabledGuard(true))),
	statemachine.WithTransition(StateUnauthenticated, StateAuthenticated, EventPasswordVerified,
		statemachine.WithGuard(mfaEnabledGuard(false))),
	statemachine.WithTransition(StatePendingMFA, StateAuthenticated, EventVerifyMFA),
	statemachine.WithTransition(StateAuthenticated, StateAuthenticated, EventVerifyMFA),
)

// ErrorResponder writes err to the client.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

// Gate resolves bearer tokens into access states.
type Gate struct {
	tokens *TokenIssuer
}

// NewGate creates a Gate.
func NewGate(tokens *TokenIssuer) *Gate {
	return &Gate{tokens: tokens}
}

// Resolve returns the state token grants. An empty token is
// StateUnauthenticated with no error; a bad token is StateUnauthenticated
// with ErrInvalidToken.
func (g *Gate) Resolve(ctx context.Context, token string) (statemachine.State, *Claims, error) {
	if token == "" {
		return StateUnauthenticated, nil, nil
	}
	claims, err := g.tokens.Parse(token)
	if err != nil {
		return StateUnauthenticated, nil, err
	}

	event := EventPresentFull
	if claims.PendingMFA {
		event = EventPresentPending
	}
	state, err := accessMachine.Fire(ctx, StateUnauthenticated, event, nil)
	if err != nil {
		return StateUnauthenticated, nil, internalError("gate.resolve", err)
	}
	return state, claims, nil
}

// AfterPassword returns the state a correct password leads to.
func AfterPassword(ctx context.Context, mfaEnabled bool) (statemachine.State, error) {
	state, err := accessMachine.Fire(ctx, StateUnauthenticated, EventPasswordVerified, mfaEnabled)
	if err != nil {
		return nil, internalError("gate.after_password", err)
	}
	return state, nil
}

// AfterVerification returns the state a successful second factor leads to
// from the given state.
func AfterVerification(ctx context.Context, from statemachine.State) (statemachine.State, error) {
	state, err := accessMachine.Fire(ctx, from, EventVerifyMFA, nil)
	if err != nil {
		return nil, wrap("gate.after_verification", ErrInvalidToken)
	}
	return state, nil
}

// RequireFull admits only authenticated requests. Pending tokens get
// ErrMfaRequired.
func (g *Gate) RequireFull(onError ErrorResponder) func(http.Handler) http.Handler {
	return g.require(onError, StateAuthenticated)
}

// RequirePending admits pending and authenticated requests.
func (g *Gate) RequirePending(onError ErrorResponder) func(http.Handler) http.Handler {
	return g.require(onError, StatePendingMFA, StateAuthenticated)
}

func (g *Gate) require(onError ErrorResponder, allowed ...statemachine.State) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if strings.TrimSpace(r.Header.Get("Authorization")) != "" {
				t, err := jwt.BearerTokenExtractor(r)
				if err != nil {
					onError(w, r, wrap("gate.require", ErrInvalidToken))
					return
				}
				token = t
			}

			state, claims, err := g.Resolve(r.Context(), token)
			if err != nil {
				onError(w, r, err)
				return
			}
			if state == StateUnauthenticated {
				onError(w, r, wrap("gate.require", ErrMissingToken))
				return
			}
			for _, s := range allowed {
				if s.Name() == state.Name() {
					ctx := jwt.SetToken(r.Context(), token)
					ctx = WithSession(ctx, Session{Claims: claims, State: state})
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}
			onError(w, r, wrap("gate.require", ErrMfaRequired))
		})
	}
}
