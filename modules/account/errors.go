package account

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/mfagate/handler"
	"github.com/dmitrymomot/mfagate/pkg/validator"
	"github.com/dmitrymomot/mfagate/svc/auth"
)

var kindStatus = map[auth.Kind]int{
	auth.KindValidation:     http.StatusBadRequest,
	auth.KindAuthentication: http.StatusUnauthorized,
	auth.KindAuthorization:  http.StatusForbidden,
	auth.KindRateLimited:    http.StatusTooManyRequests,
	auth.KindStorage:        http.StatusInternalServerError,
	auth.KindDelivery:       http.StatusInternalServerError,
	auth.KindInternal:       http.StatusInternalServerError,
}

var sentinelCodes = []struct {
	err  error
	code string
}{
	{auth.ErrInvalidCredentials, "invalid_credentials"},
	{auth.ErrInvalidCode, "invalid_code"},
	{auth.ErrMissingToken, "missing_token"},
	{auth.ErrInvalidToken, "invalid_token"},
	{auth.ErrMfaRequired, "mfa_required"},
	{auth.ErrEmailTaken, "email_taken"},
	{auth.ErrPasswordMismatch, "password_mismatch"},
	{auth.ErrMfaNotEnabled, "mfa_not_enabled"},
	{auth.ErrEmailMfaInactive, "email_mfa_inactive"},
	{auth.ErrTooManyAttempts, "too_many_attempts"},
}

// ErrorClassifier maps *auth.Error values to HTTP responses.
func ErrorClassifier(err error) (handler.ErrorInfo, bool) {
	var e *auth.Error
	if !errors.As(err, &e) {
		return handler.ErrorInfo{}, false
	}

	info := handler.ErrorInfo{
		Status:  kindStatus[e.Kind],
		Message: e.Msg,
	}
	if info.Status == 0 {
		info.Status = http.StatusInternalServerError
	}

	if ve := validator.ExtractValidationErrors(err); ve != nil {
		info.Code = "validation_error"
		info.Message = ve[0].Message
		info.Details = ve.Fields()
		return info, true
	}
	for _, sc := range sentinelCodes {
		if errors.Is(err, sc.err) {
			info.Code = sc.code
			break
		}
	}
	if e.Kind == auth.KindRateLimited && e.RetryAfter > 0 {
		info.Header = http.Header{"Retry-After": []string{retryAfterSeconds(e.RetryAfter)}}
	}
	return info, true
}

func retryAfterSeconds(d time.Duration) string {
	secs := int64(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return strconv.FormatInt(max(secs, 1), 10)
}
