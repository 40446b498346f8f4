package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/mfagate/pkg/binder"
	"github.com/dmitrymomot/mfagate/pkg/logger"
	"github.com/dmitrymomot/mfagate/pkg/requestid"
	"github.com/dmitrymomot/mfagate/pkg/validator"
)

// GenericErrorMessage is the only text a client sees for a 5xx.
const GenericErrorMessage = "internal server error"

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Message   string              `json:"message"`
	Code      string              `json:"code"`
	Details   map[string][]string `json:"details,omitempty"`
	RequestID string              `json:"requestId,omitempty"`
}

// ErrorInfo is the classification of an error.
type ErrorInfo struct {
	Status  int
	Code    string
	Message string
	Details map[string][]string
	Header  http.Header
}

// Classifier recognizes errors of one domain. It reports false for errors
// it does not own.
type Classifier func(err error) (ErrorInfo, bool)

func classify(err error, classifiers []Classifier) ErrorInfo {
	for _, c := range classifiers {
		if info, ok := c(err); ok {
			return normalize(info)
		}
	}

	if ve := validator.ExtractValidationErrors(err); ve != nil {
		return normalize(ErrorInfo{
			Status:  http.StatusBadRequest,
			Code:    "validation_error",
			Message: firstMessage(ve),
			Details: ve.Fields(),
		})
	}

	if errors.Is(err, binder.ErrFailedToParseJSON) ||
		errors.Is(err, binder.ErrMissingContentType) ||
		errors.Is(err, binder.ErrUnsupportedMediaType) {
		return normalize(ErrorInfo{
			Status:  http.StatusBadRequest,
			Code:    "bad_request",
			Message: "malformed request body",
		})
	}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return normalize(ErrorInfo{Status: httpErr.Code, Code: httpErr.Key, Message: httpErr.Message})
	}

	return normalize(ErrorInfo{Status: http.StatusInternalServerError})
}

func normalize(info ErrorInfo) ErrorInfo {
	if info.Status < http.StatusBadRequest {
		info.Status = http.StatusInternalServerError
	}
	if info.Status >= http.StatusInternalServerError {
		info.Code = "internal_error"
		info.Message = GenericErrorMessage
		info.Details = nil
	}
	if info.Code == "" {
		info.Code = "error"
	}
	if info.Message == "" {
		info.Message = http.StatusText(info.Status)
	}
	return info
}

func firstMessage(ve validator.ValidationErrors) string {
	if len(ve) == 0 {
		return "validation failed"
	}
	return ve[0].Message
}

func writeError(w http.ResponseWriter, info ErrorInfo, requestID ...string) {
	body := ErrorBody{Message: info.Message, Code: info.Code, Details: info.Details}
	if len(requestID) > 0 {
		body.RequestID = requestID[0]
	}
	for k, vs := range info.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(info.Status)
	_ = json.NewEncoder(w).Encode(body)
}

// NewErrorHandler returns the error translator used by every route.
// 5xx errors are logged at error level with their full chain; 4xx at debug.
func NewErrorHandler(log *slog.Logger, classifiers ...Classifier) ErrorHandler[Context] {
	if log == nil {
		log = logger.Discard()
	}
	return func(ctx Context, err error) {
		r := ctx.Request()
		info := classify(err, classifiers)
		id := requestid.FromContext(r.Context())

		level := slog.LevelDebug
		if info.Status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		log.LogAttrs(r.Context(), level, "request failed",
			logger.Component("http"),
			logger.Error(err),
			slog.Int("status", info.Status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)

		writeError(ctx.ResponseWriter(), info, id)
	}
}

// WriteError writes err as a JSON error response outside of Wrap,
// for middleware.
func WriteError(w http.ResponseWriter, r *http.Request, handle ErrorHandler[Context], err error) {
	handle(NewContext(w, r), err)
}
