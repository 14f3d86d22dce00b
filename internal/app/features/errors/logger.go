package apierrors

import (
	"net/http"

	"go.uber.org/zap"
)

// ErrorLogger couples server-side error logging with the JSON error
// response the client receives. Handlers hold one so failures are
// logged with request context in a single call.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger around the given logger.
func NewErrorLogger(log *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: log}
}

// LogServerError logs an unexpected failure with request context and
// writes a 500 JSON body. The client sees only a generic message.
func (el *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	el.log.Error(msg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
	Write(w, nil, Internal(err))
}

// LogAuthFailure logs a failed sign-in attempt and writes a 401 JSON
// body carrying the given client message.
func (el *ErrorLogger) LogAuthFailure(w http.ResponseWriter, r *http.Request, clientMsg string, err error) {
	el.log.Warn("authentication failed",
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
	Write(w, nil, AuthFailed(clientMsg, err))
}
