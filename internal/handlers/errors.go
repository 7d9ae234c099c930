package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/publishare/backend/internal/apperr"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HTTPErrorHandler renders service and echo errors as ErrorResponse. Internal causes are
// logged here and never sent to the client.
func HTTPErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := renderError(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", status),
				zap.Error(err),
			)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, body)
		}
		if werr != nil {
			log.Warn("write error response", zap.Error(werr))
		}
	}
}

func renderError(err error) (int, ErrorResponse) {
	if e, ok := apperr.As(err); ok {
		return e.Status(), ErrorResponse{Error: e.Message, Code: e.Code}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok || msg == "" || he.Code == http.StatusInternalServerError {
			msg = http.StatusText(he.Code)
		}
		return he.Code, ErrorResponse{Error: msg, Code: codeForStatus(he.Code)}
	}

	return renderError(apperr.Internal(err))
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return apperr.CodeValidation
	case http.StatusUnauthorized:
		return apperr.CodeMissingToken
	case http.StatusForbidden:
		return apperr.CodeForbidden
	case http.StatusNotFound:
		return apperr.CodeNotFound
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusServiceUnavailable:
		return apperr.CodeUnavailable
	}
	if status >= http.StatusInternalServerError {
		return apperr.CodeInternal
	}
	return ""
}

// bind decodes the request body into req and validates it.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	return c.Validate(req)
}
