// Package handler contains the Echo HTTP handlers. Handlers bind and
// validate request bodies, call into the service layer and translate
// error kinds into status codes; they hold no business rules.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"taskhive/internal/apperr"
)

type errorBody struct {
	Error errorInfo `json:"error"`
}

type errorInfo struct {
	Message   string `json:"message"`
	Status    int    `json:"status"`
	Timestamp string `json:"timestamp"`
}

var kindStatus = map[apperr.Kind]int{
	apperr.KindValidation:   http.StatusBadRequest,
	apperr.KindConflict:     http.StatusConflict,
	apperr.KindUnauthorized: http.StatusUnauthorized,
	apperr.KindForbidden:    http.StatusForbidden,
	apperr.KindNotFound:     http.StatusNotFound,
}

// fail writes the response for a service error. Known kinds map to
// their status with the service's caller-safe message; anything else
// is logged in full and reported as a bare 500.
func fail(c echo.Context, log *logrus.Logger, err error) error {
	status := http.StatusInternalServerError
	msg := "Internal Server Error"

	var ae *apperr.Error
	if errors.As(err, &ae) {
		if s, ok := kindStatus[ae.Kind]; ok {
			status = s
			msg = ae.Message
		}
	}
	if status == http.StatusInternalServerError && log != nil {
		log.WithError(err).Error("request failed")
	}
	return c.JSON(status, errorBody{Error: errorInfo{
		Message:   msg,
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}})
}

// badRequest reports a handler-level validation failure.
func badRequest(c echo.Context, msg string) error {
	return fail(c, nil, apperr.Validation(msg))
}
