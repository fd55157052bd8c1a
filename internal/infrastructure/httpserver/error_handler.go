package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/handyapp/gateway/internal/core/domain/apperr"
)

// Response envelope status values shared by every endpoint.
const (
	statusOK     = 0
	statusFailed = 1
)

type errorResponse struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindRemoteUnavailable:
		return http.StatusServiceUnavailable
	case apperr.KindPartialWrite:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// handleError renders apperr and echo errors as the JSON envelope.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		code = http.StatusInternalServerError
		body = errorResponse{Status: statusFailed, Code: string(apperr.KindInternal), Message: "internal server error"}
	)

	var he *echo.HTTPError
	if ae := apperr.As(err); ae != nil {
		code = statusForKind(ae.Kind)
		body.Code = string(ae.Kind)
		body.Message = ae.Message
	} else if errors.As(err, &he) {
		code = he.Code
		body.Code = http.StatusText(he.Code)
		body.Message = fmt.Sprint(he.Message)
	}

	if s.logger != nil {
		entry := s.logger.WithFields(logrus.Fields{
			"method": c.Request().Method,
			"path":   c.Path(),
			"status": code,
			"code":   body.Code,
		}).WithError(err)
		if code >= http.StatusInternalServerError {
			entry.Error("request failed")
		} else {
			entry.Debug("request rejected")
		}
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, body)
	}
	if err != nil && s.logger != nil {
		s.logger.WithError(err).Error("failed to write error response")
	}
}
