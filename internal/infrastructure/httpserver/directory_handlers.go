package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/handyapp/gateway/internal/core/domain/apperr"
	"github.com/handyapp/gateway/internal/core/domain/directory"
)

func (s *Server) registerService(c echo.Context) error {
	var req directory.RegisterServiceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	res, err := s.directory.Register(c.Request().Context(), &req)
	if err != nil {
		// A partial write still reports the id and both steps.
		if res != nil && apperr.IsPartialWrite(err) {
			return c.JSON(http.StatusBadGateway, map[string]interface{}{
				"status":    statusFailed,
				"code":      string(apperr.KindPartialWrite),
				"message":   apperr.As(err).Message,
				"serviceId": res.ServiceID,
				"steps":     []directory.WriteStep{res.TypeIndex, res.Detail},
			})
		}
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    statusOK,
		"message":   "success",
		"serviceId": res.ServiceID,
		"steps":     []directory.WriteStep{res.TypeIndex, res.Detail},
	})
}

func (s *Server) lookupService(c echo.Context) error {
	req := directory.LookupRequest{
		Type:     c.QueryParam("type"),
		Location: c.QueryParam("location"),
	}
	if req.Type == "" {
		req.Type = c.QueryParam("serviceType")
	}
	res, err := s.directory.Lookup(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// acknowledgeServiceChange answers delete, availability and update requests.
// Those operations do not change directory state yet.
func (s *Server) acknowledgeServiceChange(c echo.Context) error {
	if s.logger != nil {
		s.logger.WithField("path", c.Path()).Debug("service change acknowledged without effect")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  statusOK,
		"message": "success",
	})
}
