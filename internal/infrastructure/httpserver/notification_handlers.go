package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/handyapp/gateway/internal/core/domain/notification"
)

func (s *Server) registerDevice(c echo.Context) error {
	var req notification.RegisterDeviceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := s.notificationSvc.RegisterDevice(c.Request().Context(), &req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"status": statusOK})
}

// broadcastNext dispatches the next canned message. With wait=true the
// response carries the delivery report, bounded by the request context.
func (s *Server) broadcastNext(c echo.Context) error {
	ctx := c.Request().Context()
	d, err := s.notificationSvc.BroadcastNext(ctx)
	if err != nil {
		return err
	}
	resp := map[string]interface{}{
		"status":     statusOK,
		"message":    d.Message,
		"recipients": d.Recipients,
	}

	wait, _ := strconv.ParseBool(c.QueryParam("wait"))
	if !wait {
		return c.JSON(http.StatusOK, resp)
	}
	select {
	case report, ok := <-d.Done:
		if ok {
			resp["report"] = report
		}
	case <-ctx.Done():
		resp["report"] = nil
	}
	return c.JSON(http.StatusOK, resp)
}
