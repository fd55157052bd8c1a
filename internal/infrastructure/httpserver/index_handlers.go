package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) index(c echo.Context) error {
	return c.String(http.StatusOK, fmt.Sprintf("Currently connected to instance: %s", s.config.InstanceID))
}

// balancing echoes the instance and the location so a load balancer's
// routing can be checked by hand.
func (s *Server) balancing(c echo.Context) error {
	location := c.QueryParam("location")
	if location == "" {
		location = c.FormValue("location")
	}
	return c.String(http.StatusOK, fmt.Sprintf("Currently connected to instance: %s Location: %s", s.config.InstanceID, location))
}
