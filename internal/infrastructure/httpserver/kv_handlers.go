package httpserver

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/handyapp/gateway/internal/core/domain/apperr"
	"github.com/handyapp/gateway/internal/core/domain/kv"
)

func (s *Server) writeKey(c echo.Context) error {
	req, err := bindWriteRequest(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Value == nil {
		return apperr.Validation("key and value are required")
	}
	if err := s.cacheAside.Write(c.Request().Context(), req.Key, *req.Value); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  statusOK,
		"message": "Key " + req.Key + " stored in the remote store and cache",
	})
}

// bindWriteRequest reads the pair from a JSON body, a form body or the query
// string, keeping track of whether value was sent at all.
func bindWriteRequest(c echo.Context) (kv.WriteRequest, error) {
	var req kv.WriteRequest
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
			return req, err
		}
	} else {
		form, err := c.FormParams()
		if err != nil {
			return req, err
		}
		fillWriteRequest(&req, form)
	}
	// Older clients send the pair in the query string even on POST.
	fillWriteRequest(&req, c.QueryParams())
	return req, nil
}

func fillWriteRequest(req *kv.WriteRequest, values url.Values) {
	if req.Key == "" {
		req.Key = values.Get("key")
	}
	if req.Value == nil && values.Has("value") {
		v := values.Get("value")
		req.Value = &v
	}
}

func (s *Server) readKey(c echo.Context) error {
	res, err := s.cacheAside.Read(c.Request().Context(), c.QueryParam("key"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": statusOK,
		"key":    res.Key,
		"value":  res.Value,
		"source": res.Source,
	})
}
