package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campusarena/campus-arena-api/internal/service"
	"github.com/campusarena/campus-arena-api/internal/transport/ws"
	"github.com/campusarena/campus-arena-api/internal/util"
)

// RegisterWebsocket exposes the realtime endpoint. Clients connect once and
// receive every message addressed to them; the connection also keeps their
// presence flag alive.
func RegisterWebsocket(e *echo.Echo, auth *service.AuthService, hub *ws.Hub) {
	e.GET("/api/v1/ws", func(c echo.Context) error {
		user, ok := CurrentUser(c)
		if !ok || user == nil {
			return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
		}
		return ws.Serve(hub, c.Response(), c.Request(), user.ID)
	}, RequireAuth(auth))
}
