package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/campusarena/campus-arena-api/internal/service"
	"github.com/campusarena/campus-arena-api/internal/util"
)

type GroupHandler struct {
	groups *service.GroupService
}

func RegisterGroups(e *echo.Echo, auth *service.AuthService, groups *service.GroupService) {
	handler := &GroupHandler{groups: groups}

	g := e.Group("/api/v1/groups", RequireAuth(auth))
	g.POST("", handler.create)
	g.GET("", handler.list)
	g.GET("/mine", handler.listMine)
	g.GET("/:id", handler.get)
	g.POST("/:id/join", handler.join)
	g.POST("/:id/leave", handler.leave)
}

func (h *GroupHandler) create(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	var req struct {
		Name        string   `json:"name"`
		Description *string  `json:"description"`
		Tags        []string `json:"tags"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	group, err := h.groups.Create(c.Request().Context(), user.ID, req.Name, req.Description, req.Tags)
	if err != nil {
		return h.writeGroupError(c, err)
	}
	return c.JSON(http.StatusCreated, util.Envelope{"group": group})
}

func (h *GroupHandler) list(c echo.Context) error {
	groups, err := h.groups.List(c.Request().Context(), queryInt(c, "limit", 0), queryInt(c, "offset", 0))
	if err != nil {
		return h.writeGroupError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"groups": groups})
}

func (h *GroupHandler) listMine(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	groups, err := h.groups.ListMine(c.Request().Context(), user.ID)
	if err != nil {
		return h.writeGroupError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"groups": groups})
}

func (h *GroupHandler) get(c echo.Context) error {
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid group id"))
	}

	group, err := h.groups.Get(c.Request().Context(), groupID)
	if err != nil {
		return h.writeGroupError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"group": group})
}

func (h *GroupHandler) join(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid group id"))
	}

	if err := h.groups.Join(c.Request().Context(), groupID, user.ID); err != nil {
		return h.writeGroupError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

func (h *GroupHandler) leave(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid group id"))
	}

	if err := h.groups.Leave(c.Request().Context(), groupID, user.ID); err != nil {
		return h.writeGroupError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

func (h *GroupHandler) writeGroupError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrGroupNotFound):
		return c.JSON(http.StatusNotFound, util.Error(err.Error()))
	case errors.Is(err, service.ErrGroupNameTaken):
		return c.JSON(http.StatusConflict, util.Error(err.Error()))
	case errors.Is(err, service.ErrGroupNameEmpty):
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	case errors.Is(err, service.ErrDefaultGroup), errors.Is(err, service.ErrNotGroupMember):
		return c.JSON(http.StatusForbidden, util.Error(err.Error()))
	default:
		c.Logger().Errorf("groups: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("internal error"))
	}
}
