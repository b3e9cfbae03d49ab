package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/campusarena/campus-arena-api/internal/service"
	"github.com/campusarena/campus-arena-api/internal/util"
)

type MessageHandler struct {
	messages *service.MessageService
}

func RegisterMessages(e *echo.Echo, auth *service.AuthService, messages *service.MessageService) {
	handler := &MessageHandler{messages: messages}

	g := e.Group("/api/v1/conversations", RequireAuth(auth))
	g.POST("/direct", handler.startDirect)
	g.GET("", handler.list)
	g.GET("/:id/messages", handler.history)
	g.POST("/:id/messages", handler.send)
}

func (h *MessageHandler) startDirect(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	var req struct {
		UserID string `json:"user_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	otherID, err := uuid.Parse(req.UserID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("user_id must be a valid UUID"))
	}

	conv, err := h.messages.StartDirect(c.Request().Context(), user.ID, otherID)
	if err != nil {
		return h.writeMessageError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"conversation": conv})
}

func (h *MessageHandler) list(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	convs, err := h.messages.Conversations(c.Request().Context(), user.ID)
	if err != nil {
		return h.writeMessageError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"conversations": convs})
}

// history pages backwards: pass the created_at of the oldest message you have
// as ?before= to fetch the page preceding it.
func (h *MessageHandler) history(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid conversation id"))
	}

	var before time.Time
	if raw := strings.TrimSpace(c.QueryParam("before")); raw != "" {
		before, err = time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, util.Error("before must be an RFC 3339 timestamp"))
		}
	}

	msgs, err := h.messages.History(c.Request().Context(), conversationID, user.ID, before, queryInt(c, "limit", 0))
	if err != nil {
		return h.writeMessageError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"messages": msgs})
}

func (h *MessageHandler) send(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid conversation id"))
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	msg, err := h.messages.Send(c.Request().Context(), conversationID, user.ID, req.Body)
	if err != nil {
		return h.writeMessageError(c, err)
	}
	return c.JSON(http.StatusCreated, util.Envelope{"message": msg})
}

func (h *MessageHandler) writeMessageError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrConversationNotFound), errors.Is(err, service.ErrAccountNotFound):
		return c.JSON(http.StatusNotFound, util.Error(err.Error()))
	case errors.Is(err, service.ErrNotConversationMember):
		return c.JSON(http.StatusForbidden, util.Error(err.Error()))
	case errors.Is(err, service.ErrEmptyMessage), errors.Is(err, service.ErrDirectWithSelf):
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	default:
		c.Logger().Errorf("messages: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("internal error"))
	}
}
