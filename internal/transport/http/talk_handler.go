package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/campusarena/campus-arena-api/internal/domain"
	"github.com/campusarena/campus-arena-api/internal/service"
	"github.com/campusarena/campus-arena-api/internal/util"
)

type TalkHandler struct {
	talks *service.TalkService
}

func RegisterTalks(e *echo.Echo, auth *service.AuthService, talks *service.TalkService) {
	handler := &TalkHandler{talks: talks}

	g := e.Group("/api/v1/talks", RequireAuth(auth))
	g.POST("", handler.createPost)
	g.GET("", handler.list)
	g.GET("/:id", handler.getPost)
	g.DELETE("/:id", handler.deletePost)
	g.POST("/:id/replies", handler.reply)
	g.GET("/:id/replies", handler.listReplies)
	g.POST("/:id/replies/:replyID/accept", handler.acceptReply)
}

func (h *TalkHandler) createPost(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	var req struct {
		Title    string  `json:"title"`
		Body     string  `json:"body"`
		Category *string `json:"category"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	post, err := h.talks.CreatePost(c.Request().Context(), user.ID, req.Title, req.Body, req.Category)
	if err != nil {
		return h.writeTalkError(c, err)
	}
	return c.JSON(http.StatusCreated, util.Envelope{"post": post})
}

// list serves the feed tabs: latest (default), unanswered, mine, trending.
func (h *TalkHandler) list(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	filter := domain.TalkFilter{
		Tab:      domain.TalkTab(strings.TrimSpace(c.QueryParam("tab"))),
		Category: strings.TrimSpace(c.QueryParam("category")),
		ViewerID: user.ID,
		Limit:    queryInt(c, "limit", 0),
		Offset:   queryInt(c, "offset", 0),
	}

	result, err := h.talks.List(c.Request().Context(), filter)
	if err != nil {
		return h.writeTalkError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"posts":  result.Posts,
		"total":  result.Total,
		"limit":  result.Limit,
		"offset": result.Offset,
	})
}

func (h *TalkHandler) getPost(c echo.Context) error {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid post id"))
	}

	post, err := h.talks.GetPost(c.Request().Context(), postID)
	if err != nil {
		return h.writeTalkError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"post": post})
}

func (h *TalkHandler) deletePost(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid post id"))
	}

	if err := h.talks.DeletePost(c.Request().Context(), postID, user.ID); err != nil {
		return h.writeTalkError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

func (h *TalkHandler) reply(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid post id"))
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	reply, err := h.talks.Reply(c.Request().Context(), postID, user.ID, req.Body)
	if err != nil {
		return h.writeTalkError(c, err)
	}
	return c.JSON(http.StatusCreated, util.Envelope{"reply": reply})
}

func (h *TalkHandler) listReplies(c echo.Context) error {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid post id"))
	}

	replies, err := h.talks.ListReplies(c.Request().Context(), postID, queryInt(c, "limit", 0), queryInt(c, "offset", 0))
	if err != nil {
		return h.writeTalkError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"replies": replies})
}

func (h *TalkHandler) acceptReply(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid post id"))
	}
	replyID, err := uuid.Parse(c.Param("replyID"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid reply id"))
	}

	if err := h.talks.AcceptReply(c.Request().Context(), postID, replyID, user.ID); err != nil {
		return h.writeTalkError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

func (h *TalkHandler) writeTalkError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrPostNotFound), errors.Is(err, service.ErrReplyNotFound):
		return c.JSON(http.StatusNotFound, util.Error(err.Error()))
	case errors.Is(err, service.ErrNotPostAuthor):
		return c.JSON(http.StatusForbidden, util.Error(err.Error()))
	case errors.Is(err, service.ErrUnknownTab), errors.Is(err, service.ErrEmptyPost), errors.Is(err, service.ErrReplyMismatch):
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	default:
		c.Logger().Errorf("talks: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("internal error"))
	}
}
