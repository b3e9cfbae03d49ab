package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/campusarena/campus-arena-api/internal/domain"
	"github.com/campusarena/campus-arena-api/internal/media"
	"github.com/campusarena/campus-arena-api/internal/service"
	"github.com/campusarena/campus-arena-api/internal/util"
)

type UserHandler struct {
	profiles *service.ProfileService
}

func RegisterUsers(e *echo.Echo, auth *service.AuthService, profiles *service.ProfileService) {
	handler := &UserHandler{profiles: profiles}

	g := e.Group("/api/v1", RequireAuth(auth))
	g.GET("/me", handler.me)
	g.PUT("/me", handler.updateMe)
	g.POST("/me/avatar", handler.uploadAvatar)
	g.GET("/classmates", handler.classmates)
}

func (h *UserHandler) me(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	current, err := h.profiles.Get(c.Request().Context(), user.ID)
	if err != nil {
		return h.writeProfileError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"user": buildAuthUser(current)})
}

func (h *UserHandler) updateMe(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	var req struct {
		FullName       *string  `json:"full_name"`
		Username       *string  `json:"username"`
		Department     *string  `json:"department"`
		Bio            *string  `json:"bio"`
		GraduationYear *int     `json:"graduation_year"`
		Interests      []string `json:"interests"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	updated, err := h.profiles.Update(c.Request().Context(), user.ID, service.ProfileUpdate{
		FullName:       req.FullName,
		Username:       req.Username,
		Department:     req.Department,
		Bio:            req.Bio,
		GraduationYear: req.GraduationYear,
		Interests:      req.Interests,
	})
	if err != nil {
		return h.writeProfileError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"user": buildAuthUser(updated)})
}

func (h *UserHandler) uploadAvatar(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("file upload required"))
	}
	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("unable to read upload"))
	}
	defer src.Close()

	url, err := h.profiles.UploadAvatar(c.Request().Context(), user.ID, media.Upload{
		Reader:      src,
		Size:        fileHeader.Size,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
	})
	if err != nil {
		return h.writeProfileError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{"avatar_url": url})
}

// classmates lists verified students matching the directory filters. The
// viewer is always excluded, and each entry carries a live presence flag.
func (h *UserHandler) classmates(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	filter := domain.ClassmateFilter{
		Department: strings.TrimSpace(c.QueryParam("department")),
		Search:     strings.TrimSpace(c.QueryParam("search")),
		Limit:      queryInt(c, "limit", 0),
		Offset:     queryInt(c, "offset", 0),
	}
	if raw := strings.TrimSpace(c.QueryParam("graduation_year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, util.Error("graduation_year must be a number"))
		}
		filter.GraduationYear = &year
	}

	result, err := h.profiles.Classmates(c.Request().Context(), user.ID, filter)
	if err != nil {
		return h.writeProfileError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"classmates": result.Items,
		"total":      result.Total,
		"limit":      result.Limit,
		"offset":     result.Offset,
	})
}

func (h *UserHandler) writeProfileError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrAccountNotFound):
		return c.JSON(http.StatusNotFound, util.Error(err.Error()))
	case errors.Is(err, service.ErrUsernameTaken):
		return c.JSON(http.StatusConflict, util.Error(err.Error()))
	case errors.Is(err, service.ErrAvatarTooLarge):
		return c.JSON(http.StatusRequestEntityTooLarge, util.Error(err.Error()))
	default:
		c.Logger().Errorf("profile: %v", err)
		return c.JSON(http.StatusInternalServerError, util.Error("internal error"))
	}
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
