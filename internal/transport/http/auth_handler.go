package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campusarena/campus-arena-api/internal/domain"
	"github.com/campusarena/campus-arena-api/internal/service"
	"github.com/campusarena/campus-arena-api/internal/util"
)

type AuthHandler struct {
	auth *service.AuthService
}

func RegisterAuth(e *echo.Echo, auth *service.AuthService) {
	handler := &AuthHandler{auth: auth}

	g := e.Group("/api/v1/auth")
	g.POST("/register", handler.register)
	g.POST("/send-otp", handler.sendOTP)
	g.POST("/verify-otp", handler.verifyOTP)
	g.POST("/login", handler.login)
	g.POST("/google", handler.loginGoogle)
	g.POST("/forgot-password", handler.forgotPassword)
	g.GET("/reset-password/:token", handler.validateResetToken)
	g.POST("/reset-password", handler.resetPassword)
	g.POST("/change-password", handler.changePassword, RequireAuth(auth))
}

// register creates an unverified account and emails the signup code.
func (h *AuthHandler) register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	user, err := h.auth.Register(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			return c.JSON(http.StatusConflict, util.Error(err.Error()))
		case errors.Is(err, service.ErrInvalidEmail):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return h.writeAuthError(c, err)
		}
	}

	return c.JSON(http.StatusCreated, util.Envelope{"user": buildAuthUser(user)})
}

func (h *AuthHandler) sendOTP(c echo.Context) error {
	var req SendOTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	if err := h.auth.SendSignupOTP(c.Request().Context(), req.Email); err != nil {
		if errors.Is(err, service.ErrInvalidEmail) {
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		}
		return h.writeAuthError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

func (h *AuthHandler) verifyOTP(c echo.Context) error {
	var req VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	if err := h.auth.VerifySignupOTP(c.Request().Context(), req.Email, req.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrOTPNotFound), errors.Is(err, service.ErrOTPExpired):
			return c.JSON(http.StatusGone, util.Error(err.Error()))
		case errors.Is(err, service.ErrOTPMismatch):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			return h.writeAuthError(c, err)
		}
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

func (h *AuthHandler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	result, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, util.Error(err.Error()))
		case errors.Is(err, service.ErrEmailNotVerified):
			return c.JSON(http.StatusForbidden, util.Error(err.Error()))
		default:
			return h.writeAuthError(c, err)
		}
	}
	return c.JSON(http.StatusOK, buildAuthToken(result))
}

func (h *AuthHandler) loginGoogle(c echo.Context) error {
	var req GoogleLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	result, err := h.auth.LoginWithGoogle(c.Request().Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidGoogleToken) {
			return c.JSON(http.StatusUnauthorized, util.Error(err.Error()))
		}
		return h.writeAuthError(c, err)
	}
	return c.JSON(http.StatusOK, buildAuthToken(result))
}

// forgotPassword must answer the same way whether or not the email has an
// account, so address harvesting learns nothing.
func (h *AuthHandler) forgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	if err := h.auth.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return h.writeAuthError(c, err)
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"message": "if an account exists for this email, a reset link has been sent",
	})
}

func (h *AuthHandler) validateResetToken(c echo.Context) error {
	_, err := h.auth.ValidateResetToken(c.Request().Context(), c.Param("token"))
	if err != nil {
		return h.writeResetError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

func (h *AuthHandler) resetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	if err := h.auth.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return h.writeResetError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

func (h *AuthHandler) changePassword(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	if err := h.auth.ChangePassword(c.Request().Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, util.Error(err.Error()))
		case errors.Is(err, service.ErrAccountNotFound):
			return c.JSON(http.StatusNotFound, util.Error(err.Error()))
		default:
			return h.writeAuthError(c, err)
		}
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

func (h *AuthHandler) writeResetError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrTokenNotFound), errors.Is(err, service.ErrTokenExpired):
		return c.JSON(http.StatusGone, util.Error(err.Error()))
	case errors.Is(err, service.ErrAccountNotFound):
		return c.JSON(http.StatusNotFound, util.Error(err.Error()))
	default:
		return h.writeAuthError(c, err)
	}
}

func (h *AuthHandler) writeAuthError(c echo.Context, err error) error {
	if errors.Is(err, util.ErrPasswordPolicy) {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	c.Logger().Errorf("auth: %v", err)
	return c.JSON(http.StatusInternalServerError, util.Error("internal error"))
}

func buildAuthToken(result *service.AuthResult) AuthTokenResponse {
	return AuthTokenResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		User:      buildAuthUser(result.User),
	}
}

func buildAuthUser(user *domain.User) AuthUser {
	return AuthUser{
		ID:               user.ID.String(),
		Email:            user.Email,
		Username:         user.Username,
		FullName:         user.FullName,
		AvatarURL:        user.AvatarURL,
		Department:       user.Department,
		GraduationYear:   user.GraduationYear,
		Bio:              user.Bio,
		Interests:        user.Interests,
		EmailVerified:    user.EmailVerified,
		ProfileCompleted: user.ProfileCompleted,
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
	}
}
