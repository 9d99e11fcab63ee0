package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/mioNacs/BLManagementSystem/internal/middlewares"
	"github.com/mioNacs/BLManagementSystem/internal/services"
	"github.com/mioNacs/BLManagementSystem/internal/utils"
)

// AuthHandler translates HTTP requests into session-controller calls and
// owns the cookie lifecycle.
type AuthHandler struct {
	svc        services.AuthService
	logger     *zap.SugaredLogger
	production bool
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthHandler(svc services.AuthService, logger *zap.SugaredLogger, production bool, accessTTL, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		svc:        svc,
		logger:     logger,
		production: production,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

type registerReq struct {
	Username   string `json:"username" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	Gender     string `json:"gender" validate:"required"`
	Semester   int    `json:"semester" validate:"required,min=1,max=8"`
	Branch     string `json:"branch" validate:"required"`
	RollNo     string `json:"rollNo" validate:"required"`
	Course     string `json:"course" validate:"required"`
	ContactNo  string `json:"contactNo" validate:"required,len=10,numeric"`
	ProfilePic string `json:"profilePic"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if msg := utils.ValidateStruct(req); msg != "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	result, err := h.svc.Register(c.Context(), services.RegisterInput{
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		Gender:     req.Gender,
		Semester:   req.Semester,
		Branch:     req.Branch,
		RollNo:     req.RollNo,
		Course:     req.Course,
		ContactNo:  req.ContactNo,
		ProfilePic: req.ProfilePic,
	})
	if err != nil {
		return h.serviceError(err)
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user":    result.User,
		"message": "User registered successfully",
	})
}

type loginReq struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if (req.Email == "" && req.Username == "") || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Email/username and password are required")
	}

	result, err := h.svc.Login(c.Context(), services.LoginInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return h.serviceError(err)
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)
	return c.JSON(fiber.Map{
		"success": true,
		"user":    result.User,
		"message": "Login successful",
	})
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	token := c.Cookies("refreshToken")
	if token == "" {
		var req refreshReq
		if err := c.BodyParser(&req); err == nil {
			token = req.RefreshToken
		}
	}
	if token == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized request")
	}

	result, err := h.svc.Refresh(c.Context(), token)
	if err != nil {
		return h.serviceError(err)
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)
	return c.JSON(fiber.Map{
		"success":     true,
		"accessToken": result.AccessToken,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	user, ok := middlewares.AuthUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized request")
	}
	if err := h.svc.Logout(c.Context(), user.ID); err != nil {
		return h.serviceError(err)
	}

	h.clearAuthCookies(c)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out successfully",
	})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := middlewares.AuthUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized request")
	}
	current, err := h.svc.CurrentUser(c.Context(), user.ID)
	if err != nil {
		return h.serviceError(err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"user":    current,
	})
}

func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	user, ok := middlewares.AuthUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized request")
	}
	if err := h.svc.DeleteAccount(c.Context(), user.ID); err != nil {
		return h.serviceError(err)
	}

	h.clearAuthCookies(c)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Account deleted successfully",
	})
}

type forgotPasswordReq struct {
	Email string `json:"email"`
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Email is required")
	}

	if err := h.svc.ForgotPassword(c.Context(), req.Email); err != nil {
		return h.serviceError(err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password reset instructions sent to your email",
	})
}

type resetPasswordReq struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Token == "" || req.NewPassword == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Token and new password are required")
	}

	if err := h.svc.ResetPassword(c.Context(), req.Token, req.NewPassword); err != nil {
		return h.serviceError(err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password has been reset successfully",
	})
}

type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	user, ok := middlewares.AuthUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized request")
	}

	var req changePasswordReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if msg := utils.ValidateStruct(req); msg != "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	if err := h.svc.ChangePassword(c.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return h.serviceError(err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password changed successfully",
	})
}

type updateProfileReq struct {
	Username   *string `json:"username" validate:"omitempty,min=1"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Gender     *string `json:"gender"`
	Semester   *int    `json:"semester" validate:"omitempty,min=1,max=8"`
	Branch     *string `json:"branch"`
	RollNo     *string `json:"rollNo"`
	Course     *string `json:"course"`
	ContactNo  *string `json:"contactNo" validate:"omitempty,len=10,numeric"`
	ProfilePic *string `json:"profilePic"`
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := middlewares.AuthUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized request")
	}

	var req updateProfileReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if msg := utils.ValidateStruct(req); msg != "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	updated, err := h.svc.UpdateProfile(c.Context(), user.ID, services.UpdateProfileInput{
		Username:   req.Username,
		Email:      req.Email,
		Gender:     req.Gender,
		Semester:   req.Semester,
		Branch:     req.Branch,
		RollNo:     req.RollNo,
		Course:     req.Course,
		ContactNo:  req.ContactNo,
		ProfilePic: req.ProfilePic,
	})
	if err != nil {
		return h.serviceError(err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"user":    updated,
		"message": "Profile updated successfully",
	})
}

// serviceError maps session-controller sentinels to HTTP statuses.
func (h *AuthHandler) serviceError(err error) error {
	switch {
	case errors.Is(err, services.ErrDuplicateUsername),
		errors.Is(err, services.ErrDuplicateEmail),
		errors.Is(err, services.ErrDuplicateRollNo),
		errors.Is(err, services.ErrDuplicateContact):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrEmailNotFound),
		errors.Is(err, services.ErrAccountNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidPassword),
		errors.Is(err, services.ErrInvalidCurrentPassword),
		errors.Is(err, services.ErrInvalidRefreshToken):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrInvalidResetToken):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Errorw("auth operation failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "internal server error")
	}
}

func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	c.Cookie(h.authCookie("accessToken", accessToken, h.accessTTL))
	c.Cookie(h.authCookie("refreshToken", refreshToken, h.refreshTTL))
}

func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	c.Cookie(h.authCookie("accessToken", "", -time.Hour))
	c.Cookie(h.authCookie("refreshToken", "", -time.Hour))
}

// authCookie builds an HttpOnly cookie. In production cookies are sent
// cross-site (Secure + SameSite=None); in development Lax over plain
// HTTP so the local SPA can use them.
func (h *AuthHandler) authCookie(name, value string, ttl time.Duration) *fiber.Cookie {
	sameSite := fiber.CookieSameSiteLaxMode
	if h.production {
		sameSite = fiber.CookieSameSiteNoneMode
	}
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.production,
		SameSite: sameSite,
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
	}
}
