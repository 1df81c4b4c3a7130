package handler

import (
	"time"

	"quizform/internal/config"
	"quizform/internal/domain"
	"quizform/internal/dto"
	"quizform/internal/middleware"
	"quizform/internal/service"
	"quizform/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler serves password login, session introspection, logout and the
// HTTP side of the QR login relay.
type AuthHandler struct {
	authService    service.AuthService
	pairingService service.PairingService
	appConfig      *config.Config
}

func NewAuthHandler(authService service.AuthService, pairingService service.PairingService, appConfig *config.Config) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		pairingService: pairingService,
		appConfig:      appConfig,
	}
}

// Login authenticates with email and password and sets the session cookie.
// @Summary Password login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if err := validation.ValidateLogin(&req); err != nil {
		return err
	}

	user, err := h.authService.VerifyCredentials(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	token, err := h.authService.CreateSessionToken(user.ID, user.UserName, user.Appellation, string(user.Role), h.appConfig.JWT.SessionTTL)
	if err != nil {
		return domain.NewInternalError("Login failed", err)
	}

	h.setSessionCookie(c, token, h.appConfig.JWT.SessionTTL)
	return c.JSON(dto.MessageResponse{Message: "Login success"})
}

// LoginStatus reports whether the caller holds a valid session.
// @Summary Session check
// @Tags auth
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Router /auth/login [get]
func (h *AuthHandler) LoginStatus(c *fiber.Ctx) error {
	userName, _ := c.Locals(middleware.UserNameKey).(string)
	return c.JSON(fiber.Map{
		"message":     "Login status",
		"userName":    userName,
		"appellation": c.Locals(middleware.AppellationKey),
		"role":        c.Locals(middleware.RoleKey),
	})
}

// Logout clears the session cookie.
// @Summary Logout
// @Tags auth
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Router /auth/logout [get]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   c.Secure(),
		SameSite: "Lax",
		Path:     "/",
	})
	return c.JSON(dto.MessageResponse{Message: "Logout success"})
}

// QRRedeem lets an authenticated phone bind its identity to a scanned token.
// @Summary Redeem a QR token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.QRLoginRequest true "Credentials plus scanned token"
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 408 {object} middleware.ErrorResponse
// @Router /auth/qrlogin [post]
func (h *AuthHandler) QRRedeem(c *fiber.Ctx) error {
	var req dto.QRLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if err := validation.ValidateQRLogin(&req); err != nil {
		return err
	}

	if err := h.pairingService.Redeem(c.Context(), &req); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Login success"})
}

// QRFinalize consumes a redeemed token and logs the display in.
// @Summary Finalize a QR login
// @Description Exchanges a redeemed token for a session cookie. Each token is usable once.
// @Tags auth
// @Produce json
// @Param token query string true "Redeemed QR token"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /auth/qrlogin [get]
func (h *AuthHandler) QRFinalize(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return domain.ValidationErrors{domain.NewMissingFieldError("token")}
	}

	claim, err := h.pairingService.Finalize(c.Context(), token)
	if err != nil {
		return err
	}

	session, err := h.authService.CreateSessionToken(claim.UserID, claim.UserName, claim.Appellation, claim.Role, h.appConfig.JWT.QRSessionTTL)
	if err != nil {
		return domain.NewInternalError("Login failed", err)
	}

	h.setSessionCookie(c, session, h.appConfig.JWT.QRSessionTTL)
	return c.JSON(dto.MessageResponse{Message: "Login success"})
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   c.Secure(),
		SameSite: "Lax",
		Path:     "/",
	})
}
