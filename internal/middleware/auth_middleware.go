package middleware

import (
	"quizform/internal/logger"
	"quizform/internal/service"

	"go.uber.org/zap"

	"github.com/gofiber/fiber/v2"
)

const (
	// SessionCookieName is the cookie the login handlers set.
	SessionCookieName = "token"

	// Keys for fiber.Ctx locals.
	UserIDKey      = "userID"
	UserNameKey    = "userName"
	AppellationKey = "appellation"
	RoleKey        = "role"
)

// Protected is a middleware function that protects routes by requiring a
// valid session cookie. It validates the token using the provided AuthService
// and stores the caller's identity in the context locals.
func Protected(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(SessionCookieName)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "MISSING_SESSION",
				Message: "Session cookie is missing",
				Status:  fiber.StatusUnauthorized,
			})
		}

		claims, err := authService.ValidateSessionToken(tokenString)
		if err != nil {
			logger.Get().Debug("Session validation failed", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "INVALID_TOKEN",
				Message: "Session is invalid or expired",
				Status:  fiber.StatusUnauthorized,
			})
		}

		c.Locals(UserIDKey, claims.UserID)
		c.Locals(UserNameKey, claims.UserName)
		c.Locals(AppellationKey, claims.Appellation)
		c.Locals(RoleKey, claims.Role)

		return c.Next()
	}
}
