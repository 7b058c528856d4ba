package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jewelify/jewelify-server/internal/models"
	"github.com/jewelify/jewelify-server/internal/services"
	"github.com/jewelify/jewelify-server/internal/storage"
)

const userLocalKey = "current_user"

// RequireAuth validates the bearer token and loads the account onto the
// request context
func RequireAuth(auth *services.AuthService, store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "Missing authorization header")
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return unauthorized(c, "Invalid authorization header format")
		}

		claims, err := auth.VerifyToken(parts[1])
		if err != nil {
			return unauthorized(c, "Could not validate credentials")
		}

		user, err := store.GetUserByID(claims.Subject)
		if err != nil {
			return unauthorized(c, "Could not validate credentials")
		}

		c.Locals(userLocalKey, user)
		return c.Next()
	}
}

// CurrentUser returns the account loaded by RequireAuth, or nil when the
// route is unauthenticated
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userLocalKey).(*models.User)
	return user
}

func unauthorized(c *fiber.Ctx, message string) error {
	c.Set("WWW-Authenticate", "Bearer")
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": message,
	})
}
