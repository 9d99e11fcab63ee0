package middlewares

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mioNacs/BLManagementSystem/internal/models"
	"github.com/mioNacs/BLManagementSystem/internal/repository"
	"github.com/mioNacs/BLManagementSystem/internal/utils"
)

const userLocalsKey = "authUser"

// RequireAuth gates protected routes. It resolves the caller from the
// accessToken cookie or the Authorization Bearer header, loads the user
// and attaches it to the request context. It never refreshes tokens or
// touches cookies.
func RequireAuth(tokens *utils.TokenManager, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies("accessToken")
		if token == "" {
			header := c.Get(fiber.HeaderAuthorization)
			token = strings.TrimPrefix(header, "Bearer ")
		}
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized request")
		}

		claims, err := tokens.ParseAccess(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid access token")
		}

		id, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid access token")
		}
		user, err := users.FindByID(c.Context(), id)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "Invalid Access Token")
			}
			return err
		}

		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

// AuthUser returns the user resolved by RequireAuth for this request.
func AuthUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(userLocalsKey).(*models.User)
	return user, ok
}
