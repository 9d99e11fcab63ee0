package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mioNacs/BLManagementSystem/internal/handlers"
)

// Limiters are the per-endpoint rate limit handlers. Any nil entry is
// skipped.
type Limiters struct {
	Register fiber.Handler
	Login    fiber.Handler
	Forgot   fiber.Handler
}

func Setup(app *fiber.App, auth *handlers.AuthHandler, events *handlers.EventHandler, guard fiber.Handler, limits Limiters) {
	api := app.Group("/api")
	authGrp := api.Group("/auth")

	// Public routes
	authGrp.Post("/register", withLimit(limits.Register, auth.Register)...)
	authGrp.Post("/login", withLimit(limits.Login, auth.Login)...)
	authGrp.Post("/refresh-token", auth.Refresh)
	authGrp.Post("/forgot-password", withLimit(limits.Forgot, auth.ForgotPassword)...)
	authGrp.Post("/reset-password", auth.ResetPassword)

	// Protected routes
	authGrp.Post("/logout", guard, auth.Logout)
	authGrp.Get("/me", guard, auth.Me)
	authGrp.Delete("/delete-account", guard, auth.DeleteAccount)
	authGrp.Post("/change-password", guard, auth.ChangePassword)
	authGrp.Put("/update-profile", guard, auth.UpdateProfile)

	eventGrp := api.Group("/events")
	eventGrp.Post("/createEvent", events.Create)
	eventGrp.Get("/getALLEvents", events.List)
	eventGrp.Put("/:id", events.Update)
}

func withLimit(limit fiber.Handler, h fiber.Handler) []fiber.Handler {
	if limit == nil {
		return []fiber.Handler{h}
	}
	return []fiber.Handler{limit, h}
}
