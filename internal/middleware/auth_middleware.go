package middleware

import (
	"context"

	"warbler/internal/monitoring"
	"warbler/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	// UserIDKey is the Locals key holding the authenticated user's id.
	UserIDKey = "user_id"

	UnauthorizedMessage = "Access unauthorized."
)

// UserChecker reports whether a user account still exists.
type UserChecker interface {
	Exists(ctx context.Context, userID uint) (bool, error)
}

// LoadCurrentUser resolves the session's user. A session pointing at a deleted
// account is logged out so the request continues anonymously.
func LoadCurrentUser(users UserChecker, log *logrus.Entry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := session.FromContext(c)
		if !sess.Authenticated() {
			return c.Next()
		}

		exists, err := users.Exists(c.UserContext(), sess.UserID())
		if err != nil {
			return err
		}
		if !exists {
			log.WithField("user_id", sess.UserID()).Info("session refers to a deleted user, logging out")
			sess.Logout()
			return c.Next()
		}

		c.Locals(UserIDKey, sess.UserID())
		return c.Next()
	}
}

// RequireLogin refuses anonymous requests with a flash and a redirect home.
func RequireLogin() fiber.Handler {
	return RequireLoginWithMessage(UnauthorizedMessage)
}

// RequireLoginWithMessage is RequireLogin with a custom flash message.
func RequireLoginWithMessage(message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUserID(c) == 0 {
			return deny(c, message)
		}
		return c.Next()
	}
}

// Unauthorized flashes "Access unauthorized." and redirects to "/".
func Unauthorized(c *fiber.Ctx) error {
	return deny(c, UnauthorizedMessage)
}

func deny(c *fiber.Ctx, message string) error {
	monitoring.UnauthorizedAccess.Inc()
	session.FromContext(c).Flash("danger", message)
	return c.Redirect("/", fiber.StatusFound)
}

// CurrentUserID returns the authenticated user's id, or 0.
func CurrentUserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals(UserIDKey).(uint); ok {
		return id
	}
	return 0
}
