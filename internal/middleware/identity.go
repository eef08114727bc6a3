package middleware

import "github.com/gofiber/fiber/v2"

const (
	UserHeader = "User"
	userKey    = "user"
)

// Identity stores the caller-asserted name from the User header. The value is
// taken verbatim and never verified: this service has no authentication, so
// any client can act as any participant.
func Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(userKey, c.Get(UserHeader))
		return c.Next()
	}
}

// UserFrom returns the asserted name, or "" when none was sent.
func UserFrom(c *fiber.Ctx) string {
	name, _ := c.Locals(userKey).(string)
	return name
}
