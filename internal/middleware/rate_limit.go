package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimit creates a rate limiter keyed by authenticated team, falling back
// to the client IP for anonymous endpoints such as login.
func RateLimit(identifier string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			teamID := fmt.Sprintf("%v", c.Locals("team_id"))
			if teamID == "" || teamID == "<nil>" || teamID == "0" {
				teamID = c.IP()
			}
			return fmt.Sprintf("%s:%s", identifier, teamID)
		},
	})
}
