package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/teamdesk/teamdesk/internal/utils"
)

// CurrentAPIVersion is echoed on every /api response.
const CurrentAPIVersion = "1.0.0"

// VersionMiddleware resolves the X-Api-Version request header. Absent means
// current; an alias like "1.0" or "1" is widened; a different major version
// is rejected outright so stale clients fail loudly instead of misparsing
// responses.
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		version := c.Get("X-Api-Version", CurrentAPIVersion)

		switch version {
		case "1", "1.0":
			version = CurrentAPIVersion
		}

		if !strings.HasPrefix(version, "1.") {
			return utils.FailResponse(c, "Unsupported API version "+version,
				fiber.StatusBadRequest, "version")
		}

		c.Locals("apiVersion", version)
		c.Set("X-Api-Version", CurrentAPIVersion)

		return c.Next()
	}
}
