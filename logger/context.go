package logger

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// WithRequest tags an entry with the request id, method and path of c.
func WithRequest(c *fiber.Ctx) *logrus.Entry {
	fields := logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
	}
	if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
		fields["request_id"] = rid
	}
	return log.WithFields(fields)
}
