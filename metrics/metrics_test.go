package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareAndHandler(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/menu/:id", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/metrics", Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/menu/7", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	StatusTransitions.WithLabelValues("Ready").Inc()

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, `route="/menu/:id"`, "labelled by route pattern, not raw path")
	assert.NotContains(t, out, `route="/menu/7"`)
	assert.Contains(t, out, "canteen_orders_confirmed_total")
	assert.Contains(t, out, `canteen_order_status_transitions_total{to="Ready"}`)
	assert.Contains(t, out, "go_goroutines")
}
