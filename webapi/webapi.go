// Package webapi provides HTTP handlers and API endpoints for the expense
// currency conversion service.
// It is organized into sub-packages for different domains:
// - conversion: Rate resolution and conversion quote endpoints
// - expense: Expense summary endpoints
package webapi

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/amirasaad/tem/pkg/app"
	"github.com/amirasaad/tem/webapi/common"
	conversionweb "github.com/amirasaad/tem/webapi/conversion"
	expenseweb "github.com/amirasaad/tem/webapi/expense"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(app *app.App) *fiber.App {
	svc := app.ConversionService

	fiberApp := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})

	// Configure rate limiting middleware
	// Uses X-Forwarded-For header when behind a proxy
	// Falls back to X-Real-IP or direct IP if needed
	if rl := app.Config.RateLimit; rl != nil && rl.MaxRequests > 0 {
		fiberApp.Use(limiter.New(limiter.Config{
			Max:          rl.MaxRequests,
			Expiration:   rl.Window,
			KeyGenerator: clientKey,
			LimitReached: func(c *fiber.Ctx) error {
				return common.ProblemDetailsJSON(
					c,
					"Too Many Requests",
					errors.New("rate limit exceeded"),
					fiber.StatusTooManyRequests,
				)
			},
		}))
	}
	fiberApp.Use(recover.New())
	if app.Config.Env == "development" {
		fiberApp.Use(logger.New())
	}

	// Health check endpoint
	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		providerName := "none"
		if app.Deps.RateProvider != nil {
			providerName = app.Deps.RateProvider.Name()
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "ok", fiber.Map{
			"provider":     providerName,
			"baseCurrency": svc.BaseCurrency(),
		})
	})

	conversionweb.Routes(fiberApp, svc)
	expenseweb.Routes(fiberApp, svc)
	return fiberApp
}

func clientKey(c *fiber.Ctx) string {
	if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
		// Take the first IP in the chain
		if first, _, found := strings.Cut(forwardedFor, ","); found {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(forwardedFor)
	}
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.IP()
}
