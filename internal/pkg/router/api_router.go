package router

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"

	"github.com/DanielKrohn/InkPress/app/controllers"
	"github.com/DanielKrohn/InkPress/internal/pkg/constants"
	"github.com/DanielKrohn/InkPress/internal/pkg/env"
	"github.com/DanielKrohn/InkPress/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group(constants.APIRoute, limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		Storage:    limiterStorage(),
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group(constants.APIV1Route)
	v1.Get("/billing/plans", controllers.HandleListPlans)
	v1.Get("/billing/plans/:id/pricing", controllers.HandleGetPlanPricing)
	v1.Get("/users/:id/access", middleware.APIKeyAuthMiddleware(), controllers.HandleGetUserAccess)

	admin := v1.Group(constants.AdminRoute, basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("ADMIN_USER", "admin"): env.GetEnv("ADMIN_PASSWORD", "admin"),
		},
	}))
	admin.Post("/billing/plans", controllers.HandleCreatePlan)
	admin.Get("/billing/plans/report", controllers.HandlePlansReport)
	admin.Get("/billing/stats", controllers.HandleBillingStats)
}

// limiterStorage backs the rate limiter with Redis so limits hold across
// instances; falls back to in-memory storage when Redis is not configured.
func limiterStorage() fiber.Storage {
	host := env.GetEnv("CACHE_HOST", "")
	if host == "" {
		return nil
	}
	port := 6379
	if p, err := strconv.Atoi(env.GetEnv("CACHE_PORT", "6379")); err == nil {
		port = p
	}
	return redis.New(redis.Config{
		Host: host,
		Port: port,
	})
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
