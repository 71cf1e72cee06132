package main

import (
	"fmt"
	"log"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/DanielKrohn/InkPress/internal/pkg/cache"
	"github.com/DanielKrohn/InkPress/internal/pkg/database"
	"github.com/DanielKrohn/InkPress/internal/pkg/env"
	"github.com/DanielKrohn/InkPress/internal/pkg/jobqueue"
	"github.com/DanielKrohn/InkPress/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	jobqueue.GetManager().Start()

	app := fiber.New(fiber.Config{
		AppName: "inkpress-billing",
	})
	app.Use(recover.New(), logger.New())
	app.Get("/metrics", monitor.New())
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: "./public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app)

	return app
}
