package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/redis/go-redis/v9"

	"pdf2docx/internal/config"
	"pdf2docx/internal/conversion"
	"pdf2docx/internal/convert"
	"pdf2docx/internal/domain"
	"pdf2docx/internal/http/handlers"
	"pdf2docx/internal/http/middleware"
	"pdf2docx/internal/infra/cache"
	"pdf2docx/internal/infra/logging"
)

// ConvertPath is where the conversion endpoint is mounted.
const ConvertPath = "/api/pdf-to-word"

// Deps are the external dependencies of the app. A nil Redis client disables
// the result cache; a nil Converter selects the library-backed converter.
type Deps struct {
	Config    config.Config
	Redis     *redis.Client
	Converter convert.Converter
}

// New creates and configures a new Fiber app instance
func New(deps Deps) *fiber.App {
	cfg := deps.Config

	app := fiber.New(fiber.Config{
		Prefork:               cfg.Server.Prefork,
		DisableStartupMessage: true,
		BodyLimit:             cfg.Limits.MaxRequestBytes,
		ErrorHandler:          errorHandler,
	})

	middleware.Register(app, cfg)
	registerRoutes(app, deps)

	// Ensure all responses, including 404s, return JSON
	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not Found")
	})

	return app
}

func registerRoutes(app *fiber.App, deps Deps) {
	cfg := deps.Config

	conv := deps.Converter
	if conv == nil {
		conv = convert.New(convert.OptionsFromConfig(cfg))
	}
	var dc *cache.DocxCache
	if cfg.Cache.DocxCacheEnabled {
		dc = cache.New(deps.Redis, cfg.Cache.DocxCacheTTL)
	}
	pool := convert.NewPool(cfg.Convert.PoolSize)
	app.Hooks().OnShutdown(func() error {
		pool.Close()
		return nil
	})

	h := handlers.NewConvertHandler(conversion.NewService(cfg, conv, pool, dc))

	app.Options("/*", handlers.HandlePreflight)
	app.Post(ConvertPath, h.HandleConversion)

	v1 := app.Group("/v1")
	v1.Get("/converter/stats", h.HandleStats)
	v1.Get("/monitor", monitor.New())
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		msg = e.Message
	}

	logging.Warn("Request failed", "path", c.Path(), "status", code, "message", msg)
	return handlers.Respond(c, code, domain.Failed(msg))
}
