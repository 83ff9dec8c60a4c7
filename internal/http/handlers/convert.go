package handlers

import (
	"github.com/gofiber/fiber/v2"

	"pdf2docx/internal/conversion"
	"pdf2docx/internal/domain"
)

// Respond writes env as JSON with the given status. Every response of the
// service, successful or not, goes through here so that all of them carry
// the CORS origin header.
func Respond(c *fiber.Ctx, status int, env domain.Envelope) error {
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	return c.Status(status).JSON(env)
}

// ConvertHandler mounts a conversion.Service behind Fiber.
type ConvertHandler struct {
	Service *conversion.Service
}

// NewConvertHandler creates a new ConvertHandler instance.
func NewConvertHandler(svc *conversion.Service) *ConvertHandler {
	return &ConvertHandler{Service: svc}
}

// HandleConversion converts the base64 PDF in the JSON body to a base64 DOCX.
func (h *ConvertHandler) HandleConversion(c *fiber.Ctx) error {
	resp := h.Service.Handle(c.UserContext(), c.Body(), c.GetRespHeader(fiber.HeaderXRequestID))
	return Respond(c, resp.Status, resp.Body)
}

// HandlePreflight answers CORS preflight requests on any path with an empty 200.
func HandlePreflight(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	c.Set(fiber.HeaderAccessControlAllowMethods, "POST, OPTIONS")
	c.Set(fiber.HeaderAccessControlAllowHeaders, "Content-Type")
	c.Status(fiber.StatusOK)
	return nil
}

// HandleStats exposes basic observability for the conversion pool (capacity / idle / in_use).
func (h *ConvertHandler) HandleStats(c *fiber.Ctx) error {
	cfg := h.Service.Config
	out := fiber.Map{
		"enabled":        false,
		"capacity":       0,
		"idle":           0,
		"in_use":         0,
		"converted":      0,
		"failed":         0,
		"pool_size_conf": cfg.Convert.PoolSize,
		"timeout_secs":   cfg.Convert.TimeoutSecs,
		"cache_enabled":  h.Service.Cache != nil,
	}
	if pool := h.Service.Pool; pool != nil {
		s := pool.Stats()
		out["enabled"] = s.Enabled
		out["capacity"] = s.Capacity
		out["idle"] = s.Idle
		out["in_use"] = s.InUse
		out["converted"] = s.Converted
		out["failed"] = s.Failed
	}
	return c.JSON(out)
}
