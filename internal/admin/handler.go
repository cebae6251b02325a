package admin

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"notion-forms/internal/engine"
	"notion-forms/internal/instrument"
	"notion-forms/internal/store"
)

// Handler serves operator endpoints: workspace installations and the
// instrumentation event log.
type Handler struct {
	installations *store.Installations
	events        *instrument.EventHandler
}

func NewHandler(inst *store.Installations, eh *instrument.EventHandler) *Handler {
	return &Handler{installations: inst, events: eh}
}

func RegisterAdminRoutes(app *fiber.App, h *Handler, authMW, adminMW fiber.Handler) {
	admin := app.Group("/api")

	admin.Get("/installations", authMW, adminMW, h.ListInstallations)
	admin.Put("/installations/:workspace", authMW, adminMW, h.PutInstallation)
	admin.Delete("/installations/:workspace", authMW, adminMW, h.DeleteInstallation)

	admin.Get("/_events", authMW, adminMW, h.events.List)
}

// --- Installation Endpoints ---

func (h *Handler) ListInstallations(c *fiber.Ctx) error {
	list, err := h.installations.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": list})
}

func (h *Handler) PutInstallation(c *fiber.Ctx) error {
	var body struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&body); err != nil {
		return engine.NewAppError("INVALID_PAYLOAD", 400, "Invalid JSON body")
	}
	if body.Token == "" {
		return engine.ValidationError([]engine.ErrorDetail{{Field: "token", Rule: "required", Message: "token is required"}})
	}

	workspace := c.Params("workspace")
	if err := h.installations.Put(c.UserContext(), workspace, body.Token); err != nil {
		return fmt.Errorf("put installation: %w", err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"workspace": workspace}})
}

func (h *Handler) DeleteInstallation(c *fiber.Ctx) error {
	workspace := c.Params("workspace")
	if err := h.installations.Delete(c.UserContext(), workspace); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return engine.NewAppError("NOT_FOUND", 404, "No installation for workspace: "+workspace)
		}
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"workspace": workspace, "deleted": true}})
}
