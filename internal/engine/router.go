package engine

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, h *Handler, authMW fiber.Handler) {
	api := app.Group("/api")

	api.Get("/databases", authMW, h.ListDatabases)
	api.Get("/databases/:id/form", authMW, h.GetForm)
	api.Post("/submissions", authMW, h.Submit)
	api.Get("/submissions", authMW, h.ListSubmissions)
}
