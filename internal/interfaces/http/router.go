package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Asignacion-api/internal/application/allocation"
	"github.com/jhoicas/Asignacion-api/internal/application/messagebus"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Bus  *messagebus.Bus
	View allocation.AllocationView
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	h := NewAllocationHandler(deps.Bus, deps.View)
	api.Post("/batches", h.AddBatch)
	api.Post("/allocations", h.Allocate)
	api.Get("/allocations/:order_id", h.GetAllocations)
}
