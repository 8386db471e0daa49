package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Asignacion-api/internal/application/allocation"
	"github.com/jhoicas/Asignacion-api/internal/application/dto"
	"github.com/jhoicas/Asignacion-api/internal/application/messagebus"
	"github.com/jhoicas/Asignacion-api/internal/domain"
	"github.com/jhoicas/Asignacion-api/internal/domain/message"
)

// AllocationHandler maneja las peticiones HTTP de lotes y asignaciones.
// Traduce los bodies al comando correspondiente, lo entrega al bus y mapea el
// resultado (eventos registrados o errores centinela) a códigos HTTP.
type AllocationHandler struct {
	bus  *messagebus.Bus
	view allocation.AllocationView
}

// NewAllocationHandler construye el handler.
func NewAllocationHandler(bus *messagebus.Bus, view allocation.AllocationView) *AllocationHandler {
	return &AllocationHandler{bus: bus, view: view}
}

// AddBatch POST /api/batches: registra un lote nuevo.
func (h *AllocationHandler) AddBatch(c *fiber.Ctx) error {
	var in dto.AddBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	var eta *time.Time
	if in.ETA != nil && *in.ETA != "" {
		parsed, err := time.Parse("2006-01-02", *in.ETA)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "eta inválida, se espera YYYY-MM-DD"})
		}
		eta = &parsed
	}

	cmd := message.CreateBatch{Ref: in.Ref, SKU: in.SKU, Qty: in.Qty, ETA: eta}
	if _, err := h.bus.Handle(c.Context(), cmd); err != nil {
		return h.mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "lote registrado"})
}

// Allocate POST /api/allocations: asigna una línea de pedido.
// 201 con batchref si quedó asignada; 409 si el sku quedó sin stock.
func (h *AllocationHandler) Allocate(c *fiber.Ctx) error {
	var in dto.AllocateRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	cmd := message.Allocate{OrderID: in.OrderID, SKU: in.SKU, Qty: in.Qty}
	res, err := h.bus.Handle(c.Context(), cmd)
	if err != nil {
		return h.mapError(c, err)
	}

	// El comando no devuelve valores: el resultado de negocio se lee de los
	// eventos registrados durante el despacho.
	for _, evt := range res.Events {
		if a, ok := evt.(message.Allocated); ok && a.OrderID == in.OrderID {
			return c.Status(fiber.StatusCreated).JSON(dto.AllocateResponse{BatchRef: a.BatchRef})
		}
	}
	return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "OUT_OF_STOCK", Message: "sin stock disponible para " + in.SKU})
}

// GetAllocations GET /api/allocations/:order_id: asignaciones vigentes del pedido.
func (h *AllocationHandler) GetAllocations(c *fiber.Ctx) error {
	orderID := c.Params("order_id")
	entries, err := h.view.ByOrderID(c.Context(), orderID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if len(entries) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "pedido sin asignaciones"})
	}

	out := make([]dto.AllocationViewDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.AllocationViewDTO{SKU: e.SKU, BatchRef: e.BatchRef})
	}
	return c.JSON(out)
}

func (h *AllocationHandler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrUnknownSKU):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "UNKNOWN_SKU", Message: err.Error()})
	case errors.Is(err, domain.ErrUnknownBatch):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "UNKNOWN_BATCH", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
