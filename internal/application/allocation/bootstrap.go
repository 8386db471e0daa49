package allocation

import (
	"context"

	"github.com/jhoicas/Asignacion-api/internal/application/messagebus"
	"github.com/jhoicas/Asignacion-api/internal/domain/message"
	"github.com/jhoicas/Asignacion-api/pkg/logger"
)

// NewBus construye el bus con la tabla de handlers de la aplicación:
// un handler por comando y la lista ordenada de handlers por evento.
// Se llama una sola vez al arrancar el proceso.
func NewBus(log *logger.Logger, svc *Service) *messagebus.Bus {
	bus := messagebus.New(log)

	bus.RegisterCommand(message.CreateBatchName, func(ctx context.Context, m message.Message) ([]message.Message, error) {
		return svc.AddBatch(ctx, m.(message.CreateBatch))
	})
	bus.RegisterCommand(message.AllocateName, func(ctx context.Context, m message.Message) ([]message.Message, error) {
		return svc.Allocate(ctx, m.(message.Allocate))
	})
	bus.RegisterCommand(message.ChangeBatchQuantityName, func(ctx context.Context, m message.Message) ([]message.Message, error) {
		return svc.ChangeBatchQuantity(ctx, m.(message.ChangeBatchQuantity))
	})

	bus.RegisterEvent(message.AllocatedName, func(ctx context.Context, m message.Message) ([]message.Message, error) {
		return svc.PublishAllocated(ctx, m.(message.Allocated))
	})
	bus.RegisterEvent(message.AllocatedName, func(ctx context.Context, m message.Message) ([]message.Message, error) {
		return svc.AddAllocationToView(ctx, m.(message.Allocated))
	})
	bus.RegisterEvent(message.DeallocatedName, func(ctx context.Context, m message.Message) ([]message.Message, error) {
		return svc.RemoveAllocationFromView(ctx, m.(message.Deallocated))
	})
	bus.RegisterEvent(message.DeallocatedName, func(ctx context.Context, m message.Message) ([]message.Message, error) {
		return svc.Reallocate(ctx, m.(message.Deallocated))
	})
	bus.RegisterEvent(message.OutOfStockName, func(ctx context.Context, m message.Message) ([]message.Message, error) {
		return svc.SendOutOfStockNotification(ctx, m.(message.OutOfStock))
	})

	return bus
}
