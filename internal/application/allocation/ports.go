package allocation

import (
	"context"

	"github.com/jhoicas/Asignacion-api/internal/domain/message"
	"github.com/jhoicas/Asignacion-api/internal/domain/repository"
)

// UnitOfWork delimita una sesión transaccional sobre un repositorio.
// Run abre la sesión, ejecuta fn con el repositorio atado a ella y hace
// Commit si fn devuelve nil o Rollback si devuelve error; la sesión queda
// cerrada en todos los caminos de salida. Anidar sesiones no está permitido.
type UnitOfWork interface {
	Run(ctx context.Context, fn func(products repository.ProductRepository) error) error
	// CollectNewMessages drena, tras un commit, los mensajes levantados por
	// todos los agregados vistos en la sesión.
	CollectNewMessages() []message.Message
}

// UnitOfWorkFactory crea una sesión nueva por invocación de handler.
type UnitOfWorkFactory interface {
	New() UnitOfWork
}

// EventPublisher publica eventos del dominio hacia integraciones externas.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, event message.Event) error
}

// Notifier envía avisos a humanos (correo en producción).
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// AllocationEntry fila del modelo de lectura de asignaciones.
type AllocationEntry struct {
	OrderID  string
	SKU      string
	BatchRef string
}

// AllocationView modelo de lectura orderid -> asignaciones, mantenido por
// los handlers de Allocated y Deallocated.
type AllocationView interface {
	Add(ctx context.Context, entry AllocationEntry) error
	Remove(ctx context.Context, orderID, sku string) error
	ByOrderID(ctx context.Context, orderID string) ([]AllocationEntry, error)
}
