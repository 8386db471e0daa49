package allocation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/Asignacion-api/internal/domain"
	"github.com/jhoicas/Asignacion-api/internal/domain/entity"
	"github.com/jhoicas/Asignacion-api/internal/domain/message"
	"github.com/jhoicas/Asignacion-api/internal/domain/repository"
)

// AllocatedChannel canal externo donde se publican las asignaciones confirmadas.
const AllocatedChannel = "line_allocated"

// Service contiene los casos de uso de asignación. Cada handler abre su propia
// sesión de Unit of Work, invoca la única operación de dominio que el mensaje
// nombra y devuelve al bus los mensajes drenados tras el commit.
type Service struct {
	uowf      UnitOfWorkFactory
	publisher EventPublisher
	notifier  Notifier
	view      AllocationView
	alertTo   string
}

// NewService construye el servicio. alertTo es el destino de los avisos
// de falta de stock.
func NewService(uowf UnitOfWorkFactory, publisher EventPublisher, notifier Notifier, view AllocationView, alertTo string) *Service {
	return &Service{uowf: uowf, publisher: publisher, notifier: notifier, view: view, alertTo: alertTo}
}

// AddBatch registra un lote nuevo, creando el agregado del sku si no existía.
func (s *Service) AddBatch(ctx context.Context, cmd message.CreateBatch) ([]message.Message, error) {
	if cmd.Ref == "" || cmd.SKU == "" || cmd.Qty <= 0 {
		return nil, domain.ErrInvalidInput
	}
	uow := s.uowf.New()
	err := uow.Run(ctx, func(products repository.ProductRepository) error {
		p, err := products.Get(ctx, cmd.SKU)
		if err != nil {
			return err
		}
		if p == nil {
			p = entity.NewProduct(cmd.SKU)
			if err := products.Add(ctx, p); err != nil {
				return err
			}
		}
		return p.AddBatch(entity.NewBatch(cmd.Ref, cmd.SKU, cmd.Qty, cmd.ETA))
	})
	if err != nil {
		return nil, err
	}
	return uow.CollectNewMessages(), nil
}

// Allocate asigna la línea del comando al mejor lote disponible del sku.
// Quedarse sin stock no es un fallo del comando: el agregado deja registrado
// el evento OutOfStock y el comando se considera atendido.
func (s *Service) Allocate(ctx context.Context, cmd message.Allocate) ([]message.Message, error) {
	if cmd.OrderID == "" || cmd.SKU == "" || cmd.Qty <= 0 {
		return nil, domain.ErrInvalidInput
	}
	line := entity.OrderLine{OrderID: cmd.OrderID, SKU: cmd.SKU, Qty: cmd.Qty}
	uow := s.uowf.New()
	err := uow.Run(ctx, func(products repository.ProductRepository) error {
		p, err := products.Get(ctx, cmd.SKU)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: %s", domain.ErrUnknownSKU, cmd.SKU)
		}
		if _, err := p.Allocate(line); err != nil && !errors.Is(err, domain.ErrOutOfStock) {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uow.CollectNewMessages(), nil
}

// ChangeBatchQuantity cambia la cantidad comprada del lote referenciado.
// Las líneas que el agregado libere saldrán como eventos Deallocated y el
// handler Reallocate las reintentará contra otros lotes.
func (s *Service) ChangeBatchQuantity(ctx context.Context, cmd message.ChangeBatchQuantity) ([]message.Message, error) {
	if cmd.Ref == "" || cmd.Qty < 0 {
		return nil, domain.ErrInvalidInput
	}
	uow := s.uowf.New()
	err := uow.Run(ctx, func(products repository.ProductRepository) error {
		p, err := products.GetByBatchRef(ctx, cmd.Ref)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: %s", domain.ErrUnknownBatch, cmd.Ref)
		}
		return p.ChangeBatchQuantity(cmd.Ref, cmd.Qty)
	})
	if err != nil {
		return nil, err
	}
	return uow.CollectNewMessages(), nil
}

// PublishAllocated publica el evento hacia integraciones externas (Redis).
func (s *Service) PublishAllocated(ctx context.Context, evt message.Allocated) ([]message.Message, error) {
	return nil, s.publisher.Publish(ctx, AllocatedChannel, evt)
}

// AddAllocationToView refleja la asignación en el modelo de lectura.
func (s *Service) AddAllocationToView(ctx context.Context, evt message.Allocated) ([]message.Message, error) {
	return nil, s.view.Add(ctx, AllocationEntry{
		OrderID:  evt.OrderID,
		SKU:      evt.SKU,
		BatchRef: evt.BatchRef,
	})
}

// RemoveAllocationFromView retira la asignación liberada del modelo de lectura.
func (s *Service) RemoveAllocationFromView(ctx context.Context, evt message.Deallocated) ([]message.Message, error) {
	return nil, s.view.Remove(ctx, evt.OrderID, evt.SKU)
}

// Reallocate convierte cada línea liberada en un comando Allocate nuevo, que
// el bus procesa igual que uno llegado desde afuera.
func (s *Service) Reallocate(ctx context.Context, evt message.Deallocated) ([]message.Message, error) {
	return []message.Message{message.Allocate{
		OrderID: evt.OrderID,
		SKU:     evt.SKU,
		Qty:     evt.Qty,
	}}, nil
}

// SendOutOfStockNotification avisa por correo que el sku quedó sin stock.
func (s *Service) SendOutOfStockNotification(ctx context.Context, evt message.OutOfStock) ([]message.Message, error) {
	return nil, s.notifier.Send(ctx, s.alertTo,
		"Sin stock: "+evt.SKU,
		fmt.Sprintf("No quedan lotes con disponibilidad para el sku %s.", evt.SKU),
	)
}
