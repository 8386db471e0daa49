package allocation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jhoicas/Asignacion-api/internal/application/allocation"
	"github.com/jhoicas/Asignacion-api/internal/application/messagebus"
	"github.com/jhoicas/Asignacion-api/internal/domain"
	"github.com/jhoicas/Asignacion-api/internal/domain/message"
	"github.com/jhoicas/Asignacion-api/internal/infrastructure/memory"
	"github.com/jhoicas/Asignacion-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePublisher registra lo publicado; err simula un broker caído.
type fakePublisher struct {
	published []message.Event
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, _ string, event message.Event) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, event)
	return nil
}

// fakeNotifier registra los avisos enviados.
type fakeNotifier struct {
	sent []string
}

func (f *fakeNotifier) Send(_ context.Context, _, subject, _ string) error {
	f.sent = append(f.sent, subject)
	return nil
}

type fixture struct {
	bus       *messagebus.Bus
	store     *memory.Store
	factory   *memory.Factory
	publisher *fakePublisher
	notifier  *fakeNotifier
	view      *memory.AllocationView
}

func newFixture() *fixture {
	f := &fixture{
		store:     memory.NewStore(),
		publisher: &fakePublisher{},
		notifier:  &fakeNotifier{},
		view:      memory.NewAllocationView(),
	}
	f.factory = memory.NewFactory(f.store)
	svc := allocation.NewService(f.factory, f.publisher, f.notifier, f.view, "stock@example.com")
	f.bus = allocation.NewBus(logger.Nop(), svc)
	return f
}

func (f *fixture) handle(t *testing.T, m message.Message) *messagebus.Result {
	t.Helper()
	res, err := f.bus.Handle(context.Background(), m)
	require.NoError(t, err)
	return res
}

func TestCrearLoteYAsignar_EscenarioCompleto(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.handle(t, message.CreateBatch{Ref: "b1", SKU: "TABLE", Qty: 20})
	res := f.handle(t, message.Allocate{OrderID: "o1", SKU: "TABLE", Qty: 5})

	// El resultado de negocio se lee de los eventos registrados en la llamada.
	require.Equal(t, []message.Event{
		message.Allocated{OrderID: "o1", SKU: "TABLE", Qty: 5, BatchRef: "b1"},
	}, res.Events)

	p := f.store.Product("TABLE")
	require.NotNil(t, p)
	assert.Equal(t, 15, p.BatchByRef("b1").AvailableQuantity())

	// Efectos de los handlers del evento: publicación externa y modelo de lectura.
	assert.Equal(t, []message.Event{
		message.Allocated{OrderID: "o1", SKU: "TABLE", Qty: 5, BatchRef: "b1"},
	}, f.publisher.published)
	entries, err := f.view.ByOrderID(ctx, "o1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b1", entries[0].BatchRef)
}

func TestAsignar_SkuDesconocidoFalla(t *testing.T) {
	f := newFixture()

	_, err := f.bus.Handle(context.Background(), message.Allocate{OrderID: "o1", SKU: "NO-EXISTE", Qty: 5})

	assert.ErrorIs(t, err, domain.ErrUnknownSKU)
}

func TestAsignar_SinStockEsResultadoDeNegocio(t *testing.T) {
	f := newFixture()

	f.handle(t, message.CreateBatch{Ref: "b1", SKU: "FORK", Qty: 3})
	res := f.handle(t, message.Allocate{OrderID: "o1", SKU: "FORK", Qty: 10})

	// El comando se considera atendido: sin error, con OutOfStock registrado.
	require.Equal(t, []message.Event{message.OutOfStock{SKU: "FORK"}}, res.Events)
	assert.Equal(t, []string{"Sin stock: FORK"}, f.notifier.sent)
	assert.Equal(t, 3, f.store.Product("FORK").BatchByRef("b1").AvailableQuantity(),
		"un resultado sin stock no muta el agregado")
}

func TestAsignar_DosVecesLaMismaLineaNoDescuentaDoble(t *testing.T) {
	f := newFixture()

	f.handle(t, message.CreateBatch{Ref: "b1", SKU: "VASE", Qty: 10})
	f.handle(t, message.Allocate{OrderID: "o1", SKU: "VASE", Qty: 2})
	f.handle(t, message.Allocate{OrderID: "o1", SKU: "VASE", Qty: 2})

	assert.Equal(t, 8, f.store.Product("VASE").BatchByRef("b1").AvailableQuantity())
}

func TestCambiarCantidad_ReasignaLasLineasLiberadas(t *testing.T) {
	f := newFixture()

	f.handle(t, message.CreateBatch{Ref: "b1", SKU: "SOFA", Qty: 50})
	f.handle(t, message.CreateBatch{Ref: "b2", SKU: "SOFA", Qty: 50})
	f.handle(t, message.Allocate{OrderID: "o1", SKU: "SOFA", Qty: 25})

	// b1 se encoge por debajo de lo asignado: o1 se libera y se reintenta en b2.
	res := f.handle(t, message.ChangeBatchQuantity{Ref: "b1", Qty: 10})

	require.Equal(t, []message.Event{
		message.Deallocated{OrderID: "o1", SKU: "SOFA", Qty: 25},
		message.Allocated{OrderID: "o1", SKU: "SOFA", Qty: 25, BatchRef: "b2"},
	}, res.Events)

	p := f.store.Product("SOFA")
	assert.Equal(t, 10, p.BatchByRef("b1").AvailableQuantity())
	assert.Equal(t, 25, p.BatchByRef("b2").AvailableQuantity())

	entries, err := f.view.ByOrderID(context.Background(), "o1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b2", entries[0].BatchRef, "el modelo de lectura refleja la reasignación")
}

func TestComando_FalloDeCommitPropagaYNoDejaCommitParcial(t *testing.T) {
	f := newFixture()
	f.handle(t, message.CreateBatch{Ref: "b1", SKU: "CHAIR", Qty: 20})

	caida := errors.New("db caída")
	f.factory.CommitHook = func() error { return caida }

	_, err := f.bus.Handle(context.Background(), message.Allocate{OrderID: "o1", SKU: "CHAIR", Qty: 5})

	assert.ErrorIs(t, err, caida)
	assert.Equal(t, 20, f.store.Product("CHAIR").BatchByRef("b1").AvailableQuantity(),
		"el rollback descarta la mutación completa")
	assert.Empty(t, f.publisher.published, "sin commit no se despachan eventos")
}

func TestEvento_PublisherCaidoNoAfectaAlRestoDeHandlers(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("redis caído")

	f.handle(t, message.CreateBatch{Ref: "b1", SKU: "LAMP", Qty: 10})
	res := f.handle(t, message.Allocate{OrderID: "o1", SKU: "LAMP", Qty: 1})

	require.Len(t, res.Events, 1)
	entries, err := f.view.ByOrderID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "el handler del modelo de lectura corre aunque el publisher falle")
}

func TestComando_EntradaInvalidaFalla(t *testing.T) {
	f := newFixture()

	_, err := f.bus.Handle(context.Background(), message.Allocate{OrderID: "o1", SKU: "LAMP", Qty: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.bus.Handle(context.Background(), message.CreateBatch{Ref: "", SKU: "LAMP", Qty: 5})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
