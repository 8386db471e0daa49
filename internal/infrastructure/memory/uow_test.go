package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jhoicas/Asignacion-api/internal/domain/entity"
	"github.com/jhoicas/Asignacion-api/internal/domain/message"
	"github.com/jhoicas/Asignacion-api/internal/domain/repository"
	"github.com/jhoicas/Asignacion-api/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProduct(t *testing.T, store *memory.Store) {
	t.Helper()
	uow := memory.NewFactory(store).New()
	err := uow.Run(context.Background(), func(products repository.ProductRepository) error {
		return products.Add(context.Background(), entity.NewProduct("LAMP", entity.NewBatch("b1", "LAMP", 10, nil)))
	})
	require.NoError(t, err)
	uow.CollectNewMessages()
}

func TestUnitOfWork_CommitVuelcaLasMutacionesAlStore(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store)
	uow := memory.NewFactory(store).New()

	err := uow.Run(context.Background(), func(products repository.ProductRepository) error {
		p, err := products.Get(context.Background(), "LAMP")
		require.NoError(t, err)
		_, err = p.Allocate(entity.OrderLine{OrderID: "o1", SKU: "LAMP", Qty: 4})
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, 6, store.Product("LAMP").BatchByRef("b1").AvailableQuantity())
}

func TestUnitOfWork_ErrorDeLaFuncionDescartaLasMutaciones(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store)
	uow := memory.NewFactory(store).New()
	boom := errors.New("se rompió a mitad de camino")

	err := uow.Run(context.Background(), func(products repository.ProductRepository) error {
		p, _ := products.Get(context.Background(), "LAMP")
		if _, err := p.Allocate(entity.OrderLine{OrderID: "o1", SKU: "LAMP", Qty: 4}); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 10, store.Product("LAMP").BatchByRef("b1").AvailableQuantity(),
		"el rollback descarta todo lo hecho en la sesión")
	assert.Empty(t, uow.CollectNewMessages(), "sin commit no hay mensajes que drenar")
}

func TestUnitOfWork_FalloDeCommitDescartaLasMutaciones(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store)
	factory := memory.NewFactory(store)
	factory.CommitHook = func() error { return errors.New("db caída") }
	uow := factory.New()

	err := uow.Run(context.Background(), func(products repository.ProductRepository) error {
		p, _ := products.Get(context.Background(), "LAMP")
		_, err := p.Allocate(entity.OrderLine{OrderID: "o1", SKU: "LAMP", Qty: 4})
		return err
	})

	assert.Error(t, err)
	assert.Equal(t, 10, store.Product("LAMP").BatchByRef("b1").AvailableQuantity())
}

func TestUnitOfWork_CollectNewMessagesDrenaLosAgregadosVistos(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store)
	uow := memory.NewFactory(store).New()

	err := uow.Run(context.Background(), func(products repository.ProductRepository) error {
		p, _ := products.Get(context.Background(), "LAMP")
		_, err := p.Allocate(entity.OrderLine{OrderID: "o1", SKU: "LAMP", Qty: 4})
		return err
	})
	require.NoError(t, err)

	msgs := uow.CollectNewMessages()
	require.Equal(t, []message.Message{
		message.Allocated{OrderID: "o1", SKU: "LAMP", Qty: 4, BatchRef: "b1"},
	}, msgs)
	assert.Empty(t, uow.CollectNewMessages(), "el drenado es de una sola vez")
}

func TestUnitOfWork_SesionAnidadaFalla(t *testing.T) {
	store := memory.NewStore()
	uow := memory.NewFactory(store).New()

	err := uow.Run(context.Background(), func(repository.ProductRepository) error {
		return uow.Run(context.Background(), func(repository.ProductRepository) error {
			return nil
		})
	})

	assert.ErrorIs(t, err, memory.ErrNestedSession)
}

func TestUnitOfWork_GetDeSkuInexistenteDevuelveNil(t *testing.T) {
	store := memory.NewStore()
	uow := memory.NewFactory(store).New()

	err := uow.Run(context.Background(), func(products repository.ProductRepository) error {
		p, err := products.Get(context.Background(), "NO-EXISTE")
		require.NoError(t, err)
		assert.Nil(t, p)
		return nil
	})
	require.NoError(t, err)
}

func TestUnitOfWork_GetByBatchRefEncuentraAlDueño(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store)
	uow := memory.NewFactory(store).New()

	err := uow.Run(context.Background(), func(products repository.ProductRepository) error {
		p, err := products.GetByBatchRef(context.Background(), "b1")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "LAMP", p.SKU)
		return nil
	})
	require.NoError(t, err)
}
