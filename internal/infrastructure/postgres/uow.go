package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Asignacion-api/internal/application/allocation"
	"github.com/jhoicas/Asignacion-api/internal/domain/entity"
	"github.com/jhoicas/Asignacion-api/internal/domain/message"
	"github.com/jhoicas/Asignacion-api/internal/domain/repository"
)

var _ allocation.UnitOfWork = (*UnitOfWork)(nil)
var _ allocation.UnitOfWorkFactory = (*Factory)(nil)

// ErrNestedSession Run dentro de Run sobre la misma sesión.
var ErrNestedSession = errors.New("postgres: unit of work anidado")

// Factory crea sesiones de Unit of Work sobre el pool.
type Factory struct {
	pool *pgxpool.Pool
}

// NewFactory construye la fábrica.
func NewFactory(pool *pgxpool.Pool) *Factory {
	return &Factory{pool: pool}
}

// New crea una sesión nueva (una transacción por Run).
func (f *Factory) New() allocation.UnitOfWork {
	return &UnitOfWork{pool: f.pool}
}

// UnitOfWork sesión transaccional sobre PostgreSQL. Run abre una tx, ata el
// repositorio a ella y hace Commit o Rollback; el Rollback diferido no tiene
// efecto si el Commit ya se ejecutó.
type UnitOfWork struct {
	pool      *pgxpool.Pool
	inSession bool
	seen      []*entity.Product
}

// Run ejecuta fn dentro de una transacción. Antes del commit persiste todos
// los agregados vistos en la sesión (check optimista de versión incluido).
func (u *UnitOfWork) Run(ctx context.Context, fn func(products repository.ProductRepository) error) error {
	if u.inSession {
		return ErrNestedSession
	}
	u.inSession = true
	defer func() { u.inSession = false }()

	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repo := NewProductRepository(tx)
	if err := fn(repo); err != nil {
		return err
	}
	if err := repo.persistSeen(ctx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	u.seen = append(u.seen, repo.seenProducts()...)
	return nil
}

// CollectNewMessages drena los mensajes de los agregados de sesiones confirmadas.
func (u *UnitOfWork) CollectNewMessages() []message.Message {
	var out []message.Message
	for _, p := range u.seen {
		out = append(out, p.PullMessages()...)
	}
	u.seen = nil
	return out
}
