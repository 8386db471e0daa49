package memory

import (
	"context"
	"errors"

	"github.com/jhoicas/Asignacion-api/internal/application/allocation"
	"github.com/jhoicas/Asignacion-api/internal/domain/entity"
	"github.com/jhoicas/Asignacion-api/internal/domain/message"
	"github.com/jhoicas/Asignacion-api/internal/domain/repository"
)

var _ allocation.UnitOfWork = (*UnitOfWork)(nil)
var _ allocation.UnitOfWorkFactory = (*Factory)(nil)

// ErrNestedSession Run dentro de Run sobre la misma sesión.
var ErrNestedSession = errors.New("memory: unit of work anidado")

// Factory crea sesiones de Unit of Work sobre un Store compartido.
// CommitHook, si se define, corre en lugar del commit real: permite simular
// fallos de infraestructura en pruebas.
type Factory struct {
	Store      *Store
	CommitHook func() error
}

// NewFactory construye la fábrica sobre el almacén dado.
func NewFactory(store *Store) *Factory {
	return &Factory{Store: store}
}

// New crea una sesión nueva.
func (f *Factory) New() allocation.UnitOfWork {
	return &UnitOfWork{store: f.Store, commitHook: f.CommitHook}
}

// UnitOfWork sesión transaccional en memoria. Las mutaciones ocurren sobre
// clones; solo el commit las vuelve visibles en el Store.
type UnitOfWork struct {
	store      *Store
	commitHook func() error
	inSession  bool
	seen       []*entity.Product
}

// Run abre la sesión, ejecuta fn y hace commit si fn devuelve nil.
// Si fn o el commit fallan, los clones se descartan (rollback).
func (u *UnitOfWork) Run(ctx context.Context, fn func(products repository.ProductRepository) error) error {
	if u.inSession {
		return ErrNestedSession
	}
	u.inSession = true
	defer func() { u.inSession = false }()

	repo := newSessionRepo(u.store)
	if err := fn(repo); err != nil {
		return err
	}
	if u.commitHook != nil {
		if err := u.commitHook(); err != nil {
			return err
		}
	}
	u.store.commit(repo.staged)
	u.seen = append(u.seen, repo.seen...)
	return nil
}

// CollectNewMessages drena los mensajes de todos los agregados vistos en
// sesiones ya confirmadas.
func (u *UnitOfWork) CollectNewMessages() []message.Message {
	var out []message.Message
	for _, p := range u.seen {
		out = append(out, p.PullMessages()...)
	}
	u.seen = nil
	return out
}
