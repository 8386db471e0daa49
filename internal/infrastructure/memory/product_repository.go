package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Asignacion-api/internal/domain/entity"
	"github.com/jhoicas/Asignacion-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*sessionRepo)(nil)

// Store almacén en memoria compartido entre sesiones (mapa sku -> Product).
// Es el doble determinista del almacén durable; mismo contrato externo.
type Store struct {
	mu       sync.RWMutex
	products map[string]*entity.Product
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{products: make(map[string]*entity.Product)}
}

// Product acceso directo al estado confirmado (inspección en pruebas).
func (s *Store) Product(sku string) *entity.Product {
	return s.get(sku)
}

func (s *Store) get(sku string) *entity.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.products[sku]
}

func (s *Store) getByBatchRef(ref string) *entity.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.BatchByRef(ref) != nil {
			return p
		}
	}
	return nil
}

func (s *Store) commit(staged map[string]*entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sku, p := range staged {
		s.products[sku] = p
	}
}

// sessionRepo repositorio atado a una sesión de Unit of Work. Trabaja sobre
// clones de los agregados: el commit vuelca los clones al Store y el rollback
// simplemente los descarta.
type sessionRepo struct {
	store  *Store
	staged map[string]*entity.Product
	seen   []*entity.Product
}

func newSessionRepo(store *Store) *sessionRepo {
	return &sessionRepo{store: store, staged: make(map[string]*entity.Product)}
}

// Add registra un agregado nuevo en la sesión.
func (r *sessionRepo) Add(_ context.Context, product *entity.Product) error {
	r.stage(product)
	return nil
}

// Get devuelve el agregado del sku, o nil si no existe.
func (r *sessionRepo) Get(_ context.Context, sku string) (*entity.Product, error) {
	if p, ok := r.staged[sku]; ok {
		return p, nil
	}
	p := r.store.get(sku)
	if p == nil {
		return nil, nil
	}
	clone := p.Clone()
	r.stage(clone)
	return clone, nil
}

// GetByBatchRef devuelve el agregado dueño del lote referenciado, o nil.
func (r *sessionRepo) GetByBatchRef(_ context.Context, ref string) (*entity.Product, error) {
	for _, p := range r.staged {
		if p.BatchByRef(ref) != nil {
			return p, nil
		}
	}
	p := r.store.getByBatchRef(ref)
	if p == nil {
		return nil, nil
	}
	clone := p.Clone()
	r.stage(clone)
	return clone, nil
}

func (r *sessionRepo) stage(p *entity.Product) {
	r.staged[p.SKU] = p
	r.seen = append(r.seen, p)
}
