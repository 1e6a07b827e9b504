package repositories

import (
	"context"
	"fmt"
	"sync"

	"ocelo_loyalty_backend/internal/models"
	"ocelo_loyalty_backend/pkg/utils"
)

// ProductRepository holds the catalog in memory and mirrors it to storage.
type ProductRepository interface {
	List() []models.Product
	GetByID(id string) (*models.Product, error)
	Create(ctx context.Context, product models.Product) error
	Update(ctx context.Context, product models.Product) error
	Delete(ctx context.Context, id string) error
	Reload(ctx context.Context) error
}

type productRepository struct {
	mu       sync.RWMutex
	kv       KVRepository
	defaults []models.Product
	products []models.Product
}

// NewProductRepository loads the catalog, falling back to defaults.
func NewProductRepository(ctx context.Context, kv KVRepository, defaults []models.Product) (ProductRepository, error) {
	r := &productRepository{kv: kv, defaults: cloneProducts(defaults)}
	if err := r.Reload(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func cloneProducts(in []models.Product) []models.Product {
	return append(make([]models.Product, 0, len(in)), in...)
}

// Reload re-reads the catalog from storage, adopting and persisting the defaults when needed.
func (r *productRepository) Reload(ctx context.Context) error {
	loaded, ok := loadBlob[[]models.Product](ctx, r.kv, KeyProducts)

	r.mu.Lock()
	defer r.mu.Unlock()
	if ok {
		r.products = cloneProducts(loaded)
		return nil
	}
	r.products = cloneProducts(r.defaults)
	if err := saveBlob(ctx, r.kv, KeyProducts, r.products); err != nil {
		utils.LogError(err, "Failed to persist default products")
	}
	return nil
}

// List returns the catalog in storage order.
func (r *productRepository) List() []models.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneProducts(r.products)
}

// GetByID retrieves a product by id.
func (r *productRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.products {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *productRepository) mutate(ctx context.Context, fn func(products []models.Product) ([]models.Product, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := fn(cloneProducts(r.products))
	if err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(next))
	for _, p := range next {
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: product id %q (constraint: products_id_key)", ErrDuplicateKey, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	if err := saveBlob(ctx, r.kv, KeyProducts, next); err != nil {
		return err
	}
	r.products = next
	return nil
}

// Create appends a product to the catalog.
func (r *productRepository) Create(ctx context.Context, product models.Product) error {
	return r.mutate(ctx, func(products []models.Product) ([]models.Product, error) {
		return append(products, product), nil
	})
}

// Update replaces the product with the same id.
func (r *productRepository) Update(ctx context.Context, product models.Product) error {
	return r.mutate(ctx, func(products []models.Product) ([]models.Product, error) {
		for i := range products {
			if products[i].ID == product.ID {
				products[i] = product
				return products, nil
			}
		}
		return nil, ErrNotFound
	})
}

// Delete removes a product from the catalog.
func (r *productRepository) Delete(ctx context.Context, id string) error {
	return r.mutate(ctx, func(products []models.Product) ([]models.Product, error) {
		for i := range products {
			if products[i].ID == id {
				return append(products[:i], products[i+1:]...), nil
			}
		}
		return nil, ErrNotFound
	})
}
