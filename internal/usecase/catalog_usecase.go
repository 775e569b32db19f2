package usecase

import (
	"context"
	"errors"
	"strings"

	"solarquote/internal/domain/entities"
	"solarquote/internal/usecase/interfaces"
)

var ErrProductNotFound = errors.New("product not found")

// ICatalogUseCase exposes the read-only catalog snapshot the quote wizard
// works from. Catalog maintenance lives elsewhere; this service never writes.

type ICatalogUseCase interface {
	ListActive(ctx context.Context, orgID string) ([]entities.Product, error)
	GetByID(ctx context.Context, id string) (entities.Product, error)
}

type CatalogUseCase struct {
	products interfaces.IProductRepository
}

var _ ICatalogUseCase = (*CatalogUseCase)(nil)

func NewCatalogUseCase(products interfaces.IProductRepository) *CatalogUseCase {
	return &CatalogUseCase{products: products}
}

func (u *CatalogUseCase) ListActive(ctx context.Context, orgID string) ([]entities.Product, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, ErrInvalidOrgID
	}
	return u.products.ListActiveByOrgID(ctx, orgID)
}

func (u *CatalogUseCase) GetByID(ctx context.Context, id string) (entities.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Product{}, ErrProductNotFound
	}

	p, err := u.products.GetByID(ctx, id)
	if err != nil {
		return entities.Product{}, err
	}
	if p.ID == "" {
		return entities.Product{}, ErrProductNotFound
	}
	return p, nil
}
