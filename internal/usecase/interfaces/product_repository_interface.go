package interfaces

import (
	"context"

	"solarquote/internal/domain/entities"
)

// IProductRepository abstracts DynamoDB persistence for catalog products.
//
// The quote core is a read-only consumer of the catalog: it fetches a snapshot
// of active products once per matching call and never writes back.

type IProductRepository interface {
	ListActiveByOrgID(ctx context.Context, orgID string) ([]entities.Product, error)
	GetByID(ctx context.Context, id string) (entities.Product, error)
}
