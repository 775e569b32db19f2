package interfaces

import (
	"context"

	"solarquote/internal/domain/entities"
)

// IOrganizationRepository abstracts DynamoDB persistence for organizations.
//
// The numbering counter on the organization item is read here only for
// existence checks and display; it is incremented exclusively inside the
// quote-creation transaction and must never be cached across calls.

type IOrganizationRepository interface {
	GetByID(ctx context.Context, id string) (entities.Organization, error)
}
