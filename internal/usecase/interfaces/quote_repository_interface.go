package interfaces

import (
	"context"
	"errors"

	"solarquote/internal/domain/entities"
)

var (
	// ErrOrganizationNotFound aborts quote creation when the numbering
	// counter's organization record does not exist; nothing is persisted.
	ErrOrganizationNotFound = errors.New("organization not found")

	// ErrQuoteNumberContention is returned once the creation transaction has
	// exhausted its conflict retries against the organization counter.
	ErrQuoteNumberContention = errors.New("quote number allocation exhausted retries")
)

// IQuoteRepository abstracts DynamoDB persistence for quotes.
//
// CreateWithSequence assigns the quote's sequence number and inserts the
// document inside one atomic transaction with the counter increment. Losing a
// write-write race on the counter re-runs the read-compute-write cycle; the
// caller only sees an error after retries are exhausted.

type IQuoteRepository interface {
	CreateWithSequence(ctx context.Context, q entities.Quote) (entities.Quote, error)
	GetByID(ctx context.Context, id string) (entities.Quote, error)
	Update(ctx context.Context, q entities.Quote) (entities.Quote, error)
	ListByOrgID(ctx context.Context, orgID string) ([]entities.Quote, error)
}
