package entities

import "time"

// Organization carries the per-organization quote numbering state.
//
// Storage model (DynamoDB):
//   - PK: id
//
// QuotesCount is mutated only inside the quote-creation transaction, via a
// conditional increment; the next sequence number is
// QuoteStartNumber + QuotesCount, formatted as {QuotePrefix}-{seq padded to 5}.
type Organization struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	QuotePrefix      string    `json:"quote_prefix"`
	QuoteStartNumber int       `json:"quote_start_number"`
	QuotesCount      int       `json:"quotes_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
