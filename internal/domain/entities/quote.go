package entities

import "time"

// QuoteStatus represents the quote lifecycle.
//
// draft -> pending_approval -> approved -> sent -> viewed -> accepted|rejected
// draft may also be approved directly. Expiry is time-driven (validUntil) and
// reachable from any non-terminal status; detecting it is the caller's job.

type QuoteStatus string

const (
	QuoteStatusDraft           QuoteStatus = "draft"
	QuoteStatusPendingApproval QuoteStatus = "pending_approval"
	QuoteStatusApproved        QuoteStatus = "approved"
	QuoteStatusSent            QuoteStatus = "sent"
	QuoteStatusViewed          QuoteStatus = "viewed"
	QuoteStatusAccepted        QuoteStatus = "accepted"
	QuoteStatusRejected        QuoteStatus = "rejected"
	QuoteStatusExpired         QuoteStatus = "expired"
)

var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteStatusDraft:           {QuoteStatusPendingApproval, QuoteStatusApproved},
	QuoteStatusPendingApproval: {QuoteStatusApproved},
	QuoteStatusApproved:        {QuoteStatusSent},
	QuoteStatusSent:            {QuoteStatusViewed},
	QuoteStatusViewed:          {QuoteStatusAccepted, QuoteStatusRejected},
}

// Terminal reports whether no further transition is possible.
func (s QuoteStatus) Terminal() bool {
	switch s {
	case QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusExpired:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving to next is a legal lifecycle step.
// Any non-terminal status may expire.
func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	if next == QuoteStatusExpired {
		return !s.Terminal()
	}
	for _, t := range quoteTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// DiscountType selects how a line discount is computed.

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Discount on a single line. Value is the operator-entered percentage or
// fixed amount; Amount is derived and must never be fed back in as Value.
type Discount struct {
	Type   DiscountType `json:"type"`
	Value  float64      `json:"value"`
	Amount float64      `json:"amount"`
}

// LineItem is a priced quote line. Subtotal, TaxAmount, Total and
// Discount.Amount are derived; every mutation must re-derive them from
// Quantity, UnitPrice, TaxRatePct and the original discount parameters.
type LineItem struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Quantity    float64   `json:"quantity"`
	Unit        string    `json:"unit,omitempty"`
	UnitPrice   float64   `json:"unit_price"`
	TaxRatePct  float64   `json:"tax_rate_pct"`
	Discount    *Discount `json:"discount,omitempty"`

	Subtotal  float64 `json:"subtotal"`
	TaxAmount float64 `json:"tax_amount"`
	Total     float64 `json:"total"`
}

// Section is a named ordered group of line items. Subtotal is the sum of
// member line subtotals (post-discount, pre-tax).
type Section struct {
	Name     SectionName `json:"name"`
	Items    []LineItem  `json:"items"`
	Subtotal float64     `json:"subtotal"`
}

// QuoteTotals are the quote-level derived figures, re-summed flat from every
// line item: Subtotal is the sum of bases, TotalDiscount the sum of discount
// amounts, TaxAmount the sum of line taxes, and
// Total = Subtotal - TotalDiscount + TaxAmount.
type QuoteTotals struct {
	Subtotal      float64 `json:"subtotal"`
	TotalDiscount float64 `json:"total_discount"`
	TaxAmount     float64 `json:"tax_amount"`
	Total         float64 `json:"total"`
}

// Quote is the priced quote document persisted in DynamoDB.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (org_id-index): org_id
//
// Number is assigned exactly once, inside the creation transaction, and is
// immutable afterwards.
type Quote struct {
	ID           string      `json:"id"`
	OrgID        string      `json:"org_id"`
	CustomerName string      `json:"customer_name,omitempty"`
	Number       string      `json:"number"`
	Status       QuoteStatus `json:"status"`
	Sections     []Section   `json:"sections"`
	QuoteTotals

	Sizing   *SizingResult `json:"sizing,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`

	ValidUntil time.Time `json:"valid_until"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
