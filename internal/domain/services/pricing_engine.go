package services

import "solarquote/internal/domain/entities"

// Pricing works at full float precision end to end; nothing here rounds.
// Rounding to 2 decimals happens only at the presentation boundary, so
// per-line rounding error cannot accumulate across a large quote.

// CalculateLineItem derives a line's discount amount, subtotal, tax and total
// from the original quantity, unit price, tax rate and discount parameters.
//
// The derivation is idempotent as long as callers keep Discount.Value as the
// operator-entered percentage or fixed amount and never feed the derived
// Discount.Amount back in as the value. A discount larger than the base yields
// a negative subtotal; that is passed through, not clamped.
func CalculateLineItem(li entities.LineItem) entities.LineItem {
	base := li.Quantity * li.UnitPrice

	var discountAmount float64
	if li.Discount != nil {
		switch li.Discount.Type {
		case entities.DiscountPercentage:
			discountAmount = base * li.Discount.Value / 100
		case entities.DiscountFixed:
			discountAmount = li.Discount.Value
		}
		d := *li.Discount
		d.Amount = discountAmount
		li.Discount = &d
	}

	li.Subtotal = base - discountAmount
	li.TaxAmount = li.Subtotal * li.TaxRatePct / 100
	li.Total = li.Subtotal + li.TaxAmount
	return li
}

// CalculateSectionSubtotal sums member line subtotals, tax excluded. The
// items must already carry derived figures.
func CalculateSectionSubtotal(items []entities.LineItem) float64 {
	var subtotal float64
	for _, li := range items {
		subtotal += li.Subtotal
	}
	return subtotal
}

// PriceSections re-derives every line item and every section subtotal.
func PriceSections(sections []entities.Section) []entities.Section {
	out := make([]entities.Section, len(sections))
	for i, s := range sections {
		priced := entities.Section{Name: s.Name, Items: make([]entities.LineItem, len(s.Items))}
		for j, li := range s.Items {
			priced.Items[j] = CalculateLineItem(li)
		}
		priced.Subtotal = CalculateSectionSubtotal(priced.Items)
		out[i] = priced
	}
	return out
}

// CalculateQuoteTotals re-sums every line item flat, never rolling up section
// subtotals, so the quote totals cannot drift from the lines they describe.
func CalculateQuoteTotals(sections []entities.Section) entities.QuoteTotals {
	var t entities.QuoteTotals
	for _, s := range sections {
		for _, li := range s.Items {
			derived := CalculateLineItem(li)
			base := derived.Quantity * derived.UnitPrice
			t.Subtotal += base
			if derived.Discount != nil {
				t.TotalDiscount += derived.Discount.Amount
			}
			t.TaxAmount += derived.TaxAmount
		}
	}
	t.Total = t.Subtotal - t.TotalDiscount + t.TaxAmount
	return t
}
