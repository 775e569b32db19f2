package response

import (
	"testing"

	"solarquote/internal/domain/entities"
)

func TestMoneyFormatsToCents(t *testing.T) {
	cases := map[float64]string{
		1992.6:  "1992.60",
		597.777: "597.78",
		0:       "0.00",
		-61.5:   "-61.50",
	}
	for in, want := range cases {
		if got := money(in); got != want {
			t.Fatalf("money(%v) = %s, want %s", in, got, want)
		}
	}
}

func TestFromQuote(t *testing.T) {
	q := entities.Quote{
		ID:     "q-1",
		OrgID:  "org-1",
		Number: "SLR-00041",
		Status: entities.QuoteStatusDraft,
		Sizing: &entities.SizingResult{PanelCount: 9, ArrayKwp: 4.95},
		Sections: []entities.Section{
			{
				Name:     entities.SectionEquipment,
				Subtotal: 1620,
				Items: []entities.LineItem{{
					ID: "li-1", Name: "Panel 550W", Quantity: 10, UnitPrice: 180, TaxRatePct: 23,
					Discount: &entities.Discount{Type: entities.DiscountPercentage, Value: 10, Amount: 180},
					Subtotal: 1620, TaxAmount: 372.6, Total: 1992.6,
				}},
			},
		},
		QuoteTotals: entities.QuoteTotals{Subtotal: 1800, TotalDiscount: 180, TaxAmount: 372.6, Total: 1992.6},
		Warnings:    []string{"no battery products available; add a battery manually"},
	}

	r := FromQuote(q)

	if r.Number != "SLR-00041" || r.Status != "draft" {
		t.Fatalf("unexpected header: %+v", r)
	}
	if r.Totals.Total != 1992.6 || r.Totals.DisplayTotal != "1992.60" {
		t.Fatalf("unexpected totals: %+v", r.Totals)
	}
	if r.Sizing == nil || r.Sizing.PanelCount != 9 {
		t.Fatalf("unexpected sizing: %+v", r.Sizing)
	}
	li := r.Sections[0].Items[0]
	if li.Discount == nil || li.Discount.Amount != 180 {
		t.Fatalf("unexpected discount: %+v", li.Discount)
	}
	if len(r.Warnings) != 1 {
		t.Fatalf("expected warnings passthrough, got %+v", r.Warnings)
	}
}

func TestFromQuote_NoSizingSnapshot(t *testing.T) {
	r := FromQuote(entities.Quote{ID: "q-manual", Status: entities.QuoteStatusDraft})
	if r.Sizing != nil {
		t.Fatalf("manual quotes carry no sizing, got %+v", r.Sizing)
	}
}
