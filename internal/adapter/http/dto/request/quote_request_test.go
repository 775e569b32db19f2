package request

import (
	"testing"

	"solarquote/internal/domain/entities"
)

func TestCategoryTogglesRequest_Resolve(t *testing.T) {
	var nilToggles *CategoryTogglesRequest
	all := nilToggles.Resolve()
	if !all.Panels || !all.Inverter || !all.Battery || !all.Mounting || !all.DcCable || !all.AcCable || !all.Labor {
		t.Fatalf("nil toggles should enable everything, got %+v", all)
	}

	partial := (&CategoryTogglesRequest{Panels: true, Labor: true}).Resolve()
	if !partial.Panels || !partial.Labor {
		t.Fatalf("expected panels and labor enabled, got %+v", partial)
	}
	if partial.Inverter || partial.Battery || partial.Mounting || partial.DcCable || partial.AcCable {
		t.Fatalf("expected the rest disabled, got %+v", partial)
	}
}

func TestSizingRequest_ToEntity(t *testing.T) {
	r := SizingRequest{
		AnnualConsumptionKwh: 6000,
		ContractedPowerKva:   6.9,
		CableRunM:            15,
		RoofType:             "tile",
		ShadingFactor:        0.85,
		IncludeBattery:       true,
	}
	in := r.ToEntity()
	if in.AnnualConsumptionKwh != 6000 || in.ContractedPowerKva != 6.9 {
		t.Fatalf("unexpected input: %+v", in)
	}
	if in.RoofType != entities.RoofTile || !in.IncludeBattery {
		t.Fatalf("unexpected input: %+v", in)
	}
}

func TestToSections(t *testing.T) {
	sections := ToSections([]SectionRequest{
		{
			Name: "equipment",
			Items: []LineItemRequest{
				{
					Name: " Panel 550W ", Quantity: 10, UnitPrice: 180, TaxRatePct: 23,
					Discount: &DiscountRequest{Type: "percentage", Value: 10},
				},
			},
		},
		{
			Name:  "installation",
			Items: []LineItemRequest{{Name: "Install", Quantity: 1, UnitPrice: 900}},
		},
	})

	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if sections[0].Name != entities.SectionEquipment {
		t.Fatalf("unexpected section name %s", sections[0].Name)
	}
	li := sections[0].Items[0]
	if li.Name != "Panel 550W" {
		t.Fatalf("expected trimmed name, got %q", li.Name)
	}
	if li.Discount == nil || li.Discount.Type != entities.DiscountPercentage || li.Discount.Value != 10 {
		t.Fatalf("unexpected discount: %+v", li.Discount)
	}
	if li.Discount.Amount != 0 || li.Subtotal != 0 {
		t.Fatalf("derived fields must stay zero until pricing runs: %+v", li)
	}
}
