package request

import (
	"strings"

	"solarquote/internal/domain/entities"
	"solarquote/internal/domain/services"
)

// SizingRequest carries the consumption profile and site data for the sizing
// wizard. Gin's binding rejects the payload before any domain code runs when
// the required figures are missing or non-positive.
type SizingRequest struct {
	AnnualConsumptionKwh float64 `json:"annual_consumption_kwh" binding:"required,gt=0"`
	ContractedPowerKva   float64 `json:"contracted_power_kva" binding:"required,gt=0"`
	CableRunM            float64 `json:"cable_run_m" binding:"omitempty,gt=0"`
	RoofType             string  `json:"roof_type" binding:"omitempty,oneof=tile metal flat ground"`
	ShadingFactor        float64 `json:"shading_factor" binding:"omitempty,gt=0,lte=1"`
	IncludeBattery       bool    `json:"include_battery"`
}

func (r SizingRequest) ToEntity() entities.SizingInput {
	return entities.SizingInput{
		AnnualConsumptionKwh: r.AnnualConsumptionKwh,
		ContractedPowerKva:   r.ContractedPowerKva,
		CableRunM:            r.CableRunM,
		RoofType:             entities.RoofType(r.RoofType),
		ShadingFactor:        r.ShadingFactor,
		IncludeBattery:       r.IncludeBattery,
	}
}

// CategoryTogglesRequest lets the caller exclude catalog categories from
// automatic matching. A nil pointer in the enclosing request means all
// categories stay enabled.
type CategoryTogglesRequest struct {
	Panels   bool `json:"panels"`
	Inverter bool `json:"inverter"`
	Battery  bool `json:"battery"`
	Mounting bool `json:"mounting"`
	DcCable  bool `json:"dc_cable"`
	AcCable  bool `json:"ac_cable"`
	Labor    bool `json:"labor"`
}

func (r *CategoryTogglesRequest) Resolve() services.CategoryToggles {
	if r == nil {
		return services.AllCategories()
	}
	return services.CategoryToggles{
		Panels:   r.Panels,
		Inverter: r.Inverter,
		Battery:  r.Battery,
		Mounting: r.Mounting,
		DcCable:  r.DcCable,
		AcCable:  r.AcCable,
		Labor:    r.Labor,
	}
}

// PreviewQuoteRequest sizes, matches and prices without persisting.
type PreviewQuoteRequest struct {
	OrgID      string                  `json:"org_id" binding:"required"`
	Sizing     SizingRequest           `json:"sizing" binding:"required"`
	Categories *CategoryTogglesRequest `json:"categories"`
}

// GenerateQuoteRequest runs the full automated path and persists the quote.
type GenerateQuoteRequest struct {
	OrgID        string                  `json:"org_id" binding:"required"`
	CustomerName string                  `json:"customer_name"`
	Sizing       SizingRequest           `json:"sizing" binding:"required"`
	Categories   *CategoryTogglesRequest `json:"categories"`
}

type DiscountRequest struct {
	Type  string  `json:"type" binding:"required,oneof=percentage fixed"`
	Value float64 `json:"value" binding:"required,gt=0"`
}

type LineItemRequest struct {
	ProductID   string           `json:"product_id"`
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	Quantity    float64          `json:"quantity" binding:"required,gt=0"`
	Unit        string           `json:"unit"`
	UnitPrice   float64          `json:"unit_price"`
	TaxRatePct  float64          `json:"tax_rate_pct" binding:"omitempty,gte=0"`
	Discount    *DiscountRequest `json:"discount"`
}

type SectionRequest struct {
	Name  string            `json:"name" binding:"required,oneof=equipment installation accessories"`
	Items []LineItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ManualQuoteRequest persists a quote built from operator-authored sections.
type ManualQuoteRequest struct {
	OrgID        string           `json:"org_id" binding:"required"`
	CustomerName string           `json:"customer_name"`
	Sections     []SectionRequest `json:"sections" binding:"required,min=1,dive"`
}

// ReplaceItemsRequest swaps a draft quote's sections wholesale.
type ReplaceItemsRequest struct {
	Sections []SectionRequest `json:"sections" binding:"required,min=1,dive"`
}

func (r LineItemRequest) ToEntity() entities.LineItem {
	li := entities.LineItem{
		ProductID:   strings.TrimSpace(r.ProductID),
		Name:        strings.TrimSpace(r.Name),
		Description: strings.TrimSpace(r.Description),
		Quantity:    r.Quantity,
		Unit:        strings.TrimSpace(r.Unit),
		UnitPrice:   r.UnitPrice,
		TaxRatePct:  r.TaxRatePct,
	}
	if r.Discount != nil {
		li.Discount = &entities.Discount{
			Type:  entities.DiscountType(r.Discount.Type),
			Value: r.Discount.Value,
		}
	}
	return li
}

func ToSections(sections []SectionRequest) []entities.Section {
	out := make([]entities.Section, 0, len(sections))
	for _, s := range sections {
		sec := entities.Section{Name: entities.SectionName(s.Name)}
		for _, li := range s.Items {
			sec.Items = append(sec.Items, li.ToEntity())
		}
		out = append(out, sec)
	}
	return out
}
