package response

import (
	"solarquote/internal/domain/entities"
)

// ProductResponse mirrors the catalog entity; spec sub-objects are passed
// through untouched so the quote wizard can show category-specific details.
type ProductResponse struct {
	ID          string  `json:"id"`
	OrgID       string  `json:"org_id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category"`
	UnitPrice   float64 `json:"unit_price"`
	Unit        string  `json:"unit"`
	TaxRatePct  float64 `json:"tax_rate_pct"`
	Active      bool    `json:"active"`

	DisplayUnitPrice string `json:"display_unit_price"`

	Panel    *entities.PanelSpec    `json:"panel,omitempty"`
	Inverter *entities.InverterSpec `json:"inverter,omitempty"`
	Battery  *entities.BatterySpec  `json:"battery,omitempty"`
	Mounting *entities.MountingSpec `json:"mounting,omitempty"`
	Labor    *entities.LaborSpec    `json:"labor,omitempty"`
}

func FromProduct(p entities.Product) ProductResponse {
	return ProductResponse{
		ID:               p.ID,
		OrgID:            p.OrgID,
		Name:             p.Name,
		Description:      p.Description,
		Category:         string(p.Category),
		UnitPrice:        p.UnitPrice,
		Unit:             p.Unit,
		TaxRatePct:       p.TaxRatePct,
		Active:           p.Active,
		DisplayUnitPrice: money(p.UnitPrice),
		Panel:            p.Panel,
		Inverter:         p.Inverter,
		Battery:          p.Battery,
		Mounting:         p.Mounting,
		Labor:            p.Labor,
	}
}

func FromProducts(products []entities.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, FromProduct(p))
	}
	return out
}
