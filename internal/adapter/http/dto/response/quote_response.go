package response

import (
	"time"

	"solarquote/internal/domain/entities"
	"solarquote/internal/usecase"

	"github.com/shopspring/decimal"
)

// money formats a full-precision amount for display with two decimal places.
// Only the display string is rounded; stored amounts keep full precision.
func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

type DiscountResponse struct {
	Type   string  `json:"type"`
	Value  float64 `json:"value"`
	Amount float64 `json:"amount"`
}

type LineItemResponse struct {
	ID          string            `json:"id"`
	ProductID   string            `json:"product_id,omitempty"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Quantity    float64           `json:"quantity"`
	Unit        string            `json:"unit,omitempty"`
	UnitPrice   float64           `json:"unit_price"`
	TaxRatePct  float64           `json:"tax_rate_pct"`
	Discount    *DiscountResponse `json:"discount,omitempty"`
	Subtotal    float64           `json:"subtotal"`
	TaxAmount   float64           `json:"tax_amount"`
	Total       float64           `json:"total"`

	DisplayTotal string `json:"display_total"`
}

type SectionResponse struct {
	Name     string             `json:"name"`
	Items    []LineItemResponse `json:"items"`
	Subtotal float64            `json:"subtotal"`
}

type TotalsResponse struct {
	Subtotal      float64 `json:"subtotal"`
	TotalDiscount float64 `json:"total_discount"`
	TaxAmount     float64 `json:"tax_amount"`
	Total         float64 `json:"total"`

	DisplaySubtotal string `json:"display_subtotal"`
	DisplayTotal    string `json:"display_total"`
}

type SizingResponse struct {
	ArrayKwp            float64 `json:"array_kwp"`
	MaxInverterKw       float64 `json:"max_inverter_kw"`
	PanelCount          int     `json:"panel_count"`
	PanelWattageW       float64 `json:"panel_wattage_w"`
	DcCableGaugeMm2     float64 `json:"dc_cable_gauge_mm2"`
	AcCableGaugeMm2     float64 `json:"ac_cable_gauge_mm2"`
	DcCableRunM         int     `json:"dc_cable_run_m"`
	AcCableRunM         int     `json:"ac_cable_run_m"`
	BatteryKwh          float64 `json:"battery_kwh,omitempty"`
	AnnualProductionKwh float64 `json:"annual_production_kwh"`
}

type QuoteResponse struct {
	ID           string            `json:"id"`
	OrgID        string            `json:"org_id"`
	Number       string            `json:"number"`
	CustomerName string            `json:"customer_name,omitempty"`
	Status       string            `json:"status"`
	Sections     []SectionResponse `json:"sections"`
	Totals       TotalsResponse    `json:"totals"`
	Sizing       *SizingResponse   `json:"sizing,omitempty"`
	Warnings     []string          `json:"warnings,omitempty"`
	ValidUntil   time.Time         `json:"valid_until"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type QuotePreviewResponse struct {
	Sizing   SizingResponse    `json:"sizing"`
	Sections []SectionResponse `json:"sections"`
	Totals   TotalsResponse    `json:"totals"`
	Warnings []string          `json:"warnings,omitempty"`
}

func fromLineItem(li entities.LineItem) LineItemResponse {
	r := LineItemResponse{
		ID:           li.ID,
		ProductID:    li.ProductID,
		Name:         li.Name,
		Description:  li.Description,
		Quantity:     li.Quantity,
		Unit:         li.Unit,
		UnitPrice:    li.UnitPrice,
		TaxRatePct:   li.TaxRatePct,
		Subtotal:     li.Subtotal,
		TaxAmount:    li.TaxAmount,
		Total:        li.Total,
		DisplayTotal: money(li.Total),
	}
	if li.Discount != nil {
		r.Discount = &DiscountResponse{
			Type:   string(li.Discount.Type),
			Value:  li.Discount.Value,
			Amount: li.Discount.Amount,
		}
	}
	return r
}

func fromSections(sections []entities.Section) []SectionResponse {
	out := make([]SectionResponse, 0, len(sections))
	for _, s := range sections {
		sec := SectionResponse{Name: string(s.Name), Subtotal: s.Subtotal}
		for _, li := range s.Items {
			sec.Items = append(sec.Items, fromLineItem(li))
		}
		out = append(out, sec)
	}
	return out
}

func fromTotals(t entities.QuoteTotals) TotalsResponse {
	return TotalsResponse{
		Subtotal:        t.Subtotal,
		TotalDiscount:   t.TotalDiscount,
		TaxAmount:       t.TaxAmount,
		Total:           t.Total,
		DisplaySubtotal: money(t.Subtotal),
		DisplayTotal:    money(t.Total),
	}
}

func fromSizing(s entities.SizingResult) SizingResponse {
	return SizingResponse{
		ArrayKwp:            s.ArrayKwp,
		MaxInverterKw:       s.MaxInverterKw,
		PanelCount:          s.PanelCount,
		PanelWattageW:       s.PanelWattageW,
		DcCableGaugeMm2:     s.DcCableGaugeMm2,
		AcCableGaugeMm2:     s.AcCableGaugeMm2,
		DcCableRunM:         s.DcCableRunM,
		AcCableRunM:         s.AcCableRunM,
		BatteryKwh:          s.BatteryKwh,
		AnnualProductionKwh: s.AnnualProductionKwh,
	}
}

func FromQuote(q entities.Quote) QuoteResponse {
	r := QuoteResponse{
		ID:           q.ID,
		OrgID:        q.OrgID,
		Number:       q.Number,
		CustomerName: q.CustomerName,
		Status:       string(q.Status),
		Sections:     fromSections(q.Sections),
		Totals:       fromTotals(q.QuoteTotals),
		Warnings:     q.Warnings,
		ValidUntil:   q.ValidUntil,
		CreatedAt:    q.CreatedAt,
		UpdatedAt:    q.UpdatedAt,
	}
	if q.Sizing != nil {
		sizing := fromSizing(*q.Sizing)
		r.Sizing = &sizing
	}
	return r
}

func FromQuotes(quotes []entities.Quote) []QuoteResponse {
	out := make([]QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, FromQuote(q))
	}
	return out
}

func FromQuotePreview(p usecase.QuotePreview) QuotePreviewResponse {
	return QuotePreviewResponse{
		Sizing:   fromSizing(p.Sizing),
		Sections: fromSections(p.Sections),
		Totals:   fromTotals(p.Totals),
		Warnings: p.Warnings,
	}
}
