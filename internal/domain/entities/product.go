package entities

// ProductCategory discriminates the catalog item variants.
//
// Exactly one spec payload on Product may be non-nil, and it must be the one
// matching the category. The matcher relies on the category tag, never on the
// presence of a particular spec field.

type ProductCategory string

const (
	CategoryPanel     ProductCategory = "panel"
	CategoryInverter  ProductCategory = "inverter"
	CategoryBattery   ProductCategory = "battery"
	CategoryMounting  ProductCategory = "mounting"
	CategoryLabor     ProductCategory = "labor"
	CategoryAccessory ProductCategory = "accessory"
	CategoryOther     ProductCategory = "other"
)

// LaborUnit is the unit a labor product is priced in. The matcher derives the
// line quantity from it (per panel, per kW, per day, per hour or fixed).

type LaborUnit string

const (
	LaborPerPanel LaborUnit = "per_panel"
	LaborPerKw    LaborUnit = "per_kw"
	LaborPerDay   LaborUnit = "per_day"
	LaborPerHour  LaborUnit = "per_hour"
	LaborFixed    LaborUnit = "fixed"
)

type PanelSpec struct {
	WattageW      float64 `json:"wattage_w"`
	EfficiencyPct float64 `json:"efficiency_pct,omitempty"`
}

type InverterSpec struct {
	PowerKw      float64 `json:"power_kw"`
	MpptChannels int     `json:"mppt_channels,omitempty"`
	Phase        string  `json:"phase,omitempty"`
}

type BatterySpec struct {
	Chemistry   string  `json:"chemistry,omitempty"`
	CapacityKwh float64 `json:"capacity_kwh"`
	CycleLife   int     `json:"cycle_life,omitempty"`
}

type MountingSpec struct {
	RoofType RoofType `json:"roof_type"`
	Material string   `json:"material,omitempty"`
}

type LaborSpec struct {
	Unit LaborUnit `json:"unit"`
}

// Product is a catalog item. Owned by the catalog; read-only to the quote core.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (org_id-index): org_id

type Product struct {
	ID          string          `json:"id"`
	OrgID       string          `json:"org_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    ProductCategory `json:"category"`
	UnitPrice   float64         `json:"unit_price"`
	Unit        string          `json:"unit"`
	TaxRatePct  float64         `json:"tax_rate_pct"`
	Active      bool            `json:"active"`

	Panel    *PanelSpec    `json:"panel,omitempty"`
	Inverter *InverterSpec `json:"inverter,omitempty"`
	Battery  *BatterySpec  `json:"battery,omitempty"`
	Mounting *MountingSpec `json:"mounting,omitempty"`
	Labor    *LaborSpec    `json:"labor,omitempty"`
}

// SectionName routes a selection into one of the quote's fixed sections.

type SectionName string

const (
	SectionEquipment    SectionName = "equipment"
	SectionInstallation SectionName = "installation"
	SectionAccessories  SectionName = "accessories"
)

// Selection is a matched catalog product with the quantity the sizing calls
// for, produced by the matcher and consumed by the pricing engine.
type Selection struct {
	Product  Product     `json:"product"`
	Quantity int         `json:"quantity"`
	Section  SectionName `json:"section"`
}
