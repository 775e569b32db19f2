package entities

// RoofType constrains mounting hardware selection.

type RoofType string

const (
	RoofTile   RoofType = "tile"
	RoofMetal  RoofType = "metal"
	RoofFlat   RoofType = "flat"
	RoofGround RoofType = "ground"
)

// SizingInput is the customer consumption profile and site data the sizing
// calculator works from. Callers must not pass a non-positive annual
// consumption; the calculator does not validate it.
type SizingInput struct {
	AnnualConsumptionKwh float64  `json:"annual_consumption_kwh"`
	ContractedPowerKva   float64  `json:"contracted_power_kva"`
	CableRunM            float64  `json:"cable_run_m"`
	RoofType             RoofType `json:"roof_type"`
	ShadingFactor        float64  `json:"shading_factor"` // (0,1]; 0 selects the default
	IncludeBattery       bool     `json:"include_battery"`
}

// SizingResult is the recommended hardware specification derived from a
// SizingInput. It is recomputed on every input change and only ever persisted
// as a snapshot inside a quote.
//
// ArrayKwp is derived from the whole-panel rounding, so it is the actual
// installable capacity, not the pre-rounding recommendation.
type SizingResult struct {
	ArrayKwp            float64 `json:"array_kwp"`
	MaxInverterKw       float64 `json:"max_inverter_kw"`
	PanelCount          int     `json:"panel_count"`
	PanelWattageW       float64 `json:"panel_wattage_w"`
	DcCableGaugeMm2     float64 `json:"dc_cable_gauge_mm2"`
	AcCableGaugeMm2     float64 `json:"ac_cable_gauge_mm2"`
	DcCableRunM         int     `json:"dc_cable_run_m"`
	AcCableRunM         int     `json:"ac_cable_run_m"`
	BatteryKwh          float64 `json:"battery_kwh,omitempty"` // 0 when no battery was requested
	AnnualProductionKwh float64 `json:"annual_production_kwh"`
}
