package services

import (
	"math"

	"solarquote/internal/domain/entities"
)

// Sizing constants for the supported region. The yield constant is the energy
// harvested per installed kWp per year; the oversizing ratio is how far the DC
// array may exceed the inverter's AC rating.
const (
	SolarYieldKwhPerKwp   = 1500.0
	DefaultShadingFactor  = 0.85
	DcOversizeRatio       = 1.2
	StandardPanelWattageW = 550.0

	inverterHeadroomRatio = 0.90 // inverter rating vs contracted grid power

	dcRunMultiplier = 2.2 // both conductors plus 10% margin
	acRunMultiplier = 1.1

	batteryStepKwh = 5.0
	batteryMinKwh  = 5.0
	batteryMaxKwh  = 20.0
	eveningShare   = 0.30 // share of average daily consumption used after sunset
)

type cableBracket struct {
	maxKwp   float64
	maxRunM  float64
	gaugeMm2 float64
}

// DC gauge by (system size, run length). The smallest gauge whose bracket
// covers the actual values wins; anything off the table gets the largest.
var dcGaugeTable = []cableBracket{
	{maxKwp: 5, maxRunM: 20, gaugeMm2: 4},
	{maxKwp: 5, maxRunM: 40, gaugeMm2: 6},
	{maxKwp: 5, maxRunM: math.MaxFloat64, gaugeMm2: 10},
	{maxKwp: 10, maxRunM: 20, gaugeMm2: 6},
	{maxKwp: 10, maxRunM: 40, gaugeMm2: 10},
	{maxKwp: 10, maxRunM: math.MaxFloat64, gaugeMm2: 16},
	{maxKwp: 20, maxRunM: 20, gaugeMm2: 10},
	{maxKwp: 20, maxRunM: 40, gaugeMm2: 16},
	{maxKwp: 20, maxRunM: math.MaxFloat64, gaugeMm2: 25},
}

type acBracket struct {
	maxKw    float64
	gaugeMm2 float64
}

// AC gauge by inverter power.
var acGaugeTable = []acBracket{
	{maxKw: 3.68, gaugeMm2: 2.5},
	{maxKw: 6, gaugeMm2: 4},
	{maxKw: 9, gaugeMm2: 6},
	{maxKw: 12, gaugeMm2: 10},
	{maxKw: 20, gaugeMm2: 16},
}

// Size derives a hardware specification from a consumption profile.
//
// Pure and deterministic; no I/O. Precondition: AnnualConsumptionKwh > 0 and
// ContractedPowerKva > 0. The calculator does not validate either, callers
// guard at the boundary.
func Size(in entities.SizingInput) entities.SizingResult {
	maxInverterKw := in.ContractedPowerKva * inverterHeadroomRatio

	shading := in.ShadingFactor
	if shading <= 0 {
		shading = DefaultShadingFactor
	}

	idealKwp := in.AnnualConsumptionKwh / SolarYieldKwhPerKwp
	adjustedKwp := idealKwp / shading
	cappedKwp := math.Min(adjustedKwp, maxInverterKw*DcOversizeRatio)

	panelCount := int(math.Ceil(cappedKwp * 1000 / StandardPanelWattageW))
	arrayKwp := float64(panelCount) * StandardPanelWattageW / 1000

	res := entities.SizingResult{
		ArrayKwp:            arrayKwp,
		MaxInverterKw:       maxInverterKw,
		PanelCount:          panelCount,
		PanelWattageW:       StandardPanelWattageW,
		DcCableGaugeMm2:     dcCableGauge(arrayKwp, in.CableRunM),
		AcCableGaugeMm2:     acCableGauge(maxInverterKw),
		DcCableRunM:         int(math.Ceil(in.CableRunM * dcRunMultiplier)),
		AcCableRunM:         int(math.Ceil(in.CableRunM * acRunMultiplier)),
		AnnualProductionKwh: math.Round(arrayKwp * SolarYieldKwhPerKwp * shading),
	}

	if in.IncludeBattery {
		res.BatteryKwh = batterySizeKwh(in.AnnualConsumptionKwh)
	}

	return res
}

func dcCableGauge(arrayKwp, runM float64) float64 {
	best := 0.0
	for _, b := range dcGaugeTable {
		if arrayKwp <= b.maxKwp && runM <= b.maxRunM {
			if best == 0 || b.gaugeMm2 < best {
				best = b.gaugeMm2
			}
		}
	}
	if best == 0 {
		return dcGaugeTable[len(dcGaugeTable)-1].gaugeMm2
	}
	return best
}

func acCableGauge(inverterKw float64) float64 {
	best := 0.0
	for _, b := range acGaugeTable {
		if inverterKw <= b.maxKw {
			if best == 0 || b.gaugeMm2 < best {
				best = b.gaugeMm2
			}
		}
	}
	if best == 0 {
		return acGaugeTable[len(acGaugeTable)-1].gaugeMm2
	}
	return best
}

func batterySizeKwh(annualConsumptionKwh float64) float64 {
	eveningKwh := annualConsumptionKwh / 365 * eveningShare
	sized := math.Ceil(eveningKwh/batteryStepKwh) * batteryStepKwh
	if sized < batteryMinKwh {
		return batteryMinKwh
	}
	if sized > batteryMaxKwh {
		return batteryMaxKwh
	}
	return sized
}
