package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"solarquote/internal/domain/entities"
)

// CategoryToggles enables or disables matching per product category.
type CategoryToggles struct {
	Panels   bool `json:"panels"`
	Inverter bool `json:"inverter"`
	Battery  bool `json:"battery"`
	Mounting bool `json:"mounting"`
	DcCable  bool `json:"dc_cable"`
	AcCable  bool `json:"ac_cable"`
	Labor    bool `json:"labor"`
}

// AllCategories returns toggles with every category enabled.
func AllCategories() CategoryToggles {
	return CategoryToggles{
		Panels: true, Inverter: true, Battery: true,
		Mounting: true, DcCable: true, AcCable: true, Labor: true,
	}
}

// MatchResult is a partial-by-design selection: every enabled category that
// could not be satisfied contributes a warning instead of failing the match.
type MatchResult struct {
	Selections []entities.Selection
	Warnings   []string
}

// Conductor identifies which cable run a selection is for.

type Conductor string

const (
	ConductorDC Conductor = "dc"
	ConductorAC Conductor = "ac"
)

// CableMatcher finds a cable product for a conductor and gauge. The default
// implementation is a keyword heuristic over name+description; the interface
// exists so structured catalog metadata can replace it without touching the
// matcher's control flow.
type CableMatcher interface {
	Match(products []entities.Product, conductor Conductor, gaugeMm2 float64) (entities.Product, bool)
}

// KeywordCableMatcher matches cables by case-insensitive substring search for
// a conductor type marker plus a gauge size marker, falling back to the bare
// "cable" keyword plus size marker.
type KeywordCableMatcher struct{}

var conductorMarkers = map[Conductor][]string{
	ConductorDC: {"dc", "solar"},
	ConductorAC: {"ac", "main"},
}

func (KeywordCableMatcher) Match(products []entities.Product, conductor Conductor, gaugeMm2 float64) (entities.Product, bool) {
	gauge := strconv.FormatFloat(gaugeMm2, 'f', -1, 64)
	// "6mm" is a prefix of "6mm²", so the two markers also cover the
	// square-millimetre spellings.
	sizeMarkers := []string{gauge + "mm", gauge + " mm"}

	if p, ok := findByMarkers(products, conductorMarkers[conductor], sizeMarkers); ok {
		return p, true
	}
	return findByMarkers(products, []string{"cable"}, sizeMarkers)
}

func findByMarkers(products []entities.Product, typeMarkers, sizeMarkers []string) (entities.Product, bool) {
	for _, p := range products {
		text := strings.ToLower(p.Name + " " + p.Description)
		if containsAny(text, typeMarkers) && containsAny(text, sizeMarkers) {
			return p, true
		}
	}
	return entities.Product{}, false
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// CatalogMatcher turns a sizing result into concrete priced selections from a
// catalog snapshot. Pure given the snapshot; it never mutates or re-reads the
// catalog.
type CatalogMatcher struct {
	Cables CableMatcher
}

func NewCatalogMatcher() *CatalogMatcher {
	return &CatalogMatcher{Cables: KeywordCableMatcher{}}
}

// Select matches each enabled category independently. Categories that cannot
// be satisfied are reported as warnings and skipped; partial selection is a
// valid outcome and must be surfaced to the operator, not treated as failure.
func (m *CatalogMatcher) Select(sizing entities.SizingResult, catalog []entities.Product, roof entities.RoofType, toggles CategoryToggles) MatchResult {
	var res MatchResult

	byCategory := map[entities.ProductCategory][]entities.Product{}
	for _, p := range catalog {
		if !p.Active {
			continue
		}
		byCategory[p.Category] = append(byCategory[p.Category], p)
	}

	if toggles.Panels {
		m.selectPanel(&res, sizing, byCategory[entities.CategoryPanel])
	}
	if toggles.Inverter {
		m.selectInverter(&res, sizing, byCategory[entities.CategoryInverter])
	}
	if toggles.Battery && sizing.BatteryKwh > 0 {
		m.selectBattery(&res, sizing, byCategory[entities.CategoryBattery])
	}
	if toggles.Mounting {
		m.selectMounting(&res, sizing, roof, byCategory[entities.CategoryMounting])
	}
	if toggles.DcCable {
		m.selectCable(&res, ConductorDC, sizing.DcCableGaugeMm2, sizing.DcCableRunM, byCategory[entities.CategoryAccessory])
	}
	if toggles.AcCable {
		m.selectCable(&res, ConductorAC, sizing.AcCableGaugeMm2, sizing.AcCableRunM, byCategory[entities.CategoryAccessory])
	}
	if toggles.Labor {
		m.selectLabor(&res, sizing, byCategory[entities.CategoryLabor])
	}

	return res
}

// panelTieBandW: candidates this close to the best match are near-ties, broken
// toward the higher wattage rather than toward price.
const panelTieBandW = 50.0

func (m *CatalogMatcher) selectPanel(res *MatchResult, sizing entities.SizingResult, panels []entities.Product) {
	best, ok := closestBy(panels, func(p entities.Product) (float64, bool) {
		if p.Panel == nil {
			return 0, false
		}
		return math.Abs(p.Panel.WattageW - sizing.PanelWattageW), true
	})
	if !ok {
		res.Warnings = append(res.Warnings, "no panel products available; add panels manually")
		return
	}

	chosen := best
	for _, p := range panels {
		if p.Panel == nil {
			continue
		}
		if math.Abs(p.Panel.WattageW-best.Panel.WattageW) <= panelTieBandW && p.Panel.WattageW > chosen.Panel.WattageW {
			chosen = p
		}
	}

	res.Selections = append(res.Selections, entities.Selection{
		Product:  chosen,
		Quantity: sizing.PanelCount,
		Section:  entities.SectionEquipment,
	})
}

func (m *CatalogMatcher) selectInverter(res *MatchResult, sizing entities.SizingResult, inverters []entities.Product) {
	minRating := sizing.MaxInverterKw * 0.90 // slight undersizing is acceptable

	var chosen entities.Product
	found := false
	for _, p := range inverters {
		if p.Inverter == nil || p.Inverter.PowerKw < minRating {
			continue
		}
		if !found || p.Inverter.PowerKw < chosen.Inverter.PowerKw {
			chosen = p
			found = true
		}
	}

	if !found {
		// Best effort: the largest inverter on the books beats no inverter.
		for _, p := range inverters {
			if p.Inverter == nil {
				continue
			}
			if !found || p.Inverter.PowerKw > chosen.Inverter.PowerKw {
				chosen = p
				found = true
			}
		}
	}
	if !found {
		res.Warnings = append(res.Warnings, "no inverter products available; add an inverter manually")
		return
	}

	res.Selections = append(res.Selections, entities.Selection{
		Product:  chosen,
		Quantity: 1,
		Section:  entities.SectionEquipment,
	})
}

func (m *CatalogMatcher) selectBattery(res *MatchResult, sizing entities.SizingResult, batteries []entities.Product) {
	chosen, ok := closestBy(batteries, func(p entities.Product) (float64, bool) {
		if p.Battery == nil {
			return 0, false
		}
		return math.Abs(p.Battery.CapacityKwh - sizing.BatteryKwh), true
	})
	if !ok {
		res.Warnings = append(res.Warnings, "no battery products available; add a battery manually")
		return
	}

	// Enough units that installed capacity meets or exceeds the target.
	qty := int(math.Ceil(sizing.BatteryKwh / chosen.Battery.CapacityKwh))
	if qty < 1 {
		qty = 1
	}

	res.Selections = append(res.Selections, entities.Selection{
		Product:  chosen,
		Quantity: qty,
		Section:  entities.SectionEquipment,
	})
}

func (m *CatalogMatcher) selectMounting(res *MatchResult, sizing entities.SizingResult, roof entities.RoofType, mountings []entities.Product) {
	var chosen entities.Product
	found := false
	for _, p := range mountings {
		if p.Mounting == nil || p.Mounting.RoofType != roof {
			continue
		}
		if !found || p.UnitPrice < chosen.UnitPrice {
			chosen = p
			found = true
		}
	}
	if !found && len(mountings) > 0 {
		// No roof-type match; any mounting kit is better than none.
		chosen = mountings[0]
		found = true
	}
	if !found {
		res.Warnings = append(res.Warnings, "no mounting products available; add mounting manually")
		return
	}

	res.Selections = append(res.Selections, entities.Selection{
		Product:  chosen,
		Quantity: sizing.PanelCount,
		Section:  entities.SectionEquipment,
	})
}

func (m *CatalogMatcher) selectCable(res *MatchResult, conductor Conductor, gaugeMm2 float64, runM int, accessories []entities.Product) {
	cables := m.Cables
	if cables == nil {
		cables = KeywordCableMatcher{}
	}
	chosen, ok := cables.Match(accessories, conductor, gaugeMm2)
	if !ok {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"no %s cable product matching %smm²; add cabling manually",
			strings.ToUpper(string(conductor)), strconv.FormatFloat(gaugeMm2, 'f', -1, 64)))
		return
	}

	res.Selections = append(res.Selections, entities.Selection{
		Product:  chosen,
		Quantity: runM,
		Section:  entities.SectionAccessories,
	})
}

const installKeyword = "install"

func (m *CatalogMatcher) selectLabor(res *MatchResult, sizing entities.SizingResult, labor []entities.Product) {
	var chosen entities.Product
	found := false

	for _, p := range labor {
		if strings.Contains(strings.ToLower(p.Name), installKeyword) && p.Labor != nil && p.Labor.Unit == entities.LaborPerPanel {
			chosen, found = p, true
			break
		}
	}
	if !found {
		for _, p := range labor {
			if strings.Contains(strings.ToLower(p.Name), installKeyword) {
				chosen, found = p, true
				break
			}
		}
	}
	if !found && len(labor) > 0 {
		chosen, found = labor[0], true
	}
	if !found {
		res.Warnings = append(res.Warnings, "no labor products available; add installation labor manually")
		return
	}

	res.Selections = append(res.Selections, entities.Selection{
		Product:  chosen,
		Quantity: laborQuantity(chosen, sizing),
		Section:  entities.SectionInstallation,
	})
}

// laborQuantity derives the billed quantity from the unit the labor product is
// priced in. The per-day figure assumes a crew throughput of 8 panels a day.
func laborQuantity(p entities.Product, sizing entities.SizingResult) int {
	unit := entities.LaborFixed
	if p.Labor != nil {
		unit = p.Labor.Unit
	}
	switch unit {
	case entities.LaborPerPanel:
		return sizing.PanelCount
	case entities.LaborPerKw:
		return int(math.Ceil(sizing.ArrayKwp))
	case entities.LaborPerDay:
		return int(math.Ceil(float64(sizing.PanelCount) / 8))
	case entities.LaborPerHour:
		return int(math.Ceil(float64(sizing.PanelCount) * 1.2))
	default:
		return 1
	}
}

func closestBy(products []entities.Product, distance func(entities.Product) (float64, bool)) (entities.Product, bool) {
	var chosen entities.Product
	bestDist := math.MaxFloat64
	found := false
	for _, p := range products {
		d, ok := distance(p)
		if !ok {
			continue
		}
		if d < bestDist {
			chosen, bestDist, found = p, d, true
		}
	}
	return chosen, found
}
