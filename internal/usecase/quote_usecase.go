package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"solarquote/internal/domain/entities"
	"solarquote/internal/domain/services"
	"solarquote/internal/usecase/interfaces"

	"github.com/google/uuid"
)

var (
	ErrQuoteNotFound           = errors.New("quote not found")
	ErrOrganizationNotFound    = interfaces.ErrOrganizationNotFound
	ErrInvalidOrgID            = errors.New("invalid org id")
	ErrInvalidQuoteID          = errors.New("invalid quote id")
	ErrInvalidSizingInput      = errors.New("invalid sizing input")
	ErrEmptySections           = errors.New("quote needs at least one line item")
	ErrQuoteNotEditable        = errors.New("quote line items can no longer be edited")
	ErrInvalidStatusTransition = errors.New("invalid quote status transition")
)

// quoteValidityDays is how long a generated quote stays open before the
// caller may mark it expired.
const quoteValidityDays = 30

// QuotePreview is the unsaved result of the sizing wizard: a hardware
// specification, priced sections and the matching warnings the operator must
// see before deciding to persist.
type QuotePreview struct {
	Sizing   entities.SizingResult `json:"sizing"`
	Sections []entities.Section    `json:"sections"`
	Totals   entities.QuoteTotals  `json:"totals"`
	Warnings []string              `json:"warnings"`
}

// IQuoteUseCase exposes quote generation, editing and lifecycle operations.
//
// Two creation paths share the pricing engine: Generate runs the sizing
// calculator and catalog matcher; CreateManual takes operator-authored
// sections directly. Both persist through the same numbered-create
// transaction.

type IQuoteUseCase interface {
	Preview(ctx context.Context, orgID string, input entities.SizingInput, toggles services.CategoryToggles) (QuotePreview, error)
	Generate(ctx context.Context, orgID, customerName string, input entities.SizingInput, toggles services.CategoryToggles) (entities.Quote, error)
	CreateManual(ctx context.Context, orgID, customerName string, sections []entities.Section) (entities.Quote, error)
	ReplaceItems(ctx context.Context, quoteID string, sections []entities.Section) (entities.Quote, error)

	SubmitForApproval(ctx context.Context, quoteID string) (entities.Quote, error)
	Approve(ctx context.Context, quoteID string) (entities.Quote, error)
	Send(ctx context.Context, quoteID string) (entities.Quote, error)
	MarkViewed(ctx context.Context, quoteID string) (entities.Quote, error)
	Accept(ctx context.Context, quoteID string) (entities.Quote, error)
	Reject(ctx context.Context, quoteID string) (entities.Quote, error)
	Expire(ctx context.Context, quoteID string) (entities.Quote, error)

	GetByID(ctx context.Context, id string) (entities.Quote, error)
	ListByOrgID(ctx context.Context, orgID string) ([]entities.Quote, error)
}

type QuoteUseCase struct {
	quotes   interfaces.IQuoteRepository
	products interfaces.IProductRepository
	orgs     interfaces.IOrganizationRepository
	matcher  *services.CatalogMatcher
}

var _ IQuoteUseCase = (*QuoteUseCase)(nil)

func NewQuoteUseCase(quotes interfaces.IQuoteRepository, products interfaces.IProductRepository, orgs interfaces.IOrganizationRepository) *QuoteUseCase {
	return &QuoteUseCase{
		quotes:   quotes,
		products: products,
		orgs:     orgs,
		matcher:  services.NewCatalogMatcher(),
	}
}

// Preview sizes, matches and prices without persisting anything.
func (u *QuoteUseCase) Preview(ctx context.Context, orgID string, input entities.SizingInput, toggles services.CategoryToggles) (QuotePreview, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return QuotePreview{}, ErrInvalidOrgID
	}
	if input.AnnualConsumptionKwh <= 0 || input.ContractedPowerKva <= 0 {
		return QuotePreview{}, ErrInvalidSizingInput
	}

	if err := u.requireOrganization(ctx, orgID); err != nil {
		return QuotePreview{}, err
	}

	catalog, err := u.products.ListActiveByOrgID(ctx, orgID)
	if err != nil {
		return QuotePreview{}, err
	}

	sizing := services.Size(input)
	match := u.matcher.Select(sizing, catalog, input.RoofType, toggles)
	sections := services.PriceSections(sectionsFromSelections(match.Selections))

	return QuotePreview{
		Sizing:   sizing,
		Sections: sections,
		Totals:   services.CalculateQuoteTotals(sections),
		Warnings: match.Warnings,
	}, nil
}

// Generate runs the automated path and persists the numbered quote. Matching
// warnings are stored on the quote so the operator can complete missing lines.
func (u *QuoteUseCase) Generate(ctx context.Context, orgID, customerName string, input entities.SizingInput, toggles services.CategoryToggles) (entities.Quote, error) {
	preview, err := u.Preview(ctx, orgID, input, toggles)
	if err != nil {
		return entities.Quote{}, err
	}

	sizing := preview.Sizing
	q := u.newQuote(strings.TrimSpace(orgID), customerName, preview.Sections, preview.Totals)
	q.Sizing = &sizing
	q.Warnings = preview.Warnings

	created, err := u.quotes.CreateWithSequence(ctx, q)
	if err != nil {
		log.Printf("[quote][usecase] numbered create failed org_id=%s err=%v", q.OrgID, err)
		return entities.Quote{}, err
	}
	log.Printf("[quote][usecase] generated quote org_id=%s number=%s warnings=%d", created.OrgID, created.Number, len(created.Warnings))
	return created, nil
}

// CreateManual persists a quote built from operator-authored sections,
// re-deriving every line before anything is stored.
func (u *QuoteUseCase) CreateManual(ctx context.Context, orgID, customerName string, sections []entities.Section) (entities.Quote, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return entities.Quote{}, ErrInvalidOrgID
	}
	if countLineItems(sections) == 0 {
		return entities.Quote{}, ErrEmptySections
	}
	if err := u.requireOrganization(ctx, orgID); err != nil {
		return entities.Quote{}, err
	}

	priced := services.PriceSections(withLineItemIDs(sections))
	q := u.newQuote(orgID, customerName, priced, services.CalculateQuoteTotals(priced))

	created, err := u.quotes.CreateWithSequence(ctx, q)
	if err != nil {
		log.Printf("[quote][usecase] manual create failed org_id=%s err=%v", orgID, err)
		return entities.Quote{}, err
	}
	log.Printf("[quote][usecase] manual quote created org_id=%s number=%s", created.OrgID, created.Number)
	return created, nil
}

// ReplaceItems swaps the quote's sections for the given ones and recomputes
// every derived figure from scratch. Stored totals never disagree with a fresh
// recomputation from the line items.
func (u *QuoteUseCase) ReplaceItems(ctx context.Context, quoteID string, sections []entities.Section) (entities.Quote, error) {
	quoteID = strings.TrimSpace(quoteID)
	if quoteID == "" {
		return entities.Quote{}, ErrInvalidQuoteID
	}
	if countLineItems(sections) == 0 {
		return entities.Quote{}, ErrEmptySections
	}

	q, err := u.quotes.GetByID(ctx, quoteID)
	if err != nil {
		return entities.Quote{}, err
	}
	if q.ID == "" {
		return entities.Quote{}, ErrQuoteNotFound
	}
	if q.Status != entities.QuoteStatusDraft && q.Status != entities.QuoteStatusPendingApproval {
		return entities.Quote{}, ErrQuoteNotEditable
	}

	q.Sections = services.PriceSections(withLineItemIDs(sections))
	q.QuoteTotals = services.CalculateQuoteTotals(q.Sections)
	q.UpdatedAt = time.Now().UTC()

	return u.quotes.Update(ctx, q)
}

func (u *QuoteUseCase) SubmitForApproval(ctx context.Context, quoteID string) (entities.Quote, error) {
	return u.transition(ctx, quoteID, entities.QuoteStatusPendingApproval)
}

func (u *QuoteUseCase) Approve(ctx context.Context, quoteID string) (entities.Quote, error) {
	return u.transition(ctx, quoteID, entities.QuoteStatusApproved)
}

func (u *QuoteUseCase) Send(ctx context.Context, quoteID string) (entities.Quote, error) {
	return u.transition(ctx, quoteID, entities.QuoteStatusSent)
}

func (u *QuoteUseCase) MarkViewed(ctx context.Context, quoteID string) (entities.Quote, error) {
	return u.transition(ctx, quoteID, entities.QuoteStatusViewed)
}

func (u *QuoteUseCase) Accept(ctx context.Context, quoteID string) (entities.Quote, error) {
	return u.transition(ctx, quoteID, entities.QuoteStatusAccepted)
}

func (u *QuoteUseCase) Reject(ctx context.Context, quoteID string) (entities.Quote, error) {
	return u.transition(ctx, quoteID, entities.QuoteStatusRejected)
}

// Expire is invoked by the (external) expiry detector once validUntil has
// elapsed; it is legal from any non-terminal status.
func (u *QuoteUseCase) Expire(ctx context.Context, quoteID string) (entities.Quote, error) {
	return u.transition(ctx, quoteID, entities.QuoteStatusExpired)
}

func (u *QuoteUseCase) transition(ctx context.Context, quoteID string, next entities.QuoteStatus) (entities.Quote, error) {
	quoteID = strings.TrimSpace(quoteID)
	if quoteID == "" {
		return entities.Quote{}, ErrInvalidQuoteID
	}

	q, err := u.quotes.GetByID(ctx, quoteID)
	if err != nil {
		return entities.Quote{}, err
	}
	if q.ID == "" {
		return entities.Quote{}, ErrQuoteNotFound
	}
	if !q.Status.CanTransitionTo(next) {
		return entities.Quote{}, ErrInvalidStatusTransition
	}

	q.Status = next
	q.UpdatedAt = time.Now().UTC()
	return u.quotes.Update(ctx, q)
}

func (u *QuoteUseCase) GetByID(ctx context.Context, id string) (entities.Quote, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Quote{}, ErrInvalidQuoteID
	}

	q, err := u.quotes.GetByID(ctx, id)
	if err != nil {
		return entities.Quote{}, err
	}
	if q.ID == "" {
		return entities.Quote{}, ErrQuoteNotFound
	}
	return q, nil
}

func (u *QuoteUseCase) ListByOrgID(ctx context.Context, orgID string) ([]entities.Quote, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, ErrInvalidOrgID
	}
	return u.quotes.ListByOrgID(ctx, orgID)
}

func (u *QuoteUseCase) requireOrganization(ctx context.Context, orgID string) error {
	org, err := u.orgs.GetByID(ctx, orgID)
	if err != nil {
		return err
	}
	if org.ID == "" {
		return ErrOrganizationNotFound
	}
	return nil
}

func (u *QuoteUseCase) newQuote(orgID, customerName string, sections []entities.Section, totals entities.QuoteTotals) entities.Quote {
	now := time.Now().UTC()
	return entities.Quote{
		ID:           uuid.NewString(),
		OrgID:        orgID,
		CustomerName: strings.TrimSpace(customerName),
		Status:       entities.QuoteStatusDraft,
		Sections:     sections,
		QuoteTotals:  totals,
		ValidUntil:   now.AddDate(0, 0, quoteValidityDays),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// sectionsFromSelections groups matcher selections into the fixed section
// order: equipment, installation, accessories. Empty sections are omitted.
func sectionsFromSelections(selections []entities.Selection) []entities.Section {
	grouped := map[entities.SectionName][]entities.LineItem{}
	for _, sel := range selections {
		grouped[sel.Section] = append(grouped[sel.Section], entities.LineItem{
			ID:          uuid.NewString(),
			ProductID:   sel.Product.ID,
			Name:        sel.Product.Name,
			Description: sel.Product.Description,
			Quantity:    float64(sel.Quantity),
			Unit:        sel.Product.Unit,
			UnitPrice:   sel.Product.UnitPrice,
			TaxRatePct:  sel.Product.TaxRatePct,
		})
	}

	var sections []entities.Section
	for _, name := range []entities.SectionName{entities.SectionEquipment, entities.SectionInstallation, entities.SectionAccessories} {
		if items := grouped[name]; len(items) > 0 {
			sections = append(sections, entities.Section{Name: name, Items: items})
		}
	}
	return sections
}

func withLineItemIDs(sections []entities.Section) []entities.Section {
	for i := range sections {
		for j := range sections[i].Items {
			if sections[i].Items[j].ID == "" {
				sections[i].Items[j].ID = uuid.NewString()
			}
		}
	}
	return sections
}

func countLineItems(sections []entities.Section) int {
	n := 0
	for _, s := range sections {
		n += len(s.Items)
	}
	return n
}
