package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	request "solarquote/internal/adapter/http/dto/request"
	response "solarquote/internal/adapter/http/dto/response"
	"solarquote/internal/domain/entities"
	"solarquote/internal/usecase"
	"solarquote/internal/usecase/interfaces"
	"solarquote/pkg"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidQuotePayload = pkg.NewDomainErrorSimple("INVALID_QUOTE_INPUT", "Invalid quote payload", http.StatusBadRequest)
)

// QuoteHandler handles HTTP requests for quote generation and lifecycle.

type QuoteHandler struct {
	usecase usecase.IQuoteUseCase
}

func NewQuoteHandler(uc usecase.IQuoteUseCase) *QuoteHandler {
	return &QuoteHandler{usecase: uc}
}

// Preview sizes the system and prices a candidate quote without persisting.
func (h *QuoteHandler) Preview(c *gin.Context) {
	var payload request.PreviewQuoteRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidQuotePayload.HTTPStatus, errInvalidQuotePayload.ToHTTPError())
		return
	}

	preview, err := h.usecase.Preview(c.Request.Context(), payload.OrgID, payload.Sizing.ToEntity(), payload.Categories.Resolve())
	if err != nil {
		appErr := mapQuoteError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromQuotePreview(preview))
}

// Generate runs the automated sizing path and persists a numbered draft.
func (h *QuoteHandler) Generate(c *gin.Context) {
	var payload request.GenerateQuoteRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidQuotePayload.HTTPStatus, errInvalidQuotePayload.ToHTTPError())
		return
	}

	created, err := h.usecase.Generate(c.Request.Context(), payload.OrgID, payload.CustomerName, payload.Sizing.ToEntity(), payload.Categories.Resolve())
	if err != nil {
		log.Printf("[quote][handler] generate failed org_id=%s err=%v", payload.OrgID, err)
		appErr := mapQuoteError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	log.Printf("[quote][handler] generate success org_id=%s number=%s", created.OrgID, created.Number)

	c.JSON(http.StatusCreated, response.FromQuote(created))
}

// CreateManual persists a quote from operator-authored sections.
func (h *QuoteHandler) CreateManual(c *gin.Context) {
	var payload request.ManualQuoteRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidQuotePayload.HTTPStatus, errInvalidQuotePayload.ToHTTPError())
		return
	}

	created, err := h.usecase.CreateManual(c.Request.Context(), payload.OrgID, payload.CustomerName, request.ToSections(payload.Sections))
	if err != nil {
		log.Printf("[quote][handler] manual create failed org_id=%s err=%v", payload.OrgID, err)
		appErr := mapQuoteError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusCreated, response.FromQuote(created))
}

// ReplaceItems swaps a quote's sections and re-derives every total.
func (h *QuoteHandler) ReplaceItems(c *gin.Context) {
	quoteID := c.Param("id")

	var payload request.ReplaceItemsRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidQuotePayload.HTTPStatus, errInvalidQuotePayload.ToHTTPError())
		return
	}

	updated, err := h.usecase.ReplaceItems(c.Request.Context(), quoteID, request.ToSections(payload.Sections))
	if err != nil {
		appErr := mapQuoteError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromQuote(updated))
}

func (h *QuoteHandler) SubmitForApproval(c *gin.Context) {
	h.patchQuoteStatus(c, h.usecase.SubmitForApproval)
}

func (h *QuoteHandler) Approve(c *gin.Context) {
	h.patchQuoteStatus(c, h.usecase.Approve)
}

func (h *QuoteHandler) Send(c *gin.Context) {
	h.patchQuoteStatus(c, h.usecase.Send)
}

func (h *QuoteHandler) MarkViewed(c *gin.Context) {
	h.patchQuoteStatus(c, h.usecase.MarkViewed)
}

func (h *QuoteHandler) Accept(c *gin.Context) {
	h.patchQuoteStatus(c, h.usecase.Accept)
}

func (h *QuoteHandler) Reject(c *gin.Context) {
	h.patchQuoteStatus(c, h.usecase.Reject)
}

func (h *QuoteHandler) Expire(c *gin.Context) {
	h.patchQuoteStatus(c, h.usecase.Expire)
}

func (h *QuoteHandler) patchQuoteStatus(
	c *gin.Context,
	updater func(ctx context.Context, quoteID string) (entities.Quote, error),
) {
	quoteID := c.Param("id")

	updated, err := updater(c.Request.Context(), quoteID)
	if err != nil {
		log.Printf("[quote][handler] status patch failed quote_id=%s err=%v", quoteID, err)
		appErr := mapQuoteError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	log.Printf("[quote][handler] status patch success quote_id=%s status=%s", updated.ID, updated.Status)

	c.JSON(http.StatusOK, response.FromQuote(updated))
}

// GetByID returns a single quote.
func (h *QuoteHandler) GetByID(c *gin.Context) {
	q, err := h.usecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		appErr := mapQuoteError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromQuote(q))
}

// ListByOrg returns every quote for the organization in the query string.
func (h *QuoteHandler) ListByOrg(c *gin.Context) {
	orgID := c.Query("org_id")

	quotes, err := h.usecase.ListByOrgID(c.Request.Context(), orgID)
	if err != nil {
		appErr := mapQuoteError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromQuotes(quotes))
}

func mapQuoteError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidOrgID), errors.Is(err, usecase.ErrInvalidQuoteID), errors.Is(err, usecase.ErrInvalidSizingInput), errors.Is(err, usecase.ErrEmptySections):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrOrganizationNotFound):
		return pkg.NewDomainErrorSimple("ORGANIZATION_NOT_FOUND", "Organization not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrQuoteNotFound):
		return pkg.NewDomainErrorSimple("QUOTE_NOT_FOUND", "Quote not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrQuoteNotEditable):
		return pkg.NewDomainErrorSimple("QUOTE_NOT_EDITABLE", "Quote line items can no longer be edited", http.StatusConflict)
	case errors.Is(err, usecase.ErrInvalidStatusTransition):
		return pkg.NewDomainErrorSimple("INVALID_STATUS_TRANSITION", "Invalid quote status transition", http.StatusConflict)
	case errors.Is(err, interfaces.ErrQuoteNumberContention):
		return pkg.NewDomainErrorSimple("QUOTE_NUMBER_CONTENTION", "Quote numbering is under heavy contention, retry", http.StatusConflict)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
