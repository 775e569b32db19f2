package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"solarquote/internal/adapter/http/handlers/mocks"
	"solarquote/internal/domain/entities"
	"solarquote/internal/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"
)

func generateBody() string {
	return `{
		"org_id": "org-1",
		"customer_name": "Ana",
		"sizing": {
			"annual_consumption_kwh": 6000,
			"contracted_power_kva": 6.9,
			"cable_run_m": 15,
			"roof_type": "tile",
			"shading_factor": 0.85
		}
	}`
}

func TestQuoteHandler_Generate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("invalid json", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIQuoteUseCase(ctrl)
		h := NewQuoteHandler(uc)

		r := gin.New()
		r.POST("/v1/quotes", h.Generate)

		req := httptest.NewRequest(http.MethodPost, "/v1/quotes", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("non-positive consumption rejected at binding", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIQuoteUseCase(ctrl)
		h := NewQuoteHandler(uc)

		r := gin.New()
		r.POST("/v1/quotes", h.Generate)

		body := `{"org_id":"org-1","sizing":{"annual_consumption_kwh":0,"contracted_power_kva":6.9}}`
		req := httptest.NewRequest(http.MethodPost, "/v1/quotes", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("organization not found maps to 404", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIQuoteUseCase(ctrl)
		h := NewQuoteHandler(uc)

		r := gin.New()
		r.POST("/v1/quotes", h.Generate)

		uc.EXPECT().Generate(gomock.Any(), "org-1", "Ana", gomock.Any(), gomock.Any()).Return(entities.Quote{}, usecase.ErrOrganizationNotFound)

		req := httptest.NewRequest(http.MethodPost, "/v1/quotes", bytes.NewBufferString(generateBody()))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("success returns 201 with numbered quote", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIQuoteUseCase(ctrl)
		h := NewQuoteHandler(uc)

		r := gin.New()
		r.POST("/v1/quotes", h.Generate)

		uc.EXPECT().Generate(gomock.Any(), "org-1", "Ana", gomock.Any(), gomock.Any()).Return(entities.Quote{
			ID:          "q-1",
			OrgID:       "org-1",
			Number:      "SLR-00041",
			Status:      entities.QuoteStatusDraft,
			QuoteTotals: entities.QuoteTotals{Subtotal: 1800, TotalDiscount: 180, TaxAmount: 372.6, Total: 1992.6},
		}, nil)

		req := httptest.NewRequest(http.MethodPost, "/v1/quotes", bytes.NewBufferString(generateBody()))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var resp map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid response json: %v", err)
		}
		if resp["number"] != "SLR-00041" {
			t.Fatalf("number = %v, want SLR-00041", resp["number"])
		}
		totals := resp["totals"].(map[string]any)
		if totals["display_total"] != "1992.60" {
			t.Fatalf("display_total = %v, want 1992.60", totals["display_total"])
		}
	})
}

func TestQuoteHandler_Preview(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("returns sizing sections and warnings without persisting", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIQuoteUseCase(ctrl)
		h := NewQuoteHandler(uc)

		r := gin.New()
		r.POST("/v1/quotes/preview", h.Preview)

		uc.EXPECT().Preview(gomock.Any(), "org-1", gomock.Any(), gomock.Any()).Return(usecase.QuotePreview{
			Sizing:   entities.SizingResult{PanelCount: 9, ArrayKwp: 4.95},
			Warnings: []string{"no battery products available; add a battery manually"},
		}, nil)

		req := httptest.NewRequest(http.MethodPost, "/v1/quotes/preview", bytes.NewBufferString(generateBody()))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}

		var resp map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid response json: %v", err)
		}
		sizing := resp["sizing"].(map[string]any)
		if sizing["panel_count"] != float64(9) {
			t.Fatalf("panel_count = %v, want 9", sizing["panel_count"])
		}
		if len(resp["warnings"].([]any)) != 1 {
			t.Fatalf("expected 1 warning, got %v", resp["warnings"])
		}
	})
}

func TestQuoteHandler_CreateManual(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("missing sections rejected at binding", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIQuoteUseCase(ctrl)
		h := NewQuoteHandler(uc)

		r := gin.New()
		r.POST("/v1/quotes/manual", h.CreateManual)

		req := httptest.NewRequest(http.MethodPost, "/v1/quotes/manual", bytes.NewBufferString(`{"org_id":"org-1"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIQuoteUseCase(ctrl)
		h := NewQuoteHandler(uc)

		r := gin.New()
		r.POST("/v1/quotes/manual", h.CreateManual)

		uc.EXPECT().CreateManual(gomock.Any(), "org-1", "Ana", gomock.Any()).DoAndReturn(
			func(_ context.Context, _, _ string, sections []entities.Section) (entities.Quote, error) {
				if len(sections) != 1 || sections[0].Name != entities.SectionEquipment {
					t.Fatalf("unexpected sections: %+v", sections)
				}
				return entities.Quote{ID: "q-1", Number: "SLR-00001", Status: entities.QuoteStatusDraft}, nil
			},
		)

		body := `{
			"org_id": "org-1",
			"customer_name": "Ana",
			"sections": [
				{"name": "equipment", "items": [
					{"name": "Panel 550W", "quantity": 10, "unit_price": 180, "tax_rate_pct": 23,
					 "discount": {"type": "percentage", "value": 10}}
				]}
			]
		}`
		req := httptest.NewRequest(http.MethodPost, "/v1/quotes/manual", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestQuoteHandler_ReplaceItems(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("not editable maps to 409", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIQuoteUseCase(ctrl)
		h := NewQuoteHandler(uc)

		r := gin.New()
		r.PUT("/v1/quotes/:id/items", h.ReplaceItems)

		uc.EXPECT().ReplaceItems(gomock.Any(), "q-1", gomock.Any()).Return(entities.Quote{}, usecase.ErrQuoteNotEditable)

		body := `{"sections":[{"name":"equipment","items":[{"name":"Panel","quantity":1,"unit_price":100}]}]}`
		req := httptest.NewRequest(http.MethodPut, "/v1/quotes/q-1/items", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
	})
}

func TestQuoteHandler_StatusTransitions(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("accept success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIQuoteUseCase(ctrl)
		h := NewQuoteHandler(uc)

		r := gin.New()
		r.PATCH("/v1/quotes/:id/accept", h.Accept)

		uc.EXPECT().Accept(gomock.Any(), "q-1").Return(entities.Quote{ID: "q-1", Status: entities.QuoteStatusAccepted}, nil)

		req := httptest.NewRequest(http.MethodPatch, "/v1/quotes/q-1/accept", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("illegal transition maps to 409", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIQuoteUseCase(ctrl)
		h := NewQuoteHandler(uc)

		r := gin.New()
		r.PATCH("/v1/quotes/:id/accept", h.Accept)

		uc.EXPECT().Accept(gomock.Any(), "q-1").Return(entities.Quote{}, usecase.ErrInvalidStatusTransition)

		req := httptest.NewRequest(http.MethodPatch, "/v1/quotes/q-1/accept", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
	})
}

func TestQuoteHandler_GetAndList(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("get not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIQuoteUseCase(ctrl)
		h := NewQuoteHandler(uc)

		r := gin.New()
		r.GET("/v1/quotes/:id", h.GetByID)

		uc.EXPECT().GetByID(gomock.Any(), "q-404").Return(entities.Quote{}, usecase.ErrQuoteNotFound)

		req := httptest.NewRequest(http.MethodGet, "/v1/quotes/q-404", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("list by org", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIQuoteUseCase(ctrl)
		h := NewQuoteHandler(uc)

		r := gin.New()
		r.GET("/v1/quotes", h.ListByOrg)

		uc.EXPECT().ListByOrgID(gomock.Any(), "org-1").Return([]entities.Quote{
			{ID: "q-1", Number: "SLR-00001"},
			{ID: "q-2", Number: "SLR-00002"},
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/v1/quotes?org_id=org-1", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}

		var resp []map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid response json: %v", err)
		}
		if len(resp) != 2 {
			t.Fatalf("expected 2 quotes, got %d", len(resp))
		}
	})
}
