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

func TestQuotePaymentHandler_CreateDeposit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("unwraps provider_payload envelope", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIQuotePaymentUseCase(ctrl)
		h := NewQuotePaymentHandler(uc)

		r := gin.New()
		r.POST("/v1/quotes/:id/payments", h.CreateDeposit)

		uc.EXPECT().CreateDeposit(gomock.Any(), "q-1", gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, payload json.RawMessage) (entities.QuotePayment, error) {
				var m map[string]any
				if err := json.Unmarshal(payload, &m); err != nil {
					t.Fatalf("payload not unwrapped: %v", err)
				}
				if m["payment_method_id"] != "pix" {
					t.Fatalf("unexpected payload: %+v", m)
				}
				return entities.QuotePayment{ID: "mp-1", QuoteID: "q-1", Amount: 597.78, Status: entities.PaymentStatusApproved}, nil
			},
		)

		body := `{"provider_payload":{"payment_method_id":"pix"}}`
		req := httptest.NewRequest(http.MethodPost, "/v1/quotes/q-1/payments", bytes.NewBufferString(body))
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
		if resp["display_amount"] != "597.78" {
			t.Fatalf("display_amount = %v, want 597.78", resp["display_amount"])
		}
	})

	t.Run("invalid body maps to 400", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIQuotePaymentUseCase(ctrl)
		h := NewQuotePaymentHandler(uc)

		r := gin.New()
		r.POST("/v1/quotes/:id/payments", h.CreateDeposit)

		req := httptest.NewRequest(http.MethodPost, "/v1/quotes/q-1/payments", bytes.NewBufferString("{broken"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("quote not accepted maps to 409", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIQuotePaymentUseCase(ctrl)
		h := NewQuotePaymentHandler(uc)

		r := gin.New()
		r.POST("/v1/quotes/:id/payments", h.CreateDeposit)

		uc.EXPECT().CreateDeposit(gomock.Any(), "q-1", gomock.Any()).Return(entities.QuotePayment{}, usecase.ErrQuoteNotAccepted)

		req := httptest.NewRequest(http.MethodPost, "/v1/quotes/q-1/payments", bytes.NewBufferString(`{"payment_method_id":"pix"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
	})

	t.Run("gateway unauthorized maps to 401", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		uc := mocks.NewMockIQuotePaymentUseCase(ctrl)
		h := NewQuotePaymentHandler(uc)

		r := gin.New()
		r.POST("/v1/quotes/:id/payments", h.CreateDeposit)

		uc.EXPECT().CreateDeposit(gomock.Any(), "q-1", gomock.Any()).Return(entities.QuotePayment{}, usecase.ErrPaymentGatewayUnauthorized)

		req := httptest.NewRequest(http.MethodPost, "/v1/quotes/q-1/payments", bytes.NewBufferString(`{"payment_method_id":"pix"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})
}

func TestQuotePaymentHandler_ListByQuote(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ctrl := gomock.NewController(t)
	uc := mocks.NewMockIQuotePaymentUseCase(ctrl)
	h := NewQuotePaymentHandler(uc)

	r := gin.New()
	r.GET("/v1/quotes/:id/payments", h.ListByQuote)

	uc.EXPECT().ListByQuoteID(gomock.Any(), "q-1").Return([]entities.QuotePayment{
		{ID: "mp-1", QuoteID: "q-1", Amount: 500},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/quotes/q-1/payments", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	if len(resp) != 1 || resp[0]["id"] != "mp-1" {
		t.Fatalf("unexpected payments: %+v", resp)
	}
}

func TestQuotePaymentHandler_GetByID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ctrl := gomock.NewController(t)
	uc := mocks.NewMockIQuotePaymentUseCase(ctrl)
	h := NewQuotePaymentHandler(uc)

	r := gin.New()
	r.GET("/v1/payments/:payment_id", h.GetByID)

	uc.EXPECT().GetByID(gomock.Any(), "mp-404").Return(entities.QuotePayment{}, usecase.ErrQuotePaymentNotFound)

	req := httptest.NewRequest(http.MethodGet, "/v1/payments/mp-404", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
