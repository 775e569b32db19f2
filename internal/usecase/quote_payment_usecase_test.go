package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"solarquote/internal/domain/entities"
	mock_interfaces "solarquote/internal/usecase/interfaces/mocks"

	"go.uber.org/mock/gomock"
)

func paymentMocks(t *testing.T) (*mock_interfaces.MockIQuotePaymentRepository, *mock_interfaces.MockIQuoteRepository, *mock_interfaces.MockIPaymentGateway, *QuotePaymentUseCase) {
	ctrl := gomock.NewController(t)
	repo := mock_interfaces.NewMockIQuotePaymentRepository(ctrl)
	quotes := mock_interfaces.NewMockIQuoteRepository(ctrl)
	gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
	return repo, quotes, gateway, NewQuotePaymentUseCase(repo, quotes, gateway)
}

func acceptedQuote(total float64) entities.Quote {
	return entities.Quote{
		ID:          "q-1",
		Number:      "SLR-00041",
		Status:      entities.QuoteStatusAccepted,
		QuoteTotals: entities.QuoteTotals{Total: total},
	}
}

func TestQuotePaymentUseCase_CreateDeposit(t *testing.T) {
	payload := json.RawMessage(`{"payment_method_id":"pix","payer":{"email":"ana@example.com"}}`)

	t.Run("invalid quote id", func(t *testing.T) {
		_, _, _, uc := paymentMocks(t)
		_, err := uc.CreateDeposit(context.Background(), "  ", payload)
		if !errors.Is(err, ErrInvalidPaymentQuoteID) {
			t.Fatalf("expected ErrInvalidPaymentQuoteID, got %v", err)
		}
	})

	t.Run("invalid payload", func(t *testing.T) {
		_, _, _, uc := paymentMocks(t)
		_, err := uc.CreateDeposit(context.Background(), "q-1", json.RawMessage("{broken"))
		if !errors.Is(err, ErrInvalidProviderPayload) {
			t.Fatalf("expected ErrInvalidProviderPayload, got %v", err)
		}
	})

	t.Run("quote not found", func(t *testing.T) {
		_, quotes, _, uc := paymentMocks(t)
		quotes.EXPECT().GetByID(gomock.Any(), "q-404").Return(entities.Quote{}, nil)

		_, err := uc.CreateDeposit(context.Background(), "q-404", payload)
		if !errors.Is(err, ErrQuoteNotFound) {
			t.Fatalf("expected ErrQuoteNotFound, got %v", err)
		}
	})

	t.Run("quote not accepted", func(t *testing.T) {
		_, quotes, _, uc := paymentMocks(t)
		quotes.EXPECT().GetByID(gomock.Any(), "q-1").Return(entities.Quote{ID: "q-1", Status: entities.QuoteStatusSent}, nil)

		_, err := uc.CreateDeposit(context.Background(), "q-1", payload)
		if !errors.Is(err, ErrQuoteNotAccepted) {
			t.Fatalf("expected ErrQuoteNotAccepted, got %v", err)
		}
	})

	t.Run("derives deposit amount from stored total", func(t *testing.T) {
		repo, quotes, gateway, uc := paymentMocks(t)
		quotes.EXPECT().GetByID(gomock.Any(), "q-1").Return(acceptedQuote(1992.6), nil)

		gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, p json.RawMessage) (string, string, json.RawMessage, error) {
				var m map[string]any
				if err := json.Unmarshal(p, &m); err != nil {
					t.Fatalf("payload no longer valid JSON: %v", err)
				}
				// 30% of 1992.6, rounded to cents.
				if got := m["transaction_amount"].(float64); got != 597.78 {
					t.Fatalf("transaction_amount = %v, want 597.78", got)
				}
				if m["external_reference"] != "q-1" {
					t.Fatalf("external_reference = %v, want q-1", m["external_reference"])
				}
				return "mp-123", "approved", json.RawMessage(`{"id":"mp-123","status":"approved"}`), nil
			},
		)
		repo.EXPECT().Create(gomock.Any(), gomock.AssignableToTypeOf(entities.QuotePayment{})).DoAndReturn(
			func(_ context.Context, p entities.QuotePayment) (entities.QuotePayment, error) {
				if p.ID != "mp-123" || p.QuoteID != "q-1" || p.Amount != 597.78 {
					t.Fatalf("unexpected payment: %+v", p)
				}
				if p.Status != entities.PaymentStatusApproved {
					t.Fatalf("status = %s, want approved", p.Status)
				}
				if p.ProviderPayload["id"] != "mp-123" {
					t.Fatalf("provider payload not parsed: %+v", p.ProviderPayload)
				}
				return p, nil
			},
		)

		created, err := uc.CreateDeposit(context.Background(), "q-1", payload)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created.Amount != 597.78 {
			t.Fatalf("amount = %v, want 597.78", created.Amount)
		}
	})

	t.Run("configurable deposit percentage", func(t *testing.T) {
		t.Setenv("QUOTE_DEPOSIT_PERCENT", "50")

		repo, quotes, gateway, uc := paymentMocks(t)
		quotes.EXPECT().GetByID(gomock.Any(), "q-1").Return(acceptedQuote(1000), nil)
		gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return("mp-1", "approved", json.RawMessage(`{"id":"mp-1"}`), nil)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, p entities.QuotePayment) (entities.QuotePayment, error) {
				return p, nil
			},
		)

		created, err := uc.CreateDeposit(context.Background(), "q-1", payload)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created.Amount != 500 {
			t.Fatalf("amount = %v, want 500", created.Amount)
		}
	})

	t.Run("gateway unauthorized", func(t *testing.T) {
		_, quotes, gateway, uc := paymentMocks(t)
		quotes.EXPECT().GetByID(gomock.Any(), "q-1").Return(acceptedQuote(1000), nil)
		gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return("", "", nil, errors.New(`{"status":401,"error":"unauthorized"}`))

		_, err := uc.CreateDeposit(context.Background(), "q-1", payload)
		if !errors.Is(err, ErrPaymentGatewayUnauthorized) {
			t.Fatalf("expected ErrPaymentGatewayUnauthorized, got %v", err)
		}
	})

	t.Run("gateway bad request", func(t *testing.T) {
		_, quotes, gateway, uc := paymentMocks(t)
		quotes.EXPECT().GetByID(gomock.Any(), "q-1").Return(acceptedQuote(1000), nil)
		gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return("", "", nil, errors.New(`{"status":400,"error":"bad_request"}`))

		_, err := uc.CreateDeposit(context.Background(), "q-1", payload)
		if !errors.Is(err, ErrPaymentGatewayBadRequest) {
			t.Fatalf("expected ErrPaymentGatewayBadRequest, got %v", err)
		}
	})

	t.Run("mock mode skips payload and status checks", func(t *testing.T) {
		t.Setenv("PAYMENT_GATEWAY_MOCK", "true")

		repo, quotes, gateway, uc := paymentMocks(t)
		quotes.EXPECT().GetByID(gomock.Any(), "q-1").Return(entities.Quote{ID: "q-1", Status: entities.QuoteStatusDraft, QuoteTotals: entities.QuoteTotals{Total: 100}}, nil)
		gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return("mock-1", "approved", json.RawMessage(`{"id":"mock-1"}`), nil)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, p entities.QuotePayment) (entities.QuotePayment, error) {
				return p, nil
			},
		)

		_, err := uc.CreateDeposit(context.Background(), "q-1", nil)
		if err != nil {
			t.Fatalf("unexpected error in mock mode: %v", err)
		}
	})
}

func TestQuotePaymentUseCase_GetAndList(t *testing.T) {
	t.Run("get not found", func(t *testing.T) {
		repo, _, _, uc := paymentMocks(t)
		repo.EXPECT().GetByID(gomock.Any(), "pay-404").Return(entities.QuotePayment{}, nil)

		_, err := uc.GetByID(context.Background(), "pay-404")
		if !errors.Is(err, ErrQuotePaymentNotFound) {
			t.Fatalf("expected ErrQuotePaymentNotFound, got %v", err)
		}
	})

	t.Run("list by quote", func(t *testing.T) {
		repo, _, _, uc := paymentMocks(t)
		repo.EXPECT().ListByQuoteID(gomock.Any(), "q-1").Return([]entities.QuotePayment{{ID: "pay-1"}}, nil)

		got, err := uc.ListByQuoteID(context.Background(), " q-1 ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].ID != "pay-1" {
			t.Fatalf("unexpected payments: %+v", got)
		}
	})
}
