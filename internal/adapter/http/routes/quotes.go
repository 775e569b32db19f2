package routes

import (
	"solarquote/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathQuotes   = "/quotes"
	PathCatalog  = "/catalog"
	PathPayments = "/payments"
)

func addQuoteRoutes(rg *gin.RouterGroup, quoteHandler *handlers.QuoteHandler, catalogHandler *handlers.CatalogHandler, paymentHandler *handlers.QuotePaymentHandler) {
	quotes := rg.Group(PathQuotes)
	{
		quotes.POST("/preview", quoteHandler.Preview)
		quotes.POST("", quoteHandler.Generate)
		quotes.POST("/manual", quoteHandler.CreateManual)
		quotes.GET("", quoteHandler.ListByOrg)
		quotes.GET("/:id", quoteHandler.GetByID)
		quotes.PUT("/:id/items", quoteHandler.ReplaceItems)

		quotes.PATCH("/:id/submit", quoteHandler.SubmitForApproval)
		quotes.PATCH("/:id/approve", quoteHandler.Approve)
		quotes.PATCH("/:id/send", quoteHandler.Send)
		quotes.PATCH("/:id/viewed", quoteHandler.MarkViewed)
		quotes.PATCH("/:id/accept", quoteHandler.Accept)
		quotes.PATCH("/:id/reject", quoteHandler.Reject)
		quotes.PATCH("/:id/expire", quoteHandler.Expire)

		quotes.POST("/:id/payments", paymentHandler.CreateDeposit)
		quotes.GET("/:id/payments", paymentHandler.ListByQuote)
	}

	catalog := rg.Group(PathCatalog)
	{
		catalog.GET("", catalogHandler.ListActive)
		catalog.GET("/:id", catalogHandler.GetByID)
	}

	payments := rg.Group(PathPayments)
	{
		payments.GET("/:payment_id", paymentHandler.GetByID)
	}
}
