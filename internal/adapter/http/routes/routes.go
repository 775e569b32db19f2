package routes

import (
	"log"
	"os"
	"strconv"

	_ "solarquote/docs" // This will be auto-generated
	"solarquote/internal/adapter/http/handlers"
	repository2 "solarquote/internal/adapter/persistence/repository"
	"solarquote/internal/infrastructure/database"
	"solarquote/internal/infrastructure/payments"
	"solarquote/internal/usecase"
	"solarquote/internal/usecase/interfaces"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var router = gin.Default()

const PORT = 8080

// Run will start the server
func Run() {
	setMiddlewares()

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	getRoutes()

	err := router.Run(":" + strconv.Itoa(PORT))
	if err != nil {
		log.Fatalf("Failed to startup the application: %v", err.Error())
	}
}

func getRoutes() {
	ddb := database.ConnectDynamoDB()

	quoteRepo := repository2.NewQuoteDynamoRepository(ddb)
	productRepo := repository2.NewProductDynamoRepository(ddb)
	orgRepo := repository2.NewOrganizationDynamoRepository(ddb)
	paymentRepo := repository2.NewQuotePaymentDynamoRepository(ddb)

	quoteUseCase := usecase.NewQuoteUseCase(quoteRepo, productRepo, orgRepo)
	catalogUseCase := usecase.NewCatalogUseCase(productRepo)

	var paymentGateway interfaces.IPaymentGateway
	mpGateway, err := payments.NewMercadoPagoGateway(os.Getenv("MERCADOPAGO_ACCESS_TOKEN"))
	if err != nil {
		log.Printf("Mercado Pago gateway not configured: %v", err)
	} else {
		paymentGateway = mpGateway
	}

	paymentUseCase := usecase.NewQuotePaymentUseCase(paymentRepo, quoteRepo, paymentGateway)

	quoteHandler := handlers.NewQuoteHandler(quoteUseCase)
	catalogHandler := handlers.NewCatalogHandler(catalogUseCase)
	paymentHandler := handlers.NewQuotePaymentHandler(paymentUseCase)

	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addQuoteRoutes(v1, quoteHandler, catalogHandler, paymentHandler)
}

func setMiddlewares() {
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("Recovered from panic: %v", recovered)
		c.AbortWithStatus(500)
	}))
}
