package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/facturalo/facturalo-api/internal/application/auth"
	"github.com/facturalo/facturalo-api/internal/application/billing"
	"github.com/facturalo/facturalo-api/internal/domain/entity"
	"github.com/facturalo/facturalo-api/pkg/config"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	CustomerUC   *billing.CustomerUseCase
	Orchestrator *billing.Orchestrator
	InvoiceQuery *billing.InvoiceQueryUseCase
	WSFELogUC    *billing.WSFELogUseCase
	Emisor       config.EmisorConfig
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Customers (protegido)
	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)

	// Invoices (protegido): emisión, preview, historial y PDF
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.Orchestrator, deps.InvoiceQuery, deps.Emisor)
	invoices.Post("/", invoiceHandler.Authorize)
	invoices.Post("/preview", invoiceHandler.Preview)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Get("/:id/pdf", invoiceHandler.RenderPDF)

	// Historial de intentos WSFE (protegido, solo admin)
	logHandler := NewLogHandler(deps.WSFELogUC)
	protected.Get("/logs", RequireRole(entity.RoleAdmin), logHandler.List)
}
