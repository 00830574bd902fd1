package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/facturalo/facturalo-api/internal/application/auth"
	"github.com/facturalo/facturalo-api/internal/application/billing"
	infrapdf "github.com/facturalo/facturalo-api/internal/infrastructure/pdf"
	"github.com/facturalo/facturalo-api/internal/infrastructure/postgres"
	"github.com/facturalo/facturalo-api/internal/infrastructure/wsfe"
	httpRouter "github.com/facturalo/facturalo-api/internal/interfaces/http"
	"github.com/facturalo/facturalo-api/pkg/config"
	"github.com/facturalo/facturalo-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("arca_env", cfg.ARCA.Environment).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	wsfeLogRepo := postgres.NewWSFELogRepository(pool)

	// Cliente del proxy WSFE: la app nunca habla SOAP directo con ARCA,
	// delega en el microservicio fev1.
	wsfeClient := wsfe.NewClient(cfg.ARCA.ProxyURL)
	attemptLogger := postgres.NewAttemptLogger(wsfeLogRepo, log)

	pdfGenerator := infrapdf.NewMarotoPDFGenerator()

	orchestrator := billing.NewOrchestrator(
		wsfeClient, customerRepo, invoiceRepo, pdfGenerator, attemptLogger, log,
	)
	customerUC := billing.NewCustomerUseCase(customerRepo)
	invoiceQueryUC := billing.NewInvoiceQueryUseCase(invoiceRepo, pdfGenerator)
	wsfeLogUC := billing.NewWSFELogUseCase(wsfeLogRepo)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 90, // la autorización espera la ida y vuelta a ARCA
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Facturalo API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		CustomerUC:   customerUC,
		Orchestrator: orchestrator,
		InvoiceQuery: invoiceQueryUC,
		WSFELogUC:    wsfeLogUC,
		Emisor:       cfg.Emisor,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
