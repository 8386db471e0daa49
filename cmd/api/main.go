package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/Asignacion-api/internal/application/allocation"
	"github.com/jhoicas/Asignacion-api/internal/infrastructure/email"
	"github.com/jhoicas/Asignacion-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Asignacion-api/internal/infrastructure/redisbroker"
	httpRouter "github.com/jhoicas/Asignacion-api/internal/interfaces/http"
	"github.com/jhoicas/Asignacion-api/pkg/config"
	"github.com/jhoicas/Asignacion-api/pkg/logger"
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
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("esquema de la base de datos")
	}

	redisClient := redisbroker.NewClient(cfg.Redis)
	defer redisClient.Close()

	// Notificador: correo si hay SMTP configurado; si no, solo log.
	var notifier allocation.Notifier
	if cfg.SMTP.Host != "" {
		notifier = email.NewNotifier(cfg.SMTP)
	} else {
		notifier = email.NewLogNotifier(log)
	}

	uowFactory := postgres.NewFactory(pool)
	view := postgres.NewAllocationView(pool)
	publisher := redisbroker.NewEventPublisher(redisClient)

	svc := allocation.NewService(uowFactory, publisher, notifier, view, cfg.Alerts.StockTo)
	bus := allocation.NewBus(log, svc)

	// Consumidor de change_batch_quantity (integración con compras).
	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	consumer := redisbroker.NewConsumer(redisClient, bus, log)
	go func() {
		if err := consumer.Run(consumerCtx); err != nil && consumerCtx.Err() == nil {
			log.Error().Err(err).Msg("consumidor redis finalizado")
		}
	}()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Bus:  bus,
		View: view,
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
	stopConsumer()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
