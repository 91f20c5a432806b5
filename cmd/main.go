package main

import (
	"backoffice/config"
	"backoffice/database"
	"backoffice/handler"
	"backoffice/lib"
	"backoffice/middleware"
	"backoffice/repository"
	"backoffice/router"
	"backoffice/scheduler"
	"backoffice/service"
	"backoffice/worker"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
)

func main() {
	config.SetupEnvFile()
	config.SetupLogfile()

	if err := config.InitPaymentLoggers(); err != nil {
		log.Printf("Payment loggers unavailable, falling back to std log: %v", err)
	}
	defer config.ShutdownPaymentLoggers()

	middleware.PrometheusInit()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jwtSecret := config.Config("JWT_SECRET", "")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	db, err := database.ConnectDB()
	if err != nil {
		log.Fatal(err)
	}
	mongoClient, mongoDB, err := database.SetupMongoDB(ctx)
	if err != nil {
		log.Fatal(err)
	}
	conns := &database.Connections{
		DB:    db,
		Mongo: mongoClient,
		Redis: database.InitRedis(ctx),
	}
	defer conns.Close(context.Background())

	paytrCfg := config.LoadPaytrConfig()
	collectCfg := config.LoadCollectConfig()

	resolver := service.NewMerchantConfigResolver(
		repository.NewMerchantConfigRepository(db),
		collectCfg.CacheTTL,
		collectCfg.DefaultCompanyID,
	)
	paytr := lib.NewPaytrClient(paytrCfg, resolver, &http.Client{})

	payments := repository.NewPendingPaymentMongo(mongoDB)
	if err := payments.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create pending payment indexes: %v", err)
	}
	plans := repository.NewPaymentPlanMongo(mongoDB)

	orchestrator := service.NewPaymentOrchestrator(service.OrchestratorDeps{
		Tokens:    repository.NewGatewayUserTokenMongo(mongoDB),
		Merchants: resolver,
		Gateway:   paytr,
		Sources:   repository.NewSourcePaymentMongo(mongoDB),
		Payments:  payments,
		Plans:     plans,
		Locker:    repository.NewRedisLocker(conns.Redis, config.Config("COLLECT_LOCK_PREFIX", "collect:lock:")),
		Selector:  service.LastCardSelector{},
		Config:    collectCfg,
	})

	collectWorker := worker.NewCollectWorker(orchestrator, plans, collectCfg.Workers, collectCfg.BatchSize)
	// jobs already taken finish on shutdown; Stop drains them
	collectWorker.Start(context.Background())

	planScheduler := scheduler.NewPlanScheduler(plans, collectWorker, collectCfg.Cron, collectCfg.Location, collectCfg.RetryCooldown, collectCfg.BatchSize)
	schedulerEnabled := config.ConfigBool("COLLECT_SCHEDULER_ENABLED", true)
	if schedulerEnabled {
		if err := planScheduler.Start(); err != nil {
			log.Fatal(err)
		}
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		ServerHeader:  "Fiber",
		AppName:       "Backoffice",
	})

	router.SetupRoutes(app, router.Handlers{
		Collect: handler.NewCollectHandler(orchestrator, paytr, collectCfg.DefaultCompanyID),
		Health: handler.NewHealthHandler(map[string]handler.HealthCheck{
			"postgres": conns.PingPostgres,
			"mongo":    conns.PingMongo,
			"redis":    conns.PingRedis,
		}),
		JWTSecret: jwtSecret,
	})

	go func() {
		addr := ":" + config.Config("PORT", "4000")
		if err := app.Listen(addr); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}
	if schedulerEnabled {
		planScheduler.Stop()
	}
	collectWorker.Stop()

	log.Println("Server stopped gracefully.")
}
