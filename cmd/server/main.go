package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/postflow/configs"
	"github.com/maheshrc27/postflow/internal/api/handlers"
	"github.com/maheshrc27/postflow/internal/api/middleware"
	"github.com/maheshrc27/postflow/internal/cache"
	job "github.com/maheshrc27/postflow/internal/jobs"
	"github.com/maheshrc27/postflow/internal/metrics"
	"github.com/maheshrc27/postflow/internal/platform"
	"github.com/maheshrc27/postflow/internal/queue"
	"github.com/maheshrc27/postflow/internal/repository"
	"github.com/maheshrc27/postflow/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()
	ctx := context.Background()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	tables, err := platform.Load(cfg.PlatformTablesPath)
	if err != nil {
		log.Fatalf("Failed to load platform tables: %v", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	var store cache.Store
	var memoryStore *cache.MemoryStore
	var redisClient *redis.Client
	switch cfg.CacheBackend {
	case "redis":
		redisClient, err = cache.Connect(ctx, cfg.RedisURI)
		if err != nil {
			log.Fatalf("Redis cache is unreachable: %v", err)
		}
		defer redisClient.Close()
		store = cache.NewRedisStore(redisClient)
	default:
		memoryStore = cache.NewMemoryStore()
		store = memoryStore
	}
	log.Printf("Using %s cache with ttl %s", cfg.CacheBackend, cfg.CacheTTL)

	redisConn := asynqRedisOpt(cfg.RedisURI)
	client := asynq.NewClient(redisConn)
	defer client.Close()

	inspector := asynq.NewInspector(redisConn)
	defer inspector.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    4 * 1024 * 1024, // 4 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(middleware.RequestMetrics(collector))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	historyRepo := repository.NewHistoricalPostRepository(db)
	ruleRepo := repository.NewScheduleRuleRepository(db)
	scheduledPostRepo := repository.NewScheduledPostRepository(db)

	var exporter service.ScheduleExporter
	if cfg.R2.Enabled() {
		r2Service, err := service.NewR2Service(ctx, *cfg)
		if err != nil {
			log.Fatalf("Failed to configure schedule export: %v", err)
		}
		exporter = r2Service
	} else {
		log.Println("Warning: R2 is not configured, schedule export is disabled")
	}

	predictionService := service.NewPredictionService(tables, store, cfg.CacheTTL, collector)
	optimizerService := service.NewOptimizerService(tables, store, cfg.CacheTTL, collector)
	simulationService := service.NewSimulationService(tables, predictionService)
	scheduleService := service.NewScheduleService(optimizerService, historyRepo, collector)
	ruleService := service.NewRuleService(ruleRepo)
	calendarService := service.NewCalendarService(db, ruleService, scheduleService, scheduledPostRepo,
		queue.NewDispatcher(client, inspector), exporter, cfg.DefaultTimezone)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	health := handlers.NewHealthHandler(map[string]handlers.HealthCheck{
		"postgres": db.PingContext,
		"redis": func(ctx context.Context) error {
			if redisClient == nil {
				return nil
			}
			return redisClient.Ping(ctx).Err()
		},
	})
	app.Get("/healthz", health.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	engagement := handlers.NewEngagementHandler(predictionService, optimizerService, simulationService, historyRepo)
	api.Post("/predict", engagement.Predict)
	api.Post("/optimal-times", engagement.OptimalTimes)
	api.Post("/simulate", engagement.Simulate)

	schedule := handlers.NewScheduleHandler(calendarService)
	api.Post("/schedule/generate", schedule.GenerateSchedule)
	api.Post("/schedule/commit", schedule.CommitSchedule)
	api.Post("/schedule/export", schedule.ExportSchedule)

	rules := handlers.NewRuleHandler(ruleService)
	api.Get("/rules", rules.ListRules)
	api.Post("/rules/create", rules.CreateRule)
	api.Post("/rules/toggle", rules.ToggleRule)
	api.Post("/rules/remove", rules.RemoveRule)

	// cron jobs
	refreshJob := job.NewScheduleRefreshJob(ruleRepo, calendarService)

	// queue
	queueW := queue.NewQueue(scheduledPostRepo)

	c := cron.New()
	if err := c.AddFunc(cfg.ScheduleRefresh, refreshJob.RefreshSchedules); err != nil {
		log.Fatalf("Invalid SCHEDULE_REFRESH spec %q: %v", cfg.ScheduleRefresh, err)
	}
	if memoryStore != nil {
		c.AddFunc("@every 00h05m00s", func() {
			if n := memoryStore.Sweep(); n > 0 {
				log.Printf("Swept %d expired cache entries", n)
			}
		})
	}
	c.Start()

	server := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
	})

	go func() {
		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeSlotDue, queueW.HandleSlotDueTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on http://localhost:%s", cfg.Port)

	gracefulShutdown(app, server, c, db)
}

func asynqRedisOpt(uri string) asynq.RedisConnOpt {
	if strings.Contains(uri, "://") {
		opt, err := asynq.ParseRedisURI(uri)
		if err == nil {
			return opt
		}
		log.Printf("Warning: invalid REDIS_URI for queue, using it as an address: %v", err)
	}
	return asynq.RedisClientOpt{Addr: uri}
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, server *asynq.Server, c *cron.Cron, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	c.Stop()
	server.Shutdown()

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
