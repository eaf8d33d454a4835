// @title Qubitgyan API
// @version 1.0
// @description Curriculum tree and assessment API for the Qubitgyan learning platform.
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"qubitgyan/internal/adapter"
	"qubitgyan/internal/cache"
	"qubitgyan/internal/config"
	"qubitgyan/internal/database"
	"qubitgyan/internal/handler"
	"qubitgyan/internal/logger"
	"qubitgyan/internal/middleware"
	"qubitgyan/internal/repository"
	"qubitgyan/internal/service"

	_ "qubitgyan/cmd/api/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)

		return err
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	nodeRepository := repository.NewNodeDatabaseAdapter(db)
	resourceRepository := repository.NewResourceDatabaseAdapter(db)
	quizRepository := repository.NewQuizDatabaseAdapter(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	appLogger.Info("Successfully connected to Redis")
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)

	treeCache := service.NewTreeCache(cacheAdapter, cfg.Cache.TreeTTL, cfg.Cache.FollowerTimeout)
	treeService := service.NewTreeService(nodeRepository, resourceRepository, treeCache)
	quizService := service.NewQuizService(quizRepository, resourceRepository, txManager, cfg.Quiz.AttemptLimit)
	authService := service.NewAuthService(cfg.Auth.JWTSecret)

	treeHandler := handler.NewTreeHandler(treeService)
	quizHandler := handler.NewQuizHandler(quizService)
	userHandler := handler.NewUserHandler(quizService)
	healthHandler := handler.NewHealthHandler(db, cacheAdapter)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,PUT,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))
	app.Use(recover.New())

	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/health", healthHandler.Check)

	apiGroup := app.Group("/api")

	// Public reads
	apiGroup.Get("/tree", treeHandler.GetTree)
	apiGroup.Get("/tree/nodes/:id/resources", treeHandler.ListResources)
	apiGroup.Get("/resources/:id", treeHandler.GetResource)
	apiGroup.Get("/contexts", treeHandler.ListContexts)

	// Quiz taking (authenticated)
	apiGroup.Get("/quizzes/:id", middleware.Protected(authService), quizHandler.GetQuiz)
	apiGroup.Get("/resources/:id/quiz", middleware.Protected(authService), quizHandler.GetQuizByResource)
	apiGroup.Post("/quizzes/:id/attempts", middleware.Protected(authService), quizHandler.SubmitAttempt)

	// User routes (all protected)
	userGroup := apiGroup.Group("/users", middleware.Protected(authService))
	userGroup.Get("/me/attempts", userHandler.GetMyAttempts)

	// Content management (manager role)
	manageGroup := apiGroup.Group("/manage", middleware.Protected(authService), middleware.ManagerOnly())
	manageGroup.Post("/tree/nodes", treeHandler.CreateNode)
	manageGroup.Put("/tree/nodes/reorder", treeHandler.ReorderNodes)
	manageGroup.Put("/tree/nodes/:id", treeHandler.UpdateNode)
	manageGroup.Put("/tree/nodes/:id/parent", treeHandler.SetNodeParent)
	manageGroup.Delete("/tree/nodes/:id", treeHandler.DeleteNode)
	manageGroup.Post("/resources", treeHandler.CreateResource)
	manageGroup.Put("/resources/:id", treeHandler.UpdateResource)
	manageGroup.Delete("/resources/:id", treeHandler.DeleteResource)
	manageGroup.Post("/contexts", treeHandler.CreateContext)
	manageGroup.Post("/quizzes", quizHandler.CreateQuiz)
	manageGroup.Get("/quizzes/:id", quizHandler.GetQuizForManager)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", os.Getenv("ENV")))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
