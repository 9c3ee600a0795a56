package main

import (
	"context"
	"log"
	"os"

	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/notifier"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Attendance Authorization & Voucher API
// @version         1.0
// @description     Approval workflows for attendance authorizations and payment vouchers.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	authorizationRepo := repository.NewAuthorizationRepository(db)
	voucherRepo := repository.NewVoucherRepository(db)
	trackingRepo := repository.NewTrackingRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	userService := service.NewUserService(userRepo)
	dictService := service.NewDictService(db)
	auditService := service.NewAuditService(auditRepo)
	authorizationService := service.NewAuthorizationService(authorizationRepo, auditRepo, txManager, wsHub)
	voucherService := service.NewVoucherService(voucherRepo, trackingRepo, auditRepo, txManager, wsHub)
	trackingService := service.NewTrackingService(trackingRepo, voucherRepo, auditRepo, txManager, wsHub)
	documentService := service.NewDocumentService(documentRepo, trackingRepo, voucherRepo, auditRepo, txManager, wsHub)

	// Seed baseline roles and permissions
	if err := dictService.SeedDefaults(context.Background()); err != nil {
		log.Println("WARNING: Failed to seed default roles/permissions:", err)
	}

	// Background deadline sweeper for delivered trackings
	sweeper := notifier.NewDeadlineSweeper(trackingService)
	go sweeper.Run(context.Background())

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	dictHandler := handler.NewDictHandler(dictService)
	auditHandler := handler.NewAuditHandler(auditService)
	authorizationHandler := handler.NewAuthorizationHandler(authorizationService)
	voucherHandler := handler.NewVoucherHandler(voucherService)
	trackingHandler := handler.NewTrackingHandler(trackingService)
	documentHandler := handler.NewDocumentHandler(documentService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// API Routing
	userHandler.RegisterRoutes(router.Group(""))
	dictHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))
	authorizationHandler.RegisterRoutes(router.Group(""))
	voucherHandler.RegisterRoutes(router.Group(""))
	trackingHandler.RegisterRoutes(router.Group(""))
	documentHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
