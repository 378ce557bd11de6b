package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"munitask/internal/config"
	"munitask/internal/handlers"
	"munitask/internal/middleware"
	"munitask/internal/pdf"
	"munitask/internal/repositories"
	"munitask/internal/routes"
	"munitask/internal/scheduler"
	"munitask/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "munitask/docs"
)

func Run() {
	cfg := config.LoadConfig()
	middleware.SetJWTKey(cfg.Auth.JWTSecret)

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("Error de conexión a la BD: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error al cerrar la BD: %v", err)
		}
	}()

	// === Repos ===
	roleRepo := repositories.NewRoleRepository(db)
	userRepo := repositories.NewUserRepository(db)
	departmentRepo := repositories.NewDepartmentRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	fileRepo := repositories.NewFileRepository(db)
	resetRepo := repositories.NewPasswordResetRepository(db)

	// === Services ===
	authService := services.NewAuthService()
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)

	roleService := services.NewRoleService(roleRepo)
	userService := services.NewUserService(userRepo, emailService, authService)
	departmentService := services.NewDepartmentService(departmentRepo)
	fileService := services.NewFileService(fileRepo, cfg.Files.RootDir)
	taskService := services.NewTaskService(taskRepo, notificationRepo, fileService)
	notificationService := services.NewNotificationService(notificationRepo)
	resetService := services.NewPasswordResetService(userRepo, resetRepo, emailService, authService)

	// PDF para informes (TTF con acentos, p. ej. assets/fonts/DejaVuSans.ttf)
	pdfGen := pdf.NewDocumentGenerator(cfg.Files.RootDir, "assets/fonts/DejaVuSans.ttf")
	reportService := services.NewReportService(taskRepo, pdfGen)

	// === Motor de avisos de vencimiento ===
	engine := services.NewNotificationEngine(taskRepo, notificationRepo)
	sched := scheduler.New(engine, cfg.ScanInterval(), cfg.ScanTimeout())

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService, authService, resetService)
	userHandler := handlers.NewUserHandler(userService)
	roleHandler := handlers.NewRoleHandler(roleService)
	departmentHandler := handlers.NewDepartmentHandler(departmentService)
	taskHandler := handlers.NewTaskHandler(taskService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	fileHandler := handlers.NewFileHandler(fileService)
	reportHandler := handlers.NewReportHandler(reportService, cfg.Files.RootDir)

	// === Gin ===
	router := gin.Default()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(
		router,
		authHandler,
		userHandler,
		roleHandler,
		departmentHandler,
		taskHandler,
		notificationHandler,
		fileHandler,
		reportHandler,
	)

	// === Run ===
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sched.Start(); err != nil {
		log.Fatal("Error al arrancar el planificador: ", err)
	}

	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    listenAddr,
		Handler: router,
	}

	go func() {
		log.Printf("Servidor escuchando en %s", listenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Error al arrancar el servidor: ", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Señal de parada recibida, cerrando...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := sched.Stop(shutdownCtx); err != nil {
		log.Printf("Planificador no terminó a tiempo: %v", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Cierre del servidor: %v", err)
	}
	log.Printf("Servidor detenido")
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
