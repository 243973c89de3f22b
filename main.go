package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parentic-api/internal/ai"
	"parentic-api/internal/auth"
	"parentic-api/internal/config"
	"parentic-api/internal/middleware"
	"parentic-api/internal/profile"
	"parentic-api/internal/service"
	"parentic-api/internal/transport/http"
	"parentic-api/internal/vector"
	"parentic-api/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

var startTime time.Time

func main() {
	startTime = time.Now()
	cfg := config.Load()
	profile.InitDB(cfg)

	aiClient := ai.NewClient(cfg.OllamaURL, cfg.OllamaModel)
	log.Printf("✅ [AI] Ollama client initialized (URL: %s, model: %s)", cfg.OllamaURL, aiClient.Model())
	go aiClient.EnsureModelAvailable(context.Background())

	vectorClient := vector.NewClient(cfg.ChromaURL)
	log.Printf("✅ [VECTOR] Chroma client initialized (URL: %s)", cfg.ChromaURL)

	keycloakClient := auth.NewKeycloakClient(cfg.KeycloakURL, cfg.KeycloakRealm, cfg.KeycloakClientID)
	log.Printf("✅ [AUTH] Keycloak client initialized (realm: %s, client: %s)", cfg.KeycloakRealm, cfg.KeycloakClientID)

	// Profile photo storage is optional; run without it if R2 is unset.
	// Declared as the interface so an unconfigured client stays nil.
	var photoClient http.PhotoStore
	if cfg.R2AccountID != "" {
		client, err := utils.NewProfilePhotoClient(utils.ProfilePhotoConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		})
		if err != nil {
			log.Fatalf("❌ [R2] Failed to initialize photo client: %v", err)
		}
		photoClient = client
		log.Println("✅ [R2] Profile photo client initialized")
	} else {
		log.Println("⚠️ Photo uploads disabled (no R2 configuration)")
	}

	svc := service.NewParenticService(profile.GetDB(), aiClient, vectorClient)
	handler := http.NewHandler(svc, aiClient, vectorClient, photoClient)
	log.Println("✅ [SERVICE] ParenticService & Handler initialized")

	app := fiber.New(fiber.Config{
		AppName:      "parentic-api",
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Requested-With",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(logger.New(logger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))

	// 1. Public routes
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":   "Welcome to ParenticAI API",
			"status":    "running",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		uptime := time.Since(startTime).Round(time.Second)
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"service":   "parentic-api",
			"uptime":    uptime.String(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	app.Get("/api/status", handler.Status)
	app.Get("/api/child-options", handler.ChildOptions)
	app.Get("/api/ollama/models", handler.ListModels)
	app.Get("/api/community/messages", handler.GetCommunityMessages)
	log.Println("✅ [ROUTES] Registered public routes: /, /health, /api/status, /api/child-options, /api/ollama/models")

	// 2. Auth-guarded routes (Keycloak bearer token)
	guarded := app.Group("/api", middleware.KeycloakAuth(keycloakClient, svc))
	guarded.Post("/chat", handler.Chat)
	guarded.Get("/chat/history", handler.ChatHistory)
	guarded.Post("/community/messages", handler.CreateCommunityMessage)
	guarded.Post("/users", handler.UpsertUser)
	guarded.Get("/users/:keycloak_id", handler.GetUser)
	guarded.Post("/parents", handler.UpsertParent)
	guarded.Post("/parents/photo", handler.UploadParentPhoto)
	guarded.Get("/parents/:keycloak_id", handler.GetParent)
	guarded.Post("/children", handler.CreateChild)
	guarded.Put("/children/:child_id", handler.UpdateChild)
	guarded.Delete("/children/:child_id", handler.DeleteChild)
	guarded.Get("/children/:keycloak_id", handler.ListChildren)
	guarded.Get("/search/children", handler.SearchChildren)
	guarded.Get("/search/chat", handler.SearchChat)
	log.Println("✅ [ROUTES] Registered guarded routes: /api/chat*, /api/community, /api/users*, /api/parents*, /api/children*, /api/search/*")

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("🛑 [SHUTDOWN] Graceful shutdown initiated...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ [SHUTDOWN] Error: %v", err)
		}
	}()

	log.Printf("🚀 parentic-api starting...")
	log.Printf("   🔗 Listening on port: %s", cfg.ServerPort)
	log.Printf("   🌐 CORS allowed origins: %s", cfg.AllowedOrigins)
	log.Printf("   🤖 Ollama: %s (%s)", cfg.OllamaURL, aiClient.Model())
	log.Printf("   📚 Chroma: %s", cfg.ChromaURL)
	log.Printf("   🔐 Keycloak realm: %s", cfg.KeycloakRealm)
	log.Println("✅ Server ready.")

	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		log.Fatalf("❌ [STARTUP] Server failed to start: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var errMsg string
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		errMsg = e.Message
	} else {
		errMsg = err.Error()
	}
	log.Printf("🔥 [ERROR] [%d] %s %s → %v | IP=%s",
		code,
		c.Method(),
		c.Path(),
		errMsg,
		c.IP(),
	)
	return c.Status(code).JSON(fiber.Map{
		"error": "something went wrong",
	})
}
