package main

import (
	"context"
	"log"
	"mime"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/scoutlinkhq/scoutlink_backend/config"
	"github.com/scoutlinkhq/scoutlink_backend/middleware"
	"github.com/scoutlinkhq/scoutlink_backend/routes"
	"github.com/scoutlinkhq/scoutlink_backend/services"
	"github.com/scoutlinkhq/scoutlink_backend/utils"
	"github.com/scoutlinkhq/scoutlink_backend/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	_ = mime.AddExtensionType(".svg", "image/svg+xml")

	// Initialize Firebase
	config.InitFirebase()

	// Connect to Redis
	config.ConnectRedis()

	// Connect to database
	client := config.ConnectDB()

	// Create WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// OTP delivery and verification
	otpService := services.NewOTPService(services.NewRedisOTPStore(config.GetRedisClient()))

	// Currency cache, refreshed in the background
	currencyService := services.NewCurrencyService()
	currencyService.StartRefreshLoop(context.Background())

	// Create a new Echo instance
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.ValidateRequestContentType())
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: []string{"*"},
		AllowInlineJS:  true,
		AllowEval:      false,
	}))

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "ScoutLink Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	e.Use(httpsRedirect())

	// Register routes
	routes.RegisterAuthRoutes(e, client, otpService)
	routes.RegisterOTPRoutes(e, otpService)
	routes.RegisterUserRoutes(e, client)
	routes.RegisterVideoRoutes(e, client)
	routes.RegisterMessageRoutes(e, client, wsHub)
	routes.RegisterNotificationRoutes(e, client)
	routes.RegisterSubscriptionRoutes(e, client, currencyService)
	routes.RegisterCurrencyRoutes(e, currencyService)
	routes.RegisterAdminRoutes(e, client)

	// Clean up the token blacklist in the background
	go middleware.CleanupBlacklist()

	// Start the inactive user checker in a goroutine
	go func() {
		for {
			middleware.MarkInactiveUsers(client, config.GetDBName(), 30*time.Minute)
			time.Sleep(5 * time.Minute)
		}
	}()

	// Ensure uploads directories exist
	if err := utils.InitializeStorage(); err != nil {
		log.Printf("Warning: failed to initialize upload storage: %v", err)
	}
	e.Static("/uploads", "uploads")

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}

func httpsRedirect() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("X-Forwarded-Proto") == "http" {
				return c.Redirect(301, "https://"+c.Request().Host+c.Request().RequestURI)
			}
			return next(c)
		}
	}
}
