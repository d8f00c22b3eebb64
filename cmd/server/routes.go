package main

import (
	"finance-reporting/internal/config"
	"finance-reporting/internal/handlers"
	"finance-reporting/internal/middleware"
	"finance-reporting/internal/services"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodySize = "10M"

type routeHandlers struct {
	auth         *handlers.AuthHandler
	transactions *handlers.TransactionHandler
	health       *handlers.HealthCheckHandler
	dev          *handlers.DevHandler
	tokenService services.TokenServiceInterface
}

func newEcho(cfg *config.Config, limiter *middleware.RateLimiter) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.CustomHTTPErrorHandler
	e.Validator = handlers.NewValidator()

	e.Use(middleware.RequestID())
	e.Use(middleware.PanicRecovery())
	e.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.Server.CORSAllowOrigins,
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, middleware.TraceIDHeader},
		ExposeHeaders: []string{echo.HeaderContentDisposition, middleware.TraceIDHeader},
	}))
	e.Use(echomw.BodyLimit(maxBodySize))
	e.Use(limiter.Middleware())

	return e
}

func registerRoutes(e *echo.Echo, cfg *config.Config, h routeHandlers) {
	e.GET("/", h.health.Root)
	e.GET("/health", h.health.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	requireAuth := middleware.RequireAuth(h.tokenService)

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", h.auth.Register)
	auth.POST("/login", h.auth.Login)
	auth.GET("/me", h.auth.Me, requireAuth)

	transactions := api.Group("/transactions", requireAuth)
	transactions.GET("", h.transactions.ListTransactions)
	transactions.GET("/analytics", h.transactions.GetAnalytics)
	transactions.GET("/filters", h.transactions.GetFilterOptions)
	transactions.POST("/export", h.transactions.ExportTransactions)

	if h.dev != nil && !cfg.IsProduction() {
		dev := api.Group("/dev", requireAuth, handlers.RejectOutsideDevelopment(cfg.Server.Environment))
		dev.POST("/transactions/generate", h.dev.GenerateTestData)
	}
}
