package main

import (
	"html/template"
	"log/slog"
	"math"

	"forecast-mailer/internal/config"
	"forecast-mailer/internal/pipeline"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humagin"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// App encapsulates application dependencies
type App struct {
	router   *gin.Engine
	api      huma.API
	logger   *slog.Logger
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	limiter  *rate.Limiter
}

// NewApp creates a new application with injected dependencies
func NewApp(cfg *config.Config, logger *slog.Logger, p *pipeline.Pipeline) *App {
	// Set Gin mode from configuration
	gin.SetMode(cfg.Server.GinMode)

	// Create Gin router
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.SetHTMLTemplate(template.Must(template.New("form").Parse(formTemplate)))

	// Create Huma API on top of the gin router
	humaConfig := huma.DefaultConfig("Forecast Mailer API", "1.0.0")
	humaConfig.Info.Description = "Fetch a 5-day weather forecast, chart it and email the chart"
	humaConfig.Servers = []*huma.Server{
		{URL: "http://localhost" + cfg.GetServerAddr(), Description: "Development server"},
	}

	app := &App{
		router:   router,
		api:      humagin.New(router, humaConfig),
		logger:   logger.With("component", "api"),
		cfg:      cfg,
		pipeline: p,
		limiter:  newSendLimiter(cfg.RateLimit),
	}

	logger.Info("application initialized")

	// Register routes
	app.registerRoutes()

	return app
}

// Run starts the HTTP server
func (app *App) Run(addr string) error {
	return app.router.Run(addr)
}

// newSendLimiter bounds how often emails can be triggered. A non-positive
// rate disables the limit.
func newSendLimiter(cfg config.RateLimitConfig) *rate.Limiter {
	if cfg.SendsPerSecond <= 0 || math.IsInf(cfg.SendsPerSecond, 1) {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.SendsPerSecond), burst)
}
