// internal/app/app.go
package app

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/lionls/snoowrap/docs"
	"github.com/lionls/snoowrap/internal/actions"
	"github.com/lionls/snoowrap/internal/client"
	"github.com/lionls/snoowrap/internal/config"
	"github.com/lionls/snoowrap/internal/content"
	"github.com/lionls/snoowrap/internal/expand"
	"github.com/lionls/snoowrap/internal/parser"
	"github.com/lionls/snoowrap/internal/router"
	"github.com/lionls/snoowrap/internal/service"
)

type App struct {
	Config  *config.Config
	Echo    *echo.Echo
	Service service.ThingService
	Client  *client.RedditClient
	Parser  parser.Parser
}

// NewService builds the service stack shared by the server and the CLI.
func NewService(cfg *config.Config, opts ...client.Option) (service.ThingService, *client.RedditClient, parser.Parser, error) {
	redditClient, err := client.NewRedditClient(cfg, opts...)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create Reddit client: %w", err)
	}

	redditParser := parser.NewRedditParser()
	fetcher := content.NewFetcher(redditClient, redditParser, cfg.MoreChildrenBatchSize)
	expander := expand.NewExpander(fetcher, cfg.ExpandMaxConcurrency)
	acts := actions.New(redditClient, redditParser)

	return service.NewThingService(fetcher, expander, acts), redditClient, redditParser, nil
}

func Initialize() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	config.SetupLogging(cfg)

	svc, redditClient, redditParser, err := NewService(cfg)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/healthz", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	router.NewRouter(e, svc, cfg.WriteTimeout)

	return &App{
		Config:  cfg,
		Echo:    e,
		Service: svc,
		Client:  redditClient,
		Parser:  redditParser,
	}, nil
}

func (a *App) Start() error {
	port := a.Config.ServerPort
	if port == "" {
		port = "8080"
	}
	return a.Echo.Start(":" + port)
}
