// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lionls/snoowrap/internal/app"
)

// @title snoowrap API
// @version 1.0
// @description Loads Reddit submissions and comments, expands their reply trees under a branching and depth budget, and applies one-shot actions.
//
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
//
// @BasePath /

func main() {
	application, err := app.Initialize()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}

	go func() {
		if err := application.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Server error")
		}
	}()

	log.Info().Str("port", application.Config.ServerPort).Msg("Server started")
	log.Info().Msgf("Swagger documentation available at http://localhost:%s/swagger/index.html", application.Config.ServerPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := application.Echo.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Server stopped")
}
