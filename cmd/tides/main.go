package main

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/bbernstein/tidetimes/internal/api"
	"github.com/bbernstein/tidetimes/internal/app"
	"github.com/bbernstein/tidetimes/internal/config"
	"github.com/bbernstein/tidetimes/internal/handler"
	"github.com/rs/zerolog/log"
)

var (
	lambdaStart  = lambda.Start // Allow mocking of lambda.Start in tests
	tidesHandler *handler.TidesHandler
	setupOnce    sync.Once
)

func initializeService() {
	setupOnce.Do(func() {
		cfg := config.LoadFromEnv()
		cfg.InitializeLogging()

		services, err := app.New(context.Background(), cfg, config.GetCacheConfig(), config.GetTimelineConfig())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize tide service")
		}

		tidesHandler = handler.NewTidesHandler(services.TideService, services.Locations)
		log.Info().Str("env", cfg.Environment).Msg("Tides handler initialized")
	})
}

func handleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if tidesHandler == nil {
		resp, _ := api.Error("Handler not initialized", http.StatusInternalServerError)
		return resp, errors.New("handler not initialized")
	}
	return tidesHandler.HandleRequest(ctx, request)
}

func main() {
	initializeService()
	lambdaStart(handleRequest)
}
