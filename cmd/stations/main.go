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
	lambdaStart     = lambda.Start // Allow mocking of lambda.Start in tests
	stationsHandler *handler.StationsHandler
	setupOnce       sync.Once
)

func initializeService() {
	setupOnce.Do(func() {
		cfg := config.LoadFromEnv()
		cfg.InitializeLogging()

		cacheCfg := config.GetCacheConfig()
		// Stations never read predictions.
		cacheCfg.EnableFeedCache = false

		services, err := app.New(context.Background(), cfg, cacheCfg, config.DefaultTimelineConfig())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize station finder")
		}

		stationsHandler = handler.NewStationsHandler(services.StationFinder)
	})
}

func handleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if stationsHandler == nil {
		resp, _ := api.Error("Handler not initialized", http.StatusInternalServerError)
		return resp, errors.New("handler not initialized")
	}
	return stationsHandler.HandleRequest(ctx, request)
}

func main() {
	initializeService()
	lambdaStart(handleRequest)
}
