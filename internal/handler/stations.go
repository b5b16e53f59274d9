package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/bbernstein/tidetimes/internal/api"
	"github.com/bbernstein/tidetimes/internal/models"
	"github.com/bbernstein/tidetimes/internal/station"
	"github.com/rs/zerolog/log"
)

const defaultStationLimit = 5

type StationsHandler struct {
	stationFinder models.StationFinder
}

func NewStationsHandler(finder models.StationFinder) *StationsHandler {
	return &StationsHandler{
		stationFinder: finder,
	}
}

func (h *StationsHandler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	params := request.QueryStringParameters

	if stationID, ok := params["stationId"]; ok {
		st, err := h.stationFinder.FindStation(ctx, stationID)
		if errors.Is(err, station.ErrStationNotFound) || (err == nil && st == nil) {
			return api.Error("Station not found", http.StatusNotFound)
		}
		if err != nil {
			log.Error().Err(err).Str("station_id", stationID).Str("request_id", request.RequestContext.RequestID).Msg("Error finding station")
			return api.Error("Error finding station", http.StatusInternalServerError)
		}
		return api.Success(api.NewStationsResponse([]models.Station{*st}))
	}

	lat, lon, err := api.ParseCoordinates(params)
	if err != nil {
		return badCoordinates(err)
	}

	stations, err := h.stationFinder.FindNearestStations(ctx, lat, lon, api.ParseLimit(params, defaultStationLimit))
	if err != nil {
		log.Error().Err(err).Str("request_id", request.RequestContext.RequestID).Msg("Error finding stations")
		return api.Error("Error finding stations", http.StatusInternalServerError)
	}

	return api.Success(api.NewStationsResponse(stations))
}

func badCoordinates(err error) (events.APIGatewayProxyResponse, error) {
	var invalidCoordErr api.InvalidCoordinatesError
	switch {
	case errors.As(err, &invalidCoordErr):
		return api.Error(err.Error(), http.StatusBadRequest)
	case errors.Is(err, api.ErrMissingCoordinates):
		return api.Error("stationId or lat and lon are required", http.StatusBadRequest)
	default:
		return api.Error("Invalid parameters", http.StatusBadRequest)
	}
}
