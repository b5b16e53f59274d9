package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/bbernstein/tidetimes/internal/api"
	"github.com/bbernstein/tidetimes/internal/models"
	"github.com/bbernstein/tidetimes/internal/station"
	"github.com/bbernstein/tidetimes/internal/tide"
	"github.com/rs/zerolog/log"
)

// TidesHandler serves tide summaries by station ID or coordinates. When a
// clientId is given the chosen station is remembered, and a later request
// with only the clientId is answered for that station.
type TidesHandler struct {
	tideService tide.TideService
	// locations is optional.
	locations models.LocationStore
}

func NewTidesHandler(tideService tide.TideService, locations models.LocationStore) *TidesHandler {
	return &TidesHandler{
		tideService: tideService,
		locations:   locations,
	}
}

func (h *TidesHandler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	params := request.QueryStringParameters
	requestID := request.RequestContext.RequestID
	log.Info().Str("request_id", requestID).Msg("Handling tides request")

	mode, err := models.ParseChartMode(params["mode"])
	if err != nil {
		return api.Error(err.Error(), http.StatusBadRequest)
	}

	clientID := params["clientId"]

	var summary *models.TideSummary
	switch {
	case params["stationId"] != "":
		summary, err = h.tideService.GetSummaryForStation(ctx, params["stationId"], mode)
	case api.HasCoordinates(params):
		lat, lon, parseErr := api.ParseCoordinates(params)
		if parseErr != nil {
			return badCoordinates(parseErr)
		}
		summary, err = h.tideService.GetSummary(ctx, lat, lon, mode)
	case clientID != "" && h.locations != nil:
		saved, loadErr := h.locations.GetLocation(ctx, clientID)
		if loadErr != nil {
			log.Error().Err(loadErr).Str("client_id", clientID).Str("request_id", requestID).Msg("Error loading saved location")
			return api.Error("Error loading saved location", http.StatusInternalServerError)
		}
		if saved == nil {
			return badCoordinates(api.ErrMissingCoordinates)
		}
		summary, err = h.tideService.GetSummaryForStation(ctx, saved.StationID, mode)
	default:
		return badCoordinates(api.ErrMissingCoordinates)
	}

	if err != nil {
		return tideError(err, requestID)
	}

	if clientID != "" && h.locations != nil {
		h.remember(ctx, clientID, summary)
	}

	return api.Success(summary)
}

// remember saves the station behind summary for clientID. Failures are
// logged and do not fail the request.
func (h *TidesHandler) remember(ctx context.Context, clientID string, summary *models.TideSummary) {
	location := models.SavedLocation{
		ClientID:  clientID,
		StationID: summary.StationID,
		Latitude:  summary.Latitude,
		Longitude: summary.Longitude,
	}
	if summary.StationName != nil {
		location.Name = *summary.StationName
	}

	if err := h.locations.SaveLocation(ctx, location); err != nil {
		log.Warn().Err(err).Str("client_id", clientID).Msg("Failed to save last location")
	}
}

func tideError(err error, requestID string) (events.APIGatewayProxyResponse, error) {
	var rangeErr *tide.InvalidRangeError
	var noaaErr *tide.NoaaAPIError

	switch {
	case errors.Is(err, station.ErrStationNotFound):
		return api.Error("Station not found", http.StatusNotFound)
	case errors.Is(err, tide.ErrNoStations):
		return api.Error("No stations found near coordinates", http.StatusNotFound)
	case errors.As(err, &rangeErr):
		return api.Error(rangeErr.Message, http.StatusBadRequest)
	case errors.As(err, &noaaErr):
		log.Error().Err(err).Str("request_id", requestID).Msg("Error fetching predictions")
		return api.Error("Error fetching tide data", http.StatusBadGateway)
	default:
		log.Error().Err(err).Str("request_id", requestID).Msg("Error getting tide data")
		return api.Error("Error getting tide data", http.StatusInternalServerError)
	}
}
