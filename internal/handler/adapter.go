package handler

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/bbernstein/tidetimes/internal/api"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RequestIDHeader carries the request ID in and out of the local server.
const RequestIDHeader = "X-Request-Id"

// LambdaFunc is the API Gateway handler signature shared by both Lambdas.
type LambdaFunc func(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

type requestIDKey struct{}

// RequestID returns the ID stored by WithRequestID, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithRequestID tags each request with an ID, reusing the caller's
// X-Request-Id when present, and logs it once served.
func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))

		log.Info().
			Str("request_id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Served request")
	})
}

// HTTPAdapter serves a Lambda handler over plain HTTP. Only the first value
// of a repeated query parameter is passed on, as API Gateway does.
func HTTPAdapter(fn LambdaFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		params := make(map[string]string)
		for k, v := range r.URL.Query() {
			if len(v) > 0 {
				params[k] = v[0]
			}
		}

		headers := make(map[string]string, len(r.Header))
		for k := range r.Header {
			headers[k] = r.Header.Get(k)
		}

		request := events.APIGatewayProxyRequest{
			HTTPMethod:            r.Method,
			Path:                  r.URL.Path,
			Headers:               headers,
			QueryStringParameters: params,
			RequestContext: events.APIGatewayProxyRequestContext{
				RequestID: RequestID(r.Context()),
			},
		}

		resp, err := fn(r.Context(), request)
		if err != nil {
			log.Error().Err(err).Str("request_id", request.RequestContext.RequestID).Msg("Handler failed")
			resp, _ = api.Error("Internal Server Error", http.StatusInternalServerError)
		}

		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		if resp.StatusCode == 0 {
			resp.StatusCode = http.StatusOK
		}
		w.WriteHeader(resp.StatusCode)
		if _, err := io.WriteString(w, resp.Body); err != nil {
			log.Warn().Err(err).Msg("Failed to write response body")
		}
	})
}
