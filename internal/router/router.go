// Package router exposes the upload handler over plain HTTP for local runs.
// Requests are converted into the same API Gateway event the Lambda receives.
package router

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gorilla/mux"
	"github.com/mahirjain10/image-upload-lambda/internal/handler"
	"github.com/mahirjain10/image-upload-lambda/internal/types"
	"github.com/mahirjain10/image-upload-lambda/internal/utils"
	"github.com/rs/zerolog"
)

// GatewayHandler is satisfied by handler.UploadHandler.
type GatewayHandler interface {
	Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)
}

func New(h GatewayHandler, maxBodyBytes int64, logger zerolog.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(requestLog(logger))

	router.HandleFunc("/upload", upload(h, maxBodyBytes)).Methods(http.MethodPost)
	router.HandleFunc("/upload", preflight).Methods(http.MethodOptions)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodGet)
	return router
}

func upload(h GatewayHandler, maxBodyBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, types.ErrorResponse{
					Message: "Error processing image",
					Error:   handler.MsgImageTooLarge,
				})
				return
			}
			writeJSON(w, http.StatusBadRequest, types.ErrorResponse{
				Message: "Error processing image",
				Error:   "could not read request body",
			})
			return
		}

		resp, err := h.Handle(r.Context(), toGatewayRequest(r, body))
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, types.ErrorResponse{
				Message: "Error processing image",
				Error:   err.Error(),
			})
			return
		}
		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(resp.StatusCode)
		_, _ = io.WriteString(w, resp.Body)
	}
}

func preflight(w http.ResponseWriter, r *http.Request) {
	for k, v := range handler.Headers() {
		w.Header().Set(k, v)
	}
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.WriteHeader(http.StatusNoContent)
}

func toGatewayRequest(r *http.Request, body []byte) events.APIGatewayProxyRequest {
	headers := make(map[string]string, len(r.Header))
	for k := range r.Header {
		headers[k] = r.Header.Get(k)
	}
	requestID := r.Header.Get("X-Request-Id")
	if requestID == "" {
		requestID = strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return events.APIGatewayProxyRequest{
		Resource:   r.URL.Path,
		Path:       r.URL.Path,
		HTTPMethod: r.Method,
		Headers:    headers,
		Body:       string(body),
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID:  requestID,
			HTTPMethod: r.Method,
			Path:       r.URL.Path,
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, err := utils.SerializeJSON(payload)
	if err != nil {
		status = http.StatusInternalServerError
		data = []byte(`{"message":"Error processing image","error":"failed to encode response"}`)
	}
	for k, v := range handler.Headers() {
		w.Header().Set(k, v)
	}
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLog(logger zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Dur("duration", time.Since(start)).
				Msg("http")
		})
	}
}
