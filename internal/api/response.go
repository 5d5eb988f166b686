// Package api provides HTTP response utilities for Reframe.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/reframe-app/reframe/internal/models"
)

// fallbackErrorJSON is marshaled once at startup so a broken response payload
// can never leave a handler without a valid JSON body.
var fallbackErrorJSON = mustMarshal(models.Error("Internal server error"))

func mustMarshal(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic("api: fallback response does not marshal: " + err.Error())
	}
	return data
}

// writeJSONResponse marshals response before touching the ResponseWriter so an
// encoding failure can still downgrade the status code.
func writeJSONResponse(w http.ResponseWriter, statusCode int, response interface{}) {
	body, err := json.Marshal(response)
	if err != nil {
		slog.Error("Server.writeJSONResponse: failed to marshal JSON response", "error", err)
		body = fallbackErrorJSON
		statusCode = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		slog.Error("Server.writeJSONResponse: failed to write response body", "error", err)
	}
}
