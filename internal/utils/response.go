package utils

import (
	"encoding/json"
	"net/http"

	"VITALSENSE_BACK-END/internal/dto"
)

// WriteJSONResponse writes a JSON response to the HTTP response writer
func WriteJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteErrorResponse writes a JSON error response with a short error label
// and a human-readable message
func WriteErrorResponse(w http.ResponseWriter, status int, errLabel, message string) {
	WriteJSONResponse(w, status, dto.ErrorResponse{
		Error:   errLabel,
		Message: message,
	})
}
