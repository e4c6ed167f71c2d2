package utils

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error    string `json:"error"`
	Details  string `json:"details,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// WriteJSON writes payload as JSON with the given status
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError writes an ErrorResponse; err is exposed as details when non-nil
func WriteError(w http.ResponseWriter, status int, message string, err error) {
	body := ErrorResponse{Error: message}
	if err != nil {
		body.Details = err.Error()
	}
	WriteJSON(w, status, body)
}
