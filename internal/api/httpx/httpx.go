// Package httpx holds the JSON response helpers shared by all handlers.
// Error bodies always carry a stable machine-readable code next to the
// human-readable message so clients never have to parse message text.
package httpx

import (
	"encoding/json"
	"net/http"
)

type APIError struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders the error envelope. Details is optional and is used for
// structured payloads such as field validation errors.
func WriteError(w http.ResponseWriter, status int, code, msg string, details interface{}) {
	WriteJSON(w, status, APIError{Error: msg, Code: code, Details: details})
}
