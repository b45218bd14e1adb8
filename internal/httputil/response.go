package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// envelope is the response wrapper the prediction API uses for all domain
// endpoints: {"success": true, "data": ...} on success and
// {"success": false, "error": "..."} on failure.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode json response: %v", err)
	}
}

// WriteSuccess writes a 200 response wrapping data in the success envelope.
func WriteSuccess(w http.ResponseWriter, data interface{}) {
	WriteJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

// WriteFailure writes an error response in the failure envelope.
func WriteFailure(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, envelope{Success: false, Error: msg})
}

// MethodNotAllowed writes a 405 Method Not Allowed response.
func MethodNotAllowed(w http.ResponseWriter) {
	WriteFailure(w, http.StatusMethodNotAllowed, "method not allowed")
}

// BadRequest writes a 400 Bad Request response with the given message.
func BadRequest(w http.ResponseWriter, msg string) {
	WriteFailure(w, http.StatusBadRequest, msg)
}

// InternalServerError writes a 500 Internal Server Error response.
func InternalServerError(w http.ResponseWriter, msg string) {
	WriteFailure(w, http.StatusInternalServerError, msg)
}
