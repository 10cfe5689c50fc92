package utils

import (
	"encoding/json"
	"net/http"
)

// MessageResponse is the body of every error reply and of plain
// acknowledgements such as deletes.
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSONResponse writes a JSON response to the HTTP response writer
func WriteJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSONResponse(w, status, MessageResponse{Message: message})
}
