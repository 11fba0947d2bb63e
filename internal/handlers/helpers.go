package handlers

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// WriteStarted writes a standard "started" JSON response for async
// operations, returning the job ID the client should poll.
func WriteStarted(w http.ResponseWriter, jobID, message string) error {
	return WriteJSON(w, http.StatusAccepted, map[string]string{
		"status":  "started",
		"job_id":  jobID,
		"message": message,
	})
}
