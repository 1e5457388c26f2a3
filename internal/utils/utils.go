package utils

import (
	"encoding/json"
	"log"
	"net/http"
)

type Envelope map[string]interface{}

func WriteJSON(w http.ResponseWriter, status int, data Envelope) {
	js, err := json.MarshalIndent(data, "", " ")
	if err != nil {
		log.Printf("error marshaling JSON: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	js = append(js, '\n')
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(js); err != nil {
		log.Printf("error writing JSON response: %v", err)
	}
}

// WriteError writes the {"error": message} envelope used by the form endpoints.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{"error": message})
}
