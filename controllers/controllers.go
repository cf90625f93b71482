package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/ohaus/element-audit/repositories"
	"github.com/ohaus/element-audit/services"
)

// writeJSON encodes data as a JSON response with the given status code
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response: "+err.Error(), http.StatusInternalServerError)
	}
}

// writeError encodes an error message as a JSON response
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// Controllers holds all controller instances
type Controllers struct {
	Auth       *AuthController
	Element    *ElementController
	Collection *CollectionController
	History    *HistoryController
}

// NewControllers creates and initializes all controller instances
func NewControllers(services *services.Services, users repositories.UserRepository) *Controllers {
	return &Controllers{
		Auth:       NewAuthController(users),
		Element:    NewElementController(services),
		Collection: NewCollectionController(services),
		History:    NewHistoryController(services),
	}
}
