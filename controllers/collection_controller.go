package controllers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/ohaus/element-audit/models"
	"github.com/ohaus/element-audit/services"
	"github.com/ohaus/element-audit/userctx"
)

// CollectionController handles collection management requests
type CollectionController struct {
	services *services.Services
}

// NewCollectionController creates a new collection controller
func NewCollectionController(services *services.Services) *CollectionController {
	return &CollectionController{
		services: services,
	}
}

// Index handles GET /collections
func (c *CollectionController) Index(w http.ResponseWriter, r *http.Request) {
	collections, err := c.services.Collection.GetAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load collections: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, collections)
}

// Show handles GET /collections/{id}
func (c *CollectionController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid collection ID")
		return
	}

	collection, err := c.services.Collection.GetByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "Collection not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load collection: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, collection)
}

// Create handles POST /collections
func (c *CollectionController) Create(w http.ResponseWriter, r *http.Request) {
	var form models.CollectionForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	collection, err := c.services.Collection.Create(&form, userctx.ActorID(r.Context()))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, collection)
}

// Update handles PUT /collections/{id}
func (c *CollectionController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid collection ID")
		return
	}

	var form models.CollectionForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	collection, err := c.services.Collection.Update(id, &form, userctx.ActorID(r.Context()))
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "Collection not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, collection)
}

// Delete handles DELETE /collections/{id}
func (c *CollectionController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid collection ID")
		return
	}

	err = c.services.Collection.Delete(id, userctx.ActorID(r.Context()))
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "Collection not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete collection: "+err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RemoveElement handles POST /collections/{id}/remove/{elementID}
func (c *CollectionController) RemoveElement(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid collection ID")
		return
	}

	elementID, err := strconv.ParseInt(chi.URLParam(r, "elementID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid element ID")
		return
	}

	err = c.services.Collection.RemoveElement(id, elementID, userctx.ActorID(r.Context()))
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
