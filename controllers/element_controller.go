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

// ElementController handles element CRUD and undelete requests
type ElementController struct {
	services *services.Services
}

// NewElementController creates a new element controller
func NewElementController(services *services.Services) *ElementController {
	return &ElementController{
		services: services,
	}
}

// Index handles GET /elements
func (c *ElementController) Index(w http.ResponseWriter, r *http.Request) {
	elements, err := c.services.Element.GetAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load elements: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, elements)
}

// Show handles GET /elements/{id}
func (c *ElementController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := elementID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid element ID")
		return
	}

	element, err := c.services.Element.GetByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "Element not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load element: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, element)
}

// Create handles POST /elements
func (c *ElementController) Create(w http.ResponseWriter, r *http.Request) {
	var form models.ElementForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	element, err := c.services.Element.Create(&form, userctx.ActorID(r.Context()))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, element)
}

// Update handles PUT /elements/{id}
func (c *ElementController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := elementID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid element ID")
		return
	}

	var form models.ElementForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	element, err := c.services.Element.Update(id, &form, userctx.ActorID(r.Context()))
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "Element not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, element)
}

// Delete handles DELETE /elements/{id}
func (c *ElementController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := elementID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid element ID")
		return
	}

	err = c.services.Element.Delete(id, userctx.ActorID(r.Context()))
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "Element not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete element: "+err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Undelete handles POST /elements/{id}/undelete
func (c *ElementController) Undelete(w http.ResponseWriter, r *http.Request) {
	id, err := elementID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid element ID")
		return
	}

	element, err := c.services.Element.Undelete(id, userctx.ActorID(r.Context()))
	if errors.Is(err, services.ErrNoDeletionRecord) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to undelete element: "+err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, element)
}

// elementID parses the {id} URL parameter
func elementID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
