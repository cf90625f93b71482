package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/ohaus/element-audit/models"
	"github.com/ohaus/element-audit/repositories"
	"github.com/ohaus/element-audit/services"
)

// HistoryController exposes the audit query engine: change history,
// undelete data, time travel, existence checks, and actor attribution
type HistoryController struct {
	services *services.Services
}

// NewHistoryController creates a new history controller
func NewHistoryController(services *services.Services) *HistoryController {
	return &HistoryController{
		services: services,
	}
}

// History handles GET /{category}/{id}/history?order=&limit=&offset=
func (c *HistoryController) History(category models.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target, ok := c.target(w, r, category)
		if !ok {
			return
		}

		dir := repositories.SortDesc
		if order := r.URL.Query().Get("order"); order != "" {
			dir = repositories.SortDirection(order)
			if !dir.Valid() {
				writeError(w, http.StatusBadRequest, "Order must be ASC or DESC")
				return
			}
		}

		limit := queryInt(r, "limit", 0)
		offset := queryInt(r, "offset", 0)

		entries, err := c.services.Audit.ElementHistory(target, dir, limit, offset)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load history: "+err.Error())
			return
		}

		if entries == nil {
			entries = []models.LogEntry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// UndeleteData handles GET /{category}/{id}/undelete-data
func (c *HistoryController) UndeleteData(category models.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target, ok := c.target(w, r, category)
		if !ok {
			return
		}

		entry, err := c.services.Audit.UndeleteData(target.Type, target.ID)
		if errors.Is(err, services.ErrNoDeletionRecord) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load undelete data: "+err.Error())
			return
		}

		writeJSON(w, http.StatusOK, entry)
	}
}

// TimeTravel handles GET /{category}/{id}/timetravel?until=
func (c *HistoryController) TimeTravel(category models.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target, ok := c.target(w, r, category)
		if !ok {
			return
		}

		until, err := models.ParseTimestamp(r.URL.Query().Get("until"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Query parameter 'until' must be an RFC 3339 timestamp")
			return
		}

		entries, err := c.services.Audit.TimeTravelData(target, until)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load time travel data: "+err.Error())
			return
		}

		if entries == nil {
			entries = []models.LogEntry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// ExistedAt handles GET /{category}/{id}/existed?at=
func (c *HistoryController) ExistedAt(category models.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target, ok := c.target(w, r, category)
		if !ok {
			return
		}

		at, err := models.ParseTimestamp(r.URL.Query().Get("at"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Query parameter 'at' must be an RFC 3339 timestamp")
			return
		}

		existed, err := c.services.Audit.ExistedAt(target, at)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to check existence: "+err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"existed": existed})
	}
}

// Creator handles GET /{category}/{id}/creator
func (c *HistoryController) Creator(category models.Category) http.HandlerFunc {
	return c.actor(category, func(target models.TargetRef) (*models.User, error) {
		return c.services.Audit.CreatingUser(target)
	})
}

// LastEditor handles GET /{category}/{id}/editor
func (c *HistoryController) LastEditor(category models.Category) http.HandlerFunc {
	return c.actor(category, func(target models.TargetRef) (*models.User, error) {
		return c.services.Audit.LastEditingUser(target)
	})
}

// actor renders a nullable attribution result. "No recorded actor" is a
// normal outcome and renders as a null user, not an error.
func (c *HistoryController) actor(category models.Category, lookup func(models.TargetRef) (*models.User, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target, ok := c.target(w, r, category)
		if !ok {
			return
		}

		user, err := lookup(target)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to resolve actor: "+err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]*models.User{"user": user})
	}
}

// target builds the stream address from the route's {id} and the handler's
// category. Responds with an error and returns false when the request is bad.
func (c *HistoryController) target(w http.ResponseWriter, r *http.Request, category models.Category) (models.TargetRef, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return models.TargetRef{}, false
	}

	target, err := models.TargetOf(category, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return models.TargetRef{}, false
	}

	return target, true
}

// queryInt parses an optional integer query parameter
func queryInt(r *http.Request, name string, fallback int) int {
	value := r.URL.Query().Get(name)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
