package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"example.com/daynotes/internal/notes"
	"example.com/daynotes/internal/service"
)

type saveRequest struct {
	Date    string `json:"date"`
	Content string `json:"content"`
}

type renameRequest struct {
	OldDate     string `json:"old_date"`
	NewDate     string `json:"new_date"`
	CustomTitle string `json:"custom_title"`
}

type noteResponse struct {
	Content     string     `json:"content"`
	LastUpdated *time.Time `json:"last_updated"`
	Date        string     `json:"date"`
	CustomTitle *string    `json:"custom_title"`
	Error       string     `json:"error,omitempty"`
}

type saveResponse struct {
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	LastUpdated time.Time `json:"last_updated"`
	Date        string    `json:"date"`
}

type deleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Date    string `json:"date"`
}

type renameResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	OldDate string `json:"old_date,omitempty"`
	NewDate string `json:"new_date,omitempty"`
}

type datesResponse struct {
	Dates []notes.Summary `json:"dates"`
	Count int             `json:"count"`
	Error string          `json:"error,omitempty"`
}

// requestDate resolves the effective date exactly once per request:
// the explicit parameter when given, today otherwise.
func (a *API) requestDate(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return a.svc.Today()
}

func (a *API) getNote(w http.ResponseWriter, r *http.Request) {
	date := a.requestDate(r.URL.Query().Get("date"))

	view, err := a.svc.GetNote(r.Context(), date)
	if errors.Is(err, service.ErrBadDate) {
		writeJSON(w, http.StatusBadRequest, noteResponse{Date: date, Error: err.Error()})
		return
	}
	if err != nil {
		// Reads degrade: full default shape plus an error marker.
		writeJSON(w, http.StatusInternalServerError, noteResponse{Date: date, Error: err.Error()})
		return
	}

	resp := noteResponse{
		Content:     view.Content,
		LastUpdated: view.LastUpdated,
		Date:        view.Date,
	}
	if view.CustomTitle != "" {
		resp.CustomTitle = &view.CustomTitle
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) saveNote(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, saveResponse{Message: "invalid json"})
		return
	}
	date := a.requestDate(req.Date)

	res, err := a.svc.SaveNote(r.Context(), date, req.Content)
	if errors.Is(err, service.ErrBadDate) {
		writeJSON(w, http.StatusBadRequest, saveResponse{Message: err.Error(), Date: date})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, saveResponse{Message: "save failed", Date: date})
		return
	}

	msg := "saved"
	if res.Deleted {
		msg = "empty content, record removed"
	}
	writeJSON(w, http.StatusOK, saveResponse{
		Success:     true,
		Message:     msg,
		LastUpdated: res.LastUpdated,
		Date:        res.Date,
	})
}

func (a *API) deleteNote(w http.ResponseWriter, r *http.Request) {
	date := a.requestDate(r.URL.Query().Get("date"))

	res, err := a.svc.DeleteNote(r.Context(), date)
	if errors.Is(err, service.ErrBadDate) {
		writeJSON(w, http.StatusBadRequest, deleteResponse{Message: err.Error(), Date: date})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, deleteResponse{Message: "delete failed", Date: date})
		return
	}

	if !res.Existed {
		writeJSON(w, http.StatusOK, deleteResponse{Message: "record not found", Date: date})
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Success: true, Message: "record deleted", Date: date})
}

func (a *API) renameNote(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, renameResponse{Message: "invalid json"})
		return
	}

	res, err := a.svc.RenameNote(r.Context(), req.OldDate, req.NewDate, req.CustomTitle)
	switch {
	case errors.Is(err, service.ErrMissingParameter):
		writeJSON(w, http.StatusBadRequest, renameResponse{Message: "missing required parameters"})
	case errors.Is(err, service.ErrBadDate):
		writeJSON(w, http.StatusBadRequest, renameResponse{Message: err.Error()})
	case errors.Is(err, notes.ErrNotFound):
		writeJSON(w, http.StatusNotFound, renameResponse{Message: "source record not found"})
	case errors.Is(err, notes.ErrCollision):
		writeJSON(w, http.StatusConflict, renameResponse{Message: "target date already has a record"})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, renameResponse{Message: "rename failed"})
	default:
		writeJSON(w, http.StatusOK, renameResponse{
			Success: true,
			Message: "renamed",
			OldDate: res.OldDate,
			NewDate: res.NewDate,
		})
	}
}

func (a *API) listDates(w http.ResponseWriter, r *http.Request) {
	items, err := a.svc.ListNotes(r.Context())
	if err != nil {
		// The index view stays renderable on storage failure.
		writeJSON(w, http.StatusInternalServerError, datesResponse{
			Dates: []notes.Summary{},
			Error: err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, datesResponse{Dates: items, Count: len(items)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
