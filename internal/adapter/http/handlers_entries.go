package adapthttp

import (
	"encoding/json"
	"net/http"

	"mealtracker/internal/app"
	"mealtracker/internal/domain"
	"mealtracker/internal/num"
)

const (
	addFromLibrary = "library"
	addManual      = "manual"
	addRecent      = "recent"
)

type addEntryRequest struct {
	Mode     string        `json:"mode" validate:"required,oneof=library manual recent"`
	Name     string        `json:"name" validate:"required_unless=Mode recent"`
	EntryID  string        `json:"entryId" validate:"required_if=Mode recent"`
	Servings float64       `json:"servings"`
	Macros   domain.Macros `json:"macros"`
	Save     bool          `json:"save"`
}

// editEntryRequest keeps the numbers raw so they are coerced the same way
// as the macros of a new entry.
type editEntryRequest struct {
	Name     string          `json:"name" validate:"required"`
	Servings json.RawMessage `json:"servings"`
	Calories json.RawMessage `json:"calories"`
	Protein  json.RawMessage `json:"protein"`
	Carbs    json.RawMessage `json:"carbs"`
	Fat      json.RawMessage `json:"fat"`
}

func (req editEntryRequest) macros() domain.Macros {
	return domain.Macros{
		Calories: num.CoerceRaw(req.Calories),
		Protein:  num.CoerceRaw(req.Protein),
		Carbs:    num.CoerceRaw(req.Carbs),
		Fat:      num.CoerceRaw(req.Fat),
	}
}

type dayEntries struct {
	Date    string         `json:"date"`
	Entries []domain.Entry `json:"entries"`
	Totals  domain.Macros  `json:"totals"`
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	uid := userID(r)

	if r.Method == http.MethodGet {
		day, entries, err := s.svc.Tracker.ListDay(r.Context(), uid, r.URL.Query().Get("date"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		var totals domain.Macros
		for _, e := range entries {
			totals = totals.Add(e.Totals())
		}
		writeJSON(w, http.StatusOK, dayEntries{Date: day, Entries: entries, Totals: totals})
		return
	}

	var req addEntryRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var (
		e   domain.Entry
		err error
	)
	switch req.Mode {
	case addFromLibrary:
		e, err = s.svc.Tracker.AddFromLibrary(r.Context(), uid, req.Name, req.Servings)
	case addManual:
		e, err = s.svc.Tracker.AddManual(r.Context(), uid, app.ManualInput{
			Name:     req.Name,
			Macros:   req.Macros,
			Servings: req.Servings,
			Save:     req.Save,
		})
	case addRecent:
		e, err = s.svc.Tracker.AddRecent(r.Context(), uid, req.EntryID, req.Servings)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleEntry(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPut, http.MethodDelete) {
		return
	}
	uid, id := userID(r), r.PathValue("id")

	if r.Method == http.MethodDelete {
		if err := s.svc.Tracker.RemoveEntry(r.Context(), uid, id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
		return
	}

	var req editEntryRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	e, err := s.svc.Tracker.EditEntry(r.Context(), uid, id, app.EditInput{
		Name:     req.Name,
		Servings: num.CoerceRaw(req.Servings),
		Macros:   req.macros(),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleEntriesClear(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	n, err := s.svc.Tracker.ClearDay(r.Context(), userID(r), r.URL.Query().Get("date"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": n})
}

func (s *Server) handleEntriesRecent(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	items, err := s.svc.Tracker.RecentTemplates(r.Context(), userID(r), intQuery(r, "limit", 20))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
