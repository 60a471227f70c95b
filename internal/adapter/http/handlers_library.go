package adapthttp

import (
	"net/http"

	"mealtracker/internal/domain"
)

type saveMealRequest struct {
	Name   string        `json:"name" validate:"required,max=200"`
	Macros domain.Macros `json:"macros"`
}

func (s *Server) handleLibrary(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	uid := userID(r)

	if r.Method == http.MethodGet {
		res, err := s.svc.Library.Search(r.Context(), uid, r.URL.Query().Get("q"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
		return
	}

	var req saveMealRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	meal, err := s.svc.Library.Save(r.Context(), uid, req.Name, req.Macros)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, meal)
}

func (s *Server) handleLibraryMeal(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodDelete) {
		return
	}
	if err := s.svc.Library.Delete(r.Context(), userID(r), r.PathValue("name")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (s *Server) handleLibraryImport(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	n, err := s.svc.Library.ImportJSON(r.Context(), userID(r), r.Body)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"imported": n})
}

func (s *Server) handleLibraryExport(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	doc, err := s.svc.Library.ExportJSON(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="saved-meals.json"`)
	writeJSON(w, http.StatusOK, doc)
}
