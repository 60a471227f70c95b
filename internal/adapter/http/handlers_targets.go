package adapthttp

import (
	"net/http"

	"mealtracker/internal/app"
)

type dayMetricsRequest struct {
	Date   string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Weight float64 `json:"weight"`
	Unit   string  `json:"unit" validate:"omitempty,oneof=kg lb"`
	Steps  float64 `json:"steps"`
	Notes  string  `json:"notes" validate:"max=2000"`
}

// handleTargets reads or updates the goals. PUT merges the body onto the
// current targets; absent keys are kept.
func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet, http.MethodPut) {
		return
	}
	uid := userID(r)

	t, err := s.svc.Targets.Get(r.Context(), uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, t)
		return
	}

	if err := parseJSON(r, &t); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	t, err = s.svc.Targets.Update(r.Context(), uid, t)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDayMetrics(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet, http.MethodPut) {
		return
	}
	uid := userID(r)

	if r.Method == http.MethodGet {
		days, err := s.svc.Days.List(r.Context(), uid)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"days": days})
		return
	}

	var req dayMetricsRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	m, err := s.svc.Days.SaveDay(r.Context(), uid, app.DayInput{
		Date:   req.Date,
		Weight: req.Weight,
		Unit:   req.Unit,
		Steps:  req.Steps,
		Notes:  req.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
