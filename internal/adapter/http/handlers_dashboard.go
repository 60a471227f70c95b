package adapthttp

import (
	"fmt"
	"net/http"
	"time"

	"mealtracker/internal/aggregate"

	log "github.com/sirupsen/logrus"
)

// handleDashboard returns every derived metric for ?date. Today's view comes
// from the watcher when one is configured; it is recomputed on every write.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	uid, date := userID(r), r.URL.Query().Get("date")

	if s.svc.Watcher != nil && date == "" {
		s.svc.Watcher.Watch(uid)
		today, err := s.svc.Targets.Today(r.Context(), uid)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		// A view cached before midnight is for the wrong day.
		if v, ok := s.svc.Watcher.Latest(uid); ok && v.Date == today {
			writeJSON(w, http.StatusOK, v)
			return
		}
	}

	v, err := s.svc.Dashboard.View(r.Context(), uid, date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleDashboardToday(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	sum, err := s.svc.Dashboard.Today(r.Context(), userID(r), r.URL.Query().Get("date"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleDashboardStreak(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	n, err := s.svc.Dashboard.Streak(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"streak": n})
}

func (s *Server) handleDashboardWeekly(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	rep, err := s.svc.Dashboard.Weekly(r.Context(), userID(r), r.URL.Query().Get("date"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleDashboardMonthly(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	buckets, err := s.svc.Dashboard.Monthly(r.Context(), userID(r), r.URL.Query().Get("date"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"weeks": buckets})
}

func (s *Server) handleDashboardAdherence(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	rep, err := s.svc.Dashboard.Adherence(r.Context(), userID(r), r.URL.Query().Get("date"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleDashboardAnalytics(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	a, err := s.svc.Dashboard.Analytics(r.Context(), userID(r), r.URL.Query().Get("date"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	// Rows are produced before anything is written so a store error can
	// still become a JSON error.
	rows, err := s.svc.Dashboard.Export(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	name := fmt.Sprintf("meals-%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if err := aggregate.WriteCSV(w, rows); err != nil {
		log.Warnf("write csv export: %s", err)
	}
}

func (s *Server) handleLogExport(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	doc, err := s.svc.Dashboard.LogExport(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="meal-log.json"`)
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleLogImport(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	n, err := s.svc.Dashboard.LogImport(r.Context(), userID(r), r.Body)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"imported": n})
}
