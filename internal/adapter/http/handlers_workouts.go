package adapthttp

import (
	"net/http"

	"mealtracker/internal/app"
	"mealtracker/internal/domain"
)

type addExerciseRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	TargetSets int    `json:"targetSets" validate:"gte=0,lte=50"`
	TargetReps int    `json:"targetReps" validate:"gte=0,lte=1000"`
	BodyPart   string `json:"bodyPart"`
}

// handleWorkout reads (GET), starts (POST) or deletes (DELETE) the session
// for {date}.
func (s *Server) handleWorkout(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet, http.MethodPost, http.MethodDelete) {
		return
	}
	uid, date := userID(r), datePath(r)

	switch r.Method {
	case http.MethodGet:
		l, err := s.svc.Workouts.Get(r.Context(), uid, date)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, l)
	case http.MethodPost:
		l, err := s.svc.Workouts.Start(r.Context(), uid, date)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, l)
	case http.MethodDelete:
		if err := s.svc.Workouts.Delete(r.Context(), uid, date); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
	}
}

func (s *Server) handleWorkoutExercises(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req addExerciseRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	l, err := s.svc.Workouts.AddExercise(r.Context(), userID(r), datePath(r), app.ExerciseInput{
		Name:       req.Name,
		TargetSets: req.TargetSets,
		TargetReps: req.TargetReps,
		BodyPart:   req.BodyPart,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleWorkoutExerciseToggle(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	ex, err := indexPath(r, "ex")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	l, err := s.svc.Workouts.ToggleExercise(r.Context(), userID(r), datePath(r), ex)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleWorkoutSets(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	ex, err := indexPath(r, "ex")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var set domain.WorkoutSet
	if err := parseJSON(r, &set); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	l, err := s.svc.Workouts.AddSet(r.Context(), userID(r), datePath(r), ex, set)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleWorkoutSet(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPut) {
		return
	}
	ex, err := indexPath(r, "ex")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	idx, err := indexPath(r, "set")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var set domain.WorkoutSet
	if err := parseJSON(r, &set); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	l, err := s.svc.Workouts.UpdateSet(r.Context(), userID(r), datePath(r), ex, idx, set)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleWorkoutSetToggle(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	ex, err := indexPath(r, "ex")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	idx, err := indexPath(r, "set")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := s.svc.Workouts.ToggleSet(r.Context(), userID(r), datePath(r), ex, idx)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleWorkoutFinish(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	l, err := s.svc.Workouts.Finish(r.Context(), userID(r), datePath(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleWorkoutSummary(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	sum, err := s.svc.Workouts.Summary(r.Context(), userID(r), datePath(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// handleWorkoutPrevious reports the last completed performance of ?name
// before ?date. An exercise never done before yields {"found": false}.
func (s *Server) handleWorkoutPrevious(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	if q.Get("name") == "" {
		writeError(w, http.StatusBadRequest, app.ErrNameRequired)
		return
	}
	perf, err := s.svc.Workouts.Previous(r.Context(), userID(r), q.Get("name"), q.Get("date"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if perf == nil {
		writeJSON(w, http.StatusOK, map[string]any{"found": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"found": true, "previous": perf})
}
