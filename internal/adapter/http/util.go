package adapthttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"strconv"

	"mealtracker/internal/aggregate"
	"mealtracker/internal/app"
	"mealtracker/internal/daykey"
	"mealtracker/internal/workout"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

const sessionCookie = "session"

var (
	errUnauthorized     = errors.New("unauthorized")
	errInternal         = errors.New("internal error")
	errMethodNotAllowed = errors.New("method not allowed")
	errBadIndex         = errors.New("index must be a non-negative integer")
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

// allow writes 405 and returns false unless r uses one of methods.
func allow(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
	return false
}

// parseJSON decodes the body into dst and runs its validate tags.
func parseJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// writeServiceError maps application errors onto status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrEntryNotFound),
		errors.Is(err, app.ErrMealNotFound),
		errors.Is(err, app.ErrWorkoutNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, app.ErrNameRequired),
		errors.Is(err, app.ErrInvalidDate),
		errors.Is(err, app.ErrBadImport),
		errors.Is(err, app.ErrInvalidUnit),
		errors.Is(err, aggregate.ErrBadHeader),
		errors.Is(err, daykey.ErrInvalidKey),
		errors.Is(err, daykey.ErrInvalidPolicy),
		errors.Is(err, workout.ErrExerciseIndex),
		errors.Is(err, workout.ErrSetIndex):
		writeError(w, http.StatusBadRequest, err)
	default:
		log.Errorf("request failed: %s", err)
		writeError(w, http.StatusInternalServerError, errInternal)
	}
}

func intQuery(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// indexPath reads a zero-based index path value.
func indexPath(r *http.Request, key string) (int, error) {
	n, err := strconv.Atoi(r.PathValue(key))
	if err != nil || n < 0 {
		return 0, errBadIndex
	}
	return n, nil
}

// datePath reads the {date} path value; "today" resolves to the user's
// current day.
func datePath(r *http.Request) string {
	d := r.PathValue("date")
	if d == "today" {
		return ""
	}
	return d
}

func withNoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func spaFromDisk(dir string) http.Handler {
	fileServer := http.FileServer(http.Dir(dir))
	indexPath := path.Join(dir, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqPath := path.Clean(r.URL.Path)
		if reqPath == "/" {
			http.ServeFile(w, r, indexPath)
			return
		}

		staticPath := path.Join(dir, reqPath)
		if _, err := os.Stat(staticPath); err == nil {
			fileServer.ServeHTTP(w, r)
			return
		}

		http.ServeFile(w, r, indexPath)
	})
}
