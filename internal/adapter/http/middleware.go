package adapthttp

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"mealtracker/internal/app"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

type contextKey string

const userContextKey contextKey = "user"

func withUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userContextKey, id)
}

// userID returns the authenticated user. Handlers only run behind
// authMiddleware, which always sets it.
func userID(r *http.Request) int64 {
	id, _ := r.Context().Value(userContextKey).(int64)
	return id
}

// authMiddleware resolves the user from the forward auth header, then the
// session cookie.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.AuthDisabled {
			next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), s.opts.DefaultUserID)))
			return
		}

		// Reverse proxy forward auth first
		if remoteUser := r.Header.Get(s.opts.ForwardAuthHeader); remoteUser != "" {
			user, err := s.svc.Auth.ValidateForwardAuth(r.Context(), remoteUser)
			if err == nil && user != nil {
				next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), user.ID)))
				return
			}
			if err != nil {
				log.Warnf("forward auth for %q: %s", remoteUser, err)
			}
		}

		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			writeError(w, http.StatusUnauthorized, errUnauthorized)
			return
		}

		user, err := s.svc.Auth.ValidateSession(r.Context(), cookie.Value, r.UserAgent())
		switch {
		case errors.Is(err, app.ErrSessionNotFound), errors.Is(err, app.ErrSessionExpired), errors.Is(err, app.ErrUserNotFound):
			writeError(w, http.StatusUnauthorized, errUnauthorized)
			return
		case err != nil:
			log.Errorf("validate session: %s", err)
			writeError(w, http.StatusInternalServerError, errInternal)
			return
		}

		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), user.ID)))
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (r *responseWriter) WriteHeader(statusCode int) {
	r.ResponseWriter.WriteHeader(statusCode)
	r.statusCode = statusCode
}

// instrument records request count, duration and in-flight requests for
// route.
func (s *Server) instrument(route string, next http.Handler) http.Handler {
	m := s.opts.Metrics
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.GaugeRequests.Inc()
		defer func(begin time.Time) {
			m.GaugeRequests.Dec()
			m.HistRequestDuration.WithLabelValues(route).Observe(time.Since(begin).Seconds())
		}(time.Now())

		resp := &responseWriter{w, http.StatusOK}
		next.ServeHTTP(resp, r)

		m.CounterRequests.With(prometheus.Labels{
			"method": r.Method,
			"status": strconv.Itoa(resp.statusCode),
		}).Inc()
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &responseWriter{w, http.StatusOK}
		next.ServeHTTP(resp, r)
		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   resp.statusCode,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}

func (s *Server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Errorf("http: panic serving %s: %v\n%s", r.URL.Path, rec, debug.Stack())
				if s.opts.Metrics != nil {
					s.opts.Metrics.CounterHandleRequestPanic.Inc()
				}
				writeError(w, http.StatusInternalServerError, errInternal)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
