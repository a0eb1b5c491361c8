package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/bizdesk/internal/common"
	"github.com/dmitrijs2005/bizdesk/internal/server/auth"
	"github.com/gorilla/mux"
)

// statusRecorder captures the response status for metrics and logs.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.written {
		r.status = code
		r.written = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.written {
		r.WriteHeader(http.StatusOK)
	}
	return r.ResponseWriter.Write(b)
}

// observe records metrics and a debug log line for each routed request.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		if s.metrics != nil {
			done := s.metrics.TrackInFlight()
			defer done()
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.URL.Path
		// use the route template to keep label cardinality bounded
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}

		elapsed := time.Since(start)
		if s.metrics != nil && path != "/metrics" {
			s.metrics.ObserveHTTPRequest(r.Method, path, rec.status, elapsed)
		}
		s.logger.Debug(r.Context(), "HTTP request", "method", r.Method, "path", path, "status", rec.status, "elapsed", elapsed)
	})
}

// require rejects requests whose bearer token does not satisfy access and
// passes the verified claims on in the request context.
func (s *Server) require(access auth.Access, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := auth.BearerToken(r.Header.Get(common.AuthorizationHeaderName))

		claims, err := s.guard.Guard(token, access)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if claims != nil {
			r = r.WithContext(auth.NewContext(r.Context(), claims))
		}

		next(w, r)
	})
}
