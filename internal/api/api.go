package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/bugsnag/bugsnag-go/v2"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/taskforce-ops/sentinel/internal/domain"
	"github.com/taskforce-ops/sentinel/internal/matcher"
)

type api struct {
	logger *zap.Logger
	statsd statsd.ClientInterface

	events domain.EventRegistry
	polls  domain.PollRegistry
	groups domain.GroupRegistry
	alarms domain.AlarmRegistry

	lfg *matcher.Service
}

func NewAPI(logger *zap.Logger, statsdClient statsd.ClientInterface, events domain.EventRegistry, polls domain.PollRegistry, groups domain.GroupRegistry, alarms domain.AlarmRegistry, lfg *matcher.Service) *api {
	if statsdClient == nil {
		statsdClient = &statsd.NoOpClient{}
	}

	return &api{
		logger: logger,
		statsd: statsdClient,
		events: events,
		polls:  polls,
		groups: groups,
		alarms: alarms,
		lfg:    lfg,
	}
}

func (a *api) Server(port int) *http.Server {
	return &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: bugsnag.Handler(otelhttp.NewHandler(a.Routes(), "api")),
	}
}

func (a *api) Routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", a.healthCheckHandler).Methods("GET")
	r.HandleFunc("/stats", a.statsHandler).Methods("GET")

	r.HandleFunc("/groups", a.listGroupsHandler).Methods("GET")
	r.HandleFunc("/groups", a.createGroupHandler).Methods("POST")
	r.HandleFunc("/groups/{id}/join", a.joinGroupHandler).Methods("POST")
	r.HandleFunc("/groups/{id}", a.deleteGroupHandler).Methods("DELETE")

	r.HandleFunc("/flights", a.listFlightsHandler).Methods("GET")
	r.HandleFunc("/flights", a.createFlightHandler).Methods("POST")
	r.HandleFunc("/flights/{id}/join", a.joinFlightHandler).Methods("POST")
	r.HandleFunc("/flights/{id}", a.deleteFlightHandler).Methods("DELETE")

	r.HandleFunc("/alarms", a.upsertAlarmHandler).Methods("POST")
	r.HandleFunc("/alarms/{user}", a.deleteAlarmHandler).Methods("DELETE")

	r.HandleFunc("/events", a.listEventsHandler).Methods("GET")
	r.HandleFunc("/polls", a.listPollsHandler).Methods("GET")

	r.Use(a.loggingMiddleware)

	return r
}

func (a *api) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	w.Header().Set("X-Sentinel-Error", message)
	http.Error(w, message, status)
}

func (a *api) jsonResponse(w http.ResponseWriter, r *http.Request, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		a.logger.Error("failed to encode response", zap.Error(err))
	}
}

type LoggingResponseWriter struct {
	w          http.ResponseWriter
	statusCode int
	bytes      int
}

func (lrw *LoggingResponseWriter) Header() http.Header {
	return lrw.w.Header()
}

func (lrw *LoggingResponseWriter) Write(bb []byte) (int, error) {
	wb, err := lrw.w.Write(bb)
	lrw.bytes += wb
	return wb, err
}

func (lrw *LoggingResponseWriter) WriteHeader(statusCode int) {
	lrw.statusCode = statusCode
	lrw.w.WriteHeader(statusCode)
}

func (a *api) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip logging health checks
		if r.RequestURI == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		lrw := &LoggingResponseWriter{w: w}

		next.ServeHTTP(lrw, r)

		_ = a.statsd.Histogram("sentinel.api.latency", float64(time.Since(start).Milliseconds()), []string{}, 0.1)
		_ = a.statsd.Incr("sentinel.api.calls", []string{
			fmt.Sprintf("status:%d", lrw.statusCode),
		}, 0.1)

		a.logger.Info("handled request",
			zap.String("method", r.Method),
			zap.String("uri", r.RequestURI),
			zap.Int("status", lrw.statusCode),
			zap.Int("bytes", lrw.bytes),
			zap.Duration("duration", time.Since(start)))
	})
}
