package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// InFlightRequests holds the current number of backend requests.
	InFlightRequests = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "agentwallet_backend_requests_in_flight",
			Help: "Gauge that holds the current number of backend requests",
		},
		[]string{"host", "method"},
	)

	// BackendRequests counts completed backend requests by path and status class.
	BackendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentwallet_backend_requests_total",
			Help: "Count of completed backend requests",
		},
		[]string{"method", "path", "code"},
	)

	// Rejections counts reject submissions by outcome.
	Rejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentwallet_rejections_total",
			Help: "Count of payment rejections submitted, by outcome",
		},
		[]string{"outcome"},
	)

	// StaleResponses counts fetch results dropped because a newer fetch was issued.
	StaleResponses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentwallet_stale_responses_total",
			Help: "Count of list responses discarded in favour of a newer request",
		},
		[]string{"list"},
	)
)

func init() {
	prometheus.MustRegister(InFlightRequests, BackendRequests, Rejections, StaleResponses)
}

// Router exposes the default registry on /metrics.
func Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Serve runs the metrics listener until ctx is done.
func Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	zerolog.Ctx(ctx).Info().Str("addr", addr).Msg("metrics listener started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
