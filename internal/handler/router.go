package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/efreitasn/exchangesim/internal/service"
	"github.com/go-chi/chi/v5"
)

// Services bundles what the router serves.
type Services struct {
	Intake   *service.IntakeService
	Chart    *service.ChartService
	Book     *service.BookService
	Snapshot *service.SnapshotService
	Admin    Resetter
	Metrics  http.Handler // nil leaves /metrics unregistered
}

// NewRouter creates a chi router with all routes registered and request
// logging.
func NewRouter(svc Services, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(requestLogging(logger))

	// Create handlers.
	exchangeH := NewExchangeHandler(svc.Intake)
	reportH := NewReportHandler(svc.Chart, svc.Book, svc.Snapshot, svc.Admin)

	// Health check.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if svc.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", svc.Metrics)
	}

	r.Route("/exchange", func(r chi.Router) {
		// Order intake.
		r.Post("/endpoint", exchangeH.Submit)

		// Reporting.
		r.Get("/symbols", reportH.Symbols)
		r.Get("/chart/{symbol}", reportH.Chart)
		r.Get("/trades/{symbol}", reportH.Trades)
		r.Get("/book/{symbol}", reportH.Book)
		r.Get("/snapshot", reportH.Snapshot)
		r.Post("/snapshot", reportH.UploadSnapshot)

		// Administration.
		r.Post("/reset", reportH.Reset)
	})

	return r
}

// requestLogging returns middleware that logs each request's method, path,
// status code, and duration using slog.
func requestLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}
