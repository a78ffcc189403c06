package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"loanbook/internal/amqp"
	"loanbook/internal/core"
	"loanbook/internal/loanbook"
	applog "loanbook/internal/log"
	"loanbook/internal/middleware/ratelimit"
	"loanbook/internal/middleware/security"
	"loanbook/internal/middleware/trace"
	"loanbook/internal/report"
)

// MetricsEngine computes a snapshot of the book at the engine's clock.
type MetricsEngine interface {
	Snapshot(ctx context.Context, book *loanbook.Book) core.Snapshot
}

// ReportComposer turns a snapshot into a PDF report.
type ReportComposer interface {
	Compose(ctx context.Context, snap core.Snapshot) (*report.Bundle, error)
}

// ReportPublisher announces generated reports. Optional.
type ReportPublisher interface {
	PublishReportGenerated(ctx context.Context, msg *amqp.ReportGeneratedMessage) error
}

// Options configure the server. Zero values take the defaults below.
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ReportRateLimit int
	Publisher       ReportPublisher
	Logger          *applog.Logger
}

type Server struct {
	http.Server

	book      *loanbook.Book
	engine    MetricsEngine
	composer  ReportComposer
	publisher ReportPublisher

	logger   *applog.Logger
	events   *applog.StructuredLogger
	tracer   *trace.Middleware
	limiter  *ratelimit.Limiter
	detector *security.Detector

	publishes    sync.WaitGroup
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware around an already loaded book.
func NewServer(book *loanbook.Book, engine MetricsEngine, composer ReportComposer, opts Options) *Server {
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 30 * time.Second
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 60 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = applog.Default()
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		book:      book,
		engine:    engine,
		composer:  composer,
		publisher: opts.Publisher,
		logger:    logger,
		events:    applog.NewStructuredLogger(logger.WithComponent(applog.ComponentReport)),
		detector:  security.NewDetector(),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.ReportRateLimit}),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	rateLimited := s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited)

	mux := http.NewServeMux()
	mux.Handle("/loan_metrics", getOnly(http.HandlerFunc(s.handleLoanMetrics)))
	mux.Handle("/generate_report", getOnly(rateLimited(http.HandlerFunc(s.handleGenerateReport))))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	var handler http.Handler = mux
	handler = s.flagSuspicious(handler)
	handler = s.tracer.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
	}
	return s
}

// Shutdown stops the listener, waits for in-flight report events and
// releases the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)

		done := make(chan struct{})
		go func() {
			s.publishes.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			s.logger.Warn("Shutdown deadline hit with report events in flight")
		}

		s.limiter.Stop()
	})

	return shutdownErr
}

// getOnly rejects every method but GET with 405.
func getOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) flagSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request",
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				applog.FieldClientIP, s.detector.ExtractClientIP(r),
				"user_agent", r.Header.Get("User-Agent"))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Report rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldPath, r.URL.Path)
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
}
