// Package admin runs the embedded admin HTTP service: default status and
// stats pages, optional Prometheus exposition, and the build revision label.
package admin

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"time"

	"github.com/pinterest/secor-admin/internal/apperrors"
	"github.com/pinterest/secor-admin/internal/config"
	"github.com/pinterest/secor-admin/internal/stats"
	"github.com/rs/zerolog"
	"golang.org/x/net/netutil"
)

const (
	// DefaultBacklog caps concurrently open admin connections. Idle
	// keep-alive connections are closed after DefaultIdleTimeout and give
	// their slot back.
	DefaultBacklog = 20

	// DefaultIdleTimeout closes keep-alive connections with no request in flight.
	DefaultIdleTimeout = 60 * time.Second

	// DefaultStatsInterval is the period over which stats are latched.
	DefaultStatsInterval = time.Minute

	defaultName       = "secor"
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// ServiceConfig carries the admin port and whether Prometheus is exposed.
type ServiceConfig = config.ServiceConfig

// Reporter pushes namespace stats somewhere for as long as ctx is alive.
type Reporter interface {
	Run(ctx context.Context)
}

// ReporterFactory builds a Reporter for the service's namespace.
type ReporterFactory func(ns *stats.Namespace, logger zerolog.Logger) Reporter

// Options describes an admin service.
type Options struct {
	Port        int
	Backlog     int
	IdleTimeout time.Duration
	Reporters   []ReporterFactory
	// LoggerName overrides the component name used in logs and server_info.
	LoggerName     string
	StatsFilters   []*regexp.Regexp
	Handlers       HandlerRegistry
	StatsIntervals []time.Duration
}

// DefaultOptions returns the service description used at startup: the
// configured port and handlers, DefaultBacklog, DefaultIdleTimeout, a single
// DefaultStatsInterval, and no reporters, logger override or stats filters.
func DefaultOptions(cfg ServiceConfig, handlers HandlerRegistry) Options {
	return Options{
		Port:           cfg.Port,
		Backlog:        DefaultBacklog,
		IdleTimeout:    DefaultIdleTimeout,
		Reporters:      []ReporterFactory{},
		LoggerName:     "",
		StatsFilters:   []*regexp.Regexp{},
		Handlers:       handlers,
		StatsIntervals: []time.Duration{DefaultStatsInterval},
	}
}

// Service is a running admin service.
type Service struct {
	name      string
	addr      net.Addr
	server    *http.Server
	ns        *stats.Namespace
	filters   []*regexp.Regexp
	intervals []time.Duration
	started   time.Time
	logger    zerolog.Logger
	done      chan struct{}
}

// Start binds the admin listener on opts.Port and serves in the background
// until ctx is cancelled. A bind failure is returned as *apperrors.ErrBind.
func Start(ctx context.Context, opts Options, ns *stats.Namespace, logger zerolog.Logger) (*Service, error) {
	if ns == nil {
		ns = stats.Default()
	}
	if opts.Backlog <= 0 {
		opts.Backlog = DefaultBacklog
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	if len(opts.StatsIntervals) == 0 {
		opts.StatsIntervals = []time.Duration{DefaultStatsInterval}
	}
	name := defaultName
	if opts.LoggerName != "" {
		name = opts.LoggerName
	}
	logger = logger.With().Str("component", name).Logger()

	// Binding is not cancellable; ctx only bounds how long the service runs.
	var lc net.ListenConfig
	ln, err := lc.Listen(context.WithoutCancel(ctx), "tcp", fmt.Sprintf(":%d", opts.Port))
	if err != nil {
		return nil, apperrors.NewBindError(opts.Port, err)
	}

	s := &Service{
		name:      name,
		addr:      ln.Addr(),
		ns:        ns,
		filters:   opts.StatsFilters,
		intervals: opts.StatsIntervals,
		started:   time.Now(),
		logger:    logger,
		done:      make(chan struct{}),
	}
	s.server = &http.Server{
		Handler:           s.routes(opts.Handlers),
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       opts.IdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	for _, interval := range opts.StatsIntervals {
		if interval <= 0 {
			continue
		}
		go s.latch(ctx, interval)
	}
	for _, factory := range opts.Reporters {
		if factory == nil {
			continue
		}
		reporter := factory(ns, logger)
		if reporter == nil {
			continue
		}
		go reporter.Run(ctx)
	}

	go func() {
		defer close(s.done)
		logger.Info().Str("address", s.addr.String()).Int("backlog", opts.Backlog).Msg("Starting admin HTTP server")
		if err := s.server.Serve(netutil.LimitListener(ln, opts.Backlog)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Admin HTTP server stopped")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Failed to shutdown admin server")
		}
	}()

	return s, nil
}

// Addr returns the address the service is listening on.
func (s *Service) Addr() net.Addr {
	return s.addr
}

// Done is closed once the service has stopped serving.
func (s *Service) Done() <-chan struct{} {
	return s.done
}

func (s *Service) latch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := s.ns.Latch(interval)
			s.logger.Debug().Dur("period", interval).Int("counters", len(snap.Counters)).Msg("Stats latched")
		}
	}
}
