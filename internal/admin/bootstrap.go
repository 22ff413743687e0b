package admin

import (
	"context"

	"github.com/pinterest/secor-admin/internal/buildinfo"
	"github.com/pinterest/secor-admin/internal/stats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// BuildRevisionLabel is the stats label carrying the build revision.
const BuildRevisionLabel = "secor.build_revision"

// Deps are the collaborators Bootstrap uses. Zero values select the
// process-wide defaults.
type Deps struct {
	// Namespace receives the build revision label. Defaults to stats.Default().
	Namespace *stats.Namespace

	// Gatherer backs the Prometheus handler. Defaults to Namespace.Gatherer().
	Gatherer prometheus.Gatherer

	// ReadRevision returns the build revision. Defaults to the embedded build.properties.
	ReadRevision func(zerolog.Logger) string

	Logger zerolog.Logger
}

// Bootstrap starts the admin service for cfg and then publishes the build
// revision label. A bind failure is returned before anything is published;
// missing build metadata only degrades the label to "unknown".
func Bootstrap(ctx context.Context, cfg ServiceConfig, deps Deps) (*Service, error) {
	ns := deps.Namespace
	if ns == nil {
		ns = stats.Default()
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = ns.Gatherer()
	}
	readRevision := deps.ReadRevision
	if readRevision == nil {
		readRevision = buildinfo.ReadBuildRevision
	}
	logger := deps.Logger

	handlers := BuildHandlers(cfg.PrometheusEnabled, gatherer)
	logger.Debug().Int("handlers", len(handlers)).Bool("prometheus", cfg.PrometheusEnabled).Msg("Admin handlers built")

	svc, err := Start(ctx, DefaultOptions(cfg, handlers), ns, logger)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("address", svc.Addr().String()).Msg("Admin service started")

	revision := readRevision(logger)
	logger.Debug().Str("revision", revision).Msg("Build metadata loaded")

	PublishLabel(ns, BuildRevisionLabel, revision)
	logger.Debug().Str("key", BuildRevisionLabel).Str("value", revision).Msg("Build revision label published")

	return svc, nil
}

// PublishLabel writes value under key in ns, replacing any previous value.
func PublishLabel(ns *stats.Namespace, key, value string) {
	ns.SetLabel(key, value)
}
