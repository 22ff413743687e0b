package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pinterest/secor-admin/internal/admin"
	"github.com/pinterest/secor-admin/internal/config"
	"github.com/pinterest/secor-admin/internal/stats"
	"github.com/rs/zerolog"
)

func main() {
	bootLogger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("Failed to load config")
	}
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)

	logger.Info().
		Int("ostrich_port", cfg.OstrichPort).
		Bool("prometheus_enabled", cfg.Monitoring.PrometheusEnabled).
		Str("stats_sink", cfg.Stats.Sink).
		Msg("Application started with configuration")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, stats.Default(), logger)
	stop()
	if err != nil {
		logger.Fatal().Err(err).Int("port", cfg.OstrichPort).Msg("Failed to start admin service")
	}
	logger.Info().Msg("Admin service stopped gracefully")
}

// run wires the stats sink, bootstraps the admin service and blocks until ctx
// is cancelled and the service has stopped. The sink is closed before run
// returns, including on a bootstrap failure.
func run(ctx context.Context, cfg *config.Config, ns *stats.Namespace, logger zerolog.Logger) error {
	ns.SetLogger(logger)

	sink, err := stats.NewSink(cfg.Stats.Sink, stats.SinkConfig{
		Instance:      cfg.Stats.Instance,
		RedisAddress:  cfg.Stats.Redis.Address,
		RedisPassword: cfg.Stats.Redis.Password,
		RedisDB:       cfg.Stats.Redis.DB,
	})
	if err != nil {
		// Label mirroring is optional; the admin endpoint still serves the label.
		logger.Error().Err(err).Str("sink", cfg.Stats.Sink).Msg("Failed to create stats sink")
	} else {
		ns.AddSink(sink)
		defer func() {
			if err := sink.Close(); err != nil {
				logger.Error().Err(err).Msg("Failed to close stats sink")
			}
		}()
	}

	svc, err := admin.Bootstrap(ctx, cfg.ServiceConfig(), admin.Deps{
		Namespace: ns,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info().Msg("Received shutdown signal")
	<-svc.Done()
	return nil
}
