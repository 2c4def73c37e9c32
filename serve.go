package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kintel/aisdecoder/config"
	"github.com/kintel/aisdecoder/logging"
	"github.com/kintel/aisdecoder/pipeline"
	"github.com/kintel/aisdecoder/sinks/forward"
	"github.com/kintel/aisdecoder/sinks/influx"
	"github.com/kintel/aisdecoder/sinks/mqtt"
	"github.com/kintel/aisdecoder/sinks/postgres"
	"github.com/kintel/aisdecoder/sinks/socketio"
	"github.com/kintel/aisdecoder/sinks/vesselcache"
	"github.com/kintel/aisdecoder/source"
	"github.com/kintel/aisdecoder/stats"
)

func newServeCmd() *cobra.Command {
	var (
		settingsPath string
		debug        bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Receive, decode and publish AIS traffic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(settingsPath)
			if err != nil {
				return err
			}
			if debug {
				cfg.Debug = true
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&settingsPath, "config", "c", "settings.json", "Path to settings.json")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
	return cmd
}

// outputs holds the opened sinks. hub and cache may be nil.
type outputs struct {
	sinks []pipeline.Sink
	hub   *socketio.Hub
	cache *vesselcache.Cache
}

func openOutputs(ctx context.Context, cfg *config.Config, log *zap.Logger) (*outputs, error) {
	out := &outputs{}
	fail := func(err error) (*outputs, error) {
		for _, s := range out.sinks {
			err = multierr.Append(err, s.Close())
		}
		return nil, err
	}

	if cfg.MQTTServer != "" {
		user, pass, _ := cfg.MQTTCredentials()
		s, err := mqtt.Dial(mqtt.Options{
			Server:   cfg.MQTTServer,
			TLS:      cfg.MQTTTLS,
			Username: user,
			Password: pass,
			Topic:    cfg.MQTTTopic,
		}, log)
		if err != nil {
			return fail(err)
		}
		out.sinks = append(out.sinks, s)
	}
	if cfg.PostgresDSN != "" {
		s, err := postgres.Open(ctx, cfg.PostgresDSN, cfg.PostgresTable, log)
		if err != nil {
			return fail(err)
		}
		out.sinks = append(out.sinks, s)
	}
	if cfg.RedisAddr != "" {
		c, err := vesselcache.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisTTL(), log)
		if err != nil {
			return fail(err)
		}
		out.cache = c
		out.sinks = append(out.sinks, c)
	}
	if cfg.Aggregator != "" {
		f, err := forward.Dial(cfg.Aggregator)
		if err != nil {
			return fail(err)
		}
		log.Info("forwarding to aggregator", zap.String("addr", cfg.Aggregator))
		out.sinks = append(out.sinks, f)
	}
	if cfg.SocketIOEnabled {
		out.hub = socketio.New(log)
		out.sinks = append(out.sinks, out.hub)
	}
	return out, nil
}

func openSources(cfg *config.Config, log *zap.Logger) []source.Source {
	var sources []source.Source
	if cfg.UDPListenPort > 0 {
		sources = append(sources, source.NewUDP(fmt.Sprintf(":%d", cfg.UDPListenPort), cfg.UDPRateLimitPerMinute, log))
	}
	if cfg.SerialPort != "" {
		sources = append(sources, source.NewSerial(cfg.SerialPort, cfg.Baud, log))
	}
	return sources
}

func serve(ctx context.Context, cfg *config.Config) error {
	log := logging.New(cfg.Debug)
	defer log.Sync()

	failed, closeFailed := logging.NewFailedDecodeLog(logging.RotateConfig{
		Filename:   cfg.FailedDecodeLog,
		MaxSizeMB:  cfg.FailedDecodeLogMaxMB,
		MaxBackups: cfg.FailedDecodeLogMaxBackups,
		MaxAgeDays: cfg.FailedDecodeLogMaxAgeDays,
	})
	defer closeFailed()

	collector := stats.NewCollector(cfg.MetricWindow())
	out, err := openOutputs(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open outputs", zap.Error(err))
		return err
	}

	p := pipeline.New(pipeline.Config{
		FragmentTTL:  cfg.FragmentTTL(),
		DedupeWindow: cfg.DeduplicationWindow(),
		MetricWindow: cfg.MetricWindow(),
	}, out.sinks, collector, log, pipeline.WithFailedLog(failed))
	defer func() {
		if err := p.Close(); err != nil {
			log.Warn("error closing outputs", zap.Error(err))
		}
	}()

	g, ctx := errgroup.WithContext(ctx)
	lines := make(chan pipeline.Line, 1024)
	for _, src := range openSources(cfg, log) {
		src := src
		g.Go(func() error {
			return errors.Wrapf(src.Run(ctx, lines), "source %s", src.Name())
		})
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           newMux(cfg.WebPath, collector, out.hub, out.cache),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "HTTP server")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if out.hub != nil {
		g.Go(func() error {
			out.hub.Run(ctx, cfg.SocketIOVesselTTL())
			return nil
		})
	}

	if cfg.InfluxURL != "" {
		rep, err := influx.Dial(cfg.InfluxURL, cfg.InfluxDB, cfg.InfluxInterval(), collector.Snapshot, log)
		if err != nil {
			log.Warn("metrics will not be sent to InfluxDB", zap.Error(err))
		} else {
			g.Go(func() error {
				rep.Run(ctx)
				return rep.Close()
			})
		}
	}

	g.Go(func() error {
		if err := p.Run(ctx, lines); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	err = g.Wait()
	if err != nil {
		log.Error("stopped", zap.Error(err))
	} else {
		log.Info("stopped")
	}
	return err
}
