// Package observability starts and stops the process-wide telemetry: Uptrace
// traces and logs, the pyroscope profiler and the pprof debug server.
package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/fantasy-draft/internal/config"
	"github.com/riskibarqy/fantasy-draft/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
)

// Telemetry is what Start brought up. A nil *Telemetry shuts down cleanly.
type Telemetry struct {
	logger      *logging.Logger
	tracing     bool
	profiler    *pyroscope.Profiler
	pprofServer *http.Server
}

func Start(cfg config.Config, logger *logging.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = logging.Default()
	}

	t := &Telemetry{logger: logger}
	t.startTracing(cfg)
	if err := t.startPyroscope(cfg); err != nil {
		_ = t.Shutdown(context.Background())
		return nil, err
	}
	t.startPprof(cfg)
	return t, nil
}

func (t *Telemetry) startTracing(cfg config.Config) {
	logging.SetMirror(nil)
	if !cfg.UptraceEnabled || cfg.UptraceDSN == "" {
		t.logger.Info("uptrace disabled", "enabled", cfg.UptraceEnabled, "dsn_set", cfg.UptraceDSN != "")
		return
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithLoggingEnabled(cfg.UptraceLogsEnabled),
	)
	t.tracing = true
	if cfg.UptraceLogsEnabled {
		logging.SetMirror(newLogMirror(cfg.ServiceVersion))
	}

	t.logger.Info("uptrace enabled",
		"service_version", cfg.ServiceVersion,
		"logs_enabled", cfg.UptraceLogsEnabled,
	)
}

func (t *Telemetry) startPyroscope(cfg config.Config) error {
	if !cfg.PyroscopeEnabled {
		t.logger.Info("pyroscope disabled")
		return nil
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.PyroscopeAppName,
		ServerAddress:   cfg.PyroscopeServerAddress,
		AuthToken:       cfg.PyroscopeAuthToken,
		UploadRate:      cfg.PyroscopeUploadRate,
		Tags: map[string]string{
			"env":            cfg.AppEnv,
			"service":        cfg.ServiceName,
			"gateway_driver": cfg.GatewayDriver,
		},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
			pyroscope.ProfileMutexDuration,
			pyroscope.ProfileBlockDuration,
		},
	})
	if err != nil {
		return err
	}

	t.profiler = profiler
	t.logger.Info("pyroscope enabled", "server_address", cfg.PyroscopeServerAddress, "application", cfg.PyroscopeAppName)
	return nil
}

func (t *Telemetry) startPprof(cfg config.Config) {
	if !cfg.PprofEnabled {
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	srv := &http.Server{
		Addr:              cfg.PprofAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	t.pprofServer = srv

	go func() {
		t.logger.Info("pprof server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.logger.Error("pprof server failed", "error", err)
		}
	}()
}

// Shutdown stops everything Start brought up. Traces flush last.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}

	var errs []error
	if t.pprofServer != nil {
		errs = append(errs, t.pprofServer.Shutdown(ctx))
		t.pprofServer = nil
	}
	if t.profiler != nil {
		errs = append(errs, t.profiler.Stop())
		t.profiler = nil
	}
	if t.tracing {
		logging.SetMirror(nil)
		errs = append(errs, uptrace.Shutdown(ctx))
		t.tracing = false
	}
	return errors.Join(errs...)
}
