package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"

	"github.com/morepradnya1503/PGDAC-Project/internal/adapter/outbound/api"
	"github.com/morepradnya1503/PGDAC-Project/internal/adapter/outbound/audit"
	celeval "github.com/morepradnya1503/PGDAC-Project/internal/adapter/outbound/cel"
	"github.com/morepradnya1503/PGDAC-Project/internal/adapter/outbound/state"
	"github.com/morepradnya1503/PGDAC-Project/internal/config"
	"github.com/morepradnya1503/PGDAC-Project/internal/domain/routing"
	"github.com/morepradnya1503/PGDAC-Project/internal/domain/session"
	"github.com/morepradnya1503/PGDAC-Project/internal/metrics"
	"github.com/morepradnya1503/PGDAC-Project/internal/telemetry"
)

// app holds the wired components a command works with. Build it with newApp
// and release it with close.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *state.SessionStore
	gateway    *api.Client
	controller *session.Controller
	guard      *routing.Guard
	audit      *audit.SQLiteStore
	telemetry  *telemetry.Provider
}

// newApp loads configuration and wires the session stack: persisted store,
// network gateway, controller, and route guard. The controller is restored
// before newApp returns, so callers always see a settled session.
func newApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	if configFile := config.ConfigFileUsed(); configFile != "" {
		logger.Debug("loaded config", "file", configFile)
	}

	tel, err := telemetry.Setup("worksphere", cfg.Telemetry.Enabled)
	if err != nil {
		return nil, fmt.Errorf("telemetry setup failed: %w", err)
	}

	mets := metrics.New(prometheus.NewRegistry())
	store := state.NewSessionStore(cfg.Session.FilePath, logger)

	gateway := api.NewClient(store,
		api.WithBaseURL(cfg.API.BaseURL),
		api.WithTimeout(cfg.API.Timeout),
		api.WithValidationCacheTTL(cfg.API.ValidationCacheTTL),
		api.WithLogger(logger),
		api.WithMetrics(mets),
		api.WithTracer(otel.Tracer("worksphere/api")),
	)

	a := &app{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		gateway:   gateway,
		telemetry: tel,
	}

	opts := []session.Option{session.WithMetrics(mets)}
	if cfg.Audit.Enabled {
		auditStore, err := audit.Open(cfg.Audit.Path, logger)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("audit setup failed: %w", err)
		}
		a.audit = auditStore
		opts = append(opts, session.WithAuditor(auditStore))
		if cfg.Audit.Retention > 0 {
			pruneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if _, err := auditStore.Prune(pruneCtx, cfg.Audit.Retention); err != nil {
				logger.Warn("audit prune failed", "error", err)
			}
			cancel()
		}
	}

	a.controller = session.NewController(store, gateway, session.Config{
		Timeout:            cfg.Session.Timeout,
		WarningWindow:      cfg.Session.WarningWindow,
		RestoreStaleness:   cfg.Session.RestoreStaleness,
		RevalidateInterval: cfg.Session.RevalidateInterval,
	}, logger, opts...)
	a.controller.Restore()

	guard, err := buildGuard(cfg, a.controller, logger)
	if err != nil {
		a.close()
		return nil, err
	}
	a.guard = guard

	return a, nil
}

// buildGuard assembles the route guard from the configured policy file, or
// the built-in rules when none is set. Policy conditions are validated here
// so a broken expression fails at startup, not at navigation time.
func buildGuard(cfg *config.Config, sess routing.Session, logger *slog.Logger) (*routing.Guard, error) {
	policy := routing.DefaultPolicy()
	if cfg.Routing.PolicyFile != "" {
		loaded, err := routing.LoadPolicy(cfg.Routing.PolicyFile)
		if err != nil {
			return nil, err
		}
		policy = loaded
	}

	evaluator, err := celeval.NewEvaluator()
	if err != nil {
		return nil, fmt.Errorf("condition evaluator setup failed: %w", err)
	}
	for i := range policy.Rules {
		rule := &policy.Rules[i]
		if rule.Condition == "" {
			continue
		}
		if err := evaluator.ValidateExpression(rule.Condition); err != nil {
			return nil, fmt.Errorf("route policy %s: %w", rule.Prefix, err)
		}
	}

	return routing.NewGuard(policy, sess, evaluator, logger), nil
}

// close releases the app's resources in reverse wiring order.
func (a *app) close() {
	if a.controller != nil {
		a.controller.Close()
	}
	if a.audit != nil {
		if err := a.audit.Close(); err != nil {
			a.logger.Warn("failed to close audit store", "error", err)
		}
	}
	if a.telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.telemetry.Shutdown(ctx); err != nil {
			a.logger.Warn("telemetry shutdown failed", "error", err)
		}
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
