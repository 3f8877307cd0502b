package cli

import (
	"fmt"
	"log/slog"
	"os"

	"shellgate/internal/audit"
	"shellgate/internal/confirm"
	"shellgate/internal/config"
	"shellgate/internal/gate"
	"shellgate/internal/history"
	"shellgate/internal/policy"
	"shellgate/internal/rules"
	"shellgate/internal/runner"
)

// components bundles everything a long-running command needs.
type components struct {
	cfg         *config.Config
	logger      *slog.Logger
	gate        *gate.Gate
	coordinator *confirm.Coordinator
	broker      *confirm.Broker
	audit       *audit.Log
	history     *history.Store
}

// buildComponents loads config and constructs the gate with the given
// confirmer. A nil confirmer means the coordinator (broker-backed
// confirmation) is used.
func buildComponents(confirmer gate.Confirmer) (*components, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.LogLevel)

	mode, err := policy.ParseAutoMode(cfg.AutoMode)
	if err != nil {
		return nil, err
	}

	ruleSet, err := rules.Load(cfg.RulesPath)
	if err != nil {
		return nil, err
	}

	broker := confirm.NewBroker()
	coordinator := confirm.NewCoordinator(cfg.ConfirmTimeout(), broker, logger)
	if confirmer == nil {
		confirmer = coordinator
	}

	var auditLog *audit.Log
	if cfg.AuditLog != "" {
		auditLog, err = audit.Open(cfg.AuditLog)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
	}

	var store *history.Store
	if cfg.HistoryDB != "" {
		store, err = history.Open(cfg.HistoryDB, logger)
		if err != nil {
			if auditLog != nil {
				auditLog.Close()
			}
			return nil, fmt.Errorf("failed to open history store: %w", err)
		}
	}

	g, err := gate.New(gate.Options{
		Rules:           ruleSet,
		CacheSize:       cfg.CacheSize,
		Mode:            mode,
		Restricted:      cfg.RestrictedMode,
		AllowedDir:      cfg.AllowedDirectory,
		AllowParentRead: cfg.AllowParentRead,
		WorkingDir:      cfg.WorkingDirectory,
		Confirmer:       confirmer,
		Runner:          runner.New(cfg.CommandTimeout(), logger),
		Audit:           auditLog,
		History:         store,
		Logger:          logger,
	})
	if err != nil {
		if auditLog != nil {
			auditLog.Close()
		}
		if store != nil {
			store.Close()
		}
		return nil, err
	}

	return &components{
		cfg:         cfg,
		logger:      logger,
		gate:        g,
		coordinator: coordinator,
		broker:      broker,
		audit:       auditLog,
		history:     store,
	}, nil
}

func (c *components) Close() {
	if c.audit != nil {
		c.audit.Close()
	}
	if c.history != nil {
		c.history.Close()
	}
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
