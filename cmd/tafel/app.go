package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/tafel"
	"github.com/aretw0/tafel/internal/config"
	"github.com/aretw0/tafel/internal/logging"
	"github.com/aretw0/tafel/pkg/adapters/mail"
	"github.com/aretw0/tafel/pkg/adapters/memory"
	"github.com/aretw0/tafel/pkg/adapters/querylog"
	"github.com/aretw0/tafel/pkg/adapters/redis"
	"github.com/aretw0/tafel/pkg/dialogue"
	"github.com/aretw0/tafel/pkg/domain"
	"github.com/aretw0/tafel/pkg/faq"
	"github.com/aretw0/tafel/pkg/observability"
	"github.com/aretw0/tafel/pkg/persistence"
	"github.com/aretw0/tafel/pkg/ports"
	"github.com/aretw0/tafel/pkg/session"
)

// piiKeys are the log attributes masked when log.mask_pii is set.
var piiKeys = []string{"name", "email", "receiver"}

// app bundles the wired components of one process.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	assistant *tafel.Assistant
	metrics   *observability.Metrics
	closers   []func() error
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := logging.Options{
		Level: logging.ParseLevel(cfg.Log.Level),
		JSON:  cfg.Log.Format == "json",
	}
	if cfg.Log.MaskPII {
		opts.MaskKeys = piiKeys
	}
	return logging.NewWithOptions(opts)
}

// newApp wires the assistant from cfg. Background janitors stop when ctx ends.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, logger: newLogger(cfg), metrics: observability.NewMetrics()}

	kb, err := faq.Load(cfg.Knowledge.Path)
	if err != nil {
		return nil, err
	}

	sessions, err := a.newSessionManager(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	notifier := mail.New(mail.Config{
		Host:           cfg.Mail.Host,
		Port:           cfg.Mail.Port,
		Sender:         cfg.Mail.Sender,
		Password:       cfg.Mail.Password,
		Receiver:       cfg.Mail.Receiver,
		AttachCalendar: cfg.Mail.AttachCalendar,
		Location:       cfg.Restaurant.Location(),
		Address:        cfg.Restaurant.Address,
		EventDuration:  cfg.Restaurant.EventDuration,
	}, mail.WithLogger(a.logger))
	if !cfg.Mail.Enabled() {
		a.logger.Warn("mail delivery is not configured; reservations will be answered with the fallback phone number")
	}

	opts := []tafel.Option{
		tafel.WithSessionManager(sessions),
		tafel.WithNotifier(notifier),
		tafel.WithLogger(a.logger),
		tafel.WithDeliveryTimeout(cfg.Mail.Timeout),
		tafel.WithScript(a.script()),
		tafel.WithLifecycleHooks(observability.Chain(a.metrics.Hooks(), a.logHooks())),
	}
	if cfg.QueryLog.Path != "" {
		rec := querylog.New(querylog.Config{
			Path:       cfg.QueryLog.Path,
			MaxSizeMB:  cfg.QueryLog.MaxSizeMB,
			MaxBackups: cfg.QueryLog.MaxBackups,
			MaxAgeDays: cfg.QueryLog.MaxAgeDays,
			Compress:   cfg.QueryLog.Compress,
		}, querylog.WithLogger(a.logger))
		a.closers = append(a.closers, rec.Close)
		opts = append(opts, tafel.WithQueryRecorder(rec))
	}

	a.assistant = tafel.New(kb, opts...)
	return a, nil
}

func (a *app) newSessionManager(ctx context.Context) (*session.Manager, error) {
	cfg := a.cfg.Session
	var (
		store   ports.SessionStore
		mgrOpts = []session.Option{session.WithLogger(a.logger)}
	)

	switch cfg.Backend {
	case "redis":
		storeOpts := []redis.Option{redis.WithTTL(cfg.TTL), redis.WithPrefix(cfg.Redis.Prefix)}
		if cfg.EncryptionKey != "" {
			key, err := persistence.DecodeKey(cfg.EncryptionKey)
			if err != nil {
				return nil, err
			}
			codec, err := persistence.NewSealedCodec(nil, persistence.EncryptionConfig{ActiveKey: key})
			if err != nil {
				return nil, err
			}
			storeOpts = append(storeOpts, redis.WithCodec(codec))
		}
		rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, storeOpts...)
		a.closers = append(a.closers, rs.Close)
		if err := rs.Ping(ctx); err != nil {
			return nil, fmt.Errorf("redis unavailable: %w", err)
		}
		store = rs
		mgrOpts = append(mgrOpts, session.WithLocker(redis.NewLocker(rs.Client(), cfg.Redis.Prefix)))
		a.logger.Info("using redis session store", "addr", cfg.Redis.Addr, "encrypted", cfg.EncryptionKey != "")

	default:
		ms := memory.NewStore(memory.WithTTL(cfg.TTL))
		if cfg.TTL > 0 && cfg.SweepInterval > 0 {
			go ms.Run(ctx, cfg.SweepInterval)
		}
		store = ms
	}

	return session.NewManager(store, mgrOpts...), nil
}

func (a *app) script() dialogue.Script {
	s := dialogue.DefaultScript()
	s.Phone = a.cfg.Restaurant.Phone
	return s
}

func (a *app) logHooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurn: func(ctx context.Context, e *domain.TurnEvent) {
			if e.From != e.To {
				a.logger.Debug("dialogue transition", "client_id", e.ClientID, "from", e.From, "to", e.To)
			}
		},
	}
}

// Close releases files and connections in reverse order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
}
