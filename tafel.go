package tafel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/tafel/internal/logging"
	"github.com/aretw0/tafel/internal/sanitize"
	"github.com/aretw0/tafel/pkg/adapters/memory"
	"github.com/aretw0/tafel/pkg/dialogue"
	"github.com/aretw0/tafel/pkg/domain"
	"github.com/aretw0/tafel/pkg/faq"
	"github.com/aretw0/tafel/pkg/ports"
	"github.com/aretw0/tafel/pkg/session"
)

const (
	// DefaultDeliveryTimeout bounds a single notifier call.
	DefaultDeliveryTimeout = 20 * time.Second
	// DefaultSessionTTL is the idle time after which the default store forgets a session.
	DefaultSessionTTL = 30 * time.Minute
)

// ErrNoNotifier is reported to hooks when a reservation is finalized but no notifier is configured.
var ErrNoNotifier = errors.New("no notifier configured")

// Assistant is the high-level entry point: it answers one chat message per call.
// It is safe for concurrent use; messages of the same client are serialized.
type Assistant struct {
	kb              *faq.KnowledgeBase
	machine         *dialogue.Machine
	sessions        *session.Manager
	notifier        ports.Notifier
	recorder        ports.QueryRecorder
	hooks           domain.LifecycleHooks
	logger          *slog.Logger
	script          *dialogue.Script
	deliveryTimeout time.Duration
	maxInputSize    int
	now             func() time.Time
}

// Option defines a functional option for configuring the Assistant.
type Option func(*Assistant)

// WithSessionManager replaces the default in-memory session manager.
func WithSessionManager(m *session.Manager) Option {
	return func(a *Assistant) {
		a.sessions = m
	}
}

// WithNotifier sets the reservation delivery channel.
func WithNotifier(n ports.Notifier) Option {
	return func(a *Assistant) {
		a.notifier = n
	}
}

// WithQueryRecorder sets the sink for unanswered questions.
func WithQueryRecorder(r ports.QueryRecorder) Option {
	return func(a *Assistant) {
		a.recorder = r
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *Assistant) {
		a.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assistant) {
		a.logger = logger
	}
}

// WithScript replaces the dialogue phrases and texts.
func WithScript(s dialogue.Script) Option {
	return func(a *Assistant) {
		a.script = &s
	}
}

// WithDeliveryTimeout bounds the notifier call. Non-positive values are ignored.
func WithDeliveryTimeout(d time.Duration) Option {
	return func(a *Assistant) {
		if d > 0 {
			a.deliveryTimeout = d
		}
	}
}

// WithMaxInputSize sets the maximum accepted message size in bytes.
func WithMaxInputSize(n int) Option {
	return func(a *Assistant) {
		a.maxInputSize = n
	}
}

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Assistant) {
		a.now = now
	}
}

// New creates an Assistant answering from kb. A nil kb uses the embedded default base.
func New(kb *faq.KnowledgeBase, opts ...Option) *Assistant {
	if kb == nil {
		kb = faq.Default()
	}
	a := &Assistant{
		kb:              kb,
		deliveryTimeout: DefaultDeliveryTimeout,
		maxInputSize:    sanitize.DefaultMaxInputSize,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = logging.NewNop()
	}
	if a.sessions == nil {
		a.sessions = session.NewManager(
			memory.NewStore(memory.WithTTL(DefaultSessionTTL)),
			session.WithLogger(a.logger),
		)
	}

	var machineOpts []dialogue.Option
	if a.script != nil {
		machineOpts = append(machineOpts, dialogue.WithScript(*a.script))
	}
	a.machine = dialogue.New(kb, machineOpts...)
	return a
}

// KnowledgeBase returns the base the assistant answers from.
func (a *Assistant) KnowledgeBase() *faq.KnowledgeBase {
	return a.kb
}

// Sessions returns the session manager.
func (a *Assistant) Sessions() *session.Manager {
	return a.sessions
}

// Ask answers a single question from the knowledge base without touching any session.
// Unanswered questions are recorded like chat messages.
func (a *Assistant) Ask(ctx context.Context, query string) (faq.Result, error) {
	clean, err := a.sanitize(query)
	if err != nil {
		return faq.Result{}, err
	}
	res := a.kb.Lookup(clean)
	a.observeFAQ(ctx, "", clean, res)
	return res, nil
}

// Reply processes one message of clientID and returns the text to show.
//
// The client's session lock is held only while the dialogue steps. When the
// message finalizes a reservation, the notifier runs afterwards, detached from
// ctx cancellation and bounded by the delivery timeout.
func (a *Assistant) Reply(ctx context.Context, clientID, message string) (string, error) {
	if clientID == "" {
		return "", fmt.Errorf("%w: missing client id", domain.ErrInvalidInput)
	}
	clean, err := a.sanitize(message)
	if err != nil {
		return "", err
	}

	start := a.now()
	var (
		out  dialogue.Outcome
		from domain.Stage
	)
	_, err = a.sessions.Update(ctx, clientID, func(s *domain.Session) error {
		from = s.Stage
		out = a.machine.Step(*s, clean)
		*s = out.Session
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to process message: %w", err)
	}

	if out.FAQ != nil {
		a.observeFAQ(ctx, clientID, clean, *out.FAQ)
	}
	if a.hooks.OnTurn != nil {
		a.hooks.OnTurn(ctx, &domain.TurnEvent{
			EventBase: domain.EventBase{Timestamp: a.now(), Type: domain.EventTurn, ClientID: clientID},
			From:      from,
			To:        out.Session.Stage,
			Duration:  a.now().Sub(start),
		})
	}

	if out.Submit == nil {
		return out.Reply, nil
	}

	ok, err := a.deliver(ctx, clientID, *out.Submit)
	if err != nil {
		return "", err
	}
	return a.machine.Script().DeliveryReply(ok), nil
}

func (a *Assistant) sanitize(message string) (string, error) {
	clean, err := sanitize.Input(message, a.maxInputSize)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return clean, nil
}

func (a *Assistant) observeFAQ(ctx context.Context, clientID, query string, res faq.Result) {
	if !res.Matched() {
		a.logger.Debug("unanswered question", "client_id", clientID)
		if a.recorder != nil {
			a.recorder.Record(query)
		}
	}
	if a.hooks.OnFAQ != nil {
		ev := &domain.FAQEvent{
			EventBase: domain.EventBase{Timestamp: a.now(), Type: domain.EventFAQ, ClientID: clientID},
			Matched:   res.Matched(),
		}
		if res.Record != nil {
			ev.RecordID = res.Record.ID
		}
		a.hooks.OnFAQ(ctx, ev)
	}
}

// deliver hands the reservation to the notifier on its own goroutine.
// It reports whether delivery succeeded; the error is only set when ctx ends first,
// in which case delivery keeps running in the background.
func (a *Assistant) deliver(ctx context.Context, clientID string, res domain.Reservation) (bool, error) {
	done := make(chan error, 1)

	go func() {
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.deliveryTimeout)
		defer cancel()

		start := a.now()
		var err error
		if a.notifier == nil {
			err = ErrNoNotifier
		} else {
			err = a.notifier.Notify(dctx, res)
			if err == nil && dctx.Err() != nil {
				err = dctx.Err()
			}
		}

		if err != nil {
			a.logger.Error("reservation delivery failed", "client_id", clientID, "error", err)
		} else {
			a.logger.Info("reservation delivered", "client_id", clientID, "persons", res.Persons)
		}
		if a.hooks.OnDelivery != nil {
			a.hooks.OnDelivery(dctx, &domain.DeliveryEvent{
				EventBase: domain.EventBase{Timestamp: a.now(), Type: domain.EventDelivery, ClientID: clientID},
				Duration:  a.now().Sub(start),
				Err:       err,
			})
		}
		done <- err
	}()

	// Notifiers ignoring their context still count as failed once the timeout passed.
	timer := time.NewTimer(a.deliveryTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err == nil, nil
	case <-timer.C:
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
