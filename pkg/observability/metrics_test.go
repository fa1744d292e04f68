package observability_test

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/tafel/pkg/domain"
	"github.com/aretw0/tafel/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics()
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnTurn(ctx, &domain.TurnEvent{To: domain.StageWaitingForName, Duration: time.Millisecond})
	hooks.OnTurn(ctx, &domain.TurnEvent{To: domain.StageWaitingForName})
	hooks.OnFAQ(ctx, &domain.FAQEvent{Matched: true})
	hooks.OnFAQ(ctx, &domain.FAQEvent{Matched: false})
	hooks.OnDelivery(ctx, &domain.DeliveryEvent{Err: errors.New("boom")})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Turns.WithLabelValues(string(domain.StageWaitingForName))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FAQLookups.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FAQLookups.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Deliveries.WithLabelValues("failure")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Deliveries.WithLabelValues("success")))
}

func TestMetrics_Handler(t *testing.T) {
	m := observability.NewMetrics()
	m.Hooks().OnFAQ(context.Background(), &domain.FAQEvent{Matched: true})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `tafel_faq_lookups_total{matched="true"} 1`)
}

func TestChain(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{OnFAQ: func(context.Context, *domain.FAQEvent) { calls = append(calls, "a") }}
	b := domain.LifecycleHooks{
		OnFAQ:  func(context.Context, *domain.FAQEvent) { calls = append(calls, "b") },
		OnTurn: func(context.Context, *domain.TurnEvent) { calls = append(calls, "turn") },
	}

	h := observability.Chain(a, b)
	h.OnFAQ(context.Background(), &domain.FAQEvent{})
	h.OnTurn(context.Background(), &domain.TurnEvent{})

	assert.Equal(t, []string{"a", "b", "turn"}, calls)
	assert.Nil(t, h.OnDelivery)
}
