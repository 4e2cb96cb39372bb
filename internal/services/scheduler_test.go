package services

import (
	"context"
	"testing"
	"time"

	"commerce-core/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpirySweep(t *testing.T) {
	env := newTestEnv()
	env.store.Stock[100] = 3

	expired := seedOrder(env.store, domain.StatusPending, func(o *domain.Order) {
		o.OrderNumber = "ORD-EXPIRED"
		o.CreatedAt = time.Now().Add(-25 * time.Hour)
	})
	fresh := seedOrder(env.store, domain.StatusPending, func(o *domain.Order) {
		o.OrderNumber = "ORD-FRESH"
		o.CreatedAt = time.Now().Add(-1 * time.Hour)
	})

	sched := NewScheduler(env.service, env.store)
	res := sched.RunExpirySweep(context.Background())

	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 1, res.Applied)
	assert.Equal(t, 0, res.Failed)

	cancelled, _ := env.store.FindByID(context.Background(), expired.ID)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CanceledAt)
	assert.Equal(t, int64(5), env.store.Stock[100], "expired order's stock restored")

	untouched, _ := env.store.FindByID(context.Background(), fresh.ID)
	assert.Equal(t, domain.StatusPending, untouched.Status)
}

func TestExpirySweepReentrant(t *testing.T) {
	env := newTestEnv()
	env.store.Stock[100] = 3
	seedOrder(env.store, domain.StatusPending, func(o *domain.Order) {
		o.CreatedAt = time.Now().Add(-48 * time.Hour)
	})

	sched := NewScheduler(env.service, env.store)

	first := sched.RunExpirySweep(context.Background())
	require.Equal(t, 1, first.Applied)
	assert.Equal(t, int64(5), env.store.Stock[100])

	// An immediate re-run finds nothing: the status filter is the marker.
	second := sched.RunExpirySweep(context.Background())
	assert.Equal(t, 0, second.Processed)
	assert.Equal(t, int64(5), env.store.Stock[100], "stock must not be restored twice")
}

func TestCompletionSweep(t *testing.T) {
	env := newTestEnv()

	old := time.Now().Add(-8 * 24 * time.Hour)
	done := seedOrder(env.store, domain.StatusDelivered, func(o *domain.Order) {
		o.OrderNumber = "ORD-OLD-DELIVERY"
		o.DeliveredAt = &old
	})
	recent := time.Now().Add(-24 * time.Hour)
	waiting := seedOrder(env.store, domain.StatusDelivered, func(o *domain.Order) {
		o.OrderNumber = "ORD-RECENT-DELIVERY"
		o.DeliveredAt = &recent
	})

	sched := NewScheduler(env.service, env.store)
	res := sched.RunCompletionSweep(context.Background())

	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 1, res.Applied)

	completed, _ := env.store.FindByID(context.Background(), done.ID)
	assert.Equal(t, domain.StatusCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)

	untouched, _ := env.store.FindByID(context.Background(), waiting.ID)
	assert.Equal(t, domain.StatusDelivered, untouched.Status)
}

func TestSweepIsolatesPerOrderFailures(t *testing.T) {
	env := newTestEnv()
	env.store.Stock[100] = 3

	stale := seedOrder(env.store, domain.StatusPending, func(o *domain.Order) {
		o.OrderNumber = "ORD-STALE"
		o.CreatedAt = time.Now().Add(-48 * time.Hour)
	})
	// This one got paid between the listing and the locked transition.
	raced := seedOrder(env.store, domain.StatusPaid, func(o *domain.Order) {
		o.OrderNumber = "ORD-RACED"
	})

	sched := NewScheduler(env.service, env.store)
	res := sched.sweep(context.Background(), "expiry", []uint64{stale.ID, raced.ID, 9999}, domain.StatusCancelled)

	assert.Equal(t, 3, res.Processed)
	assert.Equal(t, 2, res.Applied, "PENDING and PAID cancellations both apply")
	assert.Equal(t, 1, res.Failed, "missing order counts as a failure")

	cancelledStale, _ := env.store.FindByID(context.Background(), stale.ID)
	assert.Equal(t, domain.StatusCancelled, cancelledStale.Status)
}

func TestSweepSkipsOrdersThatStoppedMatching(t *testing.T) {
	env := newTestEnv()
	// Delivered orders cannot be cancelled; the sweep records a skip, not a
	// failure, and carries on.
	settled := seedOrder(env.store, domain.StatusDelivered)

	sched := NewScheduler(env.service, env.store)
	res := sched.sweep(context.Background(), "expiry", []uint64{settled.ID}, domain.StatusCancelled)

	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 0, res.Applied)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 0, res.Failed)
}
