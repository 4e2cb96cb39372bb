package services

import (
	"context"
	"log"
	"sync"
	"time"

	"commerce-core/internal/domain"
	"commerce-core/internal/repository"

	"golang.org/x/sync/semaphore"
)

// SweepResult aggregates per-order outcomes of one sweep run. Skipped counts
// orders that stopped matching between listing and the locked transition (for
// example a payment landing mid-sweep); those are not failures.
type SweepResult struct {
	Processed int `json:"processed"`
	Applied   int `json:"applied"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Scheduler drives the two forced transitions that happen without external
// stimulus: payment expiry and delivery auto-completion. Both sweeps are
// re-entrant; the status filter in the repository query is the only
// idempotency marker needed.
type Scheduler struct {
	service *OrderService
	orders  repository.OrderRepository

	paymentTimeout   time.Duration
	autoCompleteBase time.Duration
	expiryInterval   time.Duration
	completeInterval time.Duration
	concurrency      int64
	batchSize        int
}

func NewScheduler(service *OrderService, orders repository.OrderRepository) *Scheduler {
	return &Scheduler{
		service:          service,
		orders:           orders,
		paymentTimeout:   service.cfg.PaymentTimeout,
		autoCompleteBase: service.cfg.AutoCompleteBase,
		expiryInterval:   service.cfg.ExpiryInterval,
		completeInterval: service.cfg.CompleteInterval,
		concurrency:      service.cfg.SweepConcurrency,
		batchSize:        service.cfg.SweepBatchSize,
	}
}

// Start runs both sweeps on their intervals until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx, s.expiryInterval, "expiry", s.RunExpirySweep)
	go s.loop(ctx, s.completeInterval, "completion", s.RunCompletionSweep)
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, name string, run func(context.Context) SweepResult) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res := run(ctx)
			log.Printf("%s sweep: processed=%d applied=%d skipped=%d failed=%d",
				name, res.Processed, res.Applied, res.Skipped, res.Failed)
		}
	}
}

// RunExpirySweep cancels PENDING orders whose payment window has lapsed,
// restoring their stock through the normal cancellation path.
func (s *Scheduler) RunExpirySweep(ctx context.Context) SweepResult {
	cutoff := s.service.now().Add(-s.paymentTimeout)
	ids, err := s.orders.FindPendingBefore(ctx, cutoff, s.batchSize)
	if err != nil {
		log.Printf("expiry sweep: listing failed: %v", err)
		return SweepResult{}
	}
	return s.sweep(ctx, "expiry", ids, domain.StatusCancelled)
}

// RunCompletionSweep closes out DELIVERED orders past the grace period.
func (s *Scheduler) RunCompletionSweep(ctx context.Context) SweepResult {
	cutoff := s.service.now().Add(-s.autoCompleteBase)
	ids, err := s.orders.FindDeliveredBefore(ctx, cutoff, s.batchSize)
	if err != nil {
		log.Printf("completion sweep: listing failed: %v", err)
		return SweepResult{}
	}
	return s.sweep(ctx, "completion", ids, domain.StatusCompleted)
}

// sweep transitions each matched order under bounded concurrency. One order's
// failure never aborts the rest; each transition serializes against any other
// trigger for the same order through its own row-locked transaction.
func (s *Scheduler) sweep(ctx context.Context, name string, ids []uint64, target domain.OrderStatus) SweepResult {
	sem := semaphore.NewWeighted(s.concurrency)
	var (
		mu  sync.Mutex
		res SweepResult
		wg  sync.WaitGroup
	)
	res.Processed = len(ids)

	for _, id := range ids {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(orderID uint64) {
			defer wg.Done()
			defer sem.Release(1)

			_, err := s.service.Transition(ctx, orderID, target, TransitionOptions{})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				res.Applied++
				s.count(name, "applied")
			case IsIllegalTransition(err):
				res.Skipped++
				s.count(name, "skipped")
			default:
				res.Failed++
				s.count(name, "failed")
				log.Printf("%s sweep: order %d: %v", name, orderID, err)
			}
		}(id)
	}

	wg.Wait()
	return res
}

func (s *Scheduler) count(sweep, outcome string) {
	if s.service.orderMetrics == nil {
		return
	}
	s.service.orderMetrics.Sweeps.WithLabelValues(sweep, outcome).Inc()
}
