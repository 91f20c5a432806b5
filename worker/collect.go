package worker

import (
	"backoffice/helper"
	"backoffice/pkg/apperr"
	"backoffice/service"
	"context"
	"sync"
	"time"
)

type Collector interface {
	Collect(ctx context.Context, in service.CollectInput) (*service.CollectResult, error)
}

// PlanStamper records a collection attempt so the plan waits out the
// scheduler cooldown.
type PlanStamper interface {
	MarkCollectionAttempt(ctx context.Context, planID, orderID string, at time.Time) error
}

// CollectJob is one due payment plan waiting to be charged.
type CollectJob struct {
	PlanID      string
	CustomerID  string
	Amount      float64
	Description string
}

// CollectWorker drains a bounded queue of plan collections with a fixed
// number of goroutines. A plan is never queued twice while in flight.
type CollectWorker struct {
	collector Collector
	plans     PlanStamper
	queue     chan CollectJob
	workers   int
	inFlight  sync.Map
	wg        sync.WaitGroup
	logger    *helper.ChannelHelpers
	now       func() time.Time
}

// NewCollectWorker builds a worker pool. plans may be nil, in which case
// failed plans are retried on every scheduler tick.
func NewCollectWorker(collector Collector, plans PlanStamper, workers, queueSize int) *CollectWorker {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	return &CollectWorker{
		collector: collector,
		plans:     plans,
		queue:     make(chan CollectJob, queueSize),
		workers:   workers,
		logger:    helper.SchedulerLogger,
		now:       time.Now,
	}
}

// Start launches the workers. They exit when ctx is done or Stop is called.
func (w *CollectWorker) Start(ctx context.Context) {
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-w.queue:
					if !ok {
						return
					}
					w.process(ctx, job)
				}
			}
		}()
	}
}

// Enqueue reports whether the job was accepted. Duplicates of an in-flight
// plan and jobs arriving on a full queue are dropped; the plan stays due and
// the next tick picks it up.
func (w *CollectWorker) Enqueue(job CollectJob) bool {
	if _, loaded := w.inFlight.LoadOrStore(job.PlanID, true); loaded {
		return false
	}

	select {
	case w.queue <- job:
		return true
	default:
		w.inFlight.Delete(job.PlanID)
		w.logger.LogWithData("WARN", "Collection queue full, plan skipped", map[string]interface{}{
			"plan_id":     job.PlanID,
			"customer_id": job.CustomerID,
		})
		return false
	}
}

// Stop closes the queue and waits for running jobs to finish.
func (w *CollectWorker) Stop() {
	close(w.queue)
	w.wg.Wait()
}

func (w *CollectWorker) process(ctx context.Context, job CollectJob) {
	defer w.inFlight.Delete(job.PlanID)

	res, err := w.collector.Collect(ctx, service.CollectInput{
		CustomerID:    job.CustomerID,
		Amount:        job.Amount,
		Description:   job.Description,
		PaymentPlanID: job.PlanID,
	})
	if err != nil {
		level := "ERROR"
		if apperr.IsKind(err, apperr.NotFound) || apperr.IsKind(err, apperr.Conflict) {
			level = "WARN"
		}
		w.logger.LogWithData(level, "Scheduled collection failed", map[string]interface{}{
			"plan_id":     job.PlanID,
			"customer_id": job.CustomerID,
			"kind":        string(apperr.KindOf(err)),
			"error":       err.Error(),
		})
		if backOff(err) {
			w.stamp(ctx, job)
		}
		return
	}

	helper.Info("Scheduled collection for plan %s submitted as order %s", job.PlanID, res.OrderID)
}

// backOff reports whether the plan should wait out the cooldown before the
// next try. Conflicts mean another collection holds the customer, and
// internal errors are usually transient storage trouble.
func backOff(err error) bool {
	if apperr.IsRetryable(err) {
		return false
	}
	return !apperr.IsKind(err, apperr.Conflict) && !apperr.IsKind(err, apperr.Internal)
}

func (w *CollectWorker) stamp(ctx context.Context, job CollectJob) {
	if w.plans == nil {
		return
	}
	if err := w.plans.MarkCollectionAttempt(context.WithoutCancel(ctx), job.PlanID, "", w.now()); err != nil {
		helper.Warn("Error stamping failed collection for plan %s: %v", job.PlanID, err)
	}
}
