package scheduler

import (
	"backoffice/repository"
	"backoffice/worker"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

type Enqueuer interface {
	Enqueue(job worker.CollectJob) bool
}

// PlanScheduler periodically queues due payment plans for collection.
type PlanScheduler struct {
	cron      *cron.Cron
	schedule  string
	plans     repository.PaymentPlanRepository
	queue     Enqueuer
	cooldown  time.Duration
	batchSize int
	now       func() time.Time
}

func NewPlanScheduler(plans repository.PaymentPlanRepository, queue Enqueuer, schedule, timezone string, cooldown time.Duration, batchSize int) *PlanScheduler {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		log.Printf("Error loading %s location: %v, using UTC", timezone, err)
		location = time.UTC
	}

	log.Printf("Scheduler timezone: %s", location.String())

	return &PlanScheduler{
		cron:      cron.New(cron.WithLocation(location)),
		schedule:  schedule,
		plans:     plans,
		queue:     queue,
		cooldown:  cooldown,
		batchSize: batchSize,
		now:       time.Now,
	}
}

func (ps *PlanScheduler) Start() error {
	entryID, err := ps.cron.AddFunc(ps.schedule, func() {
		queued, err := ps.RunOnce(context.Background())
		if err != nil {
			log.Printf("Error collecting due plans: %v", err)
			return
		}
		if queued > 0 {
			log.Printf("Queued %d due payment plans", queued)
		}
	})
	if err != nil {
		return fmt.Errorf("error scheduling plan collection %q: %w", ps.schedule, err)
	}

	log.Printf("Plan scheduler started with entry ID: %d, schedule %q", entryID, ps.schedule)
	ps.cron.Start()
	return nil
}

// Stop waits for a running tick to finish.
func (ps *PlanScheduler) Stop() {
	<-ps.cron.Stop().Done()
}

// RunOnce queues every plan currently due and returns how many were
// accepted.
func (ps *PlanScheduler) RunOnce(ctx context.Context) (int, error) {
	due, err := ps.plans.FindDue(ctx, ps.now(), ps.cooldown, ps.batchSize)
	if err != nil {
		return 0, fmt.Errorf("error loading due plans: %w", err)
	}

	queued := 0
	for _, plan := range due {
		if ps.queue.Enqueue(worker.CollectJob{
			PlanID:      plan.ID.Hex(),
			CustomerID:  plan.CustomerID,
			Amount:      plan.Amount,
			Description: plan.Description,
		}) {
			queued++
		}
	}
	return queued, nil
}

func (ps *PlanScheduler) GetStatus() map[string]interface{} {
	entries := ps.cron.Entries()
	status := make(map[string]interface{})

	for i, entry := range entries {
		status[fmt.Sprintf("entry_%d", i)] = map[string]interface{}{
			"id":       entry.ID,
			"next_run": entry.Next.Format("2006-01-02 15:04:05"),
			"schedule": ps.schedule,
		}
	}

	return status
}
