package scheduler

import (
	"backoffice/dto/model"
	"backoffice/worker"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakePlans struct {
	due      []model.PaymentPlan
	err      error
	now      time.Time
	cooldown time.Duration
	limit    int
}

func (f *fakePlans) MarkCollectionAttempt(ctx context.Context, planID, orderID string, at time.Time) error {
	return nil
}

func (f *fakePlans) FindDue(ctx context.Context, now time.Time, cooldown time.Duration, limit int) ([]model.PaymentPlan, error) {
	f.now, f.cooldown, f.limit = now, cooldown, limit
	return f.due, f.err
}

type fakeQueue struct {
	jobs   []worker.CollectJob
	reject map[string]bool
}

func (q *fakeQueue) Enqueue(job worker.CollectJob) bool {
	if q.reject[job.PlanID] {
		return false
	}
	q.jobs = append(q.jobs, job)
	return true
}

func TestRunOnceQueuesDuePlans(t *testing.T) {
	id1, id2 := primitive.NewObjectID(), primitive.NewObjectID()
	plans := &fakePlans{due: []model.PaymentPlan{
		{ID: id1, CustomerID: "C1", Amount: 100, Description: "Mart taksiti"},
		{ID: id2, CustomerID: "C2", Amount: 50},
	}}
	queue := &fakeQueue{reject: map[string]bool{id2.Hex(): true}}

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewPlanScheduler(plans, queue, "*/15 * * * *", "Europe/Istanbul", 24*time.Hour, 50)
	s.now = func() time.Time { return now }

	queued, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, queued)

	require.Len(t, queue.jobs, 1)
	assert.Equal(t, worker.CollectJob{PlanID: id1.Hex(), CustomerID: "C1", Amount: 100, Description: "Mart taksiti"}, queue.jobs[0])
	assert.Equal(t, now, plans.now)
	assert.Equal(t, 24*time.Hour, plans.cooldown)
	assert.Equal(t, 50, plans.limit)
}

func TestRunOnceRepositoryError(t *testing.T) {
	s := NewPlanScheduler(&fakePlans{err: errors.New("mongo down")}, &fakeQueue{}, "*/15 * * * *", "UTC", time.Hour, 10)

	_, err := s.RunOnce(context.Background())
	assert.Error(t, err)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewPlanScheduler(&fakePlans{}, &fakeQueue{}, "not a cron", "Nowhere/Invalid", time.Hour, 10)
	assert.Error(t, s.Start())
}

func TestStartRegistersEntry(t *testing.T) {
	s := NewPlanScheduler(&fakePlans{}, &fakeQueue{}, "*/15 * * * *", "Europe/Istanbul", time.Hour, 10)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Len(t, s.GetStatus(), 1)
}
