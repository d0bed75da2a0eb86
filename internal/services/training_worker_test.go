package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glycolog/internal/models"
)

func newWorkerFixture(t *testing.T) (*TrainingWorker, *fakeInsightRepo) {
	t.Helper()
	analysis, insightRepo := newAnalysisFixture(t, sessionSeries(12, time.Now()))
	return NewTrainingWorker(analysis, 1), insightRepo
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestSubmitUserRequiresRunningWorker(t *testing.T) {
	worker, _ := newWorkerFixture(t)

	_, err := worker.SubmitUser(1, "manual")
	assert.Error(t, err)
}

func TestWorkerProcessesSubmittedJob(t *testing.T) {
	worker, insightRepo := newWorkerFixture(t)
	worker.Start()
	defer worker.Stop()

	jobID, err := worker.SubmitUser(1, "manual")
	require.NoError(t, err)
	assert.NotEmpty(t, jobID)

	waitFor(t, 5*time.Second, func() bool {
		return len(insightRepo.created) > 0
	})
}

func TestSubmitUserCollapsesDuplicates(t *testing.T) {
	worker, _ := newWorkerFixture(t)
	// Mark running without starting workers so the first job stays queued
	worker.mu.Lock()
	worker.running = true
	worker.mu.Unlock()

	first, err := worker.SubmitUser(1, "manual")
	require.NoError(t, err)
	require.NotEmpty(t, first)

	// While the first job is queued or running, a second trigger is a no-op
	second, err := worker.SubmitUser(1, "manual")
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestNotifySessionCompletedThreshold(t *testing.T) {
	worker, insightRepo := newWorkerFixture(t)
	worker.Start()
	defer worker.Stop()

	worker.NotifySessionCompleted(models.SessionCompletedEvent{
		UserID:            1,
		CompletedSessions: SessionCompletedThreshold - 1,
	})
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, insightRepo.created)

	worker.NotifySessionCompleted(models.SessionCompletedEvent{
		UserID:            1,
		CompletedSessions: SessionCompletedThreshold,
	})
	waitFor(t, 5*time.Second, func() bool {
		return len(insightRepo.created) > 0
	})
}

func TestWorkerStatus(t *testing.T) {
	worker, _ := newWorkerFixture(t)

	status := worker.GetStatus()
	assert.Equal(t, false, status["running"])

	worker.Start()
	defer worker.Stop()

	status = worker.GetStatus()
	assert.Equal(t, true, status["running"])
	assert.Equal(t, 1, status["worker_count"])
	assert.Equal(t, SessionCompletedThreshold, status["session_threshold"])
	assert.Equal(t, false, status["rabbitmq_connected"])
}
