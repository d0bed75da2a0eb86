package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"glycolog/internal/models"
)

// SessionCompletedThreshold is the minimum number of completed questionnaire
// sessions before a session-completed event is allowed to trigger a training
// run. The check lives here, on the consumer side, so completing a session is
// a plain write with no training logic attached.
const SessionCompletedThreshold = 5

const sessionCompletedQueue = "health.session.completed"

// TrainingWorker runs analysis pipelines asynchronously. Jobs arrive from the
// API, from session-completed events, or from the retrain-all maintenance
// path; at most one job per user is in flight at any time.
type TrainingWorker struct {
	analysis *AnalysisService

	jobQueue    chan models.TrainingJobRequest
	workerCount int
	stopChan    chan struct{}
	wg          sync.WaitGroup
	running     bool
	mu          sync.RWMutex

	// active tracks users with a queued or running job so duplicate triggers
	// collapse instead of stacking.
	active   map[uint]bool
	activeMu sync.Mutex

	conn         *amqp.Connection
	eventChannel *amqp.Channel

	maxJobTimeout time.Duration
}

func NewTrainingWorker(analysis *AnalysisService, workerCount int) *TrainingWorker {
	if workerCount <= 0 {
		workerCount = 2
	}

	return &TrainingWorker{
		analysis:      analysis,
		jobQueue:      make(chan models.TrainingJobRequest, 100),
		workerCount:   workerCount,
		stopChan:      make(chan struct{}),
		active:        make(map[uint]bool),
		maxJobTimeout: 5 * time.Minute,
	}
}

// ========== WORKER LIFECYCLE ==========

func (w *TrainingWorker) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	for i := 0; i < w.workerCount; i++ {
		w.wg.Add(1)
		go w.worker(i)
	}
}

func (w *TrainingWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	if w.eventChannel != nil {
		w.eventChannel.Close()
	}
	if w.conn != nil {
		w.conn.Close()
	}

	close(w.stopChan)
	w.wg.Wait()
}

// ========== JOB SUBMISSION ==========

// SubmitUser enqueues an analysis run for one user. A user with a job already
// queued or running is skipped without error.
func (w *TrainingWorker) SubmitUser(userID uint, trigger string) (string, error) {
	w.mu.RLock()
	if !w.running {
		w.mu.RUnlock()
		return "", fmt.Errorf("training worker is not running")
	}
	w.mu.RUnlock()

	w.activeMu.Lock()
	if w.active[userID] {
		w.activeMu.Unlock()
		return "", nil
	}
	w.active[userID] = true
	w.activeMu.Unlock()

	job := models.TrainingJobRequest{
		JobID:   uuid.New().String(),
		UserID:  userID,
		Trigger: trigger,
	}

	select {
	case w.jobQueue <- job:
		return job.JobID, nil
	case <-time.After(5 * time.Second):
		w.release(userID)
		return "", fmt.Errorf("training queue is full, try again later")
	}
}

// NotifySessionCompleted applies the session-count threshold and, once the
// user crosses it, schedules a training run. Events below the threshold are
// dropped.
func (w *TrainingWorker) NotifySessionCompleted(event models.SessionCompletedEvent) {
	if event.CompletedSessions < SessionCompletedThreshold {
		return
	}
	if _, err := w.SubmitUser(event.UserID, "session_completed"); err != nil {
		log.Printf("Failed to schedule training for user %d: %v", event.UserID, err)
	}
}

// ========== RABBITMQ EVENT CONSUMER ==========

// ConsumeSessionEvents subscribes to the session-completed queue and feeds
// events through NotifySessionCompleted. The broker is optional: a connection
// failure disables event-driven retraining without affecting the rest of the
// worker.
func (w *TrainingWorker) ConsumeSessionEvents(amqpURL string) error {
	var err error
	w.conn, err = amqp.Dial(amqpURL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %v", err)
	}

	w.eventChannel, err = w.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %v", err)
	}

	_, err = w.eventChannel.QueueDeclare(
		sessionCompletedQueue, // name
		true,                  // durable
		false,                 // delete when unused
		false,                 // exclusive
		false,                 // no-wait
		nil,                   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %v", err)
	}

	msgs, err := w.eventChannel.Consume(
		sessionCompletedQueue, // queue
		"training_worker",     // consumer
		false,                 // auto-ack
		false,                 // exclusive
		false,                 // no-local
		false,                 // no-wait
		nil,                   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %v", err)
	}

	w.wg.Add(1)
	go w.handleSessionEvents(msgs)

	return nil
}

func (w *TrainingWorker) handleSessionEvents(msgs <-chan amqp.Delivery) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}

			var event models.SessionCompletedEvent
			if err := json.Unmarshal(msg.Body, &event); err != nil {
				log.Printf("Dropping malformed session event: %v", err)
				msg.Nack(false, false)
				continue
			}

			w.NotifySessionCompleted(event)
			_ = msg.Ack(false)
		}
	}
}

// ========== WORKER IMPLEMENTATION ==========

func (w *TrainingWorker) worker(workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case job := <-w.jobQueue:
			w.processJob(workerID, job)
		}
	}
}

func (w *TrainingWorker) processJob(workerID int, job models.TrainingJobRequest) {
	defer w.release(job.UserID)

	ctx, cancel := context.WithTimeout(context.Background(), w.maxJobTimeout)
	defer cancel()

	result, err := w.analysis.RunForUser(ctx, job.UserID)
	if err != nil {
		log.Printf("[worker %d] Training job %s failed for user %d: %v", workerID, job.JobID, job.UserID, err)
		return
	}

	log.Printf("[worker %d] Training job %s for user %d finished: status=%s symptoms=%d insights=%d",
		workerID, job.JobID, job.UserID, result.Status, len(result.TrainedSymptoms), result.InsightsSaved)
}

func (w *TrainingWorker) release(userID uint) {
	w.activeMu.Lock()
	delete(w.active, userID)
	w.activeMu.Unlock()
}

// ========== STATUS ==========

func (w *TrainingWorker) GetStatus() map[string]interface{} {
	w.mu.RLock()
	defer w.mu.RUnlock()

	w.activeMu.Lock()
	activeCount := len(w.active)
	w.activeMu.Unlock()

	return map[string]interface{}{
		"running":            w.running,
		"worker_count":       w.workerCount,
		"queue_size":         len(w.jobQueue),
		"queue_capacity":     cap(w.jobQueue),
		"active_users":       activeCount,
		"max_job_timeout":    w.maxJobTimeout.String(),
		"session_threshold":  SessionCompletedThreshold,
		"rabbitmq_connected": w.conn != nil && !w.conn.IsClosed(),
	}
}
