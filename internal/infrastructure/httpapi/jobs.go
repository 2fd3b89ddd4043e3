package httpapi

import (
	"context"
	"sync"
	"time"

	"ideation-orchestrator/internal/application/port/input"
	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/domain/entity"

	"github.com/google/uuid"
)

type jobStatus string

const (
	jobRunning   jobStatus = "running"
	jobCompleted jobStatus = "completed"
	jobFailed    jobStatus = "failed"
)

type job struct {
	ID         string             `json:"id"`
	Topic      string             `json:"topic"`
	Status     jobStatus          `json:"status"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt *time.Time         `json:"finished_at,omitempty"`
	Error      string             `json:"error,omitempty"`
	Result     *entity.IdeaResult `json:"result,omitempty"`
}

// jobs runs evaluations in the background. Evaluations outlive the request
// that started them but not the server.
type jobs struct {
	mu        sync.RWMutex
	byID      map[string]*job
	evaluator input.Evaluator
	logger    output.LoggerPort
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func newJobs(evaluator input.Evaluator, logger output.LoggerPort) *jobs {
	ctx, cancel := context.WithCancel(context.Background())
	return &jobs{
		byID:      make(map[string]*job),
		evaluator: evaluator,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (j *jobs) start(topic string) job {
	jb := &job{
		ID:        uuid.NewString(),
		Topic:     topic,
		Status:    jobRunning,
		StartedAt: time.Now(),
	}
	j.mu.Lock()
	j.byID[jb.ID] = jb
	snapshot := *jb
	j.mu.Unlock()

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		res, err := j.evaluator.Evaluate(j.ctx, topic)

		j.mu.Lock()
		defer j.mu.Unlock()
		now := time.Now()
		jb.FinishedAt = &now
		jb.Result = res
		if err != nil {
			jb.Status = jobFailed
			jb.Error = err.Error()
			j.logger.Warn("Background evaluation failed", "job", jb.ID, "error", err)
			return
		}
		jb.Status = jobCompleted
	}()
	return snapshot
}

func (j *jobs) get(id string) (job, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	jb, ok := j.byID[id]
	if !ok {
		return job{}, false
	}
	return *jb, true
}

func (j *jobs) close() {
	j.cancel()
	j.wg.Wait()
}
