package handler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yumyai/protclass/logger"
	"github.com/yumyai/protclass/pkg/model"
	"github.com/yumyai/protclass/pkg/sequence"
	"go.uber.org/zap"
)

// BatchJobStatus represents the lifecycle of a batch classification request.
type BatchJobStatus string

const (
	BatchJobQueued    BatchJobStatus = "queued"
	BatchJobRunning   BatchJobStatus = "running"
	BatchJobCompleted BatchJobStatus = "completed"
	BatchJobFailed    BatchJobStatus = "failed"
)

var errJobNotFound = errors.New("batch job not found")

// RecordError is a per-record failure inside a batch.
type RecordError struct {
	SequenceID string `json:"sequence_id"`
	Error      string `json:"error"`
}

// BatchJob tracks one FASTA upload while its records are classified.
type BatchJob struct {
	ID        string         `json:"job_id"`
	Status    BatchJobStatus `json:"status"`
	Total     int            `json:"total"`
	Completed int            `json:"completed"`
	ResultIDs []string       `json:"result_ids"`
	Errors    []RecordError  `json:"errors"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// BatchJobManager stores batch job states indexed by job ID.
type BatchJobManager struct {
	mu      sync.RWMutex
	jobs    map[string]*BatchJob
	workers int
}

// NewBatchJobManager constructs a job manager with no jobs. Each job
// classifies at most workers records concurrently.
func NewBatchJobManager(workers int) *BatchJobManager {
	if workers <= 0 {
		workers = 1
	}
	return &BatchJobManager{
		jobs:    make(map[string]*BatchJob),
		workers: workers,
	}
}

// NewJob registers a queued job for total records.
func (m *BatchJobManager) NewJob(total int) *BatchJob {
	now := time.Now().UTC()
	job := &BatchJob{
		ID:        uuid.New().String(),
		Status:    BatchJobQueued,
		Total:     total,
		ResultIDs: []string{},
		Errors:    []RecordError{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()
	return job.snapshot()
}

// SetRunning marks the job as running.
func (m *BatchJobManager) SetRunning(jobID string) {
	m.updateJob(jobID, func(job *BatchJob) {
		job.Status = BatchJobRunning
	})
}

// RecordResult appends a stored result to the job.
func (m *BatchJobManager) RecordResult(jobID, resultID string) {
	m.updateJob(jobID, func(job *BatchJob) {
		job.Completed++
		job.ResultIDs = append(job.ResultIDs, resultID)
	})
}

// RecordFailure notes a record that could not be classified.
func (m *BatchJobManager) RecordFailure(jobID, sequenceID string, err error) {
	m.updateJob(jobID, func(job *BatchJob) {
		job.Completed++
		job.Errors = append(job.Errors, RecordError{SequenceID: sequenceID, Error: err.Error()})
	})
}

// CompleteJob marks the job complete. A job where every record failed is
// marked failed instead.
func (m *BatchJobManager) CompleteJob(jobID string) {
	m.updateJob(jobID, func(job *BatchJob) {
		if job.Total > 0 && len(job.ResultIDs) == 0 {
			job.Status = BatchJobFailed
			job.Error = "no record could be classified"
			return
		}
		job.Status = BatchJobCompleted
	})
}

// GetJob returns a copy of the job's current state.
func (m *BatchJobManager) GetJob(jobID string) (*BatchJob, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, false
	}
	return job.snapshot(), true
}

// Run classifies and stores every record of the job. It blocks until all
// records are done; callers start it on its own goroutine.
func (m *BatchJobManager) Run(ctx context.Context, jobID string, records []sequence.Record, analyze func(context.Context, model.Request) (string, error), useEmbedding bool) {
	m.SetRunning(jobID)
	start := time.Now()

	sem := make(chan struct{}, m.workers)
	var wg sync.WaitGroup
	for _, rec := range records {
		wg.Add(1)
		sem <- struct{}{}
		go func(rec sequence.Record) {
			defer wg.Done()
			defer func() { <-sem }()

			id, err := analyze(ctx, model.Request{SequenceID: rec.ID, Sequence: rec.Sequence, UseEmbedding: useEmbedding})
			if err != nil {
				m.RecordFailure(jobID, rec.ID, err)
				return
			}
			m.RecordResult(jobID, id)
		}(rec)
	}
	wg.Wait()

	m.CompleteJob(jobID)
	logger.Info("Batch job finished",
		zap.String("job_id", jobID),
		zap.Int("records", len(records)),
		zap.Duration("duration", time.Since(start)),
	)
}

func (m *BatchJobManager) updateJob(jobID string, update func(job *BatchJob)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return
	}

	update(job)
	job.UpdatedAt = time.Now().UTC()
}

func (j *BatchJob) snapshot() *BatchJob {
	c := *j
	c.ResultIDs = append([]string(nil), j.ResultIDs...)
	c.Errors = append([]RecordError(nil), j.Errors...)
	if c.ResultIDs == nil {
		c.ResultIDs = []string{}
	}
	if c.Errors == nil {
		c.Errors = []RecordError{}
	}
	return &c
}
