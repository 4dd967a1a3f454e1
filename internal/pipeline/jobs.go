package pipeline

import (
	"context"
	"crypto/sha256"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dgallion1/quizgest/internal/extract"
	"github.com/google/uuid"
)

// JobStatus represents the state of an import job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusParsing    JobStatus = "parsing"
	StatusExtracting JobStatus = "extracting"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further transitions follow.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job tracks the state of a single document import.
type Job struct {
	mu sync.Mutex

	ID       string           `json:"job_id"`
	Filename string           `json:"filename"`
	Meta     extract.Metadata `json:"-"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	DuplicateOf string    `json:"duplicate_of,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	records  []extract.QuestionRecord
	errors   []string
	done     chan struct{}
	closed   bool
}

// Progress tracks processing progress.
type Progress struct {
	Blocks    int      `json:"blocks"`
	Questions int      `json:"questions"`
	Images    int      `json:"images"`
	Errors    []string `json:"errors"`
}

// NewJob creates a queued job for one uploaded file.
func NewJob(filename string, data []byte, meta extract.Metadata) *Job {
	now := time.Now()
	return &Job{
		ID:          uuid.NewString(),
		Filename:    filename,
		Meta:        meta,
		Status:      StatusQueued,
		Phase:       "queued",
		ContentHash: ContentHashHex(data),
		CreatedAt:   now,
		UpdatedAt:   now,
		fileData:    data,
		done:        make(chan struct{}),
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// FindCompleted returns a completed job, other than exclude, that imported
// the same content with the same metadata.
func (s *JobStore) FindCompleted(hash string, meta extract.Metadata, exclude string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, job := range s.jobs {
		if id == exclude {
			continue
		}
		job.mu.Lock()
		match := job.Status == StatusCompleted && job.ContentHash == hash && job.Meta == meta
		job.mu.Unlock()
		if match {
			return job
		}
	}
	return nil
}

// Counts returns the number of jobs per status.
func (s *JobStore) Counts() map[JobStatus]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[JobStatus]int)
	for _, job := range s.jobs {
		job.mu.Lock()
		counts[job.Status]++
		job.mu.Unlock()
	}
	return counts
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
	if status.Terminal() {
		j.closeDoneLocked()
	}
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// Fail records err and marks the job failed in the given phase. Records
// collected so far are discarded.
func (j *Job) Fail(phase string, err error) {
	j.AddError(err.Error())
	j.mu.Lock()
	j.records = nil
	j.Progress.Questions = 0
	j.Progress.Images = 0
	j.fileData = nil
	j.mu.Unlock()
	j.SetStatus(StatusFailed, phase)
}

// SetBlocks records the number of blocks the reader produced.
func (j *Job) SetBlocks(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Blocks = n
	j.UpdatedAt = time.Now()
}

// AddRecord appends one extracted question.
func (j *Job) AddRecord(rec extract.QuestionRecord) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, rec)
	j.Progress.Questions++
	if rec.Image != nil {
		j.Progress.Images++
	}
	j.UpdatedAt = time.Now()
}

// Complete marks the job completed and releases the uploaded bytes.
func (j *Job) Complete(phase string) {
	j.mu.Lock()
	j.fileData = nil
	j.mu.Unlock()
	j.SetStatus(StatusCompleted, phase)
}

// Records returns a copy of the extracted questions.
func (j *Job) Records() []extract.QuestionRecord {
	j.mu.Lock()
	defer j.mu.Unlock()
	return slices.Clone(j.records)
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// Done is closed once the job completes or fails.
func (j *Job) Done() <-chan struct{} {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.done == nil {
		j.done = make(chan struct{})
		if j.Status.Terminal() {
			j.closeDoneLocked()
		}
	}
	return j.done
}

// Wait blocks until the job finishes or ctx ends.
func (j *Job) Wait(ctx context.Context) error {
	select {
	case <-j.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (j *Job) closeDoneLocked() {
	if j.done == nil {
		j.done = make(chan struct{})
	}
	if !j.closed {
		close(j.done)
		j.closed = true
	}
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID                string                   `json:"job_id"`
	Status            JobStatus                `json:"status"`
	Phase             string                   `json:"phase"`
	Filename          string                   `json:"filename"`
	Category          string                   `json:"category"`
	SubjectOrDuration any                      `json:"subject_or_duration"`
	DuplicateOf       string                   `json:"duplicate_of,omitempty"`
	Progress          Progress                 `json:"progress"`
	Questions         []extract.QuestionRecord `json:"questions,omitempty"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state. Questions are only
// included once the job has completed.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := slices.Clone(j.Progress.Errors)
	if errs == nil {
		errs = []string{}
	}
	snap := JobSnapshot{
		ID:                j.ID,
		Status:            j.Status,
		Phase:             j.Phase,
		Filename:          j.Filename,
		Category:          j.Meta.Category,
		SubjectOrDuration: j.Meta.Tag(),
		DuplicateOf:       j.DuplicateOf,
		Progress: Progress{
			Blocks:    j.Progress.Blocks,
			Questions: j.Progress.Questions,
			Images:    j.Progress.Images,
			Errors:    errs,
		},
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
	if j.Status == StatusCompleted {
		snap.Questions = slices.Clone(j.records)
	}
	return snap
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
