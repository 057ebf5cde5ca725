package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/docmask/internal/masker"
)

// JobStatus represents the state of a publish job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusMasking    JobStatus = "masking"
	StatusPublishing JobStatus = "publishing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Job tracks one uploaded proposal through masking and publishing.
type Job struct {
	mu sync.Mutex

	ID         string `json:"job_id"`
	ProposalID string `json:"proposal_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	errors   []string
}

// Progress is what the job has produced so far.
type Progress struct {
	Tokens    int             `json:"tokens"`
	Masked    int             `json:"masked"`
	Metadata  masker.Metadata `json:"metadata"`
	ContentID string          `json:"content_id,omitempty"`
	Errors    []string        `json:"errors"`
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

// Cleanup removes jobs not updated within the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		stale := now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if stale {
			delete(s.jobs, id)
		}
	}
}

// NewJob creates a queued job for an uploaded file.
func NewJob(filename, proposalID string, data []byte) *Job {
	now := time.Now()
	return &Job{
		ID:         ContentHashHex([]byte(fmt.Sprintf("%s-%s-%d", proposalID, filename, now.UnixNano())))[:20],
		ProposalID: proposalID,
		Status:     StatusQueued,
		Phase:      "queued",
		Filename:   filename,
		CreatedAt:  now,
		UpdatedAt:  now,
		fileData:   data,
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetMasked records the masking outcome.
func (j *Job) SetMasked(res masker.Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Tokens = res.Tokens
	j.Progress.Masked = res.Masked
	j.Progress.Metadata = res.Metadata
	j.UpdatedAt = time.Now()
}

// SetContentID records the CMS content ID of the published record.
func (j *Job) SetContentID(id string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.ContentID = id
	j.UpdatedAt = time.Now()
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// releaseData drops the upload once it has been processed.
func (j *Job) releaseData() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = nil
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID         string    `json:"job_id"`
	ProposalID string    `json:"proposal_id"`
	Status     JobStatus `json:"status"`
	Phase      string    `json:"phase"`
	Filename   string    `json:"filename"`
	Progress   Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	prog := j.Progress
	prog.Errors = append([]string{}, j.Progress.Errors...)
	return JobSnapshot{
		ID:         j.ID,
		ProposalID: j.ProposalID,
		Status:     j.Status,
		Phase:      j.Phase,
		Filename:   j.Filename,
		Progress:   prog,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
