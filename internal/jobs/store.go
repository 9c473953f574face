package jobs

import (
	"sync"
	"time"
)

// Job states. Terminal states are evicted from the store after the TTL.
const (
	StateQueued     = "QUEUED"
	StateProcessing = "PROCESSING"
	StateSuccess    = "SUCCESS"
	StateFailed     = "FAILED"
	StateDuplicate  = "DUPLICATE"
)

// Job is the client-visible status of one ingestion task.
type Job struct {
	ID        string    `json:"id"`
	FileName  string    `json:"fileName"`
	State     string    `json:"state"`
	Step      string    `json:"step,omitempty"`
	Percent   int       `json:"percent"`
	Error     string    `json:"error,omitempty"`
	Chunks    int       `json:"chunks,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (j Job) Terminal() bool {
	return j.State == StateSuccess || j.State == StateFailed || j.State == StateDuplicate
}

// Store keeps job statuses in memory. Terminal entries live for the
// configured TTL so clients can fetch the outcome, then get evicted.
type Store struct {
	mu   sync.Mutex
	jobs map[string]*entry
	ttl  time.Duration
	now  func() time.Time
}

type entry struct {
	job       Job
	expiresAt time.Time
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Store{
		jobs: make(map[string]*entry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Create registers a new queued job.
func (s *Store) Create(id, fileName string) Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	job := Job{
		ID:        id,
		FileName:  fileName,
		State:     StateQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.jobs[id] = &entry{job: job}
	return job
}

// Get returns the job if it exists and has not expired.
func (s *Store) Get(id string) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked()
	e, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return e.job, true
}

// SetProcessing moves the job to PROCESSING with a step label and percent.
// Used as the orchestrator's progress sink. Reactivating a terminal job,
// as a queue redelivery does, stops its eviction clock.
func (s *Store) SetProcessing(id, step string, percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.jobs[id]
	if !ok {
		// A redelivered task can report progress after its terminal entry
		// expired; resurrect the job so the run stays visible.
		e = &entry{job: Job{ID: id, CreatedAt: s.now()}}
		s.jobs[id] = e
	}
	e.job.State = StateProcessing
	e.job.Step = step
	e.job.Percent = percent
	e.job.UpdatedAt = s.now()
	e.expiresAt = time.Time{}
}

// Finish moves the job to a terminal state and starts its eviction clock.
func (s *Store) Finish(id, state, errMsg string, chunks int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.jobs[id]
	if !ok {
		return
	}
	e.job.State = state
	e.job.Error = errMsg
	e.job.Chunks = chunks
	e.job.Percent = 100
	e.job.Step = ""
	e.job.UpdatedAt = s.now()
	e.expiresAt = s.now().Add(s.ttl)
}

// List returns all live jobs, unsorted.
func (s *Store) List() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked()
	out := make([]Job, 0, len(s.jobs))
	for _, e := range s.jobs {
		out = append(out, e.job)
	}
	return out
}

func (s *Store) evictLocked() {
	now := s.now()
	for id, e := range s.jobs {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(s.jobs, id)
		}
	}
}
