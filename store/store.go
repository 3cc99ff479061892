package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"tasklist/models"
)

// Persister loads and saves the complete task collection.
type Persister interface {
	ReadAll(ctx context.Context) []models.Task
	WriteAll(ctx context.Context, tasks []models.Task)
}

// Store owns the in-memory task collection. Every applied mutation replaces
// the whole collection and writes it through the Persister before returning.
type Store struct {
	mu    sync.Mutex
	tasks []models.Task
	p     Persister
	now   func() time.Time
	newID func() string
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDFunc(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func New(p Persister, opts ...Option) *Store {
	s := &Store{
		tasks: []models.Task{},
		p:     p,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory collection with the persisted one.
func (s *Store) Load(ctx context.Context) {
	tasks := s.p.ReadAll(ctx)
	if tasks == nil {
		tasks = []models.Task{}
	}
	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()
}

// Add prepends a new task. Blank text or an unknown priority is rejected;
// an empty priority means medium.
func (s *Store) Add(ctx context.Context, text string, priority models.Priority) (models.Task, models.Outcome) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Task{}, models.RejectedInvalid
	}
	priority = priority.OrDefault()
	if !priority.Valid() {
		return models.Task{}, models.RejectedInvalid
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := models.Task{
		ID:        s.uniqueID(),
		Text:      text,
		Completed: false,
		CreatedAt: s.now().UnixMilli(),
		Priority:  priority,
	}
	next := make([]models.Task, 0, len(s.tasks)+1)
	next = append(next, t)
	next = append(next, s.tasks...)
	s.commit(ctx, next)
	return t, models.Applied
}

// Toggle flips the completed flag of the task with the given id.
func (s *Store) Toggle(ctx context.Context, id string) models.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(ctx, id, func(t *models.Task) {
		t.Completed = !t.Completed
	})
}

// Edit replaces the text and, when priority is non-empty, the priority of a
// task. Identity, completion and creation time are left alone.
func (s *Store) Edit(ctx context.Context, id, text string, priority models.Priority) models.Outcome {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.RejectedInvalid
	}
	if priority != "" && !priority.Valid() {
		return models.RejectedInvalid
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(ctx, id, func(t *models.Task) {
		t.Text = text
		if priority != "" {
			t.Priority = priority
		}
	})
}

// Delete removes the task with exactly the given id.
func (s *Store) Delete(ctx context.Context, id string) models.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(id) < 0 {
		return models.RejectedNotFound
	}
	next := make([]models.Task, 0, len(s.tasks)-1)
	for _, t := range s.tasks {
		if t.ID != id {
			next = append(next, t)
		}
	}
	s.commit(ctx, next)
	return models.Applied
}

// Filter returns a copy of the tasks matching both filters, in collection order.
func (s *Store) Filter(status models.StatusFilter, priority models.PriorityFilter) []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FilterTasks(s.tasks, status, priority)
}

func (s *Store) Stats() models.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeStats(s.tasks)
}

// List returns a copy of the whole collection.
func (s *Store) List() []models.Task {
	return s.Filter(models.StatusAll, models.PriorityAll)
}

func (s *Store) Get(id string) (models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i], true
	}
	return models.Task{}, false
}

// update applies fn to a copy of the matching task inside a fresh slice.
// Callers hold s.mu.
func (s *Store) update(ctx context.Context, id string, fn func(*models.Task)) models.Outcome {
	i := s.indexOf(id)
	if i < 0 {
		return models.RejectedNotFound
	}
	next := make([]models.Task, len(s.tasks))
	copy(next, s.tasks)
	fn(&next[i])
	s.commit(ctx, next)
	return models.Applied
}

// commit installs next and writes it through. The write ignores caller
// cancellation: once a mutation is applied in memory it must reach storage.
func (s *Store) commit(ctx context.Context, next []models.Task) {
	s.tasks = next
	s.p.WriteAll(context.WithoutCancel(ctx), next)
}

func (s *Store) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// uniqueID draws ids until one is unused; an injected generator may repeat.
func (s *Store) uniqueID() string {
	for {
		id := s.newID()
		if id != "" && s.indexOf(id) < 0 {
			return id
		}
	}
}
