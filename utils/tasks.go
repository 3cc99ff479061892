package utils

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/goccy/go-json"

	"tasklist/models"
)

// DefaultKey is the fixed key the task collection is stored under.
const DefaultKey = "todos"

// Adapter reads and writes the whole task collection as one JSON blob.
// It never reports errors to callers: unreadable data loads as an empty
// collection and failed writes are logged and dropped.
type Adapter struct {
	kv  KV
	key string
}

func NewAdapter(kv KV, key string) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	return &Adapter{kv: kv, key: key}
}

func (a *Adapter) Key() string { return a.key }

// ReadAll returns the stored collection, or an empty one if the key is
// absent or the stored value does not decode as a task array.
func (a *Adapter) ReadAll(ctx context.Context) []models.Task {
	blob, ok, err := a.kv.Get(ctx, a.key)
	if err != nil {
		log.Printf("read %q: %v", a.key, err)
		return []models.Task{}
	}
	if !ok {
		return []models.Task{}
	}
	tasks, err := DecodeTasks([]byte(blob))
	if err != nil {
		log.Printf("discarding stored %q: %v", a.key, err)
		return []models.Task{}
	}
	return tasks
}

// WriteAll overwrites the stored collection. Failures are logged only.
func (a *Adapter) WriteAll(ctx context.Context, tasks []models.Task) {
	blob, err := EncodeTasks(tasks)
	if err != nil {
		log.Printf("encode %q: %v", a.key, err)
		return
	}
	if err := a.kv.Set(ctx, a.key, string(blob)); err != nil {
		log.Printf("write %q: %v", a.key, err)
	}
}

func EncodeTasks(tasks []models.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []models.Task{}
	}
	return json.Marshal(tasks)
}

type taskRecord struct {
	ID        *string `json:"id"`
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
	CreatedAt *int64  `json:"createdAt"`
	Priority  *string `json:"priority"`
}

// DecodeTasks parses a stored blob. A missing priority is filled with medium;
// any other deviation from the expected shape is an error.
func DecodeTasks(blob []byte) ([]models.Task, error) {
	var records []taskRecord
	if err := json.Unmarshal(blob, &records); err != nil {
		return nil, err
	}

	tasks := make([]models.Task, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		if r.ID == nil || r.Text == nil || r.Completed == nil || r.CreatedAt == nil {
			return nil, fmt.Errorf("task %d: missing field", i)
		}
		if *r.ID == "" {
			return nil, fmt.Errorf("task %d: empty id", i)
		}
		if _, dup := seen[*r.ID]; dup {
			return nil, fmt.Errorf("task %d: duplicate id %q", i, *r.ID)
		}
		seen[*r.ID] = struct{}{}
		if strings.TrimSpace(*r.Text) == "" {
			return nil, fmt.Errorf("task %d: empty text", i)
		}

		var p models.Priority
		if r.Priority != nil {
			p = models.Priority(*r.Priority)
			if !p.Valid() {
				return nil, fmt.Errorf("task %d: unknown priority %q", i, *r.Priority)
			}
		}

		tasks = append(tasks, models.Task{
			ID:        *r.ID,
			Text:      *r.Text,
			Completed: *r.Completed,
			CreatedAt: *r.CreatedAt,
			Priority:  p.OrDefault(),
		})
	}
	return tasks, nil
}
