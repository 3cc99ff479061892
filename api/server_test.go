package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	"tasklist/models"
	"tasklist/store"
	"tasklist/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// countingStore wraps a real store and counts Edit calls.
type countingStore struct {
	*store.Store
	edits int
}

func (c *countingStore) Edit(ctx context.Context, id, text string, priority models.Priority) models.Outcome {
	c.edits++
	return c.Store.Edit(ctx, id, text, priority)
}

func newTestServer(t *testing.T) (*Server, *countingStore) {
	t.Helper()
	st := store.New(utils.NewAdapter(utils.NewMemoryKV(), ""))
	st.Load(context.Background())
	cs := &countingStore{Store: st}
	return New(cs), cs
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func addTask(t *testing.T, s *Server, text, priority string) models.Task {
	t.Helper()
	w := do(t, s, http.MethodPost, "/tasks", taskInput{Text: text, Priority: priority})
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /tasks = %d: %s", w.Code, w.Body.String())
	}
	return decode[models.Task](t, w)
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	if w := do(t, s, http.MethodGet, "/health", nil); w.Code != http.StatusOK {
		t.Errorf("GET /health = %d", w.Code)
	}
}

func TestAddAndList(t *testing.T) {
	s, _ := newTestServer(t)

	milk := addTask(t, s, "buy milk", "medium")
	addTask(t, s, "ship release", "high")

	if w := do(t, s, http.MethodPatch, "/tasks/"+milk.ID+"/toggle", nil); w.Code != http.StatusOK {
		t.Fatalf("toggle = %d", w.Code)
	}

	w := do(t, s, http.MethodGet, "/tasks?status=active", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /tasks = %d", w.Code)
	}
	resp := decode[struct {
		Tasks []models.Task `json:"tasks"`
		Stats models.Stats  `json:"stats"`
	}](t, w)

	if len(resp.Tasks) != 1 || resp.Tasks[0].Text != "ship release" {
		t.Errorf("tasks = %+v", resp.Tasks)
	}
	want := models.Stats{Total: 2, Active: 1, Completed: 1, High: 1, Medium: 1}
	if resp.Stats != want {
		t.Errorf("stats = %+v, want %+v", resp.Stats, want)
	}
}

func TestStatusCodes(t *testing.T) {
	s, _ := newTestServer(t)
	task := addTask(t, s, "existing", "")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"blank text", http.MethodPost, "/tasks", taskInput{Text: "  "}, http.StatusUnprocessableEntity},
		{"bad priority", http.MethodPost, "/tasks", taskInput{Text: "x", Priority: "urgent"}, http.StatusUnprocessableEntity},
		{"bad status filter", http.MethodGet, "/tasks?status=done", nil, http.StatusBadRequest},
		{"bad priority filter", http.MethodGet, "/tasks?priority=urgent", nil, http.StatusBadRequest},
		{"toggle unknown", http.MethodPatch, "/tasks/nope/toggle", nil, http.StatusNotFound},
		{"edit unknown", http.MethodPut, "/tasks/nope", taskInput{Text: "x"}, http.StatusNotFound},
		{"edit blank", http.MethodPut, "/tasks/" + task.ID, taskInput{Text: ""}, http.StatusUnprocessableEntity},
		{"delete unknown", http.MethodDelete, "/tasks/nope", nil, http.StatusNotFound},
		{"edit session unknown", http.MethodPost, "/tasks/nope/edit", nil, http.StatusNotFound},
		{"save without session", http.MethodPost, "/edit/save", nil, http.StatusNotFound},
		{"cancel without session", http.MethodDelete, "/edit", nil, http.StatusNotFound},
		{"export unknown format", http.MethodGet, "/export?format=xml", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(t, s, tt.method, tt.path, tt.body); w.Code != tt.want {
				t.Errorf("%s %s = %d, want %d (%s)", tt.method, tt.path, w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestEditAndDelete(t *testing.T) {
	s, _ := newTestServer(t)
	task := addTask(t, s, "draft", "low")

	w := do(t, s, http.MethodPut, "/tasks/"+task.ID, taskInput{Text: "final", Priority: "high"})
	if w.Code != http.StatusOK {
		t.Fatalf("PUT = %d", w.Code)
	}
	got := decode[models.Task](t, w)
	if got.Text != "final" || got.Priority != models.PriorityHigh || got.ID != task.ID || got.CreatedAt != task.CreatedAt {
		t.Errorf("edited = %+v", got)
	}

	if w := do(t, s, http.MethodDelete, "/tasks/"+task.ID, nil); w.Code != http.StatusOK {
		t.Fatalf("DELETE = %d", w.Code)
	}
	stats := decode[models.Stats](t, do(t, s, http.MethodGet, "/stats", nil))
	if stats.Total != 0 {
		t.Errorf("Total = %d after delete", stats.Total)
	}
}

func TestEditSessionSave(t *testing.T) {
	s, cs := newTestServer(t)
	task := addTask(t, s, "draft", "low")

	w := do(t, s, http.MethodPost, "/tasks/"+task.ID+"/edit", nil)
	sess := decode[EditSession](t, w)
	if sess.TaskID != task.ID || sess.Text != "draft" || sess.Priority != models.PriorityLow {
		t.Fatalf("session = %+v", sess)
	}

	blank := ""
	do(t, s, http.MethodPatch, "/edit", editInput{Text: &blank})
	if w := do(t, s, http.MethodPost, "/edit/save", nil); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("save blank = %d", w.Code)
	}
	if _, ok := s.editor.Current(); !ok {
		t.Fatal("session dropped after rejected save")
	}

	text, priority := "polished", "high"
	if w := do(t, s, http.MethodPatch, "/edit", editInput{Text: &text, Priority: &priority}); w.Code != http.StatusOK {
		t.Fatalf("PATCH /edit = %d", w.Code)
	}
	w = do(t, s, http.MethodPost, "/edit/save", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("save = %d", w.Code)
	}
	got := decode[models.Task](t, w)
	if got.Text != "polished" || got.Priority != models.PriorityHigh {
		t.Errorf("saved = %+v", got)
	}
	if _, ok := s.editor.Current(); ok {
		t.Error("session still open after save")
	}
	if cs.edits != 2 {
		t.Errorf("Edit calls = %d, want 2", cs.edits)
	}
}

func TestEditSessionCancel(t *testing.T) {
	s, cs := newTestServer(t)
	task := addTask(t, s, "keep me", "medium")

	do(t, s, http.MethodPost, "/tasks/"+task.ID+"/edit", nil)
	text := "discarded"
	do(t, s, http.MethodPatch, "/edit", editInput{Text: &text})

	if w := do(t, s, http.MethodDelete, "/edit", nil); w.Code != http.StatusOK {
		t.Fatalf("cancel = %d", w.Code)
	}
	if cs.edits != 0 {
		t.Errorf("Edit calls = %d, want 0", cs.edits)
	}
	got, _ := cs.Get(task.ID)
	if got.Text != "keep me" {
		t.Errorf("text = %q after cancel", got.Text)
	}
}

func TestDeleteClosesEditSession(t *testing.T) {
	s, _ := newTestServer(t)
	task := addTask(t, s, "doomed", "")

	do(t, s, http.MethodPost, "/tasks/"+task.ID+"/edit", nil)
	do(t, s, http.MethodDelete, "/tasks/"+task.ID, nil)

	if _, ok := s.editor.Current(); ok {
		t.Error("session survived task deletion")
	}
}

func TestExport(t *testing.T) {
	s, _ := newTestServer(t)
	addTask(t, s, "report", "high")

	w := do(t, s, http.MethodGet, "/export?format=csv", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("report")) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestAddMany(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(t, s, http.MethodPost, "/tasks", []taskInput{
		{Text: "first", Priority: "high"},
		{Text: "second"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /tasks = %d: %s", w.Code, w.Body.String())
	}
	created := decode[[]models.Task](t, w)
	if len(created) != 2 || created[0].Text != "first" || created[1].Priority != models.PriorityMedium {
		t.Errorf("created = %+v", created)
	}

	stats := decode[models.Stats](t, do(t, s, http.MethodGet, "/stats", nil))
	if stats.Total != 2 || stats.High != 1 || stats.Medium != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestAddManyRejectsWholeBatch(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		body []taskInput
		want int
	}{
		{"empty array", []taskInput{}, http.StatusBadRequest},
		{"blank item", []taskInput{{Text: "ok"}, {Text: "  "}}, http.StatusUnprocessableEntity},
		{"bad priority", []taskInput{{Text: "ok"}, {Text: "x", Priority: "urgent"}}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(t, s, http.MethodPost, "/tasks", tt.body); w.Code != tt.want {
				t.Errorf("POST /tasks = %d, want %d", w.Code, tt.want)
			}
		})
	}

	stats := decode[models.Stats](t, do(t, s, http.MethodGet, "/stats", nil))
	if stats.Total != 0 {
		t.Errorf("Total = %d, want 0 after rejected batches", stats.Total)
	}
}
