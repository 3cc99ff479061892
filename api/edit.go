package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"tasklist/models"
)

// EditSession is the scratch state of a task being edited. It lives only in
// the presentation layer and is never persisted.
type EditSession struct {
	TaskID   string          `json:"taskId"`
	Text     string          `json:"text"`
	Priority models.Priority `json:"priority"`
}

// Editor tracks at most one in-progress edit.
type Editor struct {
	mu      sync.Mutex
	session *EditSession
}

func NewEditor() *Editor { return &Editor{} }

// Start begins editing t, replacing any session already open.
func (e *Editor) Start(t models.Task) EditSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session = &EditSession{TaskID: t.ID, Text: t.Text, Priority: t.Priority}
	return *e.session
}

func (e *Editor) Current() (EditSession, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return EditSession{}, false
	}
	return *e.session, true
}

// Update changes the scratch values; nil arguments are left alone.
func (e *Editor) Update(text *string, priority *models.Priority) (EditSession, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return EditSession{}, false
	}
	if text != nil {
		e.session.Text = *text
	}
	if priority != nil {
		e.session.Priority = *priority
	}
	return *e.session, true
}

// Save commits the session through st. The session is kept when the text is
// rejected so the user can fix it, and dropped otherwise.
func (e *Editor) Save(ctx context.Context, st TaskStore) (EditSession, models.Outcome, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return EditSession{}, 0, false
	}
	sess := *e.session
	out := st.Edit(ctx, sess.TaskID, sess.Text, sess.Priority)
	if out != models.RejectedInvalid {
		e.session = nil
	}
	return sess, out, true
}

// Cancel discards the session without touching the store.
func (e *Editor) Cancel() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	open := e.session != nil
	e.session = nil
	return open
}

// Forget drops the session if it belongs to a deleted task.
func (e *Editor) Forget(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil && e.session.TaskID == id {
		e.session = nil
	}
}

type editInput struct {
	Text     *string `json:"text"`
	Priority *string `json:"priority"`
}

func (s *Server) handleStartEdit(c *gin.Context) {
	task, ok := s.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	c.JSON(http.StatusOK, s.editor.Start(task))
}

func (s *Server) handleGetEdit(c *gin.Context) {
	sess, ok := s.editor.Current()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No edit in progress"})
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (s *Server) handleUpdateEdit(c *gin.Context) {
	var input editInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	var priority *models.Priority
	if input.Priority != nil {
		p, err := models.ParsePriority(*input.Priority)
		if err != nil || p == "" {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid priority"})
			return
		}
		priority = &p
	}

	sess, ok := s.editor.Update(input.Text, priority)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No edit in progress"})
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (s *Server) handleSaveEdit(c *gin.Context) {
	sess, out, ok := s.editor.Save(c.Request.Context(), s.store)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No edit in progress"})
		return
	}
	if respondOutcome(c, out) {
		return
	}
	task, _ := s.store.Get(sess.TaskID)
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleCancelEdit(c *gin.Context) {
	if !s.editor.Cancel() {
		c.JSON(http.StatusNotFound, gin.H{"error": "No edit in progress"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Edit cancelled"})
}
