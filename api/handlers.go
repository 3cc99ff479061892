package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"tasklist/export"
	"tasklist/models"
)

type taskInput struct {
	Text     string `json:"text"`
	Priority string `json:"priority"`
}

// respondOutcome writes the error body for a rejected outcome and reports
// whether it did so.
func respondOutcome(c *gin.Context, out models.Outcome) bool {
	switch out {
	case models.RejectedInvalid:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Task text must not be empty"})
		return true
	case models.RejectedNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return true
	}
	return false
}

func (s *Server) handleList(c *gin.Context) {
	status, err := models.ParseStatusFilter(c.Query("status"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	priority, err := models.ParsePriorityFilter(c.Query("priority"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": s.store.Filter(status, priority),
		"stats": s.store.Stats(),
	})
}

// handleAdd accepts either a single task object or an array of them.
func (s *Server) handleAdd(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var many []taskInput
	if err := json.Unmarshal(body, &many); err == nil {
		s.addMany(c, many)
		return
	}

	var input taskInput
	if err := json.Unmarshal(body, &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	priority, err := models.ParsePriority(input.Priority)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	task, out := s.store.Add(c.Request.Context(), input.Text, priority)
	if respondOutcome(c, out) {
		return
	}
	c.JSON(http.StatusCreated, task)
}

// addMany validates every item before adding any, so a bad item leaves the
// collection untouched.
func (s *Server) addMany(c *gin.Context, inputs []taskInput) {
	if len(inputs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No tasks given"})
		return
	}
	priorities := make([]models.Priority, len(inputs))
	for i, in := range inputs {
		p, err := models.ParsePriority(in.Priority)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("task %d: %v", i, err)})
			return
		}
		if strings.TrimSpace(in.Text) == "" {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("task %d: text must not be empty", i)})
			return
		}
		priorities[i] = p
	}

	created := make([]models.Task, 0, len(inputs))
	for i, in := range inputs {
		task, out := s.store.Add(c.Request.Context(), in.Text, priorities[i])
		if respondOutcome(c, out) {
			return
		}
		created = append(created, task)
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleToggle(c *gin.Context) {
	id := c.Param("id")
	if respondOutcome(c, s.store.Toggle(c.Request.Context(), id)) {
		return
	}
	task, _ := s.store.Get(id)
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleEdit(c *gin.Context) {
	id := c.Param("id")
	var input taskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	priority, err := models.ParsePriority(input.Priority)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if respondOutcome(c, s.store.Edit(c.Request.Context(), id, input.Text, priority)) {
		return
	}
	task, _ := s.store.Get(id)
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleDelete(c *gin.Context) {
	id := c.Param("id")
	if respondOutcome(c, s.store.Delete(c.Request.Context(), id)) {
		return
	}
	s.editor.Forget(id)
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Stats())
}

func (s *Server) handleExport(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	tasks := s.store.Filter(models.StatusAll, models.PriorityAll)
	b, err := export.Render(tasks, format, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, export.ContentType(format), b)
}
