package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"tasklist/models"
)

// TaskStore is the subset of store.Store the handlers depend on.
type TaskStore interface {
	Add(ctx context.Context, text string, priority models.Priority) (models.Task, models.Outcome)
	Toggle(ctx context.Context, id string) models.Outcome
	Edit(ctx context.Context, id, text string, priority models.Priority) models.Outcome
	Delete(ctx context.Context, id string) models.Outcome
	Filter(status models.StatusFilter, priority models.PriorityFilter) []models.Task
	Stats() models.Stats
	Get(id string) (models.Task, bool)
}

type Server struct {
	store  TaskStore
	editor *Editor
	router *gin.Engine
}

func New(st TaskStore) *Server {
	s := &Server{store: st, editor: NewEditor()}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.Default())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/tasks", s.handleList)
	router.POST("/tasks", s.handleAdd)
	router.PATCH("/tasks/:id/toggle", s.handleToggle)
	router.PUT("/tasks/:id", s.handleEdit)
	router.DELETE("/tasks/:id", s.handleDelete)
	router.GET("/stats", s.handleStats)
	router.GET("/export", s.handleExport)

	router.POST("/tasks/:id/edit", s.handleStartEdit)
	router.GET("/edit", s.handleGetEdit)
	router.PATCH("/edit", s.handleUpdateEdit)
	router.POST("/edit/save", s.handleSaveEdit)
	router.DELETE("/edit", s.handleCancelEdit)

	s.router = router
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
