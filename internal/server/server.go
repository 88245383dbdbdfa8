// Package server exposes the planner over a loopback HTTP API so the browser
// extension can hand the portal page off to jadwal.
package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/rs/cors"

	"github.com/julianstephens/jadwal/internal/config"
	"github.com/julianstephens/jadwal/internal/constants"
	"github.com/julianstephens/jadwal/internal/extractor"
	"github.com/julianstephens/jadwal/internal/logger"
	"github.com/julianstephens/jadwal/internal/models"
	"github.com/julianstephens/jadwal/internal/planner"
	"github.com/julianstephens/jadwal/internal/storage"
)

const shutdownTimeout = 5 * time.Second

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type ExtractResponse struct {
	Batch   *models.ImportBatch `json:"batch,omitempty"`
	Courses []models.Course     `json:"courses"`
	Stats   extractor.Stats     `json:"stats"`
	Cached  bool                `json:"cached"`
}

type AddRequest struct {
	CourseID string `json:"course_id" binding:"required"`
	Force    bool   `json:"force"`
}

// extraction is what the cache keeps per page body.
type extraction struct {
	courses []models.Course
	stats   extractor.Stats
}

type Server struct {
	planner *planner.Planner
	cfg     *config.Config
	cache   *cache.Cache
	engine  *gin.Engine
}

func New(p *planner.Planner, cfg *config.Config) *Server {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	s := &Server{
		planner: p,
		cfg:     cfg,
		cache:   cache.New(cfg.ExtractCacheTTL, 2*cfg.ExtractCacheTTL),
		engine:  gin.New(),
	}
	s.engine.Use(gin.Recovery(), requestLogger())

	api := s.engine.Group("/api/v1")
	{
		api.GET("/health", s.health)
		api.POST("/extract", s.extract)
		api.GET("/courses", s.courses)

		api.GET("/timetable", s.timetable)
		api.POST("/timetable", s.add)
		api.DELETE("/timetable", s.clear)
		api.DELETE("/timetable/:id", s.remove)
		api.GET("/timetable/conflicts/:id", s.conflicts)
	}
	return s
}

// Handler returns the routes wrapped in the CORS policy for extension origins.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}).Handler(s.engine)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("handoff server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down handoff server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now(),
	})
}

func (s *Server) extract(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, constants.MaxPageBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "page too large"})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read body", Message: err.Error()})
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty page"})
		return
	}

	sum := sha256.Sum256(body)
	key := "extract:" + hex.EncodeToString(sum[:])

	var res ExtractResponse
	if cached, found := s.cache.Get(key); found {
		x := cached.(extraction)
		res = ExtractResponse{Courses: x.courses, Stats: x.stats, Cached: true}
	} else {
		courses, stats, err := s.planner.Extract(bytes.NewReader(body))
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to parse page", Message: err.Error()})
			return
		}
		s.cache.Set(key, extraction{courses: courses, stats: stats}, cache.DefaultExpiration)
		res = ExtractResponse{Courses: courses, Stats: stats}
	}

	if c.Query("save") == "true" {
		batch, err := s.planner.SaveCatalog(c.DefaultQuery("source", "extension"), res.Courses, res.Stats)
		if err != nil {
			internalError(c, "failed to save catalog", err)
			return
		}
		res.Batch = &batch
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) courses(c *gin.Context) {
	courses, err := s.planner.Courses()
	if err != nil {
		internalError(c, "failed to load courses", err)
		return
	}
	c.JSON(http.StatusOK, courses)
}

func (s *Server) timetable(c *gin.Context) {
	entries := s.planner.Entries()
	if entries == nil {
		entries = []models.TimetableEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) add(c *gin.Context) {
	var req AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	res, err := s.planner.Add(req.CourseID, req.Force)
	if err != nil {
		lookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) conflicts(c *gin.Context) {
	_, info, err := s.planner.Check(c.Param("id"))
	if err != nil {
		lookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) remove(c *gin.Context) {
	removed, err := s.planner.Remove(c.Param("id"))
	if err != nil {
		internalError(c, "failed to remove entry", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (s *Server) clear(c *gin.Context) {
	if err := s.planner.Clear(); err != nil {
		internalError(c, "failed to clear timetable", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func lookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "course not found", Message: err.Error()})
	case errors.Is(err, planner.ErrSlotID):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid course id", Message: err.Error()})
	default:
		internalError(c, "failed to look up course", err)
	}
}

func internalError(c *gin.Context, msg string, err error) {
	logger.Error(msg, "path", c.FullPath(), "err", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msg, Message: err.Error()})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
