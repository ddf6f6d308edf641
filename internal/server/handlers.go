package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atikulmunna/skein/internal/model"
	"github.com/atikulmunna/skein/internal/service"
	"github.com/atikulmunna/skein/internal/settings"
)

func (s *Server) handleLogs(c *gin.Context) {
	resp, err := s.logs.Logs(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp)
	case errors.Is(err, service.ErrDirectoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Logs directory not found", "logs": []model.LogEntry{}})
	case errors.Is(err, service.ErrNoLogFiles):
		c.JSON(http.StatusOK, gin.H{"error": "No log files found", "message": "No log files found"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read log files", "details": err.Error()})
	}
}

func (s *Server) handleSummary(c *gin.Context) {
	resp, err := s.logs.Summary(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp)
	case errors.Is(err, service.ErrDirectoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Logs directory not found"})
	case errors.Is(err, service.ErrNoLogFiles):
		c.JSON(http.StatusOK, gin.H{"error": "No log files found", "details": "Place log files in the logs directory."})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build log summary", "details": err.Error()})
	}
}

func (s *Server) handleGetSettings(c *gin.Context) {
	cfg, err := s.settings.Get(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get settings", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": cfg})
}

func (s *Server) handlePutSettings(c *gin.Context) {
	var u settings.Update
	if err := c.ShouldBindJSON(&u); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": "invalid JSON body: " + err.Error()})
		return
	}
	if err := u.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": err.Error()})
		return
	}

	cfg, err := s.settings.Update(c.Request.Context(), u)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings", "details": err.Error()})
		return
	}

	if s.hub != nil {
		go s.hub.Refresh(context.Background(), "settings")
	}
	c.JSON(http.StatusOK, gin.H{"settings": cfg, "message": "Settings updated successfully"})
}

func (s *Server) handleHealth(c *gin.Context) {
	body := gin.H{
		"status": "ok",
		"uptime": s.uptime().String(),
	}
	if s.hub != nil {
		body["dropped_updates"] = s.hub.Dropped()
	}
	c.JSON(http.StatusOK, body)
}
