// Package handlers exposes the scrape runner and its dataset over HTTP.
package handlers

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"dealerscraper/internal/discovery"
	"dealerscraper/internal/export"
	"dealerscraper/internal/models"
	"dealerscraper/internal/scraper"
	"dealerscraper/internal/util"
	"dealerscraper/internal/validation"
)

// RunStats summarizes the most recent scrape run.
type RunStats struct {
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at,omitempty"`
	EntryURLs    []string  `json:"entry_urls"`
	VehicleCount int       `json:"vehicle_count"`
	LastError    string    `json:"last_error,omitempty"`
}

// Handler holds the in-memory dataset and the scraper that fills it. One
// scrape runs at a time; reads are allowed throughout.
type Handler struct {
	scraper *scraper.Scraper

	mu       sync.RWMutex
	vehicles []*models.VehicleRecord
	running  bool
	lastRun  *RunStats
}

func NewHandler(s *scraper.Scraper) *Handler {
	return &Handler{scraper: s}
}

// ScrapeRequest is the body for POST /api/scrape. Zero-valued limits fall
// back to the run defaults.
type ScrapeRequest struct {
	EntryURLs         []string `json:"entry_urls" binding:"required"`
	MaxVehiclesPerURL int      `json:"max_vehicles_per_url"`
	MaxPages          int      `json:"max_pages"`
	MaxScrolls        int      `json:"max_scrolls"`
	MaxLinks          int      `json:"max_links"`
	Workers           int      `json:"workers"`
	Headless          *bool    `json:"headless"`
	BlockImages       *bool    `json:"block_images"`
}

// StartScrape validates the request and runs the scrape synchronously,
// replacing the stored dataset on success.
func (h *Handler) StartScrape(c *gin.Context) {
	var req ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.SafeErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := validation.ValidateEntryURLs(req.EntryURLs); err != nil {
		util.SafeErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if err := validation.ValidateRunLimits(req.MaxPages, req.MaxScrolls, req.MaxLinks, req.Workers); err != nil {
		util.SafeErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"message": "A scrape is already running",
		})
		return
	}
	h.running = true
	stats := &RunStats{StartedAt: time.Now(), EntryURLs: req.EntryURLs}
	h.lastRun = stats
	h.mu.Unlock()

	headless := true
	if req.Headless != nil {
		headless = *req.Headless
	}
	blockImages := true
	if req.BlockImages != nil {
		blockImages = *req.BlockImages
	}
	cfg := scraper.Config{
		EntryURLs:         req.EntryURLs,
		MaxVehiclesPerURL: req.MaxVehiclesPerURL,
		Limits: discovery.Limits{
			MaxPages:   req.MaxPages,
			MaxScrolls: req.MaxScrolls,
			MaxLinks:   req.MaxLinks,
		},
		Headless:    headless,
		BlockImages: blockImages,
		Workers:     req.Workers,
	}

	vehicles, err := h.scraper.Run(c.Request.Context(), cfg)

	h.mu.Lock()
	h.running = false
	stats.FinishedAt = time.Now()
	if err != nil {
		stats.LastError = err.Error()
		h.mu.Unlock()
		util.SafeErrorResponse(c, http.StatusInternalServerError, "Scrape failed", err)
		return
	}
	h.vehicles = vehicles
	stats.VehicleCount = len(vehicles)
	h.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Scraped %d vehicles", len(vehicles)),
		"count":   len(vehicles),
	})
}

// GetVehicles returns the current dataset.
func (h *Handler) GetVehicles(c *gin.Context) {
	h.mu.RLock()
	vehicles := h.vehicles
	h.mu.RUnlock()

	if vehicles == nil {
		vehicles = []*models.VehicleRecord{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"count":    len(vehicles),
		"vehicles": vehicles,
	})
}

// ExportVehicles streams the dataset as a CSV or JSON download.
func (h *Handler) ExportVehicles(c *gin.Context) {
	h.mu.RLock()
	vehicles := h.vehicles
	h.mu.RUnlock()

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", `attachment; filename="inventory.csv"`)
		if err := export.WriteCSV(c.Writer, vehicles); err != nil {
			util.SafeErrorResponse(c, http.StatusInternalServerError, "Export failed", err)
		}
	case "json":
		c.Header("Content-Type", "application/json")
		c.Header("Content-Disposition", `attachment; filename="inventory.json"`)
		if err := export.WriteJSON(c.Writer, vehicles); err != nil {
			util.SafeErrorResponse(c, http.StatusInternalServerError, "Export failed", err)
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "format must be csv or json",
		})
	}
}

// GetStatus reports whether a scrape is running and the last run's stats.
func (h *Handler) GetStatus(c *gin.Context) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"running":  h.running,
		"count":    len(h.vehicles),
		"last_run": h.lastRun,
	})
}

// HealthCheck is the load balancer probe.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// SetDataset replaces the stored dataset. Used by tests and by offline
// imports.
func (h *Handler) SetDataset(vehicles []*models.VehicleRecord) {
	h.mu.Lock()
	h.vehicles = vehicles
	h.mu.Unlock()
}
