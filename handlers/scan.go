package handlers

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"heavymetal/services"
	"heavymetal/websocket"
)

// ScanHandler handles ingestion-run administration endpoints
type ScanHandler struct {
	scans       services.ScanService
	hub         websocket.Hub
	mediaFolder string
}

// NewScanHandler creates a new scan handler
func NewScanHandler(scans services.ScanService, hub websocket.Hub, mediaFolder string) *ScanHandler {
	return &ScanHandler{scans: scans, hub: hub, mediaFolder: mediaFolder}
}

// Start kicks off a library scan of the configured media folder
func (h *ScanHandler) Start(c *gin.Context) {
	if h.mediaFolder == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "MEDIA_FOLDER is not configured",
		})
		return
	}

	if err := h.scans.Start(h.mediaFolder); err != nil {
		if errors.Is(err, services.ErrScanInProgress) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "a scan is already in progress",
			})
			return
		}
		log.Error("failed to start scan", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to start scan",
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "scan started",
	})
}

// Stop cancels the running scan; the partial batch is committed and a
// checkpoint saved so the next run resumes
func (h *ScanHandler) Stop(c *gin.Context) {
	if !h.scans.Stop() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "no scan in progress",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "scan stopping, partial batch will be committed",
	})
}

// Status returns the progress snapshot of the current or last run
func (h *ScanHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"running": h.scans.Running(),
		"report":  h.scans.Status(),
	})
}

// Progress upgrades the connection to a WebSocket fed with per-batch
// progress messages
func (h *ScanHandler) Progress(c *gin.Context) {
	conn, err := websocket.GetUpgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "err", err)
		return
	}

	client := websocket.NewClient(h.hub, conn)
	h.hub.RegisterClient(client)
	client.StartPumps()
}
