package handlers

import (
	"errors"
	"net/http"

	"campusconnect-backend/models"
	"campusconnect-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler handles HTTP requests for pipeline operations
type AdminHandler struct {
	ingestService *service.IngestService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(ingestService *service.IngestService) *AdminHandler {
	return &AdminHandler{ingestService: ingestService}
}

// RunIngestion handles POST /api/ingest/run
func (h *AdminHandler) RunIngestion(c *gin.Context) {
	summary, err := h.ingestService.RunIngestion(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INGEST_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"document_count": summary.DocumentCount,
		"chunk_count":    summary.ChunkCount,
		"skipped":        summary.Skipped,
	})
}

// LatestRun handles GET /api/ingest/runs. The kind query parameter picks
// between scrape (default) and index_rebuild runs.
func (h *AdminHandler) LatestRun(c *gin.Context) {
	kind := models.IngestionRunKind(c.DefaultQuery("kind", string(models.RunKindScrape)))
	if kind != models.RunKindScrape && kind != models.RunKindIndexRebuild {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Unknown run kind.",
			},
		})
		return
	}

	run, err := h.ingestService.LatestRun(c.Request.Context(), kind)
	if err != nil {
		h.respondRunError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// GetRun handles GET /api/ingest/runs/:id
func (h *AdminHandler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Invalid run ID.",
			},
		})
		return
	}

	run, err := h.ingestService.RunByID(c.Request.Context(), id)
	if err != nil {
		h.respondRunError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (h *AdminHandler) respondRunError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RUN_NOT_FOUND",
				"message": "No matching ingestion run.",
			},
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "RUN_LOOKUP_FAILED",
			"message": err.Error(),
		},
	})
}

// IndexStatus handles GET /api/index/status
func (h *AdminHandler) IndexStatus(c *gin.Context) {
	count, err := h.ingestService.IndexStatus(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STATUS_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"chunk_count": count,
	})
}

// RebuildIndex handles POST /api/index/rebuild
func (h *AdminHandler) RebuildIndex(c *gin.Context) {
	summary, err := h.ingestService.RebuildIndex(c.Request.Context())
	if err != nil {
		status := http.StatusInternalServerError
		code := "REBUILD_FAILED"
		if errors.Is(err, service.ErrNoArtifact) {
			status = http.StatusConflict
			code = "NO_ARTIFACT"
		}
		c.JSON(status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"document_count": summary.DocumentCount,
		"chunk_count":    summary.ChunkCount,
	})
}
