package handlers

import (
	"errors"
	"net/http"

	"campusconnect-backend/service"

	"github.com/gin-gonic/gin"
)

// QueryHandler handles HTTP requests for chatbot queries
type QueryHandler struct {
	queryService *service.QueryService
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(queryService *service.QueryService) *QueryHandler {
	return &QueryHandler{queryService: queryService}
}

// QueryRequest represents the request body for a chatbot query
type QueryRequest struct {
	Query string `json:"query" binding:"required"`
}

// HandleQuery handles POST /api/query
func (h *QueryHandler) HandleQuery(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Query parameter is required.",
			},
		})
		return
	}

	result, err := h.queryService.AnswerQuery(c.Request.Context(), req.Query)
	if err != nil {
		if errors.Is(err, service.ErrEmptyQuery) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_REQUEST",
					"message": "Query parameter is required.",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "QUERY_FAILED",
				"message": "Failed to process your query.",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"response": result.Response,
		"category": result.Category,
		"sources":  result.Sources,
	})
}
