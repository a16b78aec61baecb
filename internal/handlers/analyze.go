package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"skinscan-backend/internal/middleware"
	"skinscan-backend/internal/models"
	"skinscan-backend/internal/services"
)

type AnalyzeHandler struct {
	analyzer services.Analyzer
}

func NewAnalyzeHandler(analyzer services.Analyzer) *AnalyzeHandler {
	return &AnalyzeHandler{analyzer: analyzer}
}

// Analyze godoc
// @Summary     Analyze a skin image
// @Description Runs the vision model on imageUrl and stores the result on the caller's scan.
// @Tags        analysis
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.AnalyzeRequest true "Image URL and scan id"
// @Success     200 {object} models.AnalyzeResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /analyze-skin [post]
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	caller, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Not authenticated"})
		return
	}

	var req models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	analysis, err := h.analyzer.Analyze(c.Request.Context(), caller, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.AnalyzeResponse{Success: true, Analysis: analysis})
}
