package handlers

import (
	"net/http"
	"strconv"

	"model-lineage-registry/internal/adapters/primary/http/dto"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) IngestResult(c *gin.Context) {
	var req dto.IngestResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.evaluationSvc.IngestResult(c.Request.Context(), req.ToDomain())
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, dto.ToEvaluationResultResponse(result))
}

func (h *Handler) DispatchEvaluation(c *gin.Context) {
	versionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid version id"})
		return
	}

	var req dto.DispatchEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	jobID, err := h.evaluationSvc.Dispatch(c.Request.Context(), versionID, req.Benchmarks)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, dto.DispatchEvaluationResponse{JobID: jobID})
}

func (h *Handler) ListVersionEvaluations(c *gin.Context) {
	versionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid version id"})
		return
	}

	results, err := h.evaluationSvc.ListByVersion(c.Request.Context(), versionID)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	items := make([]dto.EvaluationResultResponse, 0, len(results))
	for _, res := range results {
		items = append(items, dto.ToEvaluationResultResponse(res))
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (h *Handler) GetLeaderboard(c *gin.Context) {
	benchmark := c.Param("benchmark")

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	entries, err := h.evaluationSvc.GetLeaderboard(c.Request.Context(), benchmark, limit)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.LeaderboardResponse{Benchmark: benchmark, Entries: entries})
}
