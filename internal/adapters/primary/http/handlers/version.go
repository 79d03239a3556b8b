package handlers

import (
	"net/http"

	"model-lineage-registry/internal/adapters/primary/http/dto"
	"model-lineage-registry/internal/core/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) CreateVersion(c *gin.Context) {
	modelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid model id"})
		return
	}

	var req dto.CreateVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	version, err := h.versionSvc.Create(c.Request.Context(), modelID, req.ToSpec())
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToVersionResponse(version))
}

func (h *Handler) GetVersion(c *gin.Context) {
	modelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid model id"})
		return
	}

	version, err := h.versionSvc.GetByModelAndVersion(c.Request.Context(), modelID, c.Param("ver"))
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToVersionResponse(version))
}

func (h *Handler) ListVersions(c *gin.Context) {
	modelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid model id"})
		return
	}

	versions, err := h.versionSvc.ListByModel(c.Request.Context(), modelID)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	items := make([]dto.VersionResponse, 0, len(versions))
	for _, v := range versions {
		items = append(items, dto.ToVersionResponse(v))
	}
	c.JSON(http.StatusOK, dto.ListVersionsResponse{Items: items, Total: len(items)})
}

func (h *Handler) TransitionStatus(c *gin.Context) {
	versionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid version id"})
		return
	}

	var req dto.TransitionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	version, err := h.versionSvc.TransitionStatus(c.Request.Context(), versionID,
		domain.VersionStatus(req.Status), req.FailureReason)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToVersionResponse(version))
}

func (h *Handler) GetVersionLineage(c *gin.Context) {
	modelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid model id"})
		return
	}

	version, err := h.versionSvc.GetByModelAndVersion(c.Request.Context(), modelID, c.Param("ver"))
	if err != nil {
		mapDomainError(c, err)
		return
	}

	lineage, err := h.lineageSvc.VersionLineage(c.Request.Context(), version.LineageNodeID)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToVersionLineageResponse(lineage))
}

func (h *Handler) CompareVersions(c *gin.Context) {
	modelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid model id"})
		return
	}

	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to query parameters are required"})
		return
	}

	report, err := h.comparisonSvc.CompareVersions(c.Request.Context(), modelID, from, to)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
