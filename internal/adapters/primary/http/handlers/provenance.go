package handlers

import (
	"net/http"

	"model-lineage-registry/internal/adapters/primary/http/dto"
	"model-lineage-registry/internal/core/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) RecordDataset(c *gin.Context) {
	var req dto.RecordDatasetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	provenance, err := h.provenanceSvc.RecordDataset(c.Request.Context(), req.ToSpec())
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToProvenanceResponse(provenance))
}

func (h *Handler) GetDataset(c *gin.Context) {
	datasetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dataset id"})
		return
	}

	provenance, err := h.provenanceSvc.Get(c.Request.Context(), datasetID)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProvenanceResponse(provenance))
}

func (h *Handler) AddPreprocessingStep(c *gin.Context) {
	datasetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dataset id"})
		return
	}

	var req dto.AddPreprocessingStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	provenance, err := h.provenanceSvc.AddPreprocessingStep(c.Request.Context(), datasetID, domain.PreprocessingStep{
		Name:            req.Name,
		Description:     req.Description,
		AffectedSamples: req.AffectedSamples,
		Parameters:      req.Parameters,
	})
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProvenanceResponse(provenance))
}

func (h *Handler) AppendAuditEntry(c *gin.Context) {
	datasetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dataset id"})
		return
	}

	var req dto.AppendAuditEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.provenanceSvc.AppendAuditEntry(c.Request.Context(), datasetID, domain.AuditEntry{
		Actor:  req.Actor,
		Action: req.Action,
		Detail: req.Detail,
	})
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ValidateCompliance(c *gin.Context) {
	datasetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dataset id"})
		return
	}

	standards := c.QueryArray("standard")
	report, err := h.provenanceSvc.ValidateCompliance(c.Request.Context(), datasetID, standards)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
