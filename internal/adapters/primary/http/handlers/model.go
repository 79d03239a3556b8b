package handlers

import (
	"net/http"
	"strconv"

	"model-lineage-registry/internal/adapters/primary/http/dto"
	ports "model-lineage-registry/internal/core/ports/output"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) CreateModel(c *gin.Context) {
	var req dto.CreateModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	model, err := h.modelSvc.Create(c.Request.Context(), req.Name, req.Description, req.Labels)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToModelResponse(model))
}

func (h *Handler) GetModel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid model id"})
		return
	}

	model, err := h.modelSvc.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToModelResponse(model))
}

func (h *Handler) ListModels(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := ports.ModelListFilter{
		State:  c.Query("state"),
		Search: c.Query("search"),
		Limit:  limit,
		Offset: offset,
	}

	models, total, err := h.modelSvc.List(c.Request.Context(), filter)
	if err != nil {
		log.WithError(err).Error("list models failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.ModelResponse, 0, len(models))
	for _, m := range models {
		items = append(items, dto.ToModelResponse(m))
	}
	c.JSON(http.StatusOK, dto.ListModelsResponse{
		Items:      items,
		Total:      total,
		PageSize:   limit,
		NextOffset: offset + len(items),
	})
}

func (h *Handler) ArchiveModel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid model id"})
		return
	}

	model, err := h.modelSvc.Archive(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToModelResponse(model))
}
