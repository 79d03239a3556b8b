package handlers

import (
	"net/http"

	"model-lineage-registry/internal/adapters/primary/http/dto"
	"model-lineage-registry/internal/core/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) ListNodesByType(c *gin.Context) {
	nodeType := domain.NodeType(c.Query("type"))
	if nodeType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type query parameter is required"})
		return
	}

	nodes, err := h.lineageSvc.NodesByType(c.Request.Context(), nodeType)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": dto.ToLineageNodeResponses(nodes), "total": len(nodes)})
}

func (h *Handler) GetAncestors(c *gin.Context) {
	nodeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid node id"})
		return
	}

	nodes, err := h.lineageSvc.Ancestors(c.Request.Context(), nodeID)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": dto.ToLineageNodeResponses(nodes), "total": len(nodes)})
}

func (h *Handler) GetDescendants(c *gin.Context) {
	nodeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid node id"})
		return
	}

	nodes, err := h.lineageSvc.Descendants(c.Request.Context(), nodeID)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": dto.ToLineageNodeResponses(nodes), "total": len(nodes)})
}

func (h *Handler) GetShortestPath(c *gin.Context) {
	fromID, err := uuid.Parse(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from node id"})
		return
	}
	toID, err := uuid.Parse(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to node id"})
		return
	}

	path, err := h.lineageSvc.ShortestPath(c.Request.Context(), fromID, toID)
	if err != nil {
		mapDomainError(c, err)
		return
	}
	if path == nil {
		// Both nodes exist but share no directed path.
		c.JSON(http.StatusOK, dto.PathResponse{Path: nil})
		return
	}
	c.JSON(http.StatusOK, dto.PathResponse{Path: dto.ToLineageNodeResponses(path)})
}
