package handlers

import (
	"model-lineage-registry/internal/core/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	modelSvc      *services.ModelService
	versionSvc    *services.VersionService
	lineageSvc    *services.LineageService
	provenanceSvc *services.ProvenanceService
	evaluationSvc *services.EvaluationService
	comparisonSvc *services.ComparisonService
}

func New(
	modelSvc *services.ModelService,
	versionSvc *services.VersionService,
	lineageSvc *services.LineageService,
	provenanceSvc *services.ProvenanceService,
	evaluationSvc *services.EvaluationService,
	comparisonSvc *services.ComparisonService,
) *Handler {
	return &Handler{
		modelSvc:      modelSvc,
		versionSvc:    versionSvc,
		lineageSvc:    lineageSvc,
		provenanceSvc: provenanceSvc,
		evaluationSvc: evaluationSvc,
		comparisonSvc: comparisonSvc,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Models
	r.POST("/models", h.CreateModel)
	r.GET("/models", h.ListModels)
	r.GET("/models/:id", h.GetModel)
	r.POST("/models/:id/archive", h.ArchiveModel)

	// Versions
	r.POST("/models/:id/versions", h.CreateVersion)
	r.GET("/models/:id/versions", h.ListVersions)
	r.GET("/models/:id/versions/:ver", h.GetVersion)
	r.GET("/models/:id/versions/:ver/lineage", h.GetVersionLineage)
	r.POST("/versions/:id/status", h.TransitionStatus)

	// Comparison
	r.GET("/models/:id/compare", h.CompareVersions)

	// Lineage graph
	r.GET("/lineage/nodes", h.ListNodesByType)
	r.GET("/lineage/nodes/:id/ancestors", h.GetAncestors)
	r.GET("/lineage/nodes/:id/descendants", h.GetDescendants)
	r.GET("/lineage/path", h.GetShortestPath)

	// Dataset provenance
	r.POST("/datasets", h.RecordDataset)
	r.GET("/datasets/:id", h.GetDataset)
	r.POST("/datasets/:id/steps", h.AddPreprocessingStep)
	r.POST("/datasets/:id/audit", h.AppendAuditEntry)
	r.GET("/datasets/:id/compliance", h.ValidateCompliance)

	// Evaluations
	r.POST("/evaluations", h.IngestResult)
	r.POST("/versions/:id/evaluations", h.DispatchEvaluation)
	r.GET("/versions/:id/evaluations", h.ListVersionEvaluations)
	r.GET("/leaderboards/:benchmark", h.GetLeaderboard)
}
