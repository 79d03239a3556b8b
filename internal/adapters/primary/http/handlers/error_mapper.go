package handlers

import (
	"errors"
	"net/http"

	"model-lineage-registry/internal/adapters/primary/http/middleware"
	"model-lineage-registry/internal/core/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func mapDomainError(c *gin.Context, err error) {
	switch {
	// Not found errors
	case errors.Is(err, domain.ErrModelNotFound),
		errors.Is(err, domain.ErrVersionNotFound),
		errors.Is(err, domain.ErrLineageNodeNotFound),
		errors.Is(err, domain.ErrDatasetNotFound),
		errors.Is(err, domain.ErrEvaluationNotFound):
		writeError(c, http.StatusNotFound, err)

	// Conflict errors
	case errors.Is(err, domain.ErrModelSlugConflict),
		errors.Is(err, domain.ErrVersionConflict),
		errors.Is(err, domain.ErrDuplicateNode),
		errors.Is(err, domain.ErrDatasetConflict):
		writeError(c, http.StatusConflict, err)

	// Validation / business rule errors
	case errors.Is(err, domain.ErrInvalidModelName),
		errors.Is(err, domain.ErrInvalidSemver),
		errors.Is(err, domain.ErrVersionNotIncremented),
		errors.Is(err, domain.ErrInvalidStatusTransition),
		errors.Is(err, domain.ErrCyclicLineage),
		errors.Is(err, domain.ErrInvalidNodeType),
		errors.Is(err, domain.ErrInvalidRelationType),
		errors.Is(err, domain.ErrInvalidBenchmarkName),
		errors.Is(err, domain.ErrResultNotFinal),
		errors.Is(err, domain.ErrChecksumMismatch),
		errors.Is(err, domain.ErrVersionImmutable),
		errors.Is(err, domain.ErrModelArchived):
		writeError(c, http.StatusBadRequest, err)

	case errors.Is(err, domain.ErrComplianceViolation):
		writeError(c, http.StatusUnprocessableEntity, err)

	case errors.Is(err, domain.ErrEvaluationDisabled):
		writeError(c, http.StatusServiceUnavailable, err)

	default:
		// Storage and unclassified errors: generic message plus a
		// correlation id; the detail stays in the server log.
		correlationID := c.GetString(middleware.RequestIDKey)
		log.WithError(err).WithField("correlation_id", correlationID).Error("internal error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":          "internal error",
			"code":           domain.CodeInternal,
			"correlation_id": correlationID,
		})
	}
}

func writeError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{
		"error": err.Error(),
		"code":  domain.ErrorCode(err),
	})
}
