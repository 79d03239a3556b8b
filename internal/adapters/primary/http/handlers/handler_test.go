package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"model-lineage-registry/internal/core/domain"
	ports "model-lineage-registry/internal/core/ports/output"
	"model-lineage-registry/internal/core/services"
	"model-lineage-registry/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type handlerFixture struct {
	modelRepo      *testutil.MockModelRepo
	versionRepo    *testutil.MockVersionRepo
	lineageRepo    *testutil.MockLineageRepo
	provenanceRepo *testutil.MockProvenanceRepo
	evalRepo       *testutil.MockEvaluationRepo
	scanner        *testutil.MockPIIScanner
	router         *gin.Engine
}

func setupRouter() *handlerFixture {
	gin.SetMode(gin.TestMode)
	f := &handlerFixture{
		modelRepo:      new(testutil.MockModelRepo),
		versionRepo:    new(testutil.MockVersionRepo),
		lineageRepo:    new(testutil.MockLineageRepo),
		provenanceRepo: new(testutil.MockProvenanceRepo),
		evalRepo:       new(testutil.MockEvaluationRepo),
		scanner:        new(testutil.MockPIIScanner),
	}

	modelSvc := services.NewModelService(f.modelRepo)
	lineageSvc := services.NewLineageService(f.lineageRepo)
	versionSvc := services.NewVersionService(f.versionRepo, f.modelRepo, f.provenanceRepo,
		lineageSvc, nil, services.VersionPublishPolicy{})
	provenanceSvc := services.NewProvenanceService(f.provenanceRepo, f.scanner)
	evaluationSvc := services.NewEvaluationService(f.evalRepo, f.versionRepo, f.modelRepo,
		nil, domain.DefaultScoreBounds, time.Hour)
	comparisonSvc := services.NewComparisonService(f.versionRepo, f.evalRepo)

	h := New(modelSvc, versionSvc, lineageSvc, provenanceSvc, evaluationSvc, comparisonSvc)
	f.router = gin.New()
	api := f.router.Group("/api/v1/lineage-registry")
	h.RegisterRoutes(api)
	return f
}

func TestCreateModel(t *testing.T) {
	f := setupRouter()

	f.modelRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Model")).Return(nil)
	f.modelRepo.On("GetByID", mock.Anything, mock.AnythingOfType("uuid.UUID")).
		Return(&domain.Model{ID: uuid.New(), Name: "Support Bot", Slug: "support-bot",
			State: domain.ModelStateLive, Labels: map[string]string{}}, nil)

	body, _ := json.Marshal(map[string]any{"name": "Support Bot"})
	req, _ := http.NewRequest("POST", "/api/v1/lineage-registry/models", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "support-bot", resp["slug"])
}

func TestCreateModel_MissingName(t *testing.T) {
	f := setupRouter()

	req, _ := http.NewRequest("POST", "/api/v1/lineage-registry/models", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.modelRepo.AssertNotCalled(t, "Create")
}

func TestGetModel_NotFound(t *testing.T) {
	f := setupRouter()

	id := uuid.New()
	f.modelRepo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrModelNotFound)

	req, _ := http.NewRequest("GET", "/api/v1/lineage-registry/models/"+id.String(), nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "MODEL_NOT_FOUND", resp["code"])
}

func TestGetModel_InvalidID(t *testing.T) {
	f := setupRouter()

	req, _ := http.NewRequest("GET", "/api/v1/lineage-registry/models/not-a-uuid", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateVersion_InvalidSemver(t *testing.T) {
	f := setupRouter()

	modelID := uuid.New()
	f.modelRepo.On("GetByID", mock.Anything, modelID).
		Return(&domain.Model{ID: modelID, State: domain.ModelStateLive}, nil)

	body, _ := json.Marshal(map[string]any{"version": "latest"})
	req, _ := http.NewRequest("POST",
		"/api/v1/lineage-registry/models/"+modelID.String()+"/versions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "INVALID_SEMVER", resp["code"])
}

func TestCompareVersions_MissingQueryParams(t *testing.T) {
	f := setupRouter()

	req, _ := http.NewRequest("GET",
		"/api/v1/lineage-registry/models/"+uuid.New().String()+"/compare?from=1.0.0", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetLeaderboard(t *testing.T) {
	f := setupRouter()

	f.evalRepo.On("ListCompletedByBenchmark", mock.Anything, "mmlu", 5).
		Return([]*domain.EvaluationResult{
			{ModelVersionID: uuid.New(), OverallScore: 91, EvaluatedAt: time.Now()},
		}, nil)

	req, _ := http.NewRequest("GET", "/api/v1/lineage-registry/leaderboards/mmlu?limit=5", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "mmlu", resp["benchmark"])
	assert.Len(t, resp["entries"], 1)
}

func TestIngestResult(t *testing.T) {
	f := setupRouter()

	modelID := uuid.New()
	versionID := uuid.New()
	f.versionRepo.On("GetByID", mock.Anything, versionID).
		Return(&domain.ModelVersion{ID: versionID, ModelID: modelID}, nil)
	f.evalRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.EvaluationResult")).Return(nil)
	f.evalRepo.On("ListByVersion", mock.Anything, versionID).
		Return([]*domain.EvaluationResult{}, nil)

	body, _ := json.Marshal(map[string]any{
		"model_version_id": versionID,
		"benchmark_name":   "mmlu",
		"overall_score":    75.0,
		"status":           "COMPLETED",
	})
	req, _ := http.NewRequest("POST", "/api/v1/lineage-registry/evaluations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestRecordDataset(t *testing.T) {
	f := setupRouter()

	f.scanner.On("Scan", mock.Anything, mock.Anything).
		Return(&ports.PIIScanResult{Detected: false}, nil)
	f.provenanceRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.DatasetProvenance")).Return(nil)

	body, _ := json.Marshal(map[string]any{
		"name":    "support-chats",
		"sources": []map[string]any{{"name": "zendesk-export"}},
	})
	req, _ := http.NewRequest("POST", "/api/v1/lineage-registry/datasets", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestGetShortestPath(t *testing.T) {
	f := setupRouter()

	now := time.Now()
	a := &domain.LineageNode{ID: uuid.New(), Type: domain.NodeTypeModelVersion, Name: "a", CreatedAt: now}
	b := &domain.LineageNode{ID: uuid.New(), Type: domain.NodeTypeModelVersion, Name: "b", CreatedAt: now}
	g := domain.NewLineageGraph()
	_ = g.AddNode(a)
	_ = g.AddNode(b)
	_ = g.AddEdge(&domain.LineageEdge{
		ID: uuid.New(), FromID: a.ID, ToID: b.ID, Relation: domain.RelationDerivedFrom, CreatedAt: now,
	})
	f.lineageRepo.On("LoadGraph", mock.Anything).Return(g, nil)

	req, _ := http.NewRequest("GET",
		"/api/v1/lineage-registry/lineage/path?from="+a.ID.String()+"&to="+b.ID.String(), nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Path []map[string]any `json:"path"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Len(t, resp.Path, 2)
}

func TestTransitionStatus_Conflict(t *testing.T) {
	f := setupRouter()

	versionID := uuid.New()
	f.versionRepo.On("GetByID", mock.Anything, versionID).Return(&domain.ModelVersion{
		ID: versionID, ModelID: uuid.New(), Status: domain.VersionStatusPublished,
	}, nil)

	body, _ := json.Marshal(map[string]any{"status": "READY"})
	req, _ := http.NewRequest("POST",
		"/api/v1/lineage-registry/versions/"+versionID.String()+"/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", resp["code"])
}
