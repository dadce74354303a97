package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/student-insights/internal/dataset"
	"github.com/OldStager01/student-insights/internal/insights"
	"github.com/OldStager01/student-insights/pkg/models"
)

type fakeDB struct {
	pingErr    error
	version    string
	versionErr error
}

func (f fakeDB) HealthCheck(ctx context.Context) error {
	return f.pingErr
}

func (f fakeDB) ServerVersion(ctx context.Context) (string, error) {
	return f.version, f.versionErr
}

func healthChecks(t *testing.T, db HealthChecker) (int, HealthResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ds, err := dataset.FromRecords("health", []models.StudentRecord{
		{ID: "1", GradeID: "G-02", Topic: "IT", Class: models.ClassLow},
	})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/health", NewHealthHandler(db, insights.New(ds, nil, nil)).Health)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var res HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return rec.Code, res
}

func TestHealth_ReportsDatabaseVersion(t *testing.T) {
	code, res := healthChecks(t, fakeDB{version: "16.2"})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy (postgres 16.2)", res.Checks["database"])
	assert.Equal(t, "unavailable", res.Checks["model"])
}

func TestHealth_VersionLookupFailureStaysHealthy(t *testing.T) {
	code, res := healthChecks(t, fakeDB{versionErr: errors.New("permission denied")})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", res.Checks["database"])
}

func TestHealth_DatabaseDown(t *testing.T) {
	code, res := healthChecks(t, fakeDB{pingErr: errors.New("connection refused")})

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", res.Status)
	assert.Equal(t, "unhealthy: connection refused", res.Checks["database"])
}

func TestHealth_NoDatabase(t *testing.T) {
	code, res := healthChecks(t, nil)

	assert.Equal(t, http.StatusOK, code)
	assert.NotContains(t, res.Checks, "database")
}
