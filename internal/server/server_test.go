package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zate/ifsgen/internal/db"
	"github.com/zate/ifsgen/testutil"
)

func setupTestServer(t *testing.T) (*Server, db.Store) {
	t.Helper()
	store := testutil.SetupTestDB(t)
	srv := New(store, DefaultConfig())
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	srv.SetLogger(logger)
	return srv, store
}

func doRequest(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		err := json.NewEncoder(&buf).Encode(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func params(transforms, iterations int) map[string]any {
	return map[string]any{"transform_count": transforms, "iterations": iterations}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := setupTestServer(t)
	w := doRequest(t, srv, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestStatusEndpoint(t *testing.T) {
	srv, store := setupTestServer(t)
	_, err := store.CreatePreset(db.CreatePresetInput{Preset: testutil.NewPreset("a", 2, 4)})
	require.NoError(t, err)

	w := doRequest(t, srv, "GET", "/api/status", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, float64(1), resp["total_presets"])
	assert.Equal(t, float64(16), resp["max_point_count"])
}

func TestLimitsEndpoint(t *testing.T) {
	srv, _ := setupTestServer(t)
	w := doRequest(t, srv, "GET", "/api/limits", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, float64(8), resp["max_transforms"])
	assert.Equal(t, float64(12), resp["max_iterations"])
}

func TestInterfaceEndpoint(t *testing.T) {
	srv, _ := setupTestServer(t)
	w := doRequest(t, srv, "GET", "/api/interface", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, "IFS_Generator", resp["group_name"])
	assert.Len(t, resp["sockets"], 6)
}

func TestValidateEndpoint(t *testing.T) {
	srv, _ := setupTestServer(t)

	w := doRequest(t, srv, "POST", "/api/validate", params(8, 12))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["valid"])

	w = doRequest(t, srv, "POST", "/api/validate", params(10, 15))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "above_maximum", resp["kind"])
	assert.Equal(t, "transform_count", resp["field"])
	assert.Equal(t, float64(10), resp["value"])
	assert.Equal(t, "maximum 8 transforms (got 10)", resp["error"])

	w = doRequest(t, srv, "POST", "/api/validate", params(4, 0))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp = decode(t, w)
	assert.Equal(t, "below_minimum", resp["kind"])
	assert.Equal(t, "iterations", resp["field"])
}

func TestValidateEndpoint_BadRequest(t *testing.T) {
	srv, _ := setupTestServer(t)

	w := doRequest(t, srv, "POST", "/api/validate", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, srv, "POST", "/api/validate", map[string]any{"transform_count": 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEstimateEndpoint(t *testing.T) {
	srv, _ := setupTestServer(t)

	w := doRequest(t, srv, "POST", "/api/estimate", params(8, 12))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"point_count": 68719476736`)
	resp := decode(t, w)
	assert.Equal(t, "extreme", resp["tier"])
	assert.NotEmpty(t, resp["warning"])

	w = doRequest(t, srv, "POST", "/api/estimate", params(2, 13))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestEstimateEndpoint_Unchecked(t *testing.T) {
	srv, _ := setupTestServer(t)

	req := params(10, 15)
	req["unchecked"] = true
	w := doRequest(t, srv, "POST", "/api/estimate", req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"point_count": 1000000000000000`)

	req = params(3, -1)
	req["unchecked"] = true
	w = doRequest(t, srv, "POST", "/api/estimate", req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	req = params(8, 5_000_000)
	req["unchecked"] = true
	w = doRequest(t, srv, "POST", "/api/estimate", req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "point count too large")
}

func presetBody(name string, transforms, iterations int) map[string]any {
	p := testutil.NewPreset(name, transforms, iterations)
	return map[string]any{
		"name":       p.Name,
		"transforms": p.Transforms,
		"iterations": p.Iterations,
		"tags":       []string{"test"},
	}
}

func TestPresetCRUD(t *testing.T) {
	srv, _ := setupTestServer(t)

	// Create
	w := doRequest(t, srv, "POST", "/api/presets", presetBody("gasket", 3, 8))
	require.Equal(t, http.StatusCreated, w.Code)

	var rec db.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, "gasket", rec.Name)
	assert.Equal(t, int64(6561), rec.PointCount)
	assert.Equal(t, []string{"test"}, rec.Tags)

	// Get by ID and by name
	w = doRequest(t, srv, "GET", "/api/presets/"+rec.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doRequest(t, srv, "GET", "/api/presets/gasket", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Update
	w = doRequest(t, srv, "PATCH", "/api/presets/"+rec.ID, map[string]any{"iterations": 4})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, int64(81), rec.PointCount)

	// List
	w = doRequest(t, srv, "GET", "/api/presets?tag=test", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["count"])

	// Delete
	w = doRequest(t, srv, "DELETE", "/api/presets/"+rec.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, srv, "GET", "/api/presets/"+rec.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, srv, "GET", "/api/presets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["count"])
}

func TestCreatePresetValidation(t *testing.T) {
	srv, _ := setupTestServer(t)

	// Empty body
	w := doRequest(t, srv, "POST", "/api/presets", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Too many transforms
	w = doRequest(t, srv, "POST", "/api/presets", presetBody("big", 9, 4))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "maximum 8 transforms (got 9)", decode(t, w)["error"])

	// Missing name
	w = doRequest(t, srv, "POST", "/api/presets", presetBody("", 2, 4))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Duplicate
	w = doRequest(t, srv, "POST", "/api/presets", presetBody("dup", 2, 4))
	require.Equal(t, http.StatusCreated, w.Code)
	w = doRequest(t, srv, "POST", "/api/presets", presetBody("dup", 2, 4))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdatePresetValidation(t *testing.T) {
	srv, store := setupTestServer(t)
	rec, err := store.CreatePreset(db.CreatePresetInput{Preset: testutil.NewPreset("a", 2, 4)})
	require.NoError(t, err)

	w := doRequest(t, srv, "PATCH", "/api/presets/"+rec.ID, map[string]any{"iterations": 13})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "iterations", decode(t, w)["field"])

	w = doRequest(t, srv, "PATCH", "/api/presets/"+rec.ID, map[string]any{"output_mode": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTags(t *testing.T) {
	srv, store := setupTestServer(t)

	rec, err := store.CreatePreset(db.CreatePresetInput{Preset: testutil.NewPreset("a", 2, 4)})
	require.NoError(t, err)

	w := doRequest(t, srv, "POST", "/api/presets/"+rec.ID+"/tags", tagsRequest{
		Tags: []string{"foo", "bar"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["tags"], 2)

	w = doRequest(t, srv, "DELETE", "/api/presets/"+rec.ID+"/tags", tagsRequest{
		Tags: []string{"foo"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"bar"}, decode(t, w)["tags"])
}

func TestPlanEndpoint(t *testing.T) {
	srv, store := setupTestServer(t)
	rec, err := store.CreatePreset(db.CreatePresetInput{Preset: testutil.NewPreset("tetrix", 4, 8)})
	require.NoError(t, err)

	w := doRequest(t, srv, "GET", "/api/presets/tetrix/plan", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, "IFS_Generator", resp["group_name"])
	assert.Equal(t, "tetrix", resp["preset"])
	inputs := resp["inputs"].(map[string]any)
	assert.Equal(t, float64(8), inputs["Iterations"])
	assert.Contains(t, w.Body.String(), `"point_count": 65536`)

	w = doRequest(t, srv, "GET", "/api/presets/"+rec.ID+"/report", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, w.Body.String(), "# tetrix")
}

func TestPlanEndpoint_NotFound(t *testing.T) {
	srv, _ := setupTestServer(t)
	w := doRequest(t, srv, "GET", "/api/presets/nonexistent/plan", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	store := testutil.SetupTestDB(t)
	cfg := DefaultConfig()
	cfg.APIToken = "s3cret"
	srv := New(store, cfg)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	srv.SetLogger(logger)

	w := doRequest(t, srv, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, srv, "GET", "/api/limits", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest("GET", "/api/limits", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rw := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rw, req)
	assert.Equal(t, http.StatusUnauthorized, rw.Code)

	req = httptest.NewRequest("GET", "/api/limits", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rw = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rw, req)
	assert.Equal(t, http.StatusOK, rw.Code)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9000\nbind: 0.0.0.0\napi_token: abc\n"), 0600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.Addr())
	assert.Equal(t, "abc", cfg.APIToken)
	assert.False(t, cfg.HasTLS())

	t.Setenv("IFSGEN_SERVER_PORT", "9100")
	t.Setenv("IFSGEN_SERVER_TLS_CERT", "c.pem")
	t.Setenv("IFSGEN_SERVER_TLS_KEY", "k.pem")
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port)
	assert.True(t, cfg.HasTLS())

	t.Setenv("IFSGEN_SERVER_PORT", "nope")
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Port, cfg.Port)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [unclosed"), 0600))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestListPresets_Query(t *testing.T) {
	srv, store := setupTestServer(t)
	_, err := store.CreatePreset(db.CreatePresetInput{Preset: testutil.NewPreset("small", 2, 3)})
	require.NoError(t, err)
	_, err = store.CreatePreset(db.CreatePresetInput{Preset: testutil.NewPreset("big", 8, 12)})
	require.NoError(t, err)

	w := doRequest(t, srv, "GET", "/api/presets?q=tier:extreme", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, float64(1), resp["count"])

	w = doRequest(t, srv, "GET", "/api/presets?q=colour:red", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, srv, "GET", "/api/presets?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := setupTestServer(t)

	doRequest(t, srv, "POST", "/api/validate", params(9, 3))
	doRequest(t, srv, "POST", "/api/estimate", params(2, 3))

	w := doRequest(t, srv, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `ifsgen_limit_violations_total{field="transform_count",kind="above_maximum"}`)
	assert.Contains(t, body, `ifsgen_estimates_total{tier="light"}`)
	assert.Contains(t, body, `route="POST /api/validate"`)
}
