package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkocr/inkocr/auth"
	"github.com/inkocr/inkocr/classifier"
	"github.com/inkocr/inkocr/config"
	"github.com/inkocr/inkocr/encoding/strokes"
	"github.com/inkocr/inkocr/normalize"
	"github.com/inkocr/inkocr/ocr"
)

type envelope struct {
	Error string          `json:"error"`
	Data  json.RawMessage `json:"data"`
}

func testServer(t *testing.T, secret string) (*ApiServer, http.Handler) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Server.TokenSecret = secret
	cfg.Network = classifier.Options{HiddenLayers: []int{8}, Iterations: 200, LearningRate: 0.5, ErrorThresh: 0.01}

	s := NewApiServer(ocr.NewService(cfg.Network), cfg)
	return s, s.routes()
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func bar(vertical bool) *strokes.Drawing {
	p := []strokes.Point{{X: 140, Y: 40}, {X: 140, Y: 240}}
	if !vertical {
		p = []strokes.Point{{X: 40, Y: 140}, {X: 240, Y: 140}}
	}
	return &strokes.Drawing{Width: 280, Height: 280, Strokes: []strokes.Stroke{{Width: 15, Points: p}}}
}

func TestHealthAndIndex(t *testing.T) {
	_, h := testServer(t, "")
	rec, _ := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<canvas")

	rec, _ = do(t, h, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSamplesLifecycle(t *testing.T) {
	_, h := testServer(t, "")

	rec, env := do(t, h, http.MethodPost, "/api/samples", drawingRequest{Label: "I", Strokes: bar(true)})
	require.Equal(t, http.StatusCreated, rec.Code, env.Error)
	var added sampleJSON
	require.NoError(t, json.Unmarshal(env.Data, &added))
	assert.Equal(t, "I", added.Label)

	rec, env = do(t, h, http.MethodPost, "/api/samples", drawingRequest{Label: "I", Strokes: &strokes.Drawing{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, env.Error)

	rec, _ = do(t, h, http.MethodPost, "/api/samples", drawingRequest{Label: " ", ImageData: make([]float64, normalize.VectorLen)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = do(t, h, http.MethodGet, "/api/samples", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []sampleJSON
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, []sampleJSON{added}, list)

	rec, _ = do(t, h, http.MethodGet, "/api/samples/thumbnail?id="+added.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec, _ = do(t, h, http.MethodGet, "/api/samples/thumbnail?id=missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, h, http.MethodDelete, "/api/samples?id="+added.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = do(t, h, http.MethodDelete, "/api/samples?id="+added.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, h, http.MethodPut, "/api/samples", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestTrainAndRecognize(t *testing.T) {
	s, h := testServer(t, "")

	rec, _ := do(t, h, http.MethodPost, "/api/recognize", drawingRequest{Strokes: bar(true)})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env := do(t, h, http.MethodPost, "/api/train", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error, "at least 10 samples")

	for i := 0; i < 5; i++ {
		offset := float32(i * 10)
		v, hz := bar(true), bar(false)
		for j := range v.Strokes[0].Points {
			v.Strokes[0].Points[j].X += offset
			hz.Strokes[0].Points[j].Y += offset
		}
		rec, env = do(t, h, http.MethodPost, "/api/samples", drawingRequest{Label: "I", Strokes: v})
		require.Equal(t, http.StatusCreated, rec.Code, env.Error)
		rec, env = do(t, h, http.MethodPost, "/api/samples", drawingRequest{Label: "-", Strokes: hz})
		require.Equal(t, http.StatusCreated, rec.Code, env.Error)
	}

	rec, env = do(t, h, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var st statusJSON
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.True(t, st.Ready)
	assert.Equal(t, 10, st.Count)
	assert.Equal(t, map[string]int{"I": 5, "-": 5}, st.Counts)

	rec, env = do(t, h, http.MethodPost, "/api/train", nil)
	require.Equal(t, http.StatusAccepted, rec.Code, env.Error)
	require.Eventually(t, func() bool { return s.svc.Status() != ocr.StatusTraining }, 30*time.Second, 10*time.Millisecond)
	require.Equal(t, ocr.StatusTrained, s.svc.Status())

	rec, env = do(t, h, http.MethodPost, "/api/recognize", drawingRequest{Strokes: bar(true)})
	require.Equal(t, http.StatusOK, rec.Code, env.Error)
	var res classifier.Result
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "I", res.Character)

	rec, _ = do(t, h, http.MethodPost, "/api/recognize", drawingRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// model round trip
	rec, _ = do(t, h, http.MethodGet, "/api/model", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "ocr-model.json")
	model := rec.Body.Bytes()

	rec, _ = do(t, h, http.MethodDelete, "/api/data", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, s.svc.HasData())

	req := httptest.NewRequest(http.MethodPost, "/api/model", bytes.NewReader(model))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, s.svc.IsTrained())

	req = httptest.NewRequest(http.MethodPost, "/api/model", strings.NewReader("{}"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDataUploadAndSheet(t *testing.T) {
	s, h := testServer(t, "")
	_, err := s.svc.AddSample(make([]float64, normalize.VectorLen), "a")
	require.NoError(t, err)

	rec, _ := do(t, h, http.MethodGet, "/api/data", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := rec.Body.Bytes()

	s.svc.ClearData()
	req := httptest.NewRequest(http.MethodPost, "/api/data", bytes.NewReader(data))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, s.svc.Store().Len())

	req = httptest.NewRequest(http.MethodPost, "/api/data", strings.NewReader("[{}]"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/data", strings.NewReader("null"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, s.svc.Store().Len())

	rec, _ = do(t, h, http.MethodGet, "/api/sheet", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec, _ = do(t, h, http.MethodGet, "/api/sheet?columns=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTokenAuth(t *testing.T) {
	_, h := testServer(t, "secret")

	rec, _ := do(t, h, http.MethodGet, "/api/version", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	token, err := auth.NewToken("secret", "test", time.Minute)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	bad, err := auth.NewToken("other", "test", time.Minute)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/version", nil)
	req.Header.Set("Authorization", "Bearer "+bad)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
