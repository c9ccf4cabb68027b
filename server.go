package main

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/inkocr/inkocr/auth"
	"github.com/inkocr/inkocr/config"
	"github.com/inkocr/inkocr/encoding/strokes"
	"github.com/inkocr/inkocr/input"
	"github.com/inkocr/inkocr/log"
	"github.com/inkocr/inkocr/ocr"
	"github.com/inkocr/inkocr/sheet"
	"github.com/inkocr/inkocr/version"
)

//go:embed web/index.html
var indexHTML []byte

const maxBodySize = 32 << 20

type ApiServer struct {
	svc *ocr.Service
	cfg config.Config

	// persist is called after every change to the workspace
	persist func()
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// drawingRequest carries either recorded strokes or a normalized vector.
type drawingRequest struct {
	Label     string           `json:"label,omitempty"`
	Strokes   *strokes.Drawing `json:"strokes,omitempty"`
	ImageData []float64        `json:"imageData,omitempty"`
}

type sampleJSON struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type statusJSON struct {
	Status     string         `json:"status"`
	Progress   float64        `json:"progress"`
	Count      int            `json:"count"`
	Counts     map[string]int `json:"counts"`
	Characters []string       `json:"characters"`
	Model      []string       `json:"model"`
	Ready      bool           `json:"ready"`
	Message    string         `json:"message"`
}

func NewApiServer(svc *ocr.Service, cfg config.Config) *ApiServer {
	return &ApiServer{svc: svc, cfg: cfg, persist: func() {}}
}

func statusCode(err error) int {
	switch errors.Cause(err) {
	case ocr.ErrNotTrained, ocr.ErrTrainingInProgress:
		return http.StatusConflict
	case ocr.ErrNoSamples, ocr.ErrNeedMoreLabels, input.ErrEmpty:
		return http.StatusBadRequest
	case auth.ErrUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

func (s *ApiServer) writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()})
}

func (s *ApiServer) writeSuccess(w http.ResponseWriter, data interface{}) {
	s.writeSuccessStatus(w, http.StatusOK, data)
}

func (s *ApiServer) writeSuccessStatus(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(SuccessResponse{Data: data})
}

func (s *ApiServer) writeAttachment(w http.ResponseWriter, name, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(data)
}

// readUpload returns the request body, or the "file" field of a multipart
// form.
func readUpload(r *http.Request) ([]byte, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxBodySize); err != nil {
			return nil, fmt.Errorf("failed to parse multipart form: %v", err)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("file is required: %v", err)
		}
		defer file.Close()
		return io.ReadAll(file)
	}
	return io.ReadAll(r.Body)
}

func (s *ApiServer) vector(req drawingRequest) ([]float64, error) {
	if req.Strokes != nil {
		return input.Drawing(*req.Strokes, s.cfg.Canvas.Width, s.cfg.Canvas.Height)
	}
	if req.ImageData != nil {
		return req.ImageData, nil
	}
	return nil, input.ErrEmpty
}

func (s *ApiServer) status() statusJSON {
	ready, msg := s.svc.Store().Readiness()
	return statusJSON{
		Status:     string(s.svc.Status()),
		Progress:   s.svc.Progress(),
		Count:      s.svc.Store().Len(),
		Counts:     s.svc.Counts(),
		Characters: s.svc.Characters(),
		Model:      s.svc.ModelCharacters(),
		Ready:      ready,
		Message:    msg,
	}
}

// GET, POST, DELETE /api/samples
func (s *ApiServer) handleSamples(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		samples := s.svc.Samples()
		res := make([]sampleJSON, len(samples))
		for i, sample := range samples {
			res[i] = sampleJSON{ID: sample.ID, Label: sample.Label}
		}
		s.writeSuccess(w, res)

	case http.MethodPost:
		var req drawingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err))
			return
		}
		vec, err := s.vector(req)
		if err != nil {
			s.writeError(w, statusCode(err), err)
			return
		}
		sample, err := s.svc.AddSample(vec, req.Label)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		s.persist()
		s.writeSuccessStatus(w, http.StatusCreated, sampleJSON{ID: sample.ID, Label: sample.Label})

	case http.MethodDelete:
		id := r.URL.Query().Get("id")
		if id == "" {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("id parameter is required"))
			return
		}
		if !s.svc.RemoveSample(id) {
			s.writeError(w, http.StatusNotFound, fmt.Errorf("sample %s not found", id))
			return
		}
		s.persist()
		s.writeSuccess(w, map[string]string{"id": id})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET /api/samples/thumbnail?id=<id>&scale=<n>
func (s *ApiServer) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	sample, ok := s.svc.Store().Get(query.Get("id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("sample %s not found", query.Get("id")))
		return
	}
	scale := 2
	if v := query.Get("scale"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 16 {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid scale %q", v))
			return
		}
		scale = n
	}

	var buf bytes.Buffer
	if err := input.WritePNG(&buf, sample.ImageData, scale); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

// GET /api/status
func (s *ApiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeSuccess(w, s.status())
}

// POST /api/train?force=<bool>
func (s *ApiServer) handleTrain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if ready, msg := s.svc.Store().Readiness(); !ready && r.URL.Query().Get("force") != "true" {
		s.writeError(w, http.StatusBadRequest, errors.New(msg))
		return
	}

	err := s.svc.StartTraining(context.Background(), func(err error) {
		if err != nil {
			log.Error.Printf("training failed: %v", err)
			return
		}
		s.persist()
	})
	if err != nil {
		s.writeError(w, statusCode(err), err)
		return
	}
	s.writeSuccessStatus(w, http.StatusAccepted, s.status())
}

// POST /api/recognize
func (s *ApiServer) handleRecognize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req drawingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err))
		return
	}
	vec, err := s.vector(req)
	if err != nil {
		s.writeError(w, statusCode(err), err)
		return
	}
	res, err := s.svc.Recognize(vec)
	if err != nil {
		code := statusCode(err)
		if code == http.StatusInternalServerError {
			code = http.StatusBadRequest
		}
		s.writeError(w, code, err)
		return
	}
	s.writeSuccess(w, res)
}

// GET, POST /api/model
func (s *ApiServer) handleModel(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		data, err := s.svc.ExportModel()
		if err != nil {
			s.writeError(w, statusCode(err), err)
			return
		}
		s.writeAttachment(w, "ocr-model.json", "application/json", data)

	case http.MethodPost:
		data, err := readUpload(r)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := s.svc.ImportModel(data); err != nil {
			code := statusCode(err)
			if code == http.StatusInternalServerError {
				code = http.StatusBadRequest
			}
			s.writeError(w, code, err)
			return
		}
		s.persist()
		s.writeSuccess(w, s.status())

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET, POST, DELETE /api/data
func (s *ApiServer) handleData(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		data, err := s.svc.ExportTrainingData()
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		s.writeAttachment(w, "ocr-training-data.json", "application/json", data)

	case http.MethodPost:
		data, err := readUpload(r)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := s.svc.ImportTrainingData(data); err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		s.persist()
		s.writeSuccess(w, s.status())

	case http.MethodDelete:
		s.svc.ClearData()
		s.persist()
		s.writeSuccess(w, s.status())

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// GET /api/sheet?columns=<n>
func (s *ApiServer) handleSheet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	opts := sheet.DefaultOptions()
	if v := r.URL.Query().Get("columns"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid columns %q", v))
			return
		}
		opts.Columns = n
	}

	var buf bytes.Buffer
	if err := sheet.New(opts).Write(&buf, s.svc.Samples()); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeAttachment(w, "ocr-samples.pdf", "application/pdf", buf.Bytes())
}

// GET /api/version
func (s *ApiServer) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeSuccess(w, map[string]string{"version": version.Version})
}

// requireToken checks the bearer token when a secret is configured.
func (s *ApiServer) requireToken(next http.Handler) http.Handler {
	secret := s.cfg.Server.TokenSecret
	if secret == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := auth.FromHeader(r.Header.Get("Authorization"))
		if !ok {
			s.writeError(w, http.StatusUnauthorized, auth.ErrUnauthorized)
			return
		}
		claims, err := auth.Verify(secret, token)
		if err != nil {
			log.Trace.Println(err)
			s.writeError(w, http.StatusUnauthorized, auth.ErrUnauthorized)
			return
		}
		log.Trace.Printf("%s %s by %s", r.Method, r.URL.Path, claims.Subject)
		next.ServeHTTP(w, r)
	})
}

func limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
		next.ServeHTTP(w, r)
	})
}

func (s *ApiServer) routes() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/api/samples", s.handleSamples)
	api.HandleFunc("/api/samples/thumbnail", s.handleThumbnail)
	api.HandleFunc("/api/status", s.handleStatus)
	api.HandleFunc("/api/train", s.handleTrain)
	api.HandleFunc("/api/recognize", s.handleRecognize)
	api.HandleFunc("/api/model", s.handleModel)
	api.HandleFunc("/api/data", s.handleData)
	api.HandleFunc("/api/sheet", s.handleSheet)
	api.HandleFunc("/api/version", s.handleVersion)

	mux := http.NewServeMux()
	mux.Handle("/api/", limitBody(s.requireToken(api)))

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Drawing page
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(indexHTML)
	})
	return mux
}

func runServerMode(svc *ocr.Service, cfg config.Config, persist func()) {
	server := NewApiServer(svc, cfg)
	if persist != nil {
		server.persist = persist
	}

	if cfg.Server.TokenSecret != "" {
		log.Info.Println("bearer token required for /api/")
	}
	log.Info.Printf("Starting HTTP server on port %s", cfg.Server.Port)
	if err := http.ListenAndServe(":"+cfg.Server.Port, server.routes()); err != nil {
		log.Error.Fatalf("Server failed: %v", err)
	}
}
