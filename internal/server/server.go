// Package server exposes the planner over HTTP: solving uploaded or
// editor-built plans, exporting plans as YAML and managing saved plans.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/iwvelando/factory-planner/internal/config"
	"github.com/iwvelando/factory-planner/internal/dataset"
	"github.com/iwvelando/factory-planner/internal/plan"
	"github.com/iwvelando/factory-planner/internal/solver"
	"github.com/iwvelando/factory-planner/internal/store"
	"github.com/iwvelando/factory-planner/pkg/constants"
	"github.com/iwvelando/factory-planner/pkg/output"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

// Options holds the collaborators and limits of the handler. Catalog is
// the dataset used when a request does not carry its own; Store may be
// nil, which disables the saved plan endpoints.
type Options struct {
	MaxUploadSize int64
	Version       string
	Planner       *solver.Planner
	Catalog       *dataset.Catalog
	Store         *store.Store
	RateLimit     float64
	RateBurst     int
	SolveTimeout  time.Duration
}

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	planner       *solver.Planner
	catalog       *dataset.Catalog
	store         *store.Store
	limiter       *rate.Limiter
	solveTimeout  time.Duration
}

// NewHandler constructs the HTTP handler that serves the planner API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = constants.DefaultMaxUploadSizeBytes
	}
	if opts.SolveTimeout <= 0 {
		opts.SolveTimeout = constants.DefaultSolveTimeoutSeconds * time.Second
	}
	if opts.Planner == nil {
		opts.Planner = solver.NewPlanner(logger, 0)
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: opts.MaxUploadSize,
		version:       trimmedVersion,
		planner:       opts.Planner,
		catalog:       opts.Catalog,
		store:         opts.Store,
		limiter:       newLimiter(opts.RateLimit, opts.RateBurst),
		solveTimeout:  opts.SolveTimeout,
	}

	mux := http.NewServeMux()

	// Solve API endpoint (file upload)
	mux.HandleFunc("/api/solve", h.handleSolve)

	// Solve API endpoint for editor-driven updates
	mux.HandleFunc("/api/editor/solve", h.handleSolveEditor)

	// Plan serialization endpoint for editor downloads
	mux.HandleFunc("/api/editor/export", h.handleConfigExport)

	// Saved plans
	mux.HandleFunc("/api/plans", h.handlePlans)
	mux.HandleFunc("/api/plans/{id}", h.handlePlan)
	mux.HandleFunc("/api/plans/{id}/solve", h.handlePlanSolve)

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	mux.Handle("/metrics", promhttp.Handler())

	return requestIDMiddleware(
		h.recoverMiddleware(
			h.rateLimitMiddleware(
				h.loggingMiddleware(
					metricsMiddleware(mux),
				),
			),
		),
	)
}

type solveResponse struct {
	Dataset    string                 `json:"dataset"`
	Plans      []plan.Plan            `json:"plans"`
	CSV        string                 `json:"csv"`
	Warnings   []string               `json:"warnings,omitempty"`
	Duration   string                 `json:"duration"`
	Config     map[string]interface{} `json:"config,omitempty"`
	ConfigYAML string                 `json:"configYaml,omitempty"`
}

func (h *handler) handleSolve(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSolve"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge, codeBadRequest,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, r, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	configBytes, err := h.readFormFile(r, "file", op)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, codeBadRequest, "missing plan file", op)
		return
	}

	cat := h.catalog
	if datasetBytes, err := h.readFormFile(r, "dataset", op); err == nil {
		cat, err = dataset.Decode(bytes.NewReader(datasetBytes))
		if err != nil {
			h.respondErrorWithOp(w, r, http.StatusBadRequest, codeBadRequest, err.Error(), op)
			return
		}
	}

	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("error reading plan data, %v", err), op)
		return
	}

	h.runSolve(w, r, configBytes, configMap, cat, start, op)
}

func (h *handler) readFormFile(r *http.Request, field, op string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.String("field", field),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	response := map[string]string{"version": h.version}
	if h.catalog != nil {
		response["dataset"] = h.catalog.ID()
	}
	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleSolveEditor(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSolveEditor"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var payload map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("failed to decode plan: %v", err), op)
		return
	}

	configPayload := make(map[string]interface{})
	if rawConfig, ok := payload["config"]; ok {
		if err := json.Unmarshal(rawConfig, &configPayload); err != nil || configPayload == nil {
			h.respondErrorWithOp(w, r, http.StatusBadRequest, codeBadRequest, "invalid config payload: expected object", op)
			return
		}
	} else {
		for key, raw := range payload {
			if key == "dataset" {
				continue
			}
			var value interface{}
			if err := json.Unmarshal(raw, &value); err != nil {
				h.respondErrorWithOp(w, r, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("invalid %s payload: %v", key, err), op)
				return
			}
			configPayload[key] = value
		}
	}

	cat := h.catalog
	if rawDataset, ok := payload["dataset"]; ok {
		var err error
		cat, err = dataset.Decode(bytes.NewReader(rawDataset))
		if err != nil {
			h.respondErrorWithOp(w, r, http.StatusBadRequest, codeBadRequest, err.Error(), op)
			return
		}
	}

	configBytes, err := yaml.Marshal(configPayload)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("failed to encode plan: %v", err), op)
		return
	}

	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("failed to parse plan: %v", err), op)
		return
	}

	h.runSolve(w, r, configBytes, configMap, cat, start, op)
}

func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleConfigExport"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("failed to decode plan: %v", err), op)
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	yamlBytes, err := marshalOrderedConfigYAML(payload)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("failed to encode plan: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

// marshalOrderedConfigYAML writes the top-level sections in the order a
// person reads a plan: logging, output, common, scenarios, then the rest.
func marshalOrderedConfigYAML(payload map[string]interface{}) ([]byte, error) {
	items := make([]orderedItem, 0, len(payload))
	seen := make(map[string]struct{})

	for _, key := range []string{"logging", "output", "common", "scenarios"} {
		if value, ok := payload[key]; ok {
			items = append(items, orderedItem{key: key, value: value})
			seen[key] = struct{}{}
		}
	}

	remainingKeys := make([]string, 0, len(payload))
	for key := range payload {
		if _, already := seen[key]; already {
			continue
		}
		remainingKeys = append(remainingKeys, key)
	}
	sort.Strings(remainingKeys)
	for _, key := range remainingKeys {
		items = append(items, orderedItem{key: key, value: payload[key]})
	}

	ordered := orderedConfig{items: items}
	return yaml.Marshal(ordered)
}

type orderedConfig struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
}

func (o orderedConfig) MarshalYAML() (interface{}, error) {
	mapNode := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for _, item := range o.items {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: item.key,
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(item.value); err != nil {
			return nil, err
		}
		mapNode.Content = append(mapNode.Content, keyNode, valueNode)
	}

	return mapNode, nil
}

func (h *handler) runSolve(w http.ResponseWriter, r *http.Request, configBytes []byte, configMap map[string]interface{}, cat *dataset.Catalog, start time.Time, op string) {
	if cat == nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, codeBadRequest,
			"no dataset: upload one with the request or configure the server dataset", op)
		return
	}

	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes), "")
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, codeBadRequest, err.Error(), op)
		return
	}
	if cfg.Common.Dataset == "" {
		cfg.Common.Dataset = cat.ID()
	}
	if err := cfg.Validate(); err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, codeBadRequest, err.Error(), op)
		return
	}
	warnings := cfg.ValidateConfiguration()

	ctx, cancel := context.WithTimeout(r.Context(), h.solveTimeout)
	defer cancel()

	results, err := plan.GetPlans(ctx, h.logger, h.planner, cat, *cfg)
	if err != nil {
		h.respondError(w, r, err, op)
		return
	}

	elapsed := time.Since(start)

	if configMap == nil {
		configMap = make(map[string]interface{})
	}

	response := solveResponse{
		Dataset:    cat.ID(),
		Plans:      results,
		CSV:        output.CsvString(results),
		Warnings:   warnings,
		Duration:   elapsed.String(),
		Config:     configMap,
		ConfigYAML: string(configBytes),
	}

	h.logger.Info("plan solved",
		zap.String("op", op),
		zap.String("requestID", requestIDFrom(r.Context())),
		zap.String("dataset", cat.ID()),
		zap.Int("scenarios", len(results)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func decodeYAMLToMap(data []byte) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return make(map[string]interface{}), nil
	}

	var result map[string]interface{}
	if err := yaml.Unmarshal(trimmed, &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = make(map[string]interface{})
	}
	return result, nil
}

// respondError maps err to a status and code and writes it.
func (h *handler) respondError(w http.ResponseWriter, r *http.Request, err error, op string) {
	status, code := statusFor(err)
	h.writeError(w, r, status, errorResponse{Error: err.Error(), Code: code, Details: detailsOf(err)}, op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, r *http.Request, status int, code, msg, op string) {
	h.writeError(w, r, status, errorResponse{Error: msg, Code: code}, op)
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, status int, body errorResponse, op string) {
	body.RequestID = requestIDFrom(r.Context())
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("op", op),
			zap.String("requestID", body.RequestID),
			zap.Int("status", status),
			zap.String("code", body.Code),
			zap.String("error", body.Error),
		)
	} else {
		h.logger.Info("request rejected",
			zap.String("op", op),
			zap.String("requestID", body.RequestID),
			zap.Int("status", status),
			zap.String("code", body.Code),
			zap.String("error", body.Error),
		)
	}

	h.writeJSON(w, status, body)
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
