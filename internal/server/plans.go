package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/iwvelando/factory-planner/internal/store"
	apperrors "github.com/iwvelando/factory-planner/pkg/errors"
	"go.uber.org/zap"
)

func (h *handler) requireStore(w http.ResponseWriter, r *http.Request, op string) bool {
	if h.store == nil {
		h.respondErrorWithOp(w, r, http.StatusServiceUnavailable, codeUnavailable, "saved plans are disabled", op)
		return false
	}
	return true
}

// handlePlans lists saved plans (GET) or saves a new one (POST).
func (h *handler) handlePlans(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePlans"
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if !h.requireStore(w, r, op) {
		return
	}

	if r.Method == http.MethodGet {
		plans, err := h.store.List(r.Context())
		if err != nil {
			h.respondError(w, r, err, op)
			return
		}
		h.writeJSON(w, http.StatusOK, map[string]interface{}{"plans": plans})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	var saved store.SavedPlan
	if err := json.NewDecoder(r.Body).Decode(&saved); err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("failed to decode saved plan: %v", err), op)
		return
	}
	saved.ID = ""
	h.savePlan(w, r, saved, http.StatusCreated, op)
}

func (h *handler) savePlan(w http.ResponseWriter, r *http.Request, saved store.SavedPlan, status int, op string) {
	if saved.DatasetID == "" && h.catalog != nil {
		saved.DatasetID = h.catalog.ID()
	}
	if h.catalog != nil {
		if err := h.checkDataset(saved); err != nil {
			h.respondError(w, r, err, op)
			return
		}
	}

	result, err := h.store.Save(r.Context(), saved)
	if err != nil {
		h.respondError(w, r, err, op)
		return
	}
	h.logger.Info("saved plan stored",
		zap.String("op", op),
		zap.String("requestID", requestIDFrom(r.Context())),
		zap.String("id", result.ID),
	)
	h.writeJSON(w, status, result)
}

// handlePlan reads (GET), replaces (PUT) or deletes (DELETE) one saved plan.
func (h *handler) handlePlan(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePlan"
	if !h.requireStore(w, r, op) {
		return
	}
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		saved, err := h.store.Get(r.Context(), id)
		if err != nil {
			h.respondError(w, r, err, op)
			return
		}
		h.writeJSON(w, http.StatusOK, saved)
	case http.MethodPut:
		if _, err := h.store.Get(r.Context(), id); err != nil {
			h.respondError(w, r, err, op)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
		var saved store.SavedPlan
		if err := json.NewDecoder(r.Body).Decode(&saved); err != nil {
			h.respondErrorWithOp(w, r, http.StatusBadRequest, codeBadRequest, fmt.Sprintf("failed to decode saved plan: %v", err), op)
			return
		}
		saved.ID = id
		h.savePlan(w, r, saved, http.StatusOK, op)
	case http.MethodDelete:
		if err := h.store.Delete(r.Context(), id); err != nil {
			h.respondError(w, r, err, op)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

// handlePlanSolve solves a saved plan against the server dataset.
func (h *handler) handlePlanSolve(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePlanSolve"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if !h.requireStore(w, r, op) {
		return
	}
	if h.catalog == nil {
		h.respondErrorWithOp(w, r, http.StatusServiceUnavailable, codeUnavailable, "no server dataset is configured", op)
		return
	}

	saved, err := h.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondError(w, r, err, op)
		return
	}
	if err := h.checkDataset(*saved); err != nil {
		h.respondError(w, r, err, op)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.solveTimeout)
	defer cancel()

	result, err := h.planner.Solve(ctx, h.catalog, saved.Settings, saved.Adjustment, saved.Objectives)
	if err != nil {
		h.respondError(w, r, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"plan":   saved,
		"result": result,
	})
}

// checkDataset rejects saved plans written for a different dataset.
func (h *handler) checkDataset(saved store.SavedPlan) error {
	if saved.DatasetID != h.catalog.ID() {
		return apperrors.NewWithContext(apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("saved plan targets dataset %q but the server serves %q", saved.DatasetID, h.catalog.ID()),
			map[string]any{"dataset": saved.DatasetID})
	}
	return nil
}
