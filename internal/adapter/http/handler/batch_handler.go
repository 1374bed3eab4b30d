package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iho/coinledger/internal/adapter/http/dto"
	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/usecase"
)

// BatchService defines the behavior needed by BatchHandler.
type BatchService interface {
	StartJob(ctx context.Context, input usecase.StartJobInput) (*domain.BatchJob, error)
	ResumeJob(ctx context.Context, id string) (*domain.BatchJob, error)
	GetJob(ctx context.Context, id string) (*domain.BatchJob, error)
	ListJobs(ctx context.Context, limit, offset int) ([]*domain.BatchJob, error)
	ListItems(ctx context.Context, jobID string, limit, offset int) ([]*domain.BatchItem, error)
	PurgeLedger(ctx context.Context, confirm bool) (int64, error)
}

// BatchHandler handles bulk admin operations and their job records.
type BatchHandler struct {
	batchUC BatchService
}

// NewBatchHandler creates a new BatchHandler.
func NewBatchHandler(batchUC BatchService) *BatchHandler {
	return &BatchHandler{batchUC: batchUC}
}

// Start returns a handler that runs a job of the given kind.
func (h *BatchHandler) Start(kind domain.BatchKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.BatchRequest
		if !decodeOptionalBody(w, r, &req) {
			return
		}

		input, err := req.ToUseCaseInput(kind)
		if err != nil {
			writeDomainError(w, "invalid batch request", err)
			return
		}

		job, err := h.batchUC.StartJob(r.Context(), input)
		h.writeJob(w, "failed to run "+string(kind), job, err)
	}
}

// Resume continues a running or failed job from its checkpoint.
func (h *BatchHandler) Resume(w http.ResponseWriter, r *http.Request) {
	job, err := h.batchUC.ResumeJob(r.Context(), chi.URLParam(r, "id"))
	h.writeJob(w, "failed to resume batch job", job, err)
}

// Get retrieves a batch job by ID.
func (h *BatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	job, err := h.batchUC.GetJob(r.Context(), chi.URLParam(r, "id"))
	h.writeJob(w, "failed to get batch job", job, err)
}

// List lists batch jobs, newest first.
func (h *BatchHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageQuery(r)

	jobs, err := h.batchUC.ListJobs(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, "failed to list batch jobs", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"jobs": dto.BatchJobsFromDomain(jobs)})
}

// ListItems lists the per-target outcomes of a job.
func (h *BatchHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageQuery(r)

	items, err := h.batchUC.ListItems(r.Context(), chi.URLParam(r, "id"), limit, offset)
	if err != nil {
		writeDomainError(w, "failed to list batch items", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": dto.BatchItemsFromDomain(items)})
}

// Purge deletes every ledger event. Confirmation comes from the body or
// ?confirm=true.
func (h *BatchHandler) Purge(w http.ResponseWriter, r *http.Request) {
	var req dto.ConfirmRequest
	if !decodeOptionalBody(w, r, &req) {
		return
	}
	if ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm")); ok {
		req.Confirm = true
	}

	deleted, err := h.batchUC.PurgeLedger(r.Context(), req.Confirm)
	if err != nil {
		writeDomainError(w, "failed to purge ledger", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PurgeResponse{Deleted: deleted})
}

// writeJob answers 207 with the job body when only some items failed.
func (h *BatchHandler) writeJob(w http.ResponseWriter, message string, job *domain.BatchJob, err error) {
	if err != nil {
		var partial *domain.PartialFailureError
		if errors.As(err, &partial) && partial.Job != nil {
			writeJSON(w, http.StatusMultiStatus, dto.BatchJobFromDomain(partial.Job))
			return
		}
		writeDomainError(w, message, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BatchJobFromDomain(job))
}

// decodeOptionalBody decodes a JSON body when one is present.
func decodeOptionalBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}
