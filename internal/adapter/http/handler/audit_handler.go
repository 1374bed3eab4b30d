package handler

import (
	"context"
	"net/http"

	"github.com/iho/coinledger/internal/adapter/http/dto"
	"github.com/iho/coinledger/internal/domain"
)

// AuditLister reads audit rows.
type AuditLister interface {
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// AuditHandler exposes the audit trail of admin mutations.
type AuditHandler struct {
	audit AuditLister
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(audit AuditLister) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List lists audit rows filtered by userId, action, resourceType and resourceId.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset, _ := domain.ValidatePagination(pageQuery(r))

	logs, err := h.audit.List(r.Context(), domain.AuditFilter{
		UserID:       q.Get("userId"),
		Action:       q.Get("action"),
		ResourceType: q.Get("resourceType"),
		ResourceID:   q.Get("resourceId"),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		writeDomainError(w, "failed to list audit logs", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"auditLogs": dto.AuditLogsFromDomain(logs)})
}
