package httptransport

import (
	"net/http"

	id "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain"
)

type issueDelegationRequest struct {
	IssuerID       string `json:"issuer_id"`
	TargetTenantID string `json:"target_tenant_id"`
}

func (h *Handler) handleIssueDelegation(w http.ResponseWriter, r *http.Request) {
	var req issueDelegationRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	issuerID, err := id.ParseSuperuserID(req.IssuerID)
	if err != nil {
		writeError(w, err)
		return
	}
	targetTenantID, err := id.ParseTenantID(req.TargetTenantID)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auth.IssueDelegation(r.Context(), issuerID, targetTenantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": result.Token})
}

func (h *Handler) handleCleanup(w http.ResponseWriter, r *http.Request) {
	result, err := h.auth.CleanupExpiredDelegations(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted_count": result.DeletedCount})
}
