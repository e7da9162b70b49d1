package httptransport

import (
	"net/http"

	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/models"
)

type loginRequest struct {
	Kind       string `json:"kind"`
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
}

type loginResponse struct {
	Token        string            `json:"token"`
	RefreshToken string            `json:"refresh_token,omitempty"`
	Principal    *principalPayload `json:"principal"`
}

type principalPayload struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`

	// god
	Username string `json:"username,omitempty"`

	// client
	TenantName         string `json:"tenant_name,omitempty"`
	Slug               string `json:"slug,omitempty"`
	SubscriptionStatus string `json:"subscription_status,omitempty"`
}

func principalFrom(p *models.Principal) *principalPayload {
	out := &principalPayload{Kind: string(p.Kind), ID: p.PrincipalID()}
	switch p.Kind {
	case models.KindGod:
		if p.Superuser != nil {
			out.Username = p.Superuser.Username
		}
	case models.KindClient:
		if p.Owner != nil {
			out.TenantName = p.Owner.TenantName
			out.Slug = p.Owner.Slug
			out.SubscriptionStatus = string(p.Owner.SubscriptionStatus)
		}
	}
	return out
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auth.Login(r.Context(), models.PrincipalKind(req.Kind), req.Identifier, req.Secret)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Token:        result.Token,
		RefreshToken: result.RefreshToken,
		Principal:    principalFrom(result.Principal),
	})
}

type guestLoginRequest struct {
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
}

type guestLoginResponse struct {
	Token      string        `json:"token"`
	AccessType string        `json:"access_type"`
	Guest      *guestPayload `json:"guest"`
}

type guestPayload struct {
	GuestID     string `json:"guest_id"`
	DisplayName string `json:"display_name,omitempty"`
	TenantID    string `json:"tenant_id"`
	AccessType  string `json:"access_type"`
}

func guestFrom(p *models.GuestPrincipal) *guestPayload {
	return &guestPayload{
		GuestID:     p.GuestID,
		DisplayName: p.DisplayName,
		TenantID:    p.TenantID.String(),
		AccessType:  string(p.AccessType),
	}
}

func (h *Handler) handleGuestLogin(w http.ResponseWriter, r *http.Request) {
	var req guestLoginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auth.GuestLogin(r.Context(), req.Code, req.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, guestLoginResponse{
		Token:      result.Token,
		AccessType: string(result.AccessType),
		Guest:      guestFrom(result.Principal),
	})
}

type verifyRequest struct {
	Token string `json:"token"`
	Kind  string `json:"kind"`
}

// handleVerify resolves a token back into a principal. Kind "guest" routes to
// the guest store; god and client share the session store.
func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.Kind == "guest" {
		guest, err := h.auth.VerifyGuest(r.Context(), req.Token)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]*guestPayload{"guest": guestFrom(guest)})
		return
	}

	principal, err := h.auth.VerifySession(r.Context(), req.Token, models.PrincipalKind(req.Kind))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*principalPayload{"principal": principalFrom(principal)})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": result.Token})
}

type logoutRequest struct {
	Token string `json:"token"`
}

// handleLogout always answers 204: logout is idempotent and a caller
// discarding its token must never be told it failed.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if err := decode(r, &req); err == nil {
		h.auth.Logout(r.Context(), req.Token)
	}
	w.WriteHeader(http.StatusNoContent)
}

type delegateRequest struct {
	Token string `json:"token"`
}

// handleDelegate consumes an impersonation grant and returns the target
// tenant-owner principal.
func (h *Handler) handleDelegate(w http.ResponseWriter, r *http.Request) {
	var req delegateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	principal, err := h.auth.VerifyDelegation(r.Context(), req.Token)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*principalPayload{"principal": principalFrom(principal)})
}
