// Package httptransport is the thin HTTP layer. Handlers decode, delegate to
// the auth service, and encode; no authentication decision is made here.
package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/models"
	id "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain"
	dErrors "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain-errors"
)

// AuthService is the surface of the session and delegation authority the
// transport depends on.
type AuthService interface {
	Login(ctx context.Context, kind models.PrincipalKind, identifier, secret string) (*models.LoginResult, error)
	GuestLogin(ctx context.Context, accessCode, displayName string) (*models.GuestLoginResult, error)
	VerifySession(ctx context.Context, tokenValue string, kind models.PrincipalKind) (*models.Principal, error)
	VerifyGuest(ctx context.Context, tokenValue string) (*models.GuestPrincipal, error)
	Refresh(ctx context.Context, refreshToken string) (*models.RefreshResult, error)
	Logout(ctx context.Context, tokenValue string)
	IssueDelegation(ctx context.Context, issuerID id.SuperuserID, targetTenantID id.TenantID) (*models.DelegationResult, error)
	VerifyDelegation(ctx context.Context, tokenValue string) (*models.Principal, error)
	CleanupExpiredDelegations(ctx context.Context) (*models.CleanupResult, error)
}

// HealthChecker reports backing-store reachability for /healthz.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type Handler struct {
	auth   AuthService
	health []HealthChecker
}

func NewHandler(auth AuthService, health ...HealthChecker) *Handler {
	return &Handler{auth: auth, health: health}
}

// NewRouter wires every endpoint. Request id, client metadata, and the
// request clock are injected once here so one request observes one instant.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestMetadata)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.handleLogin)
		r.Post("/guest", h.handleGuestLogin)
		r.Post("/verify", h.handleVerify)
		r.Post("/refresh", h.handleRefresh)
		r.Post("/logout", h.handleLogout)
		r.Post("/delegate", h.handleDelegate)
	})
	r.Route("/admin", func(r chi.Router) {
		r.Post("/delegations", h.handleIssueDelegation)
		r.Post("/delegations/cleanup", h.handleCleanup)
	})
	r.Get("/healthz", h.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	for _, checker := range h.health {
		if err := checker.Health(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError translates a domain error into the JSON error envelope. Only the
// code crosses the wire; internal messages stay server-side.
func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	writeJSON(w, dErrors.ToHTTPStatus(code), map[string]string{"error": string(code)})
}

func decode(r *http.Request, into any) error {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}
