package httptransport

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/secrets"
	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/service"
	delegationstore "github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/store/delegation"
	gueststore "github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/store/guest"
	sessionstore "github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/store/session"
	directory "github.com/kherembourg/RefletsDeBonheur-sub000/internal/directory/models"
	dirstore "github.com/kherembourg/RefletsDeBonheur-sub000/internal/directory/store"
	id "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/audit"
	auditmem "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/audit/store/memory"
)

const (
	testGodPassword = "g0d-password"
	testOwnerEmail  = "owner@example.com"
	testOwnerSecret = "owner-password"
	testGuestCode   = "WED2026"
	testAdminCode   = "WED2026-ADMIN"
)

type testServer struct {
	*httptest.Server
	superuserID id.SuperuserID
	tenantID    id.TenantID
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	now := time.Now()

	godHash, err := secrets.Hash(testGodPassword)
	require.NoError(t, err)
	ownerHash, err := secrets.Hash(testOwnerSecret)
	require.NoError(t, err)

	dir := dirstore.NewInMemory()
	superuserID := id.NewSuperuserID()
	dir.PutSuperuser(directory.Superuser{
		ID:           superuserID,
		Username:     "admin",
		PasswordHash: godHash,
		Active:       true,
		CreatedAt:    now,
	})
	tenantID := id.NewTenantID()
	dir.PutTenant(directory.Tenant{
		ID:                 tenantID,
		Name:               "Emma & Lucas",
		Slug:               "emma-et-lucas",
		ContactEmail:       testOwnerEmail,
		SubscriptionStatus: directory.SubscriptionActive,
		GuestCode:          testGuestCode,
		AdminCode:          testAdminCode,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, directory.Owner{
		ID:           tenantID,
		Email:        testOwnerEmail,
		PasswordHash: ownerHash,
		CreatedAt:    now,
	})

	svc := service.New(dir,
		sessionstore.NewInMemory(),
		gueststore.NewInMemory(),
		delegationstore.NewInMemory(),
		service.WithAuditPublisher(audit.NewPublisher(auditmem.New())),
	)
	server := httptest.NewServer(NewRouter(NewHandler(svc)))
	t.Cleanup(server.Close)
	return &testServer{Server: server, superuserID: superuserID, tenantID: tenantID}
}

func (ts *testServer) post(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
}

func (ts *testServer) login(t *testing.T, kind, identifier, secret string) loginResponse {
	t.Helper()
	resp := ts.post(t, "/auth/login", loginRequest{Kind: kind, Identifier: identifier, Secret: secret})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out loginResponse
	decodeBody(t, resp, &out)
	return out
}

func TestLoginEndpoint(t *testing.T) {
	ts := newTestServer(t)

	out := ts.login(t, "client", testOwnerEmail, testOwnerSecret)
	assert.Len(t, out.Token, 64)
	assert.Len(t, out.RefreshToken, 64)
	require.NotNil(t, out.Principal)
	assert.Equal(t, "client", out.Principal.Kind)
	assert.Equal(t, "emma-et-lucas", out.Principal.Slug)

	god := ts.login(t, "god", "admin", testGodPassword)
	assert.Empty(t, god.RefreshToken)
	assert.Equal(t, "admin", god.Principal.Username)
}

func TestLoginEndpoint_Failures(t *testing.T) {
	ts := newTestServer(t)

	// Wrong secret and unknown identifier answer identically.
	for _, req := range []loginRequest{
		{Kind: "client", Identifier: testOwnerEmail, Secret: "wrong"},
		{Kind: "client", Identifier: "nobody@example.com", Secret: testOwnerSecret},
		{Kind: "god", Identifier: "admin", Secret: "wrong"},
	} {
		resp := ts.post(t, "/auth/login", req)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		var envelope map[string]string
		decodeBody(t, resp, &envelope)
		assert.Equal(t, "invalid_credentials", envelope["error"])
	}

	resp := ts.post(t, "/auth/login", loginRequest{Kind: "alien", Identifier: "x", Secret: "y"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestGuestEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.post(t, "/auth/guest", guestLoginRequest{Code: testAdminCode, DisplayName: "Photographe"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out guestLoginResponse
	decodeBody(t, resp, &out)
	assert.Equal(t, "admin", out.AccessType)
	assert.Equal(t, ts.tenantID.String(), out.Guest.TenantID)

	verifyResp := ts.post(t, "/auth/verify", verifyRequest{Token: out.Token, Kind: "guest"})
	require.Equal(t, http.StatusOK, verifyResp.StatusCode)
	var verified map[string]*guestPayload
	decodeBody(t, verifyResp, &verified)
	assert.Equal(t, out.Guest.GuestID, verified["guest"].GuestID)

	badResp := ts.post(t, "/auth/guest", guestLoginRequest{Code: "NOPE"})
	assert.Equal(t, http.StatusUnauthorized, badResp.StatusCode)
	badResp.Body.Close()
}

func TestVerifyAndLogoutEndpoints(t *testing.T) {
	ts := newTestServer(t)
	login := ts.login(t, "client", testOwnerEmail, testOwnerSecret)

	resp := ts.post(t, "/auth/verify", verifyRequest{Token: login.Token, Kind: "client"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var verified map[string]*principalPayload
	decodeBody(t, resp, &verified)
	assert.Equal(t, ts.tenantID.String(), verified["principal"].ID)

	// Logout is 204 every time, valid token or not.
	for _, token := range []string{login.Token, login.Token, "never-issued"} {
		logoutResp := ts.post(t, "/auth/logout", logoutRequest{Token: token})
		assert.Equal(t, http.StatusNoContent, logoutResp.StatusCode)
		logoutResp.Body.Close()
	}

	resp = ts.post(t, "/auth/verify", verifyRequest{Token: login.Token, Kind: "client"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestRefreshEndpoint(t *testing.T) {
	ts := newTestServer(t)
	login := ts.login(t, "client", testOwnerEmail, testOwnerSecret)

	resp := ts.post(t, "/auth/refresh", refreshRequest{RefreshToken: login.RefreshToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]string
	decodeBody(t, resp, &out)
	assert.Len(t, out["token"], 64)
	assert.NotEqual(t, login.Token, out["token"])

	badResp := ts.post(t, "/auth/refresh", refreshRequest{RefreshToken: "never-issued"})
	assert.Equal(t, http.StatusUnauthorized, badResp.StatusCode)
	badResp.Body.Close()
}

func TestDelegationEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.post(t, "/admin/delegations", issueDelegationRequest{
		IssuerID:       ts.superuserID.String(),
		TargetTenantID: ts.tenantID.String(),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var issued map[string]string
	decodeBody(t, resp, &issued)
	require.Len(t, issued["token"], 64)

	useResp := ts.post(t, "/auth/delegate", delegateRequest{Token: issued["token"]})
	require.Equal(t, http.StatusOK, useResp.StatusCode)
	var delegated map[string]*principalPayload
	decodeBody(t, useResp, &delegated)
	assert.Equal(t, "client", delegated["principal"].Kind)
	assert.Equal(t, ts.tenantID.String(), delegated["principal"].ID)

	// Single use: the second attempt is rejected.
	reuse := ts.post(t, "/auth/delegate", delegateRequest{Token: issued["token"]})
	assert.Equal(t, http.StatusUnauthorized, reuse.StatusCode)
	var envelope map[string]string
	decodeBody(t, reuse, &envelope)
	assert.Equal(t, "grant_exhausted", envelope["error"])

	missing := ts.post(t, "/admin/delegations", issueDelegationRequest{
		IssuerID:       ts.superuserID.String(),
		TargetTenantID: id.NewTenantID().String(),
	})
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
	missing.Body.Close()

	malformed := ts.post(t, "/admin/delegations", issueDelegationRequest{
		IssuerID:       "not-a-uuid",
		TargetTenantID: ts.tenantID.String(),
	})
	assert.Equal(t, http.StatusBadRequest, malformed.StatusCode)
	malformed.Body.Close()
}

func TestCleanupEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.post(t, "/admin/delegations/cleanup", struct{}{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]int
	decodeBody(t, resp, &out)
	assert.Equal(t, 0, out["deleted_count"])
}

func TestHealthzEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
