package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/bizdesk/internal/api"
	"github.com/dmitrijs2005/bizdesk/internal/common"
	"github.com/dmitrijs2005/bizdesk/internal/logging"
	"github.com/dmitrijs2005/bizdesk/internal/server/agents"
	"github.com/dmitrijs2005/bizdesk/internal/server/auth"
	"github.com/dmitrijs2005/bizdesk/internal/server/metrics"
	"github.com/dmitrijs2005/bizdesk/internal/server/models"
	"github.com/dmitrijs2005/bizdesk/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdentity struct {
	lastIdentifier string
	lastPassword   string
	lastCode       string
	profile        models.Profile
	meID           string
	err            error
}

func (f *fakeIdentity) session(id string) *services.Session {
	return &services.Session{Token: "tok-" + id, Account: &models.AccountInfo{ID: id, Role: models.RoleUser}}
}

func (f *fakeIdentity) Register(_ context.Context, r services.Registration) (*services.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastIdentifier = r.Identifier
	return f.session("new"), nil
}

func (f *fakeIdentity) Login(_ context.Context, identifier, password string) (*services.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastIdentifier, f.lastPassword = identifier, password
	return f.session(identifier), nil
}

func (f *fakeIdentity) FederatedLogin(_ context.Context, assertion string) (*services.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.session("g-" + assertion), nil
}

func (f *fakeIdentity) RequestResetCode(_ context.Context, identifier string) error {
	f.lastIdentifier = identifier
	return f.err
}

func (f *fakeIdentity) RedeemResetCode(_ context.Context, identifier, code, newPassword string) error {
	f.lastIdentifier, f.lastCode, f.lastPassword = identifier, code, newPassword
	return f.err
}

func (f *fakeIdentity) Me(_ context.Context, accountID string) (*models.AccountInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.meID = accountID
	return &models.AccountInfo{ID: accountID, Role: models.RoleUser}, nil
}

func (f *fakeIdentity) UpdateProfile(_ context.Context, accountID string, p models.Profile) (*models.AccountInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.profile = p
	return &models.AccountInfo{ID: accountID, Profile: p, Role: models.RoleUser}, nil
}

func (f *fakeIdentity) ListAccounts(context.Context) ([]*models.AccountInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []*models.AccountInfo{{ID: "a", Role: models.RoleAdmin}}, nil
}

type fakeComposer struct {
	prompt string
	answer *agents.Answer
	err    error
}

func (f *fakeComposer) Compose(_ context.Context, prompt string) (*agents.Answer, error) {
	f.prompt = prompt
	return f.answer, f.err
}

type harness struct {
	identity *fakeIdentity
	composer *fakeComposer
	tokens   *auth.TokenService
	metrics  *metrics.Metrics
	handler  http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		identity: &fakeIdentity{},
		composer: &fakeComposer{},
		tokens:   auth.NewTokenService([]byte("test-secret")),
		metrics:  metrics.New(),
	}
	h.handler = NewServer("", logging.Nop{}, h.identity, h.composer, h.tokens, h.metrics).Router()
	return h
}

func (h *harness) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *harness) token(t *testing.T, role models.Role) string {
	t.Helper()
	tok, err := h.tokens.Issue("acc-1", "Anna", role)
	require.NoError(t, err)
	return tok
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRegister_Created(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/users/register", `{"name":"Anna","identifier":"+371","password":"pw"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decodeBody[api.SessionResponse](t, rec)
	assert.Equal(t, "tok-new", resp.Token)
	assert.Equal(t, "+371", h.identity.lastIdentifier)
}

func TestLogin(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/users/login", `{"identifier":"a@b.c","password":"pw"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok-a@b.c", decodeBody[api.SessionResponse](t, rec).Token)
	assert.Equal(t, "pw", h.identity.lastPassword)
}

func TestFederatedLogin(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/users/federated-login", `{"credential":"idtoken"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok-g-idtoken", decodeBody[api.SessionResponse](t, rec).Token)
}

func TestResetCodeRoutes(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/users/reset-code", `{"identifier":"+371"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "+371", h.identity.lastIdentifier)

	rec = h.do(t, http.MethodPost, "/api/users/reset-code/redeem", `{"identifier":"+371","code":"123456","newPassword":"n"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "123456", h.identity.lastCode)
	assert.Equal(t, "n", h.identity.lastPassword)
}

func TestMalformedBody(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/users/login", `{"identifier":`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[api.ErrorResponse](t, rec).Error, "malformed request body")
}

func TestBodyTooLarge(t *testing.T) {
	h := newHarness(t)

	big := `{"prompt":"` + strings.Repeat("a", maxBodyBytes+1) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/business-chat", bytes.NewBufferString(big))
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, h.composer.prompt)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"conflict", common.ErrConflict, http.StatusBadRequest, "already exists"},
		{"credential", common.ErrInvalidCredential, http.StatusBadRequest, "invalid credential"},
		{"assertion", common.ErrInvalidAssertion, http.StatusBadRequest, "invalid identity assertion"},
		{"code", common.ErrInvalidOrExpiredCode, http.StatusBadRequest, "invalid or expired code"},
		{"not found", common.ErrorNotFound, http.StatusNotFound, "not found"},
		{"unauthenticated", common.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
		{"forbidden", common.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"internal", errors.New("db error: connection refused"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.identity.err = tt.err

			rec := h.do(t, http.MethodPost, "/api/users/login", `{"identifier":"x","password":"y"}`, "")
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, decodeBody[api.ErrorResponse](t, rec).Error)
		})
	}
}

func TestMe(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/users/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/users/me", "", "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/users/me", "", h.token(t, models.RoleUser))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "acc-1", decodeBody[api.AccountResponse](t, rec).Account.ID)
	assert.Equal(t, "acc-1", h.identity.meID)
}

func TestUpdateProfile(t *testing.T) {
	h := newHarness(t)

	body := `{"profile":{"name":"Anna B","companyName":"Acme","data":{"employees":12}}}`

	rec := h.do(t, http.MethodPut, "/api/users/me/profile", body, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodPut, "/api/users/me/profile", body, h.token(t, models.RoleUser))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Acme", h.identity.profile.CompanyName)
	assert.JSONEq(t, `{"employees":12}`, string(h.identity.profile.Data))
}

func TestListAccounts_AdminGate(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusUnauthorized, h.do(t, http.MethodGet, "/api/admin/users", "", "").Code)
	assert.Equal(t, http.StatusForbidden, h.do(t, http.MethodGet, "/api/admin/users", "", h.token(t, models.RoleUser)).Code)

	rec := h.do(t, http.MethodGet, "/api/admin/users", "", h.token(t, models.RoleAdmin))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[api.AccountListResponse](t, rec).Accounts, 1)
}

func TestCompose(t *testing.T) {
	h := newHarness(t)
	h.composer.answer = &agents.Answer{Sections: []agents.Section{{Label: "A", Text: "x"}}}

	rec := h.do(t, http.MethodPost, "/api/business-chat", `{"prompt":"How do I grow?"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[api.ComposeResponse](t, rec)
	assert.Equal(t, "**A:**\nx", resp.Reply)
	assert.Equal(t, "How do I grow?", h.composer.prompt)
}

func TestCompose_Errors(t *testing.T) {
	h := newHarness(t)

	h.composer.err = common.ErrInvalidInput
	rec := h.do(t, http.MethodPost, "/api/business-chat", `{"prompt":""}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h.composer.err = &agents.UpstreamError{Failed: []agents.PersonaFailure{{Label: "Sales", Err: errors.New("quota: key AIza123")}}}
	rec = h.do(t, http.MethodPost, "/api/business-chat", `{"prompt":"q"}`, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	msg := decodeBody[api.ErrorResponse](t, rec).Error
	assert.NotContains(t, msg, "AIza123")
	assert.NotEmpty(t, msg)
}

func TestRoutingMisc(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody[api.PingResponse](t, rec).Status)

	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, "/api/nope", "", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, h.do(t, http.MethodGet, "/api/users/login", "", "").Code)
}

func TestMetrics_UseRouteTemplates(t *testing.T) {
	h := newHarness(t)

	h.do(t, http.MethodGet, "/healthz", "", "")
	h.do(t, http.MethodGet, "/api/users/me", "", "")

	rec := h.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	out := rec.Body.String()
	assert.Contains(t, out, `bizdesk_http_requests_total{method="GET",path="/healthz",status="200"} 1`)
	assert.Contains(t, out, `bizdesk_http_requests_total{method="GET",path="/api/users/me",status="401"} 1`)
	assert.NotContains(t, out, `path="/metrics"`)
}

func TestServe_StopsOnContextCancel(t *testing.T) {
	h := newHarness(t)
	s := NewServer("", logging.Nop{}, h.identity, h.composer, h.tokens, nil)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, lis) }()

	url := "http://" + lis.Addr().String() + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	s := NewServer("127.0.0.1:99999", logging.Nop{}, &fakeIdentity{}, &fakeComposer{}, auth.NewTokenService([]byte("k")), nil)
	assert.Error(t, s.Run(context.Background()))
}
