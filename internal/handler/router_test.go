package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MAVERICK-VF142/Drx.MediMate/internal/cache"
	"github.com/MAVERICK-VF142/Drx.MediMate/internal/clock"
	"github.com/MAVERICK-VF142/Drx.MediMate/internal/config"
	"github.com/MAVERICK-VF142/Drx.MediMate/internal/gateway"
	"github.com/MAVERICK-VF142/Drx.MediMate/internal/repository"
	"github.com/MAVERICK-VF142/Drx.MediMate/internal/service"
	jwtpkg "github.com/MAVERICK-VF142/Drx.MediMate/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	router  *gin.Engine
	jwt     *jwtpkg.Manager
	adminID uuid.UUID
	clock   *clock.Manual
	reply   func(gateway.Prompt) (string, error)
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()

	ts := &testServer{
		jwt:     jwtpkg.NewManager("test-signing-key", "medimate-test", time.Hour),
		adminID: uuid.New(),
		clock:   clock.NewManual(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
		reply:   func(gateway.Prompt) (string, error) { return "generated text", nil },
	}

	cfg := &config.Config{}
	cfg.Admin.UserIDs = []string{ts.adminID.String()}
	cfg.Metrics.Enabled = true
	cfg.Metrics.Path = "/metrics"
	if mutate != nil {
		mutate(cfg)
	}

	logger := zap.NewNop()
	caller := gateway.CallerFunc(func(_ context.Context, p gateway.Prompt) (string, error) {
		return ts.reply(p)
	})
	gw := gateway.New(caller, gateway.Config{MaxRetries: 2, BaseDelay: time.Second, AttemptTimeout: time.Second},
		gateway.WithClock(ts.clock))
	responses := cache.NewMemoryCache(cache.DefaultMaxEntries, cache.DefaultTTL, ts.clock)
	invites := service.NewInviteService(repository.NewMemoryInvitationRepository(), 0, ts.clock, logger)

	ts.router = SetupRouter(cfg, logger, ts.jwt, Handlers{
		Assistant:  NewAssistantHandler(service.NewAssistantService(gw, responses, logger), logger),
		Invitation: NewInvitationHandler(invites, logger),
		Admin:      NewAdminHandler(invites, logger),
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("# metrics\n"))
		}),
	})
	return ts
}

func (ts *testServer) token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	tok, err := ts.jwt.GenerateAccessToken(userID)
	require.NoError(t, err)
	return tok
}

func (ts *testServer) do(t *testing.T, method, path string, body any, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, nil)
	w, _ := ts.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMetricsMounted(t *testing.T) {
	ts := newTestServer(t, nil)
	w, _ := ts.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# metrics")

	ts = newTestServer(t, func(c *config.Config) { c.Metrics.Enabled = false })
	w, _ = ts.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDrugInfo(t *testing.T) {
	ts := newTestServer(t, nil)

	w, env := ts.do(t, http.MethodPost, "/api/v1/drug-info", gin.H{"drug_name": "Aspirin"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var out TextResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, "generated text", out.Response)

	w, env = ts.do(t, http.MethodPost, "/api/v1/drug-info", gin.H{"drug_name": "<b>"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.ErrInvalidDrugName.Error(), env.Message)

	w, _ = ts.do(t, http.MethodPost, "/api/v1/drug-info", gin.H{}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDrugInfoGatewayExhausted(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.reply = func(gateway.Prompt) (string, error) { return "   ", nil }

	w, env := ts.do(t, http.MethodPost, "/api/v1/drug-info", gin.H{"drug_name": "Aspirin"}, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, 503, env.Code)
}

func TestSymptomChecker(t *testing.T) {
	ts := newTestServer(t, nil)
	var prompts []string
	ts.reply = func(p gateway.Prompt) (string, error) {
		prompts = append(prompts, p.Text)
		return "ok", nil
	}

	w, _ := ts.do(t, http.MethodPost, "/api/v1/symptom-checker", gin.H{"symptoms": "fever"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = ts.do(t, http.MethodPost, "/api/v1/symptom-checker", gin.H{"symptoms": "fever", "action": "predict"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[0], "Over-the-Counter")
	assert.Contains(t, prompts[1], "Possible Diseases")

	w, _ = ts.do(t, http.MethodPost, "/api/v1/symptom-checker", gin.H{"symptoms": "fever", "action": "diagnose"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = ts.do(t, http.MethodPost, "/api/v1/symptom-checker", gin.H{"symptoms": "   "}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImageAnalysis(t *testing.T) {
	ts := newTestServer(t, nil)

	w, _ := ts.do(t, http.MethodPost, "/api/v1/image-analysis", gin.H{"image_data": "data:image/jpeg;base64,/9j/4AAQ"}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := ts.do(t, http.MethodPost, "/api/v1/image-analysis", gin.H{"image_data": "hello"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.ErrInvalidImage.Error(), env.Message)
}

func TestAssistantRateLimited(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) {
		c.RateLimit = config.RateLimitConfig{Enabled: true, Limit: 2, Window: time.Minute, Burst: 2}
	})

	for i := 0; i < 2; i++ {
		w, _ := ts.do(t, http.MethodPost, "/api/v1/drug-info", gin.H{"drug_name": "Aspirin"}, "")
		require.Equal(t, http.StatusOK, w.Code)
	}
	w, env := ts.do(t, http.MethodPost, "/api/v1/drug-info", gin.H{"drug_name": "Aspirin"}, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, 429, env.Code)

	// Invitation verification is not rate limited.
	w, _ = ts.do(t, http.MethodPost, "/api/v1/invitations/verify", gin.H{"code": "x", "email": "a@example.com"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminInvitationsRequireAdmin(t *testing.T) {
	ts := newTestServer(t, nil)
	body := gin.H{"email": "new-admin@example.com"}

	w, _ := ts.do(t, http.MethodPost, "/api/v1/admin/invitations", body, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = ts.do(t, http.MethodPost, "/api/v1/admin/invitations", body, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = ts.do(t, http.MethodGet, "/api/v1/admin/invitations", nil, ts.token(t, uuid.New()))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestInvitationLifecycle(t *testing.T) {
	ts := newTestServer(t, nil)
	admin := ts.token(t, ts.adminID)

	w, env := ts.do(t, http.MethodPost, "/api/v1/admin/invitations", gin.H{"email": "New-Admin@example.com"}, admin)
	require.Equal(t, http.StatusCreated, w.Code)
	var created CreateInvitationResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.InvitationCode)
	assert.True(t, ts.clock.Now().Add(48*time.Hour).Equal(created.ExpiresAt))

	w, env = ts.do(t, http.MethodGet, "/api/v1/admin/invitations", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.InvitationCode, listed[0]["code"])
	assert.Equal(t, "2026-03-01T09:00:00Z", listed[0]["created_at"])
	assert.Equal(t, "2026-03-03T09:00:00Z", listed[0]["expires_at"])
	assert.Equal(t, false, listed[0]["used"])

	verify := func(code, email string) (*httptest.ResponseRecorder, envelope) {
		return ts.do(t, http.MethodPost, "/api/v1/invitations/verify", gin.H{"code": code, "email": email}, "")
	}

	w, env = verify(created.InvitationCode, "someone@example.com")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "This invitation is not for this email address", env.Message)

	w, _ = verify(created.InvitationCode, "new-admin@EXAMPLE.com")
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = verify(created.InvitationCode, "new-admin@example.com")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invitation code has already been used", env.Message)

	w, env = verify("unknown", "new-admin@example.com")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid invitation code", env.Message)

	w, _ = ts.do(t, http.MethodPost, "/api/v1/invitations/verify", gin.H{"code": created.InvitationCode}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvitationExpiredOverHTTP(t *testing.T) {
	ts := newTestServer(t, nil)
	admin := ts.token(t, ts.adminID)

	w, env := ts.do(t, http.MethodPost, "/api/v1/admin/invitations", gin.H{"email": "a@example.com", "ttl_hours": 1}, admin)
	require.Equal(t, http.StatusCreated, w.Code)
	var created CreateInvitationResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))

	ts.clock.Advance(time.Hour + time.Minute)
	w, env = ts.do(t, http.MethodPost, "/api/v1/invitations/verify", gin.H{"code": created.InvitationCode, "email": "a@example.com"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invitation code has expired", env.Message)
}

func TestCreateInvitationValidation(t *testing.T) {
	ts := newTestServer(t, nil)
	admin := ts.token(t, ts.adminID)

	w, _ := ts.do(t, http.MethodPost, "/api/v1/admin/invitations", gin.H{"email": "nope"}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = ts.do(t, http.MethodPost, "/api/v1/admin/invitations", gin.H{"email": "a@example.com", "ttl_hours": -1}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
