package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apihttp "github.com/spec-kit/ticket-triage/internal/api/http"
	"github.com/spec-kit/ticket-triage/internal/api/http/handlers"
	"github.com/spec-kit/ticket-triage/internal/classification"
	"github.com/spec-kit/ticket-triage/internal/config"
	"github.com/spec-kit/ticket-triage/internal/domain"
	"github.com/spec-kit/ticket-triage/internal/events"
	"github.com/spec-kit/ticket-triage/internal/observability"
	"github.com/spec-kit/ticket-triage/internal/persistence"
	"github.com/spec-kit/ticket-triage/internal/repository"
	"github.com/spec-kit/ticket-triage/internal/service"
)

type countingClassifier struct {
	result domain.ClassificationResult
	calls  int
}

func (c *countingClassifier) Classify(context.Context, string) domain.ClassificationResult {
	c.calls++
	return c.result
}

type testServer struct {
	app     *fiber.App
	repo    repository.TicketRepository
	metrics *observability.Metrics
}

func newTestServer(t *testing.T, classifier service.Classifier) *testServer {
	t.Helper()
	ctx := context.Background()
	lite, err := persistence.NewSQLite(ctx, filepath.Join(t.TempDir(), "http-test.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(lite.Close)
	require.NoError(t, persistence.RunSQLiteMigrations(ctx, lite.DB, zap.NewNop()))

	repo := repository.NewSQLiteTicketRepository(lite.DB)
	dispatcher := events.NewInMemoryDispatcher(nil)
	metrics := observability.NewMetrics()

	app := fiber.New()
	apihttp.RegisterMiddlewares(app, zap.NewNop(), metrics, 5*time.Second)
	apihttp.RegisterRoutes(app, apihttp.RouteConfig{
		Health: handlers.NewHealthHandler("ticket-triage", "test", map[string]handlers.Pinger{"sqlite": lite}),
		Tickets: handlers.NewTicketsHandler(service.NewTicketService(service.TicketDependencies{
			TicketRepo: repo,
			Dispatcher: dispatcher,
		})),
		Triage: handlers.NewTriageHandler(
			service.NewTriageService(service.TriageDependencies{Classifier: classifier, Dispatcher: dispatcher}),
			service.NewStatsService(service.StatsDependencies{Reader: repo}),
		),
		Metrics: metrics,
	})
	return &testServer{app: app, repo: repo, metrics: metrics}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func TestClassifyRequiresDescription(t *testing.T) {
	classifier := &countingClassifier{}
	srv := newTestServer(t, classifier)

	for _, body := range []any{nil, map[string]any{}, map[string]any{"description": ""}, map[string]any{"description": "   "}} {
		status, raw := srv.do(t, http.MethodPost, "/tickets/classify", body)
		require.Equal(t, http.StatusBadRequest, status, string(raw))
		env := decode[errorEnvelope](t, raw)
		assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
		assert.Equal(t, "description required", env.Error.Message)
	}

	status, _ := srv.do(t, http.MethodPost, "/tickets/classify", `{"description": 42}`)
	assert.Equal(t, http.StatusBadRequest, status)

	assert.Zero(t, classifier.calls)
}

func TestClassifyReturnsSuggestion(t *testing.T) {
	technical := domain.TicketCategoryTechnical
	srv := newTestServer(t, &countingClassifier{result: domain.ClassificationResult{Category: &technical}})

	status, raw := srv.do(t, http.MethodPost, "/tickets/classify", map[string]any{"description": "500 errors on login"})
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"suggested_category":"technical","suggested_priority":null}`, string(raw))
}

func TestClassifyWithoutCredentialReturnsNulls(t *testing.T) {
	gateway := classification.NewGateway(config.ClassifierConfig{Provider: config.ProviderAnthropic}, nil)
	srv := newTestServer(t, gateway)

	status, raw := srv.do(t, http.MethodPost, "/tickets/classify", map[string]any{"description": "refund please"})
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"suggested_category":null,"suggested_priority":null}`, string(raw))
}

func TestTicketLifecycle(t *testing.T) {
	srv := newTestServer(t, &countingClassifier{})

	status, raw := srv.do(t, http.MethodPost, "/tickets", map[string]any{
		"title":       "Charged twice",
		"description": "My card was billed two times",
		"category":    "billing",
		"priority":    "high",
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	created := decode[map[string]any](t, raw)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "open", created["status"])

	status, raw = srv.do(t, http.MethodGet, "/tickets/"+id, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Charged twice", decode[map[string]any](t, raw)["title"])

	status, raw = srv.do(t, http.MethodPatch, "/tickets/"+id, map[string]any{"status": "resolved"})
	require.Equal(t, http.StatusOK, status, string(raw))
	updated := decode[map[string]any](t, raw)
	assert.Equal(t, "resolved", updated["status"])
	assert.Equal(t, "high", updated["priority"])

	status, raw = srv.do(t, http.MethodPatch, "/tickets/"+id, map[string]any{"priority": "urgent"})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, decode[errorEnvelope](t, raw).Error.Details, "priority")

	status, _ = srv.do(t, http.MethodGet, "/tickets/00000000-0000-0000-0000-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = srv.do(t, http.MethodGet, "/tickets/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCreateTicketValidationEnvelope(t *testing.T) {
	srv := newTestServer(t, &countingClassifier{})

	status, raw := srv.do(t, http.MethodPost, "/tickets", map[string]any{"title": "x", "category": "nope"})
	require.Equal(t, http.StatusBadRequest, status)
	env := decode[errorEnvelope](t, raw)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	assert.Contains(t, env.Error.Details, "description")
	assert.Contains(t, env.Error.Details, "category")
	assert.Contains(t, env.Error.Details, "priority")
}

func TestListTickets(t *testing.T) {
	srv := newTestServer(t, &countingClassifier{})
	for _, body := range []map[string]any{
		{"title": "Invoice", "description": "wrong amount", "category": "billing", "priority": "low"},
		{"title": "Outage", "description": "site down", "category": "technical", "priority": "critical"},
	} {
		status, raw := srv.do(t, http.MethodPost, "/tickets", body)
		require.Equal(t, http.StatusCreated, status, string(raw))
	}

	status, raw := srv.do(t, http.MethodGet, "/tickets", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]map[string]any](t, raw), 2)

	status, raw = srv.do(t, http.MethodGet, "/tickets?category=technical&search=DOWN", nil)
	require.Equal(t, http.StatusOK, status)
	items := decode[[]map[string]any](t, raw)
	require.Len(t, items, 1)
	assert.Equal(t, "Outage", items[0]["title"])

	status, raw = srv.do(t, http.MethodGet, "/tickets?status=closed", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "[]", strings.TrimSpace(string(raw)))

	status, _ = srv.do(t, http.MethodGet, "/tickets?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestStatsEndpoint(t *testing.T) {
	srv := newTestServer(t, &countingClassifier{})

	status, raw := srv.do(t, http.MethodGet, "/tickets/stats", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{
		"total_tickets": 0,
		"open_tickets": 0,
		"avg_tickets_per_day": 0,
		"priority_breakdown": {"low": 0, "medium": 0, "high": 0, "critical": 0},
		"category_breakdown": {"billing": 0, "technical": 0, "account": 0, "general": 0}
	}`, string(raw))

	require.NoError(t, srv.repo.Create(context.Background(), &domain.Ticket{
		Title: "t", Description: "d", Category: domain.TicketCategoryGeneral,
		Priority: domain.TicketPriorityMedium, Status: domain.TicketStatusOpen,
	}))

	status, raw = srv.do(t, http.MethodGet, "/tickets/stats", nil)
	require.Equal(t, http.StatusOK, status)
	stats := decode[map[string]any](t, raw)
	assert.EqualValues(t, 1, stats["total_tickets"])
	assert.EqualValues(t, 1, stats["open_tickets"])
	assert.EqualValues(t, 1.0, stats["avg_tickets_per_day"])
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, &countingClassifier{})

	status, _ := srv.do(t, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, status)

	status, raw := srv.do(t, http.MethodGet, "/health/ready", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), `"sqlite":"ok"`)

	status, raw = srv.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), "ticket_triage_http_requests_total")
}
