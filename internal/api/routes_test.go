package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotrs-io/gotrs-desk/internal/auth"
	"github.com/gotrs-io/gotrs-desk/internal/database/dbtest"
	"github.com/gotrs-io/gotrs-desk/internal/metrics"
	"github.com/gotrs-io/gotrs-desk/internal/middleware"
	"github.com/gotrs-io/gotrs-desk/internal/models"
	"github.com/gotrs-io/gotrs-desk/internal/repository"
	"github.com/gotrs-io/gotrs-desk/internal/service"
)

type failingPinger struct{}

func (failingPinger) PingContext(ctx context.Context) error { return errors.New("connection refused") }

type testServer struct {
	router *Router
	jwt    *auth.JWTManager
	fx     *dbtest.Fixture
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	qb := dbtest.NewSQLite(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()

	listing := service.NewTicketListService(
		service.NewUserIdentityResolver(repository.NewUserRepository(qb)),
		repository.NewTicketRelationRepository(qb),
		repository.NewTicketRepository(qb),
		service.TicketListOptions{Logger: logger, Metrics: metrics.NewListing(reg, "test")},
	)
	jwtManager := auth.NewJWTManager("router-test-secret", "gotrs-desk", time.Hour)

	router := NewRouter(RouterOptions{
		Tickets:     listing,
		Auth:        middleware.NewAuthMiddleware(jwtManager, nil),
		Database:    qb.DB(),
		Logger:      logger,
		Gatherer:    reg,
		HTTPMetrics: metrics.NewHTTP(reg, "test"),
	})
	return &testServer{router: router, jwt: jwtManager, fx: dbtest.NewFixture(t, qb)}
}

func (s *testServer) get(t *testing.T, target, token string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, target, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	s.router.ServeHTTP(w, req)
	return w
}

func TestRouter_ListTicketsEndToEnd(t *testing.T) {
	s := newTestServer(t)
	fx := s.fx

	acme := fx.Company("acme")
	globex := fx.Company("globex")
	queue := fx.Queue(acme, "support")
	agent := fx.User(acme, "ana", models.ProfileUser, queue)
	contact := fx.Contact(acme, "Maria Silva", "5511999")
	own := fx.Ticket(dbtest.Ticket{CompanyID: acme, ContactID: contact, QueueID: queue, UserID: agent, Status: "open"})
	fx.Ticket(dbtest.Ticket{CompanyID: acme, ContactID: contact, QueueID: queue, Status: "pending"})
	fx.Ticket(dbtest.Ticket{CompanyID: globex, ContactID: fx.Contact(globex, "x", "1"), Status: "open"})

	token, _, err := s.jwt.GenerateToken(agent, acme, models.ProfileUser)
	require.NoError(t, err)

	w := s.get(t, "/api/v1/tickets?showAll=true&searchParam=silva", token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body models.TicketListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.False(t, body.HasMore)
	require.Len(t, body.Tickets, 1)
	assert.Equal(t, own, body.Tickets[0].ID)
	require.NotNil(t, body.Tickets[0].Contact)
	assert.Equal(t, "Maria Silva", body.Tickets[0].Contact.Name)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_Unauthorized(t *testing.T) {
	s := newTestServer(t)
	acme := s.fx.Company("acme")

	t.Run("missing token", func(t *testing.T) {
		w := s.get(t, "/api/v1/tickets", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown user in a valid token", func(t *testing.T) {
		token, _, err := s.jwt.GenerateToken(999, acme, models.ProfileAdmin)
		require.NoError(t, err)
		w := s.get(t, "/api/v1/tickets", token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("foreign signature", func(t *testing.T) {
		other := auth.NewJWTManager("another-secret", "gotrs-desk", time.Hour)
		token, _, err := other.GenerateToken(1, acme, models.ProfileAdmin)
		require.NoError(t, err)
		w := s.get(t, "/api/v1/tickets", token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRouter_InvalidFilter(t *testing.T) {
	s := newTestServer(t)
	acme := s.fx.Company("acme")
	agent := s.fx.User(acme, "ana", models.ProfileUser)
	token, _, err := s.jwt.GenerateToken(agent, acme, models.ProfileUser)
	require.NoError(t, err)

	w := s.get(t, "/api/v1/tickets?date=yesterday&isGroup=maybe", token)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Fields, "date")
	assert.Contains(t, body.Fields, "isGroup")
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := s.get(t, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")

	s.get(t, "/api/v1/tickets", "")
	w = s.get(t, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `test_http_requests_total{method="GET",route="/api/v1/tickets",status="401"} 1`),
		w.Body.String())
}

func TestRouter_HealthReportsDatabaseFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(RouterOptions{
		Tickets:  &stubLister{},
		Auth:     middleware.NewAuthMiddleware(auth.NewJWTManager("s", "i", time.Hour), nil),
		Database: failingPinger{},
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
