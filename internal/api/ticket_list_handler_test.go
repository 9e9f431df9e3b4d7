package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gotrs-io/gotrs-desk/internal/middleware"
	"github.com/gotrs-io/gotrs-desk/internal/models"
	"github.com/gotrs-io/gotrs-desk/internal/service"
	"github.com/gotrs-io/gotrs-desk/internal/ticketquery"
)

type stubLister struct {
	got  *models.TicketListRequest
	resp *models.TicketListResponse
	err  error
}

func (s *stubLister) ListTickets(ctx context.Context, req models.TicketListRequest) (*models.TicketListResponse, error) {
	s.got = &req
	if s.err != nil {
		return nil, s.err
	}
	if s.resp != nil {
		return s.resp, nil
	}
	return &models.TicketListResponse{Tickets: []models.Ticket{}}, nil
}

func handlerRouter(lister TicketLister, authenticated bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if authenticated {
		router.Use(func(c *gin.Context) {
			c.Set(middleware.ContextCompanyID, uint(3))
			c.Set(middleware.ContextUserID, uint(11))
			c.Next()
		})
	}
	router.GET("/api/v1/tickets", NewTicketHandler(lister).HandleListTickets)
	return router
}

func doGet(router http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, target, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHandleListTickets_BindsRequest(t *testing.T) {
	lister := &stubLister{resp: &models.TicketListResponse{
		Tickets: []models.Ticket{{ID: 5, Status: "open", Tags: []models.Tag{}}},
		Count:   41,
		HasMore: true,
	}}
	router := handlerRouter(lister, true)

	w := doGet(router, "/api/v1/tickets?searchParam=Silva&pageNumber=2&status=open&showAll=true"+
		"&queueIds[]=1&queueIds[]=2&tags=4,5&users=[7,9]&contacts=8&connections=6"+
		"&companyId=99&userId=99")

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, lister.got)
	got := *lister.got
	assert.Equal(t, uint(3), got.CompanyID, "tenant comes from the token")
	assert.Equal(t, uint(11), got.UserID)
	assert.Equal(t, "Silva", got.SearchParam)
	assert.Equal(t, "2", got.PageNumber)
	assert.Equal(t, "open", got.Status)
	assert.Equal(t, "true", got.ShowAll)
	assert.Equal(t, []uint{1, 2}, got.QueueIDs)
	assert.Equal(t, []uint{4, 5}, got.Tags)
	assert.Equal(t, []uint{7, 9}, got.Users)
	assert.Equal(t, []uint{8}, got.Contacts)
	assert.Equal(t, []uint{6}, got.Connections)

	var body struct {
		Tickets []models.Ticket `json:"tickets"`
		Count   int             `json:"count"`
		HasMore bool            `json:"hasMore"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 41, body.Count)
	assert.True(t, body.HasMore)
	require.Len(t, body.Tickets, 1)
	assert.Equal(t, uint(5), body.Tickets[0].ID)
}

func TestHandleListTickets_RequiresCaller(t *testing.T) {
	lister := &stubLister{}
	w := doGet(handlerRouter(lister, false), "/api/v1/tickets")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, lister.got)
}

func TestHandleListTickets_BadInput(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{"non numeric id", "tags=4,x", "tags"},
		{"malformed json list", "users=[7,", "users"},
		{"negative id", "queueIds=-1", "queueIds"},
		{"oversized status", "status=" + strings.Repeat("x", 40), "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lister := &stubLister{}
			w := doGet(handlerRouter(lister, true), "/api/v1/tickets?"+tt.query)

			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Nil(t, lister.got, "service is not called")

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Contains(t, body.Fields, tt.field)
		})
	}
}

func TestHandleListTickets_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		fields []string
	}{
		{"unknown caller", fmt.Errorf("resolve caller: %w", service.ErrCallerNotFound), http.StatusUnauthorized, nil},
		{
			"validation",
			&ticketquery.ValidationError{Fields: map[string]string{"date": "bad", "showAll": "bad"}},
			http.StatusBadRequest,
			[]string{"date", "showAll"},
		},
		{"client gone", fmt.Errorf("count tickets: %w", context.Canceled), 499, nil},
		{"listing timeout", fmt.Errorf("count tickets: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, nil},
		{"store down", fmt.Errorf("count tickets: %w", sql.ErrConnDone), http.StatusServiceUnavailable, nil},
		{"store failure", errors.New("boom"), http.StatusInternalServerError, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(handlerRouter(&stubLister{err: tt.err}, true), "/api/v1/tickets")
			assert.Equal(t, tt.status, w.Code)

			if tt.fields != nil {
				var body ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				for _, f := range tt.fields {
					assert.Contains(t, body.Fields, f)
				}
			}
		})
	}
}

func TestParseIDList(t *testing.T) {
	tests := []struct {
		name    string
		values  []string
		want    []uint
		wantErr bool
	}{
		{"empty", nil, nil, false},
		{"repeated", []string{"1", "2"}, []uint{1, 2}, false},
		{"comma separated", []string{"1, 2,,3"}, []uint{1, 2, 3}, false},
		{"json array", []string{"[7,9]"}, []uint{7, 9}, false},
		{"mixed", []string{"[1]", "2,3", " "}, []uint{1, 2, 3}, false},
		{"garbage", []string{"a"}, nil, true},
		{"bad json", []string{"[\"a\"]"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIDList(tt.values)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type fixedCaller struct{}

func (fixedCaller) Resolve(ctx context.Context, companyID, userID uint) (ticketquery.Caller, error) {
	return ticketquery.Caller{ID: userID, CompanyID: companyID, Profile: models.ProfileUser}, nil
}

type slowStore struct{}

func (slowStore) CountTickets(ctx context.Context, q ticketquery.Query) (int, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

func (slowStore) FindTickets(ctx context.Context, q ticketquery.Query, limit, offset int) ([]models.Ticket, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestHandleListTickets_QueryTimeoutIsGatewayTimeout(t *testing.T) {
	listing := service.NewTicketListService(fixedCaller{}, nil, slowStore{}, service.TicketListOptions{
		QueryTimeout: 20 * time.Millisecond,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	w := doGet(handlerRouter(listing, true), "/api/v1/tickets")
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Ticket listing timed out", body.Error)
}
