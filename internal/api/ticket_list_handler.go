package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/gotrs-io/gotrs-desk/internal/database"
	"github.com/gotrs-io/gotrs-desk/internal/logging"
	"github.com/gotrs-io/gotrs-desk/internal/middleware"
	"github.com/gotrs-io/gotrs-desk/internal/models"
	"github.com/gotrs-io/gotrs-desk/internal/service"
	"github.com/gotrs-io/gotrs-desk/internal/ticketquery"
)

// TicketLister serves ticket listings.
type TicketLister interface {
	ListTickets(ctx context.Context, req models.TicketListRequest) (*models.TicketListResponse, error)
}

// TicketHandler exposes the ticket listing over HTTP.
type TicketHandler struct {
	tickets TicketLister
}

// NewTicketHandler creates a handler over tickets.
func NewTicketHandler(tickets TicketLister) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// idListParams are the repeated id parameters of the listing.
var idListParams = []struct {
	name string
	set  func(req *models.TicketListRequest, ids []uint)
}{
	{"queueIds", func(r *models.TicketListRequest, ids []uint) { r.QueueIDs = ids }},
	{"tags", func(r *models.TicketListRequest, ids []uint) { r.Tags = ids }},
	{"users", func(r *models.TicketListRequest, ids []uint) { r.Users = ids }},
	{"contacts", func(r *models.TicketListRequest, ids []uint) { r.Contacts = ids }},
	{"connections", func(r *models.TicketListRequest, ids []uint) { r.Connections = ids }},
}

// HandleListTickets handles GET /api/v1/tickets.
func (h *TicketHandler) HandleListTickets(c *gin.Context) {
	companyID, userID, ok := middleware.Caller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.TicketListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, bindErrorResponse(err))
		return
	}
	req.CompanyID = companyID
	req.UserID = userID

	invalid := map[string]string{}
	for _, p := range idListParams {
		ids, err := parseIDList(append(c.QueryArray(p.name), c.QueryArray(p.name+"[]")...))
		if err != nil {
			invalid[p.name] = err.Error()
			continue
		}
		p.set(&req, ids)
	}
	if len(invalid) > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid ticket filter", Fields: invalid})
		return
	}

	resp, err := h.tickets.ListTickets(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TicketHandler) writeError(c *gin.Context, err error) {
	var verr *ticketquery.ValidationError
	switch {
	case errors.Is(err, service.ErrCallerNotFound):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Caller not found"})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid ticket filter", Fields: verr.Fields})
	case database.IsCanceled(err):
		// client went away
		c.Status(499)
	case errors.Is(err, context.DeadlineExceeded):
		logging.FromContext(c.Request.Context()).Warn("ticket listing timed out", "error", err)
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: "Ticket listing timed out"})
	case database.IsConnectionError(err):
		logging.FromContext(c.Request.Context()).Error("ticket store unavailable", "error", err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Ticket store unavailable"})
	default:
		logging.FromContext(c.Request.Context()).Error("ticket listing failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list tickets"})
	}
}

func bindErrorResponse(err error) ErrorResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ErrorResponse{Error: "invalid query parameters"}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if len(name) > 0 {
			name = strings.ToLower(name[:1]) + name[1:]
		}
		fields[name] = fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
	}
	return ErrorResponse{Error: "invalid ticket filter", Fields: fields}
}

// parseIDList accepts repeated values, comma separated values and JSON arrays.
func parseIDList(values []string) ([]uint, error) {
	var ids []uint
	for _, raw := range values {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.HasPrefix(raw, "[") {
			var decoded []uint
			if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
				return nil, fmt.Errorf("%q is not a list of ids", raw)
			}
			ids = append(ids, decoded...)
			continue
		}
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseUint(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%q is not an id", part)
			}
			ids = append(ids, uint(id))
		}
	}
	return ids, nil
}
