package models

// TicketListRequest carries the raw listing parameters as they arrive from the
// HTTP layer or the CLI. CompanyID and UserID come from the authenticated
// caller, everything else is optional.
type TicketListRequest struct {
	CompanyID uint `json:"companyId" form:"-"`
	UserID    uint `json:"userId" form:"-"`

	SearchParam        string `json:"searchParam,omitempty" form:"searchParam" binding:"omitempty,max=200"`
	PageNumber         string `json:"pageNumber,omitempty" form:"pageNumber"`
	Status             string `json:"status,omitempty" form:"status" binding:"omitempty,max=32"`
	Date               string `json:"date,omitempty" form:"date"`
	DateStart          string `json:"dateStart,omitempty" form:"dateStart"`
	DateEnd            string `json:"dateEnd,omitempty" form:"dateEnd"`
	UpdatedAt          string `json:"updatedAt,omitempty" form:"updatedAt"`
	ShowAll            string `json:"showAll,omitempty" form:"showAll"`
	WithUnreadMessages string `json:"withUnreadMessages,omitempty" form:"withUnreadMessages"`
	IsGroup            string `json:"isGroup,omitempty" form:"isGroup"`

	QueueIDs    []uint `json:"queueIds,omitempty" form:"-"`
	Tags        []uint `json:"tags,omitempty" form:"-"`
	Users       []uint `json:"users,omitempty" form:"-"`
	Contacts    []uint `json:"contacts,omitempty" form:"-"`
	Connections []uint `json:"connections,omitempty" form:"-"`
}

// TicketListResponse is one page of the ticket listing.
type TicketListResponse struct {
	Tickets []Ticket `json:"tickets"`
	Count   int      `json:"count"`
	HasMore bool     `json:"hasMore"`
}
