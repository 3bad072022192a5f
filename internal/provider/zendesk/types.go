package zendesk

// ticketsPage is one packet from the incremental ticket export endpoint.
// The server hands back an absolute next_page cursor URL; a count below
// the page size marks the end of the stream.
type ticketsPage struct {
	Tickets  []ticket `json:"tickets"`
	Users    []user   `json:"users"`
	NextPage string   `json:"next_page"`
	Count    int      `json:"count"`
}

type ticket struct {
	ID           int64  `json:"id"`
	Subject      string `json:"subject"`
	Description  string `json:"description"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
	RequesterID  int64  `json:"requester_id"`
	AssigneeID   int64  `json:"assignee_id"`
	CommentCount int    `json:"comment_count"`
	Via          via    `json:"via"`
}

type via struct {
	Channel string `json:"channel"`
}

type user struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// eventsPage is one packet from the incremental ticket events endpoint.
type eventsPage struct {
	TicketEvents []ticketEvent `json:"ticket_events"`
	NextPage     string        `json:"next_page"`
	Count        int           `json:"count"`
}

// ticketEvent groups the child events of one audit. Children share the
// parent's event id and must be correlated before a reply can be
// committed.
type ticketEvent struct {
	ID          int64        `json:"id"`
	TicketID    int64        `json:"ticket_id"`
	UpdaterID   int64        `json:"updater_id"`
	Timestamp   int64        `json:"timestamp"`
	ChildEvents []childEvent `json:"child_events"`
}

type childEvent struct {
	ID          int64           `json:"id"`
	EventType   string          `json:"event_type"`
	Body        string          `json:"body"`
	Public      *bool           `json:"public"`
	Status      string          `json:"status"`
	RequesterID *int64          `json:"requester_id"`
	Attachments []attachmentRef `json:"attachments"`
}

// commentsPage is the response of the per-ticket comments endpoint.
type commentsPage struct {
	Comments []comment `json:"comments"`
}

type comment struct {
	ID          int64           `json:"id"`
	AuthorID    int64           `json:"author_id"`
	Body        string          `json:"body"`
	Public      bool            `json:"public"`
	CreatedAt   string          `json:"created_at"`
	Attachments []attachmentRef `json:"attachments"`
}

type attachmentRef struct {
	ContentURL string `json:"content_url"`
	FileName   string `json:"file_name"`
}
