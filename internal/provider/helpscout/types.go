package helpscout

// conversationsPage is one page of the conversation listing. Pagination
// is by numeric page number; the page object declares how many pages and
// elements exist in total.
type conversationsPage struct {
	Embedded listEmbedded `json:"_embedded"`
	Page     pageInfo     `json:"page"`
}

type listEmbedded struct {
	Conversations []conversationSummary `json:"conversations"`
}

type pageInfo struct {
	Size          int `json:"size"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Number        int `json:"number"`
}

// conversationSummary carries just enough to fetch the full object.
type conversationSummary struct {
	ID int64 `json:"id"`
}

// conversation is the full conversation object with threads embedded.
type conversation struct {
	ID              int64                `json:"id"`
	Subject         string               `json:"subject"`
	Status          string               `json:"status"`
	CreatedAt       string               `json:"createdAt"`
	PrimaryCustomer *person              `json:"primaryCustomer"`
	Assignee        *person              `json:"assignee"`
	Source          source               `json:"source"`
	Embedded        conversationEmbedded `json:"_embedded"`
}

type source struct {
	Type string `json:"type"`
}

type conversationEmbedded struct {
	Threads []thread `json:"threads"`
}

// thread is one entry of a conversation: a customer message, a staff
// reply, or a private note. A thread may also carry the status the
// conversation was moved to by that action.
type thread struct {
	ID        int64          `json:"id"`
	Type      string         `json:"type"`
	Status    string         `json:"status"`
	Body      string         `json:"body"`
	CreatedAt string         `json:"createdAt"`
	CreatedBy *person        `json:"createdBy"`
	Embedded  threadEmbedded `json:"_embedded"`
}

type threadEmbedded struct {
	Attachments []hsAttachment `json:"attachments"`
}

type person struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first"`
	LastName  string `json:"last"`
	Email     string `json:"email"`
	Type      string `json:"type"`
}

type hsAttachment struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}
