package happyfox

// ticketsPage is one page of a status partition listing. An empty data
// array is the end-of-partition signal; there is no pagination metadata.
type ticketsPage struct {
	Data []ticket `json:"data"`
}

type ticket struct {
	ID            int64          `json:"id"`
	Subject       string         `json:"subject"`
	Text          string         `json:"first_message"`
	CreatedAt     string         `json:"created_at"`
	LastUpdatedAt string         `json:"last_updated_at"`
	Status        statusRef      `json:"status"`
	Source        string         `json:"source"`
	User          *hfUser        `json:"user"`
	AssignedTo    *hfUser        `json:"assigned_to"`
	Attachments   []hfAttachment `json:"attachments"`
	Updates       []update       `json:"updates"`
}

type statusRef struct {
	Name string `json:"name"`
}

type hfUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// update is one entry of a ticket's audit trail: a message, a status
// change, or both.
type update struct {
	ID           int64         `json:"id"`
	By           *hfUser       `json:"by"`
	Timestamp    string        `json:"timestamp"`
	Message      *message      `json:"message"`
	StatusChange *statusChange `json:"status_change"`
}

type message struct {
	Text        string         `json:"text"`
	Private     bool           `json:"private"`
	Attachments []hfAttachment `json:"attachments"`
}

type statusChange struct {
	New string `json:"new"`
}

type hfAttachment struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}
