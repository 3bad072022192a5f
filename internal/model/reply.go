package model

// Reply is a single comment or message on a ticket.
type Reply struct {
	// ExternalID is the reply's identifier within the provider.
	ExternalID string `json:"external_id"`

	// TicketID is the external id of the owning ticket.
	TicketID string `json:"ticket_id"`

	// UserID is the external id of the author.
	UserID string `json:"user_id"`

	// User is the author record resolved during assembly, or nil when
	// the provider never described the author.
	User *User `json:"user,omitempty"`

	Body string `json:"body"`

	// CreatedAt keeps the provider-native string form.
	CreatedAt string `json:"created_at"`

	Read    bool `json:"read"`
	Private bool `json:"private"`

	// Attachments on this reply, in discovery order, or nil.
	Attachments []Attachment `json:"attachments,omitempty"`
}
