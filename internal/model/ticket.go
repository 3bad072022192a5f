package model

// ProviderType identifies the source help-desk system of a ticket.
type ProviderType string

const (
	ProviderTypeZendesk   ProviderType = "zendesk"
	ProviderTypeHelpScout ProviderType = "helpscout"
	ProviderTypeHappyFox  ProviderType = "happyfox"
)

// Normalized ticket status constants used across all provider types.
const (
	StatusOpen       = "open"
	StatusProcessing = "processing"
	StatusHold       = "hold"
	StatusClosed     = "closed"
)

// Attachment is a single file reference attached to a ticket or reply.
// URL and Filename are stored percent-encoded so downstream fetchers can
// use them verbatim.
type Attachment struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// Ticket is the unified representation of a support ticket from any
// provider, fully assembled from the staging stores. It is built once per
// sync run and never mutated afterwards.
type Ticket struct {
	// ExternalID is the ticket's identifier within its provider,
	// unique per provider. It is the idempotency key against the
	// target store.
	ExternalID string `json:"external_id"`

	// Agent is the assigned staff member, or nil if unassigned.
	Agent *User `json:"agent,omitempty"`

	// Customer is the requesting end user, or nil when the provider
	// recorded none.
	Customer *User `json:"customer,omitempty"`

	// Source labels the channel or provider the ticket came from.
	Source string `json:"source"`

	Subject     string `json:"subject"`
	Description string `json:"description"`

	// CreatedAt and UpdatedAt keep the provider-native string form;
	// the core never reparses them into a canonical zone.
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`

	// Attachments on the ticket itself, in discovery order, or nil.
	Attachments []Attachment `json:"attachments,omitempty"`

	// Replies keyed by external reply id, or nil if none were recorded.
	Replies map[string]Reply `json:"replies,omitempty"`

	// History is the ordered list of status changes, or nil.
	History []HistoryItem `json:"history,omitempty"`
}
