package model

import (
	"crypto/sha1"
	"encoding/hex"
)

// HistoryItem records one status change on a ticket.
type HistoryItem struct {
	// ExternalID is the provider's event id when it issues one, or a
	// synthesized id (see HistoryExternalID) otherwise. It is the
	// idempotency key for the history item.
	ExternalID string `json:"external_id"`

	// TicketID is the external id of the owning ticket.
	TicketID string `json:"ticket_id"`

	// UserID is the external id of the user who made the change.
	UserID string `json:"user_id"`

	// Status is one of the normalized Status* constants.
	Status string `json:"status"`

	// Date keeps the provider-native string form.
	Date string `json:"date"`
}

// HistoryExternalID synthesizes an idempotency key for providers that
// issue no native event id. Distinct events with identical user, timestamp,
// and status collide; this is a known limitation carried over from the
// original import behavior.
func HistoryExternalID(userID, date, status string) string {
	sum := sha1.Sum([]byte(userID + date + status))
	return hex.EncodeToString(sum[:])
}
