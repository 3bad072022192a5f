package model

import "strings"

// User roles within a ticket.
const (
	RoleAgent    = "agent"
	RoleCustomer = "customer"
)

// User is a person referenced by a ticket, reply, or history item.
// Users are deduplicated within a run by external id; the first mapping
// wins.
type User struct {
	// ExternalID is the user's identifier within the provider.
	ExternalID string `json:"external_id"`

	// Email is always present; when the provider supplies none it is
	// synthesized from the external id.
	Email string `json:"email"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	// Role is RoleAgent or RoleCustomer.
	Role string `json:"role"`
}

// SplitName splits a display name into first and last name at the first
// space. A name without a space becomes the first name only.
func SplitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if i := strings.Index(name, " "); i >= 0 {
		return name[:i], strings.TrimSpace(name[i+1:])
	}
	return name, ""
}

// SynthesizeEmail builds a placeholder address for a user whose provider
// record carries no email.
func SynthesizeEmail(externalID string) string {
	return externalID + "@unknown.com"
}
