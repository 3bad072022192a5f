// Package assemble reduces the staging stores into immutable ticket
// aggregates. It is a pure function over staged data: no I/O, no
// mutation of the stores.
package assemble

import (
	"github.com/syncdesk/deskmigrate/internal/model"
	"github.com/syncdesk/deskmigrate/internal/staging"
)

// Assemble builds one fully-populated Ticket per staged ticket, keyed by
// external ticket id. The tickets store is authoritative: replies or
// history staged for an unknown ticket are ignored. Absent agents and
// customers are not an error.
func Assemble(st *staging.Stores) map[string]model.Ticket {
	out := make(map[string]model.Ticket, st.Tickets.Len())

	for _, t := range st.Tickets.All() {
		ticket := model.Ticket{
			ExternalID:  t.ID,
			Subject:     t.Subject,
			Description: t.Description,
			CreatedAt:   t.CreatedAt,
			UpdatedAt:   t.UpdatedAt,
			Source:      t.Source,
			Attachments: t.Attachments,
		}

		if t.AgentID != "" {
			agent := resolveUser(st, t.AgentID, model.RoleAgent)
			ticket.Agent = &agent
		}
		if t.CustomerID != "" {
			customer := resolveUser(st, t.CustomerID, model.RoleCustomer)
			ticket.Customer = &customer
		}

		if staged := st.Replies.ForTicket(t.ID); len(staged) > 0 {
			replies := make(map[string]model.Reply, len(staged))
			for _, r := range staged {
				reply := model.Reply{
					ExternalID:  r.ID,
					TicketID:    r.TicketID,
					UserID:      r.UserID,
					Body:        r.Body,
					CreatedAt:   r.CreatedAt,
					Read:        r.Read,
					Private:     r.Private,
					Attachments: r.Attachments,
				}
				if r.UserID != "" {
					author := resolveUser(st, r.UserID, model.RoleCustomer)
					reply.User = &author
				}
				replies[r.ID] = reply
			}
			ticket.Replies = replies
		}

		if history := st.History.ForTicket(t.ID); len(history) > 0 {
			ticket.History = history
		}

		out[t.ID] = ticket
	}

	return out
}

// resolveUser returns the staged user for id, or a minimal record with a
// synthesized email when the provider never described them.
func resolveUser(st *staging.Stores, id, role string) model.User {
	if u, ok := st.Users.Get(id); ok {
		return u
	}
	return model.User{
		ExternalID: id,
		Email:      model.SynthesizeEmail(id),
		Role:       role,
	}
}
