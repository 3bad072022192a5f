package assemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncdesk/deskmigrate/internal/model"
	"github.com/syncdesk/deskmigrate/internal/staging"
)

func TestAssembleBuildsFullAggregate(t *testing.T) {
	st := staging.NewStores()

	st.Users.Put(model.User{
		ExternalID: "a1", Email: "agent@acme.com",
		FirstName: "Avery", LastName: "Quinn", Role: model.RoleAgent,
	})
	st.Users.Put(model.User{
		ExternalID: "c1", Email: "customer@example.com",
		FirstName: "Casey", Role: model.RoleCustomer,
	})

	st.Tickets.Put(&staging.Ticket{
		ID:          "t1",
		Subject:     "Printer on fire",
		Description: "It started smoking.",
		CreatedAt:   "2023-01-10T10:00:00Z",
		UpdatedAt:   "2023-01-11T09:00:00Z",
		Source:      "email",
		AgentID:     "a1",
		CustomerID:  "c1",
		Attachments: []model.Attachment{{URL: "https://f/x.jpg", Filename: "x.jpg"}},
	})

	st.Replies.Put(&staging.Reply{
		ID: "r1", TicketID: "t1", UserID: "a1",
		Body: "On my way.", CreatedAt: "2023-01-10T11:00:00Z",
	})
	st.History.Append(model.HistoryItem{
		ExternalID: "h1", TicketID: "t1", UserID: "a1",
		Status: model.StatusClosed, Date: "2023-01-11T09:00:00Z",
	})

	tickets := Assemble(st)
	require.Len(t, tickets, 1)

	tk := tickets["t1"]
	assert.Equal(t, "Printer on fire", tk.Subject)
	require.NotNil(t, tk.Agent)
	assert.Equal(t, "agent@acme.com", tk.Agent.Email)
	require.NotNil(t, tk.Customer)
	assert.Equal(t, "customer@example.com", tk.Customer.Email)
	require.Len(t, tk.Attachments, 1)

	require.Len(t, tk.Replies, 1)
	reply := tk.Replies["r1"]
	assert.Equal(t, "On my way.", reply.Body)
	require.NotNil(t, reply.User)
	assert.Equal(t, "agent@acme.com", reply.User.Email)

	require.Len(t, tk.History, 1)
	assert.Equal(t, model.StatusClosed, tk.History[0].Status)
}

func TestAssembleSynthesizesMissingUsers(t *testing.T) {
	st := staging.NewStores()
	st.Tickets.Put(&staging.Ticket{ID: "t1", CustomerID: "88421"})

	tickets := Assemble(st)
	tk := tickets["t1"]

	require.NotNil(t, tk.Customer)
	assert.Equal(t, "88421", tk.Customer.ExternalID)
	assert.Equal(t, "88421@unknown.com", tk.Customer.Email)
	assert.Equal(t, model.RoleCustomer, tk.Customer.Role)
	assert.Nil(t, tk.Agent)
}

func TestAssembleTicketStoreIsAuthoritative(t *testing.T) {
	st := staging.NewStores()
	st.Tickets.Put(&staging.Ticket{ID: "t1"})

	// Orphaned rows for a ticket that was never staged.
	st.Replies.Put(&staging.Reply{ID: "r9", TicketID: "ghost"})
	st.History.Append(model.HistoryItem{ExternalID: "h9", TicketID: "ghost"})

	tickets := Assemble(st)
	require.Len(t, tickets, 1)
	_, ok := tickets["ghost"]
	assert.False(t, ok)
}

func TestAssembleOmitsEmptyCollections(t *testing.T) {
	st := staging.NewStores()
	st.Tickets.Put(&staging.Ticket{ID: "t1"})

	tk := Assemble(st)["t1"]
	assert.Nil(t, tk.Replies)
	assert.Nil(t, tk.History)
	assert.Nil(t, tk.Agent)
	assert.Nil(t, tk.Customer)
}

func TestAssembleDoesNotMutateStores(t *testing.T) {
	st := staging.NewStores()
	st.Tickets.Put(&staging.Ticket{ID: "t1", Subject: "before"})
	st.Replies.Put(&staging.Reply{ID: "r1", TicketID: "t1"})

	Assemble(st)

	assert.Equal(t, 1, st.Tickets.Len())
	assert.Equal(t, "before", st.Tickets.Get("t1").Subject)
	assert.Len(t, st.Replies.ForTicket("t1"), 1)
}
