package staging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncdesk/deskmigrate/internal/model"
)

func TestTicketsKeepInsertionOrder(t *testing.T) {
	st := NewStores()

	st.Tickets.Put(&Ticket{ID: "30", Subject: "third"})
	st.Tickets.Put(&Ticket{ID: "10", Subject: "first"})
	st.Tickets.Put(&Ticket{ID: "20", Subject: "second"})

	all := st.Tickets.All()
	require.Len(t, all, 3)
	assert.Equal(t, "30", all[0].ID)
	assert.Equal(t, "10", all[1].ID)
	assert.Equal(t, "20", all[2].ID)
}

func TestTicketsPutReplacesInPlace(t *testing.T) {
	st := NewStores()

	st.Tickets.Put(&Ticket{ID: "1", Subject: "old"})
	st.Tickets.Put(&Ticket{ID: "2", Subject: "other"})
	st.Tickets.Put(&Ticket{ID: "1", Subject: "new"})

	assert.Equal(t, 2, st.Tickets.Len())
	all := st.Tickets.All()
	assert.Equal(t, "new", all[0].Subject)
	assert.Equal(t, "1", all[0].ID)
}

func TestTicketsDrop(t *testing.T) {
	st := NewStores()
	st.Tickets.Put(&Ticket{ID: "1"})
	st.Tickets.Put(&Ticket{ID: "2"})

	st.Tickets.Drop("1")
	assert.False(t, st.Tickets.Has("1"))
	assert.Equal(t, 1, st.Tickets.Len())

	// Dropping an absent id is a no-op.
	st.Tickets.Drop("99")
	assert.Equal(t, 1, st.Tickets.Len())
}

func TestUsersFirstMappingWins(t *testing.T) {
	st := NewStores()

	st.Users.Put(model.User{ExternalID: "u1", Email: "first@acme.com", Role: model.RoleAgent})
	st.Users.Put(model.User{ExternalID: "u1", Email: "second@acme.com", Role: model.RoleCustomer})

	u, ok := st.Users.Get("u1")
	require.True(t, ok)
	assert.Equal(t, "first@acme.com", u.Email)
	assert.Equal(t, model.RoleAgent, u.Role)
}

func TestRepliesOrderAndReplacement(t *testing.T) {
	st := NewStores()

	st.Replies.Put(&Reply{ID: "r1", TicketID: "t1", Body: "event body"})
	st.Replies.Put(&Reply{ID: "r2", TicketID: "t1", Body: "second"})
	st.Replies.Put(&Reply{ID: "r1", TicketID: "t1", Body: "comment body"})

	replies := st.Replies.ForTicket("t1")
	require.Len(t, replies, 2)
	assert.Equal(t, "r1", replies[0].ID)
	assert.Equal(t, "comment body", replies[0].Body)
	assert.Equal(t, "r2", replies[1].ID)

	assert.Nil(t, st.Replies.ForTicket("absent"))
}

func TestHistoryAppendsPerTicket(t *testing.T) {
	st := NewStores()

	st.History.Append(model.HistoryItem{ExternalID: "h1", TicketID: "t1", Status: model.StatusOpen})
	st.History.Append(model.HistoryItem{ExternalID: "h2", TicketID: "t1", Status: model.StatusClosed})
	st.History.Append(model.HistoryItem{ExternalID: "h3", TicketID: "t2", Status: model.StatusOpen})

	require.Len(t, st.History.ForTicket("t1"), 2)
	assert.Equal(t, model.StatusClosed, st.History.ForTicket("t1")[1].Status)
	assert.Len(t, st.History.ForTicket("t2"), 1)
}

func TestAddAttachmentDeduplicatesByURL(t *testing.T) {
	st := NewStores()
	st.Tickets.Put(&Ticket{ID: "t1"})

	att := model.Attachment{URL: "https://files.acme.com/a.jpg", Filename: "a.jpg"}
	assert.True(t, st.AddAttachment("t1", "", att))
	assert.False(t, st.AddAttachment("t1", "", att))
	assert.Len(t, st.Attachments("t1", ""), 1)

	// The same URL on a reply is an independent scope.
	st.Replies.Put(&Reply{ID: "r1", TicketID: "t1"})
	assert.True(t, st.AddAttachment("t1", "r1", att))
	assert.Len(t, st.Attachments("t1", "r1"), 1)
}

func TestAddAttachmentUnknownTarget(t *testing.T) {
	st := NewStores()
	assert.False(t, st.AddAttachment("missing", "", model.Attachment{URL: "u"}))
	assert.False(t, st.AddAttachment("missing", "r", model.Attachment{URL: "u"}))
}

func TestAppendNote(t *testing.T) {
	st := NewStores()
	st.Tickets.Put(&Ticket{ID: "t1", Description: "body"})
	st.Replies.Put(&Reply{ID: "r1", TicketID: "t1", Body: "reply"})

	st.AppendNote("t1", "", `<br /><a href="u">f</a>`)
	st.AppendNote("t1", "r1", `<br /><a href="u2">g</a>`)

	assert.Equal(t, `body<br /><a href="u">f</a>`, st.Tickets.Get("t1").Description)
	assert.Equal(t, `reply<br /><a href="u2">g</a>`, st.Replies.Get("t1", "r1").Body)
}

func TestResetClearsEverything(t *testing.T) {
	st := NewStores()
	st.Tickets.Put(&Ticket{ID: "t1"})
	st.Users.Put(model.User{ExternalID: "u1"})
	st.Replies.Put(&Reply{ID: "r1", TicketID: "t1"})
	st.History.Append(model.HistoryItem{ExternalID: "h1", TicketID: "t1"})

	st.Reset()

	assert.Equal(t, 0, st.Tickets.Len())
	_, ok := st.Users.Get("u1")
	assert.False(t, ok)
	assert.Nil(t, st.Replies.ForTicket("t1"))
	assert.Nil(t, st.History.ForTicket("t1"))
}
