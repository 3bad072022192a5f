// Package staging holds the run-scoped accumulation buffers the provider
// mappers write into while normalizing raw packets. Four independent
// stores exist per run (tickets, users, replies, history); all are cleared
// at the start of a fetch and consumed once by the assembler. Nothing here
// persists or is safe for concurrent use; a run is single-threaded.
package staging

import (
	"github.com/syncdesk/deskmigrate/internal/model"
)

// Ticket is a ticket under construction. Mappers mutate it freely until
// assembly.
type Ticket struct {
	ID          string
	Subject     string
	Description string
	CreatedAt   string
	UpdatedAt   string
	Status      string
	Source      string
	AgentID     string
	CustomerID  string

	// CommentCount and Deleted drive the Zendesk per-ticket comment
	// fetch decision.
	CommentCount int
	Deleted      bool

	Attachments []model.Attachment
}

// Reply is a reply under construction.
type Reply struct {
	ID          string
	TicketID    string
	UserID      string
	Body        string
	CreatedAt   string
	Read        bool
	Private     bool
	Attachments []model.Attachment
}

// Tickets stores tickets keyed by external id in insertion order. Its
// contents are authoritative for which tickets exist; a ticket referenced
// only by replies or history is never assembled.
type Tickets struct {
	order []string
	m     map[string]*Ticket
}

// Put inserts or replaces a ticket, keeping its original order slot.
func (s *Tickets) Put(t *Ticket) {
	if _, ok := s.m[t.ID]; !ok {
		s.order = append(s.order, t.ID)
	}
	s.m[t.ID] = t
}

// Get returns the ticket for id, or nil.
func (s *Tickets) Get(id string) *Ticket {
	return s.m[id]
}

// Has reports whether a ticket with id is staged.
func (s *Tickets) Has(id string) bool {
	_, ok := s.m[id]
	return ok
}

// Drop removes a ticket.
func (s *Tickets) Drop(id string) {
	if _, ok := s.m[id]; !ok {
		return
	}
	delete(s.m, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of staged tickets.
func (s *Tickets) Len() int {
	return len(s.order)
}

// All returns the staged tickets in insertion order.
func (s *Tickets) All() []*Ticket {
	out := make([]*Ticket, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.m[id])
	}
	return out
}

// Users stores users keyed by external id. The first mapping of an id
// wins; later occurrences are ignored.
type Users struct {
	m map[string]model.User
}

// Put records a user unless one with the same external id already exists.
func (s *Users) Put(u model.User) {
	if _, ok := s.m[u.ExternalID]; ok {
		return
	}
	s.m[u.ExternalID] = u
}

// Get returns the user for id.
func (s *Users) Get(id string) (model.User, bool) {
	u, ok := s.m[id]
	return u, ok
}

// replyList keeps one ticket's replies in insertion order.
type replyList struct {
	order []string
	m     map[string]*Reply
}

// Replies stores replies keyed by ticket id then reply id.
type Replies struct {
	m map[string]*replyList
}

// Put inserts or replaces a reply. A later Put with the same ids replaces
// the record in place; the Zendesk comment fetch refines replies first
// seen as ticket events.
func (s *Replies) Put(r *Reply) {
	list, ok := s.m[r.TicketID]
	if !ok {
		list = &replyList{m: make(map[string]*Reply)}
		s.m[r.TicketID] = list
	}
	if _, ok := list.m[r.ID]; !ok {
		list.order = append(list.order, r.ID)
	}
	list.m[r.ID] = r
}

// Get returns one reply, or nil.
func (s *Replies) Get(ticketID, replyID string) *Reply {
	list, ok := s.m[ticketID]
	if !ok {
		return nil
	}
	return list.m[replyID]
}

// ForTicket returns a ticket's replies in insertion order, or nil.
func (s *Replies) ForTicket(ticketID string) []*Reply {
	list, ok := s.m[ticketID]
	if !ok {
		return nil
	}
	out := make([]*Reply, 0, len(list.order))
	for _, id := range list.order {
		out = append(out, list.m[id])
	}
	return out
}

// History stores ordered status-change items per ticket.
type History struct {
	m map[string][]model.HistoryItem
}

// Append adds a history item to its ticket's list.
func (s *History) Append(item model.HistoryItem) {
	s.m[item.TicketID] = append(s.m[item.TicketID], item)
}

// ForTicket returns a ticket's history in append order, or nil.
func (s *History) ForTicket(ticketID string) []model.HistoryItem {
	return s.m[ticketID]
}

// Stores bundles the four staging sub-stores of one sync run.
type Stores struct {
	Tickets *Tickets
	Users   *Users
	Replies *Replies
	History *History
}

// NewStores creates empty staging stores.
func NewStores() *Stores {
	s := &Stores{}
	s.Reset()
	return s
}

// Reset clears all four sub-stores. Called at the start of every run.
func (s *Stores) Reset() {
	s.Tickets = &Tickets{m: make(map[string]*Ticket)}
	s.Users = &Users{m: make(map[string]model.User)}
	s.Replies = &Replies{m: make(map[string]*replyList)}
	s.History = &History{m: make(map[string][]model.HistoryItem)}
}

// Attachments returns the attachments currently stored on a ticket
// (replyID empty) or on one of its replies.
func (s *Stores) Attachments(ticketID, replyID string) []model.Attachment {
	if replyID == "" {
		if t := s.Tickets.Get(ticketID); t != nil {
			return t.Attachments
		}
		return nil
	}
	if r := s.Replies.Get(ticketID, replyID); r != nil {
		return r.Attachments
	}
	return nil
}

// AddAttachment stores an attachment on a ticket or reply, deduplicated
// by exact URL. It reports whether the attachment was added.
func (s *Stores) AddAttachment(ticketID, replyID string, att model.Attachment) bool {
	for _, existing := range s.Attachments(ticketID, replyID) {
		if existing.URL == att.URL {
			return false
		}
	}

	if replyID == "" {
		t := s.Tickets.Get(ticketID)
		if t == nil {
			return false
		}
		t.Attachments = append(t.Attachments, att)
		return true
	}

	r := s.Replies.Get(ticketID, replyID)
	if r == nil {
		return false
	}
	r.Attachments = append(r.Attachments, att)
	return true
}

// AppendNote appends an HTML fragment to the owning ticket's description
// (replyID empty) or reply's body. Used to keep references to attachments
// that failed validation.
func (s *Stores) AppendNote(ticketID, replyID, fragment string) {
	if replyID == "" {
		if t := s.Tickets.Get(ticketID); t != nil {
			t.Description += fragment
		}
		return
	}
	if r := s.Replies.Get(ticketID, replyID); r != nil {
		r.Body += fragment
	}
}
