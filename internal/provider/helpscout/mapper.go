package helpscout

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/syncdesk/deskmigrate/internal/attachment"
	"github.com/syncdesk/deskmigrate/internal/model"
	"github.com/syncdesk/deskmigrate/internal/staging"
)

// mapper normalizes Help Scout packets into the staging stores.
type mapper struct {
	staging     *staging.Stores
	attachments *attachment.Validator
	rng         model.DateRange
}

// mapListing parses one listing page and returns the conversation ids it
// carries together with the pagination info.
func (m *mapper) mapListing(raw []byte) ([]int64, pageInfo, error) {
	var page conversationsPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, pageInfo{}, fmt.Errorf("parsing conversations page: %w", err)
	}

	ids := make([]int64, 0, len(page.Embedded.Conversations))
	for _, c := range page.Embedded.Conversations {
		ids = append(ids, c.ID)
	}
	return ids, page.Page, nil
}

// mapConversation stages one full conversation. The governing timestamp
// is createdAt; conversations outside the date window are skipped
// entirely. The earliest customer thread becomes the ticket description,
// every published thread becomes a reply, and threads that moved the
// conversation's status become history items.
func (m *mapper) mapConversation(ctx context.Context, raw []byte) error {
	var conv conversation
	if err := json.Unmarshal(raw, &conv); err != nil {
		return fmt.Errorf("parsing conversation: %w", err)
	}

	if ts := parseTime(conv.CreatedAt); !ts.IsZero() {
		if m.rng.BeforeStart(ts) || m.rng.AfterEnd(ts) {
			return nil
		}
	}

	ticketID := strconv.FormatInt(conv.ID, 10)

	source := conv.Source.Type
	if source == "" {
		source = "helpscout"
	}

	ticket := &staging.Ticket{
		ID:         ticketID,
		Subject:    conv.Subject,
		CreatedAt:  conv.CreatedAt,
		UpdatedAt:  conv.CreatedAt,
		Status:     conv.Status,
		Source:     source,
		CustomerID: m.stagePerson(conv.PrimaryCustomer, model.RoleCustomer),
		AgentID:    m.stagePerson(conv.Assignee, model.RoleAgent),
	}
	m.staging.Tickets.Put(ticket)

	descriptionSet := false
	for _, th := range conv.Embedded.Threads {
		m.mapThread(ctx, ticket, th, &descriptionSet)
	}

	return nil
}

// mapThread stages one thread of a conversation as description, reply,
// and/or history entry.
func (m *mapper) mapThread(ctx context.Context, ticket *staging.Ticket, th thread, descriptionSet *bool) {
	role := model.RoleCustomer
	if th.Type == "message" || th.Type == "note" {
		role = model.RoleAgent
	}
	userID := m.stagePerson(th.CreatedBy, role)

	atts := make([]model.Attachment, 0, len(th.Embedded.Attachments))
	for _, a := range th.Embedded.Attachments {
		atts = append(atts, model.Attachment{URL: a.URL, Filename: a.Filename})
	}

	switch th.Type {
	case "customer":
		if !*descriptionSet {
			// The opening customer message is the ticket body, not
			// a reply.
			ticket.Description = th.Body
			*descriptionSet = true
			m.attachments.Map(ctx, atts, ticket.ID, "", m.staging)
			break
		}
		m.stageReply(ctx, ticket.ID, th, userID, false, atts)
	case "message":
		m.stageReply(ctx, ticket.ID, th, userID, false, atts)
	case "note":
		m.stageReply(ctx, ticket.ID, th, userID, true, atts)
	}

	if th.Status != "" {
		if status, ok := normalizeStatus(th.Status); ok {
			m.staging.History.Append(model.HistoryItem{
				// Help Scout issues no event id for status moves.
				ExternalID: model.HistoryExternalID(userID, th.CreatedAt, status),
				TicketID:   ticket.ID,
				UserID:     userID,
				Status:     status,
				Date:       th.CreatedAt,
			})
		}
	}
}

// stageReply commits one thread as a reply with its attachments.
func (m *mapper) stageReply(
	ctx context.Context,
	ticketID string,
	th thread,
	userID string,
	private bool,
	atts []model.Attachment,
) {
	reply := &staging.Reply{
		ID:        strconv.FormatInt(th.ID, 10),
		TicketID:  ticketID,
		UserID:    userID,
		Body:      th.Body,
		CreatedAt: th.CreatedAt,
		Read:      true,
		Private:   private,
	}
	m.staging.Replies.Put(reply)
	m.attachments.Map(ctx, atts, ticketID, reply.ID, m.staging)
}

// stagePerson records a person reference as a user and returns their
// external id, or "" for a nil reference.
func (m *mapper) stagePerson(p *person, role string) string {
	if p == nil || p.ID == 0 {
		return ""
	}

	id := strconv.FormatInt(p.ID, 10)

	email := p.Email
	if email == "" {
		email = model.SynthesizeEmail(id)
	}

	if p.Type == "user" {
		role = model.RoleAgent
	}

	m.staging.Users.Put(model.User{
		ExternalID: id,
		Email:      email,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Role:       role,
	})
	return id
}

// normalizeStatus maps Help Scout's status vocabulary to the fixed
// history status set. Unrecognized values yield no history entry.
func normalizeStatus(s string) (string, bool) {
	switch s {
	case "closed":
		return model.StatusClosed, true
	case "active", "open":
		return model.StatusOpen, true
	case "pending":
		return model.StatusProcessing, true
	case "hold":
		return model.StatusHold, true
	default:
		return "", false
	}
}

// parseTime parses a Help Scout timestamp (RFC 3339, UTC).
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
