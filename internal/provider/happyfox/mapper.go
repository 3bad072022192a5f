package happyfox

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

// mapper normalizes HappyFox packets into the staging stores.
type mapper struct {
	staging     *staging.Stores
	attachments *attachment.Validator
	rng         model.DateRange
}

// mapTickets stages one partition page and returns the packet's raw
// element count. Zero elements is the sentinel that ends the partition
// loop, regardless of how many tickets survived the date filter. The
// governing timestamp is last_updated_at; start then end are checked.
func (m *mapper) mapTickets(ctx context.Context, raw []byte) (int, error) {
	var page ticketsPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return 0, fmt.Errorf("parsing tickets packet: %w", err)
	}

	for _, t := range page.Data {
		if ts := parseTime(t.LastUpdatedAt); !ts.IsZero() {
			if m.rng.BeforeStart(ts) || m.rng.AfterEnd(ts) {
				continue
			}
		}
		m.stageTicket(ctx, t)
	}

	return len(page.Data), nil
}

// stageTicket stages one ticket with its updates.
func (m *mapper) stageTicket(ctx context.Context, t ticket) {
	ticketID := strconv.FormatInt(t.ID, 10)

	source := t.Source
	if source == "" {
		source = "happyfox"
	}

	m.staging.Tickets.Put(&staging.Ticket{
		ID:          ticketID,
		Subject:     t.Subject,
		Description: t.Text,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.LastUpdatedAt,
		Status:      t.Status.Name,
		Source:      source,
		CustomerID:  m.stageUser(t.User, model.RoleCustomer),
		AgentID:     m.stageUser(t.AssignedTo, model.RoleAgent),
	})

	atts := make([]model.Attachment, 0, len(t.Attachments))
	for _, a := range t.Attachments {
		atts = append(atts, model.Attachment{URL: a.URL, Filename: a.Filename})
	}
	m.attachments.Map(ctx, atts, ticketID, "", m.staging)

	for _, u := range t.Updates {
		m.stageUpdate(ctx, ticketID, u)
	}
}

// stageUpdate stages one audit-trail entry as a reply and/or a history
// item.
func (m *mapper) stageUpdate(ctx context.Context, ticketID string, u update) {
	userID := m.stageUser(u.By, model.RoleAgent)

	if u.Message != nil {
		reply := &staging.Reply{
			ID:        strconv.FormatInt(u.ID, 10),
			TicketID:  ticketID,
			UserID:    userID,
			Body:      u.Message.Text,
			CreatedAt: u.Timestamp,
			Read:      true,
			Private:   u.Message.Private,
		}
		m.staging.Replies.Put(reply)

		atts := make([]model.Attachment, 0, len(u.Message.Attachments))
		for _, a := range u.Message.Attachments {
			atts = append(atts, model.Attachment{URL: a.URL, Filename: a.Filename})
		}
		m.attachments.Map(ctx, atts, ticketID, reply.ID, m.staging)
	}

	if u.StatusChange != nil {
		if status, ok := normalizeStatus(u.StatusChange.New); ok {
			externalID := strconv.FormatInt(u.ID, 10)
			if u.ID == 0 {
				externalID = model.HistoryExternalID(userID, u.Timestamp, status)
			}
			m.staging.History.Append(model.HistoryItem{
				ExternalID: externalID,
				TicketID:   ticketID,
				UserID:     userID,
				Status:     status,
				Date:       u.Timestamp,
			})
		}
	}
}

// stageUser records a user reference and returns their external id, or
// "" for a nil reference.
func (m *mapper) stageUser(u *hfUser, role string) string {
	if u == nil || u.ID == 0 {
		return ""
	}

	id := strconv.FormatInt(u.ID, 10)

	email := u.Email
	if email == "" {
		email = model.SynthesizeEmail(id)
	}

	first, last := model.SplitName(u.Name)
	m.staging.Users.Put(model.User{
		ExternalID: id,
		Email:      email,
		FirstName:  first,
		LastName:   last,
		Role:       role,
	})
	return id
}

// normalizeStatus maps HappyFox's status vocabulary to the fixed history
// status set. Unrecognized values yield no history entry.
func normalizeStatus(s string) (string, bool) {
	switch s {
	case "closed", "solved":
		return model.StatusClosed, true
	case "on hold", "hold":
		return model.StatusHold, true
	case "open", "active", "new":
		return model.StatusOpen, true
	case "pending":
		return model.StatusProcessing, true
	default:
		return "", false
	}
}

// timeLayouts are the timestamp formats HappyFox has been observed to
// emit.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// parseTime parses a HappyFox timestamp.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
