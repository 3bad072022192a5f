package zendesk

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

// mapper normalizes Zendesk packets into the staging stores.
type mapper struct {
	staging     *staging.Stores
	attachments *attachment.Validator
	rng         model.DateRange
}

// mapTickets stages one incremental ticket export packet. Side-loaded
// users are staged first so requester and assignee resolve during
// assembly. Tickets updated after the end bound are skipped; the start
// bound was already applied server-side via start_time.
func (m *mapper) mapTickets(ctx context.Context, raw []byte) (string, int, error) {
	var page ticketsPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return "", 0, fmt.Errorf("parsing tickets packet: %w", err)
	}

	for _, u := range page.Users {
		m.stageUser(u)
	}

	for _, t := range page.Tickets {
		if ts := parseTime(t.UpdatedAt); !ts.IsZero() && m.rng.AfterEnd(ts) {
			continue
		}

		source := t.Via.Channel
		if source == "" {
			source = "zendesk"
		}

		m.staging.Tickets.Put(&staging.Ticket{
			ID:           strconv.FormatInt(t.ID, 10),
			Subject:      t.Subject,
			Description:  t.Description,
			CreatedAt:    t.CreatedAt,
			UpdatedAt:    t.UpdatedAt,
			Status:       t.Status,
			Source:       source,
			AgentID:      formatID(t.AssigneeID),
			CustomerID:   formatID(t.RequesterID),
			CommentCount: t.CommentCount,
			Deleted:      t.Status == "deleted",
		})
	}

	return page.NextPage, page.Count, nil
}

// mapEvents stages one ticket event export packet. The child events of a
// ticket event share its event id and describe one audit: a comment, a
// status change, a requester assignment, or several of these at once. A
// reply is accumulated across all children and committed once fully
// assembled.
func (m *mapper) mapEvents(ctx context.Context, raw []byte) (string, int, error) {
	var page eventsPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return "", 0, fmt.Errorf("parsing ticket events packet: %w", err)
	}

	for _, ev := range page.TicketEvents {
		ts := time.Unix(ev.Timestamp, 0).UTC()
		if m.rng.AfterEnd(ts) {
			continue
		}

		ticketID := strconv.FormatInt(ev.TicketID, 10)
		userID := formatID(ev.UpdaterID)
		date := ts.Format(time.RFC3339)

		working := &staging.Reply{
			TicketID:  ticketID,
			UserID:    userID,
			CreatedAt: date,
			Read:      true,
		}
		var atts []model.Attachment
		hasComment := false

		for _, child := range ev.ChildEvents {
			switch child.EventType {
			case "Comment":
				hasComment = true
				working.ID = strconv.FormatInt(child.ID, 10)
				working.Body = child.Body
				if child.Public != nil {
					working.Private = !*child.Public
				}
				for _, ref := range child.Attachments {
					atts = append(atts, model.Attachment{
						URL:      ref.ContentURL,
						Filename: ref.FileName,
					})
				}
			case "Change":
				if child.Status != "" {
					if status, ok := normalizeStatus(child.Status); ok {
						m.staging.History.Append(model.HistoryItem{
							ExternalID: strconv.FormatInt(ev.ID, 10),
							TicketID:   ticketID,
							UserID:     userID,
							Status:     status,
							Date:       date,
						})
					}
				}
				if child.RequesterID != nil {
					if t := m.staging.Tickets.Get(ticketID); t != nil {
						t.CustomerID = formatID(*child.RequesterID)
					}
				}
			}
		}

		if hasComment {
			if working.ID == "" {
				working.ID = strconv.FormatInt(ev.ID, 10)
			}
			m.staging.Replies.Put(working)
			m.attachments.Map(ctx, atts, ticketID, working.ID, m.staging)
		}
	}

	return page.NextPage, page.Count, nil
}

// mapComments stages a ticket's full comment thread. Comments share ids
// with the Comment child events, so replies first seen as events are
// refined in place rather than duplicated.
func (m *mapper) mapComments(ctx context.Context, raw []byte, ticketID string) error {
	var page commentsPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return fmt.Errorf("parsing comments packet for ticket %s: %w", ticketID, err)
	}

	for _, c := range page.Comments {
		reply := &staging.Reply{
			ID:        strconv.FormatInt(c.ID, 10),
			TicketID:  ticketID,
			UserID:    formatID(c.AuthorID),
			Body:      c.Body,
			CreatedAt: c.CreatedAt,
			Read:      true,
			Private:   !c.Public,
		}

		// Carry over attachments already validated via the event path.
		if existing := m.staging.Replies.Get(ticketID, reply.ID); existing != nil {
			reply.Attachments = existing.Attachments
		}
		m.staging.Replies.Put(reply)

		atts := make([]model.Attachment, 0, len(c.Attachments))
		for _, ref := range c.Attachments {
			atts = append(atts, model.Attachment{
				URL:      ref.ContentURL,
				Filename: ref.FileName,
			})
		}
		m.attachments.Map(ctx, atts, ticketID, reply.ID, m.staging)
	}

	return nil
}

// stageUser records a side-loaded user; the first mapping of an id wins.
func (m *mapper) stageUser(u user) {
	id := strconv.FormatInt(u.ID, 10)

	email := u.Email
	if email == "" {
		email = model.SynthesizeEmail(id)
	}

	role := model.RoleCustomer
	if u.Role == "agent" || u.Role == "admin" {
		role = model.RoleAgent
	}

	first, last := model.SplitName(u.Name)
	m.staging.Users.Put(model.User{
		ExternalID: id,
		Email:      email,
		FirstName:  first,
		LastName:   last,
		Role:       role,
	})
}

// normalizeStatus maps Zendesk's status vocabulary to the fixed history
// status set. Unrecognized values yield no history entry.
func normalizeStatus(s string) (string, bool) {
	switch s {
	case "closed", "solved", "deleted":
		return model.StatusClosed, true
	case "hold":
		return model.StatusHold, true
	case "open":
		return model.StatusOpen, true
	case "pending":
		return model.StatusProcessing, true
	default:
		return "", false
	}
}

// formatID renders a numeric Zendesk id, mapping zero (absent) to "".
func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

// parseTime parses a Zendesk timestamp (RFC 3339).
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
