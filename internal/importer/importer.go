// Package importer reconciles assembled tickets against the target store.
// Every insert is preceded by an external-id lookup, which is what makes
// repeated runs idempotent even after a partial prior failure: a crash
// between a ticket and its replies leaves the store valid and
// re-importable.
package importer

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/syncdesk/deskmigrate/internal/api"
	"github.com/syncdesk/deskmigrate/internal/model"
)

// External-id kinds tagged in the target store.
const (
	KindTicket  = "ticket"
	KindUser    = "user"
	KindReply   = "reply"
	KindHistory = "history"
)

// The three canned summary messages; selection is an exact match on the
// run's outcome, not a free-form template.
const (
	msgNoTickets  = "No tickets were received from the provider."
	msgNothingNew = "All tickets have already been imported; nothing new to do."
	msgImported   = "Import finished."
)

// TargetStore is the boundary to the ticketing system being imported
// into. Internal ids are opaque strings; an empty id from
// FindByExternalID means "not present".
type TargetStore interface {
	FindByExternalID(ctx context.Context, kind, externalID string) (string, error)
	InsertUser(ctx context.Context, u model.User) (string, error)
	InsertTicket(ctx context.Context, customerID, agentID, subject, body, source string) (string, error)
	InsertReply(ctx context.Context, ticketID, body, authorID, date string, read, private bool) (string, error)
	InsertHistoryItem(ctx context.Context, ticketID, authorID, date, status string) (string, error)
	InsertAttachment(ctx context.Context, ticketID string, att model.Attachment) error
	TicketAttachmentURLs(ctx context.Context, ticketID string) ([]string, error)
	SetExternalID(ctx context.Context, kind, internalID, externalID string) error
}

// Stats summarizes one import run.
type Stats struct {
	TicketsReceived int
	TicketsImported int
	RepliesImported int
	Message         string
}

// Reconciler imports assembled tickets, inserting only what the target
// store is missing.
type Reconciler struct {
	store    TargetStore
	provider string
	operator model.User
	logger   *zap.Logger
}

// New creates a Reconciler. The operator identifies the person running
// the migration; tickets without a customer are attributed to them. The
// operator's email doubles as their external id so repeated runs reuse
// one record.
func New(store TargetStore, operator model.User, providerName string, logger *zap.Logger) *Reconciler {
	if operator.ExternalID == "" {
		operator.ExternalID = operator.Email
	}
	if operator.Role == "" {
		operator.Role = model.RoleCustomer
	}
	return &Reconciler{
		store:    store,
		provider: providerName,
		operator: operator,
		logger:   logger,
	}
}

// Import reconciles every ticket against the target store. Pre-existing
// tickets are not re-inserted, but their replies and history are still
// processed, since a previous run may have failed between the ticket and
// its children.
func (r *Reconciler) Import(ctx context.Context, tickets map[string]model.Ticket) (Stats, error) {
	stats := Stats{TicketsReceived: len(tickets)}

	for _, id := range sortedKeys(tickets) {
		if err := r.importTicket(ctx, tickets[id], &stats); err != nil {
			return stats, err
		}
	}

	switch {
	case stats.TicketsReceived == 0:
		stats.Message = msgNoTickets
	case stats.TicketsImported == 0:
		stats.Message = msgNothingNew
	default:
		stats.Message = msgImported
	}

	r.logger.Info("import finished",
		zap.Int("received", stats.TicketsReceived),
		zap.Int("tickets_imported", stats.TicketsImported),
		zap.Int("replies_imported", stats.RepliesImported),
	)
	return stats, nil
}

func (r *Reconciler) importTicket(ctx context.Context, t model.Ticket, stats *Stats) error {
	internalID, err := r.store.FindByExternalID(ctx, KindTicket, t.ExternalID)
	if err != nil {
		return api.ImportError(r.provider, err)
	}

	if internalID == "" {
		customer := r.operator
		if t.Customer != nil {
			customer = *t.Customer
		}
		customerID, err := r.resolveUser(ctx, customer)
		if err != nil {
			return err
		}

		agentID := ""
		if t.Agent != nil {
			agentID, err = r.resolveUser(ctx, *t.Agent)
			if err != nil {
				return err
			}
		}

		internalID, err = r.store.InsertTicket(ctx, customerID, agentID, t.Subject, t.Description, t.Source)
		if err != nil {
			return api.ImportError(r.provider, err)
		}
		if err := r.store.SetExternalID(ctx, KindTicket, internalID, t.ExternalID); err != nil {
			return api.ImportError(r.provider, err)
		}
		stats.TicketsImported++
	}

	urls, err := r.store.TicketAttachmentURLs(ctx, internalID)
	if err != nil {
		return api.ImportError(r.provider, err)
	}
	urls, err = r.importAttachments(ctx, internalID, t.Attachments, urls)
	if err != nil {
		return err
	}

	for _, replyID := range sortedKeys(t.Replies) {
		urls, err = r.importReply(ctx, internalID, t.Replies[replyID], urls, stats)
		if err != nil {
			return err
		}
	}

	for _, item := range t.History {
		if err := r.importHistoryItem(ctx, internalID, item); err != nil {
			return err
		}
	}

	return nil
}

func (r *Reconciler) importReply(
	ctx context.Context,
	ticketID string,
	reply model.Reply,
	urls []string,
	stats *Stats,
) ([]string, error) {
	existing, err := r.store.FindByExternalID(ctx, KindReply, reply.ExternalID)
	if err != nil {
		return urls, api.ImportError(r.provider, err)
	}
	if existing != "" {
		return urls, nil
	}

	author := model.User{
		ExternalID: reply.UserID,
		Email:      model.SynthesizeEmail(reply.UserID),
		Role:       model.RoleCustomer,
	}
	if reply.User != nil {
		author = *reply.User
	}
	authorID, err := r.resolveUser(ctx, author)
	if err != nil {
		return urls, err
	}

	internalID, err := r.store.InsertReply(ctx, ticketID, reply.Body, authorID, reply.CreatedAt, reply.Read, reply.Private)
	if err != nil {
		return urls, api.ImportError(r.provider, err)
	}
	if err := r.store.SetExternalID(ctx, KindReply, internalID, reply.ExternalID); err != nil {
		return urls, api.ImportError(r.provider, err)
	}
	stats.RepliesImported++

	return r.importAttachments(ctx, ticketID, reply.Attachments, urls)
}

func (r *Reconciler) importHistoryItem(ctx context.Context, ticketID string, item model.HistoryItem) error {
	existing, err := r.store.FindByExternalID(ctx, KindHistory, item.ExternalID)
	if err != nil {
		return api.ImportError(r.provider, err)
	}
	if existing != "" {
		return nil
	}

	authorID, err := r.resolveUser(ctx, model.User{
		ExternalID: item.UserID,
		Email:      model.SynthesizeEmail(item.UserID),
		Role:       model.RoleCustomer,
	})
	if err != nil {
		return err
	}

	internalID, err := r.store.InsertHistoryItem(ctx, ticketID, authorID, item.Date, item.Status)
	if err != nil {
		return api.ImportError(r.provider, err)
	}
	if err := r.store.SetExternalID(ctx, KindHistory, internalID, item.ExternalID); err != nil {
		return api.ImportError(r.provider, err)
	}
	return nil
}

// importAttachments inserts attachments not already present on the
// ticket. Presence is a filename-suffix match against the ticket's
// already-stored attachment URLs.
func (r *Reconciler) importAttachments(
	ctx context.Context,
	ticketID string,
	atts []model.Attachment,
	urls []string,
) ([]string, error) {
	for _, att := range atts {
		if hasFilenameSuffix(urls, att.Filename) {
			continue
		}
		if err := r.store.InsertAttachment(ctx, ticketID, att); err != nil {
			return urls, api.ImportError(r.provider, err)
		}
		urls = append(urls, att.URL)
	}
	return urls, nil
}

// resolveUser returns the internal id for a user, inserting them and
// recording the external-id mapping on first sight.
func (r *Reconciler) resolveUser(ctx context.Context, u model.User) (string, error) {
	internalID, err := r.store.FindByExternalID(ctx, KindUser, u.ExternalID)
	if err != nil {
		return "", api.ImportError(r.provider, err)
	}
	if internalID != "" {
		return internalID, nil
	}

	internalID, err = r.store.InsertUser(ctx, u)
	if err != nil {
		return "", api.ImportError(r.provider, err)
	}
	if err := r.store.SetExternalID(ctx, KindUser, internalID, u.ExternalID); err != nil {
		return "", api.ImportError(r.provider, err)
	}
	return internalID, nil
}

// hasFilenameSuffix reports whether any stored URL ends with the given
// filename.
func hasFilenameSuffix(urls []string, filename string) bool {
	if filename == "" {
		return false
	}
	for _, u := range urls {
		if strings.HasSuffix(u, filename) {
			return true
		}
	}
	return false
}

// sortedKeys returns a map's keys in sorted order for deterministic
// import sequencing.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
