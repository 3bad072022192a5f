// Package zendesk migrates tickets from the Zendesk Support API. It is
// ticket-centric and dual-endpoint: the incremental ticket and ticket
// event exports are both paginated by server-issued cursor URLs, and
// tickets that report comments are then fetched individually.
package zendesk

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/syncdesk/deskmigrate/internal/api"
	"github.com/syncdesk/deskmigrate/internal/model"
	"github.com/syncdesk/deskmigrate/internal/provider"
	"github.com/syncdesk/deskmigrate/internal/staging"
)

const (
	displayName = "Zendesk"

	// pageSize is the incremental export page size; a packet with
	// fewer elements ends the pagination loop.
	pageSize = 1000
)

// Fetcher implements provider.Provider for Zendesk.
type Fetcher struct {
	client  *api.Client
	mapper  *mapper
	staging *staging.Stores
	rng     model.DateRange
	logger  *zap.Logger
}

// New creates the Zendesk fetcher. The base URL is derived from the
// configured subdomain unless set explicitly; auth is HTTP basic with the
// agent email suffixed "/token" and the API token as password.
func New(deps provider.Deps) *Fetcher {
	baseURL := deps.Config.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.zendesk.com", deps.Config.Subdomain)
	}

	classifier := &api.Classifier{
		Module:         "zendesk.fetcher",
		Provider:       displayName,
		SubdomainBased: true,
	}
	auth := api.BasicAuth{
		User:     deps.Config.Username + "/token",
		Password: deps.Config.Token,
	}

	return &Fetcher{
		client: api.NewClient(baseURL, auth, classifier, deps.Logger),
		mapper: &mapper{
			staging:     deps.Staging,
			attachments: deps.Attachments,
			rng:         deps.Range,
		},
		staging: deps.Staging,
		rng:     deps.Range,
		logger:  deps.Logger,
	}
}

// Type returns the provider type identifier.
func (f *Fetcher) Type() model.ProviderType {
	return model.ProviderTypeZendesk
}

// DisplayName returns the provider name used in messages.
func (f *Fetcher) DisplayName() string {
	return displayName
}

// FetchTickets paginates the ticket export, then the ticket event export,
// then fetches comments for every staged ticket that reports any. The
// start bound of the date window is pushed into the export's start_time
// parameter; only the end bound is checked client-side.
func (f *Fetcher) FetchTickets(ctx context.Context) (int, error) {
	f.staging.Reset()
	f.logger.Info("ticket fetch started", zap.String("provider", "zendesk"))

	var start int64
	if f.rng.Start != nil {
		start = f.rng.Start.Unix()
	}

	ticketsEndpoint := fmt.Sprintf(
		"api/v2/incremental/tickets.json?include=users&start_time=%d", start,
	)
	if err := f.paginate(ctx, ticketsEndpoint, f.mapper.mapTickets); err != nil {
		return 0, err
	}

	eventsEndpoint := fmt.Sprintf(
		"api/v2/incremental/ticket_events.json?start_time=%d", start,
	)
	if err := f.paginate(ctx, eventsEndpoint, f.mapper.mapEvents); err != nil {
		return 0, err
	}

	if err := f.fetchComments(ctx); err != nil {
		return 0, err
	}

	count := f.staging.Tickets.Len()
	f.logger.Info("ticket fetch finished",
		zap.String("provider", "zendesk"),
		zap.Int("tickets", count),
	)
	return count, nil
}

// pageMapper normalizes one packet and reports the next cursor and the
// packet's element count.
type pageMapper func(ctx context.Context, raw []byte) (next string, count int, err error)

// paginate follows server-issued cursor URLs. The loop ends when the
// cursor is absent or repeats, or when a packet comes back short of the
// page size.
func (f *Fetcher) paginate(ctx context.Context, endpoint string, mapPage pageMapper) error {
	for {
		raw, err := f.client.Request(ctx, http.MethodGet, endpoint)
		if err != nil {
			return err
		}

		next, count, err := mapPage(ctx, raw)
		if err != nil {
			return err
		}

		if next == "" || next == endpoint || count < pageSize {
			return nil
		}
		endpoint = next
	}
}

// fetchComments retrieves the comment thread of every staged ticket with
// a positive comment count that is not deleted.
func (f *Fetcher) fetchComments(ctx context.Context) error {
	for _, t := range f.staging.Tickets.All() {
		if t.CommentCount <= 0 || t.Deleted {
			continue
		}

		endpoint := fmt.Sprintf("api/v2/tickets/%s/comments.json", t.ID)
		raw, err := f.client.Request(ctx, http.MethodGet, endpoint)
		if err != nil {
			return err
		}

		if err := f.mapper.mapComments(ctx, raw, t.ID); err != nil {
			return err
		}
	}
	return nil
}
