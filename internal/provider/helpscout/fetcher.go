// Package helpscout migrates tickets from the Help Scout Mailbox API. It
// is conversation-centric: a numbered listing endpoint yields summaries,
// and every conversation is then fetched in full, threads embedded, and
// normalized immediately rather than batched.
package helpscout

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
	displayName = "Help Scout"

	defaultBaseURL = "https://api.helpscout.net"
)

// Fetcher implements provider.Provider for Help Scout.
type Fetcher struct {
	client  *api.Client
	mapper  *mapper
	staging *staging.Stores
	logger  *zap.Logger
}

// New creates the Help Scout fetcher. Auth is a bearer token.
func New(deps provider.Deps) *Fetcher {
	baseURL := deps.Config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	classifier := &api.Classifier{
		Module:   "helpscout.fetcher",
		Provider: displayName,
	}

	return &Fetcher{
		client: api.NewClient(baseURL, api.Bearer(deps.Config.Token), classifier, deps.Logger),
		mapper: &mapper{
			staging:     deps.Staging,
			attachments: deps.Attachments,
			rng:         deps.Range,
		},
		staging: deps.Staging,
		logger:  deps.Logger,
	}
}

// Type returns the provider type identifier.
func (f *Fetcher) Type() model.ProviderType {
	return model.ProviderTypeHelpScout
}

// DisplayName returns the provider name used in messages.
func (f *Fetcher) DisplayName() string {
	return displayName
}

// FetchTickets walks the conversation listing page by page. The loop
// stops when the listing reports no elements at all or the current page
// number has reached the total page count.
func (f *Fetcher) FetchTickets(ctx context.Context) (int, error) {
	f.staging.Reset()
	f.logger.Info("ticket fetch started", zap.String("provider", "helpscout"))

	for page := 1; ; page++ {
		endpoint := fmt.Sprintf("v2/conversations?status=all&page=%d", page)
		raw, err := f.client.Request(ctx, http.MethodGet, endpoint)
		if err != nil {
			return 0, err
		}

		ids, info, err := f.mapper.mapListing(raw)
		if err != nil {
			return 0, err
		}

		if info.TotalElements == 0 {
			break
		}

		for _, id := range ids {
			if err := f.fetchConversation(ctx, id); err != nil {
				return 0, err
			}
		}

		if info.Number >= info.TotalPages {
			break
		}
	}

	count := f.staging.Tickets.Len()
	f.logger.Info("ticket fetch finished",
		zap.String("provider", "helpscout"),
		zap.Int("tickets", count),
	)
	return count, nil
}

// fetchConversation retrieves one full conversation with its threads and
// normalizes it immediately.
func (f *Fetcher) fetchConversation(ctx context.Context, id int64) error {
	endpoint := fmt.Sprintf("v2/conversations/%d?embed=threads", id)
	raw, err := f.client.Request(ctx, http.MethodGet, endpoint)
	if err != nil {
		return err
	}
	return f.mapper.mapConversation(ctx, raw)
}
