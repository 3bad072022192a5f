// Package happyfox migrates tickets from the HappyFox API. It is
// ticket-centric with numbered page segments: each of the open and closed
// status partitions is walked page by page until the mapper reports an
// empty packet.
package happyfox

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

const displayName = "HappyFox"

// partitions are the ticket status partitions fetched per run.
var partitions = []string{"open", "closed"}

// Fetcher implements provider.Provider for HappyFox.
type Fetcher struct {
	client  *api.Client
	mapper  *mapper
	staging *staging.Stores
	logger  *zap.Logger
}

// New creates the HappyFox fetcher. Auth is HTTP basic with the API key
// as user and the auth code as password.
func New(deps provider.Deps) *Fetcher {
	classifier := &api.Classifier{
		Module:   "happyfox.fetcher",
		Provider: displayName,
	}
	auth := api.BasicAuth{
		User:     deps.Config.Username,
		Password: deps.Config.Token,
	}

	return &Fetcher{
		client: api.NewClient(deps.Config.BaseURL, auth, classifier, deps.Logger),
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
	return model.ProviderTypeHappyFox
}

// DisplayName returns the provider name used in messages.
func (f *Fetcher) DisplayName() string {
	return displayName
}

// FetchTickets walks pages 0,1,2,… of each status partition. The mapper
// returns the packet's raw element count; zero is the no-tickets sentinel
// that ends the partition's loop.
func (f *Fetcher) FetchTickets(ctx context.Context) (int, error) {
	f.staging.Reset()
	f.logger.Info("ticket fetch started", zap.String("provider", "happyfox"))

	for _, partition := range partitions {
		for page := 0; ; page++ {
			endpoint := fmt.Sprintf("api/1.1/json/tickets/status/%s/page/%d/", partition, page)
			raw, err := f.client.Request(ctx, http.MethodGet, endpoint)
			if err != nil {
				return 0, err
			}

			n, err := f.mapper.mapTickets(ctx, raw)
			if err != nil {
				return 0, err
			}
			if n == 0 {
				break
			}
		}
	}

	count := f.staging.Tickets.Len()
	f.logger.Info("ticket fetch finished",
		zap.String("provider", "happyfox"),
		zap.Int("tickets", count),
	)
	return count, nil
}
