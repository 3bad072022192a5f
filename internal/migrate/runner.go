// Package migrate wires the pipeline together and runs one migration:
// fetch and normalize into staging, assemble ticket aggregates, then
// reconcile them against the target store. A run is synchronous and
// single-threaded; rate limits, not fetch speed, bound its duration.
package migrate

import (
	"context"

	"go.uber.org/zap"

	"github.com/syncdesk/deskmigrate/internal/api"
	"github.com/syncdesk/deskmigrate/internal/assemble"
	"github.com/syncdesk/deskmigrate/internal/attachment"
	"github.com/syncdesk/deskmigrate/internal/importer"
	"github.com/syncdesk/deskmigrate/internal/model"
	"github.com/syncdesk/deskmigrate/internal/provider"
	"github.com/syncdesk/deskmigrate/internal/provider/happyfox"
	"github.com/syncdesk/deskmigrate/internal/provider/helpscout"
	"github.com/syncdesk/deskmigrate/internal/provider/zendesk"
	"github.com/syncdesk/deskmigrate/internal/staging"
)

// newProvider dispatches over the closed provider set.
func newProvider(deps provider.Deps) (provider.Provider, error) {
	switch model.ProviderType(deps.Config.Provider) {
	case model.ProviderTypeZendesk:
		return zendesk.New(deps), nil
	case model.ProviderTypeHelpScout:
		return helpscout.New(deps), nil
	case model.ProviderTypeHappyFox:
		return happyfox.New(deps), nil
	default:
		return nil, api.NotAvailable("migrate", deps.Config.Provider)
	}
}

// Runner executes one migration run against one provider.
type Runner struct {
	provider   provider.Provider
	staging    *staging.Stores
	reconciler *importer.Reconciler
	logger     *zap.Logger
}

// NewRunner builds the pipeline for the configured provider, resolving
// keyring-referenced credentials first.
func NewRunner(cfg model.RunConfig, target importer.TargetStore, logger *zap.Logger) (*Runner, error) {
	if err := cfg.ResolveToken(); err != nil {
		return nil, err
	}

	rng, err := cfg.DateRange()
	if err != nil {
		return nil, err
	}

	st := staging.NewStores()
	p, err := newProvider(provider.Deps{
		Config:      cfg,
		Range:       rng,
		Staging:     st,
		Attachments: attachment.New(),
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	first, last := model.SplitName(cfg.OperatorName)
	operator := model.User{
		Email:     cfg.OperatorEmail,
		FirstName: first,
		LastName:  last,
		Role:      model.RoleCustomer,
	}

	return &Runner{
		provider:   p,
		staging:    st,
		reconciler: importer.New(target, operator, p.DisplayName(), logger),
		logger:     logger,
	}, nil
}

// GetTickets clears the staging stores, fetches and normalizes every
// packet from the provider, and assembles the result into ticket
// aggregates keyed by external id.
func (r *Runner) GetTickets(ctx context.Context) (map[string]model.Ticket, error) {
	if _, err := r.provider.FetchTickets(ctx); err != nil {
		return nil, err
	}
	return assemble.Assemble(r.staging), nil
}

// Import reconciles assembled tickets against the target store.
func (r *Runner) Import(ctx context.Context, tickets map[string]model.Ticket) (importer.Stats, error) {
	return r.reconciler.Import(ctx, tickets)
}

// Run performs a complete migration: GetTickets then Import.
func (r *Runner) Run(ctx context.Context) (importer.Stats, error) {
	tickets, err := r.GetTickets(ctx)
	if err != nil {
		return importer.Stats{}, err
	}
	return r.Import(ctx, tickets)
}
