// Package provider defines the contract every help-desk integration
// implements. The provider set is fixed and small; dispatch happens over
// a closed switch in the migrate package, not a plugin registry.
package provider

import (
	"context"

	"go.uber.org/zap"

	"github.com/syncdesk/deskmigrate/internal/attachment"
	"github.com/syncdesk/deskmigrate/internal/model"
	"github.com/syncdesk/deskmigrate/internal/staging"
)

// Provider drives a complete ticket fetch for one help desk, populating
// the staging stores through its mapper.
type Provider interface {
	// Type returns the provider type identifier.
	Type() model.ProviderType

	// DisplayName returns the provider name used in messages.
	DisplayName() string

	// FetchTickets paginates the provider's endpoints and normalizes
	// every packet into the staging stores. It returns the number of
	// tickets staged.
	FetchTickets(ctx context.Context) (int, error)
}

// Deps bundles the collaborators a provider needs. All providers receive
// the same set.
type Deps struct {
	Config      model.RunConfig
	Range       model.DateRange
	Staging     *staging.Stores
	Attachments *attachment.Validator
	Logger      *zap.Logger
}
