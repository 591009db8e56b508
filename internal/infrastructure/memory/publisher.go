package memory

import (
	"context"
	"strings"

	"github.com/baechuer/account-service/internal/application/account"
	"github.com/baechuer/account-service/internal/logger"
)

// NoopPublisher logs events instead of publishing them.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (p *NoopPublisher) PublishAccountRegistered(ctx context.Context, evt account.AccountRegisteredEvent) error {
	logger.WithCtx(ctx).Debug().
		Str("user_id", evt.UserID).
		Bool("require_activation", evt.RequireActivation).
		Msg("[noop-pub] account registered")
	return nil
}

func (p *NoopPublisher) PublishSettingsUpdated(ctx context.Context, evt account.SettingsUpdatedEvent) error {
	logger.WithCtx(ctx).Debug().
		Str("user_id", evt.UserID).
		Str("fields", strings.Join(evt.Fields, ",")).
		Msg("[noop-pub] settings updated")
	return nil
}
