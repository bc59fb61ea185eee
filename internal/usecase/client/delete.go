package client

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/gymtrack/gymtrack-api/internal/audit"
	"github.com/gymtrack/gymtrack-api/internal/auth"
	domain "github.com/gymtrack/gymtrack-api/internal/domain/client"
	"github.com/gymtrack/gymtrack-api/internal/httperr"
)

type DeleteClientCascade struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewDeleteClientCascade(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *DeleteClientCascade {
	return &DeleteClientCascade{
		repo:  repo,
		audit: audit,
	}
}

// Execute removes the client together with its emergency contacts and
// medical conditions in one transaction.
func (uc *DeleteClientCascade) Execute(
	ctx context.Context,
	actor auth.Principal,
	clientID uint,
) error {

	if _, err := uc.repo.GetByID(ctx, clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return httperr.ErrBusiness("client_not_found")
		}
		return err
	}

	if err := uc.repo.DeleteCascade(ctx, clientID); err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		ActorRole: actor.Role,
		ActorID:   &actor.ID,
		Action:    "client_deleted",
		Entity:    "client",
		EntityID:  &clientID,
	})

	return nil
}
