package client

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/gymtrack/gymtrack-api/internal/audit"
	"github.com/gymtrack/gymtrack-api/internal/auth"
	domain "github.com/gymtrack/gymtrack-api/internal/domain/client"
	"github.com/gymtrack/gymtrack-api/internal/httperr"
	"github.com/gymtrack/gymtrack-api/internal/models"
)

type UpdateClientInput struct {
	Actor auth.Principal

	ClientID   uint
	Client     models.Client
	Contacts   []models.EmergencyContact
	Conditions []models.MedicalCondition
}

type UpdateClientWithRelations struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewUpdateClientWithRelations(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *UpdateClientWithRelations {
	return &UpdateClientWithRelations{
		repo:  repo,
		audit: audit,
	}
}

func (uc *UpdateClientWithRelations) Execute(
	ctx context.Context,
	in UpdateClientInput,
) (*models.Client, error) {

	existing, err := uc.repo.GetByID(ctx, in.ClientID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperr.ErrBusiness("client_not_found")
	}
	if err != nil {
		return nil, err
	}

	client := in.Client
	client.ID = existing.ID
	client.CreatedAt = existing.CreatedAt

	if err := uc.repo.UpdateWithRelations(
		ctx,
		&client,
		in.Contacts,
		in.Conditions,
	); err != nil {
		return nil, err
	}

	loaded, err := uc.repo.GetWithRelations(ctx, client.ID)
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ActorRole: in.Actor.Role,
		ActorID:   &in.Actor.ID,
		Action:    "client_updated",
		Entity:    "client",
		EntityID:  &loaded.ID,
	})

	return loaded, nil
}
