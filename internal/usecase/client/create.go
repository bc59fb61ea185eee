package client

import (
	"context"

	"github.com/gymtrack/gymtrack-api/internal/audit"
	"github.com/gymtrack/gymtrack-api/internal/auth"
	domain "github.com/gymtrack/gymtrack-api/internal/domain/client"
	"github.com/gymtrack/gymtrack-api/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type CreateClientInput struct {
	Actor auth.Principal

	Client     models.Client
	Contacts   []models.EmergencyContact
	Conditions []models.MedicalCondition
}

// ======================================================
// USE CASE
// ======================================================

type CreateClientWithRelations struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewCreateClientWithRelations(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *CreateClientWithRelations {
	return &CreateClientWithRelations{
		repo:  repo,
		audit: audit,
	}
}

// Execute inserts the client and its contacts/conditions atomically and
// returns the client with relations loaded.
func (uc *CreateClientWithRelations) Execute(
	ctx context.Context,
	in CreateClientInput,
) (*models.Client, error) {

	client := in.Client

	if err := uc.repo.CreateWithRelations(
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
		Action:    "client_created",
		Entity:    "client",
		EntityID:  &loaded.ID,
	})

	return loaded, nil
}
