package client

import (
	"context"

	"github.com/gymtrack/gymtrack-api/internal/models"
)

type Repository interface {
	// -------- Client --------
	GetByID(
		ctx context.Context,
		id uint,
	) (*models.Client, error)

	// GetWithRelations loads the client together with its emergency
	// contacts and medical conditions. The extra queries are explicit
	// here rather than hidden behind lazy loading.
	GetWithRelations(
		ctx context.Context,
		id uint,
	) (*models.Client, error)

	ListWithRelations(
		ctx context.Context,
	) ([]models.Client, error)

	ListByGym(
		ctx context.Context,
		gymID uint,
		page int,
		pageSize int,
	) ([]models.Client, int64, error)

	// -------- Nested writes --------

	// CreateWithRelations inserts the client and all child rows in one
	// transaction; a child failure rolls back the client row.
	CreateWithRelations(
		ctx context.Context,
		client *models.Client,
		contacts []models.EmergencyContact,
		conditions []models.MedicalCondition,
	) error

	// UpdateWithRelations saves the client and updates each child row by
	// its id, scoped under the parent. A child id that does not resolve
	// fails the whole transaction.
	UpdateWithRelations(
		ctx context.Context,
		client *models.Client,
		contacts []models.EmergencyContact,
		conditions []models.MedicalCondition,
	) error

	// -------- Cascade delete --------
	DeleteCascade(
		ctx context.Context,
		id uint,
	) error
}
