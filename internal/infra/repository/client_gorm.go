package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "github.com/gymtrack/gymtrack-api/internal/domain/client"
	"github.com/gymtrack/gymtrack-api/internal/httperr"
	"github.com/gymtrack/gymtrack-api/internal/models"
)

type ClientGormRepository struct {
	db *gorm.DB
}

func NewClientGormRepository(db *gorm.DB) *ClientGormRepository {
	return &ClientGormRepository{db: db}
}

// --------------------------------------------------
// Reads
// --------------------------------------------------

func (r *ClientGormRepository) GetByID(
	ctx context.Context,
	id uint,
) (*models.Client, error) {

	var client models.Client
	if err := r.db.WithContext(ctx).First(&client, id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *ClientGormRepository) GetWithRelations(
	ctx context.Context,
	id uint,
) (*models.Client, error) {

	var client models.Client
	if err := r.db.WithContext(ctx).
		Preload("EmergencyContacts").
		Preload("MedicalConditions").
		First(&client, id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *ClientGormRepository) ListWithRelations(
	ctx context.Context,
) ([]models.Client, error) {

	var clients []models.Client
	if err := r.db.WithContext(ctx).
		Preload("EmergencyContacts").
		Preload("MedicalConditions").
		Order("id ASC").
		Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *ClientGormRepository) ListByGym(
	ctx context.Context,
	gymID uint,
	page int,
	pageSize int,
) ([]models.Client, int64, error) {

	q := r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("gym_id = ?", gymID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clients []models.Client
	if err := q.
		Order("id ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&clients).Error; err != nil {
		return nil, 0, err
	}

	return clients, total, nil
}

// --------------------------------------------------
// Nested writes
// --------------------------------------------------

func (r *ClientGormRepository) CreateWithRelations(
	ctx context.Context,
	client *models.Client,
	contacts []models.EmergencyContact,
	conditions []models.MedicalCondition,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(client).Error; err != nil {
			return err
		}

		for i := range contacts {
			contacts[i].ClientID = client.ID
			if err := tx.Create(&contacts[i]).Error; err != nil {
				return err
			}
		}

		for i := range conditions {
			conditions[i].ClientID = client.ID
			if err := tx.Create(&conditions[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (r *ClientGormRepository) UpdateWithRelations(
	ctx context.Context,
	client *models.Client,
	contacts []models.EmergencyContact,
	conditions []models.MedicalCondition,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(client).Error; err != nil {
			return err
		}

		// Child items must carry their own existing id; there is no
		// creation-on-update for new sub-items.
		for i := range contacts {
			var existing models.EmergencyContact
			err := tx.
				Where("id = ? AND client_id = ?", contacts[i].ID, client.ID).
				First(&existing).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return httperr.ErrBusiness("contact_not_found")
			}
			if err != nil {
				return err
			}

			contacts[i].ClientID = client.ID
			contacts[i].CreatedAt = existing.CreatedAt
			if err := tx.Save(&contacts[i]).Error; err != nil {
				return err
			}
		}

		for i := range conditions {
			var existing models.MedicalCondition
			err := tx.
				Where("id = ? AND client_id = ?", conditions[i].ID, client.ID).
				First(&existing).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return httperr.ErrBusiness("condition_not_found")
			}
			if err != nil {
				return err
			}

			conditions[i].ClientID = client.ID
			conditions[i].CreatedAt = existing.CreatedAt
			if err := tx.Save(&conditions[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// --------------------------------------------------
// Cascade delete
// --------------------------------------------------

func (r *ClientGormRepository) DeleteCascade(
	ctx context.Context,
	id uint,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("client_id = ?", id).Delete(&models.EmergencyContact{}).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", id).Delete(&models.MedicalCondition{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Client{}, id).Error
	})
}

// Compile-time check
var _ domain.Repository = (*ClientGormRepository)(nil)
