package repository

import (
	"context"
	"errors"

	"geo-attendance-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LocationRepository interface {
	WithTx(tx *gorm.DB) LocationRepository
	ListActiveByOrg(ctx context.Context, orgID uuid.UUID) ([]model.Location, error)
	GetByIDAndOrg(ctx context.Context, id, orgID uuid.UUID) (*model.Location, error)
	GetActiveByID(ctx context.Context, id uuid.UUID) (*model.Location, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Location, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Create(ctx context.Context, loc *model.Location) error
	Update(ctx context.Context, loc *model.Location) error
	Delete(ctx context.Context, id, orgID uuid.UUID) error
	FirstOrCreateOrganization(ctx context.Context, name string) (*model.Organization, error)
	UpsertByName(ctx context.Context, loc *model.Location) error
}

type locationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db}
}

func (r *locationRepository) WithTx(tx *gorm.DB) LocationRepository {
	return &locationRepository{tx}
}

func (r *locationRepository) ListActiveByOrg(ctx context.Context, orgID uuid.UUID) ([]model.Location, error) {
	var list []model.Location
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND is_active = ?", orgID, true).
		Order("name").
		Find(&list).Error
	return list, err
}

func (r *locationRepository) GetByIDAndOrg(ctx context.Context, id, orgID uuid.UUID) (*model.Location, error) {
	var loc model.Location
	err := r.db.WithContext(ctx).Where("id = ? AND organization_id = ?", id, orgID).First(&loc).Error
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *locationRepository) GetActiveByID(ctx context.Context, id uuid.UUID) (*model.Location, error) {
	var loc model.Location
	err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&loc).Error
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (r *locationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Location, error) {
	var loc model.Location
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&loc).Error
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// Exists also counts soft-deleted locations; offline records may reference
// a location removed after they were captured.
func (r *locationRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&model.Location{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *locationRepository) Create(ctx context.Context, loc *model.Location) error {
	return r.db.WithContext(ctx).Create(loc).Error
}

func (r *locationRepository) Update(ctx context.Context, loc *model.Location) error {
	return r.db.WithContext(ctx).Save(loc).Error
}

func (r *locationRepository) Delete(ctx context.Context, id, orgID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND organization_id = ?", id, orgID).Delete(&model.Location{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *locationRepository) FirstOrCreateOrganization(ctx context.Context, name string) (*model.Organization, error) {
	org := model.Organization{Name: name}
	err := r.db.WithContext(ctx).Where(model.Organization{Name: name}).FirstOrCreate(&org).Error
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// UpsertByName matches on (organization_id, name) and overwrites the rest.
func (r *locationRepository) UpsertByName(ctx context.Context, loc *model.Location) error {
	var existing model.Location
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND name = ?", loc.OrganizationID, loc.Name).
		First(&existing).Error
	switch {
	case err == nil:
		loc.ID = existing.ID
		loc.CreatedAt = existing.CreatedAt
		return r.db.WithContext(ctx).Save(loc).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return r.db.WithContext(ctx).Create(loc).Error
	default:
		return err
	}
}
