package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"geo-attendance-backend/internal/apperror"
	"geo-attendance-backend/internal/geo"
	"geo-attendance-backend/internal/logger"
	"geo-attendance-backend/internal/model"
	"geo-attendance-backend/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultNearbyDistance bounds Nearby when the caller gives no limit.
const DefaultNearbyDistance = 5000

type CreateLocationInput struct {
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
	Radius    *float64
}

// NearbyLocation is a location with its rounded distance in meters.
type NearbyLocation struct {
	model.Location
	Distance int64 `json:"distance"`
}

// LocationValidation answers "would a check-in here be accepted?".
type LocationValidation struct {
	IsValid       bool    `json:"is_valid"`
	Distance      int64   `json:"distance"`
	AllowedRadius float64 `json:"allowed_radius"`
	LocationName  string  `json:"location_name"`
}

type LocationUsecase struct {
	repo repository.LocationRepository
}

func NewLocationUsecase(repo repository.LocationRepository) *LocationUsecase {
	return &LocationUsecase{repo: repo}
}

// List returns the organization's active locations.
func (u *LocationUsecase) List(ctx context.Context, orgID uuid.UUID) ([]model.Location, error) {
	list, err := u.repo.ListActiveByOrg(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	if list == nil {
		list = []model.Location{}
	}
	return list, nil
}

func (u *LocationUsecase) Get(ctx context.Context, orgID, id uuid.UUID) (*model.Location, error) {
	loc, err := u.repo.GetByIDAndOrg(ctx, id, orgID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrLocationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find location: %w", err)
	}
	return loc, nil
}

func (u *LocationUsecase) Create(ctx context.Context, orgID uuid.UUID, in CreateLocationInput) (*model.Location, error) {
	radius := float64(model.DefaultRadius)
	if in.Radius != nil {
		radius = *in.Radius
	}
	loc := &model.Location{
		OrganizationID: orgID,
		Name:           in.Name,
		Address:        in.Address,
		Latitude:       in.Latitude,
		Longitude:      in.Longitude,
		Radius:         radius,
		IsActive:       true,
	}
	if err := u.repo.Create(ctx, loc); err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}
	logger.Info("location created", zap.String("location_id", loc.ID.String()), zap.String("org_id", orgID.String()))
	return loc, nil
}

func (u *LocationUsecase) Update(ctx context.Context, orgID, id uuid.UUID, patch model.LocationPatch) (*model.Location, error) {
	if patch.IsEmpty() {
		return nil, apperror.Validation("No fields to update")
	}
	loc, err := u.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(loc)
	if err := u.repo.Update(ctx, loc); err != nil {
		return nil, fmt.Errorf("update location: %w", err)
	}
	return loc, nil
}

// Delete soft-deletes; records that reference the location keep resolving it.
func (u *LocationUsecase) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	err := u.repo.Delete(ctx, id, orgID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.ErrLocationNotFound
	}
	if err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	logger.Info("location deleted", zap.String("location_id", id.String()))
	return nil
}

// Nearby lists active locations whose rounded distance is within
// maxDistance meters, nearest first.
// A non-positive maxDistance means DefaultNearbyDistance.
func (u *LocationUsecase) Nearby(ctx context.Context, orgID uuid.UUID, lat, lon, maxDistance float64) ([]NearbyLocation, error) {
	if maxDistance <= 0 {
		maxDistance = DefaultNearbyDistance
	}
	list, err := u.repo.ListActiveByOrg(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}

	out := []NearbyLocation{}
	for _, l := range list {
		d := int64(math.Round(geo.Distance(lat, lon, l.Latitude, l.Longitude)))
		if float64(d) <= maxDistance {
			out = append(out, NearbyLocation{Location: l, Distance: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out, nil
}

// Validate reports the distance (rounded) and whether the unrounded
// distance is within the radius, exactly as CheckIn would decide it.
func (u *LocationUsecase) Validate(ctx context.Context, id uuid.UUID, lat, lon float64) (*LocationValidation, error) {
	loc, err := u.repo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrLocationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find location: %w", err)
	}
	d := geo.Distance(lat, lon, loc.Latitude, loc.Longitude)
	return &LocationValidation{
		IsValid:       d <= loc.Radius,
		Distance:      int64(math.Round(d)),
		AllowedRadius: loc.Radius,
		LocationName:  loc.Name,
	}, nil
}
