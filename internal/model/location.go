package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultRadius is used when a location is created without a radius.
const DefaultRadius = 100

type Organization struct {
	ID        uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Name      string     `json:"name" gorm:"not null;uniqueIndex"`
	Locations []Location `json:"locations,omitempty" gorm:"foreignKey:OrganizationID"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// Location is a geofence owned by an organization.
type Location struct {
	ID             uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	OrganizationID uuid.UUID      `json:"organization_id" gorm:"type:char(36);not null;index"`
	Name           string         `json:"name" gorm:"not null"`
	Address        string         `json:"address"`
	Latitude       float64        `json:"latitude"`
	Longitude      float64        `json:"longitude"`
	Radius         float64        `json:"radius"` // meter
	IsActive       bool           `json:"is_active" gorm:"not null"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

func (l *Location) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// LocationPatch is a partial update; nil fields keep their prior value.
type LocationPatch struct {
	Name      *string  `json:"name" validate:"omitempty,min=1"`
	Address   *string  `json:"address"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" validate:"omitempty,longitude"`
	Radius    *float64 `json:"radius" validate:"omitempty,gt=0"`
	IsActive  *bool    `json:"is_active"`
}

// Apply merges the patch into l.
func (p LocationPatch) Apply(l *Location) {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Address != nil {
		l.Address = *p.Address
	}
	if p.Latitude != nil {
		l.Latitude = *p.Latitude
	}
	if p.Longitude != nil {
		l.Longitude = *p.Longitude
	}
	if p.Radius != nil {
		l.Radius = *p.Radius
	}
	if p.IsActive != nil {
		l.IsActive = *p.IsActive
	}
}

// IsEmpty reports whether the patch changes nothing.
func (p LocationPatch) IsEmpty() bool {
	return p == LocationPatch{}
}
