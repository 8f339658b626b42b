package database

import (
	"context"
	"fmt"
	"os"

	"geo-attendance-backend/internal/model"
	"geo-attendance-backend/internal/repository"

	"gopkg.in/yaml.v3"
)

// Fixture is the seed file layout:
//
//	organizations:
//	  - name: Dinas Komunikasi dan Informatika
//	    locations:
//	      - name: Kantor Pusat
//	        latitude: -0.9416
//	        longitude: 100.37
//	        radius: 50
type Fixture struct {
	Organizations []OrganizationFixture `yaml:"organizations"`
}

type OrganizationFixture struct {
	Name      string            `yaml:"name"`
	Locations []LocationFixture `yaml:"locations"`
}

type LocationFixture struct {
	Name      string  `yaml:"name"`
	Address   string  `yaml:"address"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Radius    float64 `yaml:"radius"`
	Active    *bool   `yaml:"active"`
}

type SeedResult struct {
	Organizations int
	Locations     int
}

func LoadFixture(path string) (*Fixture, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFixture(b)
}

func ParseFixture(b []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	for i, org := range f.Organizations {
		if org.Name == "" {
			return nil, fmt.Errorf("organizations[%d]: name is required", i)
		}
		for j, loc := range org.Locations {
			if loc.Name == "" {
				return nil, fmt.Errorf("organizations[%d].locations[%d]: name is required", i, j)
			}
			if loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180 {
				return nil, fmt.Errorf("organizations[%d].locations[%d]: coordinates out of range", i, j)
			}
			if loc.Radius < 0 {
				return nil, fmt.Errorf("organizations[%d].locations[%d]: radius must not be negative", i, j)
			}
		}
	}
	return &f, nil
}

// Seed upserts organizations by name and their locations by
// (organization, name), so running it twice changes nothing.
func Seed(ctx context.Context, repo repository.LocationRepository, f *Fixture) (SeedResult, error) {
	var res SeedResult
	for _, of := range f.Organizations {
		// 1. Organisasi
		org, err := repo.FirstOrCreateOrganization(ctx, of.Name)
		if err != nil {
			return res, fmt.Errorf("organization %q: %w", of.Name, err)
		}
		res.Organizations++

		// 2. Lokasi kantor
		for _, lf := range of.Locations {
			radius := lf.Radius
			if radius == 0 {
				radius = model.DefaultRadius
			}
			active := true
			if lf.Active != nil {
				active = *lf.Active
			}
			loc := &model.Location{
				OrganizationID: org.ID,
				Name:           lf.Name,
				Address:        lf.Address,
				Latitude:       lf.Latitude,
				Longitude:      lf.Longitude,
				Radius:         radius,
				IsActive:       active,
			}
			if err := repo.UpsertByName(ctx, loc); err != nil {
				return res, fmt.Errorf("location %q: %w", lf.Name, err)
			}
			res.Locations++
		}
	}
	return res, nil
}
