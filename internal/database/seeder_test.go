package database

import (
	"context"
	"testing"

	"geo-attendance-backend/config"
	"geo-attendance-backend/internal/model"
	"geo-attendance-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureYAML = `
organizations:
  - name: Dinas Komunikasi dan Informatika
    locations:
      - name: Kantor Pusat
        address: Jl. Sudirman 1
        latitude: -0.9416
        longitude: 100.37
        radius: 50
      - name: Gudang
        latitude: -0.95
        longitude: 100.38
        active: false
`

func TestParseFixture(t *testing.T) {
	f, err := ParseFixture([]byte(fixtureYAML))
	require.NoError(t, err)
	require.Len(t, f.Organizations, 1)
	assert.Len(t, f.Organizations[0].Locations, 2)

	_, err = ParseFixture([]byte("organizations:\n  - locations: []\n"))
	assert.Error(t, err)

	_, err = ParseFixture([]byte("organizations:\n  - name: X\n    locations:\n      - name: Y\n        latitude: 91\n"))
	assert.Error(t, err)
}

func TestSeed_Idempotent(t *testing.T) {
	db, err := config.OpenDB(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() { _ = config.Close(db) })

	repo := repository.NewLocationRepository(db)
	f, err := ParseFixture([]byte(fixtureYAML))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		res, err := Seed(context.Background(), repo, f)
		require.NoError(t, err)
		assert.Equal(t, SeedResult{Organizations: 1, Locations: 2}, res)
	}

	var count int64
	require.NoError(t, db.Model(&model.Location{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	var gudang model.Location
	require.NoError(t, db.Where("name = ?", "Gudang").First(&gudang).Error)
	assert.False(t, gudang.IsActive)
	assert.EqualValues(t, model.DefaultRadius, gudang.Radius)
}
