package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zamstay/zamstay/internal/property/domain"
	"github.com/zamstay/zamstay/internal/property/repository"
	"github.com/zamstay/zamstay/pkg/money"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Property{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, node
}

func validRequest(node *snowflake.Node) domain.CreatePropertyRequest {
	return domain.CreatePropertyRequest{
		OwnerID:       node.Generate().String(),
		Title:         "Modern Apartment in Kabulonga",
		Type:          domain.TypeApartment,
		City:          "Lusaka",
		Area:          "Kabulonga",
		Bedrooms:      2,
		Bathrooms:     2,
		MaxGuests:     4,
		PricePerNight: money.Money{Currency: "ZMW", Amount: 1450},
		Amenities:     []string{"wifi", "parking"},
	}
}

func TestCreateProperty_GeneratesSlug(t *testing.T) {
	svc, node := newTestService(t)

	property, err := svc.Create(context.Background(), validRequest(node))
	require.NoError(t, err)

	assert.Equal(t, "modern-apartment-in-kabulonga", property.Slug)
	assert.True(t, property.IsActive)
	assert.False(t, property.IsVerified)

	bySlug, err := svc.GetBySlug(context.Background(), property.Slug)
	require.NoError(t, err)
	assert.Equal(t, property.ID, bySlug.ID)
}

func TestCreateProperty_SlugCollisionGetsSuffix(t *testing.T) {
	svc, node := newTestService(t)

	first, err := svc.Create(context.Background(), validRequest(node))
	require.NoError(t, err)

	second, err := svc.Create(context.Background(), validRequest(node))
	require.NoError(t, err)

	assert.NotEqual(t, first.Slug, second.Slug)
	assert.Contains(t, second.Slug, "modern-apartment-in-kabulonga-")
}

func TestCreateProperty_Validation(t *testing.T) {
	svc, node := newTestService(t)

	cases := []struct {
		name    string
		mutate  func(*domain.CreatePropertyRequest)
		wantErr error
	}{
		{"missing owner", func(r *domain.CreatePropertyRequest) { r.OwnerID = "" }, domain.ErrInvalidOwner},
		{"blank title", func(r *domain.CreatePropertyRequest) { r.Title = "   " }, domain.ErrInvalidTitle},
		{"unknown type", func(r *domain.CreatePropertyRequest) { r.Type = "castle" }, domain.ErrInvalidType},
		{"blank city", func(r *domain.CreatePropertyRequest) { r.City = "" }, domain.ErrInvalidCity},
		{"zero capacity", func(r *domain.CreatePropertyRequest) { r.MaxGuests = 0 }, domain.ErrInvalidCapacity},
		{"zero price", func(r *domain.CreatePropertyRequest) { r.PricePerNight.Amount = 0 }, domain.ErrInvalidPrice},
		{"missing currency", func(r *domain.CreatePropertyRequest) { r.PricePerNight.Currency = "" }, domain.ErrInvalidPrice},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest(node)
			tc.mutate(&req)
			_, err := svc.Create(context.Background(), req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestSetVerifiedAndActive(t *testing.T) {
	svc, node := newTestService(t)

	property, err := svc.Create(context.Background(), validRequest(node))
	require.NoError(t, err)

	verified, err := svc.SetVerified(context.Background(), property.ID.String(), true)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)

	deactivated, err := svc.SetActive(context.Background(), property.ID.String(), false)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	_, err = svc.SetVerified(context.Background(), node.Generate().String(), true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListProperties_Filters(t *testing.T) {
	svc, node := newTestService(t)
	owner := node.Generate().String()

	seed := func(title, city string, nightly int64, guests int) {
		_, err := svc.Create(context.Background(), domain.CreatePropertyRequest{
			OwnerID:       owner,
			Title:         title,
			Type:          domain.TypeLodge,
			City:          city,
			MaxGuests:     guests,
			PricePerNight: money.Money{Currency: "ZMW", Amount: nightly},
		})
		require.NoError(t, err)
	}
	seed("Lusaka Family Home", "Lusaka", 1450, 4)
	seed("Livingstone Lodge", "Livingstone", 980, 6)
	seed("Kitwe Guesthouse Stay", "Kitwe", 520, 2)

	byCity, err := svc.List(context.Background(), domain.ListPropertyRequest{City: "Livingstone"})
	require.NoError(t, err)
	require.Len(t, byCity.Properties, 1)
	assert.Equal(t, "Livingstone Lodge", byCity.Properties[0].Title)

	byPrice, err := svc.List(context.Background(), domain.ListPropertyRequest{MaxNightly: 1000})
	require.NoError(t, err)
	assert.Len(t, byPrice.Properties, 2)

	byGuests, err := svc.List(context.Background(), domain.ListPropertyRequest{Guests: 5})
	require.NoError(t, err)
	require.Len(t, byGuests.Properties, 1)
	assert.Equal(t, "Livingstone Lodge", byGuests.Properties[0].Title)
}

func TestGetByID_NotFound(t *testing.T) {
	svc, node := newTestService(t)

	_, err := svc.GetByID(context.Background(), node.Generate().String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetBySlug(context.Background(), "missing-slug")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
