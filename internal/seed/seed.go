package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	bookingdomain "github.com/zamstay/zamstay/internal/booking/domain"
	propertydomain "github.com/zamstay/zamstay/internal/property/domain"
	"github.com/zamstay/zamstay/pkg/money"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const demoServiceFeePercent = 12

// EnsureDemoListings seeds a small set of listings and bookings so a
// fresh development install has something to browse. It is a no-op when
// any property already exists.
func EnsureDemoListings(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.WithContext(ctx).Model(&propertydomain.Property{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		ownerID := node.Generate()
		guestID := node.Generate()
		now := time.Now().UTC()

		properties := []*propertydomain.Property{
			{
				ID:            node.Generate(),
				OwnerID:       ownerID,
				Title:         "Modern Apartment in Kabulonga",
				Slug:          "modern-apartment-in-kabulonga",
				Description:   "Bright two-bedroom apartment with backup power and fibre internet.",
				Type:          propertydomain.TypeApartment,
				City:          "Lusaka",
				Area:          "Kabulonga",
				Bedrooms:      2,
				Bathrooms:     2,
				MaxGuests:     4,
				PricePerNight: money.Money{Currency: "ZMW", Amount: 1450},
				Amenities:     datatypes.NewJSONSlice([]string{"wifi", "parking", "backup_power"}),
				IsVerified:    true,
				IsActive:      true,
				CreatedAt:     now,
				UpdatedAt:     now,
			},
			{
				ID:            node.Generate(),
				OwnerID:       ownerID,
				Title:         "Riverside Lodge near Victoria Falls",
				Slug:          "riverside-lodge-near-victoria-falls",
				Description:   "Family lodge on the Zambezi, ten minutes from the falls.",
				Type:          propertydomain.TypeLodge,
				City:          "Livingstone",
				Area:          "Riverside",
				Bedrooms:      3,
				Bathrooms:     2,
				MaxGuests:     6,
				PricePerNight: money.Money{Currency: "ZMW", Amount: 980},
				Amenities:     datatypes.NewJSONSlice([]string{"wifi", "pool", "breakfast"}),
				IsVerified:    true,
				IsActive:      true,
				CreatedAt:     now,
				UpdatedAt:     now,
			},
			{
				ID:            node.Generate(),
				OwnerID:       node.Generate(),
				Title:         "Quiet Guesthouse in Riverside Kitwe",
				Slug:          "quiet-guesthouse-in-riverside-kitwe",
				Description:   "Simple self-catering guesthouse close to town.",
				Type:          propertydomain.TypeGuesthouse,
				City:          "Kitwe",
				Area:          "Riverside",
				Bedrooms:      1,
				Bathrooms:     1,
				MaxGuests:     2,
				PricePerNight: money.Money{Currency: "ZMW", Amount: 520},
				Amenities:     datatypes.NewJSONSlice([]string{"wifi", "parking"}),
				IsActive:      true,
				CreatedAt:     now,
				UpdatedAt:     now,
			},
		}
		for _, property := range properties {
			if err := tx.WithContext(ctx).Create(property).Error; err != nil {
				return err
			}
		}

		// A three-night stay at the Kabulonga apartment: 3 x 1450 = 4350,
		// plus the 12% service fee of 522.
		bookings := []*bookingdomain.Booking{
			demoBooking(node, properties[0], guestID, now.AddDate(0, 0, 14), bookingdomain.StatusConfirmed, now),
			demoBooking(node, properties[0], guestID, now.AddDate(0, 0, -30), bookingdomain.StatusCompleted, now),
		}
		for _, booking := range bookings {
			if err := tx.WithContext(ctx).Create(booking).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func demoBooking(node *snowflake.Node, property *propertydomain.Property, guestID snowflake.ID, checkIn time.Time, status bookingdomain.BookingStatus, now time.Time) *bookingdomain.Booking {
	const nights = 3
	in := time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(), 0, 0, 0, 0, time.UTC)
	out := in.AddDate(0, 0, nights)

	subtotal, _ := property.PricePerNight.MulInt(nights)
	fee := subtotal.Percent(demoServiceFeePercent)
	total, _ := subtotal.Add(fee)

	return &bookingdomain.Booking{
		ID:         node.Generate(),
		Reference:  ulid.Make().String(),
		PropertyID: property.ID,
		OwnerID:    property.OwnerID,
		GuestID:    guestID,
		CheckIn:    in,
		CheckOut:   out,
		Nights:     nights,
		GuestCount: 2,
		Status:     status,
		Subtotal:   subtotal,
		ServiceFee: fee,
		Total:      total,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
