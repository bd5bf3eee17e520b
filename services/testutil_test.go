package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"staybook-backend/models"
)

// newTestDB opens a fresh in-memory SQLite database. The pool is pinned to a
// single connection so concurrent transactions serialize, which stands in
// for the MySQL row lock that production relies on.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Hotel{},
		&models.Room{},
		&models.Booking{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, subject, email, name string) *models.User {
	t.Helper()
	u := &models.User{SubjectID: subject, Email: email, Username: name, Role: models.RoleUser}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedHotel(t *testing.T, db *gorm.DB, ownerSubject string) *models.Hotel {
	t.Helper()
	h := &models.Hotel{
		Name:         "Seaside Inn",
		Address:      "1 Beach Road",
		City:         "Brighton",
		Contact:      "+44 1273 000000",
		OwnerSubject: ownerSubject,
	}
	require.NoError(t, db.Create(h).Error)
	return h
}

func seedRoom(t *testing.T, db *gorm.DB, hotelID uint, pricePerNight int64) *models.Room {
	t.Helper()
	amenities, err := json.Marshal([]string{"wifi", "breakfast"})
	require.NoError(t, err)
	r := &models.Room{
		HotelID:       hotelID,
		RoomType:      "Deluxe",
		PricePerNight: pricePerNight,
		Amenities:     datatypes.JSON(amenities),
		IsAvailable:   true,
	}
	require.NoError(t, db.Create(r).Error)
	return r
}

// newBookingService builds a service with notifications disabled and no
// checkout provider; tests that need those wire their own.
func newBookingService(db *gorm.DB) *BookingService {
	return &BookingService{
		DB:      db,
		Pricing: PricingCalculator{ServiceFeePercent: 0},
	}
}
