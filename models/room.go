package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Room struct {
	gorm.Model

	HotelID uint  `json:"hotelId" gorm:"index;column:hotel_id"`
	Hotel   Hotel `json:"hotel,omitempty" gorm:"foreignKey:HotelID;references:ID"`

	RoomType string `json:"roomType" gorm:"column:room_type;type:varchar(64)"`

	// PricePerNight is in minor currency units (cents). All price arithmetic
	// stays in minor units; conversion to display currency happens at the edge.
	PricePerNight int64 `json:"pricePerNight" gorm:"column:price_per_night"`

	Amenities datatypes.JSON `json:"amenities,omitempty" gorm:"column:amenities"`

	// IsAvailable is the owner-controlled listing flag. It is informational
	// and independent of date-based booking conflicts.
	IsAvailable bool `json:"isAvailable" gorm:"column:is_available;default:true"`
}
