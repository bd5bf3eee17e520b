package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	BookingStatusUnpaid    = "unpaid"
	BookingStatusPaid      = "paid"
	BookingStatusCancelled = "cancelled"
)

// Booking is a stay reservation over the half-open interval
// [CheckInDate, CheckOutDate). Hotel is denormalized from the room at
// creation time and frozen afterwards.
//
// Core invariant: for one room, no two bookings with status other than
// cancelled may have overlapping intervals.
type Booking struct {
	gorm.Model

	ReferenceCode string `json:"referenceCode" gorm:"column:reference_code;uniqueIndex;type:varchar(64)"`

	UserID  uint `json:"userId" gorm:"index;column:user_id"`
	RoomID  uint `json:"roomId" gorm:"index;column:room_id"`
	HotelID uint `json:"hotelId" gorm:"index;column:hotel_id"`

	User  User  `json:"user,omitempty" gorm:"foreignKey:UserID;references:ID"`
	Room  Room  `json:"room,omitempty" gorm:"foreignKey:RoomID;references:ID"`
	Hotel Hotel `json:"hotel,omitempty" gorm:"foreignKey:HotelID;references:ID"`

	CheckInDate  time.Time `json:"checkInDate" gorm:"column:check_in_date"`
	CheckOutDate time.Time `json:"checkOutDate" gorm:"column:check_out_date"`
	Guests       int       `json:"guests" gorm:"column:guests"`
	Nights       int       `json:"nights" gorm:"column:nights"`

	// TotalPrice is in minor currency units, fixed at creation. Display and
	// the gateway charge amount both read this column; nothing recomputes it.
	TotalPrice int64 `json:"totalPrice" gorm:"column:total_price"`

	Status        string `json:"status" gorm:"column:status;type:varchar(32);default:unpaid;index"`
	PaymentMethod string `json:"paymentMethod" gorm:"column:payment_method;type:varchar(32)"`
}

func (b *Booking) IsPaid() bool {
	return b.Status == BookingStatusPaid
}
