package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"staybook-backend/models"
)

type RoomService struct {
	DB *gorm.DB
}

func NewRoomService(db *gorm.DB) *RoomService {
	return &RoomService{DB: db}
}

// Create adds a room to the caller's hotel.
func (s *RoomService) Create(ownerSubject, roomType string, pricePerNight int64, amenities []string) (*models.Room, error) {
	if strings.TrimSpace(roomType) == "" {
		return nil, fmt.Errorf("%w: room type is required", ErrValidation)
	}
	if pricePerNight <= 0 {
		return nil, fmt.Errorf("%w: price per night must be positive", ErrValidation)
	}

	var hotel models.Hotel
	if err := s.DB.Where("owner_subject = ?", ownerSubject).First(&hotel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHotelNotFound
		}
		return nil, fmt.Errorf("failed to load hotel: %w", err)
	}

	if amenities == nil {
		amenities = []string{}
	}
	amenitiesJSON, err := json.Marshal(amenities)
	if err != nil {
		return nil, fmt.Errorf("failed to encode amenities: %w", err)
	}

	room := models.Room{
		HotelID:       hotel.ID,
		RoomType:      strings.TrimSpace(roomType),
		PricePerNight: pricePerNight,
		Amenities:     datatypes.JSON(amenitiesJSON),
		IsAvailable:   true,
	}
	if err := s.DB.Create(&room).Error; err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	room.Hotel = hotel
	return &room, nil
}

// ListAll returns the full catalog with hotels preloaded.
func (s *RoomService) ListAll() ([]models.Room, error) {
	var rooms []models.Room
	if err := s.DB.Preload("Hotel").Order("created_at DESC").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

// ListForOwner returns the rooms of the caller's hotel.
func (s *RoomService) ListForOwner(ownerSubject string) ([]models.Room, error) {
	var hotel models.Hotel
	if err := s.DB.Where("owner_subject = ?", ownerSubject).First(&hotel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHotelNotFound
		}
		return nil, fmt.Errorf("failed to load hotel: %w", err)
	}

	var rooms []models.Room
	if err := s.DB.Where("hotel_id = ?", hotel.ID).Order("created_at DESC").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to list owner rooms: %w", err)
	}
	return rooms, nil
}

func (s *RoomService) GetByID(roomID uint) (*models.Room, error) {
	var room models.Room
	if err := s.DB.Preload("Hotel").First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to load room %d: %w", roomID, err)
	}
	return &room, nil
}

// ToggleAvailability flips the owner-facing listing flag. The flag does not
// affect date-based availability checks.
func (s *RoomService) ToggleAvailability(ownerSubject string, roomID uint) (*models.Room, error) {
	var room models.Room
	if err := s.DB.Preload("Hotel").First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to load room %d: %w", roomID, err)
	}
	if room.Hotel.OwnerSubject != ownerSubject {
		return nil, ErrNotRoomOwner
	}

	next := !room.IsAvailable
	if err := s.DB.Model(&room).Update("is_available", next).Error; err != nil {
		return nil, fmt.Errorf("failed to toggle room %d availability: %w", roomID, err)
	}
	room.IsAvailable = next
	return &room, nil
}
