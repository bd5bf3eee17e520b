package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"staybook-backend/models"
)

type HotelService struct {
	DB *gorm.DB
}

func NewHotelService(db *gorm.DB) *HotelService {
	return &HotelService{DB: db}
}

// Register creates the caller's hotel and promotes them to hotel owner.
// One hotel per owner; a second registration fails with ErrHotelExists.
func (s *HotelService) Register(user *models.User, name, address, city, contact string) (*models.Hotel, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(city) == "" {
		return nil, fmt.Errorf("%w: hotel name and city are required", ErrValidation)
	}

	var existing models.Hotel
	err := s.DB.Where("owner_subject = ?", user.SubjectID).First(&existing).Error
	if err == nil {
		return nil, ErrHotelExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing hotel: %w", err)
	}

	hotel := models.Hotel{
		Name:         strings.TrimSpace(name),
		Address:      strings.TrimSpace(address),
		City:         strings.TrimSpace(city),
		Contact:      strings.TrimSpace(contact),
		OwnerSubject: user.SubjectID,
	}

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&hotel).Error; err != nil {
			return fmt.Errorf("failed to create hotel: %w", err)
		}
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
			Update("role", models.RoleHotelOwner).Error; err != nil {
			return fmt.Errorf("failed to promote user to owner: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	user.Role = models.RoleHotelOwner
	return &hotel, nil
}

// FindByOwner returns the hotel owned by the subject id.
func (s *HotelService) FindByOwner(ownerSubject string) (*models.Hotel, error) {
	var hotel models.Hotel
	if err := s.DB.Where("owner_subject = ?", ownerSubject).First(&hotel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHotelNotFound
		}
		return nil, fmt.Errorf("failed to load hotel: %w", err)
	}
	return &hotel, nil
}
