package models

import (
	"gorm.io/gorm"
)

type Hotel struct {
	gorm.Model

	Name    string `json:"name" gorm:"type:varchar(255)"`
	Address string `json:"address" gorm:"type:varchar(255)"`
	City    string `json:"city" gorm:"type:varchar(128)"`
	Contact string `json:"contact" gorm:"type:varchar(64)"`

	// OwnerSubject is the identity-provider subject id of the owning user.
	// One hotel per owner; enforced at registration, not by the schema.
	OwnerSubject string `json:"owner" gorm:"column:owner_subject;index;type:varchar(191)"`
}
