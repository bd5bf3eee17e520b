package models

import (
	"gorm.io/gorm"
)

const (
	RoleUser       = "user"
	RoleHotelOwner = "hotelOwner"
)

// User is the local record for an identity-provider subject. Rows are
// provisioned lazily the first time a subject id shows up on a request.
type User struct {
	gorm.Model

	SubjectID string `json:"subjectId" gorm:"column:subject_id;uniqueIndex;type:varchar(191)"`
	Email     string `json:"email" gorm:"type:varchar(255)"`
	Username  string `json:"username" gorm:"type:varchar(255)"`
	Role      string `json:"role" gorm:"type:varchar(32);default:user"`
}

func (u *User) IsHotelOwner() bool {
	return u.Role == RoleHotelOwner
}
