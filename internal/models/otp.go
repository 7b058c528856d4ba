package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	OTPPurposeRegistration = "registration"
)

type OTP struct {
	gorm.Model
	MobileNo   string    `gorm:"not null;index"`
	Code       string    `gorm:"not null"`
	Purpose    string    `gorm:"not null"` // "registration"
	ExpiresAt  time.Time `gorm:"not null"`
	VerifiedAt *time.Time
	Attempts   int  `gorm:"default:0"`
	IsUsed     bool `gorm:"default:false"`
}

// IsExpired reports whether the OTP is past its expiry time
func (o *OTP) IsExpired() bool {
	return time.Now().After(o.ExpiresAt)
}
