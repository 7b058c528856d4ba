package models

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var mobilePattern = regexp.MustCompile(`^\+?\d+$`)

// User represents a registered account in the system
type User struct {
	// gorm.Model gives us ID (uint), CreatedAt, UpdatedAt, DeletedAt
	gorm.Model

	UserID         string `json:"user_id" gorm:"uniqueIndex"`
	Username       string `json:"username" gorm:"uniqueIndex"`
	MobileNo       string `json:"mobile_no" gorm:"uniqueIndex"`
	HashedPassword string `json:"-"`
}

// BeforeCreate hook to auto-generate UserID and normalize data
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == "" {
		u.UserID = uuid.New().String()
	}
	u.Username = strings.TrimSpace(u.Username)
	u.MobileNo = strings.TrimSpace(u.MobileNo)
	return nil
}

// UserRegistration is the payload for new user registration
type UserRegistration struct {
	Username string `json:"username" validate:"required"`
	MobileNo string `json:"mobile_no" validate:"required"`
	Password string `json:"password" validate:"required"`
	OTP      string `json:"otp" validate:"required"`
}

// Validate checks the registration payload against the account rules
func (r *UserRegistration) Validate() error {
	if len(r.Username) < 3 || len(r.Username) > 50 {
		return fmt.Errorf("username must be between 3 and 50 characters")
	}
	if err := ValidateMobileNo(r.MobileNo); err != nil {
		return err
	}
	if len(r.Password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	if len(r.OTP) != 6 {
		return fmt.Errorf("otp must be 6 digits")
	}
	return nil
}

// ValidateMobileNo enforces the mobile number format: digits with an
// optional leading plus, 10 to 13 characters
func ValidateMobileNo(mobile string) error {
	if len(mobile) < 10 || len(mobile) > 13 {
		return fmt.Errorf("mobile number must be between 10 and 13 characters")
	}
	if !mobilePattern.MatchString(mobile) {
		return fmt.Errorf("mobile number must contain only digits (optionally with a leading +)")
	}
	return nil
}

// UserLogin is the payload for login; Username accepts a username or a
// mobile number
type UserLogin struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// UserOut is the registration response returned to clients
type UserOut struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	MobileNo    string `json:"mobile_no"`
	CreatedAt   string `json:"created_at"`
	AccessToken string `json:"access_token"`
}
